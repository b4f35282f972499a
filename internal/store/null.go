package store

import (
	"context"
	"time"

	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/domain/model"
)

// NullStore satisfies Store without persisting anything. The tracker runs
// fully in-memory against it when DB_URL is unset.
type NullStore struct{}

func NewNullStore() *NullStore { return &NullStore{} }

func (s *NullStore) Whales() WhaleRepository       { return nullWhaleRepo{} }
func (s *NullStore) Snapshots() SnapshotRepository { return nullSnapshotRepo{} }
func (s *NullStore) AlertLog() AlertLogRepository  { return nullAlertLogRepo{} }
func (s *NullStore) Close() error                  { return nil }

type nullWhaleRepo struct{}

func (nullWhaleRepo) GetActive(ctx context.Context) ([]model.Whale, error) { return nil, nil }
func (nullWhaleRepo) Upsert(ctx context.Context, w *model.Whale) error     { return nil }
func (nullWhaleRepo) Deactivate(ctx context.Context, address string) error { return nil }

type nullSnapshotRepo struct{}

func (nullSnapshotRepo) BulkInsert(ctx context.Context, snapshots []*model.PositionSnapshot) error {
	return nil
}

func (nullSnapshotRepo) GetLatestByWhale(ctx context.Context, whaleAddress string) ([]model.PositionSnapshot, error) {
	return nil, nil
}

func (nullSnapshotRepo) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type nullAlertLogRepo struct{}

func (nullAlertLogRepo) Insert(ctx context.Context, entry *model.AlertLogEntry) error { return nil }

func (nullAlertLogRepo) GetRecent(ctx context.Context, limit int) ([]model.AlertLogEntry, error) {
	return nil, nil
}
