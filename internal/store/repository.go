// Package store defines the persistence interfaces the tracker runs against.
// The postgres subpackage implements them; NullStore stands in when no
// database is configured.
package store

import (
	"context"
	"time"

	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/domain/model"
)

// WhaleRepository persists the tracked whale roster.
type WhaleRepository interface {
	GetActive(ctx context.Context) ([]model.Whale, error)
	Upsert(ctx context.Context, w *model.Whale) error
	Deactivate(ctx context.Context, address string) error
}

// SnapshotRepository persists per-poll position observations.
type SnapshotRepository interface {
	BulkInsert(ctx context.Context, snapshots []*model.PositionSnapshot) error
	GetLatestByWhale(ctx context.Context, whaleAddress string) ([]model.PositionSnapshot, error)
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// AlertLogRepository records dispatched alerts for auditing.
type AlertLogRepository interface {
	Insert(ctx context.Context, entry *model.AlertLogEntry) error
	GetRecent(ctx context.Context, limit int) ([]model.AlertLogEntry, error)
}

// Store bundles the repositories behind a single handle.
type Store interface {
	Whales() WhaleRepository
	Snapshots() SnapshotRepository
	AlertLog() AlertLogRepository
	Close() error
}
