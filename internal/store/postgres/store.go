package postgres

import (
	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/store"
)

// Store bundles the repositories over one shared connection pool.
type Store struct {
	db        *DB
	whales    *WhaleRepo
	snapshots *SnapshotRepo
	alertLog  *AlertLogRepo
}

func NewStore(db *DB) *Store {
	return &Store{
		db:        db,
		whales:    NewWhaleRepo(db),
		snapshots: NewSnapshotRepo(db),
		alertLog:  NewAlertLogRepo(db),
	}
}

var _ store.Store = (*Store)(nil)

func (s *Store) Whales() store.WhaleRepository       { return s.whales }
func (s *Store) Snapshots() store.SnapshotRepository { return s.snapshots }
func (s *Store) AlertLog() store.AlertLogRepository  { return s.alertLog }
func (s *Store) Close() error                        { return s.db.Close() }

// DB exposes the pool for health checks and stats export.
func (s *Store) DB() *DB { return s.db }
