package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/domain/model"
	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/metrics"
)

type SnapshotRepo struct {
	db *DB
}

func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

const snapshotColumns = 10

// BulkInsert writes one poll's worth of observations in a single statement.
func (r *SnapshotRepo) BulkInsert(ctx context.Context, snapshots []*model.PositionSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var sb strings.Builder
	sb.WriteString(`
		INSERT INTO position_snapshots
			(whale_address, whale_name, coin, side, size, notional_usd, entry_price, mark_price, pnl_usd, taken_at)
		VALUES `)

	args := make([]any, 0, len(snapshots)*snapshotColumns)
	for i, s := range snapshots {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * snapshotColumns
		sb.WriteByte('(')
		for col := 1; col <= snapshotColumns; col++ {
			if col > 1 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", base+col)
		}
		sb.WriteByte(')')
		args = append(args,
			s.WhaleAddress, s.WhaleName, s.Coin, string(s.Side),
			s.Size, s.NotionalUSD, s.EntryPrice, s.MarkPrice, s.PnLUSD, s.TakenAt,
		)
	}

	if _, err := r.db.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("bulk insert snapshots: %w", err)
	}
	metrics.SnapshotsWrittenTotal.Add(float64(len(snapshots)))
	return nil
}

// GetLatestByWhale returns the snapshots of the whale's most recent poll.
func (r *SnapshotRepo) GetLatestByWhale(ctx context.Context, whaleAddress string) ([]model.PositionSnapshot, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, whale_address, whale_name, coin, side, size, notional_usd, entry_price, mark_price, pnl_usd, taken_at, created_at
		FROM position_snapshots
		WHERE whale_address = $1
		  AND taken_at = (
			SELECT MAX(taken_at) FROM position_snapshots WHERE whale_address = $1
		  )
		ORDER BY notional_usd DESC
	`, whaleAddress)
	if err != nil {
		return nil, fmt.Errorf("query latest snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []model.PositionSnapshot
	for rows.Next() {
		var s model.PositionSnapshot
		var side string
		if err := rows.Scan(
			&s.ID, &s.WhaleAddress, &s.WhaleName, &s.Coin, &side,
			&s.Size, &s.NotionalUSD, &s.EntryPrice, &s.MarkPrice, &s.PnLUSD,
			&s.TakenAt, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		s.Side = model.Side(side)
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

// PurgeBefore deletes snapshots taken before cutoff and returns the number
// of rows removed.
func (r *SnapshotRepo) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := withTimeout(ctx, LongQueryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM position_snapshots WHERE taken_at < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge snapshots: %w", err)
	}
	purged, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge snapshots rows affected: %w", err)
	}
	metrics.SnapshotsPurgedTotal.Add(float64(purged))
	return purged, nil
}
