package postgres

import (
	"context"
	"fmt"

	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/domain/model"
)

type AlertLogRepo struct {
	db *DB
}

func NewAlertLogRepo(db *DB) *AlertLogRepo {
	return &AlertLogRepo{db: db}
}

func (r *AlertLogRepo) Insert(ctx context.Context, entry *model.AlertLogEntry) error {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO alert_log (alert_type, whale_address, coin, title, message, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, entry.AlertType, entry.WhaleAddress, entry.Coin, entry.Title, entry.Message, entry.SentAt)
	if err != nil {
		return fmt.Errorf("insert alert log: %w", err)
	}
	return nil
}

func (r *AlertLogRepo) GetRecent(ctx context.Context, limit int) ([]model.AlertLogEntry, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, alert_type, whale_address, coin, title, message, sent_at
		FROM alert_log
		ORDER BY sent_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query alert log: %w", err)
	}
	defer rows.Close()

	var entries []model.AlertLogEntry
	for rows.Next() {
		var e model.AlertLogEntry
		if err := rows.Scan(&e.ID, &e.AlertType, &e.WhaleAddress, &e.Coin, &e.Title, &e.Message, &e.SentAt); err != nil {
			return nil, fmt.Errorf("scan alert log entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
