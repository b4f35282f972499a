package postgres

import (
	"context"
	"fmt"

	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/domain/model"
)

type WhaleRepo struct {
	db *DB
}

func NewWhaleRepo(db *DB) *WhaleRepo {
	return &WhaleRepo{db: db}
}

func (r *WhaleRepo) GetActive(ctx context.Context) ([]model.Whale, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT address, name
		FROM whales
		WHERE is_active = true
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("query whales: %w", err)
	}
	defer rows.Close()

	var whales []model.Whale
	for rows.Next() {
		var w model.Whale
		if err := rows.Scan(&w.Address, &w.Name); err != nil {
			return nil, fmt.Errorf("scan whale: %w", err)
		}
		whales = append(whales, w)
	}
	return whales, rows.Err()
}

func (r *WhaleRepo) Upsert(ctx context.Context, w *model.Whale) error {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO whales (address, name, is_active)
		VALUES ($1, $2, true)
		ON CONFLICT (address) DO UPDATE SET
			name = EXCLUDED.name,
			is_active = true,
			updated_at = now()
	`, w.Address, w.Name)
	if err != nil {
		return fmt.Errorf("upsert whale: %w", err)
	}
	return nil
}

func (r *WhaleRepo) Deactivate(ctx context.Context, address string) error {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		UPDATE whales SET is_active = false, updated_at = now()
		WHERE address = $1
	`, address)
	if err != nil {
		return fmt.Errorf("deactivate whale: %w", err)
	}
	return nil
}
