//go:build integration

package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/domain/model"
	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/store/postgres"
)

// testDB connects to TEST_DB_URL when set, otherwise spins up an ephemeral
// PostgreSQL container.
func testDB(t *testing.T) *postgres.DB {
	t.Helper()
	url := os.Getenv("TEST_DB_URL")
	if url != "" {
		db, err := postgres.New(postgres.Config{
			URL:             url,
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: time.Minute,
		})
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		return db
	}
	return setupTestContainer(t)
}

func testAddress() string {
	return "0xtest" + uuid.NewString()[:8]
}

// ---------- WhaleRepo ----------

func TestWhaleRepo_UpsertGetDeactivate(t *testing.T) {
	db := testDB(t)
	repo := postgres.NewWhaleRepo(db)
	ctx := context.Background()

	addr := testAddress()
	require.NoError(t, repo.Upsert(ctx, &model.Whale{Address: addr, Name: "Integration Whale"}))

	active, err := repo.GetActive(ctx)
	require.NoError(t, err)
	require.True(t, containsWhale(active, addr), "upserted whale should be active")

	// Re-upsert with a new name keeps a single row.
	require.NoError(t, repo.Upsert(ctx, &model.Whale{Address: addr, Name: "Renamed"}))
	active, err = repo.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", findWhale(active, addr).Name)

	require.NoError(t, repo.Deactivate(ctx, addr))
	active, err = repo.GetActive(ctx)
	require.NoError(t, err)
	assert.False(t, containsWhale(active, addr), "deactivated whale must not be returned")
}

func containsWhale(whales []model.Whale, address string) bool {
	return findWhale(whales, address) != nil
}

func findWhale(whales []model.Whale, address string) *model.Whale {
	for i := range whales {
		if whales[i].Address == address {
			return &whales[i]
		}
	}
	return nil
}

// ---------- SnapshotRepo ----------

func TestSnapshotRepo_BulkInsertAndLatest(t *testing.T) {
	db := testDB(t)
	repo := postgres.NewSnapshotRepo(db)
	ctx := context.Background()

	addr := testAddress()
	older := time.Now().Add(-time.Hour).UTC().Truncate(time.Millisecond)
	newer := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, repo.BulkInsert(ctx, []*model.PositionSnapshot{
		{WhaleAddress: addr, WhaleName: "W", Coin: "BTC", Side: model.SideLong, Size: 1, NotionalUSD: 100_000, EntryPrice: 95_000, MarkPrice: 100_000, PnLUSD: 5_000, TakenAt: older},
	}))
	require.NoError(t, repo.BulkInsert(ctx, []*model.PositionSnapshot{
		{WhaleAddress: addr, WhaleName: "W", Coin: "BTC", Side: model.SideLong, Size: 2, NotionalUSD: 200_000, EntryPrice: 95_000, MarkPrice: 100_000, PnLUSD: 10_000, TakenAt: newer},
		{WhaleAddress: addr, WhaleName: "W", Coin: "ETH", Side: model.SideShort, Size: 100, NotionalUSD: 400_000, EntryPrice: 4_200, MarkPrice: 4_000, PnLUSD: 20_000, TakenAt: newer},
	}))

	latest, err := repo.GetLatestByWhale(ctx, addr)
	require.NoError(t, err)
	require.Len(t, latest, 2, "only the most recent poll should be returned")
	assert.Equal(t, "ETH", latest[0].Coin, "rows should be ordered by notional, largest first")
	assert.Equal(t, model.SideShort, latest[0].Side)
	assert.WithinDuration(t, newer, latest[0].TakenAt, time.Second)
}

func TestSnapshotRepo_BulkInsertEmptyIsNoop(t *testing.T) {
	db := testDB(t)
	repo := postgres.NewSnapshotRepo(db)
	require.NoError(t, repo.BulkInsert(context.Background(), nil))
}

func TestSnapshotRepo_PurgeBefore(t *testing.T) {
	db := testDB(t)
	repo := postgres.NewSnapshotRepo(db)
	ctx := context.Background()

	addr := testAddress()
	old := time.Now().Add(-48 * time.Hour).UTC()
	fresh := time.Now().UTC()

	require.NoError(t, repo.BulkInsert(ctx, []*model.PositionSnapshot{
		{WhaleAddress: addr, WhaleName: "W", Coin: "SOL", Side: model.SideLong, Size: 10, NotionalUSD: 2_000, EntryPrice: 180, MarkPrice: 200, PnLUSD: 200, TakenAt: old},
		{WhaleAddress: addr, WhaleName: "W", Coin: "SOL", Side: model.SideLong, Size: 10, NotionalUSD: 2_000, EntryPrice: 180, MarkPrice: 200, PnLUSD: 200, TakenAt: fresh},
	}))

	purged, err := repo.PurgeBefore(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, purged, int64(1))

	latest, err := repo.GetLatestByWhale(ctx, addr)
	require.NoError(t, err)
	require.Len(t, latest, 1, "fresh snapshot must survive the purge")
}

// ---------- AlertLogRepo ----------

func TestAlertLogRepo_InsertAndGetRecent(t *testing.T) {
	db := testDB(t)
	repo := postgres.NewAlertLogRepo(db)
	ctx := context.Background()

	addr := testAddress()
	require.NoError(t, repo.Insert(ctx, &model.AlertLogEntry{
		AlertType:    "POSITION_OPENED",
		WhaleAddress: addr,
		Coin:         "BTC",
		Message:      "opened a BTC LONG",
		SentAt:       time.Now().UTC(),
	}))

	recent, err := repo.GetRecent(ctx, 10)
	require.NoError(t, err)
	require.NotEmpty(t, recent)
	assert.Equal(t, "POSITION_OPENED", recent[0].AlertType)
}
