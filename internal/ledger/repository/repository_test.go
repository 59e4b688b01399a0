package repository

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tair/inventory-ledger/internal/ledger/domain"
)

func setupTestRepo(t *testing.T) *GormLedgerRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A fresh connection to :memory: is a fresh empty database, so the
	// pool must stay on the single migrated connection.
	sqlDB.SetMaxOpenConns(1)

	repo := NewGormLedgerRepository(db)
	require.NoError(t, repo.AutoMigrate())
	return repo
}

func registerBalance(t *testing.T, repo *GormLedgerRepository, key string, onHand, minQty int) *domain.ProductBalance {
	t.Helper()
	balance := &domain.ProductBalance{
		ProductKey:  key,
		OnHand:      onHand,
		MinQuantity: minQty,
		Active:      true,
	}
	require.NoError(t, repo.CreateBalance(context.Background(), balance))
	return balance
}

func appendAt(t *testing.T, repo *GormLedgerRepository, balance *domain.ProductBalance, mt domain.MovementType, magnitude int, at time.Time) *domain.Movement {
	t.Helper()
	movement := &domain.Movement{
		ProductKey:       balance.ProductKey,
		Type:             mt,
		Magnitude:        magnitude,
		ResultingBalance: balance.OnHand + mt.Sign()*magnitude,
		CreatedAt:        at,
	}
	expected := balance.Version
	balance.OnHand = movement.ResultingBalance
	balance.Version = expected + 1
	require.NoError(t, repo.AppendMovement(context.Background(), movement, balance, expected))
	return movement
}

func TestCreateBalance_Duplicate(t *testing.T) {
	repo := setupTestRepo(t)
	registerBalance(t, repo, "P1", 10, 5)

	// The unique-key violation must surface as the domain sentinel, not a
	// raw driver error, so concurrent registrations map to a conflict.
	err := repo.CreateBalance(context.Background(), &domain.ProductBalance{ProductKey: "P1", Active: true})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestFindBalance(t *testing.T) {
	repo := setupTestRepo(t)
	registerBalance(t, repo, "P1", 10, 5)

	balance, err := repo.FindBalance(context.Background(), "P1")
	require.NoError(t, err)
	assert.Equal(t, "P1", balance.ProductKey)
	assert.Equal(t, 10, balance.OnHand)
	assert.Equal(t, 5, balance.MinQuantity)
	assert.True(t, balance.Active)

	_, err = repo.FindBalance(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFindBalance_HonorsContextCancellation(t *testing.T) {
	repo := setupTestRepo(t)
	registerBalance(t, repo, "P1", 10, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.FindBalance(ctx, "P1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetireBalance(t *testing.T) {
	repo := setupTestRepo(t)
	registerBalance(t, repo, "P1", 10, 5)

	ctx := context.Background()
	require.NoError(t, repo.RetireBalance(ctx, "P1"))

	balance, err := repo.FindBalance(ctx, "P1")
	require.NoError(t, err)
	assert.False(t, balance.Active)

	// Retiring an already retired or unknown product reports not found.
	assert.ErrorIs(t, repo.RetireBalance(ctx, "P1"), domain.ErrNotFound)
	assert.ErrorIs(t, repo.RetireBalance(ctx, "missing"), domain.ErrNotFound)
}

func TestAppendMovement_UpdatesBalanceAndLog(t *testing.T) {
	repo := setupTestRepo(t)
	balance := registerBalance(t, repo, "P1", 10, 5)

	appendAt(t, repo, balance, domain.MovementSale, 6, time.Now().UTC())

	ctx := context.Background()
	stored, err := repo.FindBalance(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, 4, stored.OnHand)
	assert.Equal(t, uint64(1), stored.Version)

	movements, err := repo.ListMovements(ctx, domain.MovementFilter{ProductKey: "P1"}, 10, nil)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, domain.MovementSale, movements[0].Type)
	assert.Equal(t, 4, movements[0].ResultingBalance)
}

func TestAppendMovement_VersionConflictRollsBack(t *testing.T) {
	repo := setupTestRepo(t)
	registerBalance(t, repo, "P1", 10, 5)

	stale := &domain.ProductBalance{
		ProductKey: "P1",
		OnHand:     4,
		Version:    8,
		Active:     true,
	}
	movement := &domain.Movement{
		ProductKey:       "P1",
		Type:             domain.MovementSale,
		Magnitude:        6,
		ResultingBalance: 4,
		CreatedAt:        time.Now().UTC(),
	}

	ctx := context.Background()

	// Expected version 7 never existed, so the CAS misses and the whole
	// transaction must roll back: no balance change, no movement row.
	err := repo.AppendMovement(ctx, movement, stale, 7)
	assert.ErrorIs(t, err, domain.ErrConflict)

	stored, err := repo.FindBalance(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, 10, stored.OnHand)
	assert.Equal(t, uint64(0), stored.Version)

	count, err := repo.CountMovements(ctx, []string{"P1"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestListMovements_Filters(t *testing.T) {
	repo := setupTestRepo(t)
	p1 := registerBalance(t, repo, "P1", 100, 5)
	p2 := registerBalance(t, repo, "P2", 100, 5)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	appendAt(t, repo, p1, domain.MovementSale, 1, base)
	appendAt(t, repo, p1, domain.MovementPurchase, 2, base.Add(time.Minute))
	appendAt(t, repo, p1, domain.MovementSale, 3, base.Add(2*time.Minute))
	appendAt(t, repo, p2, domain.MovementReturn, 4, base.Add(3*time.Minute))

	ctx := context.Background()

	byProduct, err := repo.ListMovements(ctx, domain.MovementFilter{ProductKey: "P1"}, 10, nil)
	require.NoError(t, err)
	assert.Len(t, byProduct, 3)

	bySale := domain.MovementFilter{ProductKey: "P1", Type: domain.MovementSale}
	sales, err := repo.ListMovements(ctx, bySale, 10, nil)
	require.NoError(t, err)
	assert.Len(t, sales, 2)

	from := base.Add(30 * time.Second)
	to := base.Add(90 * time.Second)
	windowed, err := repo.ListMovements(ctx, domain.MovementFilter{From: &from, To: &to}, 10, nil)
	require.NoError(t, err)
	require.Len(t, windowed, 1)
	assert.Equal(t, domain.MovementPurchase, windowed[0].Type)
}

func TestListMovements_KeysetPagination(t *testing.T) {
	repo := setupTestRepo(t)
	balance := registerBalance(t, repo, "P1", 1000, 5)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	var ids []uint
	for i := 0; i < 25; i++ {
		m := appendAt(t, repo, balance, domain.MovementSale, 1, base.Add(time.Duration(i)*time.Second))
		ids = append(ids, m.ID)
	}

	ctx := context.Background()
	filter := domain.MovementFilter{ProductKey: "P1"}

	page1, err := repo.ListMovements(ctx, filter, 10, nil)
	require.NoError(t, err)
	require.Len(t, page1, 10)
	assert.Equal(t, ids[24], page1[0].ID, "most recent first")

	// Movements appended after the first page was taken must not shift
	// the remaining pages.
	appendAt(t, repo, balance, domain.MovementPurchase, 1, base.Add(time.Hour))

	cursor := &domain.Cursor{CreatedAt: page1[9].CreatedAt, ID: page1[9].ID}
	page2, err := repo.ListMovements(ctx, filter, 10, cursor)
	require.NoError(t, err)
	require.Len(t, page2, 10)
	assert.Equal(t, ids[14], page2[0].ID)

	cursor = &domain.Cursor{CreatedAt: page2[9].CreatedAt, ID: page2[9].ID}
	page3, err := repo.ListMovements(ctx, filter, 10, cursor)
	require.NoError(t, err)
	require.Len(t, page3, 5)
	assert.Equal(t, ids[0], page3[4].ID, "oldest movement closes the traversal")

	seen := make(map[uint]bool)
	for _, page := range [][]domain.Movement{page1, page2, page3} {
		for _, m := range page {
			assert.False(t, seen[m.ID], "movement %d served twice", m.ID)
			seen[m.ID] = true
		}
	}
	assert.Len(t, seen, 25)
}

func TestListMovements_CursorBreaksTimestampTies(t *testing.T) {
	repo := setupTestRepo(t)
	balance := registerBalance(t, repo, "P1", 1000, 5)

	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	var ids []uint
	for i := 0; i < 5; i++ {
		m := appendAt(t, repo, balance, domain.MovementSale, 1, at)
		ids = append(ids, m.ID)
	}

	ctx := context.Background()
	filter := domain.MovementFilter{ProductKey: "P1"}
	page1, err := repo.ListMovements(ctx, filter, 3, nil)
	require.NoError(t, err)
	require.Len(t, page1, 3)

	cursor := &domain.Cursor{CreatedAt: page1[2].CreatedAt, ID: page1[2].ID}
	page2, err := repo.ListMovements(ctx, filter, 3, cursor)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, ids[1], page2[0].ID)
	assert.Equal(t, ids[0], page2[1].ID)
}

func TestCountMovementsByType_ZeroFillsMissingTypes(t *testing.T) {
	repo := setupTestRepo(t)
	balance := registerBalance(t, repo, "P1", 100, 5)

	now := time.Now().UTC()
	appendAt(t, repo, balance, domain.MovementSale, 2, now)
	appendAt(t, repo, balance, domain.MovementSale, 1, now.Add(time.Second))
	appendAt(t, repo, balance, domain.MovementPurchase, 5, now.Add(2*time.Second))

	counts, err := repo.CountMovementsByType(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[domain.MovementSale])
	assert.Equal(t, int64(1), counts[domain.MovementPurchase])
	assert.Equal(t, int64(0), counts[domain.MovementAdjustment])
	assert.Equal(t, int64(0), counts[domain.MovementReturn])
}

func TestCountMovements_ScopedToProducts(t *testing.T) {
	repo := setupTestRepo(t)
	p1 := registerBalance(t, repo, "P1", 100, 5)
	p2 := registerBalance(t, repo, "P2", 100, 5)

	now := time.Now().UTC()
	appendAt(t, repo, p1, domain.MovementSale, 1, now)
	appendAt(t, repo, p2, domain.MovementSale, 1, now.Add(time.Second))
	appendAt(t, repo, p2, domain.MovementReturn, 1, now.Add(2*time.Second))

	ctx := context.Background()
	total, err := repo.CountMovements(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	scoped, err := repo.CountMovements(ctx, []string{"P2"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), scoped)
}

func TestLowStockKeys(t *testing.T) {
	repo := setupTestRepo(t)
	registerBalance(t, repo, "P1", 10, 5)
	registerBalance(t, repo, "P2", 5, 5)
	registerBalance(t, repo, "P3", 0, 5)
	retired := registerBalance(t, repo, "P4", 0, 5)

	ctx := context.Background()
	require.NoError(t, repo.RetireBalance(ctx, retired.ProductKey))

	keys, err := repo.LowStockKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"P2", "P3"}, keys)
}

func TestBalanceDirectory(t *testing.T) {
	repo := setupTestRepo(t)
	registerBalance(t, repo, "P1", 10, 5)
	registerBalance(t, repo, "P2", 10, 3)

	ctx := context.Background()
	require.NoError(t, repo.RetireBalance(ctx, "P2"))

	dir := NewBalanceDirectory(repo.db)

	exists, err := dir.Exists(ctx, "P1")
	require.NoError(t, err)
	assert.True(t, exists)

	// Retired products are invisible to the directory.
	exists, err = dir.Exists(ctx, "P2")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = dir.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, exists)

	threshold, err := dir.Threshold(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, 5, threshold)

	_, err = dir.Threshold(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
