package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tair/inventory-ledger/internal/ledger/domain"
)

// GormLedgerRepository persists balances and movements with GORM
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new ledger repository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// AutoMigrate creates the balance and movement tables
func (r *GormLedgerRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.ProductBalance{}, &domain.Movement{})
}

// CreateBalance registers a new product balance row. The connection must be
// opened with TranslateError so duplicate keys surface as ErrAlreadyExists.
func (r *GormLedgerRepository) CreateBalance(ctx context.Context, balance *domain.ProductBalance) error {
	if err := r.db.WithContext(ctx).Create(balance).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("create balance: %w", err)
	}
	return nil
}

// FindBalance loads the current balance row for a product
func (r *GormLedgerRepository) FindBalance(ctx context.Context, productKey string) (*domain.ProductBalance, error) {
	var balance domain.ProductBalance
	err := r.db.WithContext(ctx).Where("product_key = ?", productKey).First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find balance: %w", err)
	}
	return &balance, nil
}

// FindAllBalances returns every balance row, retired products included
func (r *GormLedgerRepository) FindAllBalances(ctx context.Context) ([]domain.ProductBalance, error) {
	var balances []domain.ProductBalance
	err := r.db.WithContext(ctx).Order("product_key").Find(&balances).Error
	return balances, err
}

// RetireBalance soft-retires a product. The row and its movement history
// are kept; only new movements are refused.
func (r *GormLedgerRepository) RetireBalance(ctx context.Context, productKey string) error {
	res := r.db.WithContext(ctx).Model(&domain.ProductBalance{}).
		Where("product_key = ? AND active = ?", productKey, true).
		Update("active", false)
	if res.Error != nil {
		return fmt.Errorf("retire balance: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AppendMovement writes the movement and the updated balance as one
// transaction. The balance update is an optimistic compare-and-swap on the
// version column; zero rows affected means a concurrent writer won and the
// whole transaction rolls back with ErrConflict.
func (r *GormLedgerRepository) AppendMovement(ctx context.Context, movement *domain.Movement, balance *domain.ProductBalance, expectedVersion uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.ProductBalance{}).
			Where("product_key = ? AND version = ?", balance.ProductKey, expectedVersion).
			Updates(map[string]interface{}{
				"on_hand": balance.OnHand,
				"version": balance.Version,
			})
		if res.Error != nil {
			return fmt.Errorf("update balance: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrConflict
		}
		if err := tx.Create(movement).Error; err != nil {
			return fmt.Errorf("append movement: %w", err)
		}
		return nil
	})
}

// ListMovements returns movements most-recent-first. Pagination is keyset
// based on (created_at, id) so concurrent appends never shift the page
// window the way an offset would.
func (r *GormLedgerRepository) ListMovements(ctx context.Context, filter domain.MovementFilter, limit int, cursor *domain.Cursor) ([]domain.Movement, error) {
	q := r.db.WithContext(ctx).Model(&domain.Movement{})
	if filter.ProductKey != "" {
		q = q.Where("product_key = ?", filter.ProductKey)
	}
	if filter.Type != "" {
		q = q.Where("movement_type = ?", filter.Type)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at <= ?", *filter.To)
	}
	if cursor != nil {
		q = q.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var movements []domain.Movement
	err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&movements).Error
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return movements, nil
}

// CountMovements counts movements, optionally narrowed to product keys
func (r *GormLedgerRepository) CountMovements(ctx context.Context, productKeys []string) (int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Movement{})
	if len(productKeys) > 0 {
		q = q.Where("product_key IN ?", productKeys)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count movements: %w", err)
	}
	return count, nil
}

// CountMovementsByType counts movements per type. Every recognized type is
// present in the result, at zero if no movement of that type exists.
func (r *GormLedgerRepository) CountMovementsByType(ctx context.Context, productKeys []string) (map[domain.MovementType]int64, error) {
	type typeCount struct {
		MovementType domain.MovementType
		Count        int64
	}

	q := r.db.WithContext(ctx).Model(&domain.Movement{}).
		Select("movement_type, COUNT(*) AS count").
		Group("movement_type")
	if len(productKeys) > 0 {
		q = q.Where("product_key IN ?", productKeys)
	}

	var rows []typeCount
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count movements by type: %w", err)
	}

	counts := make(map[domain.MovementType]int64, len(domain.MovementTypes))
	for _, t := range domain.MovementTypes {
		counts[t] = 0
	}
	for _, row := range rows {
		counts[row.MovementType] = row.Count
	}
	return counts, nil
}

// LowStockKeys returns active products whose on-hand quantity is at or
// below the minimum threshold, recomputed from current balances
func (r *GormLedgerRepository) LowStockKeys(ctx context.Context) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).Model(&domain.ProductBalance{}).
		Where("on_hand <= min_quantity AND active = ?", true).
		Order("product_key").
		Pluck("product_key", &keys).Error
	if err != nil {
		return nil, fmt.Errorf("low stock keys: %w", err)
	}
	return keys, nil
}
