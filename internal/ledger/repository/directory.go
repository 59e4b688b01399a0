package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tair/inventory-ledger/internal/ledger/domain"
)

// BalanceDirectory answers product existence and threshold lookups from
// the balance store. It is the default ProductDirectory; deployments with
// a separate catalog service can substitute their own implementation.
type BalanceDirectory struct {
	db *gorm.DB
}

// NewBalanceDirectory creates a balance-backed product directory
func NewBalanceDirectory(db *gorm.DB) *BalanceDirectory {
	return &BalanceDirectory{db: db}
}

// Exists reports whether the product is registered and active
func (d *BalanceDirectory) Exists(ctx context.Context, productKey string) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&domain.ProductBalance{}).
		Where("product_key = ? AND active = ?", productKey, true).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("directory exists: %w", err)
	}
	return count > 0, nil
}

// Threshold returns the product's minimum quantity
func (d *BalanceDirectory) Threshold(ctx context.Context, productKey string) (int, error) {
	var balance domain.ProductBalance
	err := d.db.WithContext(ctx).
		Select("min_quantity").
		Where("product_key = ?", productKey).
		First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("directory threshold: %w", err)
	}
	return balance.MinQuantity, nil
}
