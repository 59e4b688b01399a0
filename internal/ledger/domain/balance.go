package domain

import (
	"context"
	"time"
)

// ProductBalance represents the current stock position of one product.
// OnHand is derived state: replaying the product's movements in order from
// its initial quantity must reproduce it exactly.
type ProductBalance struct {
	ProductKey  string    `json:"product_key" gorm:"primaryKey"`
	OnHand      int       `json:"on_hand" gorm:"not null;default:0"`
	MinQuantity int       `json:"min_quantity" gorm:"not null;default:0"`
	Version     uint64    `json:"version" gorm:"not null;default:0"`
	Active      bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (ProductBalance) TableName() string {
	return "product_balances"
}

// IsOutOfStock reports whether the product has no sellable stock. Negative
// on-hand (back-orders under the lenient policy) counts as out of stock.
func (b *ProductBalance) IsOutOfStock() bool {
	return b.OnHand <= 0
}

// IsLowStock reports whether stock is at or below the minimum threshold
// while some stock remains
func (b *ProductBalance) IsLowStock() bool {
	return b.OnHand > 0 && b.OnHand <= b.MinQuantity
}

// State classifies the balance for threshold notifications
func (b *ProductBalance) State() StockState {
	switch {
	case b.IsOutOfStock():
		return StockOut
	case b.IsLowStock():
		return StockLow
	default:
		return StockOK
	}
}

// ProductDirectory is the collaborator that answers product catalog
// questions. The default implementation is backed by the balance store
// itself, but callers embedding the ledger can plug in their own catalog.
type ProductDirectory interface {
	Exists(ctx context.Context, productKey string) (bool, error)
	Threshold(ctx context.Context, productKey string) (int, error)
}
