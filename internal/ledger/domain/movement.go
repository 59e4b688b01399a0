package domain

import (
	"context"
	"time"
)

// MovementType classifies a stock movement
type MovementType string

// Movement types
const (
	MovementPurchase   MovementType = "purchase"
	MovementSale       MovementType = "sale"
	MovementAdjustment MovementType = "adjustment"
	MovementReturn     MovementType = "return"
)

// MovementTypes lists all recognized movement types in a stable order
var MovementTypes = []MovementType{
	MovementPurchase,
	MovementSale,
	MovementAdjustment,
	MovementReturn,
}

// Valid reports whether t is a recognized movement type
func (t MovementType) Valid() bool {
	switch t {
	case MovementPurchase, MovementSale, MovementAdjustment, MovementReturn:
		return true
	}
	return false
}

// Sign returns the direction a movement of this type applies to on-hand
// stock: purchase and return add, sale and adjustment subtract.
// An adjustment always subtracting mirrors the upstream system; see the
// open question in DESIGN.md before changing it.
func (t MovementType) Sign() int {
	switch t {
	case MovementPurchase, MovementReturn:
		return 1
	case MovementSale, MovementAdjustment:
		return -1
	}
	return 0
}

// Movement represents one immutable stock-affecting event. Rows are
// append-only: once written they are never updated or deleted.
type Movement struct {
	ID               uint         `json:"id" gorm:"primaryKey"`
	ProductKey       string       `json:"product_key" gorm:"not null;index:idx_movements_product_created,priority:1"`
	Type             MovementType `json:"movement_type" gorm:"column:movement_type;not null;index"`
	Magnitude        int          `json:"magnitude" gorm:"not null"`
	ReferenceID      string       `json:"reference_id,omitempty"`
	Notes            string       `json:"notes,omitempty"`
	ResultingBalance int          `json:"resulting_balance" gorm:"not null"`
	CreatedAt        time.Time    `json:"created_at" gorm:"index:idx_movements_product_created,priority:2"`
}

// TableName specifies the table name
func (Movement) TableName() string {
	return "stock_movements"
}

// Delta returns the signed quantity this movement applies to on-hand stock
func (m *Movement) Delta() int {
	return m.Type.Sign() * m.Magnitude
}

// MovementFilter narrows a movement listing. Zero values mean "no filter".
type MovementFilter struct {
	ProductKey string
	Type       MovementType
	From       *time.Time
	To         *time.Time
}

// Cursor marks a position in the movement history for keyset pagination.
// Records strictly older than (CreatedAt, ID) are returned, so concurrent
// appends can never duplicate or skip rows in an in-flight traversal.
type Cursor struct {
	CreatedAt time.Time
	ID        uint
}

// LedgerRepository defines the contract for ledger persistence. Movement
// append and balance update are a single atomic unit (AppendMovement).
// Every method takes the caller's context so queries honor cancellation
// and spans nest under the caller's trace.
type LedgerRepository interface {
	CreateBalance(ctx context.Context, balance *ProductBalance) error
	FindBalance(ctx context.Context, productKey string) (*ProductBalance, error)
	FindAllBalances(ctx context.Context) ([]ProductBalance, error)
	RetireBalance(ctx context.Context, productKey string) error

	// AppendMovement persists the movement and the updated balance in one
	// transaction. The balance row is matched on expectedVersion; if another
	// writer got there first, nothing is written and ErrConflict is returned.
	AppendMovement(ctx context.Context, movement *Movement, balance *ProductBalance, expectedVersion uint64) error

	ListMovements(ctx context.Context, filter MovementFilter, limit int, cursor *Cursor) ([]Movement, error)
	CountMovements(ctx context.Context, productKeys []string) (int64, error)
	CountMovementsByType(ctx context.Context, productKeys []string) (map[MovementType]int64, error)
	LowStockKeys(ctx context.Context) ([]string, error)
}
