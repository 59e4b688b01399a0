package query

import (
	"context"

	"github.com/tair/inventory-ledger/internal/ledger/domain"
)

// GetBalanceQuery represents the query to read a product balance
type GetBalanceQuery struct {
	ProductKey string
}

// BalanceView is the read model for a product balance
type BalanceView struct {
	ProductKey  string `json:"product_key"`
	OnHand      int    `json:"on_hand"`
	MinQuantity int    `json:"min_quantity"`
	Version     uint64 `json:"version"`
	Active      bool   `json:"is_active"`
	LowStock    bool   `json:"low_stock"`
	OutOfStock  bool   `json:"out_of_stock"`
}

// GetBalanceHandler handles get balance queries
type GetBalanceHandler struct {
	repo domain.LedgerRepository
}

// NewGetBalanceHandler creates a new get balance handler
func NewGetBalanceHandler(repo domain.LedgerRepository) *GetBalanceHandler {
	return &GetBalanceHandler{repo: repo}
}

// Handle executes the get balance query
func (h *GetBalanceHandler) Handle(ctx context.Context, q GetBalanceQuery) (*BalanceView, error) {
	if q.ProductKey == "" {
		return nil, domain.NewValidationError("product_key", "is required")
	}

	balance, err := h.repo.FindBalance(ctx, q.ProductKey)
	if err != nil {
		return nil, err
	}

	return &BalanceView{
		ProductKey:  balance.ProductKey,
		OnHand:      balance.OnHand,
		MinQuantity: balance.MinQuantity,
		Version:     balance.Version,
		Active:      balance.Active,
		LowStock:    balance.IsLowStock(),
		OutOfStock:  balance.IsOutOfStock(),
	}, nil
}
