package query

import (
	"context"
	"fmt"

	"github.com/tair/inventory-ledger/internal/ledger/domain"
)

// LowStockQuery represents the query for the low-stock product set
type LowStockQuery struct{}

// LowStockHandler handles low stock queries
type LowStockHandler struct {
	repo domain.LedgerRepository
}

// NewLowStockHandler creates a new low stock handler
func NewLowStockHandler(repo domain.LedgerRepository) *LowStockHandler {
	return &LowStockHandler{repo: repo}
}

// Handle returns the keys of active products at or below their minimum
// threshold. The set is recomputed from current balances on every call,
// never cached.
func (h *LowStockHandler) Handle(ctx context.Context, _ LowStockQuery) ([]string, error) {
	keys, err := h.repo.LowStockKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute low stock set: %w", err)
	}
	return keys, nil
}
