package query

import (
	"context"
	"fmt"

	"github.com/tair/inventory-ledger/internal/ledger/domain"
)

// ListBalancesQuery represents the query to list all product balances
type ListBalancesQuery struct {
	IncludeRetired bool
}

// ListBalancesHandler handles list balances queries
type ListBalancesHandler struct {
	repo domain.LedgerRepository
}

// NewListBalancesHandler creates a new list balances handler
func NewListBalancesHandler(repo domain.LedgerRepository) *ListBalancesHandler {
	return &ListBalancesHandler{repo: repo}
}

// Handle executes the list balances query, ordered by product key
func (h *ListBalancesHandler) Handle(ctx context.Context, q ListBalancesQuery) ([]BalanceView, error) {
	balances, err := h.repo.FindAllBalances(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list balances: %w", err)
	}

	views := make([]BalanceView, 0, len(balances))
	for i := range balances {
		b := &balances[i]
		if !q.IncludeRetired && !b.Active {
			continue
		}
		views = append(views, BalanceView{
			ProductKey:  b.ProductKey,
			OnHand:      b.OnHand,
			MinQuantity: b.MinQuantity,
			Version:     b.Version,
			Active:      b.Active,
			LowStock:    b.IsLowStock(),
			OutOfStock:  b.IsOutOfStock(),
		})
	}
	return views, nil
}
