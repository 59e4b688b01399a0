package command

import (
	"context"

	"github.com/tair/inventory-ledger/internal/ledger/domain"
	"github.com/tair/inventory-ledger/pkg/logger"
)

// RetireProductCommand represents the command to retire a product
type RetireProductCommand struct {
	ProductKey string
}

// RetireProductHandler soft-retires a product. Its movement history and
// balance row are preserved; only new movements are refused.
type RetireProductHandler struct {
	repo domain.LedgerRepository
}

// NewRetireProductHandler creates a new retire product handler
func NewRetireProductHandler(repo domain.LedgerRepository) *RetireProductHandler {
	return &RetireProductHandler{repo: repo}
}

// Handle executes the retire product command
func (h *RetireProductHandler) Handle(ctx context.Context, cmd RetireProductCommand) error {
	if cmd.ProductKey == "" {
		return domain.NewValidationError("product_key", "is required")
	}

	if err := h.repo.RetireBalance(ctx, cmd.ProductKey); err != nil {
		return err
	}

	logger.Info(ctx).
		Str("product_key", cmd.ProductKey).
		Msg("Product retired")
	return nil
}
