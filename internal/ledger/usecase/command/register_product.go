package command

import (
	"context"
	"errors"

	"github.com/tair/inventory-ledger/internal/ledger/domain"
	"github.com/tair/inventory-ledger/pkg/logger"
)

// RegisterProductCommand represents the command to register a product
// with the ledger
type RegisterProductCommand struct {
	ProductKey    string
	InitialOnHand int
	MinQuantity   int
}

// RegisterProductHandler handles product registration
type RegisterProductHandler struct {
	repo domain.LedgerRepository
}

// NewRegisterProductHandler creates a new register product handler
func NewRegisterProductHandler(repo domain.LedgerRepository) *RegisterProductHandler {
	return &RegisterProductHandler{repo: repo}
}

// Handle executes the register product command
func (h *RegisterProductHandler) Handle(ctx context.Context, cmd RegisterProductCommand) (*domain.ProductBalance, error) {
	if cmd.ProductKey == "" {
		return nil, domain.NewValidationError("product_key", "is required")
	}
	if cmd.InitialOnHand < 0 {
		return nil, domain.NewValidationError("initial_on_hand", "cannot be negative")
	}
	if cmd.MinQuantity < 0 {
		return nil, domain.NewValidationError("min_quantity", "cannot be negative")
	}

	if _, err := h.repo.FindBalance(ctx, cmd.ProductKey); err == nil {
		return nil, domain.ErrAlreadyExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	balance := &domain.ProductBalance{
		ProductKey:  cmd.ProductKey,
		OnHand:      cmd.InitialOnHand,
		MinQuantity: cmd.MinQuantity,
		Version:     0,
		Active:      true,
	}

	if err := h.repo.CreateBalance(ctx, balance); err != nil {
		return nil, err
	}

	logger.Info(ctx).
		Str("product_key", cmd.ProductKey).
		Int("on_hand", cmd.InitialOnHand).
		Int("min_quantity", cmd.MinQuantity).
		Msg("Product registered")

	return balance, nil
}
