package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tair/inventory-ledger/internal/ledger/domain"
	"github.com/tair/inventory-ledger/internal/ledger/notify"
	"github.com/tair/inventory-ledger/pkg/keylock"
	"github.com/tair/inventory-ledger/pkg/logger"
	"github.com/tair/inventory-ledger/pkg/metrics"
)

// ApplyMovementCommand represents the command to apply a stock movement
type ApplyMovementCommand struct {
	ProductKey  string
	Type        domain.MovementType
	Magnitude   int
	ReferenceID string
	Notes       string
}

// Config holds ledger policy configuration
type Config struct {
	// AllowNegativeStock permits on-hand to go below zero (back-orders).
	// When false, movements that would drive stock negative are rejected
	// with ErrInsufficientStock.
	AllowNegativeStock bool
}

// ApplyMovementHandler validates, applies and persists stock movements.
// Writers against the same product are serialized through a per-key lock;
// the balance update itself is additionally guarded by an optimistic
// version check so that out-of-process writers surface as ErrConflict.
type ApplyMovementHandler struct {
	repo      domain.LedgerRepository
	directory domain.ProductDirectory
	locks     *keylock.KeyLock
	notifier  *notify.Notifier
	config    Config
}

// NewApplyMovementHandler creates a new apply movement handler
func NewApplyMovementHandler(
	repo domain.LedgerRepository,
	directory domain.ProductDirectory,
	locks *keylock.KeyLock,
	notifier *notify.Notifier,
	config Config,
) *ApplyMovementHandler {
	return &ApplyMovementHandler{
		repo:      repo,
		directory: directory,
		locks:     locks,
		notifier:  notifier,
		config:    config,
	}
}

// Handle executes the apply movement command. On success it returns the
// created movement, resulting balance snapshot included. A context timeout
// while waiting on the product lock abandons the operation with no effect.
func (h *ApplyMovementHandler) Handle(ctx context.Context, cmd ApplyMovementCommand) (*domain.Movement, error) {
	if cmd.ProductKey == "" {
		metrics.MovementsRejected.WithLabelValues("validation").Inc()
		return nil, domain.NewValidationError("product_key", "is required")
	}

	release, err := h.locks.Acquire(ctx, cmd.ProductKey)
	if err != nil {
		return nil, fmt.Errorf("waiting for product lock: %w", err)
	}
	defer release()

	exists, err := h.directory.Exists(ctx, cmd.ProductKey)
	if err != nil {
		return nil, fmt.Errorf("product lookup: %w", err)
	}
	if !exists {
		metrics.MovementsRejected.WithLabelValues("not_found").Inc()
		return nil, domain.ErrNotFound
	}

	if cmd.Magnitude <= 0 {
		metrics.MovementsRejected.WithLabelValues("validation").Inc()
		return nil, domain.NewValidationError("magnitude", "must be a positive quantity")
	}

	if !cmd.Type.Valid() {
		metrics.MovementsRejected.WithLabelValues("validation").Inc()
		return nil, domain.NewValidationError("movement_type", fmt.Sprintf("unknown movement type %q", cmd.Type))
	}

	balance, err := h.repo.FindBalance(ctx, cmd.ProductKey)
	if err != nil {
		return nil, err
	}
	if !balance.Active {
		metrics.MovementsRejected.WithLabelValues("validation").Inc()
		return nil, domain.NewValidationError("product_key", "product is retired")
	}

	// The directory owns the threshold: with the default balance-backed
	// directory this is the row's own min_quantity, but an external
	// catalog's threshold wins for classification.
	threshold, err := h.directory.Threshold(ctx, cmd.ProductKey)
	if err != nil {
		return nil, fmt.Errorf("threshold lookup: %w", err)
	}
	balance.MinQuantity = threshold

	previous := *balance
	newOnHand := balance.OnHand + cmd.Type.Sign()*cmd.Magnitude

	if newOnHand < 0 && !h.config.AllowNegativeStock {
		metrics.MovementsRejected.WithLabelValues("insufficient_stock").Inc()
		return nil, domain.ErrInsufficientStock
	}

	movement := &domain.Movement{
		ProductKey:       cmd.ProductKey,
		Type:             cmd.Type,
		Magnitude:        cmd.Magnitude,
		ReferenceID:      cmd.ReferenceID,
		Notes:            cmd.Notes,
		ResultingBalance: newOnHand,
		CreatedAt:        time.Now().UTC(),
	}

	balance.OnHand = newOnHand
	balance.Version = previous.Version + 1

	if err := h.repo.AppendMovement(ctx, movement, balance, previous.Version); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			metrics.MovementsRejected.WithLabelValues("conflict").Inc()
		}
		return nil, err
	}

	metrics.MovementsApplied.WithLabelValues(string(cmd.Type)).Inc()

	logger.Info(ctx).
		Str("product_key", cmd.ProductKey).
		Str("movement_type", string(cmd.Type)).
		Int("magnitude", cmd.Magnitude).
		Int("on_hand", newOnHand).
		Uint64("version", balance.Version).
		Msg("Movement applied")

	if crossed := domain.Classify(previous.State(), balance.State()); crossed != "" {
		metrics.ThresholdCrossings.WithLabelValues(string(crossed)).Inc()
		h.notifier.Publish(ctx, domain.StockThresholdCrossed{
			ProductKey:     cmd.ProductKey,
			PreviousOnHand: previous.OnHand,
			NewOnHand:      newOnHand,
			MinQuantity:    balance.MinQuantity,
			Crossed:        crossed,
			MovementID:     movement.ID,
			OccurredAt:     movement.CreatedAt,
		})
	}

	return movement, nil
}
