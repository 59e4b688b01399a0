package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/tair/inventory-ledger/internal/ledger/domain"
)

var tracer = otel.Tracer("ledger-repository")

// TracingLedgerRepository wraps GormLedgerRepository with tracing spans on
// the hot paths. Spans start from the caller's context so they nest under
// the HTTP or Kafka span that initiated the operation. Pass-through methods
// come from the embedded repository.
type TracingLedgerRepository struct {
	*GormLedgerRepository
}

// NewTracingLedgerRepository creates a new repository with tracing
func NewTracingLedgerRepository(db *gorm.DB) *TracingLedgerRepository {
	return &TracingLedgerRepository{
		GormLedgerRepository: NewGormLedgerRepository(db),
	}
}

// AppendMovement with tracing
func (r *TracingLedgerRepository) AppendMovement(ctx context.Context, movement *domain.Movement, balance *domain.ProductBalance, expectedVersion uint64) error {
	ctx, span := tracer.Start(ctx, "repository.AppendMovement")
	defer span.End()

	span.SetAttributes(
		attribute.String("movement.product_key", movement.ProductKey),
		attribute.String("movement.type", string(movement.Type)),
		attribute.Int("movement.magnitude", movement.Magnitude),
		attribute.Int64("balance.expected_version", int64(expectedVersion)),
	)

	err := r.GormLedgerRepository.AppendMovement(ctx, movement, balance, expectedVersion)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(
		attribute.Int("movement.id", int(movement.ID)),
		attribute.Int("balance.on_hand", balance.OnHand),
	)
	return nil
}

// FindBalance with tracing
func (r *TracingLedgerRepository) FindBalance(ctx context.Context, productKey string) (*domain.ProductBalance, error) {
	ctx, span := tracer.Start(ctx, "repository.FindBalance")
	defer span.End()

	span.SetAttributes(attribute.String("balance.product_key", productKey))

	balance, err := r.GormLedgerRepository.FindBalance(ctx, productKey)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("balance.on_hand", balance.OnHand),
		attribute.Int64("balance.version", int64(balance.Version)),
	)
	return balance, nil
}

// ListMovements with tracing
func (r *TracingLedgerRepository) ListMovements(ctx context.Context, filter domain.MovementFilter, limit int, cursor *domain.Cursor) ([]domain.Movement, error) {
	ctx, span := tracer.Start(ctx, "repository.ListMovements")
	defer span.End()

	span.SetAttributes(
		attribute.String("filter.product_key", filter.ProductKey),
		attribute.String("filter.type", string(filter.Type)),
		attribute.Int("query.limit", limit),
		attribute.Bool("query.has_cursor", cursor != nil),
	)

	movements, err := r.GormLedgerRepository.ListMovements(ctx, filter, limit, cursor)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("result.count", len(movements)))
	return movements, nil
}
