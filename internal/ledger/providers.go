package ledger

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/tair/inventory-ledger/internal/ledger/delivery/http"
	"github.com/tair/inventory-ledger/internal/ledger/domain"
	"github.com/tair/inventory-ledger/internal/ledger/repository"
	"github.com/tair/inventory-ledger/internal/ledger/usecase/command"
	"github.com/tair/inventory-ledger/internal/ledger/usecase/query"
	"github.com/tair/inventory-ledger/pkg/keylock"
)

// ProvideLedgerRepository provides the traced ledger repository
func ProvideLedgerRepository(db *gorm.DB) domain.LedgerRepository {
	return repository.NewTracingLedgerRepository(db)
}

// ProvideProductDirectory provides the balance-backed product directory
func ProvideProductDirectory(db *gorm.DB) domain.ProductDirectory {
	return repository.NewBalanceDirectory(db)
}

// ProvideKeyLock provides the per-product lock table. There must be
// exactly one per process: the HTTP and Kafka write paths share it.
func ProvideKeyLock() *keylock.KeyLock {
	return keylock.New()
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideLedgerRepository,
	ProvideProductDirectory,
)

var HandlerSet = wire.NewSet(
	command.NewRegisterProductHandler,
	command.NewApplyMovementHandler,
	command.NewRetireProductHandler,
	query.NewGetBalanceHandler,
	query.NewListBalancesHandler,
	query.NewListMovementsHandler,
	query.NewSummaryStatsHandler,
	query.NewLowStockHandler,
	http.NewLedgerHandler,
)
