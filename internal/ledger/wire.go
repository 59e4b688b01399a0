//go:build wireinject
// +build wireinject

package ledger

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/tair/inventory-ledger/internal/ledger/notify"
	"github.com/tair/inventory-ledger/internal/ledger/usecase/command"
)

// InitializeService initializes the ledger service with all dependencies
func InitializeService(db *gorm.DB, notifier *notify.Notifier, config command.Config) (*Service, error) {
	wire.Build(
		RepositorySet,
		ProvideKeyLock,
		HandlerSet,
		NewService,
	)
	return nil, nil
}
