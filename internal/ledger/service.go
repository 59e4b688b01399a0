package ledger

import (
	"github.com/tair/inventory-ledger/internal/ledger/delivery/http"
	"github.com/tair/inventory-ledger/internal/ledger/usecase/command"
)

// Service bundles the wired entrypoints of the ledger: the HTTP handler
// and the apply-movement handler used by the Kafka consumer. Both share
// the same repository and per-product lock table.
type Service struct {
	HTTP  *http.LedgerHandler
	Apply *command.ApplyMovementHandler
}

// NewService creates a new service
func NewService(httpHandler *http.LedgerHandler, apply *command.ApplyMovementHandler) *Service {
	return &Service{
		HTTP:  httpHandler,
		Apply: apply,
	}
}
