package query

import (
	"context"
	"fmt"

	"github.com/tair/inventory-ledger/internal/ledger/domain"
)

// SummaryStatsQuery represents the query to get movement statistics.
// An empty ProductKeys slice means "all products".
type SummaryStatsQuery struct {
	ProductKeys []string
}

// SummaryStats represents movement statistics
type SummaryStats struct {
	TotalMovements int64                         `json:"total_movements"`
	CountsByType   map[domain.MovementType]int64 `json:"counts_by_type"`
}

// SummaryStatsHandler handles summary stats queries
type SummaryStatsHandler struct {
	repo domain.LedgerRepository
}

// NewSummaryStatsHandler creates a new summary stats handler
func NewSummaryStatsHandler(repo domain.LedgerRepository) *SummaryStatsHandler {
	return &SummaryStatsHandler{repo: repo}
}

// Handle executes the summary stats query. Counts reflect committed state:
// a movement either shows up in both the total and its type bucket, or in
// neither.
func (h *SummaryStatsHandler) Handle(ctx context.Context, q SummaryStatsQuery) (*SummaryStats, error) {
	counts, err := h.repo.CountMovementsByType(ctx, q.ProductKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to count movements by type: %w", err)
	}

	var total int64
	for _, n := range counts {
		total += n
	}

	return &SummaryStats{
		TotalMovements: total,
		CountsByType:   counts,
	}, nil
}
