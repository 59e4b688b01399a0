package query

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tair/inventory-ledger/internal/ledger/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListMovementsQuery represents the query to list movements
type ListMovementsQuery struct {
	ProductKey string
	Type       domain.MovementType
	From       *time.Time
	To         *time.Time
	Limit      int
	Cursor     string // opaque token from a previous page, empty for the first page
}

// MovementPage is one page of movement history, most-recent-first
type MovementPage struct {
	Items      []domain.Movement `json:"items"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// ListMovementsHandler handles list movements queries
type ListMovementsHandler struct {
	repo domain.LedgerRepository
}

// NewListMovementsHandler creates a new list movements handler
func NewListMovementsHandler(repo domain.LedgerRepository) *ListMovementsHandler {
	return &ListMovementsHandler{repo: repo}
}

// Handle executes the list movements query
func (h *ListMovementsHandler) Handle(ctx context.Context, q ListMovementsQuery) (*MovementPage, error) {
	if q.Type != "" && !q.Type.Valid() {
		return nil, domain.NewValidationError("movement_type", fmt.Sprintf("unknown movement type %q", q.Type))
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	var cursor *domain.Cursor
	if q.Cursor != "" {
		c, err := decodeCursor(q.Cursor)
		if err != nil {
			return nil, domain.NewValidationError("cursor", "malformed cursor token")
		}
		cursor = c
	}

	filter := domain.MovementFilter{
		ProductKey: q.ProductKey,
		Type:       q.Type,
		From:       q.From,
		To:         q.To,
	}

	items, err := h.repo.ListMovements(ctx, filter, limit, cursor)
	if err != nil {
		return nil, err
	}

	page := &MovementPage{Items: items}
	if len(items) == limit {
		last := items[len(items)-1]
		page.NextCursor = encodeCursor(domain.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}

// encodeCursor serializes a keyset position into an opaque token
func encodeCursor(c domain.Cursor) string {
	raw := fmt.Sprintf("%d:%d", c.CreatedAt.UnixNano(), c.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// decodeCursor parses a token produced by encodeCursor
func decodeCursor(token string) (*domain.Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}
	parts := strings.SplitN(string(raw), ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("malformed cursor %q", raw)
	}
	nanos, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil, err
	}
	id, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return nil, err
	}
	return &domain.Cursor{CreatedAt: time.Unix(0, nanos).UTC(), ID: uint(id)}, nil
}
