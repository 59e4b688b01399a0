package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/tair/inventory-ledger/internal/ledger/domain"
	"github.com/tair/inventory-ledger/internal/ledger/usecase/command"
	"github.com/tair/inventory-ledger/internal/ledger/usecase/query"
	"github.com/tair/inventory-ledger/pkg/logger"
)

// LedgerHandler handles HTTP requests for the inventory ledger
type LedgerHandler struct {
	registerHandler *command.RegisterProductHandler
	applyHandler    *command.ApplyMovementHandler
	retireHandler   *command.RetireProductHandler
	balanceHandler  *query.GetBalanceHandler
	balancesHandler *query.ListBalancesHandler
	listHandler     *query.ListMovementsHandler
	statsHandler    *query.SummaryStatsHandler
	lowStockHandler *query.LowStockHandler
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(
	registerHandler *command.RegisterProductHandler,
	applyHandler *command.ApplyMovementHandler,
	retireHandler *command.RetireProductHandler,
	balanceHandler *query.GetBalanceHandler,
	balancesHandler *query.ListBalancesHandler,
	listHandler *query.ListMovementsHandler,
	statsHandler *query.SummaryStatsHandler,
	lowStockHandler *query.LowStockHandler,
) *LedgerHandler {
	return &LedgerHandler{
		registerHandler: registerHandler,
		applyHandler:    applyHandler,
		retireHandler:   retireHandler,
		balanceHandler:  balanceHandler,
		balancesHandler: balancesHandler,
		listHandler:     listHandler,
		statsHandler:    statsHandler,
		lowStockHandler: lowStockHandler,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// RegisterProduct handles POST /api/products
func (h *LedgerHandler) RegisterProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductKey    string `json:"product_key"`
		InitialOnHand int    `json:"initial_on_hand"`
		MinQuantity   int    `json:"min_quantity"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	balance, err := h.registerHandler.Handle(r.Context(), command.RegisterProductCommand{
		ProductKey:    req.ProductKey,
		InitialOnHand: req.InitialOnHand,
		MinQuantity:   req.MinQuantity,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Product registered successfully",
		Data:    balance,
	})
}

// RetireProduct handles DELETE /api/products/{key}
func (h *LedgerHandler) RetireProduct(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	err := h.retireHandler.Handle(r.Context(), command.RetireProductCommand{
		ProductKey: vars["key"],
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Product retired successfully",
	})
}

// GetBalance handles GET /api/balances/{key}
func (h *LedgerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	view, err := h.balanceHandler.Handle(r.Context(), query.GetBalanceQuery{ProductKey: vars["key"]})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    view,
	})
}

// ListBalances handles GET /api/balances
func (h *LedgerHandler) ListBalances(w http.ResponseWriter, r *http.Request) {
	includeRetired := r.URL.Query().Get("include_retired") == "true"

	views, err := h.balancesHandler.Handle(r.Context(), query.ListBalancesQuery{IncludeRetired: includeRetired})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    views,
	})
}

// ApplyMovement handles POST /api/movements
func (h *LedgerHandler) ApplyMovement(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductKey   string `json:"product_key"`
		MovementType string `json:"movement_type"`
		Magnitude    int    `json:"magnitude"`
		ReferenceID  string `json:"reference_id"`
		Notes        string `json:"notes"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	movement, err := h.applyHandler.Handle(r.Context(), command.ApplyMovementCommand{
		ProductKey:  req.ProductKey,
		Type:        domain.MovementType(req.MovementType),
		Magnitude:   req.Magnitude,
		ReferenceID: req.ReferenceID,
		Notes:       req.Notes,
	})
	if err != nil {
		logger.Warn(r.Context()).
			Err(err).
			Str("product_key", req.ProductKey).
			Str("movement_type", req.MovementType).
			Msg("Movement rejected")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Movement applied successfully",
		Data:    movement,
	})
}

// ListMovements handles GET /api/movements
func (h *LedgerHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	q := query.ListMovementsQuery{
		ProductKey: r.URL.Query().Get("product_key"),
		Type:       domain.MovementType(r.URL.Query().Get("movement_type")),
		Cursor:     r.URL.Query().Get("cursor"),
	}
	q.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))

	if from, ok := parseTimeParam(r, "from"); ok {
		q.From = &from
	}
	if to, ok := parseTimeParam(r, "to"); ok {
		q.To = &to
	}

	page, err := h.listHandler.Handle(r.Context(), q)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    page,
	})
}

// SummaryStats handles GET /api/movements/stats
func (h *LedgerHandler) SummaryStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsHandler.Handle(r.Context(), query.SummaryStatsQuery{
		ProductKeys: r.URL.Query()["product_key"],
	})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to compute summary stats")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    stats,
	})
}

// LowStock handles GET /api/low-stock
func (h *LedgerHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	keys, err := h.lowStockHandler.Handle(r.Context(), query.LowStockQuery{})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to compute low stock set")
		respondError(w, err)
		return
	}
	if keys == nil {
		keys = []string{}
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    keys,
	})
}

// RegisterRoutes registers all ledger routes
func (h *LedgerHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/products", h.RegisterProduct).Methods("POST")
	router.HandleFunc("/api/products/{key}", h.RetireProduct).Methods("DELETE")
	router.HandleFunc("/api/balances", h.ListBalances).Methods("GET")
	router.HandleFunc("/api/balances/{key}", h.GetBalance).Methods("GET")
	router.HandleFunc("/api/movements", h.ApplyMovement).Methods("POST")
	router.HandleFunc("/api/movements", h.ListMovements).Methods("GET")
	router.HandleFunc("/api/movements/stats", h.SummaryStats).Methods("GET")
	router.HandleFunc("/api/low-stock", h.LowStock).Methods("GET")
}

// RegisterHealthCheck registers health check endpoint
func (h *LedgerHandler) RegisterHealthCheck(router *mux.Router, db *sql.DB) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, Response{
				Success: false,
				Error:   "Database unavailable",
			})
			return
		}

		respondJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Ledger service is healthy",
		})
	}).Methods("GET")
}

// respondError maps domain errors to HTTP status codes
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case domain.IsValidation(err):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrInsufficientStock):
		status = http.StatusConflict
	}

	respondJSON(w, status, Response{
		Success: false,
		Error:   err.Error(),
	})
}

func parseTimeParam(r *http.Request, name string) (time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
