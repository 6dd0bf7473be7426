package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/eugenenazirov/decimal-knapsack/internal/knapsack"
	"github.com/eugenenazirov/decimal-knapsack/internal/report"
	"github.com/eugenenazirov/decimal-knapsack/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Handler wires solver and storage dependencies into HTTP handlers.
type Handler struct {
	solver  knapsack.Solver
	storage storage.Storage
	metrics *metrics
	logger  *zap.Logger

	clock func() time.Time

	mu                 sync.RWMutex
	inventoryUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithLogger sets the logger used for errors that have no request to report
// them on.
func WithLogger(logger *zap.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(solver knapsack.Solver, store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		solver:  solver,
		storage: store,
		metrics: newMetrics(),
		logger:  zap.NewNop(),
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.inventoryUpdatedAt = h.clock()
	inv, err := store.GetInventory()
	if err != nil {
		h.logger.Warn("inventory gauge not initialized", zap.Error(err))
		return h
	}
	h.metrics.inventoryItems.Set(float64(inv.Len()))
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetInventory(w http.ResponseWriter, r *http.Request) {
	_ = r
	inv, err := h.storage.GetInventory()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := inventoryResponse{
		Capacity:  inv.Capacity(),
		Items:     toPayload(inv.Items()),
		UpdatedAt: h.currentInventoryUpdatedAt(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePutInventory(w http.ResponseWriter, r *http.Request) {
	var req inventoryPayload
	if err := decodeValidated(w, r, inventorySchema, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	inv := req.Items.inventory(req.Capacity)
	if err := h.storage.SetInventory(inv); err != nil {
		if errors.Is(err, storage.ErrInvalidInventory) {
			writeError(w, http.StatusBadRequest, "Invalid inventory", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	h.markInventoryUpdated()

	stored, err := h.storage.GetInventory()
	if err != nil {
		writeInternalError(w, err)
		return
	}
	h.metrics.inventoryItems.Set(float64(stored.Len()))

	resp := inventoryResponse{
		Capacity:  stored.Capacity(),
		Items:     toPayload(stored.Items()),
		UpdatedAt: h.currentInventoryUpdatedAt(),
		Message:   "Inventory updated successfully",
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleStep(w http.ResponseWriter, r *http.Request) {
	var req stepRequest
	if err := decodeValidated(w, r, stepSchema, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	step, err := knapsack.DeriveStep(req.Sizes)
	if err != nil {
		if errors.Is(err, knapsack.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "Invalid sizes", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stepResponse{Step: step})
}

func (h *Handler) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req solveRequest
	if err := decodeValidated(w, r, solveSchema, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	inv, err := h.storage.GetInventory()
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if len(req.Items) > 0 {
		inv = req.Items.inventory(inv.Capacity())
	}
	if req.Capacity != nil {
		inv.SetCapacity(*req.Capacity)
	}

	start := time.Now()
	sol, solveErr := h.solver.Solve(inv)
	elapsed := time.Since(start)

	if solveErr != nil {
		switch {
		case errors.Is(solveErr, knapsack.ErrInvalidInput):
			h.metrics.observeSolve(outcomeInvalid, elapsed, 0)
			if inv.Len() == 0 {
				writeError(w, http.StatusBadRequest, "Invalid request", solveErr.Error(),
					"Provide items in the request or store an inventory with PUT /api/inventory")
				return
			}
			writeError(w, http.StatusBadRequest, "Invalid request", solveErr.Error())
		case errors.Is(solveErr, knapsack.ErrTableTooLarge):
			h.metrics.observeSolve(outcomeTooLarge, elapsed, 0)
			writeError(w, http.StatusUnprocessableEntity, "Problem too large", solveErr.Error(),
				"Use coarser item sizes or a smaller capacity")
		default:
			h.metrics.observeSolve(outcomeError, elapsed, 0)
			writeInternalError(w, solveErr)
		}
		return
	}
	h.metrics.observeSolve(outcomeOK, elapsed, sol.Cells)

	rows := report.Rows(inv, sol)
	items := make([]itemPayload, 0, len(rows))
	for _, row := range rows {
		items = append(items, itemPayload{Name: row.Name, Size: row.Size, Price: row.Price})
	}

	resp := solveResponse{
		Capacity:          sol.Capacity,
		Step:              sol.Step,
		UsableCapacity:    sol.UsableCapacity,
		Items:             items,
		TotalSize:         sol.TotalSize,
		TotalScore:        sol.Score,
		Cells:             sol.Cells,
		CalculationTimeMs: elapsed.Milliseconds(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) currentInventoryUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.inventoryUpdatedAt
}

func (h *Handler) markInventoryUpdated() {
	h.mu.Lock()
	h.inventoryUpdatedAt = h.clock()
	h.mu.Unlock()
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type itemPayload struct {
	Name  string          `json:"name"`
	Size  decimal.Decimal `json:"size"`
	Price decimal.Decimal `json:"price"`
}

type itemList []itemPayload

// inventory builds an inventory from the payload items; repeated names
// overwrite earlier ones.
func (l itemList) inventory(capacity decimal.Decimal) *knapsack.Inventory {
	inv := knapsack.NewInventory(capacity)
	for _, it := range l {
		inv.Put(knapsack.Item{Name: it.Name, Size: it.Size, Price: it.Price})
	}
	return inv
}

func toPayload(items []knapsack.Item) []itemPayload {
	out := make([]itemPayload, 0, len(items))
	for _, it := range items {
		out = append(out, itemPayload{Name: it.Name, Size: it.Size, Price: it.Price})
	}
	return out
}

type inventoryPayload struct {
	Capacity decimal.Decimal `json:"capacity"`
	Items    itemList        `json:"items"`
}

type solveRequest struct {
	Capacity *decimal.Decimal `json:"capacity"`
	Items    itemList         `json:"items"`
}

type stepRequest struct {
	Sizes []decimal.Decimal `json:"sizes"`
}

type stepResponse struct {
	Step decimal.Decimal `json:"step"`
}

type inventoryResponse struct {
	Capacity  decimal.Decimal `json:"capacity"`
	Items     []itemPayload   `json:"items"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Message   string          `json:"message,omitempty"`
}

type solveResponse struct {
	Capacity          decimal.Decimal `json:"capacity"`
	Step              decimal.Decimal `json:"step"`
	UsableCapacity    decimal.Decimal `json:"usableCapacity"`
	Items             []itemPayload   `json:"items"`
	TotalSize         decimal.Decimal `json:"totalSize"`
	TotalScore        decimal.Decimal `json:"totalScore"`
	Cells             int             `json:"cells"`
	CalculationTimeMs int64           `json:"calculationTimeMs"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
