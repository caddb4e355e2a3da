package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sells-group/labinv/internal/model"
	"github.com/sells-group/labinv/internal/normalize"
	"github.com/sells-group/labinv/internal/store"
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000
)

// Store is the read side of the inventory store.
type Store interface {
	ListChemicals(ctx context.Context, filter store.ChemicalFilter) ([]model.StoredChemical, error)
	GetChemical(ctx context.Context, id int64) (*model.StoredChemical, error)
	Coverage(ctx context.Context) (*model.Coverage, error)
	ListBudgetItems(ctx context.Context) ([]model.BudgetItem, error)
	ListConsumables(ctx context.Context) ([]model.Consumable, error)
	ListImportRuns(ctx context.Context, limit int) ([]model.ImportRun, error)
	Ping(ctx context.Context) error
}

// Matcher resolves free-text names against the reference knowledge base.
type Matcher interface {
	Lookup(name string) (model.Match, bool)
}

// Handler holds the dependencies of the HTTP handlers.
type Handler struct {
	Store   Store
	Matcher Matcher
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ChemicalList is the body of GET /api/chemicals.
type ChemicalList struct {
	Chemicals []model.StoredChemical `json:"chemicals"`
	Count     int                    `json:"count"`
	Limit     int                    `json:"limit"`
	Offset    int                    `json:"offset"`
}

// CostReport is the body of GET /api/budget and GET /api/consumables.
type CostReport[T any] struct {
	Items   []T                     `json:"items"`
	Summary []model.CategorySummary `json:"summary"`
	Total   decimal.Decimal         `json:"total"`
}

// LookupResponse is the body of GET /api/reference/lookup.
type LookupResponse struct {
	Query   string                `json:"query"`
	Matched bool                  `json:"matched"`
	Pass    model.MatchPass       `json:"pass,omitempty"`
	Entry   *model.ReferenceEntry `json:"entry,omitempty"`
}

// Health reports whether the store is reachable.
// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "store unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListChemicals returns a page of chemicals.
// GET /api/chemicals?category=&search=&limit=&offset=
func (h *Handler) ListChemicals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := intParam(q.Get("limit"), defaultPageSize)
	if err != nil || limit < 1 || limit > maxPageSize {
		writeError(w, http.StatusBadRequest, "limit must be between 1 and 1000", nil)
		return
	}
	offset, err := intParam(q.Get("offset"), 0)
	if err != nil || offset < 0 {
		writeError(w, http.StatusBadRequest, "offset must be a non-negative integer", nil)
		return
	}

	chems, err := h.Store.ListChemicals(r.Context(), store.ChemicalFilter{
		Category: strings.TrimSpace(q.Get("category")),
		Search:   strings.TrimSpace(q.Get("search")),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list chemicals", err)
		return
	}
	if chems == nil {
		chems = []model.StoredChemical{}
	}
	writeJSON(w, http.StatusOK, ChemicalList{Chemicals: chems, Count: len(chems), Limit: limit, Offset: offset})
}

// GetChemical returns one chemical.
// GET /api/chemicals/{id}
func (h *Handler) GetChemical(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid chemical id", nil)
		return
	}

	chem, err := h.Store.GetChemical(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "chemical not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get chemical", err)
		return
	}
	writeJSON(w, http.StatusOK, chem)
}

// Coverage reports how many chemicals carry CAS numbers and SDS links.
// GET /api/chemicals/coverage
func (h *Handler) Coverage(w http.ResponseWriter, r *http.Request) {
	cov, err := h.Store.Coverage(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute coverage", err)
		return
	}
	writeJSON(w, http.StatusOK, cov)
}

// Budget returns the budget lines with per-category totals, largest first.
// GET /api/budget
func (h *Handler) Budget(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListBudgetItems(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list budget", err)
		return
	}
	writeJSON(w, http.StatusOK, newCostReport(items, normalize.SummarizeBudget(items)))
}

// Consumables returns the consumable lines with per-category totals.
// GET /api/consumables
func (h *Handler) Consumables(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListConsumables(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list consumables", err)
		return
	}
	writeJSON(w, http.StatusOK, newCostReport(items, normalize.SummarizeConsumables(items)))
}

func newCostReport[T any](items []T, summary []model.CategorySummary) CostReport[T] {
	if items == nil {
		items = []T{}
	}
	if summary == nil {
		summary = []model.CategorySummary{}
	}
	return CostReport[T]{Items: items, Summary: summary, Total: normalize.TotalCost(summary)}
}

// Lookup resolves a chemical name against the knowledge base. A miss is a
// normal answer, not an error.
// GET /api/reference/lookup?name=
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	resp := LookupResponse{Query: name}
	if m, ok := h.Matcher.Lookup(name); ok {
		resp.Matched = true
		resp.Pass = m.Pass
		resp.Entry = &m.Entry
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListImports returns the most recent import runs.
// GET /api/imports?limit=
func (h *Handler) ListImports(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r.URL.Query().Get("limit"), 20)
	if err != nil || limit < 1 || limit > maxPageSize {
		writeError(w, http.StatusBadRequest, "limit must be between 1 and 1000", nil)
		return
	}

	runs, err := h.Store.ListImportRuns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list imports", err)
		return
	}
	if runs == nil {
		runs = []model.ImportRun{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func intParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
		if status >= http.StatusInternalServerError {
			zap.L().Error("api: "+message, zap.Error(err))
		}
	}
	writeJSON(w, status, resp)
}
