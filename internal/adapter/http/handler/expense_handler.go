package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/splitledger/splitledger/internal/adapter/http/dto"
	"github.com/splitledger/splitledger/internal/adapter/http/middleware"
	"github.com/splitledger/splitledger/internal/domain"
	"github.com/splitledger/splitledger/internal/infrastructure/metrics"
	"github.com/splitledger/splitledger/internal/usecase"
)

// ExpenseService defines the behavior needed by ExpenseHandler.
type ExpenseService interface {
	CreateExpense(ctx context.Context, input usecase.CreateExpenseInput) (*domain.Expense, error)
	GetExpense(ctx context.Context, expenseID, actorID string) (*domain.Expense, error)
	UpdateExpense(ctx context.Context, input usecase.UpdateExpenseInput) (*domain.Expense, error)
	DeleteExpense(ctx context.Context, expenseID, actorID string) error
	ListExpenses(ctx context.Context, groupID, actorID string) ([]*domain.Expense, error)
}

// ExpenseHandler handles expense CRUD endpoints.
type ExpenseHandler struct {
	expenseUC ExpenseService
	metrics   *metrics.Metrics
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseUC ExpenseService, m *metrics.Metrics) *ExpenseHandler {
	return &ExpenseHandler{expenseUC: expenseUC, metrics: m}
}

// Create records an expense in a group and computes its splits.
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	expense, err := h.expenseUC.CreateExpense(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "id"), actor.ID))
	if err != nil {
		writeDomainError(w, err, "failed to create expense")
		return
	}

	h.metrics.ExpensesCreated.Inc()
	h.metrics.ExpenseAmount.Observe(expense.Amount.InexactFloat64())
	h.metrics.SplitsComputed.WithLabelValues(string(expense.SplitType)).Inc()
	writeJSON(w, http.StatusCreated, dto.ExpenseFromDomain(expense))
}

// List lists a group's expenses.
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	expenses, err := h.expenseUC.ListExpenses(r.Context(), chi.URLParam(r, "id"), actor.ID)
	if err != nil {
		writeDomainError(w, err, "failed to list expenses")
		return
	}

	writeJSON(w, http.StatusOK, dto.ExpensesFromDomain(expenses))
}

// Get retrieves an expense.
func (h *ExpenseHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	expense, err := h.expenseUC.GetExpense(r.Context(), chi.URLParam(r, "id"), actor.ID)
	if err != nil {
		writeDomainError(w, err, "failed to get expense")
		return
	}

	writeJSON(w, http.StatusOK, dto.ExpenseFromDomain(expense))
}

// Update replaces an expense. Splits are recomputed from the submitted
// policy.
func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.UpdateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	expense, err := h.expenseUC.UpdateExpense(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "id"), actor.ID))
	if err != nil {
		writeDomainError(w, err, "failed to update expense")
		return
	}

	h.metrics.ExpensesUpdated.Inc()
	writeJSON(w, http.StatusOK, dto.ExpenseFromDomain(expense))
}

// Delete deletes an expense.
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	if err := h.expenseUC.DeleteExpense(r.Context(), chi.URLParam(r, "id"), actor.ID); err != nil {
		writeDomainError(w, err, "failed to delete expense")
		return
	}

	h.metrics.ExpensesDeleted.Inc()
	w.WriteHeader(http.StatusNoContent)
}
