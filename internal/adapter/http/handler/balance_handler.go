package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/splitledger/splitledger/internal/adapter/http/dto"
	"github.com/splitledger/splitledger/internal/adapter/http/middleware"
	"github.com/splitledger/splitledger/internal/domain"
	"github.com/splitledger/splitledger/internal/infrastructure/metrics"
	"github.com/splitledger/splitledger/internal/usecase"
)

// BalanceService defines the behavior needed by BalanceHandler.
type BalanceService interface {
	GetNetBalances(ctx context.Context, groupID, actorID string) ([]usecase.ParticipantBalance, error)
	GetDebtMatrix(ctx context.Context, groupID, actorID string) ([]domain.Balance, error)
	SuggestSettlements(ctx context.Context, groupID, actorID string) ([]domain.Settlement, error)
	GetSummary(ctx context.Context, groupID, actorID string) (*usecase.GroupSummary, error)
	CheckConsistency(ctx context.Context, groupID, actorID string) (*usecase.ConsistencyResult, error)
}

// BalanceHandler handles balance, debt and settlement read endpoints.
type BalanceHandler struct {
	balanceUC BalanceService
	metrics   *metrics.Metrics
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceUC BalanceService, m *metrics.Metrics) *BalanceHandler {
	return &BalanceHandler{balanceUC: balanceUC, metrics: m}
}

// Balances returns each member's net position in participant order.
func (h *BalanceHandler) Balances(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	balances, err := h.balanceUC.GetNetBalances(r.Context(), chi.URLParam(r, "id"), actor.ID)
	if err != nil {
		writeDomainError(w, err, "failed to compute balances")
		return
	}

	writeJSON(w, http.StatusOK, balances)
}

// Debts returns the aggregate who-owes-whom matrix. Settlement payments
// are not part of this view.
func (h *BalanceHandler) Debts(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	debts, err := h.balanceUC.GetDebtMatrix(r.Context(), chi.URLParam(r, "id"), actor.ID)
	if err != nil {
		writeDomainError(w, err, "failed to compute debts")
		return
	}

	writeJSON(w, http.StatusOK, dto.DebtsFromDomain(debts))
}

// Settlements returns a minimal plan of transfers that would settle the
// group, taking recorded payments into account.
func (h *BalanceHandler) Settlements(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	settlements, err := h.balanceUC.SuggestSettlements(r.Context(), chi.URLParam(r, "id"), actor.ID)
	if err != nil {
		writeDomainError(w, err, "failed to suggest settlements")
		return
	}

	h.metrics.SettlementsSuggested.Observe(float64(len(settlements)))
	writeJSON(w, http.StatusOK, dto.SettlementsFromDomain(settlements))
}

// Summary returns the group's spending totals per participant.
func (h *BalanceHandler) Summary(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	summary, err := h.balanceUC.GetSummary(r.Context(), chi.URLParam(r, "id"), actor.ID)
	if err != nil {
		writeDomainError(w, err, "failed to build summary")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// Consistency verifies the group's zero-sum invariant.
func (h *BalanceHandler) Consistency(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	result, err := h.balanceUC.CheckConsistency(r.Context(), chi.URLParam(r, "id"), actor.ID)
	if err != nil {
		writeDomainError(w, err, "failed to check consistency")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"group_id":   result.GroupID,
		"sum":        result.Sum,
		"consistent": result.Consistent,
		"checked_at": result.CheckedAt,
	})
}
