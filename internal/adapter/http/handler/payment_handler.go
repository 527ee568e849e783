package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/splitledger/splitledger/internal/adapter/http/dto"
	"github.com/splitledger/splitledger/internal/adapter/http/middleware"
	"github.com/splitledger/splitledger/internal/domain"
	"github.com/splitledger/splitledger/internal/infrastructure/metrics"
	"github.com/splitledger/splitledger/internal/usecase"
)

// PaymentService defines the behavior needed by PaymentHandler.
type PaymentService interface {
	CreatePayment(ctx context.Context, input usecase.CreatePaymentInput) (*domain.SettlementPayment, error)
	GetPayment(ctx context.Context, paymentID, actorID string) (*domain.SettlementPayment, error)
	ListPayments(ctx context.Context, groupID, actorID string) ([]*domain.SettlementPayment, error)
	DeletePayment(ctx context.Context, paymentID, actorID string) error
}

// PaymentHandler handles settlement payment endpoints.
type PaymentHandler struct {
	paymentUC PaymentService
	metrics   *metrics.Metrics
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentUC PaymentService, m *metrics.Metrics) *PaymentHandler {
	return &PaymentHandler{paymentUC: paymentUC, metrics: m}
}

// Create records a settlement payment after validating it against the
// group's current net balances.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	payment, err := h.paymentUC.CreatePayment(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "id"), actor.ID))
	if err != nil {
		if reason := rejectionReason(err); reason != "" {
			h.metrics.PaymentRejected.WithLabelValues(reason).Inc()
		}
		writeDomainError(w, err, "failed to record payment")
		return
	}

	h.metrics.PaymentsCreated.Inc()
	h.metrics.PaymentAmount.Observe(payment.Amount.InexactFloat64())
	writeJSON(w, http.StatusCreated, dto.PaymentFromDomain(payment))
}

// List lists a group's settlement payments.
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	payments, err := h.paymentUC.ListPayments(r.Context(), chi.URLParam(r, "id"), actor.ID)
	if err != nil {
		writeDomainError(w, err, "failed to list payments")
		return
	}

	writeJSON(w, http.StatusOK, dto.PaymentsFromDomain(payments))
}

// Get retrieves a settlement payment.
func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	payment, err := h.paymentUC.GetPayment(r.Context(), chi.URLParam(r, "id"), actor.ID)
	if err != nil {
		writeDomainError(w, err, "failed to get payment")
		return
	}

	writeJSON(w, http.StatusOK, dto.PaymentFromDomain(payment))
}

// Delete removes a recorded payment. Only its recorder may do this.
func (h *PaymentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	if err := h.paymentUC.DeletePayment(r.Context(), chi.URLParam(r, "id"), actor.ID); err != nil {
		writeDomainError(w, err, "failed to delete payment")
		return
	}

	h.metrics.PaymentsDeleted.Inc()
	w.WriteHeader(http.StatusNoContent)
}

// rejectionReason labels payment guard rejections for metrics. Other
// errors return an empty string.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrSameParticipant):
		return "same_participant"
	case errors.Is(err, domain.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, domain.ErrNotAMember):
		return "not_a_member"
	case errors.Is(err, domain.ErrSenderNotOwing):
		return "sender_not_owing"
	case errors.Is(err, domain.ErrRecipientNotOwed):
		return "recipient_not_owed"
	case errors.Is(err, domain.ErrAmountExceedsOwed):
		return "amount_exceeds_owed"
	default:
		return ""
	}
}
