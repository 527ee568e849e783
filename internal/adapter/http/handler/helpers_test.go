package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/splitledger/splitledger/internal/adapter/http/middleware"
	"github.com/splitledger/splitledger/internal/domain"
	"github.com/splitledger/splitledger/internal/infrastructure/metrics"
)

func newTestMetrics() *metrics.Metrics {
	return metrics.NewWith(prometheus.NewRegistry())
}

// newRequest builds a request carrying an authenticated user and chi
// URL params, the way the router middleware would.
func newRequest(t *testing.T, method, target string, body io.Reader, userID string, params map[string]string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(method, target, body)

	if userID != "" {
		user := &domain.User{ID: userID, Email: userID + "@example.com"}
		req = req.WithContext(context.WithValue(req.Context(), middleware.UserContextKey, user))
	}

	if len(params) > 0 {
		routeCtx := chi.NewRouteContext()
		for key, value := range params {
			routeCtx.URLParams.Add(key, value)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	}

	return req
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrGroupNotFound, http.StatusNotFound},
		{domain.ErrExpenseNotFound, http.StatusNotFound},
		{domain.ErrUnauthorized, http.StatusForbidden},
		{domain.ErrAlreadyMember, http.StatusConflict},
		{domain.ErrMemberHasDebts, http.StatusConflict},
		{domain.ErrInviteExpired, http.StatusGone},
		{domain.ErrInviteUsed, http.StatusConflict},
		{domain.ErrSenderNotOwing, http.StatusUnprocessableEntity},
		{domain.ErrAmountExceedsOwed, http.StatusUnprocessableEntity},
		{domain.ErrSplitMismatch, http.StatusBadRequest},
		{domain.ErrInvalidAmount, http.StatusBadRequest},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := mapDomainError(tt.err); got != tt.want {
			t.Errorf("mapDomainError(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
