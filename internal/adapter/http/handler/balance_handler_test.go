package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/splitledger/splitledger/internal/adapter/http/dto"
	"github.com/splitledger/splitledger/internal/domain"
	"github.com/splitledger/splitledger/internal/usecase"
)

type balanceServiceStub struct {
	balancesFn    func(ctx context.Context, groupID, actorID string) ([]usecase.ParticipantBalance, error)
	debtsFn       func(ctx context.Context, groupID, actorID string) ([]domain.Balance, error)
	settlementsFn func(ctx context.Context, groupID, actorID string) ([]domain.Settlement, error)
	summaryFn     func(ctx context.Context, groupID, actorID string) (*usecase.GroupSummary, error)
	consistencyFn func(ctx context.Context, groupID, actorID string) (*usecase.ConsistencyResult, error)
}

func (s *balanceServiceStub) GetNetBalances(ctx context.Context, groupID, actorID string) ([]usecase.ParticipantBalance, error) {
	return s.balancesFn(ctx, groupID, actorID)
}

func (s *balanceServiceStub) GetDebtMatrix(ctx context.Context, groupID, actorID string) ([]domain.Balance, error) {
	return s.debtsFn(ctx, groupID, actorID)
}

func (s *balanceServiceStub) SuggestSettlements(ctx context.Context, groupID, actorID string) ([]domain.Settlement, error) {
	return s.settlementsFn(ctx, groupID, actorID)
}

func (s *balanceServiceStub) GetSummary(ctx context.Context, groupID, actorID string) (*usecase.GroupSummary, error) {
	return s.summaryFn(ctx, groupID, actorID)
}

func (s *balanceServiceStub) CheckConsistency(ctx context.Context, groupID, actorID string) (*usecase.ConsistencyResult, error) {
	return s.consistencyFn(ctx, groupID, actorID)
}

func TestBalanceHandler_Balances_Success(t *testing.T) {
	handler := NewBalanceHandler(&balanceServiceStub{
		balancesFn: func(ctx context.Context, groupID, actorID string) ([]usecase.ParticipantBalance, error) {
			if groupID != "grp-1" || actorID != "user-1" {
				t.Fatalf("unexpected args: %s %s", groupID, actorID)
			}
			return []usecase.ParticipantBalance{
				{ParticipantID: "user-1", Name: "Ada", Amount: decimal.RequireFromString("50.00")},
				{ParticipantID: "user-2", Name: "Ben", Amount: decimal.RequireFromString("-50.00")},
			}, nil
		},
	}, newTestMetrics())

	req := newRequest(t, http.MethodGet, "/api/v1/groups/grp-1/balances", nil, "user-1", map[string]string{"id": "grp-1"})
	rec := httptest.NewRecorder()

	handler.Balances(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp []usecase.ParticipantBalance
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 2 || resp[0].ParticipantID != "user-1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestBalanceHandler_Debts_Success(t *testing.T) {
	handler := NewBalanceHandler(&balanceServiceStub{
		debtsFn: func(ctx context.Context, groupID, actorID string) ([]domain.Balance, error) {
			return []domain.Balance{
				{From: "user-2", To: "user-1", Amount: decimal.RequireFromString("50.00")},
			}, nil
		},
	}, newTestMetrics())

	req := newRequest(t, http.MethodGet, "/api/v1/groups/grp-1/debts", nil, "user-1", map[string]string{"id": "grp-1"})
	rec := httptest.NewRecorder()

	handler.Debts(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp []dto.TransferResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].From != "user-2" || resp[0].To != "user-1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestBalanceHandler_Settlements_NonMember(t *testing.T) {
	handler := NewBalanceHandler(&balanceServiceStub{
		settlementsFn: func(ctx context.Context, groupID, actorID string) ([]domain.Settlement, error) {
			return nil, domain.ErrGroupNotFound
		},
	}, newTestMetrics())

	req := newRequest(t, http.MethodGet, "/api/v1/groups/grp-1/settlements", nil, "user-9", map[string]string{"id": "grp-1"})
	rec := httptest.NewRecorder()

	handler.Settlements(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestBalanceHandler_Consistency_Success(t *testing.T) {
	handler := NewBalanceHandler(&balanceServiceStub{
		consistencyFn: func(ctx context.Context, groupID, actorID string) (*usecase.ConsistencyResult, error) {
			return &usecase.ConsistencyResult{
				GroupID:    groupID,
				Sum:        decimal.Zero,
				Consistent: true,
				CheckedAt:  time.Now().UTC(),
			}, nil
		},
	}, newTestMetrics())

	req := newRequest(t, http.MethodGet, "/api/v1/groups/grp-1/consistency", nil, "user-1", map[string]string{"id": "grp-1"})
	rec := httptest.NewRecorder()

	handler.Consistency(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["consistent"] != true || resp["group_id"] != "grp-1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
