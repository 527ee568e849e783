package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/splitledger/splitledger/internal/adapter/http/dto"
	"github.com/splitledger/splitledger/internal/domain"
	"github.com/splitledger/splitledger/internal/usecase"
)

type inviteServiceStub struct {
	createFn  func(ctx context.Context, input usecase.CreateInviteInput) (*domain.GroupInvite, error)
	resolveFn func(ctx context.Context, key string) (*usecase.InvitePreview, error)
	acceptFn  func(ctx context.Context, key, userID string) (*domain.Group, error)
	listFn    func(ctx context.Context, groupID, actorID string) ([]*domain.GroupInvite, error)
}

func (s *inviteServiceStub) CreateInvite(ctx context.Context, input usecase.CreateInviteInput) (*domain.GroupInvite, error) {
	return s.createFn(ctx, input)
}

func (s *inviteServiceStub) ResolveInvite(ctx context.Context, key string) (*usecase.InvitePreview, error) {
	return s.resolveFn(ctx, key)
}

func (s *inviteServiceStub) AcceptInvite(ctx context.Context, key, userID string) (*domain.Group, error) {
	return s.acceptFn(ctx, key, userID)
}

func (s *inviteServiceStub) ListInvites(ctx context.Context, groupID, actorID string) ([]*domain.GroupInvite, error) {
	return s.listFn(ctx, groupID, actorID)
}

const testInviteBaseURL = "http://localhost:8080/invites"

func TestInviteHandler_Create_EmptyBody(t *testing.T) {
	var captured usecase.CreateInviteInput
	handler := NewInviteHandler(&inviteServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateInviteInput) (*domain.GroupInvite, error) {
			captured = input
			return &domain.GroupInvite{
				ID:        "inv-1",
				GroupID:   input.GroupID,
				Token:     "tok-abc",
				Code:      "XK4P7Q",
				CreatedBy: input.ActorID,
			}, nil
		},
	}, testInviteBaseURL, newTestMetrics())

	// Invite creation takes no required fields, so an empty body is fine.
	req := newRequest(t, http.MethodPost, "/api/v1/groups/grp-1/invites", nil, "user-1", map[string]string{"id": "grp-1"})
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.GroupID != "grp-1" || captured.TTL != nil {
		t.Fatalf("expected input without TTL override, got %+v", captured)
	}

	var resp dto.InviteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.URL != testInviteBaseURL+"/tok-abc" || resp.Code != "XK4P7Q" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestInviteHandler_Create_CustomExpiry(t *testing.T) {
	var captured usecase.CreateInviteInput
	handler := NewInviteHandler(&inviteServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateInviteInput) (*domain.GroupInvite, error) {
			captured = input
			return &domain.GroupInvite{ID: "inv-1", GroupID: input.GroupID, Token: "tok", Code: "AAAAAA"}, nil
		},
	}, testInviteBaseURL, newTestMetrics())

	expiresIn := "48h"
	body, _ := json.Marshal(dto.CreateInviteRequest{ExpiresIn: &expiresIn})
	req := newRequest(t, http.MethodPost, "/api/v1/groups/grp-1/invites", bytes.NewReader(body), "user-1",
		map[string]string{"id": "grp-1"})
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.TTL == nil || *captured.TTL != 48*time.Hour {
		t.Fatalf("expected 48h TTL, got %+v", captured.TTL)
	}
}

func TestInviteHandler_Create_BadExpiry(t *testing.T) {
	handler := NewInviteHandler(&inviteServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateInviteInput) (*domain.GroupInvite, error) {
			t.Fatal("CreateInvite should not be called")
			return nil, nil
		},
	}, testInviteBaseURL, newTestMetrics())

	expiresIn := "two days"
	body, _ := json.Marshal(dto.CreateInviteRequest{ExpiresIn: &expiresIn})
	req := newRequest(t, http.MethodPost, "/api/v1/groups/grp-1/invites", bytes.NewReader(body), "user-1",
		map[string]string{"id": "grp-1"})
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestInviteHandler_Resolve_NoAuthRequired(t *testing.T) {
	expires := time.Now().UTC().Add(time.Hour)
	handler := NewInviteHandler(&inviteServiceStub{
		resolveFn: func(ctx context.Context, key string) (*usecase.InvitePreview, error) {
			if key != "XK4P7Q" {
				t.Fatalf("unexpected key: %s", key)
			}
			return &usecase.InvitePreview{
				Invite:      &domain.GroupInvite{GroupID: "grp-1", Code: "XK4P7Q", ExpiresAt: &expires},
				GroupName:   "Ski trip",
				MemberCount: 3,
			}, nil
		},
	}, testInviteBaseURL, newTestMetrics())

	// No user in context: previews are public.
	req := newRequest(t, http.MethodGet, "/api/v1/invites/XK4P7Q", nil, "", map[string]string{"key": "XK4P7Q"})
	rec := httptest.NewRecorder()

	handler.Resolve(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.InvitePreviewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.GroupName != "Ski trip" || resp.MemberCount != 3 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestInviteHandler_Resolve_Expired(t *testing.T) {
	handler := NewInviteHandler(&inviteServiceStub{
		resolveFn: func(ctx context.Context, key string) (*usecase.InvitePreview, error) {
			return nil, domain.ErrInviteExpired
		},
	}, testInviteBaseURL, newTestMetrics())

	req := newRequest(t, http.MethodGet, "/api/v1/invites/OLD123", nil, "", map[string]string{"key": "OLD123"})
	rec := httptest.NewRecorder()

	handler.Resolve(rec, req)

	if rec.Code != http.StatusGone {
		t.Fatalf("expected 410, got %d", rec.Code)
	}
}

func TestInviteHandler_Accept_Success(t *testing.T) {
	handler := NewInviteHandler(&inviteServiceStub{
		acceptFn: func(ctx context.Context, key, userID string) (*domain.Group, error) {
			if key != "tok-abc" || userID != "user-9" {
				t.Fatalf("unexpected args: %s %s", key, userID)
			}
			return &domain.Group{ID: "grp-1", Name: "Ski trip"}, nil
		},
	}, testInviteBaseURL, newTestMetrics())

	req := newRequest(t, http.MethodPost, "/api/v1/invites/tok-abc/accept", nil, "user-9", map[string]string{"key": "tok-abc"})
	rec := httptest.NewRecorder()

	handler.Accept(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.GroupResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "grp-1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestInviteHandler_Accept_AlreadyUsed(t *testing.T) {
	handler := NewInviteHandler(&inviteServiceStub{
		acceptFn: func(ctx context.Context, key, userID string) (*domain.Group, error) {
			return nil, domain.ErrInviteUsed
		},
	}, testInviteBaseURL, newTestMetrics())

	req := newRequest(t, http.MethodPost, "/api/v1/invites/tok-abc/accept", nil, "user-9", map[string]string{"key": "tok-abc"})
	rec := httptest.NewRecorder()

	handler.Accept(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}
