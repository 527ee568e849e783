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

// InviteService defines the behavior needed by InviteHandler.
type InviteService interface {
	CreateInvite(ctx context.Context, input usecase.CreateInviteInput) (*domain.GroupInvite, error)
	ResolveInvite(ctx context.Context, key string) (*usecase.InvitePreview, error)
	AcceptInvite(ctx context.Context, key, userID string) (*domain.Group, error)
	ListInvites(ctx context.Context, groupID, actorID string) ([]*domain.GroupInvite, error)
}

// InviteHandler handles group invite endpoints.
type InviteHandler struct {
	inviteUC InviteService
	baseURL  string
	metrics  *metrics.Metrics
}

// NewInviteHandler creates a new InviteHandler. baseURL is the public
// prefix that invite links are served under.
func NewInviteHandler(inviteUC InviteService, baseURL string, m *metrics.Metrics) *InviteHandler {
	return &InviteHandler{inviteUC: inviteUC, baseURL: baseURL, metrics: m}
}

// Create creates a single-use invite for a group.
func (h *InviteHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	req := dto.CreateInviteRequest{}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
	}

	input, err := req.ToUseCaseInput(chi.URLParam(r, "id"), actor.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid expiry duration", err.Error())
		return
	}

	invite, err := h.inviteUC.CreateInvite(r.Context(), input)
	if err != nil {
		writeDomainError(w, err, "failed to create invite")
		return
	}

	h.metrics.InvitesCreated.Inc()
	writeJSON(w, http.StatusCreated, dto.InviteFromDomain(invite, h.baseURL))
}

// List lists a group's invites.
func (h *InviteHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	invites, err := h.inviteUC.ListInvites(r.Context(), chi.URLParam(r, "id"), actor.ID)
	if err != nil {
		writeDomainError(w, err, "failed to list invites")
		return
	}

	writeJSON(w, http.StatusOK, dto.InvitesFromDomain(invites, h.baseURL))
}

// Resolve previews an invite by link token or short code without
// consuming it. No authentication required: the recipient may not have
// an account yet.
func (h *InviteHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	preview, err := h.inviteUC.ResolveInvite(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		writeDomainError(w, err, "failed to resolve invite")
		return
	}

	writeJSON(w, http.StatusOK, dto.InvitePreviewResponse{
		GroupID:     preview.Invite.GroupID,
		GroupName:   preview.GroupName,
		MemberCount: preview.MemberCount,
		Code:        preview.Invite.Code,
		ExpiresAt:   preview.Invite.ExpiresAt,
	})
}

// Accept redeems an invite and adds the caller to its group.
func (h *InviteHandler) Accept(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	group, err := h.inviteUC.AcceptInvite(r.Context(), chi.URLParam(r, "key"), actor.ID)
	if err != nil {
		writeDomainError(w, err, "failed to accept invite")
		return
	}

	h.metrics.InvitesAccepted.Inc()
	writeJSON(w, http.StatusOK, dto.GroupFromDomain(group))
}
