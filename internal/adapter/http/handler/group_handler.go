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

// GroupService defines the behavior needed by GroupHandler.
type GroupService interface {
	CreateGroup(ctx context.Context, input usecase.CreateGroupInput) (*domain.Group, error)
	GetGroup(ctx context.Context, groupID, userID string) (*domain.Group, error)
	ListGroups(ctx context.Context, userID string) ([]*domain.Group, error)
	AddMember(ctx context.Context, input usecase.AddMemberInput) (*domain.Group, error)
	RemoveMember(ctx context.Context, input usecase.RemoveMemberInput) error
	DeleteGroup(ctx context.Context, groupID, actorID string) error
}

// GroupHandler handles group CRUD and membership endpoints.
type GroupHandler struct {
	groupUC GroupService
	metrics *metrics.Metrics
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(groupUC GroupService, m *metrics.Metrics) *GroupHandler {
	return &GroupHandler{groupUC: groupUC, metrics: m}
}

// Create creates a new group with the caller as first member.
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	group, err := h.groupUC.CreateGroup(r.Context(), req.ToUseCaseInput(actor.ID))
	if err != nil {
		writeDomainError(w, err, "failed to create group")
		return
	}

	h.metrics.GroupsCreated.Inc()
	writeJSON(w, http.StatusCreated, dto.GroupFromDomain(group))
}

// List lists the caller's groups.
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	groups, err := h.groupUC.ListGroups(r.Context(), actor.ID)
	if err != nil {
		writeDomainError(w, err, "failed to list groups")
		return
	}

	writeJSON(w, http.StatusOK, dto.GroupsFromDomain(groups))
}

// Get retrieves one of the caller's groups.
func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	group, err := h.groupUC.GetGroup(r.Context(), chi.URLParam(r, "id"), actor.ID)
	if err != nil {
		writeDomainError(w, err, "failed to get group")
		return
	}

	writeJSON(w, http.StatusOK, dto.GroupFromDomain(group))
}

// Delete deletes a group. Only the creator may do this.
func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	if err := h.groupUC.DeleteGroup(r.Context(), chi.URLParam(r, "id"), actor.ID); err != nil {
		writeDomainError(w, err, "failed to delete group")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddMember adds a user to a group.
func (h *GroupHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	group, err := h.groupUC.AddMember(r.Context(), usecase.AddMemberInput{
		GroupID: chi.URLParam(r, "id"),
		ActorID: actor.ID,
		UserID:  req.UserID,
	})
	if err != nil {
		writeDomainError(w, err, "failed to add member")
		return
	}

	h.metrics.MembersJoined.Inc()
	writeJSON(w, http.StatusOK, dto.GroupFromDomain(group))
}

// RemoveMember removes a member from a group. Members with unsettled
// balances cannot leave.
func (h *GroupHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	err := h.groupUC.RemoveMember(r.Context(), usecase.RemoveMemberInput{
		GroupID: chi.URLParam(r, "id"),
		ActorID: actor.ID,
		UserID:  chi.URLParam(r, "userID"),
	})
	if err != nil {
		writeDomainError(w, err, "failed to remove member")
		return
	}

	h.metrics.MembersRemoved.Inc()
	w.WriteHeader(http.StatusNoContent)
}
