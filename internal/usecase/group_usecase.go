package usecase

import (
	"context"
	"time"

	"github.com/splitledger/splitledger/internal/domain"
)

// GroupUseCase handles group and membership business logic.
type GroupUseCase struct {
	txManager   TransactionManager
	groupRepo   GroupRepository
	userRepo    UserRepository
	expenseRepo ExpenseRepository
	paymentRepo PaymentRepository
	idGen       IDGenerator
	broadcaster EventBroadcaster
}

// NewGroupUseCase creates a new GroupUseCase.
func NewGroupUseCase(
	txManager TransactionManager,
	groupRepo GroupRepository,
	userRepo UserRepository,
	expenseRepo ExpenseRepository,
	paymentRepo PaymentRepository,
	idGen IDGenerator,
	broadcaster EventBroadcaster,
) *GroupUseCase {
	return &GroupUseCase{
		txManager:   txManager,
		groupRepo:   groupRepo,
		userRepo:    userRepo,
		expenseRepo: expenseRepo,
		paymentRepo: paymentRepo,
		idGen:       idGen,
		broadcaster: broadcaster,
	}
}

// CreateGroupInput represents input for creating a group.
type CreateGroupInput struct {
	Name      string
	CreatedBy string
}

// CreateGroup creates a new group with the creator as its first member.
func (uc *GroupUseCase) CreateGroup(ctx context.Context, input CreateGroupInput) (*domain.Group, error) {
	if err := domain.ValidateGroupName(input.Name); err != nil {
		return nil, err
	}

	if _, err := uc.userRepo.GetByID(ctx, input.CreatedBy); err != nil {
		return nil, err
	}

	group := &domain.Group{
		ID:        uc.idGen.Generate(),
		Name:      input.Name,
		CreatedBy: input.CreatedBy,
		CreatedAt: time.Now().UTC(),
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.groupRepo.CreateTx(ctx, tx, group); err != nil {
		return nil, err
	}

	if err := uc.groupRepo.AddMemberTx(ctx, tx, group.ID, input.CreatedBy); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return uc.groupRepo.GetByID(ctx, group.ID)
}

// GetGroup retrieves a group for a member. Non-members get
// domain.ErrGroupNotFound rather than a permission error.
func (uc *GroupUseCase) GetGroup(ctx context.Context, groupID, userID string) (*domain.Group, error) {
	group, err := uc.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if !group.HasParticipant(userID) {
		return nil, domain.ErrGroupNotFound
	}

	return group, nil
}

// ListGroups lists the groups the user belongs to.
func (uc *GroupUseCase) ListGroups(ctx context.Context, userID string) ([]*domain.Group, error) {
	return uc.groupRepo.ListByUser(ctx, userID)
}

// AddMemberInput represents input for adding a member to a group.
type AddMemberInput struct {
	GroupID string
	ActorID string
	UserID  string
}

// AddMember adds a user to a group. Any existing member may add others.
func (uc *GroupUseCase) AddMember(ctx context.Context, input AddMemberInput) (*domain.Group, error) {
	if _, err := uc.userRepo.GetByID(ctx, input.UserID); err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	group, err := uc.groupRepo.GetByIDForUpdate(ctx, tx, input.GroupID)
	if err != nil {
		return nil, err
	}

	if !group.HasParticipant(input.ActorID) {
		return nil, domain.ErrGroupNotFound
	}

	if group.HasParticipant(input.UserID) {
		return nil, domain.ErrAlreadyMember
	}

	if err := uc.groupRepo.AddMemberTx(ctx, tx, input.GroupID, input.UserID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.broadcaster.Publish(domain.GroupEvent{
		GroupID:    input.GroupID,
		Type:       domain.EventTypeParticipantJoined,
		ResourceID: input.UserID,
		ActorID:    input.ActorID,
		OccurredAt: time.Now().UTC(),
	})

	return uc.groupRepo.GetByID(ctx, input.GroupID)
}

// RemoveMemberInput represents input for removing a member from a group.
type RemoveMemberInput struct {
	GroupID string
	ActorID string
	UserID  string
}

// RemoveMember removes a member from a group. A member with an unsettled
// balance beyond the dust threshold cannot be removed.
func (uc *GroupUseCase) RemoveMember(ctx context.Context, input RemoveMemberInput) error {
	group, err := uc.groupRepo.GetByID(ctx, input.GroupID)
	if err != nil {
		return err
	}

	if !group.HasParticipant(input.ActorID) {
		return domain.ErrGroupNotFound
	}

	if !group.HasParticipant(input.UserID) {
		return domain.ErrNotAMember
	}

	expenses, err := uc.expenseRepo.ListByGroup(ctx, input.GroupID)
	if err != nil {
		return err
	}

	payments, err := uc.paymentRepo.ListByGroup(ctx, input.GroupID)
	if err != nil {
		return err
	}

	net := domain.ComputeNetBalances(expenses, group.Participants, payments)
	if domain.RoundMoney(net[input.UserID]).Abs().GreaterThan(domain.Dust) {
		return domain.ErrMemberHasDebts
	}

	if err := uc.groupRepo.RemoveMember(ctx, input.GroupID, input.UserID); err != nil {
		return err
	}

	uc.broadcaster.Publish(domain.GroupEvent{
		GroupID:    input.GroupID,
		Type:       domain.EventTypeParticipantRemoved,
		ResourceID: input.UserID,
		ActorID:    input.ActorID,
		OccurredAt: time.Now().UTC(),
	})

	return nil
}

// DeleteGroup deletes a group. Only the creator may do this.
func (uc *GroupUseCase) DeleteGroup(ctx context.Context, groupID, actorID string) error {
	group, err := uc.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return err
	}

	if !group.HasParticipant(actorID) {
		return domain.ErrGroupNotFound
	}

	if group.CreatedBy != actorID {
		return domain.ErrUnauthorized
	}

	return uc.groupRepo.Delete(ctx, groupID)
}
