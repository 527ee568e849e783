package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/splitledger/splitledger/internal/domain"
)

// ErrInviteCodeCollision is returned when no unique invite code could be
// generated within the attempt budget.
var ErrInviteCodeCollision = errors.New("could not generate a unique invite code")

// InviteUseCase handles group invite business logic.
type InviteUseCase struct {
	txManager   TransactionManager
	groupRepo   GroupRepository
	inviteRepo  InviteRepository
	idGen       IDGenerator
	broadcaster EventBroadcaster
}

// NewInviteUseCase creates a new InviteUseCase.
func NewInviteUseCase(
	txManager TransactionManager,
	groupRepo GroupRepository,
	inviteRepo InviteRepository,
	idGen IDGenerator,
	broadcaster EventBroadcaster,
) *InviteUseCase {
	return &InviteUseCase{
		txManager:   txManager,
		groupRepo:   groupRepo,
		inviteRepo:  inviteRepo,
		idGen:       idGen,
		broadcaster: broadcaster,
	}
}

// CreateInviteInput represents input for creating an invite.
type CreateInviteInput struct {
	GroupID string
	ActorID string
	TTL     *time.Duration
}

// CreateInvite creates a single-use invite with both a link token and a
// short human-readable code.
func (uc *InviteUseCase) CreateInvite(ctx context.Context, input CreateInviteInput) (*domain.GroupInvite, error) {
	group, err := uc.groupRepo.GetByID(ctx, input.GroupID)
	if err != nil {
		return nil, err
	}

	if !group.HasParticipant(input.ActorID) {
		return nil, domain.ErrGroupNotFound
	}

	token, err := domain.NewInviteToken()
	if err != nil {
		return nil, err
	}

	code, err := uc.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	ttl := domain.DefaultInviteTTL
	if input.TTL != nil {
		ttl = *input.TTL
	}

	now := time.Now().UTC()
	expiresAt := now.Add(ttl)

	invite := &domain.GroupInvite{
		ID:        uc.idGen.Generate(),
		GroupID:   input.GroupID,
		Token:     token,
		Code:      code,
		CreatedBy: input.ActorID,
		CreatedAt: now,
		ExpiresAt: &expiresAt,
	}

	if err := uc.inviteRepo.Create(ctx, invite); err != nil {
		return nil, err
	}

	return invite, nil
}

// InvitePreview is what a prospective member sees before joining.
type InvitePreview struct {
	Invite      *domain.GroupInvite
	GroupName   string
	MemberCount int
}

// ResolveInvite looks an invite up by link token or short code. The
// preview is public: no membership is required to view it.
func (uc *InviteUseCase) ResolveInvite(ctx context.Context, key string) (*InvitePreview, error) {
	invite, err := uc.lookup(ctx, key)
	if err != nil {
		return nil, err
	}

	if invite.IsExpired(time.Now().UTC()) {
		return nil, domain.ErrInviteExpired
	}
	if invite.IsUsed() {
		return nil, domain.ErrInviteUsed
	}

	group, err := uc.groupRepo.GetByID(ctx, invite.GroupID)
	if err != nil {
		return nil, err
	}

	return &InvitePreview{
		Invite:      invite,
		GroupName:   group.Name,
		MemberCount: len(group.Participants),
	}, nil
}

// AcceptInvite redeems an invite and adds the user to the group. Joining
// a group the user already belongs to succeeds without consuming the
// invite.
func (uc *InviteUseCase) AcceptInvite(ctx context.Context, key, userID string) (*domain.Group, error) {
	invite, err := uc.lookup(ctx, key)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if invite.IsExpired(now) {
		return nil, domain.ErrInviteExpired
	}
	if invite.IsUsed() {
		return nil, domain.ErrInviteUsed
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	group, err := uc.groupRepo.GetByIDForUpdate(ctx, tx, invite.GroupID)
	if err != nil {
		return nil, err
	}

	if group.HasParticipant(userID) {
		return group, nil
	}

	if err := uc.groupRepo.AddMemberTx(ctx, tx, invite.GroupID, userID); err != nil {
		return nil, err
	}

	if err := uc.inviteRepo.MarkUsedTx(ctx, tx, invite.ID, userID, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.broadcaster.Publish(domain.GroupEvent{
		GroupID:    invite.GroupID,
		Type:       domain.EventTypeParticipantJoined,
		ResourceID: userID,
		ActorID:    userID,
		OccurredAt: now,
	})

	return uc.groupRepo.GetByID(ctx, invite.GroupID)
}

// ListInvites lists a group's invites for a member.
func (uc *InviteUseCase) ListInvites(ctx context.Context, groupID, actorID string) ([]*domain.GroupInvite, error) {
	group, err := uc.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if !group.HasParticipant(actorID) {
		return nil, domain.ErrGroupNotFound
	}

	return uc.inviteRepo.ListByGroup(ctx, groupID)
}

// lookup tries the key as a link token first, then as a short code.
func (uc *InviteUseCase) lookup(ctx context.Context, key string) (*domain.GroupInvite, error) {
	invite, err := uc.inviteRepo.GetByToken(ctx, key)
	if err == nil {
		return invite, nil
	}
	if !errors.Is(err, domain.ErrInviteNotFound) {
		return nil, err
	}
	return uc.inviteRepo.GetByCode(ctx, key)
}

func (uc *InviteUseCase) uniqueCode(ctx context.Context) (string, error) {
	for range maxInviteCodeAttempts {
		code, err := domain.NewInviteCode()
		if err != nil {
			return "", err
		}

		exists, err := uc.inviteRepo.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrInviteCodeCollision
}
