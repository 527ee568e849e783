package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/splitledger/splitledger/internal/domain"
	"github.com/splitledger/splitledger/internal/usecase"
	"github.com/splitledger/splitledger/internal/usecase/mocks"
)

type inviteFixture struct {
	groupRepo   *mocks.MockGroupRepository
	inviteRepo  *mocks.MockInviteRepository
	broadcaster *mocks.MockEventBroadcaster
	uc          *usecase.InviteUseCase
}

func newInviteFixture(t *testing.T) *inviteFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	idGen := mocks.NewMockIDGenerator(ctrl)
	idGen.EXPECT().Generate().Return("inv-new").AnyTimes()

	f := &inviteFixture{
		groupRepo:   mocks.NewMockGroupRepository(),
		inviteRepo:  mocks.NewMockInviteRepository(),
		broadcaster: mocks.NewMockEventBroadcaster(),
	}
	f.uc = usecase.NewInviteUseCase(
		mocks.NewMockTransactionManager(),
		f.groupRepo,
		f.inviteRepo,
		idGen,
		f.broadcaster,
	)
	return f
}

func (f *inviteFixture) seedInvite(token, code string, expiresAt *time.Time, usedAt *time.Time) *domain.GroupInvite {
	invite := &domain.GroupInvite{
		ID:        "inv-1",
		GroupID:   "grp-1",
		Token:     token,
		Code:      code,
		CreatedBy: "u1",
		CreatedAt: time.Now().UTC(),
		ExpiresAt: expiresAt,
		UsedAt:    usedAt,
	}
	f.inviteRepo.Seed(invite)
	return invite
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestInviteUseCase_CreateInvite(t *testing.T) {
	t.Run("generates token, code and default expiry", func(t *testing.T) {
		f := newInviteFixture(t)
		seedGroup(f.groupRepo, "grp-1", "u1")

		before := time.Now().UTC()
		invite, err := f.uc.CreateInvite(context.Background(), usecase.CreateInviteInput{
			GroupID: "grp-1",
			ActorID: "u1",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(invite.Token) != 48 {
			t.Errorf("expected 48 character token, got %d", len(invite.Token))
		}
		if len(invite.Code) != 6 {
			t.Errorf("expected 6 character code, got %q", invite.Code)
		}
		if invite.ExpiresAt == nil {
			t.Fatal("expected an expiry")
		}
		if got := invite.ExpiresAt.Sub(before); got < 71*time.Hour || got > 73*time.Hour {
			t.Errorf("expected roughly 72h expiry, got %s", got)
		}
	})

	t.Run("regenerates on code collision", func(t *testing.T) {
		f := newInviteFixture(t)
		seedGroup(f.groupRepo, "grp-1", "u1")

		checks := 0
		f.inviteRepo.CodeExistsFunc = func(ctx context.Context, code string) (bool, error) {
			checks++
			return checks == 1, nil
		}

		if _, err := f.uc.CreateInvite(context.Background(), usecase.CreateInviteInput{
			GroupID: "grp-1",
			ActorID: "u1",
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if checks != 2 {
			t.Errorf("expected a second attempt after the collision, got %d checks", checks)
		}
	})

	t.Run("gives up after persistent collisions", func(t *testing.T) {
		f := newInviteFixture(t)
		seedGroup(f.groupRepo, "grp-1", "u1")

		f.inviteRepo.CodeExistsFunc = func(ctx context.Context, code string) (bool, error) {
			return true, nil
		}

		_, err := f.uc.CreateInvite(context.Background(), usecase.CreateInviteInput{
			GroupID: "grp-1",
			ActorID: "u1",
		})
		if !errors.Is(err, usecase.ErrInviteCodeCollision) {
			t.Errorf("expected ErrInviteCodeCollision, got %v", err)
		}
	})

	t.Run("non-member cannot invite", func(t *testing.T) {
		f := newInviteFixture(t)
		seedGroup(f.groupRepo, "grp-1", "u1")

		_, err := f.uc.CreateInvite(context.Background(), usecase.CreateInviteInput{
			GroupID: "grp-1",
			ActorID: "stranger",
		})
		if !errors.Is(err, domain.ErrGroupNotFound) {
			t.Errorf("expected ErrGroupNotFound, got %v", err)
		}
	})
}

func TestInviteUseCase_ResolveInvite(t *testing.T) {
	f := newInviteFixture(t)
	seedGroup(f.groupRepo, "grp-1", "u1", "u2")
	f.seedInvite("tok-abc", "WELCOM", timePtr(time.Now().UTC().Add(time.Hour)), nil)

	t.Run("by token", func(t *testing.T) {
		preview, err := f.uc.ResolveInvite(context.Background(), "tok-abc")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if preview.GroupName != "group grp-1" || preview.MemberCount != 2 {
			t.Errorf("unexpected preview: %+v", preview)
		}
	})

	t.Run("by code", func(t *testing.T) {
		preview, err := f.uc.ResolveInvite(context.Background(), "WELCOM")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if preview.Invite.ID != "inv-1" {
			t.Errorf("unexpected invite: %+v", preview.Invite)
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		if _, err := f.uc.ResolveInvite(context.Background(), "nope"); !errors.Is(err, domain.ErrInviteNotFound) {
			t.Errorf("expected ErrInviteNotFound, got %v", err)
		}
	})
}

func TestInviteUseCase_AcceptInvite(t *testing.T) {
	t.Run("joins the group and consumes the invite", func(t *testing.T) {
		f := newInviteFixture(t)
		group := seedGroup(f.groupRepo, "grp-1", "u1")
		invite := f.seedInvite("tok-abc", "WELCOM", timePtr(time.Now().UTC().Add(time.Hour)), nil)

		joined, err := f.uc.AcceptInvite(context.Background(), "tok-abc", "u2")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !joined.HasParticipant("u2") || !group.HasParticipant("u2") {
			t.Error("u2 should have joined")
		}
		if !invite.IsUsed() || invite.UsedBy == nil || *invite.UsedBy != "u2" {
			t.Errorf("invite should be consumed by u2: %+v", invite)
		}

		events := f.broadcaster.Events()
		if len(events) != 1 || events[0].Type != domain.EventTypeParticipantJoined {
			t.Errorf("expected one participant.joined event, got %v", events)
		}
	})

	t.Run("existing member keeps the invite alive", func(t *testing.T) {
		f := newInviteFixture(t)
		seedGroup(f.groupRepo, "grp-1", "u1", "u2")
		invite := f.seedInvite("tok-abc", "WELCOM", timePtr(time.Now().UTC().Add(time.Hour)), nil)

		if _, err := f.uc.AcceptInvite(context.Background(), "tok-abc", "u2"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if invite.IsUsed() {
			t.Error("invite must not be consumed by an existing member")
		}
	})

	t.Run("expired invite", func(t *testing.T) {
		f := newInviteFixture(t)
		seedGroup(f.groupRepo, "grp-1", "u1")
		f.seedInvite("tok-abc", "WELCOM", timePtr(time.Now().UTC().Add(-time.Minute)), nil)

		if _, err := f.uc.AcceptInvite(context.Background(), "tok-abc", "u2"); !errors.Is(err, domain.ErrInviteExpired) {
			t.Errorf("expected ErrInviteExpired, got %v", err)
		}
	})

	t.Run("used invite", func(t *testing.T) {
		f := newInviteFixture(t)
		seedGroup(f.groupRepo, "grp-1", "u1")
		f.seedInvite("tok-abc", "WELCOM", timePtr(time.Now().UTC().Add(time.Hour)), timePtr(time.Now().UTC()))

		if _, err := f.uc.AcceptInvite(context.Background(), "tok-abc", "u3"); !errors.Is(err, domain.ErrInviteUsed) {
			t.Errorf("expected ErrInviteUsed, got %v", err)
		}
	})
}
