package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/splitledger/splitledger/internal/domain"
)

// ExpenseUseCase handles expense business logic.
type ExpenseUseCase struct {
	txManager   TransactionManager
	groupRepo   GroupRepository
	expenseRepo ExpenseRepository
	idGen       IDGenerator
	cache       Cache
	broadcaster EventBroadcaster
}

// NewExpenseUseCase creates a new ExpenseUseCase.
func NewExpenseUseCase(
	txManager TransactionManager,
	groupRepo GroupRepository,
	expenseRepo ExpenseRepository,
	idGen IDGenerator,
	cache Cache,
	broadcaster EventBroadcaster,
) *ExpenseUseCase {
	return &ExpenseUseCase{
		txManager:   txManager,
		groupRepo:   groupRepo,
		expenseRepo: expenseRepo,
		idGen:       idGen,
		cache:       cache,
		broadcaster: broadcaster,
	}
}

// CreateExpenseInput represents input for creating an expense.
type CreateExpenseInput struct {
	GroupID     string
	Description string
	Amount      decimal.Decimal
	PaidBy      string
	SplitType   domain.SplitType
	Splits      []domain.SplitInput
	Date        *time.Time
	ActorID     string
}

// CreateExpense computes the splits for a new expense and persists the
// expense and its splits atomically. The group row is locked for the
// duration so concurrent payments validate against a stable state.
func (uc *ExpenseUseCase) CreateExpense(ctx context.Context, input CreateExpenseInput) (*domain.Expense, error) {
	if err := domain.ValidateDescription(input.Description); err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
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

	if err := checkSplitMembership(group, input.PaidBy, input.Splits); err != nil {
		return nil, err
	}

	splits, err := domain.ComputeSplits(input.Amount, input.SplitType, input.Splits)
	if err != nil {
		return nil, err
	}

	date := time.Now().UTC()
	if input.Date != nil {
		date = input.Date.UTC()
	}

	expense := &domain.Expense{
		ID:          uc.idGen.Generate(),
		GroupID:     input.GroupID,
		Description: input.Description,
		Amount:      input.Amount,
		PaidBy:      input.PaidBy,
		SplitType:   input.SplitType,
		Splits:      splits,
		Date:        date,
	}

	if err := expense.Validate(); err != nil {
		return nil, err
	}

	if err := uc.expenseRepo.CreateTx(ctx, tx, expense); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.invalidateAndPublish(ctx, input.GroupID, domain.EventTypeExpenseCreated, expense.ID, input.ActorID)

	return expense, nil
}

// UpdateExpenseInput represents input for replacing an expense. The
// splits are always recomputed from the submitted policy and inputs.
type UpdateExpenseInput struct {
	ExpenseID   string
	Description string
	Amount      decimal.Decimal
	PaidBy      string
	SplitType   domain.SplitType
	Splits      []domain.SplitInput
	Date        *time.Time
	ActorID     string
}

// UpdateExpense replaces an expense and its splits atomically.
func (uc *ExpenseUseCase) UpdateExpense(ctx context.Context, input UpdateExpenseInput) (*domain.Expense, error) {
	if err := domain.ValidateDescription(input.Description); err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	existing, err := uc.expenseRepo.GetByID(ctx, input.ExpenseID)
	if err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	group, err := uc.groupRepo.GetByIDForUpdate(ctx, tx, existing.GroupID)
	if err != nil {
		return nil, err
	}

	if !group.HasParticipant(input.ActorID) {
		return nil, domain.ErrGroupNotFound
	}

	if err := checkSplitMembership(group, input.PaidBy, input.Splits); err != nil {
		return nil, err
	}

	splits, err := domain.ComputeSplits(input.Amount, input.SplitType, input.Splits)
	if err != nil {
		return nil, err
	}

	date := existing.Date
	if input.Date != nil {
		date = input.Date.UTC()
	}

	expense := &domain.Expense{
		ID:          existing.ID,
		GroupID:     existing.GroupID,
		Description: input.Description,
		Amount:      input.Amount,
		PaidBy:      input.PaidBy,
		SplitType:   input.SplitType,
		Splits:      splits,
		Date:        date,
	}

	if err := expense.Validate(); err != nil {
		return nil, err
	}

	if err := uc.expenseRepo.UpdateTx(ctx, tx, expense); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.invalidateAndPublish(ctx, expense.GroupID, domain.EventTypeExpenseUpdated, expense.ID, input.ActorID)

	return expense, nil
}

// DeleteExpense deletes an expense and its splits.
func (uc *ExpenseUseCase) DeleteExpense(ctx context.Context, expenseID, actorID string) error {
	expense, err := uc.expenseRepo.GetByID(ctx, expenseID)
	if err != nil {
		return err
	}

	group, err := uc.groupRepo.GetByID(ctx, expense.GroupID)
	if err != nil {
		return err
	}

	if !group.HasParticipant(actorID) {
		return domain.ErrGroupNotFound
	}

	if err := uc.expenseRepo.Delete(ctx, expenseID); err != nil {
		return err
	}

	uc.invalidateAndPublish(ctx, expense.GroupID, domain.EventTypeExpenseDeleted, expenseID, actorID)

	return nil
}

// GetExpense retrieves an expense for a group member.
func (uc *ExpenseUseCase) GetExpense(ctx context.Context, expenseID, actorID string) (*domain.Expense, error) {
	expense, err := uc.expenseRepo.GetByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}

	group, err := uc.groupRepo.GetByID(ctx, expense.GroupID)
	if err != nil {
		return nil, err
	}

	if !group.HasParticipant(actorID) {
		return nil, domain.ErrExpenseNotFound
	}

	return expense, nil
}

// ListExpenses lists a group's expenses for a member.
func (uc *ExpenseUseCase) ListExpenses(ctx context.Context, groupID, actorID string) ([]*domain.Expense, error) {
	group, err := uc.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if !group.HasParticipant(actorID) {
		return nil, domain.ErrGroupNotFound
	}

	return uc.expenseRepo.ListByGroup(ctx, groupID)
}

func (uc *ExpenseUseCase) invalidateAndPublish(ctx context.Context, groupID, eventType, resourceID, actorID string) {
	// Cache invalidation is best effort; the TTL covers failures here.
	_ = uc.cache.Delete(ctx, balanceCacheKey(groupID))

	uc.broadcaster.Publish(domain.GroupEvent{
		GroupID:    groupID,
		Type:       eventType,
		ResourceID: resourceID,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	})
}

// checkSplitMembership verifies the payer and every split participant
// belong to the group.
func checkSplitMembership(group *domain.Group, paidBy string, splits []domain.SplitInput) error {
	if !group.HasParticipant(paidBy) {
		return domain.ErrNotAMember
	}
	for _, s := range splits {
		if !group.HasParticipant(s.ParticipantID) {
			return domain.ErrNotAMember
		}
	}
	return nil
}
