package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/splitledger/splitledger/internal/domain"
)

// ErrInconsistentBalances is returned when a group's net balances do not
// sum to zero.
var ErrInconsistentBalances = errors.New("group balances do not sum to zero")

// BalanceUseCase computes the derived balance views of a group. Nothing
// here is persisted; every view is recomputed from expenses and payments.
type BalanceUseCase struct {
	groupRepo   GroupRepository
	expenseRepo ExpenseRepository
	paymentRepo PaymentRepository
	cache       Cache
}

// NewBalanceUseCase creates a new BalanceUseCase.
func NewBalanceUseCase(
	groupRepo GroupRepository,
	expenseRepo ExpenseRepository,
	paymentRepo PaymentRepository,
	cache Cache,
) *BalanceUseCase {
	return &BalanceUseCase{
		groupRepo:   groupRepo,
		expenseRepo: expenseRepo,
		paymentRepo: paymentRepo,
		cache:       cache,
	}
}

// ParticipantBalance is one participant's signed net position.
type ParticipantBalance struct {
	ParticipantID string          `json:"participant_id"`
	Name          string          `json:"name"`
	Amount        decimal.Decimal `json:"amount"`
}

// GetNetBalances returns each member's net position in participant
// order: positive means owed by the group, negative means owing.
func (uc *BalanceUseCase) GetNetBalances(ctx context.Context, groupID, actorID string) ([]ParticipantBalance, error) {
	group, expenses, payments, err := uc.loadGroupState(ctx, groupID, actorID)
	if err != nil {
		return nil, err
	}

	net := domain.ComputeNetBalances(expenses, group.Participants, payments)

	balances := make([]ParticipantBalance, 0, len(group.Participants))
	for _, p := range group.Participants {
		balances = append(balances, ParticipantBalance{
			ParticipantID: p.ID,
			Name:          p.Name,
			Amount:        domain.RoundMoney(net[p.ID]),
		})
	}

	return balances, nil
}

// GetDebtMatrix returns the all-pairs who-owes-whom view. Settlement
// payments are not part of this view.
func (uc *BalanceUseCase) GetDebtMatrix(ctx context.Context, groupID, actorID string) ([]domain.Balance, error) {
	group, expenses, _, err := uc.loadGroupState(ctx, groupID, actorID)
	if err != nil {
		return nil, err
	}

	return domain.CalculateBalances(expenses, group.Participants), nil
}

// SuggestSettlements returns the minimal transfer plan that settles the
// group, taking recorded payments into account.
func (uc *BalanceUseCase) SuggestSettlements(ctx context.Context, groupID, actorID string) ([]domain.Settlement, error) {
	group, expenses, payments, err := uc.loadGroupState(ctx, groupID, actorID)
	if err != nil {
		return nil, err
	}

	return domain.OptimizeSettlements(expenses, group.Participants, payments), nil
}

// ParticipantSummary aggregates one member's totals.
type ParticipantSummary struct {
	ParticipantID string          `json:"participant_id"`
	Name          string          `json:"name"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	TotalOwed     decimal.Decimal `json:"total_owed"`
	Net           decimal.Decimal `json:"net"`
}

// GroupSummary aggregates a group's spending totals.
type GroupSummary struct {
	GroupID       string               `json:"group_id"`
	TotalExpenses decimal.Decimal      `json:"total_expenses"`
	ExpenseCount  int                  `json:"expense_count"`
	PaymentCount  int                  `json:"payment_count"`
	Participants  []ParticipantSummary `json:"participants"`
}

// GetSummary returns the group's spending summary. The result is cached
// briefly; writes invalidate the cache eagerly.
func (uc *BalanceUseCase) GetSummary(ctx context.Context, groupID, actorID string) (*GroupSummary, error) {
	group, err := uc.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if !group.HasParticipant(actorID) {
		return nil, domain.ErrGroupNotFound
	}

	if data, err := uc.cache.Get(ctx, balanceCacheKey(groupID)); err == nil && len(data) > 0 {
		var cached GroupSummary
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	expenses, err := uc.expenseRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	payments, err := uc.paymentRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	net := domain.ComputeNetBalances(expenses, group.Participants, payments)

	summary := &GroupSummary{
		GroupID:       groupID,
		TotalExpenses: domain.TotalExpenses(expenses),
		ExpenseCount:  len(expenses),
		PaymentCount:  len(payments),
		Participants:  make([]ParticipantSummary, 0, len(group.Participants)),
	}

	for _, p := range group.Participants {
		summary.Participants = append(summary.Participants, ParticipantSummary{
			ParticipantID: p.ID,
			Name:          p.Name,
			TotalPaid:     domain.ParticipantTotalPaid(expenses, p.ID),
			TotalOwed:     domain.ParticipantTotalOwed(expenses, p.ID),
			Net:           domain.RoundMoney(net[p.ID]),
		})
	}

	if data, err := json.Marshal(summary); err == nil {
		_ = uc.cache.Set(ctx, balanceCacheKey(groupID), data, balanceCacheTTL)
	}

	return summary, nil
}

// ConsistencyResult reports whether a group's balances reconcile.
type ConsistencyResult struct {
	GroupID    string
	Sum        decimal.Decimal
	Consistent bool
	CheckedAt  time.Time
}

// CheckConsistency verifies the zero-sum invariant: every expense credits
// its payer exactly as much as its splits debit, and every payment moves
// value without creating it, so the group's net balances must sum to
// zero. A nonzero sum means corrupted stored splits.
func (uc *BalanceUseCase) CheckConsistency(ctx context.Context, groupID, actorID string) (*ConsistencyResult, error) {
	group, expenses, payments, err := uc.loadGroupState(ctx, groupID, actorID)
	if err != nil {
		return nil, err
	}

	net := domain.ComputeNetBalances(expenses, group.Participants, payments)

	sum := decimal.Zero
	for _, balance := range net {
		sum = sum.Add(balance)
	}

	result := &ConsistencyResult{
		GroupID:    groupID,
		Sum:        sum,
		Consistent: sum.IsZero(),
		CheckedAt:  time.Now().UTC(),
	}

	// Each expense must also individually reconcile against its splits.
	for _, e := range expenses {
		if err := e.Validate(); err != nil {
			result.Consistent = false
			break
		}
	}

	return result, nil
}

func (uc *BalanceUseCase) loadGroupState(ctx context.Context, groupID, actorID string) (*domain.Group, []*domain.Expense, []*domain.SettlementPayment, error) {
	group, err := uc.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, nil, nil, err
	}

	if !group.HasParticipant(actorID) {
		return nil, nil, nil, domain.ErrGroupNotFound
	}

	expenses, err := uc.expenseRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, nil, nil, err
	}

	payments, err := uc.paymentRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, nil, nil, err
	}

	return group, expenses, payments, nil
}
