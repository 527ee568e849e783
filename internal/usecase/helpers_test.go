package usecase_test

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/splitledger/splitledger/internal/domain"
	"github.com/splitledger/splitledger/internal/usecase/mocks"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func strPtr(s string) *string {
	return &s
}

// seedGroup stores a group with the given members and returns it.
func seedGroup(repo *mocks.MockGroupRepository, id string, memberIDs ...string) *domain.Group {
	participants := make([]*domain.Participant, len(memberIDs))
	for i, m := range memberIDs {
		participants[i] = &domain.Participant{ID: m, Name: m}
	}
	group := &domain.Group{
		ID:           id,
		Name:         "group " + id,
		Participants: participants,
		CreatedBy:    memberIDs[0],
		CreatedAt:    time.Now().UTC(),
	}
	repo.Seed(group)
	return group
}

// seedExpense stores an expense with explicit split amounts.
func seedExpense(repo *mocks.MockExpenseRepository, id, groupID, paidBy, amount string, splits map[string]string) *domain.Expense {
	expense := &domain.Expense{
		ID:        id,
		GroupID:   groupID,
		Amount:    dec(amount),
		PaidBy:    paidBy,
		SplitType: domain.SplitTypeEqual,
		Date:      time.Now().UTC(),
	}
	for participantID, share := range splits {
		expense.Splits = append(expense.Splits, domain.ExpenseSplit{
			ParticipantID: participantID,
			Amount:        dec(share),
		})
	}
	repo.Seed(expense)
	return expense
}
