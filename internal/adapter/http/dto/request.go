package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/splitledger/splitledger/internal/domain"
	"github.com/splitledger/splitledger/internal/usecase"
)

// RegisterRequest represents a request to create a user account.
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// ToUseCaseInput converts to use case input.
func (r *RegisterRequest) ToUseCaseInput() usecase.RegisterInput {
	return usecase.RegisterInput{
		Email:    r.Email,
		Name:     r.Name,
		Password: r.Password,
	}
}

// UpdateProfileRequest represents a request to update the caller's
// profile. Absent fields are left untouched.
type UpdateProfileRequest struct {
	Name     *string `json:"name,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
	Password *string `json:"password,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateProfileRequest) ToUseCaseInput(userID string) usecase.UpdateUserInput {
	return usecase.UpdateUserInput{
		ID:       userID,
		Name:     r.Name,
		Avatar:   r.Avatar,
		Password: r.Password,
	}
}

// CreateGroupRequest represents a request to create a group.
type CreateGroupRequest struct {
	Name string `json:"name"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateGroupRequest) ToUseCaseInput(creatorID string) usecase.CreateGroupInput {
	return usecase.CreateGroupInput{
		Name:      r.Name,
		CreatedBy: creatorID,
	}
}

// AddMemberRequest represents a request to add a member to a group.
type AddMemberRequest struct {
	UserID string `json:"user_id"`
}

// SplitItem is one participant's share in an expense request. Which
// field matters depends on the split type: amount splits read Amount,
// percentage splits read Percentage, share splits read Shares, and
// equal splits need the participant id only.
type SplitItem struct {
	ParticipantID string           `json:"participant_id"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Percentage    *decimal.Decimal `json:"percentage,omitempty"`
	Shares        *int64           `json:"shares,omitempty"`
}

func splitInputs(items []SplitItem) []domain.SplitInput {
	inputs := make([]domain.SplitInput, len(items))
	for i, item := range items {
		inputs[i] = domain.SplitInput{
			ParticipantID: item.ParticipantID,
			Amount:        item.Amount,
			Percentage:    item.Percentage,
			Shares:        item.Shares,
		}
	}
	return inputs
}

// CreateExpenseRequest represents a request to create an expense.
type CreateExpenseRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	PaidBy      string          `json:"paid_by"`
	SplitType   string          `json:"split_type"`
	Splits      []SplitItem     `json:"splits"`
	Date        *time.Time      `json:"date,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateExpenseRequest) ToUseCaseInput(groupID, actorID string) usecase.CreateExpenseInput {
	return usecase.CreateExpenseInput{
		GroupID:     groupID,
		Description: r.Description,
		Amount:      r.Amount,
		PaidBy:      r.PaidBy,
		SplitType:   domain.SplitType(r.SplitType),
		Splits:      splitInputs(r.Splits),
		Date:        r.Date,
		ActorID:     actorID,
	}
}

// UpdateExpenseRequest represents a request to replace an expense. The
// splits are recomputed from the submitted policy.
type UpdateExpenseRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	PaidBy      string          `json:"paid_by"`
	SplitType   string          `json:"split_type"`
	Splits      []SplitItem     `json:"splits"`
	Date        *time.Time      `json:"date,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateExpenseRequest) ToUseCaseInput(expenseID, actorID string) usecase.UpdateExpenseInput {
	return usecase.UpdateExpenseInput{
		ExpenseID:   expenseID,
		Description: r.Description,
		Amount:      r.Amount,
		PaidBy:      r.PaidBy,
		SplitType:   domain.SplitType(r.SplitType),
		Splits:      splitInputs(r.Splits),
		Date:        r.Date,
		ActorID:     actorID,
	}
}

// CreatePaymentRequest represents a request to record a settlement
// payment.
type CreatePaymentRequest struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
	Note   *string         `json:"note,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreatePaymentRequest) ToUseCaseInput(groupID, actorID string) usecase.CreatePaymentInput {
	return usecase.CreatePaymentInput{
		GroupID: groupID,
		From:    r.From,
		To:      r.To,
		Amount:  r.Amount,
		Note:    r.Note,
		ActorID: actorID,
	}
}

// CreateInviteRequest represents a request to create a group invite.
type CreateInviteRequest struct {
	ExpiresIn *string `json:"expires_in,omitempty"` // Go duration, e.g. "48h"
}

// ToUseCaseInput converts to use case input. An unparseable duration is
// reported so the caller can reject the request.
func (r *CreateInviteRequest) ToUseCaseInput(groupID, actorID string) (usecase.CreateInviteInput, error) {
	input := usecase.CreateInviteInput{
		GroupID: groupID,
		ActorID: actorID,
	}

	if r.ExpiresIn != nil {
		ttl, err := time.ParseDuration(*r.ExpiresIn)
		if err != nil {
			return input, err
		}
		input.TTL = &ttl
	}

	return input, nil
}
