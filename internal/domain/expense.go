package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SplitType selects the policy used to divide an expense between
// participants.
type SplitType string

const (
	SplitTypeEqual      SplitType = "equal"
	SplitTypePercentage SplitType = "percentage"
	SplitTypeAmount     SplitType = "amount"
	SplitTypeShares     SplitType = "shares"
)

// IsValid checks if the split type is one of the supported policies.
func (s SplitType) IsValid() bool {
	switch s {
	case SplitTypeEqual, SplitTypePercentage, SplitTypeAmount, SplitTypeShares:
		return true
	}
	return false
}

// ExpenseSplit is the portion of one expense attributed to one
// participant. Percentage and Shares are kept for display only when the
// corresponding policy produced the split; Amount is always authoritative
// and never recomputed from them.
type ExpenseSplit struct {
	ParticipantID string
	Amount        decimal.Decimal
	Percentage    *decimal.Decimal
	Shares        *int64
}

// Expense is a cost paid by one participant and split between several.
type Expense struct {
	ID          string
	GroupID     string
	Description string
	Amount      decimal.Decimal
	PaidBy      string
	SplitType   SplitType
	Splits      []ExpenseSplit
	Date        time.Time
}

// Validate checks the expense's internal consistency: a positive amount,
// a known split policy, each participant at most once, and splits that
// add up to the amount exactly.
func (e *Expense) Validate() error {
	if e.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if !e.SplitType.IsValid() {
		return ErrUnknownSplitType
	}
	if len(e.Splits) == 0 {
		return ErrEmptyParticipants
	}

	seen := make(map[string]bool, len(e.Splits))
	sum := decimal.Zero
	for _, s := range e.Splits {
		if seen[s.ParticipantID] {
			return ErrDuplicateParticipant
		}
		seen[s.ParticipantID] = true
		sum = sum.Add(s.Amount)
	}

	if !sum.Equal(e.Amount) {
		return ErrSplitMismatch
	}

	return nil
}
