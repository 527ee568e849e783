package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SettlementPayment records a completed real-world transfer between two
// participants of a group. Unlike a Settlement it is a persisted fact.
type SettlementPayment struct {
	ID        string
	GroupID   string
	From      string
	To        string
	Amount    decimal.Decimal
	Note      *string
	CreatedBy string
	CreatedAt time.Time
}

// Validate checks the payment's shape. Balance-aware rules live in
// ValidatePayment.
func (p *SettlementPayment) Validate() error {
	if p.From == p.To {
		return ErrSameParticipant
	}
	if p.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	return nil
}

// ValidatePayment checks a proposed settling payment against current net
// balances. It is purely advisory: the caller persists the payment only
// after this returns nil, and the read of netBalances and the insert must
// not be interleaved with another writer.
//
// Rules, in order: distinct parties, positive amount, both parties present
// in the balance map, sender currently a net debtor, recipient currently a
// net creditor, and amount within min(|net(from)|, net(to)) plus dust.
func ValidatePayment(from, to string, amount decimal.Decimal, netBalances map[string]decimal.Decimal) error {
	if from == to {
		return ErrSameParticipant
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	netFrom, okFrom := netBalances[from]
	netTo, okTo := netBalances[to]
	if !okFrom || !okTo {
		return ErrNotAMember
	}

	netFrom = RoundMoney(netFrom)
	netTo = RoundMoney(netTo)

	if !netFrom.LessThan(Dust.Neg()) {
		return ErrSenderNotOwing
	}
	if !netTo.GreaterThan(Dust) {
		return ErrRecipientNotOwed
	}

	max := decimal.Min(netFrom.Abs(), netTo)
	if amount.GreaterThan(max.Add(Dust)) {
		return fmt.Errorf("%w: maximum is %s", ErrAmountExceedsOwed, max.StringFixed(2))
	}

	return nil
}
