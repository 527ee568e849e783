package domain

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// SplitInput describes one participant's part of a proposed expense.
// Amount, Percentage and Shares are set only for the matching policy.
type SplitInput struct {
	ParticipantID string
	Amount        *decimal.Decimal
	Percentage    *decimal.Decimal
	Shares        *int64
}

// ComputeSplits converts a total amount and a split policy into
// per-participant owed amounts. The sum of the returned split amounts
// always equals total exactly, to the minor currency unit: every policy
// works in integer cents and reconciles leftovers with largest-remainder
// distribution, so no rounding leaks out of an expense.
func ComputeSplits(total decimal.Decimal, splitType SplitType, inputs []SplitInput) ([]ExpenseSplit, error) {
	if total.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	if len(inputs) == 0 {
		return nil, ErrEmptyParticipants
	}

	seen := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		if seen[in.ParticipantID] {
			return nil, ErrDuplicateParticipant
		}
		seen[in.ParticipantID] = true
	}

	switch splitType {
	case SplitTypeEqual:
		return splitEqual(total, inputs), nil
	case SplitTypeAmount:
		return splitAmount(total, inputs)
	case SplitTypePercentage:
		return splitPercentage(total, inputs)
	case SplitTypeShares:
		return splitShares(total, inputs)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSplitType, splitType)
	}
}

// splitEqual divides the total in cents by the participant count and hands
// the remainder out one cent at a time to the first participants in order.
func splitEqual(total decimal.Decimal, inputs []SplitInput) []ExpenseSplit {
	totalCents := toCents(total)
	count := int64(len(inputs))
	base := totalCents / count
	remainder := totalCents % count

	splits := make([]ExpenseSplit, len(inputs))
	for i, in := range inputs {
		cents := base
		if int64(i) < remainder {
			cents++
		}
		splits[i] = ExpenseSplit{
			ParticipantID: in.ParticipantID,
			Amount:        fromCents(cents),
		}
	}
	return splits
}

// splitAmount takes caller-supplied amounts and verifies they reconcile
// with the total to within one minor unit. A one-cent difference is
// absorbed by the last split so the invariant still holds exactly.
func splitAmount(total decimal.Decimal, inputs []SplitInput) ([]ExpenseSplit, error) {
	totalCents := toCents(total)

	var sum int64
	splits := make([]ExpenseSplit, len(inputs))
	for i, in := range inputs {
		if in.Amount == nil {
			return nil, fmt.Errorf("%w: missing amount for participant %s", ErrSplitMismatch, in.ParticipantID)
		}
		if in.Amount.IsNegative() {
			return nil, ErrInvalidAmount
		}
		cents := toCents(*in.Amount)
		sum += cents
		splits[i] = ExpenseSplit{
			ParticipantID: in.ParticipantID,
			Amount:        fromCents(cents),
		}
	}

	diff := totalCents - sum
	if diff < -1 || diff > 1 {
		return nil, fmt.Errorf("%w: splits total %s, expense is %s",
			ErrSplitMismatch, fromCents(sum).StringFixed(2), fromCents(totalCents).StringFixed(2))
	}
	if diff != 0 {
		last := &splits[len(splits)-1]
		last.Amount = last.Amount.Add(fromCents(diff))
	}

	return splits, nil
}

// splitPercentage divides by caller-supplied percentages, which must sum
// to 100 within a small tolerance. The original percentage is retained on
// each split for display.
func splitPercentage(total decimal.Decimal, inputs []SplitInput) ([]ExpenseSplit, error) {
	percentTolerance := decimal.New(1, -2)

	sum := decimal.Zero
	weights := make([]decimal.Decimal, len(inputs))
	for i, in := range inputs {
		if in.Percentage == nil {
			return nil, fmt.Errorf("%w: missing percentage for participant %s", ErrSplitMismatch, in.ParticipantID)
		}
		if in.Percentage.IsNegative() {
			return nil, ErrInvalidAmount
		}
		weights[i] = *in.Percentage
		sum = sum.Add(*in.Percentage)
	}

	if sum.Sub(decimal.NewFromInt(100)).Abs().GreaterThan(percentTolerance) {
		return nil, fmt.Errorf("%w: percentages total %s, expected 100", ErrSplitMismatch, sum.String())
	}

	cents := allocateByWeights(toCents(total), weights, sum)
	splits := make([]ExpenseSplit, len(inputs))
	for i, in := range inputs {
		pct := *in.Percentage
		splits[i] = ExpenseSplit{
			ParticipantID: in.ParticipantID,
			Amount:        fromCents(cents[i]),
			Percentage:    &pct,
		}
	}
	return splits, nil
}

// splitShares divides proportionally to integer share counts, retaining
// the share count on each split.
func splitShares(total decimal.Decimal, inputs []SplitInput) ([]ExpenseSplit, error) {
	var totalShares int64
	weights := make([]decimal.Decimal, len(inputs))
	for i, in := range inputs {
		if in.Shares == nil {
			return nil, fmt.Errorf("%w: missing share count for participant %s", ErrSplitMismatch, in.ParticipantID)
		}
		if *in.Shares < 0 {
			return nil, ErrInvalidAmount
		}
		weights[i] = decimal.NewFromInt(*in.Shares)
		totalShares += *in.Shares
	}
	if totalShares == 0 {
		return nil, fmt.Errorf("%w: total share count is zero", ErrSplitMismatch)
	}

	cents := allocateByWeights(toCents(total), weights, decimal.NewFromInt(totalShares))
	splits := make([]ExpenseSplit, len(inputs))
	for i, in := range inputs {
		shares := *in.Shares
		splits[i] = ExpenseSplit{
			ParticipantID: in.ParticipantID,
			Amount:        fromCents(cents[i]),
			Shares:        &shares,
		}
	}
	return splits, nil
}

// allocateByWeights distributes totalCents proportionally to weights using
// largest-remainder distribution: each entitlement is floored, then the
// leftover cents go one at a time to the largest fractional remainders
// (ties resolved by input order). The result always sums to totalCents.
func allocateByWeights(totalCents int64, weights []decimal.Decimal, totalWeight decimal.Decimal) []int64 {
	total := decimal.NewFromInt(totalCents)

	cents := make([]int64, len(weights))
	remainders := make([]decimal.Decimal, len(weights))
	var allocated int64
	for i, w := range weights {
		exact := total.Mul(w).Div(totalWeight)
		floor := exact.Floor()
		cents[i] = floor.IntPart()
		remainders[i] = exact.Sub(floor)
		allocated += cents[i]
	}

	order := make([]int, len(weights))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]].GreaterThan(remainders[order[b]])
	})

	leftover := totalCents - allocated
	for i := int64(0); i < leftover; i++ {
		cents[order[i]]++
	}

	return cents
}
