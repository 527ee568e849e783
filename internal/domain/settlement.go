package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Settlement is a suggested transfer that would help zero out balances.
// It is recomputed on demand and never persisted.
type Settlement struct {
	From   string
	To     string
	Amount decimal.Decimal
}

// OptimizeSettlements turns net balances (payments included) into a
// minimal sequence of suggested transfers: greedy matching of the largest
// remaining debtor against the largest remaining creditor. The emitted
// transfers reconcile every balance to within the dust threshold and
// never exceed creditors+debtors-1 edges.
func OptimizeSettlements(expenses []*Expense, participants []*Participant, payments []*SettlementPayment) []Settlement {
	net := ComputeNetBalances(expenses, participants, payments)
	order := balanceOrder(expenses, participants, net)

	type entry struct {
		id     string
		amount decimal.Decimal
	}

	var creditors, debtors []entry
	for _, id := range order {
		rounded := RoundMoney(net[id])
		if rounded.Abs().LessThanOrEqual(Dust) {
			continue
		}
		if rounded.IsPositive() {
			creditors = append(creditors, entry{id: id, amount: rounded})
		} else {
			debtors = append(debtors, entry{id: id, amount: rounded.Abs()})
		}
	}

	sort.SliceStable(creditors, func(a, b int) bool {
		return creditors[a].amount.GreaterThan(creditors[b].amount)
	})
	sort.SliceStable(debtors, func(a, b int) bool {
		return debtors[a].amount.GreaterThan(debtors[b].amount)
	})

	var settlements []Settlement
	ci, di := 0, 0

	for ci < len(creditors) && di < len(debtors) {
		creditor := &creditors[ci]
		debtor := &debtors[di]

		amount := decimal.Min(creditor.amount, debtor.amount)
		if amount.LessThanOrEqual(Dust) {
			// Residual dust only; stop rather than loop forever.
			break
		}

		settlements = append(settlements, Settlement{
			From:   debtor.id,
			To:     creditor.id,
			Amount: RoundMoney(amount),
		})

		creditor.amount = creditor.amount.Sub(amount)
		debtor.amount = debtor.amount.Sub(amount)

		if creditor.amount.LessThan(Dust) {
			ci++
		}
		if debtor.amount.LessThan(Dust) {
			di++
		}
	}

	return settlements
}
