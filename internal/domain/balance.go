package domain

import "github.com/shopspring/decimal"

// ComputeNetBalances folds expenses and settlement payments into one
// signed balance per participant: positive means the participant is owed
// money by the group, negative means they owe. The sum over a group is
// always zero since every credit has a matching debit.
//
// An expense payer or split participant missing from the participant list
// still gets a balance entry. A payment referencing an id absent from the
// balance map is silently ignored; that is a documented tolerance, not a
// validated precondition (the payment guard prevents it upstream).
func ComputeNetBalances(expenses []*Expense, participants []*Participant, payments []*SettlementPayment) map[string]decimal.Decimal {
	net := make(map[string]decimal.Decimal, len(participants))

	for _, p := range participants {
		net[p.ID] = decimal.Zero
	}

	for _, e := range expenses {
		net[e.PaidBy] = net[e.PaidBy].Add(e.Amount)
		for _, s := range e.Splits {
			net[s.ParticipantID] = net[s.ParticipantID].Sub(s.Amount)
		}
	}

	for _, p := range payments {
		from, okFrom := net[p.From]
		to, okTo := net[p.To]
		if !okFrom || !okTo {
			continue
		}
		if p.Amount.LessThanOrEqual(decimal.Zero) {
			continue
		}
		net[p.From] = from.Add(p.Amount)
		net[p.To] = to.Sub(p.Amount)
	}

	return net
}

// balanceOrder returns the balance map's participant ids in a stable
// order: the group's participant order first, then any ids introduced by
// expenses in first-appearance order. Map iteration alone would make the
// greedy matchers below nondeterministic.
func balanceOrder(expenses []*Expense, participants []*Participant, net map[string]decimal.Decimal) []string {
	order := make([]string, 0, len(net))
	seen := make(map[string]bool, len(net))

	appendID := func(id string) {
		if seen[id] {
			return
		}
		if _, ok := net[id]; !ok {
			return
		}
		seen[id] = true
		order = append(order, id)
	}

	for _, p := range participants {
		appendID(p.ID)
	}
	for _, e := range expenses {
		appendID(e.PaidBy)
		for _, s := range e.Splits {
			appendID(s.ParticipantID)
		}
	}

	return order
}

// Balance is a debtor-to-creditor obligation produced by the debt matrix.
// Output only, never persisted.
type Balance struct {
	From   string
	To     string
	Amount decimal.Decimal
}

// CalculateBalances turns expenses into all-pairs debtor-to-creditor
// obligations for the "who owes whom in aggregate" view. Settlement
// payments are deliberately not part of this view; OptimizeSettlements is
// the payment-aware one.
//
// This is a cruder matcher than OptimizeSettlements: every debtor is
// walked against every creditor in order, so it can emit more edges than
// the minimum. The two views are kept as distinct algorithms on purpose.
func CalculateBalances(expenses []*Expense, participants []*Participant) []Balance {
	net := ComputeNetBalances(expenses, participants, nil)
	order := balanceOrder(expenses, participants, net)

	emitFloor := decimal.New(1, -3) // 0.001

	type entry struct {
		id     string
		amount decimal.Decimal
	}

	var creditors, debtors []*entry
	for _, id := range order {
		rounded := RoundMoney(net[id])
		if rounded.Abs().LessThanOrEqual(Dust) {
			continue
		}
		if rounded.IsPositive() {
			creditors = append(creditors, &entry{id: id, amount: rounded})
		} else {
			debtors = append(debtors, &entry{id: id, amount: rounded})
		}
	}

	var balances []Balance
	for _, debtor := range debtors {
		for _, creditor := range creditors {
			amount := decimal.Min(debtor.amount.Abs(), creditor.amount)
			if amount.GreaterThan(emitFloor) {
				balances = append(balances, Balance{
					From:   debtor.id,
					To:     creditor.id,
					Amount: RoundMoney(amount),
				})
				debtor.amount = debtor.amount.Add(amount)
				creditor.amount = creditor.amount.Sub(amount)
			}
		}
	}

	return balances
}

// TotalExpenses sums the amounts of all expenses.
func TotalExpenses(expenses []*Expense) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range expenses {
		sum = sum.Add(e.Amount)
	}
	return sum
}

// ParticipantTotalPaid sums the amounts of expenses paid by the
// participant.
func ParticipantTotalPaid(expenses []*Expense, participantID string) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range expenses {
		if e.PaidBy == participantID {
			sum = sum.Add(e.Amount)
		}
	}
	return sum
}

// ParticipantTotalOwed sums the participant's split amounts across all
// expenses.
func ParticipantTotalOwed(expenses []*Expense, participantID string) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range expenses {
		for _, s := range e.Splits {
			if s.ParticipantID == participantID {
				sum = sum.Add(s.Amount)
			}
		}
	}
	return sum
}
