package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/billbuddy/internal/models"
)

// Pair is an ordered (debtor, creditor) key.
type Pair struct {
	DebtorID   string
	CreditorID string
}

// DebtMatrix accumulates what each debtor owes each creditor.
type DebtMatrix map[Pair]decimal.Decimal

// DirectedDebt is a computed obligation: DebtorID owes CreditorID Amount.
type DirectedDebt struct {
	DebtorID   string
	CreditorID string
	Amount     decimal.Decimal
}

// AggregateDebts walks every split of every item of every activity and adds the split's owed amount
// (share plus proportional adjustment) to the (participant, payer) pair. Splits belonging to the
// payer are skipped; an item without splits contributes nothing.
func AggregateDebts(activities []models.Activity) DebtMatrix {
	debts := make(DebtMatrix)
	for i := range activities {
		activity := &activities[i]
		if activity.PayerID == "" {
			continue
		}
		rates := ratesOf(activity.Subtotal, activity.TaxAmount, activity.ServiceCharge, activity.DiscountAmount)

		for _, item := range activity.Items {
			for _, split := range item.Splits {
				if split.UserID == activity.PayerID {
					continue
				}
				key := Pair{DebtorID: split.UserID, CreditorID: activity.PayerID}
				debts[key] = debts[key].Add(rates.owed(split.ShareAmount))
			}
		}
	}
	return debts
}

// Total sums every entry.
func (m DebtMatrix) Total() decimal.Decimal {
	total := decimal.Zero
	for _, amount := range m {
		total = total.Add(amount)
	}
	return total
}

// NetDebts collapses each unordered pair {A, B} into at most one directed debt:
// net = owed(A→B) - owed(B→A). A positive net above threshold becomes A→B, a negative one below
// -threshold becomes B→A, and anything within threshold is treated as settled.
//
// Debts are netted per pair only. A owing B and B owing C stays two debts; it is not chained into
// A owing C. The result is ordered by amount, largest first.
func NetDebts(debts DebtMatrix, threshold decimal.Decimal) []DirectedDebt {
	pairs := make([]Pair, 0, len(debts))
	for p := range debts {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].DebtorID != pairs[j].DebtorID {
			return pairs[i].DebtorID < pairs[j].DebtorID
		}
		return pairs[i].CreditorID < pairs[j].CreditorID
	})

	processed := make(map[Pair]bool, len(pairs))
	var result []DirectedDebt
	for _, p := range pairs {
		if p.DebtorID == p.CreditorID {
			continue
		}
		unordered := p
		if unordered.CreditorID < unordered.DebtorID {
			unordered = Pair{DebtorID: p.CreditorID, CreditorID: p.DebtorID}
		}
		if processed[unordered] {
			continue
		}
		processed[unordered] = true

		reverse := Pair{DebtorID: p.CreditorID, CreditorID: p.DebtorID}
		net := debts[p].Sub(debts[reverse])

		switch {
		case net.GreaterThan(threshold):
			result = append(result, DirectedDebt{DebtorID: p.DebtorID, CreditorID: p.CreditorID, Amount: net})
		case net.LessThan(threshold.Neg()):
			result = append(result, DirectedDebt{DebtorID: p.CreditorID, CreditorID: p.DebtorID, Amount: net.Neg()})
		}
	}

	sortDebts(result)
	return result
}

func sortDebts(debts []DirectedDebt) {
	sort.SliceStable(debts, func(i, j int) bool {
		if c := debts[i].Amount.Cmp(debts[j].Amount); c != 0 {
			return c > 0
		}
		if debts[i].DebtorID != debts[j].DebtorID {
			return debts[i].DebtorID < debts[j].DebtorID
		}
		return debts[i].CreditorID < debts[j].CreditorID
	})
}
