package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/billbuddy/internal/models"
)

// MemberBalance is one participant's room-wide position.
type MemberBalance struct {
	UserID string
	Paid   decimal.Decimal // what others' (and their own) allocated shares credit them as payer
	Owed   decimal.Decimal // what their own allocated shares cost them
	Net    decimal.Decimal // Paid - Owed. Positive = owed money, negative = owes money
}

// Transfer is one step of a settlement plan: FromID pays ToID Amount.
type Transfer struct {
	FromID string
	ToID   string
	Amount decimal.Decimal
}

// CalculateRoomBalances computes every participant's net balance across all activities in a room.
//
// Algorithm:
//   - For each split: owed = share + proportional adjustment
//   - The split's participant owes owed; the activity's payer is credited owed
//   - net = paid - owed
//
// Crediting the payer with exactly what was allocated keeps the balances summing to zero even when
// some items are unassigned. Members without any activity appear with a zero balance; participants
// who are no longer members still appear. Members come first in the given order, others by ID.
func CalculateRoomBalances(activities []models.Activity, memberIDs []string) []MemberBalance {
	balances := make(map[string]*MemberBalance)
	order := make([]string, 0, len(memberIDs))

	ensure := func(id string) *MemberBalance {
		if b, ok := balances[id]; ok {
			return b
		}
		b := &MemberBalance{UserID: id, Paid: decimal.Zero, Owed: decimal.Zero}
		balances[id] = b
		return b
	}
	for _, id := range memberIDs {
		if _, ok := balances[id]; !ok {
			ensure(id)
			order = append(order, id)
		}
	}

	var extra []string
	for i := range activities {
		activity := &activities[i]
		if activity.PayerID == "" {
			continue
		}
		rates := ratesOf(activity.Subtotal, activity.TaxAmount, activity.ServiceCharge, activity.DiscountAmount)

		for _, item := range activity.Items {
			for _, split := range item.Splits {
				owed := rates.owed(split.ShareAmount)
				for _, id := range []string{split.UserID, activity.PayerID} {
					if _, ok := balances[id]; !ok {
						ensure(id)
						extra = append(extra, id)
					}
				}
				balances[split.UserID].Owed = balances[split.UserID].Owed.Add(owed)
				balances[activity.PayerID].Paid = balances[activity.PayerID].Paid.Add(owed)
			}
		}
	}
	sort.Strings(extra)
	order = append(order, extra...)

	result := make([]MemberBalance, 0, len(order))
	for _, id := range order {
		b := balances[id]
		b.Net = b.Paid.Sub(b.Owed)
		result = append(result, *b)
	}
	return result
}

// PlanSettlement turns net balances into a list of transfers using greedy matching:
//
//  1. Debtors are members with net < -floor, creditors those with net > floor.
//  2. Debtors are sorted most negative first, creditors largest first (ties by user ID).
//  3. The current debtor pays the current creditor min(|debtor|, creditor).
//  4. A side whose remaining magnitude drops below floor, or reaches zero, is done; move to the next one.
//  5. Stop when either list is exhausted.
//
// This keeps the number of transfers small but is not guaranteed to be the global minimum for every
// multi-party case. The output is exactly what the steps above produce.
func PlanSettlement(balances []MemberBalance, floor decimal.Decimal) []Transfer {
	type entry struct {
		id        string
		remaining decimal.Decimal // always positive
	}

	if floor.IsNegative() {
		floor = decimal.Zero
	}

	var debtors, creditors []entry
	for _, b := range balances {
		switch {
		case b.Net.LessThan(floor.Neg()):
			debtors = append(debtors, entry{id: b.UserID, remaining: b.Net.Neg()})
		case b.Net.GreaterThan(floor):
			creditors = append(creditors, entry{id: b.UserID, remaining: b.Net})
		}
	}

	byLargest := func(list []entry) func(i, j int) bool {
		return func(i, j int) bool {
			if c := list[i].remaining.Cmp(list[j].remaining); c != 0 {
				return c > 0
			}
			return list[i].id < list[j].id
		}
	}
	sort.SliceStable(debtors, byLargest(debtors))
	sort.SliceStable(creditors, byLargest(creditors))

	var transfers []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := &debtors[i]
		creditor := &creditors[j]

		amount := decimal.Min(debtor.remaining, creditor.remaining)
		if amount.IsPositive() {
			transfers = append(transfers, Transfer{
				FromID: debtor.id,
				ToID:   creditor.id,
				Amount: amount,
			})
		}

		debtor.remaining = debtor.remaining.Sub(amount)
		creditor.remaining = creditor.remaining.Sub(amount)

		if done(debtor.remaining, floor) {
			i++
		}
		if done(creditor.remaining, floor) {
			j++
		}
	}

	return transfers
}

func done(remaining, floor decimal.Decimal) bool {
	return remaining.LessThan(floor) || !remaining.IsPositive()
}
