// Package calculator turns activities, items and splits into shares, debts and settlement plans.
//
// Every function here is pure: it reads fully loaded data and returns a complete result. Callers
// re-run them from scratch whenever a change notification arrives; nothing is cached or patched
// incrementally.
//
// Amounts are exact decimals. Rounding to whole currency units happens once, in the presentation
// layer, via money.Round.
package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/billbuddy/internal/money"
)

// ItemShare is one participant's share of an item split equally among participantCount people.
// An item with no participants charges nobody.
func ItemShare(totalPrice decimal.Decimal, participantCount int) decimal.Decimal {
	if participantCount <= 0 {
		return decimal.Zero
	}
	return totalPrice.Div(decimal.NewFromInt(int64(participantCount)))
}

// ProportionalSurcharge adds the participant's part of the activity's tax and service charge and
// subtracts their part of the discount, proportional to share / activitySubtotal:
//
//	share + (tax + service - discount) * share / activitySubtotal
//
// With a zero activity subtotal the ratio is zero and share is returned unchanged.
func ProportionalSurcharge(share, activitySubtotal, tax, service, discount decimal.Decimal) decimal.Decimal {
	if activitySubtotal.IsZero() {
		return share
	}
	adjustment := tax.Add(service).Sub(discount)
	return share.Add(adjustment.Mul(share).Div(activitySubtotal))
}

// activityRates bundles an activity's adjustment inputs as decimals.
type activityRates struct {
	subtotal, tax, service, discount decimal.Decimal
}

func ratesOf(subtotal, tax, service, discount int64) activityRates {
	return activityRates{
		subtotal: money.FromUnits(subtotal),
		tax:      money.FromUnits(tax),
		service:  money.FromUnits(service),
		discount: money.FromUnits(discount),
	}
}

func (r activityRates) owed(share decimal.Decimal) decimal.Decimal {
	return ProportionalSurcharge(share, r.subtotal, r.tax, r.service, r.discount)
}
