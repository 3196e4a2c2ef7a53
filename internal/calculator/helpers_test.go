package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/billbuddy/internal/models"
)

// item builds an item whose splits are the equal shares for participants.
func item(id string, total int64, participants ...string) models.ActivityItem {
	it := models.ActivityItem{ID: id, Name: id, Quantity: 1, UnitPrice: total, TotalPrice: total}
	it.Splits = BuildSplits(&it, participants)
	return it
}

// activity builds an activity whose subtotal is the sum of its items.
func activity(id, payer string, tax, service, discount int64, items ...models.ActivityItem) models.Activity {
	a := models.Activity{
		ID:             id,
		Name:           id,
		RoomID:         "room",
		PayerID:        payer,
		TaxAmount:      tax,
		ServiceCharge:  service,
		DiscountAmount: discount,
		Items:          items,
	}
	a.Subtotal = a.ItemsSubtotal()
	a.TotalAmount = a.ComputedTotal()
	return a
}

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }
