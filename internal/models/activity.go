package models

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Activity is one recorded expense event inside a room.
type Activity struct {
	// ID is the unique identifier for the activity (UUID format).
	ID string

	// RoomID is the owning room.
	RoomID string

	// Name is the human-readable label (e.g., "Dinner at Jimbaran").
	Name string

	// Description is optional free text.
	Description string

	// PayerID is the member who paid the whole bill.
	PayerID string

	// Subtotal is the sum of item totals before tax, service and discount.
	Subtotal int64

	// TaxAmount, ServiceCharge and DiscountAmount are activity-level adjustments that are
	// distributed over participants in proportion to their item subtotal.
	TaxAmount      int64
	ServiceCharge  int64
	DiscountAmount int64

	// TotalAmount is stored for display; computations use ComputedTotal.
	TotalAmount int64

	// ReceiptImageURL optionally points at the scanned receipt.
	ReceiptImageURL string

	// CreatedAt is the Unix timestamp when the activity was recorded.
	CreatedAt int64

	// Items are the line items, each with its current splits.
	Items []ActivityItem
}

// ActivityItem is one line item within an activity.
type ActivityItem struct {
	ID         string
	ActivityID string
	Name       string
	Quantity   int64
	UnitPrice  int64

	// TotalPrice is what gets split. It is stored independently of Quantity*UnitPrice.
	TotalPrice int64

	// SplitVersion increments on every replacement of the item's split set.
	// Writers pass the version they read; a mismatch means someone else replaced the set first.
	SplitVersion int64

	Splits []ItemSplit
}

// ItemSplit records one participant's share of one item.
type ItemSplit struct {
	ID     string
	ItemID string
	UserID string

	// ShareAmount is item.TotalPrice / len(item.Splits), kept exact.
	ShareAmount decimal.Decimal

	// IsPaid is toggled by the settlement checklist and never affects ShareAmount.
	IsPaid bool
	PaidAt int64

	CreatedAt int64
}

// ComputedTotal is subtotal + tax + service charge - discount.
func (a *Activity) ComputedTotal() int64 {
	return a.Subtotal + a.TaxAmount + a.ServiceCharge - a.DiscountAmount
}

// ItemsSubtotal sums the item totals.
func (a *Activity) ItemsSubtotal() int64 {
	var sum int64
	for _, item := range a.Items {
		sum += item.TotalPrice
	}
	return sum
}

// ParticipantIDs returns the user IDs currently splitting the item, in stored order.
func (i *ActivityItem) ParticipantIDs() []string {
	ids := make([]string, len(i.Splits))
	for n, s := range i.Splits {
		ids[n] = s.UserID
	}
	return ids
}

// Validate checks the activity's own fields and items. Membership checks need the room and are done
// by the caller.
func (a *Activity) Validate() error {
	if strings.TrimSpace(a.RoomID) == "" {
		return NewValidationError("room_id", "required")
	}
	if strings.TrimSpace(a.Name) == "" {
		return NewValidationError("name", "required")
	}
	if strings.TrimSpace(a.PayerID) == "" {
		return NewValidationError("payer_id", "required")
	}
	if a.TaxAmount < 0 {
		return NewValidationError("tax_amount", "must not be negative")
	}
	if a.ServiceCharge < 0 {
		return NewValidationError("service_charge", "must not be negative")
	}
	if a.DiscountAmount < 0 {
		return NewValidationError("discount_amount", "must not be negative")
	}
	var itemsTotal int64
	for i := range a.Items {
		if err := a.Items[i].Validate(); err != nil {
			return err
		}
		var ok bool
		if itemsTotal, ok = addAmounts(itemsTotal, a.Items[i].TotalPrice); !ok {
			return NewValidationError("items.total_price", "sum of item totals is too large")
		}
	}
	if _, ok := addAmounts(a.Subtotal, a.TaxAmount, a.ServiceCharge); !ok {
		return NewValidationError("total_amount", "too large")
	}
	if a.ComputedTotal() < 0 {
		return NewValidationError("discount_amount", "exceeds subtotal plus tax and service charge")
	}
	return nil
}

// Validate checks an item's quantities and prices.
func (i *ActivityItem) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return NewValidationError("items.name", "required")
	}
	if i.Quantity < 1 {
		return NewValidationError("items.quantity", "%q: must be at least 1", i.Name)
	}
	if i.UnitPrice < 0 {
		return NewValidationError("items.unit_price", "%q: must not be negative", i.Name)
	}
	if i.UnitPrice > math.MaxInt64/i.Quantity {
		return NewValidationError("items.unit_price", "%q: quantity x unit price is too large", i.Name)
	}
	if i.TotalPrice < 0 {
		return NewValidationError("items.total_price", "%q: must not be negative", i.Name)
	}
	if i.UnitPrice > 0 && i.TotalPrice != i.Quantity*i.UnitPrice {
		return NewValidationError("items.total_price", "%q: %d does not match quantity %d x unit price %d",
			i.Name, i.TotalPrice, i.Quantity, i.UnitPrice)
	}
	return nil
}

// addAmounts sums non-negative amounts, reporting false on int64 overflow.
func addAmounts(amounts ...int64) (int64, bool) {
	var sum int64
	for _, a := range amounts {
		if a > math.MaxInt64-sum {
			return 0, false
		}
		sum += a
	}
	return sum, true
}
