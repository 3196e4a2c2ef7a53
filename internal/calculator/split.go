package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/billbuddy/internal/models"
)

// PersonItem is one item's share for one person.
type PersonItem struct {
	ItemID   string
	ItemName string
	Share    decimal.Decimal
}

// PersonSplit is one participant's position within a single activity.
type PersonSplit struct {
	UserID string

	// Subtotal is the sum of this person's item shares.
	Subtotal decimal.Decimal

	// Adjustment is this person's part of tax + service charge - discount.
	// Calculated as: subtotal × ((tax + service - discount) / activity_subtotal)
	Adjustment decimal.Decimal

	// Total is Subtotal + Adjustment.
	Total decimal.Decimal

	Items []PersonItem
}

// CalculateActivitySplit computes every participant's subtotal and proportional adjustment for one
// activity, from the activity's current splits. The result is ordered by user ID.
func CalculateActivitySplit(activity *models.Activity) []PersonSplit {
	rates := ratesOf(activity.Subtotal, activity.TaxAmount, activity.ServiceCharge, activity.DiscountAmount)

	byUser := make(map[string]*PersonSplit)
	for _, item := range activity.Items {
		for _, split := range item.Splits {
			ps, ok := byUser[split.UserID]
			if !ok {
				ps = &PersonSplit{UserID: split.UserID, Subtotal: decimal.Zero}
				byUser[split.UserID] = ps
			}
			ps.Subtotal = ps.Subtotal.Add(split.ShareAmount)
			ps.Items = append(ps.Items, PersonItem{
				ItemID:   item.ID,
				ItemName: item.Name,
				Share:    split.ShareAmount,
			})
		}
	}

	result := make([]PersonSplit, 0, len(byUser))
	for _, ps := range byUser {
		ps.Total = rates.owed(ps.Subtotal)
		ps.Adjustment = ps.Total.Sub(ps.Subtotal)
		result = append(result, *ps)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result
}

// UserTotal is what userID's items in the activity cost them, including their proportional
// adjustment. A user without splits in the activity owes zero.
func UserTotal(activity *models.Activity, userID string) decimal.Decimal {
	rates := ratesOf(activity.Subtotal, activity.TaxAmount, activity.ServiceCharge, activity.DiscountAmount)
	subtotal := decimal.Zero
	for _, item := range activity.Items {
		for _, split := range item.Splits {
			if split.UserID == userID {
				subtotal = subtotal.Add(split.ShareAmount)
			}
		}
	}
	return rates.owed(subtotal)
}
