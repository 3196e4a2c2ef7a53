package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/billbuddy/internal/models"
)

// ChecklistEntry is one split-level obligation as seen by a single user.
type ChecklistEntry struct {
	SplitID      string
	ActivityID   string
	ActivityName string
	ItemID       string
	ItemName     string
	DebtorID     string
	CreditorID   string
	Share        decimal.Decimal // the raw item share
	Owed         decimal.Decimal // share plus proportional adjustment
	IsPaid       bool
}

// Checklist splits a user's obligations into what others owe them and what they owe others.
type Checklist struct {
	OwedToMe []ChecklistEntry
	MyDebts  []ChecklistEntry
}

// BuildChecklist lists every split in the room that involves userID as payer or participant.
// Splits whose participant is the activity's payer are never listed.
func BuildChecklist(activities []models.Activity, userID string) Checklist {
	var list Checklist
	for i := range activities {
		activity := &activities[i]
		rates := ratesOf(activity.Subtotal, activity.TaxAmount, activity.ServiceCharge, activity.DiscountAmount)
		isPayer := activity.PayerID == userID

		for _, item := range activity.Items {
			for _, split := range item.Splits {
				if split.UserID == activity.PayerID {
					continue
				}
				entry := ChecklistEntry{
					SplitID:      split.ID,
					ActivityID:   activity.ID,
					ActivityName: activity.Name,
					ItemID:       item.ID,
					ItemName:     item.Name,
					DebtorID:     split.UserID,
					CreditorID:   activity.PayerID,
					Share:        split.ShareAmount,
					Owed:         rates.owed(split.ShareAmount),
					IsPaid:       split.IsPaid,
				}
				if isPayer {
					list.OwedToMe = append(list.OwedToMe, entry)
				}
				if split.UserID == userID {
					list.MyDebts = append(list.MyDebts, entry)
				}
			}
		}
	}
	return list
}

// Outstanding sums Owed over unpaid entries.
func Outstanding(entries []ChecklistEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if !e.IsPaid {
			total = total.Add(e.Owed)
		}
	}
	return total
}
