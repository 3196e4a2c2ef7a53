package service

import (
	"github.com/mmynk/billbuddy/internal/api"
	"github.com/mmynk/billbuddy/internal/calculator"
	"github.com/mmynk/billbuddy/internal/models"
	"github.com/mmynk/billbuddy/internal/money"
	"github.com/mmynk/billbuddy/internal/notify"
)

func toAPIUser(u *models.User) api.User {
	return api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

func toAPIRoom(r *models.Room) api.Room {
	members := make([]api.Member, len(r.Members))
	for i, m := range r.Members {
		members[i] = api.Member{UserID: m.UserID, DisplayName: m.DisplayName, JoinedAt: m.JoinedAt}
	}
	return api.Room{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		HostID:      r.HostID,
		InviteCode:  r.InviteCode,
		CreatedAt:   r.CreatedAt,
		Members:     members,
	}
}

func toAPISplit(s *models.ItemSplit) api.Split {
	return api.Split{
		ID:          s.ID,
		ItemID:      s.ItemID,
		UserID:      s.UserID,
		ShareAmount: s.ShareAmount.String(),
		IsPaid:      s.IsPaid,
		PaidAt:      s.PaidAt,
	}
}

func toAPIItem(item *models.ActivityItem) api.Item {
	splits := make([]api.Split, len(item.Splits))
	for i := range item.Splits {
		splits[i] = toAPISplit(&item.Splits[i])
	}
	return api.Item{
		ID:           item.ID,
		Name:         item.Name,
		Quantity:     item.Quantity,
		UnitPrice:    item.UnitPrice,
		TotalPrice:   item.TotalPrice,
		SplitVersion: item.SplitVersion,
		Splits:       splits,
	}
}

func toAPIActivity(a *models.Activity) api.Activity {
	items := make([]api.Item, len(a.Items))
	for i := range a.Items {
		items[i] = toAPIItem(&a.Items[i])
	}
	return api.Activity{
		ID:              a.ID,
		RoomID:          a.RoomID,
		Name:            a.Name,
		Description:     a.Description,
		PayerID:         a.PayerID,
		Subtotal:        a.Subtotal,
		TaxAmount:       a.TaxAmount,
		ServiceCharge:   a.ServiceCharge,
		DiscountAmount:  a.DiscountAmount,
		TotalAmount:     a.TotalAmount,
		ReceiptImageURL: a.ReceiptImageURL,
		CreatedAt:       a.CreatedAt,
		Items:           items,
	}
}

func toAPITotals(splits []calculator.PersonSplit) []api.ParticipantTotal {
	totals := make([]api.ParticipantTotal, len(splits))
	for i, ps := range splits {
		totals[i] = api.ParticipantTotal{
			UserID:     ps.UserID,
			Subtotal:   money.Round(ps.Subtotal),
			Adjustment: money.Round(ps.Adjustment),
			Total:      money.Round(ps.Total),
		}
	}
	return totals
}

func toAPIAccount(a *models.PaymentAccount) api.PaymentAccount {
	return api.PaymentAccount{
		ID:            a.ID,
		UserID:        a.UserID,
		BankName:      a.BankName,
		AccountNumber: a.AccountNumber,
		AccountHolder: a.AccountHolder,
		IsPrimary:     a.IsPrimary,
	}
}

func toAPIChecklist(entries []calculator.ChecklistEntry) []api.ChecklistEntry {
	out := make([]api.ChecklistEntry, len(entries))
	for i, e := range entries {
		out[i] = api.ChecklistEntry{
			SplitID:      e.SplitID,
			ActivityID:   e.ActivityID,
			ActivityName: e.ActivityName,
			ItemID:       e.ItemID,
			ItemName:     e.ItemName,
			DebtorID:     e.DebtorID,
			CreditorID:   e.CreditorID,
			Share:        e.Share.String(),
			Amount:       money.Round(e.Owed),
			IsPaid:       e.IsPaid,
		}
	}
	return out
}

func toAPIEvent(e notify.Event) api.RoomEvent {
	return api.RoomEvent{
		ID:         e.ID,
		RoomID:     e.RoomID,
		Kind:       string(e.Kind),
		ActivityID: e.ActivityID,
		ItemID:     e.ItemID,
		UserID:     e.UserID,
		At:         e.At,
	}
}
