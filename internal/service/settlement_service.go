package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/billbuddy/internal/api"
	"github.com/mmynk/billbuddy/internal/calculator"
	"github.com/mmynk/billbuddy/internal/models"
	"github.com/mmynk/billbuddy/internal/money"
	"github.com/mmynk/billbuddy/internal/storage"
)

// SettlementPolicy holds the thresholds and currency used when presenting debts.
type SettlementPolicy struct {
	// NetThreshold hides pairwise debts whose net amount is at or below it.
	NetThreshold decimal.Decimal
	// PlanFloor ends the settlement plan once every remaining balance is within it.
	PlanFloor decimal.Decimal
	Currency  string
}

// DefaultSettlementPolicy matches the server's configuration defaults.
var DefaultSettlementPolicy = SettlementPolicy{
	NetThreshold: decimal.NewFromInt(1),
	PlanFloor:    decimal.NewFromInt(10),
	Currency:     money.DefaultCurrency,
}

// SettlementService implements the Connect SettlementService. Every call recomputes from the
// room's current activities.
type SettlementService struct {
	store  storage.Store
	policy SettlementPolicy
}

var _ api.SettlementServiceHandler = (*SettlementService)(nil)

// NewSettlementService creates a SettlementService.
func NewSettlementService(store storage.Store, policy SettlementPolicy) *SettlementService {
	policy.Currency = money.NormalizeCurrency(policy.Currency)
	return &SettlementService{store: store, policy: policy}
}

// GetPairwiseDebts returns who owes whom, netted per pair, largest first.
func (s *SettlementService) GetPairwiseDebts(ctx context.Context, req *connect.Request[api.GetPairwiseDebtsRequest]) (*connect.Response[api.GetPairwiseDebtsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetPairwiseDebts request received", "room_id", req.Msg.RoomID, "user_id", userID)

	room, activities, err := s.load(ctx, req.Msg.RoomID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	debts, err := s.pairwiseDebts(ctx, room, activities)
	if err != nil {
		return nil, toConnectError(err)
	}

	var total int64
	for _, d := range debts {
		total += d.Amount
	}
	return connect.NewResponse(&api.GetPairwiseDebtsResponse{Debts: debts, Total: total}), nil
}

// GetSettlementPlan returns every member's balance and a short list of transfers that settles them.
func (s *SettlementService) GetSettlementPlan(ctx context.Context, req *connect.Request[api.GetSettlementPlanRequest]) (*connect.Response[api.GetSettlementPlanResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetSettlementPlan request received", "room_id", req.Msg.RoomID, "user_id", userID)

	room, activities, err := s.load(ctx, req.Msg.RoomID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	balances := calculator.CalculateRoomBalances(activities, room.MemberIDs())
	transfers := calculator.PlanSettlement(balances, s.policy.PlanFloor)

	ids := make([]string, len(balances))
	for i, b := range balances {
		ids[i] = b.UserID
	}
	names, err := s.displayNames(ctx, room, ids)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &api.GetSettlementPlanResponse{
		Balances:  make([]api.Balance, len(balances)),
		Transfers: make([]api.Transfer, len(transfers)),
	}
	for i, b := range balances {
		resp.Balances[i] = api.Balance{
			UserID:      b.UserID,
			DisplayName: names[b.UserID],
			Paid:        money.Round(b.Paid),
			Owed:        money.Round(b.Owed),
			Net:         money.Round(b.Net),
		}
	}
	for i, t := range transfers {
		resp.Transfers[i] = api.Transfer{
			FromID:   t.FromID,
			FromName: names[t.FromID],
			ToID:     t.ToID,
			ToName:   names[t.ToID],
			Amount:   money.Round(t.Amount),
		}
	}
	slog.Info("Settlement plan computed", "room_id", room.ID, "transfers", len(transfers))
	return connect.NewResponse(resp), nil
}

// GetSummary renders the pairwise debts as plain text for sharing outside the app.
func (s *SettlementService) GetSummary(ctx context.Context, req *connect.Request[api.GetSummaryRequest]) (*connect.Response[api.GetSummaryResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	room, activities, err := s.load(ctx, req.Msg.RoomID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	debts, err := s.pairwiseDebts(ctx, room, activities)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetSummaryResponse{
		Text: formatSummary(room.Name, debts, s.policy.Currency),
	}), nil
}

func (s *SettlementService) load(ctx context.Context, roomID, userID string) (*models.Room, []models.Activity, error) {
	room, err := roomForMember(ctx, s.store, roomID, userID)
	if err != nil {
		return nil, nil, err
	}
	activities, err := s.store.ListActivitiesByRoom(ctx, room.ID)
	if err != nil {
		slog.Error("Failed to load activities", "room_id", room.ID, "error", err)
		return nil, nil, err
	}
	return room, activities, nil
}

// pairwiseDebts aggregates, nets and rounds the room's debts, then annotates them with names and
// the creditor's primary payment account.
func (s *SettlementService) pairwiseDebts(ctx context.Context, room *models.Room, activities []models.Activity) ([]api.Debt, error) {
	netted := calculator.NetDebts(calculator.AggregateDebts(activities), s.policy.NetThreshold)

	ids := make([]string, 0, 2*len(netted))
	creditors := make([]string, 0, len(netted))
	for _, d := range netted {
		ids = append(ids, d.DebtorID, d.CreditorID)
		creditors = append(creditors, d.CreditorID)
	}
	names, err := s.displayNames(ctx, room, ids)
	if err != nil {
		return nil, err
	}
	accounts, err := s.store.GetPrimaryAccounts(ctx, creditors)
	if err != nil {
		return nil, err
	}

	debts := make([]api.Debt, len(netted))
	for i, d := range netted {
		debts[i] = api.Debt{
			DebtorID:     d.DebtorID,
			DebtorName:   names[d.DebtorID],
			CreditorID:   d.CreditorID,
			CreditorName: names[d.CreditorID],
			Amount:       money.Round(d.Amount),
		}
		if acct, ok := accounts[d.CreditorID]; ok {
			debts[i].CreditorAccount = ptr(toAPIAccount(acct))
		}
	}
	return debts, nil
}

// displayNames resolves names from the room's members, then from user records for former members.
// Unknown users are shown by ID.
func (s *SettlementService) displayNames(ctx context.Context, room *models.Room, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	for _, m := range room.Members {
		if m.DisplayName != "" {
			names[m.UserID] = m.DisplayName
		}
	}

	var missing []string
	for _, id := range ids {
		if _, ok := names[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		users, err := s.store.GetUsersByIDs(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, id := range missing {
			if u, ok := users[id]; ok && u.DisplayName != "" {
				names[id] = u.DisplayName
			} else {
				names[id] = id
			}
		}
	}
	return names, nil
}

func formatSummary(roomName string, debts []api.Debt, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: settlement summary\n", roomName)
	if len(debts) == 0 {
		b.WriteString("Everyone is settled up.\n")
		return b.String()
	}

	var total int64
	for _, d := range debts {
		fmt.Fprintf(&b, "- %s owes %s %s", d.DebtorName, d.CreditorName, money.Format(d.Amount, currency))
		if acct := d.CreditorAccount; acct != nil {
			fmt.Fprintf(&b, " (%s %s a.n. %s)", acct.BankName, acct.AccountNumber, acct.AccountHolder)
		}
		b.WriteString("\n")
		total += d.Amount
	}
	fmt.Fprintf(&b, "Total: %s\n", money.Format(total, currency))
	return b.String()
}
