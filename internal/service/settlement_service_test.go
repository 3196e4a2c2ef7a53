package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/billbuddy/internal/api"
	"github.com/mmynk/billbuddy/internal/money"
)

// settlementFixture: alice pays a 100000 dinner with 15000 tax shared with bob, bob pays a 30000
// taxi shared with alice. Bob owes alice 57500, alice owes bob 15000. Carol joined but spent nothing.
type settlementFixture struct {
	env               *testEnv
	room              api.Room
	alice, bob, carol session
}

func newSettlementFixture(t *testing.T) *settlementFixture {
	t.Helper()
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	carol := env.register(t, "carol")
	room := env.newRoom(t, alice, bob, carol)
	both := []string{alice.user.ID, bob.user.ID}

	env.createActivity(t, alice, &api.CreateActivityRequest{
		RoomID:    room.ID,
		Name:      "Dinner",
		PayerID:   alice.user.ID,
		TaxAmount: 15000,
		Items:     []api.NewItem{{Name: "Seafood", Quantity: 1, TotalPrice: 100000, ParticipantIDs: both}},
	})
	env.createActivity(t, bob, &api.CreateActivityRequest{
		RoomID:  room.ID,
		Name:    "Taxi",
		PayerID: bob.user.ID,
		Items:   []api.NewItem{{Name: "Ride", Quantity: 1, TotalPrice: 30000, ParticipantIDs: both}},
	})

	return &settlementFixture{env: env, room: room, alice: alice, bob: bob, carol: carol}
}

func TestGetPairwiseDebts(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()

	_, err := f.env.profiles.SetPaymentAccount(ctx, authed(f.alice, &api.SetPaymentAccountRequest{
		BankName:      "BCA",
		AccountNumber: "1234567890",
		AccountHolder: "Alice",
	}))
	require.NoError(t, err)

	resp, err := f.env.settlement.GetPairwiseDebts(ctx, authed(f.carol, &api.GetPairwiseDebtsRequest{RoomID: f.room.ID}))
	require.NoError(t, err)

	require.Len(t, resp.Msg.Debts, 1)
	debt := resp.Msg.Debts[0]
	assert.Equal(t, f.bob.user.ID, debt.DebtorID)
	assert.Equal(t, "bob", debt.DebtorName)
	assert.Equal(t, f.alice.user.ID, debt.CreditorID)
	assert.Equal(t, "alice", debt.CreditorName)
	assert.Equal(t, int64(42500), debt.Amount)
	require.NotNil(t, debt.CreditorAccount)
	assert.Equal(t, "BCA", debt.CreditorAccount.BankName)
	assert.Equal(t, int64(42500), resp.Msg.Total)
}

func TestGetPairwiseDebtsEmptyRoom(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	room := env.newRoom(t, alice)

	resp, err := env.settlement.GetPairwiseDebts(context.Background(), authed(alice, &api.GetPairwiseDebtsRequest{RoomID: room.ID}))
	require.NoError(t, err)
	assert.Empty(t, resp.Msg.Debts)
	assert.Zero(t, resp.Msg.Total)
}

func TestGetSettlementPlan(t *testing.T) {
	f := newSettlementFixture(t)

	resp, err := f.env.settlement.GetSettlementPlan(context.Background(), authed(f.alice, &api.GetSettlementPlanRequest{RoomID: f.room.ID}))
	require.NoError(t, err)

	require.Len(t, resp.Msg.Balances, 3)
	balances := map[string]api.Balance{}
	var sum int64
	for _, b := range resp.Msg.Balances {
		balances[b.UserID] = b
		sum += b.Net
	}
	assert.Zero(t, sum)

	// Alice is credited both dinner allocations and owes her dinner half plus her taxi half.
	assert.Equal(t, api.Balance{UserID: f.alice.user.ID, DisplayName: "alice", Paid: 115000, Owed: 72500, Net: 42500}, balances[f.alice.user.ID])
	assert.Equal(t, api.Balance{UserID: f.bob.user.ID, DisplayName: "bob", Paid: 30000, Owed: 72500, Net: -42500}, balances[f.bob.user.ID])
	assert.Equal(t, api.Balance{UserID: f.carol.user.ID, DisplayName: "carol"}, balances[f.carol.user.ID])

	require.Len(t, resp.Msg.Transfers, 1)
	assert.Equal(t, api.Transfer{
		FromID:   f.bob.user.ID,
		FromName: "bob",
		ToID:     f.alice.user.ID,
		ToName:   "alice",
		Amount:   42500,
	}, resp.Msg.Transfers[0])
}

func TestGetSummary(t *testing.T) {
	f := newSettlementFixture(t)

	resp, err := f.env.settlement.GetSummary(context.Background(), authed(f.bob, &api.GetSummaryRequest{RoomID: f.room.ID}))
	require.NoError(t, err)

	text := resp.Msg.Text
	assert.Contains(t, text, "Bali Trip: settlement summary")
	assert.Contains(t, text, "- bob owes alice "+money.Format(42500, money.DefaultCurrency))
	assert.Contains(t, text, "Total: "+money.Format(42500, money.DefaultCurrency))
}

func TestFormatSummary(t *testing.T) {
	assert.Equal(t, "Trip: settlement summary\nEveryone is settled up.\n", formatSummary("Trip", nil, "USD"))

	debts := []api.Debt{
		{DebtorName: "Bob", CreditorName: "Alice", Amount: 1250, CreditorAccount: &api.PaymentAccount{
			BankName: "Chase", AccountNumber: "42", AccountHolder: "Alice A",
		}},
		{DebtorName: "Carol", CreditorName: "Alice", Amount: 100},
	}
	want := "Trip: settlement summary\n" +
		"- Bob owes Alice $12.50 (Chase 42 a.n. Alice A)\n" +
		"- Carol owes Alice $1.00\n" +
		"Total: $13.50\n"
	assert.Equal(t, want, formatSummary("Trip", debts, "USD"))
}

func TestSettlementRequiresMembership(t *testing.T) {
	f := newSettlementFixture(t)
	mallory := f.env.register(t, "mallory")

	_, err := f.env.settlement.GetSettlementPlan(context.Background(), authed(mallory, &api.GetSettlementPlanRequest{RoomID: f.room.ID}))
	requireCode(t, err, connect.CodePermissionDenied)
}
