package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/billbuddy/internal/api"
	"github.com/mmynk/billbuddy/internal/receipt"
)

type fakeScanner struct {
	draft *receipt.Draft
	err   error
	calls int
}

func (f *fakeScanner) Scan(_ context.Context, _ []byte, _ string) (*receipt.Draft, error) {
	f.calls++
	return f.draft, f.err
}

func dinnerRequest(roomID string, alice, bob session) *api.CreateActivityRequest {
	return &api.CreateActivityRequest{
		RoomID:        roomID,
		Name:          "Dinner at Jimbaran",
		PayerID:       alice.user.ID,
		TaxAmount:     10000,
		ServiceCharge: 5000,
		Items: []api.NewItem{
			{Name: "Nasi Goreng", Quantity: 2, UnitPrice: 50000, ParticipantIDs: []string{alice.user.ID, bob.user.ID}},
			{Name: "Satay", Quantity: 1, TotalPrice: 50000, ParticipantIDs: []string{bob.user.ID}},
		},
	}
}

func TestCreateActivity(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	room := env.newRoom(t, alice, bob)

	resp := env.createActivity(t, alice, dinnerRequest(room.ID, alice, bob))
	activity := resp.Activity

	assert.NotEmpty(t, activity.ID)
	assert.Equal(t, int64(150000), activity.Subtotal)
	assert.Equal(t, int64(165000), activity.TotalAmount)
	require.Len(t, activity.Items, 2)

	// Total price derived from quantity and unit price.
	nasi := activity.Items[0]
	assert.Equal(t, int64(100000), nasi.TotalPrice)
	assert.Equal(t, []string{alice.user.ID, bob.user.ID}, participants(nasi))
	for _, s := range nasi.Splits {
		assert.Equal(t, "50000", s.ShareAmount)
		assert.False(t, s.IsPaid)
	}

	totals := map[string]api.ParticipantTotal{}
	for _, pt := range resp.Totals {
		totals[pt.UserID] = pt
	}
	// Adjustment is (10000 + 5000) * subtotal / 150000.
	assert.Equal(t, api.ParticipantTotal{UserID: alice.user.ID, Subtotal: 50000, Adjustment: 5000, Total: 55000}, totals[alice.user.ID])
	assert.Equal(t, api.ParticipantTotal{UserID: bob.user.ID, Subtotal: 100000, Adjustment: 10000, Total: 110000}, totals[bob.user.ID])
}

func TestCreateActivityValidation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	mallory := env.register(t, "mallory")
	room := env.newRoom(t, alice, bob)

	tests := []struct {
		name   string
		mutate func(r *api.CreateActivityRequest)
	}{
		{"missing name", func(r *api.CreateActivityRequest) { r.Name = "" }},
		{"negative tax", func(r *api.CreateActivityRequest) { r.TaxAmount = -1 }},
		{"zero quantity", func(r *api.CreateActivityRequest) { r.Items[1].Quantity = 0 }},
		{"total mismatch", func(r *api.CreateActivityRequest) { r.Items[0].TotalPrice = 99999 }},
		{"payer not a member", func(r *api.CreateActivityRequest) { r.PayerID = mallory.user.ID }},
		{"participant not a member", func(r *api.CreateActivityRequest) {
			r.Items[1].ParticipantIDs = []string{mallory.user.ID}
		}},
		{"discount above total", func(r *api.CreateActivityRequest) { r.DiscountAmount = 1000000 }},
		{"overflowing line total", func(r *api.CreateActivityRequest) { r.Items[0].UnitPrice = math.MaxInt64/2 + 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := dinnerRequest(room.ID, alice, bob)
			tt.mutate(req)
			_, err := env.activities.CreateActivity(context.Background(), authed(alice, req))
			requireCode(t, err, connect.CodeInvalidArgument)
		})
	}

	list, err := env.activities.ListActivities(context.Background(), authed(alice, &api.ListActivitiesRequest{RoomID: room.ID}))
	require.NoError(t, err)
	assert.Empty(t, list.Msg.Activities)
}

func TestCreateActivityOutsideRoom(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	mallory := env.register(t, "mallory")
	room := env.newRoom(t, alice, bob)

	_, err := env.activities.CreateActivity(context.Background(), authed(mallory, dinnerRequest(room.ID, alice, bob)))
	requireCode(t, err, connect.CodePermissionDenied)
}

func TestGetListAndDeleteActivity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	room := env.newRoom(t, alice, bob)

	first := env.createActivity(t, alice, dinnerRequest(room.ID, alice, bob)).Activity
	second := env.createActivity(t, bob, &api.CreateActivityRequest{
		RoomID:  room.ID,
		Name:    "Taxi",
		PayerID: bob.user.ID,
		Items:   []api.NewItem{{Name: "Ride", Quantity: 1, TotalPrice: 30000, ParticipantIDs: []string{alice.user.ID, bob.user.ID}}},
	}).Activity

	got, err := env.activities.GetActivity(ctx, authed(bob, &api.GetActivityRequest{ActivityID: first.ID}))
	require.NoError(t, err)
	assert.Equal(t, first.Name, got.Msg.Activity.Name)
	assert.Len(t, got.Msg.Totals, 2)

	list, err := env.activities.ListActivities(ctx, authed(alice, &api.ListActivitiesRequest{RoomID: room.ID}))
	require.NoError(t, err)
	require.Len(t, list.Msg.Activities, 2)

	_, err = env.activities.DeleteActivity(ctx, authed(alice, &api.DeleteActivityRequest{ActivityID: first.ID}))
	require.NoError(t, err)

	_, err = env.activities.GetActivity(ctx, authed(alice, &api.GetActivityRequest{ActivityID: first.ID}))
	requireCode(t, err, connect.CodeNotFound)

	list, err = env.activities.ListActivities(ctx, authed(alice, &api.ListActivitiesRequest{RoomID: room.ID}))
	require.NoError(t, err)
	require.Len(t, list.Msg.Activities, 1)
	assert.Equal(t, second.ID, list.Msg.Activities[0].ID)
}

func TestScanReceipt(t *testing.T) {
	draft := &receipt.Draft{
		Items:    []receipt.DraftItem{{Name: "Bintang", Quantity: 2, UnitPrice: 35000, TotalPrice: 70000}},
		Subtotal: 70000,
		Tax:      7000,
		Total:    77000,
	}
	scanner := &fakeScanner{draft: draft}
	env := newTestEnv(t, withScanner(scanner))
	alice := env.register(t, "alice")

	resp, err := env.activities.ScanReceipt(context.Background(), authed(alice, &api.ScanReceiptRequest{
		Image:    []byte{0xff, 0xd8, 0xff},
		MimeType: "image/jpeg",
	}))
	require.NoError(t, err)
	assert.Equal(t, *draft, resp.Msg.Draft)
	assert.Equal(t, 1, scanner.calls)

	_, err = env.activities.ScanReceipt(context.Background(), authed(alice, &api.ScanReceiptRequest{}))
	requireCode(t, err, connect.CodeInvalidArgument)
}

func TestScanReceiptFailure(t *testing.T) {
	tests := []struct {
		name    string
		scanner receipt.Scanner
	}{
		{"scanner error", &fakeScanner{err: errors.New("quota exceeded")}},
		{"no scanner", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, withScanner(tt.scanner))
			alice := env.register(t, "alice")

			_, err := env.activities.ScanReceipt(context.Background(), authed(alice, &api.ScanReceiptRequest{
				Image: []byte{0x89, 0x50, 0x4e, 0x47},
			}))
			requireCode(t, err, connect.CodeUnavailable)
			var cerr *connect.Error
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, "scan failed", cerr.Message())
		})
	}
}
