package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/billbuddy/internal/api"
	"github.com/mmynk/billbuddy/internal/middleware"
	"github.com/mmynk/billbuddy/internal/models"
	"github.com/mmynk/billbuddy/internal/notify"
	"github.com/mmynk/billbuddy/internal/storage"
)

// splitFixture is a room with alice, bob and carol and one 90000 item shared by alice and bob.
type splitFixture struct {
	env               *testEnv
	room              api.Room
	alice, bob, carol session
	activity          api.Activity
	item              api.Item
}

func newSplitFixture(t *testing.T) *splitFixture {
	t.Helper()
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	carol := env.register(t, "carol")
	room := env.newRoom(t, alice, bob, carol)

	activity := env.createActivity(t, alice, &api.CreateActivityRequest{
		RoomID:  room.ID,
		Name:    "Lunch",
		PayerID: alice.user.ID,
		Items: []api.NewItem{
			{Name: "Pizza", Quantity: 1, TotalPrice: 90000, ParticipantIDs: []string{alice.user.ID, bob.user.ID}},
		},
	}).Activity

	return &splitFixture{
		env:      env,
		room:     room,
		alice:    alice,
		bob:      bob,
		carol:    carol,
		activity: activity,
		item:     activity.Items[0],
	}
}

func (f *splitFixture) toggle(t *testing.T, as session, userID string) api.Item {
	t.Helper()
	resp, err := f.env.splits.ToggleParticipant(context.Background(), authed(as, &api.ToggleParticipantRequest{
		ItemID: f.item.ID,
		UserID: userID,
	}))
	require.NoError(t, err)
	return resp.Msg.Item
}

func TestToggleParticipantRecomputesShares(t *testing.T) {
	f := newSplitFixture(t)

	item := f.toggle(t, f.bob, f.carol.user.ID)
	assert.Equal(t, []string{f.alice.user.ID, f.bob.user.ID, f.carol.user.ID}, participants(item))
	for _, s := range item.Splits {
		assert.Equal(t, "30000", s.ShareAmount)
	}
	assert.Equal(t, f.item.SplitVersion+1, item.SplitVersion)

	item = f.toggle(t, f.bob, f.alice.user.ID)
	assert.Equal(t, []string{f.bob.user.ID, f.carol.user.ID}, participants(item))
	for _, s := range item.Splits {
		assert.Equal(t, "45000", s.ShareAmount)
	}

	// Stored state matches what was returned.
	stored, err := f.env.store.GetItem(context.Background(), f.item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.SplitVersion, stored.SplitVersion)
	assert.Equal(t, []string{f.bob.user.ID, f.carol.user.ID}, stored.ParticipantIDs())
}

func TestToggleParticipantRejectsNonMember(t *testing.T) {
	f := newSplitFixture(t)
	mallory := f.env.register(t, "mallory")

	_, err := f.env.splits.ToggleParticipant(context.Background(), authed(f.alice, &api.ToggleParticipantRequest{
		ItemID: f.item.ID,
		UserID: mallory.user.ID,
	}))
	requireCode(t, err, connect.CodeInvalidArgument)

	_, err = f.env.splits.ToggleParticipant(context.Background(), authed(f.alice, &api.ToggleParticipantRequest{
		ItemID: "missing",
		UserID: f.bob.user.ID,
	}))
	requireCode(t, err, connect.CodeNotFound)
}

func TestSelectAll(t *testing.T) {
	f := newSplitFixture(t)
	ctx := context.Background()

	resp, err := f.env.splits.SelectAll(ctx, authed(f.alice, &api.SelectAllRequest{ItemID: f.item.ID}))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{f.alice.user.ID, f.bob.user.ID, f.carol.user.ID}, participants(resp.Msg.Item))

	// Everyone participates, so selecting all again clears the item.
	resp, err = f.env.splits.SelectAll(ctx, authed(f.alice, &api.SelectAllRequest{ItemID: f.item.ID}))
	require.NoError(t, err)
	assert.Empty(t, resp.Msg.Item.Splits)
}

func TestSetParticipantsIsIdempotent(t *testing.T) {
	f := newSplitFixture(t)
	ctx := context.Background()
	want := []string{f.carol.user.ID, f.alice.user.ID}

	first, err := f.env.splits.SetParticipants(ctx, authed(f.bob, &api.SetParticipantsRequest{ItemID: f.item.ID, UserIDs: want}))
	require.NoError(t, err)
	second, err := f.env.splits.SetParticipants(ctx, authed(f.bob, &api.SetParticipantsRequest{ItemID: f.item.ID, UserIDs: want}))
	require.NoError(t, err)

	assert.Equal(t, want, participants(first.Msg.Item))
	assert.Equal(t, participants(first.Msg.Item), participants(second.Msg.Item))
	for i := range first.Msg.Item.Splits {
		assert.Equal(t, first.Msg.Item.Splits[i].ID, second.Msg.Item.Splits[i].ID)
		assert.Equal(t, "45000", second.Msg.Item.Splits[i].ShareAmount)
	}
}

func TestPaidFlagSurvivesRecompute(t *testing.T) {
	f := newSplitFixture(t)
	ctx := context.Background()

	bobSplit, ok := splitOf(f.item, f.bob.user.ID)
	require.True(t, ok)

	paid, err := f.env.splits.SetPaid(ctx, authed(f.alice, &api.SetPaidRequest{SplitID: bobSplit.ID, Paid: true}))
	require.NoError(t, err)
	assert.True(t, paid.Msg.Split.IsPaid)
	assert.NotZero(t, paid.Msg.Split.PaidAt)
	assert.Equal(t, "45000", paid.Msg.Split.ShareAmount)

	item := f.toggle(t, f.alice, f.carol.user.ID)
	after, ok := splitOf(item, f.bob.user.ID)
	require.True(t, ok)
	assert.Equal(t, bobSplit.ID, after.ID)
	assert.True(t, after.IsPaid)
	assert.Equal(t, "30000", after.ShareAmount)

	toggled, err := f.env.splits.TogglePaid(ctx, authed(f.bob, &api.TogglePaidRequest{SplitID: bobSplit.ID}))
	require.NoError(t, err)
	assert.False(t, toggled.Msg.Split.IsPaid)
	assert.Zero(t, toggled.Msg.Split.PaidAt)
	assert.Equal(t, "30000", toggled.Msg.Split.ShareAmount)

	_, err = f.env.splits.SetPaid(ctx, authed(f.bob, &api.SetPaidRequest{SplitID: "missing", Paid: true}))
	requireCode(t, err, connect.CodeNotFound)
}

func TestSplitChangesPublishEvents(t *testing.T) {
	f := newSplitFixture(t)
	sub, err := f.env.hub.Subscribe(f.room.ID)
	require.NoError(t, err)
	defer sub.Close()

	f.toggle(t, f.alice, f.carol.user.ID)
	event := nextEvent(t, sub)
	assert.Equal(t, notify.KindSplitChanged, event.Kind)
	assert.Equal(t, f.item.ID, event.ItemID)
	assert.Equal(t, f.activity.ID, event.ActivityID)

	split, _ := splitOf(f.item, f.bob.user.ID)
	_, err = f.env.splits.TogglePaid(context.Background(), authed(f.bob, &api.TogglePaidRequest{SplitID: split.ID}))
	require.NoError(t, err)
	event = nextEvent(t, sub)
	assert.Equal(t, notify.KindPaidChanged, event.Kind)
	assert.Equal(t, f.bob.user.ID, event.UserID)
}

func TestConcurrentTogglesAllApply(t *testing.T) {
	f := newSplitFixture(t)
	extra := []session{f.env.register(t, "dave"), f.env.register(t, "erin"), f.env.register(t, "frank")}
	for _, s := range extra {
		_, err := f.env.rooms.JoinRoom(context.Background(), authed(s, &api.JoinRoomRequest{InviteCode: f.room.InviteCode}))
		require.NoError(t, err)
	}
	toggled := append([]session{f.carol}, extra...)

	var wg sync.WaitGroup
	errs := make(chan error, len(toggled))
	for _, s := range toggled {
		wg.Add(1)
		go func(s session) {
			defer wg.Done()
			_, err := f.env.splits.ToggleParticipant(context.Background(), authed(s, &api.ToggleParticipantRequest{
				ItemID: f.item.ID,
				UserID: s.user.ID,
			}))
			errs <- err
		}(s)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := f.env.store.GetItem(context.Background(), f.item.ID)
	require.NoError(t, err)
	want := []string{f.alice.user.ID, f.bob.user.ID}
	for _, s := range toggled {
		want = append(want, s.user.ID)
	}
	assert.ElementsMatch(t, want, stored.ParticipantIDs())
	assert.Equal(t, f.item.SplitVersion+int64(len(toggled)), stored.SplitVersion)
	for _, s := range stored.Splits {
		assert.Equal(t, "15000", s.ShareAmount.String())
	}
}

func TestConcurrentTogglePaidAllApply(t *testing.T) {
	f := newSplitFixture(t)
	split, ok := splitOf(f.item, f.bob.user.ID)
	require.True(t, ok)

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.env.splits.TogglePaid(context.Background(), authed(f.bob, &api.TogglePaidRequest{SplitID: split.ID}))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := f.env.store.GetSplit(context.Background(), split.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsPaid, "five toggles from unpaid end paid")
	assert.NotZero(t, stored.PaidAt)
}

// conflictingStore loses every split replacement race.
type conflictingStore struct {
	storage.Store
	mu       sync.Mutex
	attempts int
}

func (c *conflictingStore) ReplaceItemSplits(context.Context, string, int64, []models.ItemSplit) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempts++
	return 0, storage.ErrVersionConflict
}

func TestSplitConflictGivesUpAfterRetries(t *testing.T) {
	f := newSplitFixture(t)
	store := &conflictingStore{Store: f.env.store}
	svc := NewSplitService(store, nil, nil, RetryPolicy{MaxRetries: 2, Base: time.Millisecond})

	ctx := middleware.WithUser(context.Background(), f.alice.user.ID, "alice@example.com")
	_, err := svc.ToggleParticipant(ctx, connect.NewRequest(&api.ToggleParticipantRequest{
		ItemID: f.item.ID,
		UserID: f.carol.user.ID,
	}))
	requireCode(t, err, connect.CodeAborted)
	assert.Equal(t, 3, store.attempts)
}

func TestGetChecklist(t *testing.T) {
	f := newSplitFixture(t)
	ctx := context.Background()

	aliceView, err := f.env.splits.GetChecklist(ctx, authed(f.alice, &api.GetChecklistRequest{RoomID: f.room.ID}))
	require.NoError(t, err)
	// Alice's own split on her own bill is never listed.
	require.Len(t, aliceView.Msg.OwedToMe, 1)
	assert.Empty(t, aliceView.Msg.MyDebts)
	entry := aliceView.Msg.OwedToMe[0]
	assert.Equal(t, f.bob.user.ID, entry.DebtorID)
	assert.Equal(t, f.alice.user.ID, entry.CreditorID)
	assert.Equal(t, int64(45000), entry.Amount)
	assert.Equal(t, "Pizza", entry.ItemName)
	assert.Equal(t, int64(45000), aliceView.Msg.OutstandingOwedToMe)

	_, err = f.env.splits.SetPaid(ctx, authed(f.bob, &api.SetPaidRequest{SplitID: entry.SplitID, Paid: true}))
	require.NoError(t, err)

	bobView, err := f.env.splits.GetChecklist(ctx, authed(f.bob, &api.GetChecklistRequest{RoomID: f.room.ID}))
	require.NoError(t, err)
	require.Len(t, bobView.Msg.MyDebts, 1)
	assert.True(t, bobView.Msg.MyDebts[0].IsPaid)
	assert.Zero(t, bobView.Msg.OutstandingMyDebts)
}
