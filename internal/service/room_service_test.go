package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/billbuddy/internal/api"
)

func TestCreateRoom(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")

	resp, err := env.rooms.CreateRoom(context.Background(), authed(alice, &api.CreateRoomRequest{
		Name:        "  Bali Trip ",
		Description: "August",
	}))
	require.NoError(t, err)

	room := resp.Msg.Room
	assert.NotEmpty(t, room.ID)
	assert.Equal(t, "Bali Trip", room.Name)
	assert.Equal(t, alice.user.ID, room.HostID)
	require.Len(t, room.Members, 1)
	assert.Equal(t, alice.user.ID, room.Members[0].UserID)
	assert.Equal(t, "alice", room.Members[0].DisplayName)

	require.Len(t, room.InviteCode, inviteCodeLength)
	for _, r := range room.InviteCode {
		assert.True(t, strings.ContainsRune(inviteCodeAlphabet, r), "unexpected %q in invite code", r)
	}
}

func TestCreateRoomRequiresName(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")

	_, err := env.rooms.CreateRoom(context.Background(), authed(alice, &api.CreateRoomRequest{Name: " "}))
	requireCode(t, err, connect.CodeInvalidArgument)
}

func TestJoinRoom(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	room := env.newRoom(t, alice)

	// Codes are matched case-insensitively.
	resp, err := env.rooms.JoinRoom(ctx, authed(bob, &api.JoinRoomRequest{InviteCode: strings.ToLower(room.InviteCode)}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.Room.Members, 2)
	assert.Equal(t, bob.user.ID, resp.Msg.Room.Members[1].UserID)

	// Joining again changes nothing.
	again, err := env.rooms.JoinRoom(ctx, authed(bob, &api.JoinRoomRequest{InviteCode: room.InviteCode}))
	require.NoError(t, err)
	assert.Len(t, again.Msg.Room.Members, 2)

	_, err = env.rooms.JoinRoom(ctx, authed(bob, &api.JoinRoomRequest{InviteCode: "ZZZZZZ"}))
	requireCode(t, err, connect.CodeNotFound)
}

func TestGetRoomAccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	mallory := env.register(t, "mallory")
	room := env.newRoom(t, alice)

	got, err := env.rooms.GetRoom(ctx, authed(alice, &api.GetRoomRequest{RoomID: room.ID}))
	require.NoError(t, err)
	assert.Equal(t, room.ID, got.Msg.Room.ID)

	_, err = env.rooms.GetRoom(ctx, authed(mallory, &api.GetRoomRequest{RoomID: room.ID}))
	requireCode(t, err, connect.CodePermissionDenied)

	_, err = env.rooms.GetRoom(ctx, authed(alice, &api.GetRoomRequest{RoomID: "missing"}))
	requireCode(t, err, connect.CodeNotFound)

	_, err = env.rooms.GetRoom(ctx, authed(alice, &api.GetRoomRequest{}))
	requireCode(t, err, connect.CodeInvalidArgument)
}

func TestListRooms(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	env.newRoom(t, alice, bob)
	env.newRoom(t, alice)

	aliceRooms, err := env.rooms.ListRooms(ctx, authed(alice, &api.ListRoomsRequest{}))
	require.NoError(t, err)
	assert.Len(t, aliceRooms.Msg.Rooms, 2)

	bobRooms, err := env.rooms.ListRooms(ctx, authed(bob, &api.ListRoomsRequest{}))
	require.NoError(t, err)
	assert.Len(t, bobRooms.Msg.Rooms, 1)
}

func TestDeleteRoom(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	room := env.newRoom(t, alice, bob)

	env.createActivity(t, alice, &api.CreateActivityRequest{
		RoomID:  room.ID,
		Name:    "Dinner",
		PayerID: alice.user.ID,
		Items: []api.NewItem{
			{Name: "Platter", Quantity: 1, TotalPrice: 100000, ParticipantIDs: []string{alice.user.ID, bob.user.ID}},
		},
	})

	_, err := env.rooms.DeleteRoom(ctx, authed(bob, &api.DeleteRoomRequest{RoomID: room.ID}))
	requireCode(t, err, connect.CodePermissionDenied)

	_, err = env.rooms.DeleteRoom(ctx, authed(alice, &api.DeleteRoomRequest{RoomID: room.ID}))
	require.NoError(t, err)

	_, err = env.rooms.GetRoom(ctx, authed(alice, &api.GetRoomRequest{RoomID: room.ID}))
	requireCode(t, err, connect.CodeNotFound)

	activities, err := env.store.ListActivitiesByRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Empty(t, activities)
}

func TestWatchRoomStreamsChanges(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	room := env.newRoom(t, alice)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := env.rooms.WatchRoom(ctx, authed(alice, &api.WatchRoomRequest{RoomID: room.ID}))
	require.NoError(t, err)
	defer stream.Close()

	require.Eventually(t, func() bool { return env.hub.Subscribers(room.ID) == 1 },
		2*time.Second, 10*time.Millisecond)

	_, err = env.rooms.JoinRoom(context.Background(), authed(bob, &api.JoinRoomRequest{InviteCode: room.InviteCode}))
	require.NoError(t, err)

	require.True(t, stream.Receive(), "stream ended: %v", stream.Err())
	event := stream.Msg()
	assert.Equal(t, "member_joined", event.Kind)
	assert.Equal(t, room.ID, event.RoomID)
	assert.Equal(t, bob.user.ID, event.UserID)
	assert.NotEmpty(t, event.ID)

	created := env.createActivity(t, bob, &api.CreateActivityRequest{
		RoomID:  room.ID,
		Name:    "Taxi",
		PayerID: bob.user.ID,
		Items:   []api.NewItem{{Name: "Ride", Quantity: 1, TotalPrice: 30000, ParticipantIDs: []string{alice.user.ID, bob.user.ID}}},
	})

	require.True(t, stream.Receive(), "stream ended: %v", stream.Err())
	assert.Equal(t, "activity_created", stream.Msg().Kind)
	assert.Equal(t, created.Activity.ID, stream.Msg().ActivityID)
}

func TestWatchRoomRequiresMembership(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	mallory := env.register(t, "mallory")
	room := env.newRoom(t, alice)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	stream, err := env.rooms.WatchRoom(ctx, authed(mallory, &api.WatchRoomRequest{RoomID: room.ID}))
	require.NoError(t, err)
	defer stream.Close()

	assert.False(t, stream.Receive())
	requireCode(t, stream.Err(), connect.CodePermissionDenied)
}
