package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/billbuddy/internal/api"
)

func TestRegisterLoginAndCurrentUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.register(t, "alice")
	assert.NotEmpty(t, alice.token)
	assert.Equal(t, "alice@example.com", alice.user.Email)

	login, err := env.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{
		Email:    "ALICE@example.com",
		Password: "password123",
	}))
	require.NoError(t, err)
	assert.Equal(t, alice.user.ID, login.Msg.User.ID)
	assert.Greater(t, login.Msg.ExpiresAt, int64(0))

	me, err := env.auth.GetCurrentUser(ctx, authed(session{token: login.Msg.Token}, &api.GetCurrentUserRequest{}))
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Msg.User.DisplayName)
	assert.Equal(t, alice.user.ID, me.Msg.User.ID)
}

func TestRegisterRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "alice")

	tests := []struct {
		name string
		req  *api.RegisterRequest
		code connect.Code
	}{
		{"duplicate email", &api.RegisterRequest{Email: "alice@example.com", DisplayName: "Alice", Password: "password123"}, connect.CodeAlreadyExists},
		{"short password", &api.RegisterRequest{Email: "bob@example.com", DisplayName: "Bob", Password: "short"}, connect.CodeInvalidArgument},
		{"invalid email", &api.RegisterRequest{Email: "not-an-email", DisplayName: "Bob", Password: "password123"}, connect.CodeInvalidArgument},
		{"missing name", &api.RegisterRequest{Email: "bob@example.com", Password: "password123"}, connect.CodeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Register(ctx, connect.NewRequest(tt.req))
			requireCode(t, err, tt.code)
		})
	}
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")

	_, err := env.auth.Login(context.Background(), connect.NewRequest(&api.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	}))
	requireCode(t, err, connect.CodeUnauthenticated)
}

func TestProtectedProceduresNeedToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.GetCurrentUser(ctx, connect.NewRequest(&api.GetCurrentUserRequest{}))
	requireCode(t, err, connect.CodeUnauthenticated)

	_, err = env.rooms.ListRooms(ctx, authed(session{token: "garbage"}, &api.ListRoomsRequest{}))
	requireCode(t, err, connect.CodeUnauthenticated)
}
