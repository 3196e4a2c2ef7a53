package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/billbuddy/internal/api"
	"github.com/mmynk/billbuddy/internal/auth"
	"github.com/mmynk/billbuddy/internal/metrics"
	"github.com/mmynk/billbuddy/internal/middleware"
	"github.com/mmynk/billbuddy/internal/notify"
	"github.com/mmynk/billbuddy/internal/receipt"
	"github.com/mmynk/billbuddy/internal/storage/sqlite"
)

// testEnv runs every service behind the production interceptors on an httptest server.
type testEnv struct {
	store   *sqlite.SQLiteStore
	hub     *notify.Hub
	metrics *metrics.Metrics

	auth       *api.AuthServiceClient
	rooms      *api.RoomServiceClient
	activities *api.ActivityServiceClient
	splits     *api.SplitServiceClient
	settlement *api.SettlementServiceClient
	profiles   *api.ProfileServiceClient
}

type envOptions struct {
	scanner receipt.Scanner
}

type envOption func(*envOptions)

func withScanner(s receipt.Scanner) envOption {
	return func(o *envOptions) { o.scanner = s }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	var o envOptions
	for _, opt := range opts {
		opt(&o)
	}

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	hub := notify.NewHub()
	m := metrics.New()
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)

	interceptors := connect.WithInterceptors(
		middleware.NewAuthInterceptor(jwtManager, api.PublicProcedures...),
		middleware.NewLoggingInterceptor(m),
	)

	mux := http.NewServeMux()
	mux.Handle(api.NewAuthServiceHandler(NewAuthService(authenticator, jwtManager, store), interceptors))
	mux.Handle(api.NewRoomServiceHandler(NewRoomService(store, hub, hub, m), interceptors))
	mux.Handle(api.NewActivityServiceHandler(NewActivityService(store, hub, o.scanner, m), interceptors))
	mux.Handle(api.NewSplitServiceHandler(NewSplitService(store, hub, m, RetryPolicy{MaxRetries: 10, Base: time.Millisecond}), interceptors))
	mux.Handle(api.NewSettlementServiceHandler(NewSettlementService(store, DefaultSettlementPolicy), interceptors))
	mux.Handle(api.NewProfileServiceHandler(NewProfileService(store), interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	client := server.Client()

	return &testEnv{
		store:      store,
		hub:        hub,
		metrics:    m,
		auth:       api.NewAuthServiceClient(client, server.URL),
		rooms:      api.NewRoomServiceClient(client, server.URL),
		activities: api.NewActivityServiceClient(client, server.URL),
		splits:     api.NewSplitServiceClient(client, server.URL),
		settlement: api.NewSettlementServiceClient(client, server.URL),
		profiles:   api.NewProfileServiceClient(client, server.URL),
	}
}

// session is a registered user and their bearer token.
type session struct {
	user  api.User
	token string
}

func (e *testEnv) register(t *testing.T, name string) session {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:       fmt.Sprintf("%s@example.com", name),
		DisplayName: name,
		Password:    "password123",
	}))
	require.NoError(t, err)
	return session{user: resp.Msg.User, token: resp.Msg.Token}
}

// authed builds a request carrying the session's token.
func authed[T any](s session, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+s.token)
	return req
}

// newRoom creates a room hosted by host that every other session has joined.
func (e *testEnv) newRoom(t *testing.T, host session, others ...session) api.Room {
	t.Helper()
	ctx := context.Background()
	resp, err := e.rooms.CreateRoom(ctx, authed(host, &api.CreateRoomRequest{Name: "Bali Trip"}))
	require.NoError(t, err)
	room := resp.Msg.Room

	for _, s := range others {
		joined, err := e.rooms.JoinRoom(ctx, authed(s, &api.JoinRoomRequest{InviteCode: room.InviteCode}))
		require.NoError(t, err)
		room = joined.Msg.Room
	}
	return room
}

func (e *testEnv) createActivity(t *testing.T, s session, req *api.CreateActivityRequest) *api.ActivityResponse {
	t.Helper()
	resp, err := e.activities.CreateActivity(context.Background(), authed(s, req))
	require.NoError(t, err)
	return resp.Msg
}

func requireCode(t *testing.T, err error, code connect.Code) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, connect.CodeOf(err), "unexpected error: %v", err)
}

func splitOf(item api.Item, userID string) (api.Split, bool) {
	for _, s := range item.Splits {
		if s.UserID == userID {
			return s, true
		}
	}
	return api.Split{}, false
}

func participants(item api.Item) []string {
	ids := make([]string, len(item.Splits))
	for i, s := range item.Splits {
		ids[i] = s.UserID
	}
	return ids
}

// nextEvent waits briefly for the subscription's next event.
func nextEvent(t *testing.T, sub *notify.Subscription) notify.Event {
	t.Helper()
	select {
	case e := <-sub.Events():
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return notify.Event{}
	}
}
