package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/billbuddy/internal/api"
	"github.com/mmynk/billbuddy/internal/metrics"
	"github.com/mmynk/billbuddy/internal/models"
	"github.com/mmynk/billbuddy/internal/notify"
	"github.com/mmynk/billbuddy/internal/storage"
)

const (
	inviteCodeLength   = 6
	inviteCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	inviteCodeAttempts = 5
)

// RoomService implements the Connect RoomService.
type RoomService struct {
	store     storage.Store
	hub       *notify.Hub
	publisher notify.Publisher
	metrics   *metrics.Metrics
}

var _ api.RoomServiceHandler = (*RoomService)(nil)

// NewRoomService creates a RoomService. Watchers subscribe to hub; changes are announced through
// publisher, which is the hub itself unless events are relayed through Redis.
func NewRoomService(store storage.Store, hub *notify.Hub, publisher notify.Publisher, m *metrics.Metrics) *RoomService {
	return &RoomService{store: store, hub: hub, publisher: publisher, metrics: m}
}

// CreateRoom creates a room with the caller as host and first member.
func (s *RoomService) CreateRoom(ctx context.Context, req *connect.Request[api.CreateRoomRequest]) (*connect.Response[api.RoomResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateRoom request received", "user_id", userID, "name", req.Msg.Name)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, toConnectError(models.NewValidationError("name", "required"))
	}

	code, err := s.newInviteCode(ctx)
	if err != nil {
		slog.Error("CreateRoom failed", "error", err)
		return nil, toConnectError(err)
	}

	room := &models.Room{
		Name:        name,
		Description: strings.TrimSpace(req.Msg.Description),
		HostID:      userID,
		InviteCode:  code,
	}
	if err := s.store.CreateRoom(ctx, room); err != nil {
		slog.Error("CreateRoom failed", "error", err)
		return nil, toConnectError(err)
	}

	created, err := s.store.GetRoom(ctx, room.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	slog.Info("Room created", "room_id", room.ID, "invite_code", room.InviteCode)
	return connect.NewResponse(&api.RoomResponse{Room: toAPIRoom(created)}), nil
}

// JoinRoom adds the caller to the room with the given invite code. Joining twice succeeds.
func (s *RoomService) JoinRoom(ctx context.Context, req *connect.Request[api.JoinRoomRequest]) (*connect.Response[api.RoomResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("JoinRoom request received", "user_id", userID)

	code := strings.ToUpper(strings.TrimSpace(req.Msg.InviteCode))
	if code == "" {
		return nil, toConnectError(models.NewValidationError("invite_code", "required"))
	}

	room, err := s.store.GetRoomByInviteCode(ctx, code)
	if err != nil {
		slog.Warn("JoinRoom failed", "invite_code", code, "error", err)
		return nil, toConnectError(err)
	}

	err = s.store.AddMember(ctx, room.ID, userID)
	switch {
	case errors.Is(err, storage.ErrAlreadyMember):
		slog.Info("Already a member", "room_id", room.ID, "user_id", userID)
	case err != nil:
		slog.Error("JoinRoom failed", "room_id", room.ID, "error", err)
		return nil, toConnectError(err)
	default:
		event := notify.NewEvent(room.ID, notify.KindMemberJoined)
		event.UserID = userID
		publish(ctx, s.publisher, s.metrics, event)
	}

	room, err = s.store.GetRoom(ctx, room.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.RoomResponse{Room: toAPIRoom(room)}), nil
}

// GetRoom returns a room the caller belongs to.
func (s *RoomService) GetRoom(ctx context.Context, req *connect.Request[api.GetRoomRequest]) (*connect.Response[api.RoomResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	room, err := roomForMember(ctx, s.store, req.Msg.RoomID, userID)
	if err != nil {
		slog.Warn("GetRoom failed", "room_id", req.Msg.RoomID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.RoomResponse{Room: toAPIRoom(room)}), nil
}

// ListRooms returns the caller's rooms, newest first.
func (s *RoomService) ListRooms(ctx context.Context, req *connect.Request[api.ListRoomsRequest]) (*connect.Response[api.ListRoomsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	rooms, err := s.store.ListRoomsForUser(ctx, userID)
	if err != nil {
		slog.Error("ListRooms failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]api.Room, len(rooms))
	for i, r := range rooms {
		out[i] = toAPIRoom(r)
	}
	slog.Info("ListRooms successful", "user_id", userID, "count", len(out))
	return connect.NewResponse(&api.ListRoomsResponse{Rooms: out}), nil
}

// DeleteRoom removes the room and everything in it. Only the host may delete a room.
func (s *RoomService) DeleteRoom(ctx context.Context, req *connect.Request[api.DeleteRoomRequest]) (*connect.Response[api.DeleteRoomResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	room, err := roomForMember(ctx, s.store, req.Msg.RoomID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if room.HostID != userID {
		return nil, connect.NewError(connect.CodePermissionDenied, errors.New("only the host can delete a room"))
	}

	if err := s.store.DeleteRoom(ctx, room.ID); err != nil {
		slog.Error("DeleteRoom failed", "room_id", room.ID, "error", err)
		return nil, toConnectError(err)
	}
	slog.Info("Room deleted", "room_id", room.ID)
	return connect.NewResponse(&api.DeleteRoomResponse{}), nil
}

// WatchRoom streams change events for a room until the caller disconnects.
func (s *RoomService) WatchRoom(ctx context.Context, req *connect.Request[api.WatchRoomRequest], stream *connect.ServerStream[api.RoomEvent]) error {
	userID, err := requireUser(ctx)
	if err != nil {
		return err
	}
	room, err := roomForMember(ctx, s.store, req.Msg.RoomID, userID)
	if err != nil {
		return toConnectError(err)
	}

	sub, err := s.hub.Subscribe(room.ID)
	if err != nil {
		return toConnectError(err)
	}
	defer sub.Close()

	s.metrics.WatcherOpened()
	defer s.metrics.WatcherClosed()
	slog.Info("Watcher connected", "room_id", room.ID, "user_id", userID)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Watcher disconnected", "room_id", room.ID, "user_id", userID)
			return nil
		case event, ok := <-sub.Events():
			if !ok {
				return nil
			}
			if err := stream.Send(ptr(toAPIEvent(event))); err != nil {
				slog.Warn("Watcher send failed", "room_id", room.ID, "error", err)
				return err
			}
		}
	}
}

// newInviteCode draws codes until one is unused.
func (s *RoomService) newInviteCode(ctx context.Context) (string, error) {
	for range inviteCodeAttempts {
		code, err := randomInviteCode()
		if err != nil {
			return "", err
		}
		_, err = s.store.GetRoomByInviteCode(ctx, code)
		if errors.Is(err, storage.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("no free invite code after %d attempts", inviteCodeAttempts)
}

func randomInviteCode() (string, error) {
	buf := make([]byte, inviteCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate invite code: %w", err)
	}
	for i, b := range buf {
		buf[i] = inviteCodeAlphabet[int(b)%len(inviteCodeAlphabet)]
	}
	return string(buf), nil
}

func ptr[T any](v T) *T {
	return &v
}
