// Package service implements the BillBuddy Connect services on top of a storage.Store.
//
// Handlers validate input, load what the calculators need, and convert results to wire messages.
// They never compute money themselves: every amount comes from internal/calculator and is rounded
// once, here, on its way out.
package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/billbuddy/internal/auth"
	"github.com/mmynk/billbuddy/internal/metrics"
	"github.com/mmynk/billbuddy/internal/middleware"
	"github.com/mmynk/billbuddy/internal/models"
	"github.com/mmynk/billbuddy/internal/notify"
	"github.com/mmynk/billbuddy/internal/receipt"
	"github.com/mmynk/billbuddy/internal/storage"
)

var errNotMember = errors.New("not a member of this room")

// toConnectError maps domain and storage errors onto Connect codes.
func toConnectError(err error) error {
	if err == nil {
		return nil
	}
	var cerr *connect.Error
	if errors.As(err, &cerr) {
		return cerr
	}
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrVersionConflict):
		return connect.NewError(connect.CodeAborted, err)
	case errors.Is(err, storage.ErrAlreadyMember), errors.Is(err, auth.ErrEmailExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, errNotMember):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, receipt.ErrScanFailed):
		return connect.NewError(connect.CodeUnavailable, receipt.ErrScanFailed)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

// requireUser returns the authenticated caller's ID.
func requireUser(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

// roomForMember loads the room and checks that userID belongs to it.
func roomForMember(ctx context.Context, rooms storage.RoomStore, roomID, userID string) (*models.Room, error) {
	if roomID == "" {
		return nil, models.NewValidationError("room_id", "required")
	}
	room, err := rooms.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasMember(userID) {
		return nil, errNotMember
	}
	return room, nil
}

// publish delivers a change event. Delivery is best effort: the write it describes is already
// committed, and watchers re-read on the next event anyway.
func publish(ctx context.Context, publisher notify.Publisher, m *metrics.Metrics, event notify.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		slog.Warn("Failed to publish room event",
			"room_id", event.RoomID,
			"kind", event.Kind,
			"error", err,
		)
		return
	}
	m.EventPublished(string(event.Kind))
}
