package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"github.com/sethvargo/go-retry"

	"github.com/mmynk/billbuddy/internal/api"
	"github.com/mmynk/billbuddy/internal/calculator"
	"github.com/mmynk/billbuddy/internal/metrics"
	"github.com/mmynk/billbuddy/internal/models"
	"github.com/mmynk/billbuddy/internal/money"
	"github.com/mmynk/billbuddy/internal/notify"
	"github.com/mmynk/billbuddy/internal/storage"
)

// RetryPolicy bounds how often a participation change is re-applied after losing a race.
type RetryPolicy struct {
	MaxRetries int
	Base       time.Duration
}

// DefaultRetryPolicy matches the server's configuration defaults.
var DefaultRetryPolicy = RetryPolicy{MaxRetries: 5, Base: 20 * time.Millisecond}

// SplitService implements the Connect SplitService: participation changes and paid flags.
type SplitService struct {
	store     storage.Store
	publisher notify.Publisher
	metrics   *metrics.Metrics
	retry     RetryPolicy
}

var _ api.SplitServiceHandler = (*SplitService)(nil)

// NewSplitService creates a new SplitService with the given storage backend.
func NewSplitService(store storage.Store, publisher notify.Publisher, m *metrics.Metrics, policy RetryPolicy) *SplitService {
	if policy.Base <= 0 {
		policy.Base = DefaultRetryPolicy.Base
	}
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}
	return &SplitService{store: store, publisher: publisher, metrics: m, retry: policy}
}

// ToggleParticipant adds the user to the item if absent and removes them if present.
func (s *SplitService) ToggleParticipant(ctx context.Context, req *connect.Request[api.ToggleParticipantRequest]) (*connect.Response[api.ItemResponse], error) {
	return s.change(ctx, req.Msg.ItemID, calculator.Change{Kind: calculator.ChangeToggle, UserID: req.Msg.UserID})
}

// SetParticipants replaces the item's participants with the given list.
func (s *SplitService) SetParticipants(ctx context.Context, req *connect.Request[api.SetParticipantsRequest]) (*connect.Response[api.ItemResponse], error) {
	return s.change(ctx, req.Msg.ItemID, calculator.Change{Kind: calculator.ChangeSet, UserIDs: req.Msg.UserIDs})
}

// SelectAll clears the item if every member participates and otherwise assigns it to every member.
func (s *SplitService) SelectAll(ctx context.Context, req *connect.Request[api.SelectAllRequest]) (*connect.Response[api.ItemResponse], error) {
	return s.change(ctx, req.Msg.ItemID, calculator.Change{Kind: calculator.ChangeSelectAll})
}

func (s *SplitService) change(ctx context.Context, itemID string, change calculator.Change) (*connect.Response[api.ItemResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("Split change request received", "item_id", itemID, "change", change.String(), "user_id", userID)

	if itemID == "" {
		return nil, toConnectError(models.NewValidationError("item_id", "required"))
	}
	roomID, err := s.store.RoomIDForItem(ctx, itemID)
	if err != nil {
		return nil, toConnectError(err)
	}
	room, err := roomForMember(ctx, s.store, roomID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	item, err := s.replace(ctx, itemID, room.MemberIDs(), change)
	if err != nil {
		if errors.Is(err, storage.ErrVersionConflict) {
			slog.Error("Split change gave up after retries", "item_id", itemID, "retries", s.retry.MaxRetries)
		} else {
			slog.Warn("Split change failed", "item_id", itemID, "error", err)
		}
		return nil, toConnectError(err)
	}

	event := notify.NewEvent(room.ID, notify.KindSplitChanged)
	event.ItemID = item.ID
	event.ActivityID = item.ActivityID
	event.UserID = userID
	publish(ctx, s.publisher, s.metrics, event)

	return connect.NewResponse(&api.ItemResponse{Item: toAPIItem(item)}), nil
}

// replace reads the item, applies the change to its current participants and swaps the whole split
// set in one version-guarded write. When another writer replaced the set in between, the change is
// re-applied to the fresh participants.
func (s *SplitService) replace(ctx context.Context, itemID string, members []string, change calculator.Change) (*models.ActivityItem, error) {
	backoff := retry.WithMaxRetries(uint64(s.retry.MaxRetries), retry.NewExponential(s.retry.Base))

	return retry.DoValue(ctx, backoff, func(ctx context.Context) (*models.ActivityItem, error) {
		item, err := s.store.GetItem(ctx, itemID)
		if err != nil {
			return nil, err
		}

		participants, err := calculator.NextParticipants(item.ParticipantIDs(), members, change)
		if err != nil {
			return nil, err
		}
		splits := calculator.BuildSplits(item, participants)

		version, err := s.store.ReplaceItemSplits(ctx, itemID, item.SplitVersion, splits)
		if errors.Is(err, storage.ErrVersionConflict) {
			s.metrics.SplitConflict()
			slog.Warn("Split version conflict, retrying", "item_id", itemID, "version", item.SplitVersion)
			return nil, retry.RetryableError(err)
		}
		if err != nil {
			return nil, err
		}

		s.metrics.SplitReplaced()
		item.Splits = splits
		item.SplitVersion = version
		return item, nil
	})
}

// SetPaid sets a split's paid flag. Shares are never touched.
func (s *SplitService) SetPaid(ctx context.Context, req *connect.Request[api.SetPaidRequest]) (*connect.Response[api.SplitResponse], error) {
	paid := req.Msg.Paid
	return s.markPaid(ctx, req.Msg.SplitID, func(split *models.ItemSplit, now int64) (*models.ItemSplit, error) {
		var paidAt int64
		if paid {
			paidAt = now
		}
		if err := s.store.SetSplitPaid(ctx, split.ID, paid, paidAt); err != nil {
			return nil, err
		}
		split.IsPaid = paid
		split.PaidAt = paidAt
		return split, nil
	})
}

// TogglePaid flips a split's paid flag in storage, so concurrent toggles each take effect.
func (s *SplitService) TogglePaid(ctx context.Context, req *connect.Request[api.TogglePaidRequest]) (*connect.Response[api.SplitResponse], error) {
	return s.markPaid(ctx, req.Msg.SplitID, func(split *models.ItemSplit, now int64) (*models.ItemSplit, error) {
		return s.store.ToggleSplitPaid(ctx, split.ID, now)
	})
}

func (s *SplitService) markPaid(ctx context.Context, splitID string, write func(split *models.ItemSplit, now int64) (*models.ItemSplit, error)) (*connect.Response[api.SplitResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if splitID == "" {
		return nil, toConnectError(models.NewValidationError("split_id", "required"))
	}

	split, err := s.store.GetSplit(ctx, splitID)
	if err != nil {
		return nil, toConnectError(err)
	}
	roomID, err := s.store.RoomIDForItem(ctx, split.ItemID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if _, err := roomForMember(ctx, s.store, roomID, userID); err != nil {
		return nil, toConnectError(err)
	}

	split, err = write(split, time.Now().Unix())
	if err != nil {
		slog.Error("Paid flag update failed", "split_id", splitID, "error", err)
		return nil, toConnectError(err)
	}
	slog.Info("Split paid flag updated", "split_id", splitID, "paid", split.IsPaid, "user_id", userID)

	event := notify.NewEvent(roomID, notify.KindPaidChanged)
	event.ItemID = split.ItemID
	event.UserID = split.UserID
	publish(ctx, s.publisher, s.metrics, event)

	return connect.NewResponse(&api.SplitResponse{Split: toAPISplit(split)}), nil
}

// GetChecklist lists the caller's split-level obligations in the room, in both directions.
func (s *SplitService) GetChecklist(ctx context.Context, req *connect.Request[api.GetChecklistRequest]) (*connect.Response[api.GetChecklistResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := roomForMember(ctx, s.store, req.Msg.RoomID, userID); err != nil {
		return nil, toConnectError(err)
	}

	activities, err := s.store.ListActivitiesByRoom(ctx, req.Msg.RoomID)
	if err != nil {
		slog.Error("GetChecklist failed", "room_id", req.Msg.RoomID, "error", err)
		return nil, toConnectError(err)
	}

	list := calculator.BuildChecklist(activities, userID)
	return connect.NewResponse(&api.GetChecklistResponse{
		OwedToMe:            toAPIChecklist(list.OwedToMe),
		MyDebts:             toAPIChecklist(list.MyDebts),
		OutstandingOwedToMe: money.Round(calculator.Outstanding(list.OwedToMe)),
		OutstandingMyDebts:  money.Round(calculator.Outstanding(list.MyDebts)),
	}), nil
}
