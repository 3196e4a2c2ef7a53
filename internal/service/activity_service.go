package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/billbuddy/internal/api"
	"github.com/mmynk/billbuddy/internal/calculator"
	"github.com/mmynk/billbuddy/internal/metrics"
	"github.com/mmynk/billbuddy/internal/models"
	"github.com/mmynk/billbuddy/internal/notify"
	"github.com/mmynk/billbuddy/internal/receipt"
	"github.com/mmynk/billbuddy/internal/storage"
)

// ActivityService implements the Connect ActivityService.
type ActivityService struct {
	store     storage.Store
	publisher notify.Publisher
	scanner   receipt.Scanner
	metrics   *metrics.Metrics
}

var _ api.ActivityServiceHandler = (*ActivityService)(nil)

// NewActivityService creates an ActivityService. scanner may be nil, in which case every
// ScanReceipt call reports "scan failed".
func NewActivityService(store storage.Store, publisher notify.Publisher, scanner receipt.Scanner, m *metrics.Metrics) *ActivityService {
	return &ActivityService{store: store, publisher: publisher, scanner: scanner, metrics: m}
}

// CreateActivity records an expense with its items and their initial equal splits.
func (s *ActivityService) CreateActivity(ctx context.Context, req *connect.Request[api.CreateActivityRequest]) (*connect.Response[api.ActivityResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateActivity request received",
		"room_id", req.Msg.RoomID,
		"name", req.Msg.Name,
		"items_count", len(req.Msg.Items),
	)

	room, err := roomForMember(ctx, s.store, req.Msg.RoomID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	activity, err := buildActivity(req.Msg, room)
	if err != nil {
		slog.Warn("CreateActivity rejected", "room_id", room.ID, "error", err)
		return nil, toConnectError(err)
	}

	if err := s.store.CreateActivity(ctx, activity); err != nil {
		slog.Error("CreateActivity failed", "room_id", room.ID, "error", err)
		return nil, toConnectError(err)
	}

	event := notify.NewEvent(room.ID, notify.KindActivityCreated)
	event.ActivityID = activity.ID
	event.UserID = userID
	publish(ctx, s.publisher, s.metrics, event)

	slog.Info("Activity created", "activity_id", activity.ID, "total", activity.TotalAmount)
	return connect.NewResponse(activityResponse(activity)), nil
}

// buildActivity validates the request against the room and assembles the activity, computing the
// subtotal and total from the items.
func buildActivity(msg *api.CreateActivityRequest, room *models.Room) (*models.Activity, error) {
	activity := &models.Activity{
		RoomID:          room.ID,
		Name:            strings.TrimSpace(msg.Name),
		Description:     strings.TrimSpace(msg.Description),
		PayerID:         msg.PayerID,
		TaxAmount:       msg.TaxAmount,
		ServiceCharge:   msg.ServiceCharge,
		DiscountAmount:  msg.DiscountAmount,
		ReceiptImageURL: msg.ReceiptImageURL,
		Items:           make([]models.ActivityItem, len(msg.Items)),
	}
	for i, in := range msg.Items {
		item := models.ActivityItem{
			Name:       strings.TrimSpace(in.Name),
			Quantity:   in.Quantity,
			UnitPrice:  in.UnitPrice,
			TotalPrice: in.TotalPrice,
		}
		if item.TotalPrice == 0 && item.UnitPrice > 0 {
			item.TotalPrice = item.Quantity * item.UnitPrice
		}
		activity.Items[i] = item
	}
	activity.Subtotal = activity.ItemsSubtotal()
	activity.TotalAmount = activity.ComputedTotal()

	if err := activity.Validate(); err != nil {
		return nil, err
	}
	if !room.HasMember(activity.PayerID) {
		return nil, models.NewValidationError("payer_id", "%q is not a member of the room", activity.PayerID)
	}

	members := room.MemberIDs()
	for i, in := range msg.Items {
		item := &activity.Items[i]
		participants, err := calculator.NextParticipants(nil, members, calculator.Change{
			Kind:    calculator.ChangeSet,
			UserIDs: in.ParticipantIDs,
		})
		if err != nil {
			return nil, fmt.Errorf("item %q: %w", item.Name, err)
		}
		item.Splits = calculator.BuildSplits(item, participants)
	}
	return activity, nil
}

// GetActivity returns an activity with per-participant totals.
func (s *ActivityService) GetActivity(ctx context.Context, req *connect.Request[api.GetActivityRequest]) (*connect.Response[api.ActivityResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	activity, err := s.activityForMember(ctx, req.Msg.ActivityID, userID)
	if err != nil {
		slog.Warn("GetActivity failed", "activity_id", req.Msg.ActivityID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(activityResponse(activity)), nil
}

// ListActivities returns every activity in the room, newest first.
func (s *ActivityService) ListActivities(ctx context.Context, req *connect.Request[api.ListActivitiesRequest]) (*connect.Response[api.ListActivitiesResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := roomForMember(ctx, s.store, req.Msg.RoomID, userID); err != nil {
		return nil, toConnectError(err)
	}

	activities, err := s.store.ListActivitiesByRoom(ctx, req.Msg.RoomID)
	if err != nil {
		slog.Error("ListActivities failed", "room_id", req.Msg.RoomID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]api.Activity, len(activities))
	for i := range activities {
		out[i] = toAPIActivity(&activities[i])
	}
	slog.Info("ListActivities successful", "room_id", req.Msg.RoomID, "count", len(out))
	return connect.NewResponse(&api.ListActivitiesResponse{Activities: out}), nil
}

// DeleteActivity removes the activity with its items and splits.
func (s *ActivityService) DeleteActivity(ctx context.Context, req *connect.Request[api.DeleteActivityRequest]) (*connect.Response[api.DeleteActivityResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	activity, err := s.activityForMember(ctx, req.Msg.ActivityID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := s.store.DeleteActivity(ctx, activity.ID); err != nil {
		slog.Error("DeleteActivity failed", "activity_id", activity.ID, "error", err)
		return nil, toConnectError(err)
	}

	event := notify.NewEvent(activity.RoomID, notify.KindActivityDeleted)
	event.ActivityID = activity.ID
	event.UserID = userID
	publish(ctx, s.publisher, s.metrics, event)

	slog.Info("Activity deleted", "activity_id", activity.ID)
	return connect.NewResponse(&api.DeleteActivityResponse{}), nil
}

// ScanReceipt extracts a draft from a receipt image for manual review. Nothing is persisted.
func (s *ActivityService) ScanReceipt(ctx context.Context, req *connect.Request[api.ScanReceiptRequest]) (*connect.Response[api.ScanReceiptResponse], error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	slog.Info("ScanReceipt request received", "bytes", len(req.Msg.Image), "mime_type", req.Msg.MimeType)

	if len(req.Msg.Image) == 0 {
		return nil, toConnectError(models.NewValidationError("image", "required"))
	}
	if s.scanner == nil {
		s.metrics.ReceiptScanned(metrics.ScanFailed)
		return nil, toConnectError(fmt.Errorf("%w: no scanner configured", receipt.ErrScanFailed))
	}

	draft, err := s.scanner.Scan(ctx, req.Msg.Image, req.Msg.MimeType)
	if err != nil {
		s.metrics.ReceiptScanned(metrics.ScanFailed)
		slog.Error("ScanReceipt failed", "error", err)
		return nil, connect.NewError(connect.CodeUnavailable, receipt.ErrScanFailed)
	}

	s.metrics.ReceiptScanned(metrics.ScanOK)
	slog.Info("Receipt scanned", "items_count", len(draft.Items), "total", draft.Total)
	return connect.NewResponse(&api.ScanReceiptResponse{Draft: *draft}), nil
}

func (s *ActivityService) activityForMember(ctx context.Context, activityID, userID string) (*models.Activity, error) {
	if activityID == "" {
		return nil, models.NewValidationError("activity_id", "required")
	}
	activity, err := s.store.GetActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if _, err := roomForMember(ctx, s.store, activity.RoomID, userID); err != nil {
		return nil, err
	}
	return activity, nil
}

func activityResponse(activity *models.Activity) *api.ActivityResponse {
	return &api.ActivityResponse{
		Activity: toAPIActivity(activity),
		Totals:   toAPITotals(calculator.CalculateActivitySplit(activity)),
	}
}
