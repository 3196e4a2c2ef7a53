package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/mmynk/billbuddy/internal/models"
)

const activityColumns = `a.id, a.room_id, a.name, a.description, a.payer_id, a.subtotal, a.tax_amount,
	a.service_charge, a.discount_amount, a.total_amount, a.receipt_image_url, a.created_at`

const itemColumns = "i.id, i.activity_id, i.name, i.quantity, i.unit_price, i.total_price, i.split_version"

const splitColumns = "s.id, s.item_id, s.user_id, s.share_amount, s.is_paid, s.paid_at, s.created_at"

// CreateActivity persists a new activity with its items and their initial splits.
func (s *Store) CreateActivity(ctx context.Context, activity *models.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.New().String()
	}
	if activity.CreatedAt == 0 {
		activity.CreatedAt = time.Now().Unix()
	}

	return s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO activities (id, room_id, name, description, payer_id, subtotal, tax_amount,
				service_charge, discount_amount, total_amount, receipt_image_url, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			activity.ID, activity.RoomID, activity.Name, activity.Description, activity.PayerID,
			activity.Subtotal, activity.TaxAmount, activity.ServiceCharge, activity.DiscountAmount,
			activity.TotalAmount, activity.ReceiptImageURL, activity.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert activity: %w", err)
		}

		for pos := range activity.Items {
			item := &activity.Items[pos]
			if item.ID == "" {
				item.ID = uuid.New().String()
			}
			item.ActivityID = activity.ID

			if _, err := tx.Exec(ctx,
				`INSERT INTO activity_items (id, activity_id, position, name, quantity, unit_price, total_price, split_version)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				item.ID, item.ActivityID, pos, item.Name, item.Quantity, item.UnitPrice, item.TotalPrice, item.SplitVersion,
			); err != nil {
				return fmt.Errorf("failed to insert item: %w", err)
			}

			if err := insertSplits(ctx, tx, item.ID, item.Splits); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertSplits(ctx context.Context, q querier, itemID string, splits []models.ItemSplit) error {
	now := time.Now().Unix()
	for pos := range splits {
		split := &splits[pos]
		if split.ID == "" {
			split.ID = uuid.New().String()
		}
		if split.CreatedAt == 0 {
			split.CreatedAt = now
		}
		split.ItemID = itemID

		if _, err := q.Exec(ctx,
			`INSERT INTO item_splits (id, item_id, position, user_id, share_amount, is_paid, paid_at, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			split.ID, split.ItemID, pos, split.UserID, split.ShareAmount.String(), split.IsPaid, split.PaidAt, split.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}
	return nil
}

// GetActivity retrieves an activity with all items and splits.
func (s *Store) GetActivity(ctx context.Context, activityID string) (*models.Activity, error) {
	activities, err := s.loadActivities(ctx, "a.id = $1", activityID)
	if err != nil {
		return nil, err
	}
	if len(activities) == 0 {
		return nil, notFound("activity", activityID)
	}
	return &activities[0], nil
}

// ListActivitiesByRoom retrieves every activity of a room, newest first.
func (s *Store) ListActivitiesByRoom(ctx context.Context, roomID string) ([]models.Activity, error) {
	return s.loadActivities(ctx, "a.room_id = $1", roomID)
}

func (s *Store) loadActivities(ctx context.Context, where, arg string) ([]models.Activity, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+activityColumns+" FROM activities a WHERE "+where+" ORDER BY a.created_at DESC, a.id",
		arg,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get activities: %w", err)
	}
	activities, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Activity, error) {
		var a models.Activity
		err := row.Scan(&a.ID, &a.RoomID, &a.Name, &a.Description, &a.PayerID, &a.Subtotal,
			&a.TaxAmount, &a.ServiceCharge, &a.DiscountAmount, &a.TotalAmount, &a.ReceiptImageURL, &a.CreatedAt)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan activities: %w", err)
	}
	if len(activities) == 0 {
		return activities, nil
	}

	index := make(map[string]int, len(activities))
	for n, a := range activities {
		index[a.ID] = n
	}

	items, err := s.loadItems(ctx, "JOIN activities a ON a.id = i.activity_id WHERE "+where, arg)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if n, ok := index[item.ActivityID]; ok {
			activities[n].Items = append(activities[n].Items, item)
		}
	}
	return activities, nil
}

func (s *Store) loadItems(ctx context.Context, joinWhere, arg string) ([]models.ActivityItem, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+itemColumns+" FROM activity_items i "+joinWhere+" ORDER BY i.activity_id, i.position",
		arg,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ActivityItem, error) {
		var item models.ActivityItem
		err := row.Scan(&item.ID, &item.ActivityID, &item.Name, &item.Quantity, &item.UnitPrice,
			&item.TotalPrice, &item.SplitVersion)
		return item, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan items: %w", err)
	}
	if len(items) == 0 {
		return items, nil
	}

	index := make(map[string]int, len(items))
	for n, item := range items {
		index[item.ID] = n
	}

	splitRows, err := s.pool.Query(ctx,
		"SELECT "+splitColumns+" FROM item_splits s JOIN activity_items i ON i.id = s.item_id "+
			joinWhere+" ORDER BY s.item_id, s.position",
		arg,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer splitRows.Close()

	for splitRows.Next() {
		split, err := scanSplit(splitRows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		if n, ok := index[split.ItemID]; ok {
			items[n].Splits = append(items[n].Splits, *split)
		}
	}
	if err := splitRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}
	return items, nil
}

func scanSplit(row scanner) (*models.ItemSplit, error) {
	var split models.ItemSplit
	var share string
	if err := row.Scan(&split.ID, &split.ItemID, &split.UserID, &share, &split.IsPaid,
		&split.PaidAt, &split.CreatedAt); err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(share)
	if err != nil {
		return nil, fmt.Errorf("invalid share amount %q: %w", share, err)
	}
	split.ShareAmount = amount
	return &split, nil
}

// DeleteActivity removes splits, then items, then the activity, in one transaction.
func (s *Store) DeleteActivity(ctx context.Context, activityID string) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			"DELETE FROM item_splits WHERE item_id IN (SELECT id FROM activity_items WHERE activity_id = $1)",
			activityID,
		); err != nil {
			return fmt.Errorf("failed to delete splits: %w", err)
		}
		if _, err := tx.Exec(ctx, "DELETE FROM activity_items WHERE activity_id = $1", activityID); err != nil {
			return fmt.Errorf("failed to delete items: %w", err)
		}
		tag, err := tx.Exec(ctx, "DELETE FROM activities WHERE id = $1", activityID)
		if err != nil {
			return fmt.Errorf("failed to delete activity: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return notFound("activity", activityID)
		}
		return nil
	})
}
