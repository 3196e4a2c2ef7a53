package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/billbuddy/internal/models"
)

const activityColumns = `a.id, a.room_id, a.name, a.description, a.payer_id, a.subtotal, a.tax_amount,
	a.service_charge, a.discount_amount, a.total_amount, a.receipt_image_url, a.created_at`

const itemColumns = "i.id, i.activity_id, i.name, i.quantity, i.unit_price, i.total_price, i.split_version"

const splitColumns = "s.id, s.item_id, s.user_id, s.share_amount, s.is_paid, s.paid_at, s.created_at"

// CreateActivity persists a new activity with its items and their initial splits.
func (s *SQLiteStore) CreateActivity(ctx context.Context, activity *models.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.New().String()
	}
	if activity.CreatedAt == 0 {
		activity.CreatedAt = time.Now().Unix()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO activities (id, room_id, name, description, payer_id, subtotal, tax_amount,
				service_charge, discount_amount, total_amount, receipt_image_url, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			activity.ID, activity.RoomID, activity.Name, activity.Description, activity.PayerID,
			activity.Subtotal, activity.TaxAmount, activity.ServiceCharge, activity.DiscountAmount,
			activity.TotalAmount, activity.ReceiptImageURL, activity.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert activity: %w", err)
		}

		for pos := range activity.Items {
			item := &activity.Items[pos]
			if item.ID == "" {
				item.ID = uuid.New().String()
			}
			item.ActivityID = activity.ID

			_, err = tx.ExecContext(ctx,
				`INSERT INTO activity_items (id, activity_id, position, name, quantity, unit_price, total_price, split_version)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				item.ID, item.ActivityID, pos, item.Name, item.Quantity, item.UnitPrice, item.TotalPrice, item.SplitVersion,
			)
			if err != nil {
				return fmt.Errorf("failed to insert item: %w", err)
			}

			if err := insertSplits(ctx, tx, item.ID, item.Splits); err != nil {
				return err
			}
		}
		return nil
	})
}

// insertSplits writes splits in participant order, filling in missing IDs and item references.
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

		_, err := q.ExecContext(ctx,
			`INSERT INTO item_splits (id, item_id, position, user_id, share_amount, is_paid, paid_at, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			split.ID, split.ItemID, pos, split.UserID, split.ShareAmount.String(),
			boolToInt(split.IsPaid), split.PaidAt, split.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}
	return nil
}

// GetActivity retrieves an activity with all items and splits.
func (s *SQLiteStore) GetActivity(ctx context.Context, activityID string) (*models.Activity, error) {
	activities, err := s.loadActivities(ctx, "a.id = ?", activityID)
	if err != nil {
		return nil, err
	}
	if len(activities) == 0 {
		return nil, notFound("activity", activityID)
	}
	return &activities[0], nil
}

// ListActivitiesByRoom retrieves every activity of a room, newest first.
func (s *SQLiteStore) ListActivitiesByRoom(ctx context.Context, roomID string) ([]models.Activity, error) {
	return s.loadActivities(ctx, "a.room_id = ?", roomID)
}

// loadActivities runs three queries (activities, items, splits) filtered by the same condition on
// the activities table and stitches the results together.
func (s *SQLiteStore) loadActivities(ctx context.Context, where string, arg string) ([]models.Activity, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+activityColumns+" FROM activities a WHERE "+where+" ORDER BY a.created_at DESC, a.id",
		arg,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get activities: %w", err)
	}
	var activities []models.Activity
	index := make(map[string]int)
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.RoomID, &a.Name, &a.Description, &a.PayerID, &a.Subtotal,
			&a.TaxAmount, &a.ServiceCharge, &a.DiscountAmount, &a.TotalAmount, &a.ReceiptImageURL, &a.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		index[a.ID] = len(activities)
		activities = append(activities, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activities: %w", err)
	}
	if len(activities) == 0 {
		return activities, nil
	}

	items, err := s.loadItems(ctx,
		"JOIN activities a ON a.id = i.activity_id WHERE "+where, arg)
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

// loadItems returns items (ordered by position) with their splits attached.
func (s *SQLiteStore) loadItems(ctx context.Context, joinWhere string, arg string) ([]models.ActivityItem, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+itemColumns+" FROM activity_items i "+joinWhere+" ORDER BY i.activity_id, i.position",
		arg,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	var items []models.ActivityItem
	index := make(map[string]int)
	for rows.Next() {
		var item models.ActivityItem
		if err := rows.Scan(&item.ID, &item.ActivityID, &item.Name, &item.Quantity, &item.UnitPrice,
			&item.TotalPrice, &item.SplitVersion); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		index[item.ID] = len(items)
		items = append(items, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	if len(items) == 0 {
		return items, nil
	}

	splitRows, err := s.db.QueryContext(ctx,
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
	var paid int
	if err := row.Scan(&split.ID, &split.ItemID, &split.UserID, &split.ShareAmount, &paid,
		&split.PaidAt, &split.CreatedAt); err != nil {
		return nil, err
	}
	split.IsPaid = paid != 0
	return &split, nil
}

// DeleteActivity removes splits, then items, then the activity, in one transaction.
func (s *SQLiteStore) DeleteActivity(ctx context.Context, activityID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var id string
		err := tx.QueryRowContext(ctx, "SELECT id FROM activities WHERE id = ?", activityID).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("activity", activityID)
		}
		if err != nil {
			return fmt.Errorf("failed to get activity: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			"DELETE FROM item_splits WHERE item_id IN (SELECT id FROM activity_items WHERE activity_id = ?)",
			activityID,
		); err != nil {
			return fmt.Errorf("failed to delete splits: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM activity_items WHERE activity_id = ?", activityID); err != nil {
			return fmt.Errorf("failed to delete items: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM activities WHERE id = ?", activityID); err != nil {
			return fmt.Errorf("failed to delete activity: %w", err)
		}
		return nil
	})
}
