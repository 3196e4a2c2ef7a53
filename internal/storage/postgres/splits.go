package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mmynk/billbuddy/internal/models"
	"github.com/mmynk/billbuddy/internal/storage"
)

// GetItem retrieves an item with its current splits.
func (s *Store) GetItem(ctx context.Context, itemID string) (*models.ActivityItem, error) {
	items, err := s.loadItems(ctx, "WHERE i.id = $1", itemID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, notFound("item", itemID)
	}
	return &items[0], nil
}

// RoomIDForItem resolves the room that owns an item.
func (s *Store) RoomIDForItem(ctx context.Context, itemID string) (string, error) {
	var roomID string
	err := s.pool.QueryRow(ctx,
		"SELECT a.room_id FROM activity_items i JOIN activities a ON a.id = i.activity_id WHERE i.id = $1",
		itemID,
	).Scan(&roomID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", notFound("item", itemID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve room for item: %w", err)
	}
	return roomID, nil
}

// ReplaceItemSplits swaps the item's split set if it is still at expectedVersion.
func (s *Store) ReplaceItemSplits(ctx context.Context, itemID string, expectedVersion int64, splits []models.ItemSplit) (int64, error) {
	var version int64
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			"UPDATE activity_items SET split_version = split_version + 1 WHERE id = $1 AND split_version = $2 RETURNING split_version",
			itemID, expectedVersion,
		).Scan(&version)
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if err := tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM activity_items WHERE id = $1)", itemID).Scan(&exists); err != nil {
				return fmt.Errorf("failed to check item: %w", err)
			}
			if !exists {
				return notFound("item", itemID)
			}
			return storage.ErrVersionConflict
		}
		if err != nil {
			return fmt.Errorf("failed to bump split version: %w", err)
		}

		if _, err := tx.Exec(ctx, "DELETE FROM item_splits WHERE item_id = $1", itemID); err != nil {
			return fmt.Errorf("failed to delete splits: %w", err)
		}
		return insertSplits(ctx, tx, itemID, splits)
	})
	if err != nil {
		return 0, err
	}
	return version, nil
}

// GetSplit retrieves a single split.
func (s *Store) GetSplit(ctx context.Context, splitID string) (*models.ItemSplit, error) {
	split, err := scanSplit(s.pool.QueryRow(ctx, "SELECT "+splitColumns+" FROM item_splits s WHERE s.id = $1", splitID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("split", splitID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get split: %w", err)
	}
	return split, nil
}

// SetSplitPaid updates the paid flag and timestamp of one split.
func (s *Store) SetSplitPaid(ctx context.Context, splitID string, paid bool, paidAt int64) error {
	if !paid {
		paidAt = 0
	}
	tag, err := s.pool.Exec(ctx, "UPDATE item_splits SET is_paid = $1, paid_at = $2 WHERE id = $3", paid, paidAt, splitID)
	if err != nil {
		return fmt.Errorf("failed to update split: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("split", splitID)
	}
	return nil
}

// ToggleSplitPaid flips the paid flag in a single statement. paidAt is stored only when the split
// becomes paid.
func (s *Store) ToggleSplitPaid(ctx context.Context, splitID string, paidAt int64) (*models.ItemSplit, error) {
	var split *models.ItemSplit
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			"UPDATE item_splits SET is_paid = NOT is_paid, paid_at = CASE WHEN is_paid THEN 0 ELSE $1 END WHERE id = $2",
			paidAt, splitID,
		)
		if err != nil {
			return fmt.Errorf("failed to toggle split: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return notFound("split", splitID)
		}

		split, err = scanSplit(tx.QueryRow(ctx, "SELECT "+splitColumns+" FROM item_splits s WHERE s.id = $1", splitID))
		if err != nil {
			return fmt.Errorf("failed to read toggled split: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return split, nil
}
