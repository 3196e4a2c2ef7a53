package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/billbuddy/internal/models"
	"github.com/mmynk/billbuddy/internal/storage"
)

// GetItem retrieves an item with its current splits.
func (s *SQLiteStore) GetItem(ctx context.Context, itemID string) (*models.ActivityItem, error) {
	items, err := s.loadItems(ctx, "WHERE i.id = ?", itemID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, notFound("item", itemID)
	}
	return &items[0], nil
}

// RoomIDForItem resolves the room that owns an item.
func (s *SQLiteStore) RoomIDForItem(ctx context.Context, itemID string) (string, error) {
	var roomID string
	err := s.db.QueryRowContext(ctx,
		"SELECT a.room_id FROM activity_items i JOIN activities a ON a.id = i.activity_id WHERE i.id = ?",
		itemID,
	).Scan(&roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", notFound("item", itemID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve room for item: %w", err)
	}
	return roomID, nil
}

// ReplaceItemSplits bumps the item's split version if it still equals expectedVersion and swaps in
// the new split set, all in one transaction. Readers see either the old set or the new one.
func (s *SQLiteStore) ReplaceItemSplits(ctx context.Context, itemID string, expectedVersion int64, splits []models.ItemSplit) (int64, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE activity_items SET split_version = split_version + 1 WHERE id = ? AND split_version = ?",
			itemID, expectedVersion,
		)
		if err != nil {
			return fmt.Errorf("failed to bump split version: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to bump split version: %w", err)
		}
		if n == 0 {
			var one int
			err := tx.QueryRowContext(ctx, "SELECT 1 FROM activity_items WHERE id = ?", itemID).Scan(&one)
			if errors.Is(err, sql.ErrNoRows) {
				return notFound("item", itemID)
			}
			if err != nil {
				return fmt.Errorf("failed to check item: %w", err)
			}
			return storage.ErrVersionConflict
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM item_splits WHERE item_id = ?", itemID); err != nil {
			return fmt.Errorf("failed to delete splits: %w", err)
		}
		return insertSplits(ctx, tx, itemID, splits)
	})
	if err != nil {
		return 0, err
	}
	return expectedVersion + 1, nil
}

// GetSplit retrieves a single split.
func (s *SQLiteStore) GetSplit(ctx context.Context, splitID string) (*models.ItemSplit, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+splitColumns+" FROM item_splits s WHERE s.id = ?", splitID)
	split, err := scanSplit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("split", splitID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get split: %w", err)
	}
	return split, nil
}

// SetSplitPaid updates the paid flag and timestamp of one split.
func (s *SQLiteStore) SetSplitPaid(ctx context.Context, splitID string, paid bool, paidAt int64) error {
	if !paid {
		paidAt = 0
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE item_splits SET is_paid = ?, paid_at = ? WHERE id = ?",
		boolToInt(paid), paidAt, splitID,
	)
	if err != nil {
		return fmt.Errorf("failed to update split: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update split: %w", err)
	}
	if n == 0 {
		return notFound("split", splitID)
	}
	return nil
}

// ToggleSplitPaid flips the paid flag in a single statement, so concurrent toggles never both
// observe the same old value. paidAt is stored only when the split becomes paid.
func (s *SQLiteStore) ToggleSplitPaid(ctx context.Context, splitID string, paidAt int64) (*models.ItemSplit, error) {
	var split *models.ItemSplit
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE item_splits SET is_paid = 1 - is_paid, paid_at = CASE WHEN is_paid = 0 THEN ? ELSE 0 END WHERE id = ?",
			paidAt, splitID,
		)
		if err != nil {
			return fmt.Errorf("failed to toggle split: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to toggle split: %w", err)
		}
		if n == 0 {
			return notFound("split", splitID)
		}

		row := tx.QueryRowContext(ctx, "SELECT "+splitColumns+" FROM item_splits s WHERE s.id = ?", splitID)
		split, err = scanSplit(row)
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
