// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/billbuddy/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrVersionConflict is returned by ReplaceItemSplits when the item's split set was replaced
	// after the caller read it.
	ErrVersionConflict = errors.New("split version conflict")

	// ErrAlreadyMember is returned by AddMember when the user already belongs to the room.
	ErrAlreadyMember = errors.New("already a member")

	// ErrEmailTaken is returned by CreateUser when the email is registered already.
	ErrEmailTaken = errors.New("email already registered")
)

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUsersByIDs returns the users that exist, keyed by ID.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// RoomStore persists rooms and their membership.
type RoomStore interface {
	// CreateRoom persists the room and adds its host as the first member in one transaction.
	CreateRoom(ctx context.Context, room *models.Room) error

	// GetRoom returns the room with its members, ordered by join time.
	GetRoom(ctx context.Context, roomID string) (*models.Room, error)
	GetRoomByInviteCode(ctx context.Context, code string) (*models.Room, error)
	ListRoomsForUser(ctx context.Context, userID string) ([]*models.Room, error)

	AddMember(ctx context.Context, roomID, userID string) error
	IsMember(ctx context.Context, roomID, userID string) (bool, error)

	// DeleteRoom removes the room with every activity, item and split in it.
	DeleteRoom(ctx context.Context, roomID string) error
}

// ActivityStore persists activities together with their items and splits.
type ActivityStore interface {
	// CreateActivity inserts the activity, its items and their initial splits in one transaction.
	CreateActivity(ctx context.Context, activity *models.Activity) error

	// GetActivity returns the fully loaded activity.
	GetActivity(ctx context.Context, activityID string) (*models.Activity, error)

	// ListActivitiesByRoom returns every activity of the room, fully loaded, newest first.
	ListActivitiesByRoom(ctx context.Context, roomID string) ([]models.Activity, error)

	// DeleteActivity removes splits, items and the activity in one transaction.
	DeleteActivity(ctx context.Context, activityID string) error
}

// SplitStore persists item participation and paid flags.
type SplitStore interface {
	// GetItem returns the item with its current splits and split version.
	GetItem(ctx context.Context, itemID string) (*models.ActivityItem, error)

	// RoomIDForItem resolves the room an item belongs to.
	RoomIDForItem(ctx context.Context, itemID string) (string, error)

	// ReplaceItemSplits atomically swaps the item's complete split set, provided the item is still
	// at expectedVersion. It returns the new version, or ErrVersionConflict if another writer got
	// there first.
	ReplaceItemSplits(ctx context.Context, itemID string, expectedVersion int64, splits []models.ItemSplit) (int64, error)

	GetSplit(ctx context.Context, splitID string) (*models.ItemSplit, error)

	// SetSplitPaid updates only the paid flag and timestamp. Shares are never touched.
	SetSplitPaid(ctx context.Context, splitID string, paid bool, paidAt int64) error

	// ToggleSplitPaid atomically flips the paid flag, stamping paidAt when it becomes paid, and
	// returns the split as written.
	ToggleSplitPaid(ctx context.Context, splitID string, paidAt int64) (*models.ItemSplit, error)
}

// PaymentAccountStore persists where members want to be paid.
type PaymentAccountStore interface {
	// CreatePaymentAccount inserts the account. A primary account demotes the user's others.
	CreatePaymentAccount(ctx context.Context, account *models.PaymentAccount) error
	ListPaymentAccounts(ctx context.Context, userID string) ([]*models.PaymentAccount, error)

	// GetPrimaryAccounts returns each user's primary account, keyed by user ID. Users without
	// one are omitted.
	GetPrimaryAccounts(ctx context.Context, userIDs []string) (map[string]*models.PaymentAccount, error)
}

// Store defines the complete storage surface.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	UserStore
	RoomStore
	ActivityStore
	SplitStore
	PaymentAccountStore

	// Close releases any resources held by the store.
	Close() error
}
