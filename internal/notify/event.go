// Package notify fans change events out to everyone watching a room.
//
// Events only say that something changed. Subscribers re-read the room and recompute; an event
// never carries balances or shares.
package notify

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// Kind names what changed.
type Kind string

const (
	KindSplitChanged    Kind = "split_changed"
	KindPaidChanged     Kind = "paid_changed"
	KindActivityCreated Kind = "activity_created"
	KindActivityDeleted Kind = "activity_deleted"
	KindMemberJoined    Kind = "member_joined"
)

// Event is one change notification for a room.
type Event struct {
	ID         string `json:"id"`
	RoomID     string `json:"room_id"`
	Kind       Kind   `json:"kind"`
	ActivityID string `json:"activity_id,omitempty"`
	ItemID     string `json:"item_id,omitempty"`
	UserID     string `json:"user_id,omitempty"`
	At         int64  `json:"at"`
}

// NewEvent stamps a fresh, time-ordered ID and the current time.
func NewEvent(roomID string, kind Kind) Event {
	return Event{
		ID:     ulid.Make().String(),
		RoomID: roomID,
		Kind:   kind,
		At:     time.Now().Unix(),
	}
}

// Publisher delivers events to watchers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
