package calculator

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/billbuddy/internal/models"
	"github.com/mmynk/billbuddy/internal/money"
)

// ChangeKind names a requested change to an item's participant set.
type ChangeKind string

const (
	// ChangeAdd adds one member. Adding a current participant changes nothing.
	ChangeAdd ChangeKind = "add"
	// ChangeRemove removes one participant. Removing a non-participant changes nothing.
	ChangeRemove ChangeKind = "remove"
	// ChangeToggle removes the member if participating, otherwise adds them.
	ChangeToggle ChangeKind = "toggle"
	// ChangeSelectAll clears the item when every room member already participates, and otherwise
	// sets the participants to exactly the room's members.
	ChangeSelectAll ChangeKind = "select_all"
	// ChangeSet replaces the participants with the given list.
	ChangeSet ChangeKind = "set"
)

// Change is a requested participation change for one item.
type Change struct {
	Kind    ChangeKind
	UserID  string   // for add, remove and toggle
	UserIDs []string // for set
}

// NextParticipants applies change to the current participant list and returns the complete new list.
// members is the room's member list in display order. The result never contains duplicates, and
// every added user must be a member.
func NextParticipants(current, members []string, change Change) ([]string, error) {
	memberSet := toSet(members)
	next := dedupe(current)

	switch change.Kind {
	case ChangeAdd:
		if err := requireMember(memberSet, change.UserID); err != nil {
			return nil, err
		}
		if !contains(next, change.UserID) {
			next = append(next, change.UserID)
		}
		return next, nil

	case ChangeRemove:
		if change.UserID == "" {
			return nil, models.NewValidationError("user_id", "required")
		}
		return without(next, change.UserID), nil

	case ChangeToggle:
		if contains(next, change.UserID) {
			return without(next, change.UserID), nil
		}
		if err := requireMember(memberSet, change.UserID); err != nil {
			return nil, err
		}
		return append(next, change.UserID), nil

	case ChangeSelectAll:
		if coversAll(next, members) {
			return []string{}, nil
		}
		return dedupe(members), nil

	case ChangeSet:
		for _, id := range change.UserIDs {
			if err := requireMember(memberSet, id); err != nil {
				return nil, err
			}
		}
		return dedupe(change.UserIDs), nil
	}

	return nil, models.NewValidationError("change", "unknown kind %q", change.Kind)
}

// BuildSplits produces the complete replacement split set for an item: one split per participant,
// each carrying ItemShare(item.TotalPrice, len(participants)). Participants who already had a split
// keep its ID and paid flag; their share is recomputed like everyone else's.
func BuildSplits(item *models.ActivityItem, participants []string) []models.ItemSplit {
	previous := make(map[string]models.ItemSplit, len(item.Splits))
	for _, s := range item.Splits {
		previous[s.UserID] = s
	}

	share := ItemShare(money.FromUnits(item.TotalPrice), len(participants))
	now := time.Now().Unix()

	splits := make([]models.ItemSplit, 0, len(participants))
	for _, userID := range participants {
		split := models.ItemSplit{
			ID:          uuid.New().String(),
			ItemID:      item.ID,
			UserID:      userID,
			ShareAmount: share,
			CreatedAt:   now,
		}
		if old, ok := previous[userID]; ok {
			split.ID = old.ID
			split.IsPaid = old.IsPaid
			split.PaidAt = old.PaidAt
			split.CreatedAt = old.CreatedAt
		}
		splits = append(splits, split)
	}
	return splits
}

func requireMember(memberSet map[string]bool, userID string) error {
	if userID == "" {
		return models.NewValidationError("user_id", "required")
	}
	if !memberSet[userID] {
		return models.NewValidationError("user_id", "%s is not a member of this room", userID)
	}
	return nil
}

func coversAll(participants, members []string) bool {
	set := toSet(participants)
	for _, m := range members {
		if !set[m] {
			return false
		}
	}
	return true
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// String is used in logs.
func (c Change) String() string {
	switch c.Kind {
	case ChangeSet:
		return fmt.Sprintf("%s(%d users)", c.Kind, len(c.UserIDs))
	case ChangeSelectAll:
		return string(c.Kind)
	default:
		return fmt.Sprintf("%s(%s)", c.Kind, c.UserID)
	}
}
