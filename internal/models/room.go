package models

// Room is a group in which expenses are shared among members.
type Room struct {
	// ID is the unique identifier for the room (UUID format).
	ID string

	// Name is the display name (e.g., "Bali Trip").
	Name string

	// Description is optional free text.
	Description string

	// HostID is the user who created the room.
	HostID string

	// InviteCode is the six character code other users join with.
	InviteCode string

	// CreatedAt is the Unix timestamp when the room was created.
	CreatedAt int64

	// Members is populated on reads; order is by join time.
	Members []RoomMember
}

// RoomMember is one user's membership of a room.
type RoomMember struct {
	UserID      string
	DisplayName string
	JoinedAt    int64
}

// MemberIDs returns the member user IDs in join order.
func (r *Room) MemberIDs() []string {
	ids := make([]string, len(r.Members))
	for i, m := range r.Members {
		ids[i] = m.UserID
	}
	return ids
}

// HasMember reports whether userID belongs to the room.
func (r *Room) HasMember(userID string) bool {
	for _, m := range r.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
