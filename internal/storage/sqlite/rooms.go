package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/billbuddy/internal/models"
	"github.com/mmynk/billbuddy/internal/storage"
)

// CreateRoom persists a new room and makes its host the first member.
func (s *SQLiteStore) CreateRoom(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.New().String()
	}
	if room.CreatedAt == 0 {
		room.CreatedAt = time.Now().Unix()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO rooms (id, name, description, host_id, invite_code, created_at) VALUES (?, ?, ?, ?, ?, ?)",
			room.ID, room.Name, room.Description, room.HostID, room.InviteCode, room.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert room: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO room_members (room_id, user_id, joined_at) VALUES (?, ?, ?)",
			room.ID, room.HostID, room.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert host membership: %w", err)
		}
		return nil
	})
}

// GetRoom retrieves a room by ID, including its members.
func (s *SQLiteStore) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	return s.getRoom(ctx, "id", roomID)
}

// GetRoomByInviteCode retrieves a room by its invite code. Codes are matched case-insensitively.
func (s *SQLiteStore) GetRoomByInviteCode(ctx context.Context, code string) (*models.Room, error) {
	return s.getRoom(ctx, "invite_code", strings.ToUpper(strings.TrimSpace(code)))
}

func (s *SQLiteStore) getRoom(ctx context.Context, column, value string) (*models.Room, error) {
	room := &models.Room{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, description, host_id, invite_code, created_at FROM rooms WHERE "+column+" = ?",
		value,
	).Scan(&room.ID, &room.Name, &room.Description, &room.HostID, &room.InviteCode, &room.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("room", value)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	members, err := s.listMembers(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	room.Members = members
	return room, nil
}

func (s *SQLiteStore) listMembers(ctx context.Context, roomID string) ([]models.RoomMember, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT m.user_id, COALESCE(u.display_name, ''), m.joined_at
		 FROM room_members m LEFT JOIN users u ON u.id = m.user_id
		 WHERE m.room_id = ? ORDER BY m.joined_at, m.user_id`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	var members []models.RoomMember
	for rows.Next() {
		var m models.RoomMember
		if err := rows.Scan(&m.UserID, &m.DisplayName, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

// ListRoomsForUser returns the rooms userID belongs to, newest first.
func (s *SQLiteStore) ListRoomsForUser(ctx context.Context, userID string) ([]*models.Room, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id FROM rooms r JOIN room_members m ON m.room_id = r.id
		 WHERE m.user_id = ? ORDER BY r.created_at DESC, r.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rooms: %w", err)
	}

	rooms := make([]*models.Room, 0, len(ids))
	for _, id := range ids {
		room, err := s.GetRoom(ctx, id)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

// AddMember adds userID to the room. Returns storage.ErrAlreadyMember if they already belong.
func (s *SQLiteStore) AddMember(ctx context.Context, roomID, userID string) error {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO room_members (room_id, user_id, joined_at) VALUES (?, ?, ?) ON CONFLICT (room_id, user_id) DO NOTHING",
		roomID, userID, time.Now().Unix(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return notFound("room", roomID)
		}
		return fmt.Errorf("failed to add member: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	if n == 0 {
		return storage.ErrAlreadyMember
	}
	return nil
}

// IsMember reports whether userID belongs to the room.
func (s *SQLiteStore) IsMember(ctx context.Context, roomID, userID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM room_members WHERE room_id = ? AND user_id = ?",
		roomID, userID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return true, nil
}

// DeleteRoom removes the room. Foreign keys cascade to members, activities, items and splits.
func (s *SQLiteStore) DeleteRoom(ctx context.Context, roomID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM rooms WHERE id = ?", roomID)
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	if n == 0 {
		return notFound("room", roomID)
	}
	return nil
}
