package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmynk/billbuddy/internal/models"
	"github.com/mmynk/billbuddy/internal/storage"
)

// CreateRoom persists a new room and makes its host the first member.
func (s *Store) CreateRoom(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.New().String()
	}
	if room.CreatedAt == 0 {
		room.CreatedAt = time.Now().Unix()
	}

	return s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			"INSERT INTO rooms (id, name, description, host_id, invite_code, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
			room.ID, room.Name, room.Description, room.HostID, room.InviteCode, room.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert room: %w", err)
		}
		if _, err := tx.Exec(ctx,
			"INSERT INTO room_members (room_id, user_id, joined_at) VALUES ($1, $2, $3)",
			room.ID, room.HostID, room.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert host membership: %w", err)
		}
		return nil
	})
}

// GetRoom retrieves a room by ID, including its members.
func (s *Store) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	return s.getRoom(ctx, "id", roomID)
}

// GetRoomByInviteCode retrieves a room by its invite code, case-insensitively.
func (s *Store) GetRoomByInviteCode(ctx context.Context, code string) (*models.Room, error) {
	return s.getRoom(ctx, "invite_code", strings.ToUpper(strings.TrimSpace(code)))
}

func (s *Store) getRoom(ctx context.Context, column, value string) (*models.Room, error) {
	room := &models.Room{}
	err := s.pool.QueryRow(ctx,
		"SELECT id, name, description, host_id, invite_code, created_at FROM rooms WHERE "+column+" = $1",
		value,
	).Scan(&room.ID, &room.Name, &room.Description, &room.HostID, &room.InviteCode, &room.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("room", value)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT m.user_id, COALESCE(u.display_name, ''), m.joined_at
		 FROM room_members m LEFT JOIN users u ON u.id = m.user_id
		 WHERE m.room_id = $1 ORDER BY m.joined_at, m.user_id`,
		room.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.RoomMember
		if err := rows.Scan(&m.UserID, &m.DisplayName, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		room.Members = append(room.Members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return room, nil
}

// ListRoomsForUser returns the rooms userID belongs to, newest first.
func (s *Store) ListRoomsForUser(ctx context.Context, userID string) ([]*models.Room, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT r.id FROM rooms r JOIN room_members m ON m.room_id = r.id
		 WHERE m.user_id = $1 ORDER BY r.created_at DESC, r.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan rooms: %w", err)
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
func (s *Store) AddMember(ctx context.Context, roomID, userID string) error {
	tag, err := s.pool.Exec(ctx,
		"INSERT INTO room_members (room_id, user_id, joined_at) VALUES ($1, $2, $3) ON CONFLICT (room_id, user_id) DO NOTHING",
		roomID, userID, time.Now().Unix(),
	)
	if isForeignKeyViolation(err) {
		return notFound("room", roomID)
	}
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrAlreadyMember
	}
	return nil
}

// IsMember reports whether userID belongs to the room.
func (s *Store) IsMember(ctx context.Context, roomID, userID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM room_members WHERE room_id = $1 AND user_id = $2)",
		roomID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return exists, nil
}

// DeleteRoom removes the room; foreign keys cascade to everything inside it.
func (s *Store) DeleteRoom(ctx context.Context, roomID string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM rooms WHERE id = $1", roomID)
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("room", roomID)
	}
	return nil
}
