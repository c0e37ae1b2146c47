package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"chat-pipeline/internal/models"
)

var ErrRoomNotFound = errors.New("room not found")

// RoomRepository abstracts chat room persistence.
type RoomRepository interface {
	CreateIfAbsent(ctx context.Context, room models.ChatRoom) (models.ChatRoom, bool, error)
	GetRoom(ctx context.Context, roomID string) (models.ChatRoom, error)
	UpdatePreview(ctx context.Context, roomID, content string, at time.Time) error
	ListRoomsForUser(ctx context.Context, userID string) ([]models.ChatRoom, error)
}

// RoomRepo is a sqlx implementation of RoomRepository.
type RoomRepo struct {
	db *sqlx.DB
}

// NewRoomRepo constructs a RoomRepo.
func NewRoomRepo(db *sqlx.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

const roomColumns = `id, name, type, description, avatar, last_message, last_message_at, created_at, updated_at`

// CreateIfAbsent performs a conditional insert keyed on the room id. When the
// id already exists the stored room is returned with created=false; this is
// the dedup primitive behind deterministic private-room ids.
func (r *RoomRepo) CreateIfAbsent(ctx context.Context, room models.ChatRoom) (models.ChatRoom, bool, error) {
	var created models.ChatRoom
	err := r.db.QueryRowxContext(ctx, `INSERT INTO chat_rooms (id, name, type, description)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (id) DO NOTHING
        RETURNING `+roomColumns,
		room.ID, room.Name, room.Type, room.Description).StructScan(&created)
	if errors.Is(err, sql.ErrNoRows) {
		existing, err := r.GetRoom(ctx, room.ID)
		return existing, false, err
	}
	if err != nil {
		return models.ChatRoom{}, false, err
	}
	return created, true, nil
}

// GetRoom fetches a room by id.
func (r *RoomRepo) GetRoom(ctx context.Context, roomID string) (models.ChatRoom, error) {
	var room models.ChatRoom
	err := r.db.GetContext(ctx, &room, `SELECT `+roomColumns+` FROM chat_rooms WHERE id=$1`, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ChatRoom{}, ErrRoomNotFound
	}
	return room, err
}

// UpdatePreview overwrites the room's last-message preview unconditionally.
// Last writer wins: two sends racing through the non-FIFO queue may leave the
// older message as the preview until the next send. Accepted trade-off.
func (r *RoomRepo) UpdatePreview(ctx context.Context, roomID, content string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE chat_rooms SET last_message=$2, last_message_at=$3, updated_at=NOW() WHERE id=$1`, roomID, content, at)
	return err
}

// ListRoomsForUser returns the rooms the user belongs to, most recent activity
// first.
func (r *RoomRepo) ListRoomsForUser(ctx context.Context, userID string) ([]models.ChatRoom, error) {
	var rooms []models.ChatRoom
	err := r.db.SelectContext(ctx, &rooms, `SELECT r.id, r.name, r.type, r.description, r.avatar, r.last_message, r.last_message_at, r.created_at, r.updated_at
        FROM chat_rooms r
        INNER JOIN chat_room_members m ON m.chat_room_id = r.id
        WHERE m.user_id=$1
        ORDER BY r.last_message_at DESC NULLS LAST, r.created_at DESC`, userID)
	return rooms, err
}
