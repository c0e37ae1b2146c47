package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"chat-pipeline/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository defines interactions with the append-only message log.
type MessageRepository interface {
	InsertIfAbsent(ctx context.Context, msg models.Message) (bool, error)
	GetMessage(ctx context.Context, messageID string) (models.Message, error)
	ListRoomMessages(ctx context.Context, roomID string) ([]models.Message, error)
	CountUnread(ctx context.Context, roomID, userID string, since *time.Time) (int, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

const messageColumns = `id, chat_room_id, content, type, sender_id, sender_nickname, created_at, updated_at`

// InsertIfAbsent stores a message keyed by its queue-carried id. A duplicate
// delivery finds the row already present and reports inserted=false, which
// callers treat as success.
func (r *MessageRepo) InsertIfAbsent(ctx context.Context, msg models.Message) (bool, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO messages (id, chat_room_id, content, type, sender_id, sender_nickname, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
        ON CONFLICT (id) DO NOTHING`,
		msg.ID, msg.ChatRoomID, msg.Content, msg.Type, msg.SenderID, msg.SenderNickname, msg.CreatedAt)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// GetMessage retrieves a single message.
func (r *MessageRepo) GetMessage(ctx context.Context, messageID string) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `SELECT `+messageColumns+` FROM messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// ListRoomMessages returns the room's messages ordered by creation time. The
// queue gives no arrival-order guarantee; this sort is the pipeline's only
// ordering contract.
func (r *MessageRepo) ListRoomMessages(ctx context.Context, roomID string) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, `SELECT `+messageColumns+` FROM messages WHERE chat_room_id=$1 ORDER BY created_at ASC`, roomID)
	return msgs, err
}

// CountUnread counts messages in the room not authored by userID. With a read
// position, only messages after it count; without one, every foreign message
// counts.
func (r *MessageRepo) CountUnread(ctx context.Context, roomID, userID string, since *time.Time) (int, error) {
	var count int
	if since == nil {
		err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM messages WHERE chat_room_id=$1 AND sender_id<>$2`, roomID, userID)
		return count, err
	}
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM messages WHERE chat_room_id=$1 AND sender_id<>$2 AND created_at > $3`, roomID, userID, *since)
	return count, err
}
