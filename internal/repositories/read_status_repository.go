package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"chat-pipeline/internal/models"
)

// ReadStatusRepository records per-message read receipts for group rooms.
type ReadStatusRepository interface {
	InsertOnce(ctx context.Context, status models.MessageReadStatus) error
}

// ReadStatusRepo is a sqlx implementation of ReadStatusRepository.
type ReadStatusRepo struct {
	db *sqlx.DB
}

// NewReadStatusRepo constructs a ReadStatusRepo.
func NewReadStatusRepo(db *sqlx.DB) *ReadStatusRepo {
	return &ReadStatusRepo{db: db}
}

// InsertOnce creates the (message, user) receipt if it does not exist yet.
// Receipts are never updated, so marking the same message twice is a no-op.
func (r *ReadStatusRepo) InsertOnce(ctx context.Context, status models.MessageReadStatus) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO message_read_statuses (id, message_id, user_id, read_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (message_id, user_id) DO NOTHING`,
		status.ID, status.MessageID, status.UserID, status.ReadAt)
	return err
}
