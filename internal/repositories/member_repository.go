package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"chat-pipeline/internal/chaterr"
	"chat-pipeline/internal/models"
)

// MemberRepository abstracts room membership persistence.
type MemberRepository interface {
	CreateMember(ctx context.Context, member models.ChatRoomMember) error
	GetMembership(ctx context.Context, roomID, userID string) (models.ChatRoomMember, error)
	IsMember(ctx context.Context, roomID, userID string) (bool, error)
	UpdateReadPosition(ctx context.Context, roomID, userID string, lastMessageID *string, at time.Time) (models.ChatRoomMember, error)
	ListRoomIDsForUser(ctx context.Context, userID string) ([]string, error)
	ListMembers(ctx context.Context, roomID string) ([]models.ChatRoomMember, error)
}

// MemberRepo is a sqlx implementation of MemberRepository.
type MemberRepo struct {
	db *sqlx.DB
}

// NewMemberRepo constructs a MemberRepo.
func NewMemberRepo(db *sqlx.DB) *MemberRepo {
	return &MemberRepo{db: db}
}

const memberColumns = `id, chat_room_id, user_id, user_nickname, role, joined_at, last_read_message_id, last_read_at, created_at, updated_at`

// CreateMember inserts a membership row. A concurrent insert for the same
// (room, user) pair is absorbed silently; the pair stays unique either way.
func (r *MemberRepo) CreateMember(ctx context.Context, member models.ChatRoomMember) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO chat_room_members (id, chat_room_id, user_id, user_nickname, role, joined_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (chat_room_id, user_id) DO NOTHING`,
		member.ID, member.ChatRoomID, member.UserID, member.UserNickname, member.Role, member.JoinedAt)
	return err
}

// GetMembership locates the membership row for a (room, user) pair.
func (r *MemberRepo) GetMembership(ctx context.Context, roomID, userID string) (models.ChatRoomMember, error) {
	var member models.ChatRoomMember
	err := r.db.GetContext(ctx, &member, `SELECT `+memberColumns+` FROM chat_room_members WHERE chat_room_id=$1 AND user_id=$2`, roomID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ChatRoomMember{}, chaterr.ErrMembershipNotFound
	}
	return member, err
}

// IsMember checks whether a user belongs to the room.
func (r *MemberRepo) IsMember(ctx context.Context, roomID, userID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM chat_room_members WHERE chat_room_id=$1 AND user_id=$2)`, roomID, userID)
	return exists, err
}

// UpdateReadPosition advances the member's read position. The read tracker is
// the sole caller of this mutation.
func (r *MemberRepo) UpdateReadPosition(ctx context.Context, roomID, userID string, lastMessageID *string, at time.Time) (models.ChatRoomMember, error) {
	var member models.ChatRoomMember
	err := r.db.QueryRowxContext(ctx, `UPDATE chat_room_members
        SET last_read_at=$3, last_read_message_id=COALESCE($4, last_read_message_id), updated_at=NOW()
        WHERE chat_room_id=$1 AND user_id=$2
        RETURNING `+memberColumns,
		roomID, userID, at, lastMessageID).StructScan(&member)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ChatRoomMember{}, chaterr.ErrMembershipNotFound
	}
	return member, err
}

// ListRoomIDsForUser returns the ids of every room the user belongs to.
func (r *MemberRepo) ListRoomIDsForUser(ctx context.Context, userID string) ([]string, error) {
	var roomIDs []string
	err := r.db.SelectContext(ctx, &roomIDs, `SELECT chat_room_id FROM chat_room_members WHERE user_id=$1`, userID)
	return roomIDs, err
}

// ListMembers returns every membership row of a room.
func (r *MemberRepo) ListMembers(ctx context.Context, roomID string) ([]models.ChatRoomMember, error) {
	var members []models.ChatRoomMember
	err := r.db.SelectContext(ctx, &members, `SELECT `+memberColumns+` FROM chat_room_members WHERE chat_room_id=$1 ORDER BY joined_at ASC`, roomID)
	return members, err
}
