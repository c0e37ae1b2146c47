package models

import (
	"database/sql"
	"time"
)

// Room types.
const (
	RoomTypePrivate = "private"
	RoomTypeGroup   = "group"
)

// Member roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// ChatRoom is a conversation context. Private rooms carry a deterministic id
// derived from the two participant identities; group room ids are random.
// The preview fields (LastMessage, LastMessageAt) are maintained by the batch
// processor with last-writer-wins semantics.
type ChatRoom struct {
	ID            string         `db:"id" json:"id"`
	Name          string         `db:"name" json:"name"`
	Type          string         `db:"type" json:"type"`
	Description   sql.NullString `db:"description" json:"-"`
	Avatar        sql.NullString `db:"avatar" json:"-"`
	LastMessage   sql.NullString `db:"last_message" json:"-"`
	LastMessageAt sql.NullTime   `db:"last_message_at" json:"-"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// RoomSummary is the API view of a room in a user's room list.
type RoomSummary struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Type          string     `json:"type"`
	LastMessage   string     `json:"last_message,omitempty"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
}

// Summary converts a room row into its API view.
func (r ChatRoom) Summary() RoomSummary {
	s := RoomSummary{ID: r.ID, Name: r.Name, Type: r.Type}
	if r.LastMessage.Valid {
		s.LastMessage = r.LastMessage.String
	}
	if r.LastMessageAt.Valid {
		t := r.LastMessageAt.Time
		s.LastMessageAt = &t
	}
	return s
}

// ChatRoomMember binds one user to one room. The (ChatRoomID, UserID) pair is
// unique; the read position fields are written only by the read tracker.
type ChatRoomMember struct {
	ID                string         `db:"id" json:"id"`
	ChatRoomID        string         `db:"chat_room_id" json:"chat_room_id"`
	UserID            string         `db:"user_id" json:"user_id"`
	UserNickname      string         `db:"user_nickname" json:"user_nickname"`
	Role              string         `db:"role" json:"role"`
	JoinedAt          time.Time      `db:"joined_at" json:"joined_at"`
	LastReadMessageID sql.NullString `db:"last_read_message_id" json:"-"`
	LastReadAt        sql.NullTime   `db:"last_read_at" json:"-"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}
