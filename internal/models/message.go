package models

import "time"

// MessageTypeText is the default message type when the client omits one.
const MessageTypeText = "text"

// Message is immutable once written. The id is generated by the ingestion
// service and carried through the queue, so redelivered jobs collapse onto the
// same row.
type Message struct {
	ID             string    `db:"id" json:"id"`
	ChatRoomID     string    `db:"chat_room_id" json:"chat_room_id"`
	Content        string    `db:"content" json:"content"`
	Type           string    `db:"type" json:"type"`
	SenderID       string    `db:"sender_id" json:"sender_id"`
	SenderNickname string    `db:"sender_nickname" json:"sender_nickname"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// MessageReadStatus marks that a user has seen a specific message in a group
// room. Rows are inserted at most once per (message, user) pair and never
// updated.
type MessageReadStatus struct {
	ID        string    `db:"id" json:"id"`
	MessageID string    `db:"message_id" json:"message_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	ReadAt    time.Time `db:"read_at" json:"read_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
