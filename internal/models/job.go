package models

import "time"

// Delivery job operations. The consumer routes jobs through a dispatch table
// keyed on Op; anything outside this enum is a permanent failure.
const (
	OpDeliverMessage = "message.deliver"
)

// DeliveryJob is the queue payload for one message send. It carries the
// pre-generated message id so that redelivered jobs stay idempotent.
type DeliveryJob struct {
	Op             string    `json:"op"`
	MessageID      string    `json:"messageId"`
	RoomID         string    `json:"roomId"`
	Content        string    `json:"content"`
	Type           string    `json:"type"`
	SenderID       string    `json:"senderId"`
	SenderNickname string    `json:"senderNickname"`
	Timestamp      time.Time `json:"timestamp"`
}

// Message materializes the durable record this job describes.
func (j DeliveryJob) Message() Message {
	return Message{
		ID:             j.MessageID,
		ChatRoomID:     j.RoomID,
		Content:        j.Content,
		Type:           j.Type,
		SenderID:       j.SenderID,
		SenderNickname: j.SenderNickname,
		CreatedAt:      j.Timestamp,
		UpdatedAt:      j.Timestamp,
	}
}
