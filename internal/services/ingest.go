package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chat-pipeline/internal/chaterr"
	"chat-pipeline/internal/models"
	"chat-pipeline/internal/repositories"
)

// SendMessageInput is the ingestion contract for one message send.
type SendMessageInput struct {
	RoomID         string
	Content        string
	SenderID       string
	SenderNickname string
	Type           string
}

// IngestService validates a send request, confirms membership, and hands the
// job to the delivery strategy. It never writes the message itself on the
// primary path; the returned Message is a provisional acknowledgment.
type IngestService struct {
	members  repositories.MemberRepository
	delivery DeliveryStrategy
	log      *zap.Logger
}

// NewIngestService constructs an IngestService.
func NewIngestService(members repositories.MemberRepository, delivery DeliveryStrategy, log *zap.Logger) *IngestService {
	return &IngestService{members: members, delivery: delivery, log: log}
}

// SendMessage accepts a send request and returns the provisional message with
// its pre-generated id. Durable storage may complete after return.
func (s *IngestService) SendMessage(ctx context.Context, in SendMessageInput) (models.Message, error) {
	if err := validateSend(in); err != nil {
		return models.Message{}, err
	}

	member, err := s.members.IsMember(ctx, in.RoomID, in.SenderID)
	if err != nil {
		return models.Message{}, fmt.Errorf("membership check: %w", err)
	}
	if !member {
		return models.Message{}, chaterr.ErrNotAMember
	}

	msgType := in.Type
	if msgType == "" {
		msgType = models.MessageTypeText
	}

	job := models.DeliveryJob{
		Op:             models.OpDeliverMessage,
		MessageID:      uuid.NewString(),
		RoomID:         in.RoomID,
		Content:        in.Content,
		Type:           msgType,
		SenderID:       in.SenderID,
		SenderNickname: in.SenderNickname,
		Timestamp:      time.Now().UTC(),
	}

	if err := s.delivery.Deliver(ctx, job); err != nil {
		return models.Message{}, err
	}

	s.log.Debug("message accepted",
		zap.String("message_id", job.MessageID), zap.String("room_id", job.RoomID))
	return job.Message(), nil
}

func validateSend(in SendMessageInput) error {
	if strings.TrimSpace(in.RoomID) == "" {
		return chaterr.Validation("roomId", "must not be empty")
	}
	if strings.TrimSpace(in.Content) == "" {
		return chaterr.Validation("content", "must not be empty")
	}
	if strings.TrimSpace(in.SenderID) == "" {
		return chaterr.Validation("senderId", "must not be empty")
	}
	if strings.TrimSpace(in.SenderNickname) == "" {
		return chaterr.Validation("senderNickname", "must not be empty")
	}
	return nil
}
