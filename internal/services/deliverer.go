package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"chat-pipeline/internal/cache"
	"chat-pipeline/internal/models"
	"chat-pipeline/internal/observability"
	"chat-pipeline/internal/queue"
	"chat-pipeline/internal/repositories"
)

// RoutingKeyMessageStored is the notification routing key for durably stored
// messages.
const RoutingKeyMessageStored = "chat.message.stored"

// MessageStoredEvent is the change-notification envelope handed to external
// subscribers once a message is durable.
type MessageStoredEvent struct {
	MessageID string `json:"message_id"`
	RoomID    string `json:"room_id"`
	SenderID  string `json:"sender_id"`
	Duplicate bool   `json:"duplicate"`
}

// Deliverer performs the durable half of a message send: idempotent message
// write, room preview update, cache invalidation, change notification. The
// batch processor runs it per job; the ingestion fallback runs it inline.
type Deliverer struct {
	messages repositories.MessageRepository
	rooms    repositories.RoomRepository
	members  repositories.MemberRepository
	unread   *cache.UnreadCache
	events   queue.Publisher
	log      *zap.Logger
}

// NewDeliverer constructs a Deliverer.
func NewDeliverer(messages repositories.MessageRepository, rooms repositories.RoomRepository, members repositories.MemberRepository, unread *cache.UnreadCache, events queue.Publisher, log *zap.Logger) *Deliverer {
	return &Deliverer{
		messages: messages,
		rooms:    rooms,
		members:  members,
		unread:   unread,
		events:   events,
		log:      log,
	}
}

// Persist writes the job's message durably and updates the derived views.
// The insert is keyed on the queue-carried message id, so a redelivered job
// finds the row already present and degrades to a preview refresh.
func (d *Deliverer) Persist(ctx context.Context, job models.DeliveryJob) error {
	inserted, err := d.messages.InsertIfAbsent(ctx, job.Message())
	if err != nil {
		return fmt.Errorf("store message %s: %w", job.MessageID, err)
	}
	if !inserted {
		observability.IncDuplicateDelivery()
		d.log.Debug("duplicate delivery suppressed", zap.String("message_id", job.MessageID))
	}

	// Unconditional last-writer-wins: with a non-FIFO queue a slower batch can
	// overwrite the preview with an older message. Accepted; the next send
	// corrects it.
	if err := d.rooms.UpdatePreview(ctx, job.RoomID, job.Content, job.Timestamp); err != nil {
		return fmt.Errorf("update preview for room %s: %w", job.RoomID, err)
	}

	d.invalidateUnread(ctx, job)
	d.notify(ctx, job, !inserted)
	return nil
}

func (d *Deliverer) invalidateUnread(ctx context.Context, job models.DeliveryJob) {
	members, err := d.members.ListMembers(ctx, job.RoomID)
	if err != nil {
		d.log.Warn("unread invalidation skipped", zap.String("room_id", job.RoomID), zap.Error(err))
		return
	}
	userIDs := make([]string, 0, len(members))
	for _, m := range members {
		userIDs = append(userIDs, m.UserID)
	}
	d.unread.InvalidateRoom(ctx, job.RoomID, userIDs...)
}

func (d *Deliverer) notify(ctx context.Context, job models.DeliveryJob, duplicate bool) {
	event := MessageStoredEvent{
		MessageID: job.MessageID,
		RoomID:    job.RoomID,
		SenderID:  job.SenderID,
		Duplicate: duplicate,
	}
	// Best effort; the publisher logs failures and read models catch up later.
	_ = d.events.PublishEvent(ctx, RoutingKeyMessageStored, event)
}

// Deliver makes Deliverer usable as the fallback DeliveryStrategy: the
// synchronous direct write when the queue is unreachable. It performs the
// preview update itself because the batch processor will not see this job.
func (d *Deliverer) Deliver(ctx context.Context, job models.DeliveryJob) error {
	return d.Persist(ctx, job)
}
