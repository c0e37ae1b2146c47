package services

import (
	"context"

	"go.uber.org/zap"

	"chat-pipeline/internal/models"
	"chat-pipeline/internal/observability"
	"chat-pipeline/internal/queue"
)

// DeliveryStrategy submits a delivery job for durable processing. The queue
// path and the direct-write path both implement it, so the ingestion service
// composes them without knowing which one ran.
type DeliveryStrategy interface {
	Deliver(ctx context.Context, job models.DeliveryJob) error
}

// QueueDelivery is the primary path: publish and let the batch processor do
// the durable write.
type QueueDelivery struct {
	publisher queue.Publisher
}

// NewQueueDelivery constructs the queue-backed strategy.
func NewQueueDelivery(publisher queue.Publisher) *QueueDelivery {
	return &QueueDelivery{publisher: publisher}
}

func (q *QueueDelivery) Deliver(ctx context.Context, job models.DeliveryJob) error {
	return q.publisher.PublishJob(ctx, job)
}

// FallbackDelivery tries the primary strategy and degrades to the fallback,
// so an unreachable queue slows delivery down instead of dropping it.
type FallbackDelivery struct {
	primary  DeliveryStrategy
	fallback DeliveryStrategy
	log      *zap.Logger
}

// NewFallbackDelivery composes a primary and a fallback strategy.
func NewFallbackDelivery(primary, fallback DeliveryStrategy, log *zap.Logger) *FallbackDelivery {
	return &FallbackDelivery{primary: primary, fallback: fallback, log: log}
}

func (f *FallbackDelivery) Deliver(ctx context.Context, job models.DeliveryJob) error {
	err := f.primary.Deliver(ctx, job)
	if err == nil {
		return nil
	}

	observability.IncFallbackDelivery()
	f.log.Warn("primary delivery failed, falling back to direct write",
		zap.String("message_id", job.MessageID), zap.Error(err))
	return f.fallback.Deliver(ctx, job)
}
