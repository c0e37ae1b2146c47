package services

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"chat-pipeline/internal/chaterr"
	"chat-pipeline/internal/models"
)

type jobHandler func(ctx context.Context, job models.DeliveryJob) error

// Processor is the batch consumer's handler. Jobs are routed through a
// dispatch table keyed on the op field, resolved at construction.
type Processor struct {
	handlers map[string]jobHandler
	log      *zap.Logger
}

// NewProcessor constructs a Processor over the deliverer.
func NewProcessor(deliverer *Deliverer, log *zap.Logger) *Processor {
	return &Processor{
		handlers: map[string]jobHandler{
			models.OpDeliverMessage: deliverer.Persist,
		},
		log: log,
	}
}

// ProcessBatch handles jobs sequentially and halts on the first failure, so
// the whole batch is redelivered and the idempotent write absorbs the jobs
// that already landed. A job that keeps failing drags its batch to the
// dead-letter queue once the broker's delivery limit is exhausted.
func (p *Processor) ProcessBatch(ctx context.Context, payloads [][]byte) error {
	for i, payload := range payloads {
		job, err := p.parseJob(payload)
		if err != nil {
			return fmt.Errorf("job %d: %w", i, err)
		}

		handler, ok := p.handlers[job.Op]
		if !ok {
			return fmt.Errorf("job %d: unknown op %q", i, job.Op)
		}

		if err := handler(ctx, job); err != nil {
			p.log.Warn("job failed, halting batch",
				zap.Int("index", i), zap.String("message_id", job.MessageID), zap.Error(err))
			return fmt.Errorf("job %d (%s): %w", i, job.MessageID, err)
		}
	}
	return nil
}

func (p *Processor) parseJob(payload []byte) (models.DeliveryJob, error) {
	var job models.DeliveryJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return models.DeliveryJob{}, fmt.Errorf("malformed payload: %w", err)
	}
	if err := validateJob(job); err != nil {
		return models.DeliveryJob{}, err
	}
	return job, nil
}

func validateJob(job models.DeliveryJob) error {
	switch {
	case job.MessageID == "":
		return chaterr.Validation("messageId", "must not be empty")
	case job.RoomID == "":
		return chaterr.Validation("roomId", "must not be empty")
	case job.Content == "":
		return chaterr.Validation("content", "must not be empty")
	case job.SenderID == "":
		return chaterr.Validation("senderId", "must not be empty")
	case job.SenderNickname == "":
		return chaterr.Validation("senderNickname", "must not be empty")
	case job.Timestamp.IsZero():
		return chaterr.Validation("timestamp", "must be set")
	}
	return nil
}
