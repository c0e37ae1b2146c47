package queue

import (
	"context"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"chat-pipeline/internal/observability"
)

// ErrDeliveriesClosed reports that the broker closed the consume channel while
// the consumer was still supposed to run. Callers restart the consumer on it.
var ErrDeliveriesClosed = errors.New("deliveries channel closed")

// BatchHandler processes one batch of raw job payloads. A returned error
// triggers redelivery of the whole batch.
type BatchHandler interface {
	ProcessBatch(ctx context.Context, payloads [][]byte) error
}

// BatchConsumer drains the delivery queue in batches. Each consumer owns its
// channel and processes one batch at a time; concurrency comes from running
// several consumers.
type BatchConsumer struct {
	conn        *amqp.Connection
	topology    Topology
	handler     BatchHandler
	batchSize   int
	batchWindow time.Duration
	log         *zap.Logger
}

// NewBatchConsumer constructs a BatchConsumer on an established connection.
func NewBatchConsumer(conn *amqp.Connection, topology Topology, handler BatchHandler, batchSize int, batchWindow time.Duration, log *zap.Logger) *BatchConsumer {
	return &BatchConsumer{
		conn:        conn,
		topology:    topology,
		handler:     handler,
		batchSize:   batchSize,
		batchWindow: batchWindow,
		log:         log,
	}
}

// Run consumes until ctx is done or the channel closes.
func (c *BatchConsumer) Run(ctx context.Context) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := ch.Qos(c.batchSize, 0, false); err != nil {
		return err
	}

	deliveries, err := ch.Consume(c.topology.DeliveryQueue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	return c.drain(ctx, deliveries)
}

// drain loops over batches until shutdown or broker disconnect. A closed
// deliveries channel with a live context means the broker went away, which is
// distinct from an orderly shutdown and must not be swallowed.
func (c *BatchConsumer) drain(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		batch, ok := c.collectBatch(ctx, deliveries)
		if len(batch) > 0 {
			c.processBatch(ctx, batch)
		}
		if !ok {
			if err := ctx.Err(); err != nil {
				return err
			}
			return ErrDeliveriesClosed
		}
	}
}

// collectBatch gathers up to batchSize deliveries within the batching window.
// ok=false means the consumer should stop after handling what it has.
func (c *BatchConsumer) collectBatch(ctx context.Context, deliveries <-chan amqp.Delivery) ([]amqp.Delivery, bool) {
	var batch []amqp.Delivery

	timer := time.NewTimer(c.batchWindow)
	defer timer.Stop()

	for len(batch) < c.batchSize {
		select {
		case <-ctx.Done():
			return batch, false
		case d, open := <-deliveries:
			if !open {
				return batch, false
			}
			batch = append(batch, d)
		case <-timer.C:
			return batch, true
		}
	}
	return batch, true
}

// processBatch hands the payloads to the handler. On failure every delivery
// is nacked with requeue; the broker dead-letters a delivery once it exceeds
// the queue's delivery limit. Success acks each delivery.
func (c *BatchConsumer) processBatch(ctx context.Context, batch []amqp.Delivery) {
	payloads := make([][]byte, 0, len(batch))
	for _, d := range batch {
		payloads = append(payloads, d.Body)
	}

	if err := c.handler.ProcessBatch(ctx, payloads); err != nil {
		observability.IncBatchFailure()
		c.log.Warn("batch failed, requeueing", zap.Int("size", len(batch)), zap.Error(err))
		for _, d := range batch {
			if nackErr := d.Nack(false, true); nackErr != nil {
				c.log.Error("nack failed", zap.Uint64("tag", d.DeliveryTag), zap.Error(nackErr))
			}
		}
		return
	}

	observability.IncBatchProcessed(len(batch))
	for _, d := range batch {
		if ackErr := d.Ack(false); ackErr != nil {
			c.log.Error("ack failed", zap.Uint64("tag", d.DeliveryTag), zap.Error(ackErr))
		}
	}
}
