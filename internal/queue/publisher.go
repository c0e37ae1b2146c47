package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"chat-pipeline/internal/chaterr"
	"chat-pipeline/internal/models"
	"chat-pipeline/internal/observability"
)

// Publisher publishes delivery jobs and change-notification events.
type Publisher interface {
	PublishJob(ctx context.Context, job models.DeliveryJob) error
	PublishEvent(ctx context.Context, routingKey string, event any) error
	Close() error
}

// AMQPPublisher is the broker-backed Publisher.
type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	topology Topology
	log      *zap.Logger
}

// Dial connects to the broker with bounded retries and declares the topology.
func Dial(url string, topology Topology, attempts int, delay time.Duration, log *zap.Logger) (*AMQPPublisher, error) {
	conn, err := connectWithRetry(url, attempts, delay, log)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := Declare(ch, topology); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	return &AMQPPublisher{conn: conn, ch: ch, topology: topology, log: log}, nil
}

func connectWithRetry(url string, attempts int, delay time.Duration, log *zap.Logger) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			log.Info("amqp connected", zap.Int("attempt", attempt))
			return conn, nil
		}
		log.Warn("amqp connect failed", zap.Int("attempt", attempt), zap.Error(err))
		time.Sleep(delay)
	}
	return nil, fmt.Errorf("amqp connect after %d attempts: %w", attempts, err)
}

// PublishJob enqueues one delivery job on the delivery exchange. A broker
// error is reported as ErrQueueUnavailable so the ingestion service can fall
// back to a direct write.
func (p *AMQPPublisher) PublishJob(ctx context.Context, job models.DeliveryJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}

	err = p.ch.PublishWithContext(ctx, p.topology.DeliveryExchange, p.topology.DeliveryQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    job.MessageID,
		Timestamp:    job.Timestamp,
		Body:         body,
	})
	if err != nil {
		observability.IncPublishError()
		p.log.Warn("job publish failed", zap.String("message_id", job.MessageID), zap.Error(err))
		return fmt.Errorf("%w: %v", chaterr.ErrQueueUnavailable, err)
	}
	observability.IncJobPublished()
	return nil
}

// PublishEvent emits a change-notification event for external subscribers.
// Best effort: read models catch up on the next poll if an event is lost.
func (p *AMQPPublisher) PublishEvent(ctx context.Context, routingKey string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = p.ch.PublishWithContext(ctx, p.topology.NotificationExchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		observability.IncPublishError()
		p.log.Warn("event publish failed", zap.String("routing_key", routingKey), zap.Error(err))
	}
	return err
}

// Connection exposes the underlying broker connection so batch consumers can
// open their own channels on it.
func (p *AMQPPublisher) Connection() *amqp.Connection {
	return p.conn
}

// Close releases the channel and connection.
func (p *AMQPPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
