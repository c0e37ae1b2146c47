package queue

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

// Topology names the broker resources of the delivery pipeline.
type Topology struct {
	DeliveryExchange     string
	DeliveryQueue        string
	DeadLetterExchange   string
	DeadLetterQueue      string
	NotificationExchange string
	// DeliveryLimit bounds how often the broker redelivers a job before
	// dead-lettering it.
	DeliveryLimit int
}

// Declare sets up exchanges, the delivery queue, and the dead-letter path.
// The delivery queue is a quorum queue: its x-delivery-limit gives the bounded
// redelivery count, and the dead-letter exchange routes exhausted jobs to the
// dead queue for manual inspection. Unacked deliveries returning to the queue
// on consumer failure are the visibility-timeout equivalent.
func Declare(ch *amqp.Channel, t Topology) error {
	if err := ch.ExchangeDeclare(t.DeliveryExchange, "direct", true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.ExchangeDeclare(t.DeadLetterExchange, "direct", true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.ExchangeDeclare(t.NotificationExchange, "topic", true, false, false, false, nil); err != nil {
		return err
	}

	if _, err := ch.QueueDeclare(t.DeadLetterQueue, true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.QueueBind(t.DeadLetterQueue, t.DeliveryQueue, t.DeadLetterExchange, false, nil); err != nil {
		return err
	}

	args := amqp.Table{
		"x-queue-type":              "quorum",
		"x-delivery-limit":          int32(t.DeliveryLimit),
		"x-dead-letter-exchange":    t.DeadLetterExchange,
		"x-dead-letter-routing-key": t.DeliveryQueue,
	}
	if _, err := ch.QueueDeclare(t.DeliveryQueue, true, false, false, false, args); err != nil {
		return err
	}
	return ch.QueueBind(t.DeliveryQueue, t.DeliveryQueue, t.DeliveryExchange, false, nil)
}
