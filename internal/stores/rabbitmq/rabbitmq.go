package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"shopcart/internal/cart"
	"shopcart/internal/stores/kafka"
)

const Queue = "cart-changes"

// Conf publishes cart changes to a durable RabbitMQ queue, using the same
// payload as the Kafka publisher.
type Conf struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

func NewConf(uri, queue string) (*Conf, error) {
	if queue == "" {
		queue = Queue
	}
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}
	q, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}
	return &Conf{conn: conn, ch: ch, queue: q.Name}, nil
}

func (r *Conf) Publish(ctx context.Context, change cart.Change) error {
	body, err := json.Marshal(kafka.NewCartChangedEvent(change))
	if err != nil {
		return fmt.Errorf("failed to marshal cart event: %w", err)
	}
	err = r.ch.PublishWithContext(ctx, "", r.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    change.ID,
		Timestamp:    change.At,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish cart event: %w", err)
	}
	return nil
}

func (r *Conf) Close() error {
	if err := r.ch.Close(); err != nil {
		r.conn.Close()
		return err
	}
	return r.conn.Close()
}
