// Package events publishes subscription lifecycle events to RabbitMQ for
// downstream billing and email workers. Publishing is best effort: callers
// log failures and never fail the originating request.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// Routing keys for subscription lifecycle events.
const (
	SubscriptionActivated = "subscription.activated"
	SubscriptionCancelled = "subscription.cancelled"
)

// SubscriptionEvent is the message body for lifecycle events.
type SubscriptionEvent struct {
	UserID         int64     `json:"user_id"`
	SubscriptionID int64     `json:"subscription_id"`
	PlanID         int64     `json:"plan_id"`
	EndDate        time.Time `json:"end_date"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Publisher owns an AMQP channel bound to a topic exchange.
type Publisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// Connect dials RabbitMQ and declares the topic exchange.
func Connect(url, exchange string) (*Publisher, error) {
	const op = "events.Connect"
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Publisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// Publish sends a persistent JSON message with the given routing key.
func (p *Publisher) Publish(routingKey string, message any) error {
	const op = "events.Publish"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = p.ch.Publish(
		p.exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
	if err := p.ch.Close(); err != nil {
		return err
	}
	return p.conn.Close()
}
