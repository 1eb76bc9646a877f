package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/streadway/amqp"
)

const activityQueue = "admin_activity"

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// Publisher sends admin activity events (catalog mutations, refunds, order
// cancellations) to a durable queue. Publishing is best-effort: the caller
// logs failures and moves on. A nil Publisher is valid and publishes nothing.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// Event is one admin activity record.
type Event struct {
	Action   string      `json:"action"`
	Entity   string      `json:"entity"`
	EntityID string      `json:"entity_id"`
	ActorID  string      `json:"actor_id,omitempty"`
	Detail   interface{} `json:"detail,omitempty"`
	At       time.Time   `json:"at"`
}

// NewPublisher connects to RabbitMQ and declares the activity queue.
func NewPublisher(cfg Config) (*Publisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		activityQueue, // name
		true,          // durable
		false,         // delete when unused
		false,         // exclusive
		false,         // no-wait
		nil,           // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s queue: %w", activityQueue, err)
	}

	return &Publisher{conn: conn, channel: ch}, nil
}

// Publish sends one activity event. Safe to call on a nil Publisher.
func (p *Publisher) Publish(ev Event) error {
	if p == nil || p.channel == nil {
		return nil
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal activity event: %w", err)
	}

	err = p.channel.Publish(
		"",            // exchange: default
		activityQueue, // routing key: the queue name
		false,         // mandatory
		false,         // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    ev.At,
		})
	if err != nil {
		return fmt.Errorf("failed to publish activity event: %w", err)
	}
	return nil
}

// Close closes the channel and connection. Safe to call on a nil Publisher.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing RabbitMQ publisher: %v", errs)
	}
	return nil
}
