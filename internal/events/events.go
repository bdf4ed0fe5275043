// Package events publishes domain change notifications to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Event describes one committed change.
type Event struct {
	Type         string    `json:"type"` // e.g. project.deleted
	ResourceType string    `json:"resource_type"`
	ResourceID   int       `json:"resource_id"`
	ActorID      int       `json:"actor_id"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// New builds an Event typed as the resource plus the past tense of action,
// so ("project", "delete") becomes "project.deleted".
func New(resourceType, action string, resourceID, actorID int) Event {
	return Event{
		Type:         resourceType + "." + pastTense(action),
		ResourceType: resourceType,
		ResourceID:   resourceID,
		ActorID:      actorID,
		OccurredAt:   time.Now().UTC(),
	}
}

func pastTense(action string) string {
	switch action {
	case "create", "update", "delete":
		return action + "d"
	case "upload":
		return "uploaded"
	default:
		return action
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// AMQPPublisher dials the broker for every publish and sends persistent JSON
// messages to a durable queue on the default exchange.
type AMQPPublisher struct {
	URL    string
	Queue  string
	Logger *slog.Logger
}

func NewAMQPPublisher(url, queue string, logger *slog.Logger) *AMQPPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &AMQPPublisher{URL: url, Queue: queue, Logger: logger}
}

func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := amqp.DialConfig(p.URL, amqp.Config{Dial: amqp.DefaultDial(5 * time.Second)})
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	err = ch.PublishWithContext(ctx, "", p.Queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    e.OccurredAt,
		Type:         e.Type,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	p.Logger.Debug("event published", "type", e.Type, "resource_id", e.ResourceID)
	return nil
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
