// Package rmq publishes assignment lifecycle events to RabbitMQ. Events are
// best-effort integration signals; a publish failure is logged by the caller
// and never rolls back the state change that produced it.
package rmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	exchangeName    = "dispatch.assignments"
	connectAttempts = 5
)

// assignmentChangedMessage is the wire shape of an assignment lifecycle event.
type assignmentChangedMessage struct {
	AssignmentID string    `json:"assignment_id"`
	OrderID      string    `json:"order_id"`
	Provider     string    `json:"provider"`
	Status       string    `json:"status"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Publisher implements EventPublisher over a RabbitMQ topic exchange. Routing
// keys follow "assignment.<status>" so consumers can bind to the transitions
// they care about.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *slog.Logger
}

// NewPublisher dials RabbitMQ with exponential backoff and declares the
// assignment exchange.
func NewPublisher(url string, logger *slog.Logger) (*Publisher, error) {
	if url == "" {
		return nil, errs.NewValueIsRequiredError("url")
	}

	var conn *amqp.Connection
	var err error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		logger.Warn("rabbitmq connect attempt failed",
			"attempt", attempt, "error", err)
		time.Sleep(time.Second * time.Duration(math.Pow(2, float64(attempt))))
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to rabbitmq after %d attempts: %w", connectAttempts, err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("opening rabbitmq channel: %w", err)
	}

	if err = channel.ExchangeDeclare(
		exchangeName,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declaring exchange %s: %w", exchangeName, err)
	}

	return &Publisher{
		conn:    conn,
		channel: channel,
		logger:  logger,
	}, nil
}

// PublishAssignmentChanged emits an assignment lifecycle event.
func (p *Publisher) PublishAssignmentChanged(ctx context.Context, event ports.AssignmentEvent) error {
	message := assignmentChangedMessage{
		AssignmentID: event.AssignmentID.String(),
		OrderID:      event.OrderID.String(),
		Provider:     event.Provider.String(),
		Status:       event.Status.String(),
		OccurredAt:   event.OccurredAt,
	}

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshaling assignment event: %w", err)
	}

	routingKey := "assignment." + event.Status.String()
	if err = p.channel.PublishWithContext(
		ctx,
		exchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   event.OccurredAt,
			Body:        body,
		},
	); err != nil {
		return fmt.Errorf("publishing assignment event: %w", err)
	}

	p.logger.Debug("assignment event published",
		"routing_key", routingKey,
		"assignment_id", message.AssignmentID)
	return nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
	if p.channel != nil {
		_ = p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		err := p.conn.Close()
		p.conn = nil
		return err
	}
	return nil
}
