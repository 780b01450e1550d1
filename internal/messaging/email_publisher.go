package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// EmailPublisher enqueues email tasks for asynchronous delivery.
type EmailPublisher interface {
	PublishEmail(ctx context.Context, msg EmailMessage) error
}

// Compile-time check to ensure RabbitEmailPublisher implements EmailPublisher
var _ EmailPublisher = (*RabbitEmailPublisher)(nil)

// RabbitEmailPublisher publishes email tasks onto a durable RabbitMQ queue.
type RabbitEmailPublisher struct {
	ch        *amqp091.Channel
	queueName string
	logger    *zap.Logger
}

// NewRabbitEmailPublisher opens a channel, declares the durable queue and
// returns a publisher bound to it.
func NewRabbitEmailPublisher(conn *amqp091.Connection, queueName string, logger *zap.Logger) (*RabbitEmailPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("RabbitMQ connection is nil")
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to declare queue '%s': %w", queueName, err)
	}

	return &RabbitEmailPublisher{
		ch:        ch,
		queueName: queueName,
		logger:    logger.Named("EmailPublisher").With(zap.String("queue", queueName)),
	}, nil
}

// PublishEmail enqueues the message as persistent JSON.
func (p *RabbitEmailPublisher) PublishEmail(ctx context.Context, msg EmailMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		p.logger.Error("Failed to marshal email message", zap.Error(err))
		return fmt.Errorf("failed to marshal email message: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		"",          // exchange (default)
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		p.logger.Error("Failed to publish email message", zap.Error(err), zap.String("to", msg.To))
		return fmt.Errorf("failed to publish email message: %w", err)
	}

	p.logger.Debug("Email task published", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

// Close releases the channel.
func (p *RabbitEmailPublisher) Close() error {
	if p.ch == nil {
		return nil
	}
	return p.ch.Close()
}
