package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"user-server/internal/mailer"
)

// EmailConsumer listens on the email queue and delivers messages through
// the configured sender.
type EmailConsumer struct {
	conn        *amqp091.Connection
	ch          *amqp091.Channel
	sender      mailer.EmailSender
	logger      *zap.Logger
	queueName   string
	consumerTag string
	done        chan error
}

// NewEmailConsumer creates a consumer bound to the durable email queue.
func NewEmailConsumer(conn *amqp091.Connection, sender mailer.EmailSender, queueName string, logger *zap.Logger) (*EmailConsumer, error) {
	if conn == nil {
		return nil, fmt.Errorf("RabbitMQ connection is nil")
	}
	if sender == nil {
		return nil, fmt.Errorf("EmailSender is nil")
	}

	consumerTag := fmt.Sprintf("email_consumer_%d", time.Now().UnixNano())

	consumer := &EmailConsumer{
		conn:        conn,
		sender:      sender,
		logger:      logger.Named("EmailConsumer").With(zap.String("consumerTag", consumerTag), zap.String("queue", queueName)),
		queueName:   queueName,
		consumerTag: consumerTag,
		done:        make(chan error),
	}

	if err := consumer.setupChannelAndQueue(); err != nil {
		return nil, fmt.Errorf("failed to setup channel and queue: %w", err)
	}

	consumer.logger.Info("EmailConsumer initialized")
	return consumer, nil
}

// setupChannelAndQueue opens a channel, declares the queue and sets QoS.
func (c *EmailConsumer) setupChannelAndQueue() error {
	var err error
	c.ch, err = c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = c.ch.QueueDeclare(
		c.queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		_ = c.ch.Close()
		return fmt.Errorf("failed to declare queue '%s': %w", c.queueName, err)
	}

	// One message at a time; email delivery is slow and ordering is not
	// worth losing to a big prefetch.
	if err = c.ch.Qos(1, 0, false); err != nil {
		_ = c.ch.Close()
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	return nil
}

// StartConsuming blocks until the consumer stops or the channel dies.
func (c *EmailConsumer) StartConsuming() error {
	if c.ch == nil {
		return fmt.Errorf("channel is not initialized")
	}
	c.logger.Info("Starting to consume email tasks")

	deliveries, err := c.ch.Consume(
		c.queueName,
		c.consumerTag,
		false, // auto-ack off, acknowledge manually
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		c.logger.Error("Failed to register consumer", zap.Error(err))
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	go c.handleDeliveries(deliveries)

	go func() {
		notifyClose := make(chan *amqp091.Error)
		c.ch.NotifyClose(notifyClose)
		select {
		case err := <-notifyClose:
			if err != nil {
				c.logger.Error("RabbitMQ channel closed unexpectedly", zap.Error(err))
				c.done <- err
			} else {
				c.logger.Info("RabbitMQ channel closed gracefully")
				c.done <- nil
			}
		case <-c.done:
			c.logger.Info("Received stop signal while waiting for channel close")
		}
	}()

	c.logger.Info("Consumer started, waiting for messages", zap.String("tag", c.consumerTag))
	return <-c.done
}

// handleDeliveries processes incoming email tasks.
func (c *EmailConsumer) handleDeliveries(deliveries <-chan amqp091.Delivery) {
	for d := range deliveries {
		log := c.logger.With(zap.Uint64("deliveryTag", d.DeliveryTag))

		var msg EmailMessage
		if err := json.Unmarshal(d.Body, &msg); err != nil {
			log.Warn("Received malformed email task, rejecting (Nack)", zap.Error(err))
			if nackErr := d.Nack(false, false); nackErr != nil { // do not requeue garbage
				log.Error("Failed to Nack malformed message", zap.Error(nackErr))
			}
			continue
		}

		log = log.With(zap.String("to", msg.To), zap.String("subject", msg.Subject))

		if err := c.sender.Send(msg.To, msg.Subject, msg.Body); err != nil {
			// Delivery failed; requeue so a transient SMTP outage does not
			// drop the message.
			log.Error("Email delivery failed, requeueing (Nack)", zap.Error(err))
			if nackErr := d.Nack(false, true); nackErr != nil {
				log.Error("Failed to Nack message after send failure", zap.Error(nackErr))
			}
			time.Sleep(1 * time.Second)
			continue
		}

		log.Info("Email task processed, acknowledging (Ack)")
		if ackErr := d.Ack(false); ackErr != nil {
			log.Error("Failed to Ack message", zap.Error(ackErr))
		}
	}
	c.logger.Info("Deliveries channel closed, message handling finished")
	select {
	case c.done <- nil:
	default:
	}
}

// Stop cancels the subscription and closes the channel.
func (c *EmailConsumer) Stop() error {
	if c.ch == nil {
		return nil
	}
	c.logger.Info("Stopping EmailConsumer")

	if err := c.ch.Cancel(c.consumerTag, false); err != nil {
		c.logger.Error("Failed to cancel consumer", zap.String("tag", c.consumerTag), zap.Error(err))
	}

	if err := c.ch.Close(); err != nil {
		c.logger.Error("Failed to close RabbitMQ channel", zap.Error(err))
	}

	select {
	case c.done <- nil:
	default:
	}

	c.logger.Info("EmailConsumer stopped")
	return nil
}
