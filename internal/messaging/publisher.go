package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"cafepos/internal/logger"
)

// Publisher pushes kitchen events to the fanout exchange.
type Publisher struct {
	conn   *Connection
	logger *logger.Logger
}

// NewPublisher creates a new message publisher
func NewPublisher(conn *Connection, log *logger.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: log,
	}
}

// Publish serializes the event as JSON and publishes it to the kitchen
// fanout exchange. Kitchen events are display refresh hints, so they are
// published transient.
func (p *Publisher) Publish(ctx context.Context, event interface{}) error {
	if p.conn.IsClosed() {
		if err := p.conn.Reconnect(); err != nil {
			return fmt.Errorf("failed to reconnect: %w", err)
		}
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	publishing := amqp091.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: 1, // transient
		Timestamp:    time.Now(),
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err = p.conn.Channel().PublishWithContext(
		ctx,
		KitchenExchange, // exchange
		"",              // routing key (ignored for fanout)
		false,           // mandatory
		false,           // immediate
		publishing,
	)

	if err != nil {
		p.logger.Error("event_publish_failed",
			fmt.Sprintf("Failed to publish event to exchange %s", KitchenExchange),
			"", err, map[string]interface{}{
				"exchange": KitchenExchange,
			})
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("event_published",
		fmt.Sprintf("Published event to exchange %s", KitchenExchange),
		"", map[string]interface{}{
			"exchange":   KitchenExchange,
			"event_size": len(body),
		})

	return nil
}

// Close closes the publisher
func (p *Publisher) Close() error {
	return p.conn.Close()
}
