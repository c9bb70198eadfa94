package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/theirongolddev/mobius/internal/log"
)

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// AMQP publishes events as persistent JSON messages on a direct exchange.
type AMQP struct {
	conn     *amqp091.Connection
	channel  amqpChannel
	exchange string
	queue    string
	logger   *log.Logger
}

// NewAMQP dials url and declares the exchange, queue and binding.
func NewAMQP(url, exchange, queue string) (*AMQP, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declare(ch, exchange, queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return &AMQP{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		queue:    queue,
		logger:   log.For(log.ComponentNotify).With("sink", "amqp"),
	}, nil
}

func declare(ch *amqp091.Channel, exchange, queue string) error {
	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	// Routing key is the queue name on a direct exchange.
	if err := ch.QueueBind(queue, queue, exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// Notify publishes ev.
func (a *AMQP) Notify(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = a.channel.PublishWithContext(ctx, a.exchange, a.queue, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    ev.Timestamp,
		Type:         ev.Type,
		MessageId:    fmt.Sprintf("%d", ev.ID),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish event %d: %w", ev.ID, err)
	}

	a.logger.DebugContext(ctx, "published event", "event_id", ev.ID, "type", ev.Type, "exchange", a.exchange)
	return nil
}

// Close closes the channel and connection.
func (a *AMQP) Close() error {
	if a.channel != nil {
		_ = a.channel.Close()
	}
	if a.conn != nil {
		return a.conn.Close()
	}
	return nil
}
