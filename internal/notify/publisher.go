// Package notify publishes executed planned payments to RabbitMQ.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/MrJamesThe3rd/pennywise/internal/planned"
)

const publishTimeout = 5 * time.Second

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher implements planned.Notifier over a durable direct exchange.
type Publisher struct {
	conn     *amqp091.Connection
	ch       channel
	exchange string
	queue    string
	now      func() time.Time
}

var _ planned.Notifier = (*Publisher)(nil)

func NewPublisher(url, exchange, queue string) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dialing amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening channel: %w", err)
	}

	if err := declare(ch, exchange, queue); err != nil {
		ch.Close()
		conn.Close()

		return nil, err
	}

	return &Publisher{conn: conn, ch: ch, exchange: exchange, queue: queue, now: time.Now}, nil
}

// declare sets up the exchange and a queue bound to it with the queue name as routing key.
func declare(ch *amqp091.Channel, exchange, queue string) error {
	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declaring exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declaring queue: %w", err)
	}

	if err := ch.QueueBind(queue, queue, exchange, false, nil); err != nil {
		return fmt.Errorf("binding queue: %w", err)
	}

	return nil
}

func (p *Publisher) PaymentExecuted(ctx context.Context, e planned.Execution) error {
	msg := NewExecutedMessage(e)

	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.ch.PublishWithContext(ctx, p.exchange, p.queue, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    p.now(),
		MessageId:    msg.TransactionID.String(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publishing executed payment: %w", err)
	}

	slog.DebugContext(ctx, "published executed planned payment",
		"planned_payment_id", msg.PlannedPaymentID,
		"transaction_id", msg.TransactionID,
		"exchange", p.exchange)

	return nil
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		p.ch.Close()
	}

	if p.conn != nil {
		return p.conn.Close()
	}

	return nil
}
