// Package broadcast announces committed ticket purchases to downstream
// consumers: a RabbitMQ queue for back-office workers and PubNub channels for
// live dashboards.
package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/phillip/nft-ticketing-go/models"
)

type publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQ struct {
	conn    *amqp.Connection
	channel publisher
	closer  func() error
	queue   string
}

// DialRabbitMQ connects, opens a channel and declares the durable queue
// purchases are published to.
func DialRabbitMQ(url, queue string) (*RabbitMQ, error) {
	slog.Info("connecting to rabbitmq", "queue", queue)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}

	slog.Info("connected to rabbitmq", "queue", queue)
	return &RabbitMQ{conn: conn, channel: ch, closer: ch.Close, queue: queue}, nil
}

func (r *RabbitMQ) TicketPurchased(ctx context.Context, msg models.TicketPurchased) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode purchase: %w", err)
	}

	return r.channel.Publish("", r.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.TicketID,
		Type:         "ticket.purchased",
		Timestamp:    msg.PurchaseDate,
		Body:         body,
	})
}

func (r *RabbitMQ) Close() error {
	var errs []error
	if r.closer != nil {
		errs = append(errs, r.closer())
	}
	if r.conn != nil {
		errs = append(errs, r.conn.Close())
	}
	return errors.Join(errs...)
}
