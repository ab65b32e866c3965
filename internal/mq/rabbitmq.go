package mq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kanak-sys/ToDo-App/config"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitBackend maps each channel onto a fanout exchange of the same name.
// Every queue bound to it gets its own copy of an event.
type RabbitBackend struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	cfg  config.RabbitMQConfig
}

func NewRabbitBackend(cfg config.RabbitMQConfig) (*RabbitBackend, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("rabbitmq url is required")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}
	b := &RabbitBackend{conn: conn, ch: ch, cfg: cfg}

	if cfg.PrefetchCount > 0 {
		if err := ch.Qos(cfg.PrefetchCount, 0, false); err != nil {
			b.Close()
			return nil, fmt.Errorf("set rabbitmq prefetch: %w", err)
		}
	}
	return b, nil
}

// Publish sends one persistent message and returns its id.
func (b *RabbitBackend) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if err := b.exchange(channel); err != nil {
		return "", err
	}

	msg := amqp.Publishing{
		MessageId:    uuid.NewString(),
		ContentType:  contentType(attrs),
		Type:         attrs["type"],
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Headers:      toTable(attrs),
		Body:         data,
	}
	if err := b.ch.PublishWithContext(ctx, channel, "", false, false, msg); err != nil {
		return "", fmt.Errorf("publish to %s: %w", channel, err)
	}
	return msg.MessageId, nil
}

// Subscribe consumes from the "<channel>.consumer" queue until ctx is done.
// A handler error requeues the delivery.
func (b *RabbitBackend) Subscribe(ctx context.Context, channel string, handler Handler) error {
	if err := b.exchange(channel); err != nil {
		return err
	}

	queue, err := b.ch.QueueDeclare(channel+".consumer", b.cfg.QueueDurable, b.cfg.QueueAutoDelete, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := b.ch.QueueBind(queue.Name, "", channel, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	tag := channel + "-" + uuid.NewString()
	deliveries, err := b.ch.Consume(queue.Name, tag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", queue.Name, err)
	}
	defer b.ch.Cancel(tag, false)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("rabbitmq delivery channel closed")
			}
			b.dispatch(ctx, d, handler)
		}
	}
}

func (b *RabbitBackend) dispatch(ctx context.Context, d amqp.Delivery, handler Handler) {
	err := handler(ctx, Message{ID: d.MessageId, Data: d.Body, Attributes: fromTable(d.Headers)})
	if err != nil {
		_ = d.Nack(false, true)
		return
	}
	_ = d.Ack(false)
}

func (b *RabbitBackend) Close() error {
	if b.ch != nil {
		_ = b.ch.Close()
	}
	if b.conn == nil {
		return nil
	}
	return b.conn.Close()
}

func (b *RabbitBackend) exchange(channel string) error {
	if strings.TrimSpace(channel) == "" {
		return errors.New("rabbitmq channel is required")
	}
	return b.ch.ExchangeDeclare(channel, amqp.ExchangeFanout, true, false, false, false, nil)
}

func toTable(attrs map[string]string) amqp.Table {
	table := make(amqp.Table, len(attrs))
	for k, v := range attrs {
		table[k] = v
	}
	return table
}

func fromTable(table amqp.Table) map[string]string {
	if len(table) == 0 {
		return nil
	}
	attrs := make(map[string]string, len(table))
	for k, v := range table {
		if b, ok := v.([]byte); ok {
			attrs[k] = string(b)
			continue
		}
		attrs[k] = fmt.Sprint(v)
	}
	return attrs
}

// contentType defaults to octet-stream when attrs carries none.
func contentType(attrs map[string]string) string {
	if ct := strings.TrimSpace(attrs["content-type"]); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
