package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	ExchangeName = "downtimebot"

	RoutingDowntimeChanged = "downtime.changed"
	RoutingPanelsRefresh   = "panels.refresh"

	QueuePanelsRefresh = "downtimebot.panels_refresh"
)

// DowntimeChangedMsg is published by the bot after every applied mutation.
// Start and End are epoch seconds, nil when the window was cleared.
type DowntimeChangedMsg struct {
	GuildID int64     `json:"guild_id"`
	Action  string    `json:"action"`
	Start   *int64    `json:"start"`
	End     *int64    `json:"end"`
	Title   *string   `json:"title"`
	At      time.Time `json:"at"`
}

// RefreshRequestMsg asks the bot to re-render panels. GuildID 0 means all
// guilds; Events selects event panels instead of status panels.
type RefreshRequestMsg struct {
	GuildID int64 `json:"guild_id"`
	Events  bool  `json:"events"`
}

// binding routes one key of the exchange into one durable queue. Only queues
// the bot consumes are declared here; downtime.changed subscribers bind their
// own.
type binding struct {
	queue string
	key   string
}

var bindings = []binding{
	{QueuePanelsRefresh, RoutingPanelsRefresh},
}

// SetupTopology declares the topic exchange and binds every queue to it.
// All declarations are idempotent.
func SetupTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(ExchangeName, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", ExchangeName, err)
	}
	for _, b := range bindings {
		if _, err := ch.QueueDeclare(b.queue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", b.queue, err)
		}
		if err := ch.QueueBind(b.queue, b.key, ExchangeName, false, nil); err != nil {
			return fmt.Errorf("bind %s to %s: %w", b.queue, b.key, err)
		}
	}
	return nil
}

// link is an open connection with its channel.
type link struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func (l link) Close() {
	if l.ch != nil {
		_ = l.ch.Close()
	}
	if l.conn != nil {
		_ = l.conn.Close()
	}
}

// Publisher sends JSON messages to the exchange.
type Publisher struct {
	link
	now func() time.Time
}

func NewPublisher(url string, log *zap.Logger) (*Publisher, error) {
	l, err := open(url, log)
	if err != nil {
		return nil, err
	}
	return &Publisher{link: l, now: time.Now}, nil
}

// Publish sends msg under routingKey as a persistent JSON message.
func (p *Publisher) Publish(ctx context.Context, routingKey string, msg any) error {
	pub, err := newPublishing(msg, p.now())
	if err != nil {
		return err
	}
	if err := p.ch.PublishWithContext(ctx, ExchangeName, routingKey, false, false, pub); err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	return nil
}

func newPublishing(msg any, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal message: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    now,
		Body:         body,
	}, nil
}

// Consumer reads deliveries with manual acks, one unacked message at a time.
type Consumer struct {
	link
}

func NewConsumer(url string, log *zap.Logger) (*Consumer, error) {
	l, err := open(url, log)
	if err != nil {
		return nil, err
	}
	if err := l.ch.Qos(1, 0, false); err != nil {
		l.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}
	return &Consumer{link: l}, nil
}

// Consume subscribes to queue. Deliveries must be acked by the caller.
func (c *Consumer) Consume(queue string) (<-chan amqp.Delivery, error) {
	return c.ch.Consume(queue, "", false, false, false, false, nil)
}

// DecodeRefreshRequest parses a panels.refresh delivery body.
func DecodeRefreshRequest(body []byte) (RefreshRequestMsg, error) {
	var msg RefreshRequestMsg
	if err := json.Unmarshal(body, &msg); err != nil {
		return RefreshRequestMsg{}, fmt.Errorf("decode refresh request: %w", err)
	}
	return msg, nil
}

func open(url string, log *zap.Logger) (link, error) {
	conn, err := dialWithRetry(url, log)
	if err != nil {
		return link{}, err
	}
	l := link{conn: conn}
	if l.ch, err = conn.Channel(); err != nil {
		l.Close()
		return link{}, fmt.Errorf("open channel: %w", err)
	}
	if err := SetupTopology(l.ch); err != nil {
		l.Close()
		return link{}, err
	}
	return l, nil
}

// dialWithRetry backs off 1s, 2s, 4s ... between attempts.
func dialWithRetry(url string, log *zap.Logger) (*amqp.Connection, error) {
	const attempts = 5
	var lastErr error
	for i := 0; i < attempts; i++ {
		conn, err := amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		wait := time.Second << i
		log.Warn("rabbitmq connection attempt failed",
			zap.Int("attempt", i+1), zap.Duration("retry_in", wait), zap.Error(err))
		time.Sleep(wait)
	}
	return nil, fmt.Errorf("connect to rabbitmq after %d attempts: %w", attempts, lastErr)
}
