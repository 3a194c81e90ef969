package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/savings/backend/internal/domain/shared"
	"github.com/savings/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// amqpChannel is the subset of *amqp091.Channel the forwarder uses
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// AMQPForwarder republishes every domain event to a RabbitMQ topic exchange.
// The routing key is "<prefix>.<EventType>", e.g. "savings.ContributionConfirmed".
type AMQPForwarder struct {
	mu         sync.Mutex
	conn       *amqp091.Connection
	channel    amqpChannel
	exchange   string
	routingKey string
	serializer *EventSerializer
	logger     *zap.Logger
}

// DialAMQPForwarder connects to the broker and declares the exchange
func DialAMQPForwarder(cfg config.BrokerConfig, serializer *EventSerializer, logger *zap.Logger) (*AMQPForwarder, error) {
	conn, err := amqp091.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	f, err := newAMQPForwarder(ch, cfg.Exchange, cfg.RoutingKey, serializer, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	f.conn = conn
	return f, nil
}

func newAMQPForwarder(ch amqpChannel, exchange, routingKey string, serializer *EventSerializer, logger *zap.Logger) (*AMQPForwarder, error) {
	if err := ch.ExchangeDeclare(
		exchange,
		amqp091.ExchangeTopic,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &AMQPForwarder{
		channel:    ch,
		exchange:   exchange,
		routingKey: routingKey,
		serializer: serializer,
		logger:     logger,
	}, nil
}

// EventTypes is empty: the forwarder receives every event
func (f *AMQPForwarder) EventTypes() []string {
	return nil
}

// Handle publishes event as a persistent JSON message
func (f *AMQPForwarder) Handle(ctx context.Context, event shared.DomainEvent) error {
	body, err := f.serializer.Serialize(event)
	if err != nil {
		return err
	}

	msg := amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    event.EventID().String(),
		Type:         event.EventType(),
		Timestamp:    event.OccurredAt(),
		Headers: amqp091.Table{
			"aggregate_type": event.AggregateType(),
			"aggregate_id":   event.AggregateID().String(),
		},
		Body: body,
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	key := f.RoutingKey(event.EventType())
	f.mu.Lock()
	err = f.channel.PublishWithContext(ctx, f.exchange, key, false, false, msg)
	f.mu.Unlock()
	if err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}

	f.logger.Debug("event forwarded to broker",
		zap.String("exchange", f.exchange),
		zap.String("routing_key", key),
		zap.String("event_id", event.EventID().String()),
	)
	return nil
}

// RoutingKey returns the routing key used for eventType
func (f *AMQPForwarder) RoutingKey(eventType string) string {
	if f.routingKey == "" {
		return eventType
	}
	return f.routingKey + "." + eventType
}

// Close closes the channel and the connection
func (f *AMQPForwarder) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.channel != nil {
		f.channel.Close()
	}
	if f.conn != nil {
		return f.conn.Close()
	}
	return nil
}

var _ shared.EventHandler = (*AMQPForwarder)(nil)
