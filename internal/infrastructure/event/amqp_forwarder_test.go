package event

import (
	"context"
	"errors"
	"testing"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type published struct {
	exchange string
	key      string
	msg      amqp091.Publishing
}

type fakeChannel struct {
	declared   []string
	kinds      []string
	published  []published
	declareErr error
	publishErr error
	closed     bool
}

func (c *fakeChannel) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp091.Table) error {
	c.declared = append(c.declared, name)
	c.kinds = append(c.kinds, kind)
	return c.declareErr
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	if c.publishErr != nil {
		return c.publishErr
	}
	c.published = append(c.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func TestAMQPForwarder_DeclaresTopicExchange(t *testing.T) {
	ch := &fakeChannel{}
	_, err := newAMQPForwarder(ch, "savings.events", "savings", NewEventSerializer(), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{"savings.events"}, ch.declared)
	assert.Equal(t, []string{amqp091.ExchangeTopic}, ch.kinds)

	failing := &fakeChannel{declareErr: errors.New("access refused")}
	_, err = newAMQPForwarder(failing, "savings.events", "savings", NewEventSerializer(), zap.NewNop())
	assert.ErrorContains(t, err, "access refused")
	assert.True(t, failing.closed)
}

func TestAMQPForwarder_Handle(t *testing.T) {
	ch := &fakeChannel{}
	serializer := NewEventSerializer()
	f, err := newAMQPForwarder(ch, "savings.events", "savings", serializer, zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, f.EventTypes())

	event := newTestEvent("ContributionConfirmed")
	require.NoError(t, f.Handle(context.Background(), event))

	require.Len(t, ch.published, 1)
	got := ch.published[0]
	assert.Equal(t, "savings.events", got.exchange)
	assert.Equal(t, "savings.ContributionConfirmed", got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, amqp091.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, event.EventID().String(), got.msg.MessageId)
	assert.Equal(t, "ContributionConfirmed", got.msg.Type)
	assert.Equal(t, "TestAggregate", got.msg.Headers["aggregate_type"])

	body, err := serializer.Serialize(event)
	require.NoError(t, err)
	assert.JSONEq(t, string(body), string(got.msg.Body))
}

func TestAMQPForwarder_PublishError(t *testing.T) {
	ch := &fakeChannel{}
	f, err := newAMQPForwarder(ch, "x", "", NewEventSerializer(), zap.NewNop())
	require.NoError(t, err)
	ch.publishErr = errors.New("channel closed")

	err = f.Handle(context.Background(), newTestEvent("A"))
	assert.ErrorContains(t, err, "publish A")
	assert.Equal(t, "A", f.RoutingKey("A"))

	require.NoError(t, f.Close())
	assert.True(t, ch.closed)
}
