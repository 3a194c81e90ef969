package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/savings/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testEvent implements DomainEvent for testing
type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New(), uuid.New()),
		Data:            "test data",
	}
}

// testHandler records what it handles
type testHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panicWith  any
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	h.handled = append(h.handled, event)
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func startedBus(t *testing.T) *InMemoryEventBus {
	t.Helper()
	bus := NewInMemoryEventBus(zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))
	return bus
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("routes by type and to wildcard handlers", func(t *testing.T) {
		bus := startedBus(t)
		a := newTestHandler("A")
		b := newTestHandler("B")
		all := newTestHandler()
		bus.Subscribe(a)
		bus.Subscribe(b)
		bus.Subscribe(all)

		require.NoError(t, bus.Publish(ctx, newTestEvent("A"), newTestEvent("A"), newTestEvent("C")))

		assert.Equal(t, 2, a.count())
		assert.Equal(t, 0, b.count())
		assert.Equal(t, 3, all.count())
	})

	t.Run("explicit types override the handler's own", func(t *testing.T) {
		bus := startedBus(t)
		h := newTestHandler("A")
		bus.Subscribe(h, "B")

		require.NoError(t, bus.Publish(ctx, newTestEvent("A"), newTestEvent("B")))
		assert.Equal(t, 1, h.count())
	})

	t.Run("failing handler does not stop the others", func(t *testing.T) {
		bus := startedBus(t)
		failing := newTestHandler("A")
		failing.err = errors.New("boom")
		ok := newTestHandler("A")
		bus.Subscribe(failing)
		bus.Subscribe(ok)

		err := bus.Publish(ctx, newTestEvent("A"))
		require.Error(t, err)
		assert.ErrorContains(t, err, "boom")
		assert.Equal(t, 1, ok.count())
	})

	t.Run("panic becomes an error", func(t *testing.T) {
		bus := startedBus(t)
		h := newTestHandler("A")
		h.panicWith = "kaboom"
		bus.Subscribe(h)

		err := bus.Publish(ctx, newTestEvent("A"))
		assert.ErrorContains(t, err, "kaboom")
	})

	t.Run("stopped bus rejects events", func(t *testing.T) {
		bus := startedBus(t)
		h := newTestHandler("A")
		bus.Subscribe(h)
		require.NoError(t, bus.Stop(ctx))

		assert.ErrorIs(t, bus.Publish(ctx, newTestEvent("A")), ErrBusStopped)
		assert.Equal(t, 0, h.count())
	})
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	ctx := context.Background()
	bus := startedBus(t)
	h := newTestHandler("A")
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(ctx, newTestEvent("A")))
	assert.Equal(t, 0, h.count())
}

func TestHandlerRegistry(t *testing.T) {
	r := NewHandlerRegistry()
	a := newTestHandler()
	b := newTestHandler()
	w := newTestHandler()

	r.Register(a, "X", "Y")
	r.Register(a, "X")
	r.Register(b, "X")
	r.Register(w)

	assert.Equal(t, []shared.EventHandler{a, b, w}, r.GetHandlers("X"))
	assert.Equal(t, []shared.EventHandler{a, w}, r.GetHandlers("Y"))
	assert.Equal(t, []shared.EventHandler{w}, r.GetHandlers("Z"))
	assert.Equal(t, 3, r.Len())

	r.Unregister(a)
	assert.Equal(t, []shared.EventHandler{b, w}, r.GetHandlers("X"))
	assert.Equal(t, []shared.EventHandler{w}, r.GetHandlers("Y"))
	assert.Equal(t, 2, r.Len())
}

func TestHandlerRegistry_WildcardWidens(t *testing.T) {
	r := NewHandlerRegistry()
	h := newTestHandler()
	r.Register(h, "X")
	r.Register(h)
	r.Register(h, "Y")

	assert.Equal(t, []shared.EventHandler{h}, r.GetHandlers("Z"))
	assert.Equal(t, 1, r.Len())
	assert.Empty(t, NewHandlerRegistry().GetHandlers("X"))
}
