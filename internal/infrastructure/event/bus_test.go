package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Quote", uuid.New())}
}

type testHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []string
	err        error
	panics     bool
}

func (h *testHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("boom")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event.EventType())
	return h.err
}

func (h *testHandler) EventTypes() []string { return h.eventTypes }

func (h *testHandler) seen() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.handled...)
}

func startedBus(t *testing.T) *InMemoryEventBus {
	t.Helper()
	bus := NewInMemoryEventBus(zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))
	return bus
}

func TestInMemoryEventBus_RoutesByType(t *testing.T) {
	bus := startedBus(t)
	quotes := &testHandler{eventTypes: []string{"QuoteCreated"}}
	invoices := &testHandler{eventTypes: []string{"InvoicePromoted"}}
	all := &testHandler{}
	bus.Subscribe(quotes)
	bus.Subscribe(invoices)
	bus.Subscribe(all)

	err := bus.Publish(context.Background(), newTestEvent("QuoteCreated"), newTestEvent("InvoicePromoted"))

	require.NoError(t, err)
	assert.Equal(t, []string{"QuoteCreated"}, quotes.seen())
	assert.Equal(t, []string{"InvoicePromoted"}, invoices.seen())
	assert.Equal(t, []string{"QuoteCreated", "InvoicePromoted"}, all.seen())
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandler(t *testing.T) {
	bus := startedBus(t)
	h := &testHandler{eventTypes: []string{"QuoteCreated"}}
	bus.Subscribe(h, "InvoiceCreated")

	_ = bus.Publish(context.Background(), newTestEvent("QuoteCreated"), newTestEvent("InvoiceCreated"))

	assert.Equal(t, []string{"InvoiceCreated"}, h.seen())
}

func TestInMemoryEventBus_HandlerFailureIsIsolated(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))
	require.NoError(t, bus.Start(context.Background()))

	failing := &testHandler{eventTypes: []string{"QuoteCreated"}, err: errors.New("metrics down")}
	panicking := &testHandler{eventTypes: []string{"QuoteCreated"}, panics: true}
	healthy := &testHandler{eventTypes: []string{"QuoteCreated"}}
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("QuoteCreated"))

	require.NoError(t, err)
	assert.Equal(t, []string{"QuoteCreated"}, healthy.seen())
	assert.Equal(t, 2, logs.FilterMessage("event handler failed").Len())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := startedBus(t)
	h := &testHandler{eventTypes: []string{"QuoteCreated"}}
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	_ = bus.Publish(context.Background(), newTestEvent("QuoteCreated"))

	assert.Empty(t, h.seen())
}

func TestInMemoryEventBus_DropsWhileStopped(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &testHandler{}
	bus.Subscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("QuoteCreated")))
	assert.Empty(t, h.seen())
	assert.Equal(t, int64(1), bus.Dropped())

	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("QuoteCreated")))
	require.NoError(t, bus.Stop(context.Background()))
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("QuoteCreated")))

	assert.Len(t, h.seen(), 1)
	assert.Equal(t, int64(2), bus.Dropped())
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	registry := NewHandlerRegistry()
	a := &testHandler{}
	b := &testHandler{}
	registry.Register(a, "QuoteCreated", "InvoiceCreated")
	registry.Register(b, "QuoteCreated")
	registry.Register(a)

	assert.Len(t, registry.HandlersFor("QuoteCreated"), 3)

	registry.Unregister(a)

	assert.Equal(t, []shared.EventHandler{b}, registry.HandlersFor("QuoteCreated"))
	assert.Empty(t, registry.HandlersFor("InvoiceCreated"))
	_, kept := registry.handlers["InvoiceCreated"]
	assert.False(t, kept)
}
