package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type formulaPaidEvent struct {
	shared.BaseDomainEvent
	Reference string `json:"reference"`
}

func newFormulaPaidEvent() *formulaPaidEvent {
	return &formulaPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("FormulaAvantVentePaid", "PriceFormula", uuid.New()),
		Reference:       "FO-2026-001",
	}
}

func newLotsGeneratedEvent() *formulaPaidEvent {
	return &formulaPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("TransitOrderLotsGenerated", "TransitOrder", uuid.New()),
		Reference:       "OT-00042",
	}
}

// recordingHandler records every event it receives; err, when set, is
// returned from Handle.
type recordingHandler struct {
	eventTypes []string
	mu         sync.Mutex
	received   []shared.DomainEvent
	err        error
}

func newRecordingHandler(eventTypes ...string) *recordingHandler {
	return &recordingHandler{eventTypes: eventTypes}
}

func (h *recordingHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.received = append(h.received, evt)
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.eventTypes }

func (h *recordingHandler) events() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.received...)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	t.Run("delivers to the subscribed handler", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := newRecordingHandler("FormulaAvantVentePaid")
		bus.Subscribe(handler, "FormulaAvantVentePaid")

		evt := newFormulaPaidEvent()
		require.NoError(t, bus.Publish(context.Background(), evt))

		require.Len(t, handler.events(), 1)
		assert.Equal(t, evt, handler.events()[0])
	})

	t.Run("fans a batch out in order", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := newRecordingHandler("FormulaAvantVentePaid")
		bus.Subscribe(handler, "FormulaAvantVentePaid")

		first := newFormulaPaidEvent()
		second := newFormulaPaidEvent()
		require.NoError(t, bus.Publish(context.Background(), first, second))

		got := handler.events()
		require.Len(t, got, 2)
		assert.Equal(t, first, got[0])
		assert.Equal(t, second, got[1])
	})

	t.Run("every interested handler sees the event", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h1 := newRecordingHandler("FormulaAvantVentePaid")
		h2 := newRecordingHandler("FormulaAvantVentePaid")
		bus.Subscribe(h1, "FormulaAvantVentePaid")
		bus.Subscribe(h2, "FormulaAvantVentePaid")

		require.NoError(t, bus.Publish(context.Background(), newFormulaPaidEvent()))

		assert.Len(t, h1.events(), 1)
		assert.Len(t, h2.events(), 1)
	})

	t.Run("a failing handler does not starve the rest", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		failing := newRecordingHandler("FormulaAvantVentePaid")
		failing.err = errors.New("downstream unavailable")
		healthy := newRecordingHandler("FormulaAvantVentePaid")
		bus.Subscribe(failing, "FormulaAvantVentePaid")
		bus.Subscribe(healthy, "FormulaAvantVentePaid")

		require.NoError(t, bus.Publish(context.Background(), newFormulaPaidEvent()))

		assert.Len(t, failing.events(), 1)
		assert.Len(t, healthy.events(), 1)
	})

	t.Run("a panicking handler is contained", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		panicking := &panickingHandler{}
		healthy := newRecordingHandler("FormulaAvantVentePaid")
		bus.Subscribe(panicking, "FormulaAvantVentePaid")
		bus.Subscribe(healthy, "FormulaAvantVentePaid")

		require.NoError(t, bus.Publish(context.Background(), newFormulaPaidEvent()))
		assert.Len(t, healthy.events(), 1)
	})

	t.Run("an event without subscribers is a no-op", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := newRecordingHandler("SalesConfirmationActivated")
		bus.Subscribe(handler, "SalesConfirmationActivated")

		require.NoError(t, bus.Publish(context.Background(), newFormulaPaidEvent()))
		assert.Empty(t, handler.events())
	})
}

type panickingHandler struct{}

func (h *panickingHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	panic("handler blew up")
}

func (h *panickingHandler) EventTypes() []string { return nil }

func TestInMemoryEventBus_Subscribe(t *testing.T) {
	t.Run("falls back to the handler's declared types", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := newRecordingHandler("FormulaAvantVentePaid")
		bus.Subscribe(handler)

		require.NoError(t, bus.Publish(context.Background(), newFormulaPaidEvent()))
		require.NoError(t, bus.Publish(context.Background(), newLotsGeneratedEvent()))

		assert.Len(t, handler.events(), 1)
	})

	t.Run("no types at all means catch-all", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := newRecordingHandler()
		bus.Subscribe(handler)

		require.NoError(t, bus.Publish(context.Background(), newFormulaPaidEvent()))
		require.NoError(t, bus.Publish(context.Background(), newLotsGeneratedEvent()))

		assert.Len(t, handler.events(), 2)
	})
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newRecordingHandler("FormulaAvantVentePaid")
	bus.Subscribe(handler, "FormulaAvantVentePaid")

	require.NoError(t, bus.Publish(context.Background(), newFormulaPaidEvent()))
	require.Len(t, handler.events(), 1)

	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newFormulaPaidEvent()))
	assert.Len(t, handler.events(), 1)
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, bus.Start(ctx))

	handler := newRecordingHandler("FormulaAvantVentePaid")
	bus.Subscribe(handler, "FormulaAvantVentePaid")
	require.NoError(t, bus.Publish(ctx, newFormulaPaidEvent()))
	assert.Len(t, handler.events(), 1)

	require.NoError(t, bus.Stop(ctx))
}

func TestHandlerRegistry(t *testing.T) {
	t.Run("typed handlers come before catch-all", func(t *testing.T) {
		reg := NewHandlerRegistry()
		typed := newRecordingHandler("FormulaAvantVentePaid")
		catchAll := newRecordingHandler()
		reg.Register(catchAll)
		reg.Register(typed, "FormulaAvantVentePaid")

		got := reg.GetHandlers("FormulaAvantVentePaid")
		require.Len(t, got, 2)
		assert.Same(t, typed, got[0].(*recordingHandler))
		assert.Same(t, catchAll, got[1].(*recordingHandler))
	})

	t.Run("unregister prunes empty type buckets", func(t *testing.T) {
		reg := NewHandlerRegistry()
		handler := newRecordingHandler("TransitOrderLotsGenerated")
		reg.Register(handler, "TransitOrderLotsGenerated")

		reg.Unregister(handler)

		assert.Empty(t, reg.GetHandlers("TransitOrderLotsGenerated"))
	})
}
