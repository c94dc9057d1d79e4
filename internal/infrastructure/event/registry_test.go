package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry_Register(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newTestHandler()

	registry.Register(handler, "OrderCreated", "OrderFulfilled")
	registry.Register(handler, "OrderCreated")

	assert.Len(t, registry.GetHandlers("OrderCreated"), 1)
	assert.Len(t, registry.GetHandlers("OrderFulfilled"), 1)
	assert.Empty(t, registry.GetHandlers("InventoryAdjusted"))
	assert.ElementsMatch(t, []string{"OrderCreated", "OrderFulfilled"}, registry.EventTypes())
}

func TestHandlerRegistry_WildcardOrdering(t *testing.T) {
	registry := NewHandlerRegistry()
	wildcard := newTestHandler()
	typed := newTestHandler()

	registry.Register(wildcard)
	registry.Register(typed, "OrderCreated")

	handlers := registry.GetHandlers("OrderCreated")
	assert.Len(t, handlers, 2)
	assert.Same(t, typed, handlers[0])
	assert.Same(t, wildcard, handlers[1])
	assert.Len(t, registry.GetHandlers("Other"), 1)
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	registry := NewHandlerRegistry()
	first := newTestHandler()
	second := newTestHandler()

	registry.Register(first, "OrderCreated")
	registry.Register(second, "OrderCreated")
	registry.Register(first)

	registry.Unregister(first)

	handlers := registry.GetHandlers("OrderCreated")
	assert.Len(t, handlers, 1)
	assert.Same(t, second, handlers[0])

	registry.Unregister(second)
	assert.Empty(t, registry.EventTypes())
}

func TestHandlerRegistry_GetHandlersReturnsCopy(t *testing.T) {
	registry := NewHandlerRegistry()
	registry.Register(newTestHandler(), "OrderCreated")

	handlers := registry.GetHandlers("OrderCreated")
	handlers[0] = nil

	assert.NotNil(t, registry.GetHandlers("OrderCreated")[0])
}
