// Package hooks provides the lifecycle event registry for the checkout
// pipeline. Surrounding infrastructure (HTTP handlers, the checkout
// service) dispatches events at fixed lifecycle points; integrations
// attach listeners at wiring time. Listeners run in attachment order and
// may mutate the event payload in place.
package hooks

import "context"

// Listener handles one dispatched event of type E. Returning an error
// stops dispatch of the remaining listeners for that event.
type Listener[E any] func(ctx context.Context, e *E) error

// Hook is a named lifecycle event with an ordered listener list.
type Hook[E any] struct {
	name      string
	listeners []Listener[E]
}

// NewHook creates a named hook with no listeners.
func NewHook[E any](name string) *Hook[E] {
	return &Hook[E]{name: name}
}

// Name returns the event name this hook dispatches.
func (h *Hook[E]) Name() string { return h.name }

// Attach appends a listener to the end of the dispatch order.
func (h *Hook[E]) Attach(l Listener[E]) {
	h.listeners = append(h.listeners, l)
}

// Dispatch invokes every attached listener in order with the same payload.
// The first listener error aborts the remainder and is returned.
func (h *Hook[E]) Dispatch(ctx context.Context, e *E) error {
	for _, l := range h.listeners {
		if err := l(ctx, e); err != nil {
			return err
		}
	}
	return nil
}
