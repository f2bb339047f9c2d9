// Package eventbus is the in-process publish/subscribe relay that decouples
// the socket layer from chat sessions and other consumers.
//
// Delivery is synchronous: Publish returns after every current subscriber of
// the name has run, in subscription order. A publisher that emits from a
// single goroutine therefore gets FIFO delivery per subscriber. There is no
// ordering across different names.
package eventbus

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/vonhatphuongahihi/PetZone-App-sub000/internal/observability"
)

// Handler receives the published payload.
type Handler func(payload any)

// Subscription identifies exactly one registered handler.
type Subscription struct {
	name string
	id   uint64
}

// Valid reports whether s refers to a registration at all.
func (s Subscription) Valid() bool {
	return s.id != 0
}

type subscriber struct {
	id      uint64
	handler Handler
}

// Emitter is a name keyed relay. The process-wide Bus uses the closed Name
// set; ws.Conn reuses it keyed by wire event type.
type Emitter[K ~string] struct {
	mu      sync.RWMutex
	subs    map[K][]subscriber
	nextID  uint64
	logger  *zap.Logger
	metrics *observability.Metrics
}

func NewEmitter[K ~string](logger *zap.Logger, metrics *observability.Metrics) *Emitter[K] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emitter[K]{
		subs:    make(map[K][]subscriber),
		logger:  logger,
		metrics: metrics,
	}
}

// Subscribe adds h for name. Several handlers per name are allowed.
func (e *Emitter[K]) Subscribe(name K, h Handler) Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	e.subs[name] = append(e.subs[name], subscriber{id: e.nextID, handler: h})
	return Subscription{name: string(name), id: e.nextID}
}

// Unsubscribe removes the single handler behind s. It reports whether the
// handler was still registered.
func (e *Emitter[K]) Unsubscribe(s Subscription) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	name := K(s.name)
	subs := e.subs[name]
	for i, sub := range subs {
		if sub.id != s.id {
			continue
		}
		rest := make([]subscriber, 0, len(subs)-1)
		rest = append(rest, subs[:i]...)
		rest = append(rest, subs[i+1:]...)
		if len(rest) == 0 {
			delete(e.subs, name)
		} else {
			e.subs[name] = rest
		}
		return true
	}
	return false
}

// UnsubscribeAll drops every handler of the given names, or of every name
// when called without arguments.
func (e *Emitter[K]) UnsubscribeAll(names ...K) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(names) == 0 {
		e.subs = make(map[K][]subscriber)
		return
	}
	for _, name := range names {
		delete(e.subs, name)
	}
}

// Publish delivers payload to the current subscribers of name. A handler
// that panics is logged and skipped; the others still run.
func (e *Emitter[K]) Publish(name K, payload any) {
	e.mu.RLock()
	subs := e.subs[name]
	e.mu.RUnlock()

	// subs is never mutated in place, so iterating the snapshot is safe even
	// if a handler unsubscribes itself.
	for _, sub := range subs {
		e.deliver(name, sub, payload)
	}
}

// Len returns the number of handlers currently registered for name.
func (e *Emitter[K]) Len(name K) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.subs[name])
}

func (e *Emitter[K]) deliver(name K, sub subscriber, payload any) {
	defer func() {
		if r := recover(); r != nil {
			e.metrics.HandlerPanicked(string(name))
			e.logger.Error("event handler panicked",
				zap.String("event", string(name)),
				zap.Uint64("subscription", sub.id),
				zap.String("panic", fmt.Sprint(r)),
			)
		}
	}()
	sub.handler(payload)
}

// On registers a handler that only runs for payloads of type T. Payloads of
// any other type are logged and dropped.
func On[T any, K ~string](e *Emitter[K], name K, fn func(T)) Subscription {
	return e.Subscribe(name, func(payload any) {
		v, ok := payload.(T)
		if !ok {
			e.logger.Warn("unexpected event payload",
				zap.String("event", string(name)),
				zap.String("type", fmt.Sprintf("%T", payload)),
			)
			return
		}
		fn(v)
	})
}
