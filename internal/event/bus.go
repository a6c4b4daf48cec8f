// Package event provides the topic-addressed event bus touchemu components
// use to observe touch sessions and synthesized mouse events.
//
// Delivery is synchronous: Publish runs every matching handler on the
// calling goroutine, in subscription order. This keeps observers in step
// with the single-threaded touch engine. A panicking handler is recovered
// and reported through the bus panic handler; delivery continues.
package event

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Handler receives published events.
type Handler func(ev Envelope)

// PanicHandler is called when a handler panics.
type PanicHandler func(ev Envelope, recovered any)

// Subscription identifies a registered handler.
type Subscription struct {
	id      uint64
	pattern Topic
}

// Pattern returns the subscribed topic pattern.
func (s Subscription) Pattern() Topic { return s.pattern }

type subscriber struct {
	Subscription
	handler Handler
}

// Stats reports bus counters.
type Stats struct {
	Published uint64
	Delivered uint64
	Panics    uint64
}

// Bus is a synchronous topic bus. It is safe for concurrent use.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscriber
	nextID uint64

	onPanic PanicHandler

	published atomic.Uint64
	delivered atomic.Uint64
	panics    atomic.Uint64
}

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithPanicHandler sets the handler for recovered panics.
func WithPanicHandler(fn PanicHandler) BusOption {
	return func(b *Bus) { b.onPanic = fn }
}

// NewBus creates an empty bus.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers fn for every topic matching pattern.
func (b *Bus) Subscribe(pattern Topic, fn Handler) (Subscription, error) {
	if fn == nil {
		return Subscription{}, ErrNilHandler
	}
	if !pattern.Valid() {
		return Subscription{}, fmt.Errorf("%w: %q", ErrInvalidTopic, pattern)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := Subscription{id: b.nextID, pattern: pattern}
	b.subs = append(b.subs, subscriber{Subscription: sub, handler: fn})
	return sub, nil
}

// Unsubscribe removes a subscription.
func (b *Bus) Unsubscribe(sub Subscription) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == sub.id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return nil
		}
	}
	return ErrSubscriptionNotFound
}

// Publish delivers ev to every matching handler.
func (b *Bus) Publish(ev Envelope) error {
	if ev == nil || !ev.EventTopic().Valid() {
		return ErrInvalidEvent
	}
	b.published.Add(1)

	b.mu.RLock()
	var targets []Handler
	for _, s := range b.subs {
		if ev.EventTopic().Matches(s.pattern) {
			targets = append(targets, s.handler)
		}
	}
	b.mu.RUnlock()

	for _, h := range targets {
		b.deliver(h, ev)
	}
	return nil
}

func (b *Bus) deliver(h Handler, ev Envelope) {
	defer func() {
		if r := recover(); r != nil {
			b.panics.Add(1)
			if b.onPanic != nil {
				b.onPanic(ev, r)
			}
		}
	}()
	h(ev)
	b.delivered.Add(1)
}

// Stats returns the bus counters.
func (b *Bus) Stats() Stats {
	return Stats{
		Published: b.published.Load(),
		Delivered: b.delivered.Load(),
		Panics:    b.panics.Load(),
	}
}
