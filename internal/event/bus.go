package event

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/dshills/undocalc/internal/event/topic"
)

// Handler processes a published event.
// The event parameter is type-erased; handlers should type-assert.
type Handler interface {
	Handle(ctx context.Context, event any) error
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(ctx context.Context, event any) error

// Handle implements the Handler interface.
func (f HandlerFunc) Handle(ctx context.Context, event any) error {
	return f(ctx, event)
}

// Typed adapts a payload-typed function to a Handler.
// Events whose payload is not T are ignored.
func Typed[T any](fn func(ctx context.Context, ev Event[T]) error) Handler {
	return HandlerFunc(func(ctx context.Context, event any) error {
		ev, ok := event.(Event[T])
		if !ok {
			return nil
		}
		return fn(ctx, ev)
	})
}

// Subscription identifies a registered handler.
type Subscription struct {
	ID      string
	Pattern topic.Topic

	handler Handler
	once    bool
	fired   atomic.Bool
}

// SubscribeOption configures a subscription.
type SubscribeOption func(*Subscription)

// Once removes the subscription after its first delivery.
func Once() SubscribeOption {
	return func(s *Subscription) {
		s.once = true
	}
}

// Stats reports bus activity.
type Stats struct {
	Subscriptions int
	Published     uint64
	Delivered     uint64
	Failed        uint64
}

// Bus delivers events synchronously to every subscription whose pattern
// matches the event topic, in subscription order.
type Bus struct {
	mu     sync.RWMutex
	subs   []*Subscription
	nextID uint64

	published atomic.Uint64
	delivered atomic.Uint64
	failed    atomic.Uint64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers handler for events matching pattern.
func (b *Bus) Subscribe(pattern topic.Topic, handler Handler, opts ...SubscribeOption) (*Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if !pattern.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTopic, pattern)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{
		ID:      fmt.Sprintf("sub-%d", b.nextID),
		Pattern: pattern,
		handler: handler,
	}
	for _, opt := range opts {
		opt(sub)
	}
	b.subs = append(b.subs, sub)
	return sub, nil
}

// SubscribeFunc is a convenience wrapper around Subscribe.
func (b *Bus) SubscribeFunc(pattern topic.Topic, fn func(ctx context.Context, event any) error, opts ...SubscribeOption) (*Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return b.Subscribe(pattern, HandlerFunc(fn), opts...)
}

// Unsubscribe removes a subscription.
func (b *Bus) Unsubscribe(sub *Subscription) error {
	if sub == nil {
		return ErrSubscriptionNotFound
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return nil
		}
	}
	return ErrSubscriptionNotFound
}

// Publish delivers event to all matching subscriptions.
// Handler errors and panics are joined into the returned error; delivery
// continues past them.
func (b *Bus) Publish(ctx context.Context, event TopicProvider) error {
	if event == nil {
		return ErrInvalidEvent
	}
	t := event.EventTopic()
	if !t.IsValid() || t.IsWildcard() {
		return fmt.Errorf("%w: %q", ErrInvalidTopic, t)
	}

	b.published.Add(1)

	b.mu.RLock()
	var targets []*Subscription
	for _, s := range b.subs {
		if t.Matches(s.Pattern) {
			targets = append(targets, s)
		}
	}
	b.mu.RUnlock()

	var errs []error
	for _, s := range targets {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if s.once && !s.fired.CompareAndSwap(false, true) {
			continue
		}
		if err := b.deliver(ctx, s, t, event); err != nil {
			b.failed.Add(1)
			errs = append(errs, err)
		} else {
			b.delivered.Add(1)
		}
		if s.once {
			_ = b.Unsubscribe(s)
		}
	}
	return errors.Join(errs...)
}

func (b *Bus) deliver(ctx context.Context, s *Subscription, t topic.Topic, event any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{
				SubscriptionID: s.ID,
				Topic:          t.String(),
				Value:          r,
				Stack:          string(debug.Stack()),
			}
		}
	}()

	if herr := s.handler.Handle(ctx, event); herr != nil {
		return &HandlerError{SubscriptionID: s.ID, Topic: t.String(), Err: herr}
	}
	return nil
}

// Stats returns a snapshot of bus counters.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	n := len(b.subs)
	b.mu.RUnlock()

	return Stats{
		Subscriptions: n,
		Published:     b.published.Load(),
		Delivered:     b.delivered.Load(),
		Failed:        b.failed.Load(),
	}
}
