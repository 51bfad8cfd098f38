// Package bus implements the in-process publish/subscribe fabric the pipeline
// stages communicate over. Each subscription owns a private buffered queue
// drained by a single goroutine, so one subscriber never observes events out of
// order and a stage handler is the only writer for a job while it runs.
package bus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// DefaultQueueSize is the per-subscription buffer used when the configured
// size is zero or negative.
const DefaultQueueSize = 100

// Event is one published message: a topic name and its payload struct.
type Event struct {
	Topic   string
	Payload any
}

// Handler processes a single event. Stage handlers catch all of their own
// domain failures; a returned error signals an unprocessable event (wrong
// payload type, missing record) and is logged by the bus, never re-raised.
type Handler func(ctx context.Context, evt Event) error

type subscription struct {
	topic   string
	name    string
	queue   chan Event
	handler Handler
}

// Bus routes events from publishers to every subscriber of a topic. Delivery
// is at-least-once by contract: the bus itself never duplicates an event, but
// handlers are required to tolerate redelivery.
type Bus struct {
	mu        sync.RWMutex
	subs      map[string][]*subscription
	wg        sync.WaitGroup
	queueSize int
	logger    *slog.Logger
	stopped   bool
}

// New creates an event bus. Subscriptions must be registered before Start-up
// traffic is published; there is no unsubscribe.
func New(queueSize int, logger *slog.Logger) *Bus {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Bus{
		subs:      make(map[string][]*subscription),
		queueSize: queueSize,
		logger:    logger,
	}
}

// Subscribe registers a named handler for a topic and starts its delivery
// goroutine. The name only appears in logs.
func (b *Bus) Subscribe(topic, name string, handler Handler) {
	sub := &subscription{
		topic:   topic,
		name:    name,
		queue:   make(chan Event, b.queueSize),
		handler: handler,
	}

	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		b.logger.Error("subscribe on stopped bus ignored", "topic", topic, "subscriber", name)
		return
	}
	b.subs[topic] = append(b.subs[topic], sub)
	b.mu.Unlock()

	b.wg.Add(1)
	go b.deliver(sub)
}

// deliver drains one subscription's queue until the bus is stopped. Handlers
// run to completion before the next event is taken, which makes a stage's
// publish a synchronization point for its downstream subscriber.
func (b *Bus) deliver(sub *subscription) {
	defer b.wg.Done()
	b.logger.Debug("starting subscriber", "topic", sub.topic, "subscriber", sub.name)

	for evt := range sub.queue {
		if err := sub.handler(context.Background(), evt); err != nil {
			b.logger.Error("subscriber failed to process event",
				"topic", sub.topic,
				"subscriber", sub.name,
				"error", err,
			)
		}
	}

	b.logger.Debug("subscriber drained", "topic", sub.topic, "subscriber", sub.name)
}

// Publish enqueues the event to every current subscriber of the topic without
// blocking. A full subscriber queue is reported as an error so callers can
// surface the backpressure instead of silently dropping work.
func (b *Bus) Publish(_ context.Context, topic string, payload any) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.stopped {
		return fmt.Errorf("bus is stopped, cannot publish to %q", topic)
	}

	evt := Event{Topic: topic, Payload: payload}
	for _, sub := range b.subs[topic] {
		select {
		case sub.queue <- evt:
		default:
			return fmt.Errorf("queue full for subscriber %q on topic %q", sub.name, topic)
		}
	}
	return nil
}

// Stop closes all subscription queues and waits until every queued event has
// been handled. In-flight external calls are allowed to finish; there is no
// timeout here, matching the pipeline's no-cancellation contract.
func (b *Bus) Stop() {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return
	}
	b.stopped = true
	for _, subs := range b.subs {
		for _, sub := range subs {
			close(sub.queue)
		}
	}
	b.mu.Unlock()

	b.wg.Wait()
	b.logger.Info("event bus drained")
}
