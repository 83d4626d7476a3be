// Package dispatch provides an in-process event bus for plugin events.
//
// The Broker fans each published event out to every subscriber whose kind
// filter matches its event name. Events are finalized before they reach
// the broker; Rebroadcast is the one place that re-attributes an event,
// and it does so before publishing.
package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/pluginevent"
	"github.com/agentstation/pluginevent/pkg/errors"
)

const eventBufferSize = 256

// Broker manages event distribution to multiple subscribers.
type Broker struct {
	subscriptions []*subscription
	events        chan pluginevent.Event
	register      chan *subscription
	unregister    chan Subscriber
	done          chan struct{}
	mu            sync.RWMutex
	logger        *zerolog.Logger
}

// NewBroker creates a new event broker.
func NewBroker(logger *zerolog.Logger) *Broker {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Broker{
		subscriptions: make([]*subscription, 0),
		events:        make(chan pluginevent.Event, eventBufferSize),
		register:      make(chan *subscription),
		unregister:    make(chan Subscriber),
		done:          make(chan struct{}),
		logger:        logger,
	}
}

// Run starts the broker's event loop. Should be called once, in a
// goroutine. The broker will run until the context is cancelled.
func (b *Broker) Run(ctx context.Context) {
	defer close(b.done)
	for {
		select {
		case <-ctx.Done():
			b.mu.Lock()
			for _, s := range b.subscriptions {
				_ = s.sub.Close()
			}
			b.subscriptions = nil
			b.mu.Unlock()
			b.logger.Info().Msg("Event broker shut down")
			return

		case s := <-b.register:
			b.mu.Lock()
			b.subscriptions = append(b.subscriptions, s)
			total := len(b.subscriptions)
			b.mu.Unlock()
			b.logger.Info().
				Int("total_subscribers", total).
				Msg("Subscriber registered")

		case sub := <-b.unregister:
			b.mu.Lock()
			for i, s := range b.subscriptions {
				if s.sub == sub {
					b.subscriptions = append(b.subscriptions[:i], b.subscriptions[i+1:]...)
					_ = s.sub.Close()
					break
				}
			}
			total := len(b.subscriptions)
			b.mu.Unlock()
			b.logger.Info().
				Int("total_subscribers", total).
				Msg("Subscriber unregistered")

		case e := <-b.events:
			b.broadcast(e)
		}
	}
}

func (b *Broker) broadcast(e pluginevent.Event) {
	b.mu.RLock()
	subs := make([]Subscriber, 0, len(b.subscriptions))
	for _, s := range b.subscriptions {
		if s.wants(e) {
			subs = append(subs, s.sub)
		}
	}
	b.mu.RUnlock()

	for _, sub := range subs {
		go func(s Subscriber, e pluginevent.Event) {
			if err := s.Deliver(e); err != nil {
				b.logger.Warn().
					Err(err).
					Str("event_name", e.EventName()).
					Str("source_name", e.SourceName()).
					Msg("Failed to deliver event to subscriber")
			}
		}(sub, e)
	}

	b.logger.Debug().
		Str("event_name", e.EventName()).
		Str("source_name", e.SourceName()).
		Int("subscribers", len(subs)).
		Msg("Event broadcasted")
}

// Publish queues an event for delivery. It never blocks; when the queue is
// full the event is dropped and a warning is logged. It reports whether the
// event was queued.
func (b *Broker) Publish(e pluginevent.Event) bool {
	if e == nil {
		return false
	}

	select {
	case b.events <- e:
		return true
	default:
		b.logger.Warn().
			Str("event_name", e.EventName()).
			Msg("Event channel full, event dropped")
		return false
	}
}

// PublishWait queues an event for delivery, waiting for room in the queue.
// It fails with errors.ErrCanceled when ctx is done or the broker has shut
// down before the event was queued.
func (b *Broker) PublishWait(ctx context.Context, e pluginevent.Event) error {
	if e == nil {
		return errors.NewValidationError("event", nil, "must not be nil")
	}

	select {
	case <-b.done:
		return fmt.Errorf("publishing %s: broker stopped: %w", e.EventName(), errors.ErrCanceled)
	default:
	}

	select {
	case b.events <- e:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("publishing %s: %w", e.EventName(), errors.ErrCanceled)
	case <-b.done:
		return fmt.Errorf("publishing %s: broker stopped: %w", e.EventName(), errors.ErrCanceled)
	}
}

// Rebroadcast attributes e to source, records trigger as its cause, and
// publishes it. Plugins use it when they raise an event in response to
// one they received. A nil trigger leaves e without a cause.
func (b *Broker) Rebroadcast(source string, trigger pluginevent.Event, e pluginevent.Attributable) bool {
	if e == nil {
		return false
	}
	e.SetTriggerEvent(trigger)
	if source != "" {
		e.SetSourceName(source)
	}
	return b.Publish(e)
}

// Subscribe registers a subscriber for the given event names. With no
// names the subscriber receives every event. It blocks until Run accepts
// the registration, so events published after Subscribe returns reach the
// subscriber. It reports false when the broker has shut down.
func (b *Broker) Subscribe(sub Subscriber, kinds ...string) bool {
	select {
	case b.register <- newSubscription(sub, kinds):
		return true
	case <-b.done:
		return false
	}
}

// Unsubscribe removes a subscriber and closes it. It reports false when
// the broker has shut down; Run closes every subscriber on shutdown.
func (b *Broker) Unsubscribe(sub Subscriber) bool {
	select {
	case b.unregister <- sub:
		return true
	case <-b.done:
		return false
	}
}

// Done returns a channel that is closed once Run has returned.
func (b *Broker) Done() <-chan struct{} {
	return b.done
}

// SubscriberCount returns the current number of subscribers.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscriptions)
}
