package dispatch

import "github.com/agentstation/pluginevent"

// Subscriber is an interface for event consumers.
// Implementations receive events read-only and must not re-attribute them.
type Subscriber interface {
	// Deliver hands an event to the subscriber.
	// Implementations should be non-blocking and handle errors gracefully.
	Deliver(pluginevent.Event) error

	// Close cleanly shuts down the subscriber.
	Close() error
}

// Func adapts a function to the Subscriber interface. Close is a no-op.
// Each call returns a distinct subscriber that can be passed to Unsubscribe.
func Func(fn func(pluginevent.Event) error) Subscriber {
	return &funcSubscriber{fn: fn}
}

type funcSubscriber struct {
	fn func(pluginevent.Event) error
}

func (f *funcSubscriber) Deliver(e pluginevent.Event) error {
	return f.fn(e)
}

func (f *funcSubscriber) Close() error {
	return nil
}

// subscription pairs a subscriber with the event names it wants.
// A nil kinds set matches every event.
type subscription struct {
	sub   Subscriber
	kinds map[string]struct{}
}

func newSubscription(sub Subscriber, kinds []string) *subscription {
	s := &subscription{sub: sub}
	if len(kinds) > 0 {
		s.kinds = make(map[string]struct{}, len(kinds))
		for _, k := range kinds {
			s.kinds[k] = struct{}{}
		}
	}
	return s
}

func (s *subscription) wants(e pluginevent.Event) bool {
	if s.kinds == nil {
		return true
	}
	_, ok := s.kinds[e.EventName()]
	return ok
}
