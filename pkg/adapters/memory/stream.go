package memory

import (
	"sync"

	"github.com/aretw0/bine/pkg/ports"
)

// Stream implements ports.Stream with an in-process subscriber list.
// Safe for concurrent use. Handlers run inline on the publishing goroutine,
// outside the internal lock, so a handler may subscribe, unsubscribe, or
// publish without deadlocking.
type Stream[T any] struct {
	mu     sync.Mutex
	subs   []*subscriber[T]
	onDone []*subscriber[T]
	done   bool
}

type subscriber[T any] struct {
	handler  func(T)
	complete func()
	removed  bool
}

// NewStream creates an empty, uncompleted stream.
func NewStream[T any]() *Stream[T] {
	return &Stream[T]{}
}

// Publish delivers event to every active subscriber, in subscription order.
func (s *Stream[T]) Publish(event T) {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	active := make([]*subscriber[T], 0, len(s.subs))
	for _, sub := range s.subs {
		if !sub.removed {
			active = append(active, sub)
		}
	}
	s.mu.Unlock()

	for _, sub := range active {
		sub.handler(event)
	}
}

// Subscribe registers handler for future events.
func (s *Stream[T]) Subscribe(handler func(T)) ports.Subscription {
	sub := &subscriber[T]{handler: handler}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		// Completed streams accept subscribers but never call them.
		sub.removed = true
		return &subscription[T]{stream: s, sub: sub}
	}
	s.subs = append(s.subs, sub)
	return &subscription[T]{stream: s, sub: sub}
}

// OnComplete registers fn to run once when the stream terminates.
// On an already-completed stream fn runs immediately.
func (s *Stream[T]) OnComplete(fn func()) ports.Subscription {
	sub := &subscriber[T]{complete: fn}

	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		fn()
		return &subscription[T]{stream: s, sub: sub}
	}
	s.onDone = append(s.onDone, sub)
	s.mu.Unlock()
	return &subscription[T]{stream: s, sub: sub}
}

// Complete terminates the stream and fires completion callbacks. Idempotent.
func (s *Stream[T]) Complete() {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.done = true
	callbacks := s.onDone
	s.subs = nil
	s.onDone = nil
	s.mu.Unlock()

	for _, sub := range callbacks {
		if !sub.removed && sub.complete != nil {
			sub.complete()
		}
	}
}

type subscription[T any] struct {
	stream *Stream[T]
	sub    *subscriber[T]
	once   sync.Once
}

// Unsubscribe removes the subscriber. Safe to call more than once.
func (u *subscription[T]) Unsubscribe() {
	u.once.Do(func() {
		u.stream.mu.Lock()
		u.sub.removed = true
		u.stream.compact()
		u.stream.mu.Unlock()
	})
}

// compact drops removed subscribers. Caller holds mu.
func (s *Stream[T]) compact() {
	live := s.subs[:0]
	for _, sub := range s.subs {
		if !sub.removed {
			live = append(live, sub)
		}
	}
	s.subs = live
}
