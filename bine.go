package bine

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/bine/internal/logging"
	"github.com/aretw0/bine/pkg/adapters/memory"
	"github.com/aretw0/bine/pkg/domain"
	"github.com/aretw0/bine/pkg/ports"
)

// Version is the current release of the library.
var Version = "0.3.0"

// Collection is an observable, mutable ordered sequence of T.
//
// All mutating operations are safe for concurrent use and are serialized by
// an internal guard. Emission is queue-and-drain: the edit is applied and its
// (change, snapshot) pair is enqueued under the guard, then pairs are
// delivered in FIFO order outside it. This keeps subscriber callbacks free to
// mutate the collection re-entrantly without deadlocking, at the cost that a
// mutator may return before its own pair was delivered when another goroutine
// is mid-drain. Pairs are never interleaved: every change event is followed
// by its snapshot before the next pair begins.
type Collection[T any] struct {
	mu       sync.Mutex
	elements []T
	queue    []emission[T]
	draining bool
	closed   bool

	changes   ports.Stream[domain.Change[T]]
	snapshots ports.Stream[[]T]
	logger    *slog.Logger
}

type emission[T any] struct {
	change   domain.Change[T]
	snapshot []T
}

// Option defines a functional option for configuring a Collection.
type Option[T any] func(*Collection[T])

// WithChangeStream injects a custom change stream, bypassing the default
// in-memory multicast implementation.
func WithChangeStream[T any](s ports.Stream[domain.Change[T]]) Option[T] {
	return func(c *Collection[T]) {
		c.changes = s
	}
}

// WithSnapshotStream injects a custom snapshot stream.
func WithSnapshotStream[T any](s ports.Stream[[]T]) Option[T] {
	return func(c *Collection[T]) {
		c.snapshots = s
	}
}

// WithLogger sets a custom structured logger for the collection.
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(c *Collection[T]) {
		c.logger = logger
	}
}

// New creates a Collection holding a copy of initial (which may be empty) and
// immediately publishes the initial Composite of Insert events followed by
// the initial snapshot. Never fails.
//
// Subscribers attached to injected streams before New is called observe the
// initial emission; the default streams necessarily have no subscribers yet.
func New[T any](initial []T, opts ...Option[T]) *Collection[T] {
	c := &Collection[T]{
		elements: append([]T(nil), initial...),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.changes == nil {
		c.changes = memory.NewStream[domain.Change[T]]()
	}
	if c.snapshots == nil {
		c.snapshots = memory.NewStream[[]T]()
	}

	edits := make([]domain.Change[T], len(c.elements))
	for i, v := range c.elements {
		edits[i] = domain.NewInsert(i, v)
	}

	c.mu.Lock()
	c.enqueueLocked(domain.NewComposite(edits...))
	c.startDrainLocked()
	return c
}

// Value returns a copy of the current ordered contents.
func (c *Collection[T]) Value() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyLocked()
}

// Len returns the current number of elements.
func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.elements)
}

// SubscribeChanges registers handler for future change events.
func (c *Collection[T]) SubscribeChanges(handler func(domain.Change[T])) ports.Subscription {
	return c.changes.Subscribe(handler)
}

// SubscribeSnapshots registers handler for future snapshots.
func (c *Collection[T]) SubscribeSnapshots(handler func([]T)) ports.Subscription {
	return c.snapshots.Subscribe(handler)
}

// OnClose registers fn to run once both streams terminate.
func (c *Collection[T]) OnClose(fn func()) ports.Subscription {
	return c.changes.OnComplete(fn)
}

// Append adds value at the tail. Emits Insert(newLastIndex, value).
func (c *Collection[T]) Append(value T) error {
	return c.mutate(func() (domain.Change[T], bool, error) {
		c.elements = append(c.elements, value)
		return domain.NewInsert(len(c.elements)-1, value), true, nil
	})
}

// AppendAll adds each value at the tail, preserving order. Emits a Composite
// of Insert(baseIndex+i, value_i).
func (c *Collection[T]) AppendAll(values ...T) error {
	return c.mutate(func() (domain.Change[T], bool, error) {
		base := len(c.elements)
		edits := make([]domain.Change[T], len(values))
		for i, v := range values {
			edits[i] = domain.NewInsert(base+i, v)
		}
		c.elements = append(c.elements, values...)
		return domain.NewComposite(edits...), true, nil
	})
}

// Insert places value at index, shifting the tail right. Valid indices are
// 0 through Len() inclusive; anything else fails with
// domain.ErrIndexOutOfRange and emits nothing.
func (c *Collection[T]) Insert(value T, index int) error {
	return c.mutate(func() (domain.Change[T], bool, error) {
		if index < 0 || index > len(c.elements) {
			return domain.Change[T]{}, false, fmt.Errorf("insert at %d with length %d: %w",
				index, len(c.elements), domain.ErrIndexOutOfRange)
		}
		var zero T
		c.elements = append(c.elements, zero)
		copy(c.elements[index+1:], c.elements[index:])
		c.elements[index] = value
		return domain.NewInsert(index, value), true, nil
	})
}

// RemoveFirst drops the element at index 0. A silent no-op on an empty
// collection: nothing is emitted and no error is returned.
func (c *Collection[T]) RemoveFirst() error {
	return c.mutate(func() (domain.Change[T], bool, error) {
		if len(c.elements) == 0 {
			return domain.Change[T]{}, false, nil
		}
		value := c.elements[0]
		c.elements = c.elements[1:]
		return domain.NewRemove(0, value), true, nil
	})
}

// RemoveLast drops the element at the last index. A silent no-op on an empty
// collection.
func (c *Collection[T]) RemoveLast() error {
	return c.mutate(func() (domain.Change[T], bool, error) {
		if len(c.elements) == 0 {
			return domain.Change[T]{}, false, nil
		}
		last := len(c.elements) - 1
		value := c.elements[last]
		c.elements = c.elements[:last]
		return domain.NewRemove(last, value), true, nil
	})
}

// RemoveAll clears the collection. Emits a Composite of Remove(i, value_i)
// for every prior element, in the original (pre-removal) ordering.
func (c *Collection[T]) RemoveAll() error {
	return c.mutate(func() (domain.Change[T], bool, error) {
		edits := make([]domain.Change[T], len(c.elements))
		for i, v := range c.elements {
			edits[i] = domain.NewRemove(i, v)
		}
		c.elements = nil
		return domain.NewComposite(edits...), true, nil
	})
}

// RemoveAt drops the element at index. Valid indices are 0 through Len()-1;
// anything else fails with domain.ErrIndexOutOfRange and emits nothing.
func (c *Collection[T]) RemoveAt(index int) error {
	return c.mutate(func() (domain.Change[T], bool, error) {
		if index < 0 || index >= len(c.elements) {
			return domain.Change[T]{}, false, fmt.Errorf("remove at %d with length %d: %w",
				index, len(c.elements), domain.ErrIndexOutOfRange)
		}
		value := c.elements[index]
		c.elements = append(c.elements[:index], c.elements[index+1:]...)
		return domain.NewRemove(index, value), true, nil
	})
}

// Replace overwrites len(values) contiguous elements starting at start, one
// at a time, left to right. Requires start >= 0 and start+len(values) <=
// Len(); anything else fails with domain.ErrIndexOutOfRange and emits
// nothing. Emits a Composite alternating Remove(i, old_i), Insert(i, new_i)
// per overwritten position.
func (c *Collection[T]) Replace(start int, values []T) error {
	return c.mutate(func() (domain.Change[T], bool, error) {
		if start < 0 || start+len(values) > len(c.elements) {
			return domain.Change[T]{}, false, fmt.Errorf("replace [%d,%d) with length %d: %w",
				start, start+len(values), len(c.elements), domain.ErrIndexOutOfRange)
		}
		edits := make([]domain.Change[T], 0, 2*len(values))
		for i, v := range values {
			at := start + i
			edits = append(edits, domain.NewRemove(at, c.elements[at]), domain.NewInsert(at, v))
			c.elements[at] = v
		}
		return domain.NewComposite(edits...), true, nil
	})
}

// Set replaces the entire backing sequence in one step. It emits a Composite
// of Insert events describing every element of the new sequence at its
// tail-order index; no Remove events are emitted for the previous contents.
// Incremental consumers that replay changes must treat it as a reset.
func (c *Collection[T]) Set(values []T) error {
	return c.mutate(func() (domain.Change[T], bool, error) {
		c.elements = append([]T(nil), values...)
		edits := make([]domain.Change[T], len(c.elements))
		for i, v := range c.elements {
			edits[i] = domain.NewInsert(i, v)
		}
		return domain.NewComposite(edits...), true, nil
	})
}

// Close terminates both streams. Pending emissions are still delivered, then
// subscribers receive the completion signal and late subscribers observe only
// termination. Further mutations fail with domain.ErrCollectionClosed.
// Idempotent.
func (c *Collection[T]) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.logger.Debug("collection closed", "len", len(c.elements))
	c.startDrainLocked()
	return nil
}

// mutate runs fn under the guard. fn edits c.elements and returns the change
// to emit; emit=false means no-op (nothing delivered).
func (c *Collection[T]) mutate(fn func() (domain.Change[T], bool, error)) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ErrCollectionClosed
	}
	change, emit, err := fn()
	if err != nil || !emit {
		c.mu.Unlock()
		return err
	}
	c.logger.Debug("mutation applied", "kind", string(change.Kind), "len", len(c.elements))
	c.enqueueLocked(change)
	c.startDrainLocked()
	return nil
}

// enqueueLocked pairs change with the current snapshot. Caller holds the guard.
func (c *Collection[T]) enqueueLocked(change domain.Change[T]) {
	c.queue = append(c.queue, emission[T]{change: change, snapshot: c.copyLocked()})
}

// startDrainLocked releases the guard and, unless a drain is already in
// flight, delivers queued pairs in FIFO order. A re-entrant mutation from a
// subscriber callback lands on the queue and is picked up by the in-flight
// drainer, preserving global mutation order.
func (c *Collection[T]) startDrainLocked() {
	if c.draining {
		c.mu.Unlock()
		return
	}
	c.draining = true
	c.mu.Unlock()

	for {
		c.mu.Lock()
		if len(c.queue) == 0 {
			closed := c.closed
			c.draining = false
			c.mu.Unlock()
			if closed {
				c.changes.Complete()
				c.snapshots.Complete()
			}
			return
		}
		next := c.queue[0]
		c.queue = c.queue[1:]
		c.mu.Unlock()

		c.changes.Publish(next.change)
		c.snapshots.Publish(next.snapshot)
	}
}

// copyLocked returns a non-nil copy of the elements. Caller holds the guard.
func (c *Collection[T]) copyLocked() []T {
	out := make([]T, len(c.elements))
	copy(out, c.elements)
	return out
}
