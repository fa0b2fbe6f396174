package ports

// Stream is a multicast event channel owned by a single publisher.
//
// Implementations must deliver events to every active subscriber in the order
// Publish was called, must support multiple concurrent subscribers, and must
// not replay past events to late subscribers. Delivery is synchronous: Publish
// returns after every handler has run.
type Stream[T any] interface {
	// Publish delivers event to all current subscribers. After Complete it is
	// a no-op.
	Publish(event T)

	// Subscribe registers handler for future events. Subscribing to a
	// completed stream is valid but the handler never runs.
	Subscribe(handler func(T)) Subscription

	// OnComplete registers a callback invoked once when the stream
	// terminates. After completion the callback fires immediately.
	OnComplete(fn func()) Subscription

	// Complete terminates the stream. Idempotent. No events are delivered
	// afterwards; completion callbacks fire exactly once.
	Complete()
}

// Subscription detaches a subscriber from a Stream.
type Subscription interface {
	// Unsubscribe removes the subscriber. Safe to call more than once.
	Unsubscribe()
}
