/*
Package ports defines the driven ports (interfaces) for the Bine collection.

These interfaces decouple the collection from the publish/subscribe substrate
that delivers its notifications, allowing it to be layered on top of any
concurrency-safe multicast implementation.

# Key Interfaces

  - Stream: A multicast event channel with explicit completion. Nothing is
    replayed to late subscribers.
  - Subscription: A handle for detaching a single subscriber.
*/
package ports
