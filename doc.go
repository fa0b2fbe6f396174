/*
Package bine provides an observable, mutable ordered collection: a container
that notifies subscribers both of the complete current snapshot after any
mutation and of a fine-grained description of what changed.

It is a data-binding primitive for consumers that want to react incrementally
to collection edits without recomputing from full snapshots, such as UI list
views or incremental caches.

# Concept

A Collection owns an in-memory ordered sequence and two multicast output
streams: a snapshot stream emitting the full sequence after every mutation,
and a change stream emitting a structured diff (Insert, Remove, or a Composite
batch) per mutation. Every mutating operation emits exactly one change event
followed by exactly one snapshot, and all subscribers observe mutations in the
global mutation order. Neither stream replays past events to late subscribers.

# Key Features

  - Ordered Delivery: change/snapshot pairs are delivered in mutation order,
    never interleaved across operations.
  - Re-entrant Mutation: a subscriber callback may mutate the collection that
    is notifying it; the edit is queued and delivered in order.
  - Hexagonal Architecture: the publish/subscribe substrate is a port
    (ports.Stream); any concurrency-safe multicast implementation plugs in.
  - Incremental Consumption: domain.Apply replays emitted changes onto a
    previously observed snapshot.

# Usage

	package main

	import (
		"fmt"
		"log"

		"github.com/aretw0/bine"
		"github.com/aretw0/bine/pkg/domain"
	)

	func main() {
		list := bine.New([]string{"a", "b"})
		defer list.Close()

		list.SubscribeChanges(func(c domain.Change[string]) {
			fmt.Println("change:", c.Kind)
		})
		list.SubscribeSnapshots(func(s []string) {
			fmt.Println("now:", s)
		})

		if err := list.Append("c"); err != nil {
			log.Fatal(err)
		}
	}
*/
package bine
