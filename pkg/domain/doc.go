/*
Package domain contains the core domain models for the Bine collection.

It defines the change vocabulary emitted by an observable collection: single
insertions, single removals, and composite batches of such edits. This package
is kept pure and free of external dependencies like I/O or persistence,
following Hexagonal Architecture principles.

# Key Entities

  - Change: A tagged description of one mutation (Insert, Remove, or Composite).
  - Apply: A helper that replays a Change onto a snapshot, for incremental consumers.
*/
package domain
