package domain

// ChangeKind defines the category of a change.
type ChangeKind string

const (
	ChangeInsert    ChangeKind = "insert"
	ChangeRemove    ChangeKind = "remove"
	ChangeComposite ChangeKind = "composite"
)

// Change describes one mutation of an observable collection.
// It is a tagged variant: Insert and Remove carry an index and the element
// at that index, Composite carries an ordered batch of edits that occurred
// as one logical operation.
//
// Indices are valid at the instant the edit describes: for N sequential tail
// insertions the i-th edit carries index lengthBefore+i; for a full clearance
// the i-th edit carries index i in the pre-removal ordering.
type Change[T any] struct {
	Kind  ChangeKind  `json:"kind"`
	Index int         `json:"index,omitempty"`
	Value T           `json:"value,omitempty"`
	Edits []Change[T] `json:"edits,omitempty"`
}

// NewInsert builds an insertion edit at index.
func NewInsert[T any](index int, value T) Change[T] {
	return Change[T]{Kind: ChangeInsert, Index: index, Value: value}
}

// NewRemove builds a removal edit at index, carrying the removed element.
func NewRemove[T any](index int, value T) Change[T] {
	return Change[T]{Kind: ChangeRemove, Index: index, Value: value}
}

// NewComposite builds a batch of edits, in the exact order they occurred.
// An empty batch is valid (e.g., clearing an already-empty collection).
func NewComposite[T any](edits ...Change[T]) Change[T] {
	return Change[T]{Kind: ChangeComposite, Edits: edits}
}

// Flatten returns the primitive edits of c in order.
// A primitive change yields itself; a Composite yields its edits, recursively.
func (c Change[T]) Flatten() []Change[T] {
	if c.Kind != ChangeComposite {
		return []Change[T]{c}
	}
	out := make([]Change[T], 0, len(c.Edits))
	for _, e := range c.Edits {
		out = append(out, e.Flatten()...)
	}
	return out
}

// Apply replays change onto snapshot and returns the resulting sequence.
// The input slice is not modified. It is the incremental-consumer helper:
// applying an emitted change to the previously observed snapshot reproduces
// the next snapshot, for every change whose edits carry indices valid at
// application time (single edits, append batches, in-place replacements).
//
// Composites whose indices describe a pre-mutation ordering (full clearance)
// do not replay edit-by-edit; Apply returns ErrIndexOutOfRange for those, as
// it does for any edit that does not fit the sequence it is applied to.
func Apply[T any](snapshot []T, change Change[T]) ([]T, error) {
	out := make([]T, len(snapshot))
	copy(out, snapshot)

	for _, edit := range change.Flatten() {
		switch edit.Kind {
		case ChangeInsert:
			if edit.Index < 0 || edit.Index > len(out) {
				return nil, ErrIndexOutOfRange
			}
			out = append(out, *new(T))
			copy(out[edit.Index+1:], out[edit.Index:])
			out[edit.Index] = edit.Value
		case ChangeRemove:
			if edit.Index < 0 || edit.Index >= len(out) {
				return nil, ErrIndexOutOfRange
			}
			out = append(out[:edit.Index], out[edit.Index+1:]...)
		}
	}
	return out, nil
}
