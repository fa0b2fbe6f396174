package bine_test

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/aretw0/bine"
	"github.com/aretw0/bine/pkg/adapters/memory"
	"github.com/aretw0/bine/pkg/domain"
)

// recorder captures every change/snapshot pair a collection emits.
type recorder[T any] struct {
	changes   []domain.Change[T]
	snapshots [][]T
}

func record[T any](c *bine.Collection[T]) *recorder[T] {
	r := &recorder[T]{}
	c.SubscribeChanges(func(ch domain.Change[T]) { r.changes = append(r.changes, ch) })
	c.SubscribeSnapshots(func(s []T) { r.snapshots = append(r.snapshots, s) })
	return r
}

func TestCollection_InitialEmission(t *testing.T) {
	// The initial emission happens inside New, so it is only observable
	// through injected, pre-subscribed streams.
	changes := memory.NewStream[domain.Change[int]]()
	snapshots := memory.NewStream[[]int]()

	var gotChanges []domain.Change[int]
	var gotSnapshots [][]int
	changes.Subscribe(func(c domain.Change[int]) { gotChanges = append(gotChanges, c) })
	snapshots.Subscribe(func(s []int) { gotSnapshots = append(gotSnapshots, s) })

	c := bine.New([]int{10, 20},
		bine.WithChangeStream[int](changes),
		bine.WithSnapshotStream[int](snapshots))
	defer c.Close()

	want := domain.NewComposite(domain.NewInsert(0, 10), domain.NewInsert(1, 20))
	if len(gotChanges) != 1 || !reflect.DeepEqual(gotChanges[0], want) {
		t.Fatalf("initial change = %+v, want %+v", gotChanges, want)
	}
	if len(gotSnapshots) != 1 || !reflect.DeepEqual(gotSnapshots[0], []int{10, 20}) {
		t.Fatalf("initial snapshot = %v, want [10 20]", gotSnapshots)
	}
}

func TestCollection_Operations(t *testing.T) {
	tests := []struct {
		name       string
		initial    []int
		op         func(c *bine.Collection[int]) error
		want       []int
		wantChange domain.Change[int]
		wantErr    error
		wantNoOp   bool
	}{
		{
			name:       "Append",
			initial:    []int{1, 2, 3},
			op:         func(c *bine.Collection[int]) error { return c.Append(4) },
			want:       []int{1, 2, 3, 4},
			wantChange: domain.NewInsert(3, 4),
		},
		{
			name:    "AppendAll emits tail-ordered composite",
			initial: []int{1, 2},
			op:      func(c *bine.Collection[int]) error { return c.AppendAll(5, 6, 7) },
			want:    []int{1, 2, 5, 6, 7},
			wantChange: domain.NewComposite(
				domain.NewInsert(2, 5), domain.NewInsert(3, 6), domain.NewInsert(4, 7)),
		},
		{
			name:       "Insert shifts tail right",
			initial:    []int{1, 3},
			op:         func(c *bine.Collection[int]) error { return c.Insert(2, 1) },
			want:       []int{1, 2, 3},
			wantChange: domain.NewInsert(1, 2),
		},
		{
			name:       "Insert at length appends",
			initial:    []int{1},
			op:         func(c *bine.Collection[int]) error { return c.Insert(2, 1) },
			want:       []int{1, 2},
			wantChange: domain.NewInsert(1, 2),
		},
		{
			name:    "Insert beyond length fails",
			initial: []int{1},
			op:      func(c *bine.Collection[int]) error { return c.Insert(9, 3) },
			wantErr: domain.ErrIndexOutOfRange,
		},
		{
			name:       "RemoveFirst",
			initial:    []int{1, 2},
			op:         func(c *bine.Collection[int]) error { return c.RemoveFirst() },
			want:       []int{2},
			wantChange: domain.NewRemove(0, 1),
		},
		{
			name:     "RemoveFirst on empty is a silent no-op",
			initial:  nil,
			op:       func(c *bine.Collection[int]) error { return c.RemoveFirst() },
			want:     []int{},
			wantNoOp: true,
		},
		{
			name:       "RemoveLast",
			initial:    []int{1, 2},
			op:         func(c *bine.Collection[int]) error { return c.RemoveLast() },
			want:       []int{1},
			wantChange: domain.NewRemove(1, 2),
		},
		{
			name:     "RemoveLast on empty is a silent no-op",
			initial:  nil,
			op:       func(c *bine.Collection[int]) error { return c.RemoveLast() },
			want:     []int{},
			wantNoOp: true,
		},
		{
			name:    "RemoveAll uses pre-removal indices",
			initial: []int{1, 2, 3},
			op:      func(c *bine.Collection[int]) error { return c.RemoveAll() },
			want:    []int{},
			wantChange: domain.NewComposite(
				domain.NewRemove(0, 1), domain.NewRemove(1, 2), domain.NewRemove(2, 3)),
		},
		{
			name:       "RemoveAt",
			initial:    []int{1, 2, 3},
			op:         func(c *bine.Collection[int]) error { return c.RemoveAt(1) },
			want:       []int{1, 3},
			wantChange: domain.NewRemove(1, 2),
		},
		{
			name:    "RemoveAt out of bounds fails",
			initial: []int{1, 2, 3},
			op:      func(c *bine.Collection[int]) error { return c.RemoveAt(5) },
			wantErr: domain.ErrIndexOutOfRange,
		},
		{
			name:    "Replace alternates remove and insert",
			initial: []int{1, 2, 3, 4},
			op:      func(c *bine.Collection[int]) error { return c.Replace(1, []int{9, 8}) },
			want:    []int{1, 9, 8, 4},
			wantChange: domain.NewComposite(
				domain.NewRemove(1, 2), domain.NewInsert(1, 9),
				domain.NewRemove(2, 3), domain.NewInsert(2, 8)),
		},
		{
			name:    "Replace past the end fails",
			initial: []int{1, 2, 3},
			op:      func(c *bine.Collection[int]) error { return c.Replace(2, []int{9, 8}) },
			wantErr: domain.ErrIndexOutOfRange,
		},
		{
			name:    "Set emits inserts only",
			initial: []int{1, 2, 3},
			op:      func(c *bine.Collection[int]) error { return c.Set([]int{7, 8}) },
			want:    []int{7, 8},
			wantChange: domain.NewComposite(
				domain.NewInsert(0, 7), domain.NewInsert(1, 8)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := bine.New(tt.initial)
			defer c.Close()
			r := record(c)

			err := tt.op(c)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				if len(r.changes) != 0 || len(r.snapshots) != 0 {
					t.Errorf("failed operation must not emit, got %d changes %d snapshots",
						len(r.changes), len(r.snapshots))
				}
				if !reflect.DeepEqual(c.Value(), append([]int{}, tt.initial...)) {
					t.Errorf("failed operation mutated state: %v", c.Value())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.wantNoOp {
				if len(r.changes) != 0 || len(r.snapshots) != 0 {
					t.Fatalf("no-op emitted %d changes %d snapshots", len(r.changes), len(r.snapshots))
				}
				return
			}

			if len(r.changes) != 1 || len(r.snapshots) != 1 {
				t.Fatalf("want exactly one change and one snapshot, got %d and %d",
					len(r.changes), len(r.snapshots))
			}
			if !reflect.DeepEqual(r.changes[0], tt.wantChange) {
				t.Errorf("change = %+v, want %+v", r.changes[0], tt.wantChange)
			}
			if !reflect.DeepEqual(r.snapshots[0], tt.want) {
				t.Errorf("snapshot = %v, want %v", r.snapshots[0], tt.want)
			}
			if !reflect.DeepEqual(c.Value(), tt.want) {
				t.Errorf("Value() = %v, want %v", c.Value(), tt.want)
			}
		})
	}
}

// The append-then-clear walkthrough: emitted snapshots always agree with
// Value(), and composite indices describe the pre-removal ordering.
func TestCollection_AppendThenClear(t *testing.T) {
	c := bine.New([]int{1, 2, 3})
	defer c.Close()
	r := record(c)

	if err := c.Append(4); err != nil {
		t.Fatal(err)
	}
	if err := c.RemoveAll(); err != nil {
		t.Fatal(err)
	}

	wantChanges := []domain.Change[int]{
		domain.NewInsert(3, 4),
		domain.NewComposite(
			domain.NewRemove(0, 1), domain.NewRemove(1, 2),
			domain.NewRemove(2, 3), domain.NewRemove(3, 4)),
	}
	if !reflect.DeepEqual(r.changes, wantChanges) {
		t.Errorf("changes = %+v, want %+v", r.changes, wantChanges)
	}
	wantSnapshots := [][]int{{1, 2, 3, 4}, {}}
	if !reflect.DeepEqual(r.snapshots, wantSnapshots) {
		t.Errorf("snapshots = %v, want %v", r.snapshots, wantSnapshots)
	}
}

// Replaying emitted single-edit changes with domain.Apply reproduces the
// snapshot stream.
func TestCollection_ChangesReplayOntoSnapshots(t *testing.T) {
	c := bine.New([]string{"a", "b"})
	defer c.Close()
	r := record(c)

	ops := []func() error{
		func() error { return c.Append("c") },
		func() error { return c.Insert("x", 1) },
		func() error { return c.Replace(0, []string{"y"}) },
		func() error { return c.RemoveAt(2) },
		func() error { return c.RemoveLast() },
	}
	for _, op := range ops {
		if err := op(); err != nil {
			t.Fatal(err)
		}
	}

	state := []string{"a", "b"}
	for i, change := range r.changes {
		next, err := domain.Apply(state, change)
		if err != nil {
			t.Fatalf("replaying change %d: %v", i, err)
		}
		if !reflect.DeepEqual(next, r.snapshots[i]) {
			t.Errorf("replayed state %d = %v, snapshot = %v", i, next, r.snapshots[i])
		}
		state = next
	}
	if !reflect.DeepEqual(state, c.Value()) {
		t.Errorf("final replayed state %v != Value() %v", state, c.Value())
	}
}

func TestCollection_ReentrantMutation(t *testing.T) {
	c := bine.New([]int{})
	defer c.Close()

	var order []domain.Change[int]
	c.SubscribeChanges(func(ch domain.Change[int]) {
		order = append(order, ch)
		// First insertion triggers a second, from inside the callback.
		if ch.Kind == domain.ChangeInsert && ch.Value == 1 {
			if err := c.Append(2); err != nil {
				t.Errorf("re-entrant append: %v", err)
			}
		}
	})

	if err := c.Append(1); err != nil {
		t.Fatal(err)
	}

	want := []domain.Change[int]{domain.NewInsert(0, 1), domain.NewInsert(1, 2)}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("changes = %+v, want %+v", order, want)
	}
	if !reflect.DeepEqual(c.Value(), []int{1, 2}) {
		t.Errorf("Value() = %v", c.Value())
	}
}

func TestCollection_ConcurrentAppends(t *testing.T) {
	c := bine.New([]int{})
	defer c.Close()

	var mu sync.Mutex
	pairs := 0
	lastWasChange := false
	c.SubscribeChanges(func(domain.Change[int]) {
		mu.Lock()
		if lastWasChange {
			t.Error("two change events without a snapshot between them")
		}
		lastWasChange = true
		mu.Unlock()
	})
	c.SubscribeSnapshots(func([]int) {
		mu.Lock()
		if !lastWasChange {
			t.Error("snapshot without a preceding change event")
		}
		lastWasChange = false
		pairs++
		mu.Unlock()
	})

	const writers, each = 4, 25
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < each; i++ {
				if err := c.Append(i); err != nil {
					t.Errorf("append: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	// Close completion fires only after the in-flight drain finishes, so it
	// doubles as a quiescence barrier.
	done := make(chan struct{})
	c.OnClose(func() { close(done) })
	c.Close()
	<-done

	if got := len(c.Value()); got != writers*each {
		t.Errorf("len = %d, want %d", got, writers*each)
	}
	mu.Lock()
	defer mu.Unlock()
	if pairs != writers*each {
		t.Errorf("delivered pairs = %d, want %d", pairs, writers*each)
	}
}

func TestCollection_Close(t *testing.T) {
	c := bine.New([]int{1})
	r := record(c)

	completed := false
	c.OnClose(func() { completed = true })

	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if !completed {
		t.Error("completion callback did not fire")
	}

	if err := c.Append(2); !errors.Is(err, domain.ErrCollectionClosed) {
		t.Errorf("append after close: error = %v, want ErrCollectionClosed", err)
	}
	if len(r.changes) != 0 {
		t.Errorf("mutation after close emitted %d changes", len(r.changes))
	}

	// Late subscribers receive only the termination signal.
	notified := false
	c.OnClose(func() { notified = true })
	if !notified {
		t.Error("late OnClose callback did not fire immediately")
	}
}

func TestCollection_ValueIsACopy(t *testing.T) {
	c := bine.New([]int{1, 2, 3})
	defer c.Close()

	v := c.Value()
	v[0] = 99
	if !reflect.DeepEqual(c.Value(), []int{1, 2, 3}) {
		t.Errorf("external write leaked into the collection: %v", c.Value())
	}
}
