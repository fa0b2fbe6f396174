package ports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStreamContract runs a suite of tests to verify that a Stream
// implementation adheres to the interface contract. newStream must return a
// fresh, uncompleted stream per call.
func RunStreamContract(t *testing.T, newStream func() Stream[int]) {
	t.Run("Delivery Order", func(t *testing.T) {
		s := newStream()
		var got []int
		s.Subscribe(func(v int) { got = append(got, v) })

		for i := 0; i < 5; i++ {
			s.Publish(i)
		}
		assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
	})

	t.Run("Multicast", func(t *testing.T) {
		s := newStream()
		var a, b []int
		s.Subscribe(func(v int) { a = append(a, v) })
		s.Subscribe(func(v int) { b = append(b, v) })

		s.Publish(7)
		assert.Equal(t, []int{7}, a)
		assert.Equal(t, []int{7}, b)
	})

	t.Run("No Replay To Late Subscribers", func(t *testing.T) {
		s := newStream()
		s.Publish(1)
		s.Publish(2)

		var got []int
		s.Subscribe(func(v int) { got = append(got, v) })
		s.Publish(3)
		assert.Equal(t, []int{3}, got, "late subscriber must only see future events")
	})

	t.Run("Unsubscribe", func(t *testing.T) {
		s := newStream()
		var got []int
		sub := s.Subscribe(func(v int) { got = append(got, v) })

		s.Publish(1)
		sub.Unsubscribe()
		sub.Unsubscribe() // idempotent
		s.Publish(2)
		assert.Equal(t, []int{1}, got)
	})

	t.Run("Completion", func(t *testing.T) {
		s := newStream()
		var events []int
		completed := 0
		s.Subscribe(func(v int) { events = append(events, v) })
		s.OnComplete(func() { completed++ })

		s.Publish(1)
		s.Complete()
		s.Complete() // idempotent
		s.Publish(2) // dropped

		require.Equal(t, []int{1}, events)
		assert.Equal(t, 1, completed, "completion callback fires exactly once")
	})

	t.Run("Late Subscriber After Completion", func(t *testing.T) {
		s := newStream()
		s.Complete()

		ran := false
		s.Subscribe(func(int) { ran = true })
		s.Publish(1)
		assert.False(t, ran, "handler must never run on a completed stream")

		notified := false
		s.OnComplete(func() { notified = true })
		assert.True(t, notified, "late completion callback fires immediately")
	})
}
