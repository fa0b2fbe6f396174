package http_test

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/bine"
	httpadapter "github.com/aretw0/bine/pkg/adapters/http"
)

func TestElements_ReturnsSnapshot(t *testing.T) {
	c := bine.New([]string{"a", "b"})
	defer c.Close()
	h := httpadapter.NewHandler[string](c, nil)

	req := httptest.NewRequest(nethttp.MethodGet, "/elements", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, nethttp.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var got []string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestMetrics_Exposed(t *testing.T) {
	c := bine.New([]int{})
	defer c.Close()
	h := httpadapter.NewHandler[int](c, nil)

	req := httptest.NewRequest(nethttp.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, nethttp.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "go_goroutines", "default registry exposition")
}

func TestEvents_StreamsChanges(t *testing.T) {
	c := bine.New([]string{})
	h := httpadapter.NewHandler[string](c, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req := httptest.NewRequest(nethttp.MethodGet, "/events", nil).WithContext(ctx)
	w := newFrameRecorder()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.ServeHTTP(w, req)
	}()

	// The subscription is established asynchronously; keep nudging the
	// collection until a frame arrives.
	var frame string
	require.Eventually(t, func() bool {
		if err := c.Append("x"); err != nil {
			return false
		}
		select {
		case frame = <-w.frames:
			return true
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)

	assert.True(t, strings.HasPrefix(frame, "event: change\n"), "frame = %q", frame)
	assert.Contains(t, frame, `"kind":"insert"`)
	assert.Contains(t, frame, `"value":"x"`)

	// Closing the collection terminates the feed with a completion frame.
	require.NoError(t, c.Close())
	deadline := time.After(2 * time.Second)
	for {
		select {
		case f := <-w.frames:
			if strings.HasPrefix(f, "event: complete\n") {
				wg.Wait()
				return
			}
		case <-deadline:
			t.Fatal("no completion frame before deadline")
		}
	}
}

// frameRecorder is a minimal streaming ResponseWriter: every Write lands as
// one frame on a channel.
type frameRecorder struct {
	header nethttp.Header
	frames chan string
}

func newFrameRecorder() *frameRecorder {
	return &frameRecorder{header: make(nethttp.Header), frames: make(chan string, 64)}
}

func (f *frameRecorder) Header() nethttp.Header { return f.header }
func (f *frameRecorder) WriteHeader(int)        {}
func (f *frameRecorder) Flush()                 {}
func (f *frameRecorder) Write(p []byte) (int, error) {
	f.frames <- string(p)
	return len(p), nil
}
