// Package http exposes a read-only binding surface for an observable
// collection: the current snapshot as JSON, a Server-Sent Events feed of
// change events for browser list views, and Prometheus metrics.
package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/bine/internal/logging"
	"github.com/aretw0/bine/pkg/domain"
	"github.com/aretw0/bine/pkg/ports"
)

// Source is the view of an observable collection the handler serves.
// *bine.Collection satisfies it.
type Source[T any] interface {
	Value() []T
	SubscribeChanges(handler func(domain.Change[T])) ports.Subscription
	OnClose(fn func()) ports.Subscription
}

// Server serves one collection.
type Server[T any] struct {
	source Source[T]
	logger *slog.Logger
}

// NewHandler creates an HTTP handler for src.
//
//	GET /elements  -> JSON array, the current snapshot
//	GET /events    -> SSE feed, one "change" event per mutation
//	GET /metrics   -> Prometheus exposition (default registry)
func NewHandler[T any](src Source[T], logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	server := &Server[T]{source: src, logger: logger}

	r := chi.NewRouter()
	r.Get("/elements", server.Elements)
	r.Get("/events", server.Events)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Elements handles GET /elements.
func (s *Server[T]) Elements(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.source.Value()); err != nil {
		s.logger.Error("failed to encode snapshot", "error", err)
	}
}

// Events handles GET /events. The stream stays open until the client goes
// away or the collection closes. Events a slow client cannot keep up with are
// dropped rather than blocking the mutating goroutine.
func (s *Server[T]) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	feed := make(chan []byte, 64)
	closed := make(chan struct{})

	sub := s.source.SubscribeChanges(func(c domain.Change[T]) {
		data, err := json.Marshal(c)
		if err != nil {
			s.logger.Error("failed to encode change", "error", err)
			return
		}
		select {
		case feed <- data:
		default:
			s.logger.Warn("dropping change event for slow client")
		}
	})
	defer sub.Unsubscribe()

	done := s.source.OnClose(func() { close(closed) })
	defer done.Unsubscribe()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-closed:
			fmt.Fprint(w, "event: complete\ndata: {}\n\n")
			flusher.Flush()
			return
		case data := <-feed:
			fmt.Fprintf(w, "event: change\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}
