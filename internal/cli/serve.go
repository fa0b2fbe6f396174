package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/bine"
	"github.com/aretw0/bine/internal/logging"
	"github.com/aretw0/bine/internal/script"
	httpadapter "github.com/aretw0/bine/pkg/adapters/http"
	"github.com/aretw0/bine/pkg/observability"
)

// ServeOptions contains the configuration for the serve command.
type ServeOptions struct {
	ScriptPath string
	Addr       string
	Interval   time.Duration
	Debug      bool
}

// Serve runs a script step by step while exposing the collection over HTTP
// (snapshot, SSE change feed, Prometheus metrics). It blocks until the script
// finishes and an interrupt arrives.
func Serve(opts ServeOptions) error {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	logger := logging.New(level)

	s, err := script.Load(opts.ScriptPath)
	if err != nil {
		return err
	}

	c := bine.New(s.Initial, bine.WithLogger[string](logger))
	defer c.Close()

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer, "demo")
	observability.BindMetrics[string](metrics, c)
	observability.BindTrace[string](logger, c)

	srv := &http.Server{
		Addr:    opts.Addr,
		Handler: httpadapter.NewHandler[string](c, logger),
	}
	go func() {
		logger.Info("serving collection", "addr", opts.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	for i, op := range s.Ops {
		select {
		case <-sigChan:
			logger.Info("interrupted, shutting down")
			return shutdown(srv, c)
		case <-ticker.C:
			if err := op.Run(c); err != nil {
				shutdownErr := shutdown(srv, c)
				if shutdownErr != nil {
					logger.Error("shutdown failed", "error", shutdownErr)
				}
				return fmt.Errorf("op %d (%s): %w", i, op.Do, err)
			}
		}
	}

	logger.Info("script finished, waiting for interrupt")
	<-sigChan
	return shutdown(srv, c)
}

func shutdown(srv *http.Server, c *bine.Collection[string]) error {
	// Close first so SSE clients get the completion frame before the
	// listener goes away.
	if err := c.Close(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
