// Package cli implements the command logic for the bine demo binary.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/bine"
	"github.com/aretw0/bine/internal/logging"
	"github.com/aretw0/bine/internal/script"
	"github.com/aretw0/bine/pkg/adapters/redis"
)

// ReplayOptions contains the configuration for the replay command.
type ReplayOptions struct {
	ScriptPath string
	RedisAddr  string // optional; mirrors the collection when set
	Debug      bool
	NoColor    bool
}

// Replay loads a script, runs it against a fresh collection, and prints the
// event trace.
func Replay(opts ReplayOptions) error {
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

	printer := NewPrinter(opts.NoColor)
	c.SubscribeChanges(printer.Change)
	c.SubscribeSnapshots(printer.Snapshot)

	if opts.RedisAddr != "" {
		client := backend.NewClient(&backend.Options{Addr: opts.RedisAddr})
		defer client.Close()

		mirror := redis.NewFromClient(client, "replay", redis.WithLogger(logger))
		if _, err := redis.Attach[string](context.Background(), mirror, c); err != nil {
			return fmt.Errorf("failed to attach redis mirror: %w", err)
		}
		logger.Info("mirroring to redis", "addr", opts.RedisAddr)
	}

	for i, op := range s.Ops {
		if err := op.Run(c); err != nil {
			return fmt.Errorf("op %d (%s): %w", i, op.Do, err)
		}
	}

	fmt.Println("final:", c.Value())
	return nil
}
