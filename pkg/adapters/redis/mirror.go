// Package redis mirrors an observable collection into Redis, so detached
// consumers (dashboards, other processes) can read the latest state and a
// bounded journal of recent changes without subscribing in-process.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/bine/internal/logging"
	"github.com/aretw0/bine/pkg/domain"
	"github.com/aretw0/bine/pkg/ports"
)

const defaultJournalLen = 100

// Mirror maintains three keys per collection under a common prefix:
// "<prefix><name>" holds the latest snapshot as a JSON array,
// "<prefix><name>:revision" counts applied mutations,
// "<prefix><name>:journal" holds the most recent change events as JSON.
type Mirror struct {
	client     *backend.Client
	name       string
	prefix     string
	ttl        time.Duration
	journalLen int64
	logger     *slog.Logger
}

// Option configures a Mirror.
type Option func(*Mirror)

// WithTTL sets the expiration for the snapshot key.
func WithTTL(ttl time.Duration) Option {
	return func(m *Mirror) {
		m.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(m *Mirror) {
		m.prefix = prefix
	}
}

// WithJournalLen caps the change journal (default 100, 0 disables it).
func WithJournalLen(n int64) Option {
	return func(m *Mirror) {
		m.journalLen = n
	}
}

// WithLogger sets the logger used to report write failures, which are
// otherwise swallowed because subscribers cannot surface errors.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Mirror) {
		m.logger = logger
	}
}

// NewFromClient creates a Mirror for the named collection on an existing client.
func NewFromClient(client *backend.Client, name string, opts ...Option) *Mirror {
	m := &Mirror{
		client:     client,
		name:       name,
		prefix:     "bine:collection:",
		journalLen: defaultJournalLen,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Mirror) key() string         { return m.prefix + m.name }
func (m *Mirror) revisionKey() string { return m.prefix + m.name + ":revision" }
func (m *Mirror) journalKey() string  { return m.prefix + m.name + ":journal" }

// Revision returns the number of mutations mirrored so far.
func (m *Mirror) Revision(ctx context.Context) (int64, error) {
	n, err := m.client.Get(ctx, m.revisionKey()).Int64()
	if err == backend.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read revision: %w", err)
	}
	return n, nil
}

// Source is the view of an observable collection a Mirror consumes.
// *bine.Collection satisfies it.
type Source[T any] interface {
	Value() []T
	SubscribeChanges(handler func(domain.Change[T])) ports.Subscription
	SubscribeSnapshots(handler func([]T)) ports.Subscription
}

// Attach seeds the snapshot key from src's current value, then keeps the keys
// in sync with every mutation. ctx bounds the Redis writes issued from the
// subscriber callbacks. Detach with the returned subscription.
//
// Writes happen inline on the mutating goroutine, so a slow Redis round trip
// slows mutators; use a short ctx deadline or a dedicated client when that
// matters.
func Attach[T any](ctx context.Context, m *Mirror, src Source[T]) (ports.Subscription, error) {
	if err := m.writeSnapshot(ctx, src.Value()); err != nil {
		return nil, err
	}

	snapshots := src.SubscribeSnapshots(func(s []T) {
		if err := m.writeSnapshot(ctx, s); err != nil {
			m.logger.Error("failed to mirror snapshot", "error", err, "collection", m.name)
			return
		}
		if err := m.client.Incr(ctx, m.revisionKey()).Err(); err != nil {
			m.logger.Error("failed to bump revision", "error", err, "collection", m.name)
		}
	})
	changes := src.SubscribeChanges(func(c domain.Change[T]) {
		if m.journalLen == 0 {
			return
		}
		data, err := json.Marshal(c)
		if err != nil {
			m.logger.Error("failed to marshal change", "error", err, "collection", m.name)
			return
		}
		pipe := m.client.Pipeline()
		pipe.RPush(ctx, m.journalKey(), data)
		pipe.LTrim(ctx, m.journalKey(), -m.journalLen, -1)
		if _, err := pipe.Exec(ctx); err != nil {
			m.logger.Error("failed to journal change", "error", err, "collection", m.name)
		}
	})
	return detach{changes, snapshots}, nil
}

// Load reads the mirrored snapshot. A missing key yields an empty sequence.
func Load[T any](ctx context.Context, m *Mirror) ([]T, error) {
	data, err := m.client.Get(ctx, m.key()).Bytes()
	if err == backend.Nil {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read mirrored snapshot: %w", err)
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode mirrored snapshot: %w", err)
	}
	return out, nil
}

// Journal reads the mirrored change events, oldest first.
func Journal[T any](ctx context.Context, m *Mirror) ([]domain.Change[T], error) {
	raw, err := m.client.LRange(ctx, m.journalKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	out := make([]domain.Change[T], 0, len(raw))
	for _, item := range raw {
		var c domain.Change[T]
		if err := json.Unmarshal([]byte(item), &c); err != nil {
			return nil, fmt.Errorf("failed to decode journal entry: %w", err)
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *Mirror) writeSnapshot(ctx context.Context, snapshot any) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return m.client.Set(ctx, m.key(), data, m.ttl).Err()
}

type detach []ports.Subscription

func (d detach) Unsubscribe() {
	for _, s := range d {
		s.Unsubscribe()
	}
}
