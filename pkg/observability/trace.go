package observability

import (
	"log/slog"

	"github.com/aretw0/bine/pkg/domain"
	"github.com/aretw0/bine/pkg/ports"
)

// BindTrace logs every change emitted by src at Info level, one line per
// mutation with the primitive edit count, plus the resulting length from the
// snapshot stream at Debug level.
func BindTrace[T any](logger *slog.Logger, src Source[T]) ports.Subscription {
	changes := src.SubscribeChanges(func(c domain.Change[T]) {
		logger.Info("collection changed",
			"kind", string(c.Kind),
			"edits", len(c.Flatten()),
		)
	})
	snapshots := src.SubscribeSnapshots(func(s []T) {
		logger.Debug("snapshot", "len", len(s))
	})
	return group{changes, snapshots}
}
