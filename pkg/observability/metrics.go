package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/bine/pkg/domain"
	"github.com/aretw0/bine/pkg/ports"
)

// Source is the view of an observable collection the observers need.
// *bine.Collection satisfies it.
type Source[T any] interface {
	SubscribeChanges(handler func(domain.Change[T])) ports.Subscription
	SubscribeSnapshots(handler func([]T)) ports.Subscription
}

// Metrics holds the Prometheus series exported for one collection.
type Metrics struct {
	Mutations prometheus.Counter
	Edits     *prometheus.CounterVec
	Length    prometheus.Gauge
}

// NewMetrics creates and registers the collection metrics on reg.
// name labels the series so several collections can share a registry.
func NewMetrics(reg prometheus.Registerer, name string) *Metrics {
	m := &Metrics{
		Mutations: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "bine_mutations_total",
			Help:        "Total number of mutating operations applied to the collection",
			ConstLabels: prometheus.Labels{"collection": name},
		}),
		Edits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "bine_edits_total",
			Help:        "Total number of primitive edits, by kind",
			ConstLabels: prometheus.Labels{"collection": name},
		}, []string{"kind"}),
		Length: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "bine_collection_length",
			Help:        "Current number of elements in the collection",
			ConstLabels: prometheus.Labels{"collection": name},
		}),
	}
	reg.MustRegister(m.Mutations, m.Edits, m.Length)
	return m
}

// BindMetrics subscribes m to src. Each change event counts as one mutation
// and its primitive edits are counted by kind; each snapshot updates the
// length gauge. Unsubscribe both with the returned subscription.
func BindMetrics[T any](m *Metrics, src Source[T]) ports.Subscription {
	changes := src.SubscribeChanges(func(c domain.Change[T]) {
		m.Mutations.Inc()
		for _, edit := range c.Flatten() {
			m.Edits.WithLabelValues(string(edit.Kind)).Inc()
		}
	})
	snapshots := src.SubscribeSnapshots(func(s []T) {
		m.Length.Set(float64(len(s)))
	})
	return group{changes, snapshots}
}

type group []ports.Subscription

func (g group) Unsubscribe() {
	for _, s := range g {
		s.Unsubscribe()
	}
}
