package infra

import (
	"context"
	"errors"

	"click-gateway/middleware/clickgate/domain"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusStatsStore expõe os eventos do gate como contadores Prometheus.
//
// Labels: event (navigation|block), outcome (allowed|denied|blocked), trigger.
// A chave do visitante nunca vira label (cardinalidade).
type PrometheusStatsStore struct {
	events *prometheus.CounterVec
}

func NewPrometheusStatsStore(reg prometheus.Registerer, namespace string) (*PrometheusStatsStore, error) {
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_total",
		Help:      "Navigation decisions and block transitions made by the click gate.",
	}, []string{"event", "outcome", "trigger"})

	if err := reg.Register(events); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, err
		}
		events = existing
	}
	return &PrometheusStatsStore{events: events}, nil
}

func (s *PrometheusStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	trigger := string(ev.Trigger)
	if ev.Kind == domain.EventBlock {
		trigger = ""
	}
	s.events.WithLabelValues(string(ev.Kind), eventField(ev), trigger).Inc()
	return nil
}

func (s *PrometheusStatsStore) Collector() *prometheus.CounterVec { return s.events }
