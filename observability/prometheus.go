package observability

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusObserver turns events into metrics: a counter per event type,
// a counter per action outcome (events carrying KeyAction and KeyStatus),
// and a duration histogram per event type (events carrying KeyDuration in
// milliseconds).
type PrometheusObserver struct {
	events   *prometheus.CounterVec
	outcomes *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewPrometheusObserver creates the collectors under namespace and
// registers them with reg.
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	o := &PrometheusObserver{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Total number of events emitted, by type.",
			},
			[]string{"type"},
		),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "action_outcomes_total",
				Help:      "Total number of action outcomes, by action and status.",
			},
			[]string{"action", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "event_duration_seconds",
				Help:      "Duration reported by timed events, by type.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"type"},
		),
	}

	for _, c := range []prometheus.Collector{o.events, o.outcomes, o.duration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}
	return o, nil
}

func (o *PrometheusObserver) OnEvent(_ context.Context, event Event) {
	typ := string(event.Type)
	o.events.WithLabelValues(typ).Inc()

	action, hasAction := event.Data[KeyAction].(string)
	status, hasStatus := event.Data[KeyStatus].(string)
	if hasAction && hasStatus {
		o.outcomes.WithLabelValues(action, status).Inc()
	}

	if d, ok := durationOf(event.Data[KeyDuration]); ok {
		o.duration.WithLabelValues(typ).Observe(d.Seconds())
	}
}

func durationOf(v any) (time.Duration, bool) {
	switch ms := v.(type) {
	case int64:
		return time.Duration(ms) * time.Millisecond, true
	case int:
		return time.Duration(ms) * time.Millisecond, true
	case float64:
		return time.Duration(ms * float64(time.Millisecond)), true
	}
	return 0, false
}
