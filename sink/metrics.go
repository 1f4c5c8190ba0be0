package sink

import (
	"fmt"
	"strings"

	"github.com/abyssdigger/dbg"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	METRICS_NAMESPACE = "dbg"
	_MAX_LABEL_LENGTH = 128
)

// Metrics counts the lines a sink renders and the errors it returns, per
// namespace. Only enabled calls reach a sink, so disabled loggers cost nothing
// here.
type Metrics struct {
	next     dbg.Sink
	lines    *prometheus.CounterVec
	failures *prometheus.CounterVec
	interval *prometheus.HistogramVec
}

// NewMetrics wraps next and registers its collectors:
//   - dbg_lines_total (counter)
//   - dbg_sink_errors_total (counter)
//   - dbg_call_interval_seconds (histogram of the delay between calls)
func NewMetrics(next dbg.Sink, reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		next: next,
		lines: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: METRICS_NAMESPACE,
				Name:      "lines_total",
				Help:      "Total number of debug lines rendered",
			},
			[]string{"namespace"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: METRICS_NAMESPACE,
				Name:      "sink_errors_total",
				Help:      "Total number of debug lines the sink failed to render",
			},
			[]string{"namespace"},
		),
		interval: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: METRICS_NAMESPACE,
				Name:      "call_interval_seconds",
				Help:      "Delay between consecutive debug calls of one logger",
				Buckets:   []float64{0.001, 0.01, 0.1, 1, 10, 60},
			},
			[]string{"namespace"},
		),
	}
	for _, c := range []prometheus.Collector{m.lines, m.failures, m.interval} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register debug metric: %w", err)
		}
	}
	return m, nil
}

// Render implements dbg.Sink.
func (m *Metrics) Render(meta dbg.Meta, args []any) error {
	ns := sanitizeLabel(meta.Namespace)
	err := m.next.Render(meta, args)
	if err != nil {
		m.failures.WithLabelValues(ns).Inc()
		return err
	}
	m.lines.WithLabelValues(ns).Inc()
	if !meta.Prev.IsZero() {
		m.interval.WithLabelValues(ns).Observe(meta.Diff.Seconds())
	}
	return nil
}

// sanitizeLabel cuts a label to a bounded number of runes and replaces control
// characters that break the text exposition format.
func sanitizeLabel(value string) string {
	clean := strings.Map(func(r rune) rune {
		if r < 0x20 {
			return '_'
		}
		return r
	}, value)
	runes := []rune(clean)
	if len(runes) > _MAX_LABEL_LENGTH {
		return string(runes[:_MAX_LABEL_LENGTH])
	}
	return clean
}
