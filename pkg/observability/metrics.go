package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the engine collectors.
type Metrics struct {
	Turns        *prometheus.CounterVec
	TurnDuration *prometheus.HistogramVec
	TurnErrors   *prometheus.CounterVec
	Dialogs      *prometheus.CounterVec
	ActiveTurns  prometheus.Gauge

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg gets a fresh private registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		Turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "colloquy_turns_total",
				Help: "Total number of processed turns",
			},
			[]string{"activity_type", "branch"},
		),
		TurnDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "colloquy_turn_duration_seconds",
				Help:    "Duration of turn processing, including the state commit",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"branch"},
		),
		TurnErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "colloquy_turn_errors_total",
				Help: "Total number of turns answered with an apology",
			},
			[]string{"activity_type"},
		),
		Dialogs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "colloquy_dialog_transitions_total",
				Help: "Dialog frames pushed and popped",
			},
			[]string{"dialog_id", "transition"},
		),
		ActiveTurns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "colloquy_active_turns",
			Help: "Turns currently being processed",
		}),
		gatherer: reg,
	}
	reg.MustRegister(m.Turns, m.TurnDuration, m.TurnErrors, m.Dialogs, m.ActiveTurns)
	return m
}

// Hooks records every lifecycle event of the engine.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurnStart: func(ctx context.Context, e *domain.TurnEvent) {
			m.ActiveTurns.Inc()
		},
		OnTurnEnd: func(ctx context.Context, e *domain.TurnEvent) {
			m.ActiveTurns.Dec()
			m.Turns.WithLabelValues(string(e.ActivityType), string(e.Branch)).Inc()
			m.TurnDuration.WithLabelValues(string(e.Branch)).Observe(e.Duration.Seconds())
			if e.Err != nil {
				m.TurnErrors.WithLabelValues(string(e.ActivityType)).Inc()
			}
		},
		OnDialogBegin: func(ctx context.Context, e *domain.DialogEvent) {
			m.Dialogs.WithLabelValues(e.DialogID, "begin").Inc()
		},
		OnDialogEnd: func(ctx context.Context, e *domain.DialogEvent) {
			m.Dialogs.WithLabelValues(e.DialogID, "end").Inc()
		},
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
