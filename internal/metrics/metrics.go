package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "minefield"

type Metrics struct {
	registry *prometheus.Registry

	gamesCreated  prometheus.Counter
	gamesFinished *prometheus.CounterVec
	moves         *prometheus.CounterVec
	gameDuration  prometheus.Histogram
}

// New builds a fresh registry so that several instances, such as one per
// test, never collide on collector names.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		gamesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_created_total",
			Help:      "Number of games created.",
		}),
		gamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Number of games that reached a terminal state.",
		}, []string{"result"}),
		moves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_total",
			Help:      "Number of moves applied to games.",
		}, []string{"move"}),
		gameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "game_duration_seconds",
			Help:      "Time from the first reveal to the end of the game.",
			Buckets:   []float64{5, 15, 30, 60, 120, 300, 600, 1800},
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.gamesCreated,
		m.gamesFinished,
		m.moves,
		m.gameDuration,
	)
	return m
}

func (m *Metrics) GameCreated() {
	m.gamesCreated.Inc()
}

func (m *Metrics) MoveApplied(move string) {
	m.moves.WithLabelValues(move).Inc()
}

func (m *Metrics) GameFinished(won bool, elapsed time.Duration) {
	result := "lost"
	if won {
		result = "won"
	}
	m.gamesFinished.WithLabelValues(result).Inc()
	m.gameDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
