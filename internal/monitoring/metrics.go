package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Signal metrics
	signalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_engine_signals_total",
			Help: "Total number of signals emitted",
		},
		[]string{"symbol", "direction"},
	)

	signalConfidence = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "signal_engine_signal_confidence",
			Help: "Confidence of the most recent signal",
		},
		[]string{"symbol"},
	)

	// Scoring metrics
	confluenceScore = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "signal_engine_confluence_score",
			Help: "Most recent confluence total",
		},
		[]string{"symbol"},
	)

	quantumScore = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "signal_engine_quantum_score",
			Help: "Most recent quantum composite score",
		},
		[]string{"symbol"},
	)

	// Data metrics
	candlesLoaded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_engine_candles_loaded_total",
			Help: "Total number of candles loaded",
		},
		[]string{"provider"},
	)

	backtestsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "signal_engine_backtests_total",
			Help: "Total number of backtests run",
		},
	)

	// Error metrics
	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_engine_errors_total",
			Help: "Total number of errors",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(signalsTotal)
	prometheus.MustRegister(signalConfidence)
	prometheus.MustRegister(confluenceScore)
	prometheus.MustRegister(quantumScore)
	prometheus.MustRegister(candlesLoaded)
	prometheus.MustRegister(backtestsTotal)
	prometheus.MustRegister(errorsTotal)
}

// MetricsHandler handles the Prometheus metrics endpoint
type MetricsHandler struct{}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

// ServeHTTP serves the Prometheus metrics endpoint
func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordSignal records an emitted signal and its confidence
func RecordSignal(symbol, direction string, confidence float64) {
	signalsTotal.WithLabelValues(symbol, direction).Inc()
	signalConfidence.WithLabelValues(symbol).Set(confidence)
}

// UpdateScores publishes the latest confluence and quantum scores
func UpdateScores(symbol string, confluence, quantum float64) {
	confluenceScore.WithLabelValues(symbol).Set(confluence)
	quantumScore.WithLabelValues(symbol).Set(quantum)
}

// RecordCandlesLoaded counts candles loaded by a data provider
func RecordCandlesLoaded(provider string, count int) {
	candlesLoaded.WithLabelValues(provider).Add(float64(count))
}

// RecordBacktest counts one backtest run
func RecordBacktest() {
	backtestsTotal.Inc()
}

// RecordError records an error metric
func RecordError(errorType string) {
	errorsTotal.WithLabelValues(errorType).Inc()
}
