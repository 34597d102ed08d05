package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTPRequestsTotal counts requests by route, method, and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	// HTTPRequestDuration observes request latency by route and method.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15, 60, 300},
		},
		[]string{"route", "method"},
	)

	// OracleRequestsTotal counts oracle calls by provider, stage, and outcome.
	OracleRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_requests_total",
			Help: "Total number of oracle calls by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)
	// OracleRequestDuration observes oracle call latency by provider.
	OracleRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "oracle_request_duration_seconds",
			Help:    "Oracle call duration in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"provider"},
	)

	// RankingRunsTotal counts pipeline runs by terminal outcome.
	RankingRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_runs_total",
			Help: "Total number of ranking pipeline runs",
		},
		[]string{"outcome"},
	)
	// RankingCandidates observes batch sizes entering the pipeline.
	RankingCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ranking_candidates_per_run",
			Help:    "Distribution of candidate batch sizes per run",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 150, 250},
		},
	)
	// FinalScoreHistogram observes the distribution of final scores.
	FinalScoreHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ranking_final_score",
			Help:    "Distribution of final candidate scores (0-100)",
			Buckets: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)
	// GateDeniedTotal counts candidates denied by the eligibility gate.
	GateDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gate_denied_total",
			Help: "Total number of candidates denied by the eligibility gate",
		},
	)
)

// InitMetrics registers all metrics with the default registry. Call once per
// process.
func InitMetrics() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		OracleRequestsTotal,
		OracleRequestDuration,
		RankingRunsTotal,
		RankingCandidates,
		FinalScoreHistogram,
		GateDeniedTotal,
	)
}

// ObserveOracleCall records one oracle call in both oracle metrics.
func ObserveOracleCall(provider string, dur time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	OracleRequestsTotal.WithLabelValues(provider, outcome).Inc()
	OracleRequestDuration.WithLabelValues(provider).Observe(dur.Seconds())
}

// HTTPMetricsMiddleware instruments requests with the chi route pattern so
// labels stay low-cardinality.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := ""
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = r.URL.Path
		}
		HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(ww.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
