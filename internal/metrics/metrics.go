// Package metrics exposes Prometheus counters for the upstream sync, the
// agenda cache and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	Registry *prometheus.Registry

	syncRuns     *prometheus.CounterVec
	syncRecords  *prometheus.CounterVec
	syncDuration prometheus.Histogram
	cacheLookups *prometheus.CounterVec
	apiRequests  *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		syncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadawaker",
			Subsystem: "sync",
			Name:      "runs_total",
			Help:      "Upstream sync passes per account broken down by result.",
		}, []string{"result"}),
		syncRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadawaker",
			Subsystem: "sync",
			Name:      "records_total",
			Help:      "Records upserted from upstream by kind.",
		}, []string{"kind"}),
		syncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "leadawaker",
			Subsystem: "sync",
			Name:      "duration_seconds",
			Help:      "Duration of a full sync tick.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadawaker",
			Subsystem: "agenda_cache",
			Name:      "lookups_total",
			Help:      "Agenda cache lookups by result.",
		}, []string{"result"}),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadawaker",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "HTTP requests by route template and status class.",
		}, []string{"route", "result"}),
	}
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.syncRuns, m.syncRecords, m.syncDuration, m.cacheLookups, m.apiRequests,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// ObserveSyncRun counts one account pass; result is "ok" or "error".
func (m *Metrics) ObserveSyncRun(result string) {
	if m == nil {
		return
	}
	m.syncRuns.WithLabelValues(result).Inc()
}

func (m *Metrics) AddSynced(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.syncRecords.WithLabelValues(kind).Add(float64(n))
}

func (m *Metrics) ObserveSyncDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.syncDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// Middleware counts requests by mux route template so ids don't explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		if m == nil {
			return
		}
		route := "unmatched"
		if cr := mux.CurrentRoute(r); cr != nil {
			if tpl, err := cr.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		m.apiRequests.WithLabelValues(route, statusClass(rec.status)).Inc()
	})
}

func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
