// Package metrics registers the prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch results
const (
	FetchCache   = "cache"
	FetchNetwork = "network"
	FetchArchive = "archive"
	FetchFail    = "fail"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "codash_requests_total",
		Help: "Total number of http requests by path and status",
	}, []string{"path", "status"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "codash_request_duration_ms",
		Help:    "Request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"path"})
	FetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "codash_fetches_total",
		Help: "Total data fetches by source of the records",
	}, []string{"result"})
	FetchDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "codash_fetch_duration_ms",
		Help:    "Data fetch duration in milliseconds",
		Buckets: []float64{10, 50, 100, 500, 1000, 5000, 10000, 30000},
	})
	DispatchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "codash_dispatches_total",
		Help: "Total actions dispatched to the overview store by type",
	}, []string{"type"})
	RecordsLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "codash_records_loaded",
		Help: "Number of records in the last successful fetch",
	})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(FetchesTotal)
	prometheus.MustRegister(FetchDurationMs)
	prometheus.MustRegister(DispatchesTotal)
	prometheus.MustRegister(RecordsLoaded)
}

// Handler serves the registered metrics
func Handler() http.Handler { return promhttp.Handler() }
