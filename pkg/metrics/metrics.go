// Package metrics exposes Prometheus instrumentation for the export pipeline.
package metrics

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the counters and histograms published by the service.
type Metrics struct {
	ExportsTotal       *prometheus.CounterVec
	ExtractionFailures prometheus.Counter
	RowsParsed         prometheus.Counter
	RowsDropped        prometheus.Counter
	ResolutionHits     prometheus.Counter
	ResolutionMisses   prometheus.Counter
	ExportDuration     prometheus.Histogram
}

// New registers the pipeline metrics on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ExportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "poexport_exports_total",
			Help: "Export requests by outcome.",
		}, []string{"status"}),
		ExtractionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "poexport_extraction_failures_total",
			Help: "PDF text extraction failures.",
		}),
		RowsParsed: factory.NewCounter(prometheus.CounterOpts{
			Name: "poexport_rows_parsed_total",
			Help: "Line items successfully parsed.",
		}),
		RowsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "poexport_rows_dropped_total",
			Help: "Line items dropped for unparseable numeric fields.",
		}),
		ResolutionHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "poexport_resolution_hits_total",
			Help: "Store names resolved to a store_id.",
		}),
		ResolutionMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "poexport_resolution_misses_total",
			Help: "Store names left with an empty store_id.",
		}),
		ExportDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "poexport_export_duration_seconds",
			Help:    "Wall time for one export request.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Serve runs the metrics endpoint on its own port.
func Serve(port int, gatherer prometheus.Gatherer, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("metrics server listening", slog.Int("port", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", slog.Any("error", err))
		}
	}()
}
