// Package metrics provides Prometheus metrics for the translation portal.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Labels stay low-cardinality: no session ids or file names.

var (
	documentRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anuvad_document_runs_total",
		Help: "Total number of document translation runs, by outcome.",
	}, []string{"outcome"})

	intakeRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anuvad_intake_rejections_total",
		Help: "Total number of files rejected at intake, by reason.",
	}, []string{"reason"})

	exportsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "anuvad_exports_total",
		Help: "Total number of translated documents exported.",
	})

	textTranslationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anuvad_text_translations_total",
		Help: "Total number of text translations, by service and outcome.",
	}, []string{"service", "outcome"})

	translationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "anuvad_translation_duration_seconds",
		Help:    "Time spent producing a translation, by mode.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"mode"})

	cacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anuvad_cache_lookups_total",
		Help: "Total number of translation cache lookups, by result.",
	}, []string{"result"})

	voiceRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anuvad_voice_runs_total",
		Help: "Total number of voice translation runs, by outcome.",
	}, []string{"outcome"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "anuvad_http_request_duration_seconds",
		Help:    "HTTP request latencies in seconds, by route pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// RecordDocumentRun counts a finished document run and its duration.
func RecordDocumentRun(outcome string, d time.Duration) {
	documentRunsTotal.WithLabelValues(outcome).Inc()
	translationDuration.WithLabelValues("document").Observe(d.Seconds())
}

func RecordIntakeRejection(reason string) {
	intakeRejectionsTotal.WithLabelValues(reason).Inc()
}

func RecordExport() {
	exportsTotal.Inc()
}

// RecordTextTranslation counts a text-mode translation. service is empty
// when every backend failed.
func RecordTextTranslation(service, outcome string, d time.Duration) {
	if service == "" {
		service = "none"
	}
	textTranslationsTotal.WithLabelValues(service, outcome).Inc()
	translationDuration.WithLabelValues("text").Observe(d.Seconds())
}

func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookupsTotal.WithLabelValues(result).Inc()
}

func RecordVoiceRun(outcome string) {
	voiceRunsTotal.WithLabelValues(outcome).Inc()
}

// RecordHTTPRequest observes one served request. route must be the router
// pattern, never the raw path.
func RecordHTTPRequest(method, route string, status int, d time.Duration) {
	httpRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
