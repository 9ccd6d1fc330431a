package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avezina/propdocs/internal/core/domain"
)

// WorkerMetrics is the single sink for pipeline observations: stage
// timings, strategy choices, OCR volume, review flags and token usage.
type WorkerMetrics struct {
	registry *prometheus.Registry

	documentsTotal    *prometheus.CounterVec
	documentDuration  *prometheus.HistogramVec
	documentsInFlight prometheus.Gauge
	stageDuration     *prometheus.HistogramVec
	stageFailures     *prometheus.CounterVec

	classificationsTotal *prometheus.CounterVec
	extractionsTotal     *prometheus.CounterVec
	fallbacksTotal       *prometheus.CounterVec
	reviewsFlaggedTotal  *prometheus.CounterVec

	textExtractionsTotal *prometheus.CounterVec
	ocrPagesTotal        prometheus.Counter
	ocrFailuresTotal     prometheus.Counter

	llmTokensTotal *prometheus.CounterVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()
	serviceLabel := prometheus.Labels{"service": service}

	documentsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "propdocs",
			Subsystem:   "pipeline",
			Name:        "documents_total",
			Help:        "Total processed documents by final status.",
			ConstLabels: serviceLabel,
		},
		[]string{"status"},
	)
	documentDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   "propdocs",
			Subsystem:   "pipeline",
			Name:        "document_duration_seconds",
			Help:        "End-to-end pipeline duration in seconds by final status.",
			Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			ConstLabels: serviceLabel,
		},
		[]string{"status"},
	)
	documentsInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   "propdocs",
			Subsystem:   "pipeline",
			Name:        "documents_in_flight",
			Help:        "Number of documents currently in the pipeline.",
			ConstLabels: serviceLabel,
		},
	)
	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   "propdocs",
			Subsystem:   "pipeline",
			Name:        "stage_duration_seconds",
			Help:        "Pipeline stage duration in seconds.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: serviceLabel,
		},
		[]string{"stage"},
	)
	stageFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "propdocs",
			Subsystem:   "pipeline",
			Name:        "stage_failures_total",
			Help:        "Total pipeline stage failures.",
			ConstLabels: serviceLabel,
		},
		[]string{"stage"},
	)
	classificationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "propdocs",
			Subsystem:   "pipeline",
			Name:        "classifications_total",
			Help:        "Total classifications by resulting type and serving strategy.",
			ConstLabels: serviceLabel,
		},
		[]string{"doc_type", "strategy"},
	)
	extractionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "propdocs",
			Subsystem:   "pipeline",
			Name:        "extractions_total",
			Help:        "Total entity extractions by document type and serving strategy.",
			ConstLabels: serviceLabel,
		},
		[]string{"doc_type", "strategy"},
	)
	fallbacksTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "propdocs",
			Subsystem:   "pipeline",
			Name:        "fallbacks_total",
			Help:        "Total strategy fallthroughs by stage and failed strategy.",
			ConstLabels: serviceLabel,
		},
		[]string{"stage", "strategy"},
	)
	reviewsFlaggedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "propdocs",
			Subsystem:   "pipeline",
			Name:        "reviews_flagged_total",
			Help:        "Total records flagged for human review.",
			ConstLabels: serviceLabel,
		},
		[]string{"doc_type"},
	)
	textExtractionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "propdocs",
			Subsystem:   "textextract",
			Name:        "extractions_total",
			Help:        "Total text extractions by method.",
			ConstLabels: serviceLabel,
		},
		[]string{"method"},
	)
	ocrPagesTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   "propdocs",
			Subsystem:   "textextract",
			Name:        "ocr_pages_total",
			Help:        "Total pages run through OCR.",
			ConstLabels: serviceLabel,
		},
	)
	ocrFailuresTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   "propdocs",
			Subsystem:   "textextract",
			Name:        "ocr_failures_total",
			Help:        "Total OCR page failures.",
			ConstLabels: serviceLabel,
		},
	)
	llmTokensTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "propdocs",
			Subsystem:   "llm",
			Name:        "tokens_total",
			Help:        "Token usage reported by the chat model, by direction.",
			ConstLabels: serviceLabel,
		},
		[]string{"direction", "model"},
	)

	registry.MustRegister(
		documentsTotal,
		documentDuration,
		documentsInFlight,
		stageDuration,
		stageFailures,
		classificationsTotal,
		extractionsTotal,
		fallbacksTotal,
		reviewsFlaggedTotal,
		textExtractionsTotal,
		ocrPagesTotal,
		ocrFailuresTotal,
		llmTokensTotal,
	)

	return &WorkerMetrics{
		registry:             registry,
		documentsTotal:       documentsTotal,
		documentDuration:     documentDuration,
		documentsInFlight:    documentsInFlight,
		stageDuration:        stageDuration,
		stageFailures:        stageFailures,
		classificationsTotal: classificationsTotal,
		extractionsTotal:     extractionsTotal,
		fallbacksTotal:       fallbacksTotal,
		reviewsFlaggedTotal:  reviewsFlaggedTotal,
		textExtractionsTotal: textExtractionsTotal,
		ocrPagesTotal:        ocrPagesTotal,
		ocrFailuresTotal:     ocrFailuresTotal,
		llmTokensTotal:       llmTokensTotal,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// DocumentStarted and DocumentFinished bracket one queue message.
func (m *WorkerMetrics) DocumentStarted() {
	m.documentsInFlight.Inc()
}

func (m *WorkerMetrics) DocumentFinished() {
	m.documentsInFlight.Dec()
}

// ObservePipeline records one finished pipeline run.
func (m *WorkerMetrics) ObservePipeline(status domain.DocumentStatus, elapsed time.Duration) {
	m.documentsTotal.WithLabelValues(string(status)).Inc()
	m.documentDuration.WithLabelValues(string(status)).Observe(elapsed.Seconds())
}

func (m *WorkerMetrics) ObserveStage(stage string, elapsed time.Duration, err error) {
	m.stageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
	if err != nil {
		m.stageFailures.WithLabelValues(stage).Inc()
	}
}

func (m *WorkerMetrics) RecordReviewFlagged(docType domain.DocumentType) {
	m.reviewsFlaggedTotal.WithLabelValues(string(docType)).Inc()
}

func (m *WorkerMetrics) RecordClassification(docType domain.DocumentType, strategy string) {
	m.classificationsTotal.WithLabelValues(string(docType), strategy).Inc()
}

func (m *WorkerMetrics) RecordExtraction(docType domain.DocumentType, strategy string) {
	m.extractionsTotal.WithLabelValues(string(docType), strategy).Inc()
}

func (m *WorkerMetrics) RecordFallthrough(stage, strategy string) {
	m.fallbacksTotal.WithLabelValues(stage, strategy).Inc()
}

// RecordTextExtraction counts one extraction; OCR methods also add their
// page count to the OCR volume counter.
func (m *WorkerMetrics) RecordTextExtraction(method string, pages int) {
	m.textExtractionsTotal.WithLabelValues(method).Inc()
	if method != "pdf-text" && pages > 0 {
		m.ocrPagesTotal.Add(float64(pages))
	}
}

func (m *WorkerMetrics) RecordOCRPageFailure() {
	m.ocrFailuresTotal.Inc()
}

func (m *WorkerMetrics) RecordTokenUsage(model string, promptTokens, completionTokens int) {
	if model == "" {
		model = "unknown"
	}
	if promptTokens > 0 {
		m.llmTokensTotal.WithLabelValues("in", model).Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		m.llmTokensTotal.WithLabelValues("out", model).Add(float64(completionTokens))
	}
}
