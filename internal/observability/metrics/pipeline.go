package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type PipelineMetrics struct {
	registry *prometheus.Registry
	service  string

	papersTotal     *prometheus.CounterVec
	paperDuration   *prometheus.HistogramVec
	papersInFlight  prometheus.Gauge
	questionsTotal  *prometheus.CounterVec
	ocrPapersTotal  *prometheus.CounterVec
	chunkFailsTotal *prometheus.CounterVec
}

func NewPipelineMetrics(service string) *PipelineMetrics {
	registry := prometheus.NewRegistry()

	papersTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smp",
			Subsystem: "pipeline",
			Name:      "papers_processed_total",
			Help:      "Total processed exam papers by status.",
		},
		[]string{"service", "status"},
	)
	paperDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "smp",
			Subsystem: "pipeline",
			Name:      "paper_process_duration_seconds",
			Help:      "Paper processing duration in seconds by status.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		},
		[]string{"service", "status"},
	)
	papersInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "smp",
			Subsystem: "pipeline",
			Name:      "papers_in_flight",
			Help:      "Number of papers currently being processed.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	questionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smp",
			Subsystem: "pipeline",
			Name:      "questions_extracted_total",
			Help:      "Total staged question candidates.",
		},
		[]string{"service"},
	)
	ocrPapersTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smp",
			Subsystem: "pipeline",
			Name:      "ocr_papers_total",
			Help:      "Total papers that required the OCR fallback.",
		},
		[]string{"service"},
	)
	chunkFailsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smp",
			Subsystem: "pipeline",
			Name:      "chunk_failures_total",
			Help:      "Total chunks whose extraction call failed.",
		},
		[]string{"service"},
	)

	registry.MustRegister(papersTotal, paperDuration, papersInFlight, questionsTotal, ocrPapersTotal, chunkFailsTotal)

	return &PipelineMetrics{
		registry:        registry,
		service:         service,
		papersTotal:     papersTotal,
		paperDuration:   paperDuration,
		papersInFlight:  papersInFlight,
		questionsTotal:  questionsTotal,
		ocrPapersTotal:  ocrPapersTotal,
		chunkFailsTotal: chunkFailsTotal,
	}
}

func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PipelineMetrics) StartPaper() {
	m.papersInFlight.Inc()
}

func (m *PipelineMetrics) FinishPaper(duration time.Duration, err error) {
	m.papersInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.papersTotal.WithLabelValues(m.service, status).Inc()
	m.paperDuration.WithLabelValues(m.service, status).Observe(duration.Seconds())
}

// ObservePaper records the outcome details of one successfully processed
// paper. It satisfies the pipeline's observer hook.
func (m *PipelineMetrics) ObservePaper(usedOCR bool, questions, failedChunks int) {
	if questions > 0 {
		m.questionsTotal.WithLabelValues(m.service).Add(float64(questions))
	}
	if usedOCR {
		m.ocrPapersTotal.WithLabelValues(m.service).Inc()
	}
	if failedChunks > 0 {
		m.chunkFailsTotal.WithLabelValues(m.service).Add(float64(failedChunks))
	}
}
