package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the paper module. All methods are safe
// on a nil receiver so services can run without metrics in tests.
type Metrics struct {
	DraftsCreated    prometheus.Counter
	FilesUploaded    *prometheus.CounterVec
	Transitions      *prometheus.CounterVec
	Compensations    *prometheus.CounterVec
	OperationLatency *prometheus.HistogramVec
}

// New registers the paper metrics with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers against reg; tests pass a fresh registry.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DraftsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "confpaper_paper_drafts_created_total",
			Help: "Total number of paper drafts created",
		}),
		FilesUploaded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "confpaper_paper_files_uploaded_total",
			Help: "Total number of paper files stored, by file type",
		}, []string{"file_type"}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "confpaper_paper_transitions_total",
			Help: "Total lifecycle transitions, by target status",
		}, []string{"status"}),
		Compensations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "confpaper_paper_file_compensations_total",
			Help: "Compensating deletes issued after a failed upload, by result",
		}, []string{"result"}), // result: "deleted", "failed"
		OperationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "confpaper_paper_operation_duration_seconds",
			Help:    "Duration of paper service operations",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementDraftsCreated() {
	if m != nil {
		m.DraftsCreated.Inc()
	}
}

func (m *Metrics) IncrementFilesUploaded(fileType string) {
	if m != nil {
		m.FilesUploaded.WithLabelValues(fileType).Inc()
	}
}

func (m *Metrics) IncrementTransition(status string) {
	if m != nil {
		m.Transitions.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) IncrementCompensation(result string) {
	if m != nil {
		m.Compensations.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	if m != nil {
		m.OperationLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
