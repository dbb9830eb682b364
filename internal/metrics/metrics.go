package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the collectors of the preview service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Resolutions    *prometheus.CounterVec
	StaleDiscarded prometheus.Counter
	RenderDuration *prometheus.HistogramVec
	PDFCache       *prometheus.CounterVec
	PDFAttempts    *prometheus.CounterVec
}

// New registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Resolutions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "preview_resolutions_total",
				Help: "Preview parameter resolutions by outcome",
			},
			[]string{"outcome", "template"},
		),
		StaleDiscarded: f.NewCounter(
			prometheus.CounterOpts{
				Name: "preview_stale_results_discarded_total",
				Help: "Resolutions discarded because a newer navigation superseded them",
			},
		),
		RenderDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "preview_render_duration_seconds",
				Help:    "Time spent rendering a resolved preview",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		),
		PDFCache: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "preview_pdf_cache_requests_total",
				Help: "PDF cache lookups by result",
			},
			[]string{"result"},
		),
		PDFAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "preview_pdf_render_attempts_total",
				Help: "Headless browser PDF render attempts by result",
			},
			[]string{"result"},
		),
	}
}

func (m *Metrics) ObserveResolution(outcome, template string) {
	if m == nil {
		return
	}
	m.Resolutions.WithLabelValues(outcome, template).Inc()
}

func (m *Metrics) ObserveStale() {
	if m == nil {
		return
	}
	m.StaleDiscarded.Inc()
}

func (m *Metrics) ObserveRender(format string, started time.Time) {
	if m == nil {
		return
	}
	m.RenderDuration.WithLabelValues(format).Observe(time.Since(started).Seconds())
}

func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.PDFCache.WithLabelValues(result).Inc()
}

func (m *Metrics) ObservePDFAttempt(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.PDFAttempts.WithLabelValues(result).Inc()
}
