package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	scansTotal    *prometheus.CounterVec
	scanDuration  *prometheus.HistogramVec
	scored        prometheus.Counter
	skipped       *prometheus.CounterVec
	candidates    prometheus.Histogram
	fetchDuration *prometheus.HistogramVec
	cacheLookups  *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
}

// New creates a Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		scansTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kabuscan_scans_total",
				Help: "Total scans run, by outcome",
			},
			[]string{"outcome"},
		),
		scanDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kabuscan_scan_duration_seconds",
				Help:    "End-to-end scan duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		scored: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "kabuscan_instruments_scored_total",
				Help: "Instruments that produced a full ratio set",
			},
		),
		skipped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kabuscan_instruments_skipped_total",
				Help: "Instruments excluded before the threshold gates, by reason",
			},
			[]string{"reason"},
		),
		candidates: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "kabuscan_candidates",
				Help:    "Candidates surviving the threshold gates per scan",
				Buckets: []float64{0, 1, 3, 7, 15, 30, 50, 100, 200},
			},
		),
		fetchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kabuscan_fetch_duration_seconds",
				Help:    "Bar source batch fetch duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		cacheLookups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kabuscan_bar_cache_lookups_total",
				Help: "Bar cache lookups, by result",
			},
			[]string{"result"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kabuscan_errors_total",
				Help: "Errors encountered, by kind",
			},
			[]string{"kind"},
		),
	}
}

func (r *Recorder) RecordScan(outcome string, seconds float64) {
	r.scansTotal.WithLabelValues(outcome).Inc()
	r.scanDuration.WithLabelValues(outcome).Observe(seconds)
}

func (r *Recorder) RecordScored(n int) {
	r.scored.Add(float64(n))
}

func (r *Recorder) RecordSkip(reason string, n int) {
	r.skipped.WithLabelValues(reason).Add(float64(n))
}

func (r *Recorder) RecordCandidates(n int) {
	r.candidates.Observe(float64(n))
}

func (r *Recorder) RecordFetch(source string, seconds float64) {
	r.fetchDuration.WithLabelValues(source).Observe(seconds)
}

func (r *Recorder) RecordCacheHit(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
