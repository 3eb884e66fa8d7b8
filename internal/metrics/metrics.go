package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dupicheck"

// Disposition actions recorded by Run.Disposed.
const (
	ActionDeleted     = "deleted"
	ActionKept        = "kept"
	ActionQuarantined = "quarantined"
	ActionMoved       = "moved"
	ActionFailed      = "failed"
)

// Run collects the counters of one CLI invocation on a private registry.
// A nil *Run discards every observation.
type Run struct {
	registry *prometheus.Registry

	imagesTotal     prometheus.Counter
	cacheHitsTotal  prometheus.Counter
	decodedTotal    prometheus.Counter
	skippedTotal    *prometheus.CounterVec
	prunedTotal     prometheus.Counter
	matchesTotal    prometheus.Counter
	matchDistance   prometheus.Histogram
	dispositions    *prometheus.CounterVec
	restoredTotal   prometheus.Counter
	ignoredPairs    prometheus.Gauge
	scanDuration    prometheus.Gauge
	lastRunUnixTime prometheus.Gauge
}

// NewRun registers a fresh set of collectors.
func NewRun() *Run {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Run{
		registry: reg,
		imagesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "images_total",
			Help:      "Image files considered by the scan",
		}),
		cacheHitsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Fingerprints reused from the store",
		}),
		decodedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "images_decoded_total",
			Help:      "Images decoded and fingerprinted",
		}),
		skippedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "images_skipped_total",
			Help:      "Images that produced no fingerprint",
		}, []string{"reason"}),
		prunedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_pruned_total",
			Help:      "Store records removed because their file is gone",
		}),
		matchesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_total",
			Help:      "Duplicate pairs reported by the matcher",
		}),
		matchDistance: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_distance",
			Help:      "Fingerprint distance of reported matches",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 12, 16},
		}),
		dispositions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispositions_total",
			Help:      "Files acted on by move/delete, by action",
		}, []string{"action"}),
		restoredTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_restored_total",
			Help:      "Files moved back out of quarantine",
		}),
		ignoredPairs: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ignored_pairs",
			Help:      "Entries in the ignore-list after the run",
		}),
		scanDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scan_duration_seconds",
			Help:      "Wall time spent walking and fingerprinting",
		}),
		lastRunUnixTime: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the run finished",
		}),
	}
}

// Scanned records the outcome of fingerprinting.
func (r *Run) Scanned(images, cacheHits, decoded, statFailures, decodeFailures, pruned int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.imagesTotal.Add(float64(images))
	r.cacheHitsTotal.Add(float64(cacheHits))
	r.decodedTotal.Add(float64(decoded))
	r.skippedTotal.WithLabelValues("stat").Add(float64(statFailures))
	r.skippedTotal.WithLabelValues("decode").Add(float64(decodeFailures))
	r.prunedTotal.Add(float64(pruned))
	r.scanDuration.Set(elapsed.Seconds())
}

// Matched records one reported match.
func (r *Run) Matched(distance int) {
	if r == nil {
		return
	}
	r.matchesTotal.Inc()
	r.matchDistance.Observe(float64(distance))
}

// Disposed adds count files to the action counter.
func (r *Run) Disposed(action string, count int) {
	if r == nil || count <= 0 {
		return
	}
	r.dispositions.WithLabelValues(action).Add(float64(count))
}

// Restored records files brought back by reintegration.
func (r *Run) Restored(count int) {
	if r == nil || count <= 0 {
		return
	}
	r.restoredTotal.Add(float64(count))
}

// IgnoredPairs sets the current ignore-list size.
func (r *Run) IgnoredPairs(count int) {
	if r == nil {
		return
	}
	r.ignoredPairs.Set(float64(count))
}

// Registry exposes the underlying registry.
func (r *Run) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// WriteTextfile stamps the finish time and writes the registry in the text
// exposition format for the node_exporter textfile collector. An empty path
// is a no-op.
func (r *Run) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	r.lastRunUnixTime.SetToCurrentTime()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
