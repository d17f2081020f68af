// Package metrics exposes Prometheus instrumentation for the media store.
//
// A nil *Metrics is valid and records nothing, so components can call it
// unconditionally when metrics are disabled.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	pulls         *prometheus.CounterVec
	pulledItems   prometheus.Counter
	filteredItems prometheus.Counter
	emptyRetries  prometheus.Counter
	thumbnails    *prometheus.CounterVec
	thumbnailTime prometheus.Histogram
	itemsCreated  *prometheus.CounterVec
	bytesWritten  prometheus.Counter
	replicaOps    *prometheus.CounterVec
}

// New registers all collectors on reg. A nil reg returns nil (metrics disabled).
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}

	factory := promauto.With(reg)
	return &Metrics{
		pulls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mediarepo_cursor_pulls_total",
				Help: "Total number of cursor pulls by result",
			},
			[]string{"result"},
		),
		pulledItems: factory.NewCounter(prometheus.CounterOpts{
			Name: "mediarepo_cursor_pulled_items_total",
			Help: "Total number of items returned by cursor pulls before filtering",
		}),
		filteredItems: factory.NewCounter(prometheus.CounterOpts{
			Name: "mediarepo_filter_rejected_items_total",
			Help: "Total number of items rejected by post-fetch filters",
		}),
		emptyRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "mediarepo_list_empty_page_retries_total",
			Help: "Pages that filtered down to nothing and triggered another pull",
		}),
		thumbnails: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mediarepo_thumbnail_requests_total",
				Help: "Thumbnail requests by outcome (original, hit, generated, error)",
			},
			[]string{"outcome"},
		),
		thumbnailTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mediarepo_thumbnail_generate_duration_seconds",
			Help:    "Duration of thumbnail generation in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		itemsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mediarepo_items_created_total",
				Help: "Total number of created items by content type",
			},
			[]string{"mime"},
		),
		bytesWritten: factory.NewCounter(prometheus.CounterOpts{
			Name: "mediarepo_item_bytes_written_total",
			Help: "Total item bytes written to repository storage",
		}),
		replicaOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mediarepo_replica_operations_total",
				Help: "Replica uploads and removals by status",
			},
			[]string{"op", "status"},
		),
	}
}

// ObservePull records one cursor pull returning n items.
func (m *Metrics) ObservePull(n int) {
	if m == nil {
		return
	}

	result := "page"
	if n == 0 {
		result = "empty"
	}
	m.pulls.WithLabelValues(result).Inc()
	m.pulledItems.Add(float64(n))
}

func (m *Metrics) ObserveFiltered(rejected int) {
	if m == nil || rejected == 0 {
		return
	}
	m.filteredItems.Add(float64(rejected))
}

func (m *Metrics) ObserveEmptyRetry() {
	if m == nil {
		return
	}
	m.emptyRetries.Inc()
}

// Thumbnail outcomes.
const (
	ThumbnailOriginal  = "original"
	ThumbnailHit       = "hit"
	ThumbnailGenerated = "generated"
	ThumbnailError     = "error"
)

func (m *Metrics) ObserveThumbnail(outcome string) {
	if m == nil {
		return
	}
	m.thumbnails.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveThumbnailDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.thumbnailTime.Observe(d.Seconds())
}

func (m *Metrics) ObserveItemCreated(mime string, size int) {
	if m == nil {
		return
	}
	m.itemsCreated.WithLabelValues(mime).Inc()
	m.bytesWritten.Add(float64(size))
}

const (
	ReplicaPut    = "put"
	ReplicaRemove = "remove"
)

func (m *Metrics) ObserveReplica(op string, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	m.replicaOps.WithLabelValues(op, status).Inc()
}
