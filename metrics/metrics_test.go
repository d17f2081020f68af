package metrics_test

import (
	"errors"
	"testing"

	"github.com/mwantia/mediarepo/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestNilMetrics verifies that a disabled instance accepts every call.
func TestNilMetrics(t *testing.T) {
	var m *metrics.Metrics

	m.ObservePull(3)
	m.ObserveFiltered(2)
	m.ObserveEmptyRetry()
	m.ObserveThumbnail(metrics.ThumbnailHit)
	m.ObserveItemCreated("image/png", 10)
	m.ObserveReplica(metrics.ReplicaPut, errors.New("offline"))

	if metrics.New(nil) != nil {
		t.Error("Expected nil metrics for nil registerer")
	}
}

func TestMetrics_Collect(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.ObservePull(3)
	m.ObservePull(0)
	m.ObserveThumbnail(metrics.ThumbnailHit)
	m.ObserveThumbnail(metrics.ThumbnailHit)

	count, err := testutil.GatherAndCount(reg, "mediarepo_cursor_pulls_total")
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 pull series, got %d", count)
	}

	count, err = testutil.GatherAndCount(reg, "mediarepo_thumbnail_requests_total")
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 thumbnail series, got %d", count)
	}

	m.ObserveReplica(metrics.ReplicaPut, nil)
	m.ObserveReplica(metrics.ReplicaRemove, nil)
	m.ObserveReplica(metrics.ReplicaRemove, errors.New("offline"))

	count, err = testutil.GatherAndCount(reg, "mediarepo_replica_operations_total")
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected 3 replica series, got %d", count)
	}
}
