package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilRegistererIsNoop(t *testing.T) {
	m := NewAPIMetrics(nil)
	m.ObserveDuration("list_games", time.Second)
	m.IncSuccess("list_games")
	m.IncFailure("list_games")

	var unset *APIMetrics
	unset.IncSuccess("list_games")
}

func TestCountersRecordPerOperation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAPIMetrics(reg)

	m.IncSuccess("list_games")
	m.IncSuccess("list_games")
	m.IncFailure("checkout")
	m.ObserveDuration("checkout", 250*time.Millisecond)

	if got := testutil.ToFloat64(m.success.WithLabelValues("list_games")); got != 2 {
		t.Fatalf("success count %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.failure.WithLabelValues("checkout")); got != 1 {
		t.Fatalf("failure count %v, want 1", got)
	}
}

func TestLabelNormalization(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAPIMetrics(reg)

	m.IncSuccess("  List Games ")
	m.IncSuccess("")

	if got := testutil.ToFloat64(m.success.WithLabelValues("list_games")); got != 1 {
		t.Fatalf("normalized count %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.success.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("unknown count %v, want 1", got)
	}
}
