package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestJobMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewJobMetrics(reg)

	m.IncSuccess("weekly-payout")
	m.IncFailure("weekly-payout")
	m.ObserveDuration("weekly-payout", 250*time.Millisecond)
	m.AddLedgerEntries("EARNED", 3)

	if got := testutil.ToFloat64(m.success.WithLabelValues("weekly-payout")); got != 1 {
		t.Fatalf("success = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.failure.WithLabelValues("weekly-payout")); got != 1 {
		t.Fatalf("failure = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.rewards.WithLabelValues("EARNED")); got != 3 {
		t.Fatalf("ledger entries = %v, want 3", got)
	}
}

func TestJobMetricsNilSafe(t *testing.T) {
	var m *JobMetrics
	m.IncSuccess("x")
	m.IncFailure("x")
	m.ObserveDuration("x", time.Second)
	m.AddLedgerEntries("EARNED", 1)

	empty := NewJobMetrics(nil)
	empty.IncSuccess("x")
}

func TestNormalizeLabel(t *testing.T) {
	if normalizeLabel("") != "unknown" {
		t.Fatal("expected unknown for empty label")
	}
	if normalizeLabel("weekly-payout") != "weekly-payout" {
		t.Fatal("expected passthrough")
	}
}
