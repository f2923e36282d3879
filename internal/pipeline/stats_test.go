package pipeline

import (
	"testing"
	"time"
)

func TestStageStats_SnapshotPercentiles(t *testing.T) {
	stats := NewStageStats(time.Hour)
	for _, ms := range []int64{100, 200, 300, 400, 500} {
		stats.Record("repair", time.Duration(ms)*time.Millisecond)
	}
	stats.Record("outline", 50*time.Millisecond)

	snaps := stats.Snapshot()
	snap, ok := snaps["repair"]
	if !ok {
		t.Fatal("expected a repair snapshot")
	}
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinMs != 100 || snap.MaxMs != 500 {
		t.Fatalf("expected min=100 max=500, got %d %d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if snap.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Ms)
	}
	if snaps["outline"].Count != 1 {
		t.Fatalf("stages must be tracked separately, got %+v", snaps["outline"])
	}
}

func TestStageStats_PrunesExpiredSamples(t *testing.T) {
	stats := NewStageStats(10 * time.Millisecond)
	stats.Record("write", 100*time.Millisecond)
	time.Sleep(25 * time.Millisecond)

	if _, ok := stats.Snapshot()["write"]; ok {
		t.Fatal("expected no write snapshot after prune")
	}

	stats.Record("write", 200*time.Millisecond)
	snap := stats.Snapshot()["write"]
	if snap.Count != 1 || snap.MinMs != 200 {
		t.Fatalf("expected one fresh sample of 200ms, got %+v", snap)
	}
}

func TestStageStats_RecordClampsNegativeDuration(t *testing.T) {
	stats := NewStageStats(time.Hour)
	stats.Record("open", -10*time.Millisecond)
	snap := stats.Snapshot()["open"]
	if snap.Count != 1 || snap.MaxMs != 0 {
		t.Fatalf("expected clamped duration=0, got %+v", snap)
	}
}
