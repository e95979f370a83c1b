package metrics

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestMetricsCounters(t *testing.T) {
	m := New()

	m.RecordPreambleWrite()
	m.RecordPreambleWrite()
	m.RecordWrite()
	m.RecordDelete()
	m.RecordRead()
	m.RecordInjectedRead(false)
	m.RecordInjectedRead(true)
	m.RecordResample()
	m.RecordSkippedCorrection()

	s := m.Snapshot()

	if s.PreambleWrites != 2 {
		t.Errorf("expected 2 preamble writes, got %d", s.PreambleWrites)
	}
	if s.Writes != 1 {
		t.Errorf("expected 1 write, got %d", s.Writes)
	}
	if s.Deletes != 1 {
		t.Errorf("expected 1 delete, got %d", s.Deletes)
	}
	if s.Reads != 3 {
		t.Errorf("expected 3 reads, got %d", s.Reads)
	}
	if s.InjectedReads != 2 {
		t.Errorf("expected 2 injected reads, got %d", s.InjectedReads)
	}
	if s.FallbackReads != 1 {
		t.Errorf("expected 1 fallback read, got %d", s.FallbackReads)
	}
	if s.Resamples != 1 {
		t.Errorf("expected 1 resample, got %d", s.Resamples)
	}
	if s.Skipped != 1 {
		t.Errorf("expected 1 skipped correction, got %d", s.Skipped)
	}
	if s.TotalOps != 5 {
		t.Errorf("expected 5 main ops (preamble excluded), got %d", s.TotalOps)
	}
	if s.ReadRatio != 0.6 {
		t.Errorf("expected read ratio 0.6, got %f", s.ReadRatio)
	}
}

func TestMetricsEmptySnapshot(t *testing.T) {
	s := New().Snapshot()

	if s.TotalOps != 0 {
		t.Errorf("expected 0 ops, got %d", s.TotalOps)
	}
	if s.ReadRatio != 0 {
		t.Errorf("expected read ratio 0 without ops, got %f", s.ReadRatio)
	}
}

func TestMetricsDuration(t *testing.T) {
	m := New()
	m.Start()
	time.Sleep(5 * time.Millisecond)
	m.Finish()

	d1 := m.Snapshot().Duration
	if d1 < 5*time.Millisecond {
		t.Errorf("expected duration >= 5ms, got %v", d1)
	}

	time.Sleep(5 * time.Millisecond)
	if d2 := m.Snapshot().Duration; d2 != d1 {
		t.Errorf("duration should be frozen after Finish: %v != %v", d2, d1)
	}
}

func TestMetricsConcurrentSnapshot(t *testing.T) {
	m := New()
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 1000 {
			m.RecordWrite()
		}
	}()

	for range 10 {
		_ = m.Snapshot()
	}
	wg.Wait()

	if got := m.Snapshot().Writes; got != 1000 {
		t.Errorf("expected 1000 writes, got %d", got)
	}
}

func TestSnapshotReport(t *testing.T) {
	m := New()
	m.RecordWrite()
	m.RecordRead()
	m.Finish()

	report := m.Snapshot().Report("balanced")

	for _, want := range []string{"WORKLOAD REPORT: balanced", "Read Ratio:       50.00%", "Fallback Reads:"} {
		if !strings.Contains(report, want) {
			t.Errorf("expected report to contain %q:\n%s", want, report)
		}
	}
}
