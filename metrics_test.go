package rotor

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsIncAndValue(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	m.Inc(MetricRotateSuccess)
	m.Inc(MetricRotateSuccess)
	m.Inc(MetricReuseDetected)

	if got := m.Value(MetricRotateSuccess); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := m.Value(MetricReuseDetected); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := m.Value(MetricRotateFailure); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestMetricsDisabledIsNoOp(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})

	m.Inc(MetricRotateSuccess)
	m.Observe(MetricValidateLatency, time.Millisecond)

	if got := m.Value(MetricRotateSuccess); got != 0 {
		t.Fatalf("expected disabled counter to stay 0, got %d", got)
	}

	snap := m.Snapshot()
	if len(snap.Counters) != 0 || len(snap.Histograms) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}

	var nilMetrics *Metrics
	nilMetrics.Inc(MetricRotateSuccess)
	if nilMetrics.Enabled() {
		t.Fatal("nil metrics must report disabled")
	}
}

func TestMetricsObserveBuckets(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	m.Observe(MetricValidateLatency, 3*time.Millisecond)
	m.Observe(MetricValidateLatency, 9*time.Millisecond)
	m.Observe(MetricValidateLatency, 400*time.Millisecond)
	m.Observe(MetricValidateLatency, 2*time.Second)

	buckets := m.Snapshot().Histograms[MetricValidateLatency]
	if len(buckets) != 8 {
		t.Fatalf("expected 8 buckets, got %d", len(buckets))
	}

	want := []uint64{1, 1, 0, 0, 0, 0, 1, 1}
	for i, w := range want {
		if buckets[i] != w {
			t.Fatalf("bucket %d: expected %d, got %d (all: %v)", i, w, buckets[i], buckets)
		}
	}
}

func TestMetricsSnapshotIsDeepCopy(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})
	m.Inc(MetricIssueSuccess)
	m.Observe(MetricValidateLatency, time.Millisecond)

	snap := m.Snapshot()
	snap.Counters[MetricIssueSuccess] = 99
	snap.Histograms[MetricValidateLatency][0] = 99

	if got := m.Value(MetricIssueSuccess); got != 1 {
		t.Fatalf("snapshot mutation leaked into counter: %d", got)
	}
	if got := m.Snapshot().Histograms[MetricValidateLatency][0]; got != 1 {
		t.Fatalf("snapshot mutation leaked into histogram: %d", got)
	}
}

func TestMetricsConcurrentInc(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const workers = 8
	const perWorker = 1000

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				m.Inc(MetricRotateSuccess)
			}
		}()
	}
	wg.Wait()

	if got := m.Value(MetricRotateSuccess); got != workers*perWorker {
		t.Fatalf("expected %d, got %d", workers*perWorker, got)
	}
}
