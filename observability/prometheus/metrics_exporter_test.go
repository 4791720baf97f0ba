package prometheus

import (
	"testing"
	"time"

	"github.com/Pumkinmarble/threadpool/core"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

// TestMetricsExporter_RecordMethods verifies each core.Metrics method moves
// the Prometheus collector it backs.
// Given: a fresh MetricsExporter registered against an isolated registry
// When: each Record method is called once
// Then: the corresponding collector reflects exactly that one observation
func TestMetricsExporter_RecordMethods(t *testing.T) {
	// Arrange
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("threadpool", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("NewMetricsExporter failed: %v", err)
	}

	// Act
	exporter.RecordTaskDuration(core.PriorityHigh, 250*time.Millisecond)
	exporter.RecordTaskPanic("boom")
	exporter.RecordQueueDepth("worker-0", 7)
	exporter.RecordTaskRejected("pool not running")
	exporter.RecordSteal()

	// Assert
	if got := testutil.ToFloat64(exporter.taskPanicTotal); got != 1 {
		t.Fatalf("panic total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(exporter.queueDepth.WithLabelValues("worker-0")); got != 7 {
		t.Fatalf("queue depth = %v, want 7", got)
	}
	if got := testutil.ToFloat64(exporter.taskRejectedTotal.WithLabelValues("pool not running")); got != 1 {
		t.Fatalf("rejected total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(exporter.stealTotal); got != 1 {
		t.Fatalf("steal total = %v, want 1", got)
	}

	histCount, err := histogramSampleCount(exporter.taskDurationSeconds.WithLabelValues(core.PriorityHigh.String()))
	if err != nil {
		t.Fatalf("histogramSampleCount failed: %v", err)
	}
	if histCount != 1 {
		t.Fatalf("duration sample count = %d, want 1", histCount)
	}
}

// TestMetricsExporter_AlreadyRegisteredReuse verifies a second exporter built
// against the same registry and namespace shares the first's collectors
// rather than failing to register.
func TestMetricsExporter_AlreadyRegisteredReuse(t *testing.T) {
	// Arrange
	reg := prom.NewRegistry()
	first, err := NewMetricsExporter("threadpool", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("first NewMetricsExporter failed: %v", err)
	}
	second, err := NewMetricsExporter("threadpool", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("second NewMetricsExporter failed: %v", err)
	}

	// Act
	first.RecordTaskPanic(nil)
	second.RecordTaskPanic(nil)

	// Assert
	got := testutil.ToFloat64(first.taskPanicTotal)
	if got != 2 {
		t.Fatalf("shared panic counter = %v, want 2", got)
	}
}

// TestMetricsExporter_NilReceiverIsSafe verifies every Record method
// tolerates a nil *MetricsExporter, matching Metrics being an optional collaborator.
func TestMetricsExporter_NilReceiverIsSafe(t *testing.T) {
	// Arrange
	var exporter *MetricsExporter

	// Act & Assert (no panic)
	exporter.RecordTaskDuration(core.PriorityLow, time.Millisecond)
	exporter.RecordTaskPanic(nil)
	exporter.RecordQueueDepth("global", 0)
	exporter.RecordTaskRejected("shutdown")
	exporter.RecordSteal()
}

func histogramSampleCount(observer prom.Observer) (uint64, error) {
	collector, ok := observer.(prom.Collector)
	if !ok {
		return 0, nil
	}

	metricCh := make(chan prom.Metric, 1)
	collector.Collect(metricCh)
	close(metricCh)
	for metric := range metricCh {
		msg := &dto.Metric{}
		if err := metric.Write(msg); err != nil {
			return 0, err
		}
		if msg.Histogram != nil {
			return msg.Histogram.GetSampleCount(), nil
		}
	}
	return 0, nil
}
