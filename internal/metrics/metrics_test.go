package metrics

import (
	"context"
	"errors"
	"io/fs"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"media-catalog/internal/catalog"
)

func metricValue(t *testing.T, c prometheus.Collector) float64 {
	t.Helper()
	ch := make(chan prometheus.Metric, 1)
	c.Collect(ch)
	m := <-ch

	var out dto.Metric
	if err := m.Write(&out); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	switch {
	case out.Counter != nil:
		return out.Counter.GetValue()
	case out.Gauge != nil:
		return out.Gauge.GetValue()
	case out.Histogram != nil:
		return float64(out.Histogram.GetSampleCount())
	}
	t.Fatal("unsupported metric type")
	return 0
}

func TestMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"HTTPRequestsTotal", HTTPRequestsTotal},
		{"DBQueryTotal", DBQueryTotal},
		{"DBTransactionDuration", DBTransactionDuration},
		{"ReconcilePassesTotal", ReconcilePassesTotal},
		{"ReconcileClassificationsTotal", ReconcileClassificationsTotal},
		{"ReconcileOrphanDeleteFailures", ReconcileOrphanDeleteFailures},
		{"HashBytesTotal", HashBytesTotal},
		{"ThumbnailGenerationsTotal", ThumbnailGenerationsTotal},
		{"VideoProbesTotal", VideoProbesTotal},
		{"CatalogEntriesTotal", CatalogEntriesTotal},
		{"FilesystemRetryAttempts", FilesystemRetryAttempts},
		{"AppInfo", AppInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestInitializeMetricsIsRepeatable(_ *testing.T) {
	InitializeMetrics()
	InitializeMetrics()
}

func TestFilesystemObserverIgnoresNotExist(t *testing.T) {
	obs := NewFilesystemObserver()
	counter := FilesystemOperationErrors.WithLabelValues("test", "stat")
	before := metricValue(t, counter)

	obs.ObserveOperation("test", "stat", 0.001, fs.ErrNotExist)
	if got := metricValue(t, counter); got != before {
		t.Errorf("not-exist counted as error: %v -> %v", before, got)
	}

	obs.ObserveOperation("test", "stat", 0.001, fs.ErrPermission)
	if got := metricValue(t, counter); got != before+1 {
		t.Errorf("errors = %v, want %v", got, before+1)
	}
}

func TestFilesystemObserverRetries(t *testing.T) {
	obs := NewFilesystemObserver()
	attempts := FilesystemRetryAttempts.WithLabelValues("open", "test")
	stale := FilesystemStaleErrors.WithLabelValues("open", "test")
	before := metricValue(t, attempts)

	obs.ObserveRetryAttempt("open", "test")
	obs.ObserveStaleError("open", "test")
	obs.ObserveRetrySuccess("open", "test")
	obs.ObserveRetryFailure("open", "test")
	obs.ObserveRetryDuration("open", "test", 0.2)

	if got := metricValue(t, attempts); got != before+1 {
		t.Errorf("attempts = %v, want %v", got, before+1)
	}
	if metricValue(t, stale) < 1 {
		t.Error("stale errors not recorded")
	}
}

func TestRecordStats(t *testing.T) {
	RecordStats(catalog.Stats{TotalEntries: 10, TotalImages: 6, TotalVideos: 3, TotalThumbnails: 8, TotalBytes: 4096})

	if got := metricValue(t, CatalogEntriesTotal.WithLabelValues("image")); got != 6 {
		t.Errorf("images = %v, want 6", got)
	}
	if got := metricValue(t, CatalogEntriesTotal.WithLabelValues("unknown")); got != 1 {
		t.Errorf("unknown = %v, want 1", got)
	}
	if got := metricValue(t, CatalogThumbnailsTotal); got != 8 {
		t.Errorf("thumbnails = %v, want 8", got)
	}
	if got := metricValue(t, CatalogBytesTotal); got != 4096 {
		t.Errorf("bytes = %v, want 4096", got)
	}
}

type mockStatsProvider struct {
	mu    sync.Mutex
	calls int
	stats catalog.Stats
	err   error
}

func (m *mockStatsProvider) Stats(_ context.Context) (catalog.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.stats, m.err
}

func (m *mockStatsProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestCollectorCollectsOnStart(t *testing.T) {
	provider := &mockStatsProvider{stats: catalog.Stats{TotalEntries: 2, TotalVideos: 2}}
	c := NewCollector(provider, time.Hour)
	c.Start()
	c.Stop()

	if provider.callCount() != 1 {
		t.Errorf("calls = %d, want 1", provider.callCount())
	}
	if got := metricValue(t, CatalogEntriesTotal.WithLabelValues("video")); got != 2 {
		t.Errorf("videos = %v, want 2", got)
	}
}

func TestCollectorMultipleCycles(t *testing.T) {
	provider := &mockStatsProvider{}
	c := NewCollector(provider, 5*time.Millisecond)
	c.Start()

	deadline := time.Now().Add(2 * time.Second)
	for provider.callCount() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	c.Stop()

	if provider.callCount() < 3 {
		t.Errorf("calls = %d, want at least 3", provider.callCount())
	}
}

func TestCollectorToleratesErrors(t *testing.T) {
	provider := &mockStatsProvider{err: errors.New("database locked")}
	c := NewCollector(provider, time.Hour)
	c.Start()
	c.Stop()

	if provider.callCount() != 1 {
		t.Errorf("calls = %d, want 1", provider.callCount())
	}
}

func TestCollectorWithNilProvider(_ *testing.T) {
	c := NewCollector(nil, time.Millisecond)
	c.Start()
	time.Sleep(5 * time.Millisecond)
	c.Stop()
}
