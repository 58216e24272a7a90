package metrics

import (
	"context"
	"time"

	"media-catalog/internal/catalog"
	"media-catalog/internal/logging"
)

// StatsProvider is implemented by the catalog stores.
type StatsProvider interface {
	Stats(ctx context.Context) (catalog.Stats, error)
}

// Collector periodically refreshes the catalog content gauges.
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	timeout       time.Duration
	stopChan      chan struct{}
	done          chan struct{}
}

// NewCollector creates a collector that polls provider every interval.
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		timeout:       10 * time.Second,
		stopChan:      make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Start begins the collection loop.
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop ends the collection loop and waits for it to exit.
func (c *Collector) Stop() {
	close(c.stopChan)
	<-c.done
}

func (c *Collector) collectLoop() {
	defer close(c.done)

	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	stats, err := c.statsProvider.Stats(ctx)
	if err != nil {
		logging.Warn("Metrics collection failed: %v", err)
		return
	}
	RecordStats(stats)

	logging.Debug("Metrics collected: entries=%d, images=%d, videos=%d, thumbnails=%d",
		stats.TotalEntries, stats.TotalImages, stats.TotalVideos, stats.TotalThumbnails)
}

// RecordStats sets the catalog content gauges from stats.
func RecordStats(stats catalog.Stats) {
	CatalogEntriesTotal.WithLabelValues("image").Set(float64(stats.TotalImages))
	CatalogEntriesTotal.WithLabelValues("video").Set(float64(stats.TotalVideos))
	CatalogEntriesTotal.WithLabelValues("unknown").Set(float64(stats.TotalEntries - stats.TotalImages - stats.TotalVideos))
	CatalogThumbnailsTotal.Set(float64(stats.TotalThumbnails))
	CatalogBytesTotal.Set(float64(stats.TotalBytes))
}
