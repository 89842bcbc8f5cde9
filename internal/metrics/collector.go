package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	domdoc "github.com/kailas-cloud/recordex/internal/domain/document"
)

// StatsSource reports document counts.
type StatsSource interface {
	Stats() domdoc.Stats
}

// IndexCollector exports the live document count per type on every scrape.
type IndexCollector struct {
	src  StatsSource
	desc *prometheus.Desc
}

// NewIndexCollector creates a collector over src.
func NewIndexCollector(src StatsSource) *IndexCollector {
	return &IndexCollector{
		src: src,
		desc: prometheus.NewDesc(
			"recordex_index_documents",
			"Number of indexed documents per type",
			[]string{"type"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *IndexCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *IndexCollector) Collect(ch chan<- prometheus.Metric) {
	for t, n := range c.src.Stats().ByType {
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(n), t)
	}
}
