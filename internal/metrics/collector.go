// Package metrics exports search session counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dshills/richfind/internal/session"
)

const (
	namespace = "richfind"
	subsystem = "search"
)

// StatsSource provides session counters. *session.Session implements it.
type StatsSource interface {
	Stats() session.Stats
}

// Collector is a prometheus.Collector reading a StatsSource on every scrape.
type Collector struct {
	src StatsSource

	walks         *prometheus.Desc
	leavesVisited *prometheus.Desc
	cacheLookups  *prometheus.Desc
	invalidations *prometheus.Desc
	selections    *prometheus.Desc
	replacements  *prometheus.Desc
	staleSteps    *prometheus.Desc
}

// NewCollector creates a collector over src. constLabels are attached to
// every metric, typically to tell editors apart.
func NewCollector(src StatsSource, constLabels prometheus.Labels) *Collector {
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, name), help, labels, constLabels)
	}
	return &Collector{
		src:           src,
		walks:         desc("walks_total", "Search walks by final state.", "state"),
		leavesVisited: desc("leaves_visited_total", "Text leaves read by completed walks."),
		cacheLookups:  desc("cache_lookups_total", "Result cache lookups by result.", "result"),
		invalidations: desc("cache_invalidations_total", "Result cache invalidations."),
		selections:    desc("selections_total", "Matches selected."),
		replacements:  desc("replacements_total", "Matches replaced."),
		staleSteps:    desc("stale_steps_total", "Matches that could not be applied to the document."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.walks
	ch <- c.leavesVisited
	ch <- c.cacheLookups
	ch <- c.invalidations
	ch <- c.selections
	ch <- c.replacements
	ch <- c.staleSteps
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	st := c.src.Stats()
	counter := func(d *prometheus.Desc, v uint64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), labels...)
	}
	counter(c.walks, st.WalksStarted, "started")
	counter(c.walks, st.WalksEnded, "ended")
	counter(c.walks, st.WalksBroken, "broken")
	counter(c.leavesVisited, st.LeavesVisited)
	counter(c.cacheLookups, st.CacheHits, "hit")
	counter(c.cacheLookups, st.CacheMisses, "miss")
	counter(c.invalidations, st.Invalidations)
	counter(c.selections, st.Selections)
	counter(c.replacements, st.Replacements)
	counter(c.staleSteps, st.StaleSteps)
}

// Register creates a collector for src and registers it with reg.
func Register(reg prometheus.Registerer, src StatsSource, constLabels prometheus.Labels) (*Collector, error) {
	c := NewCollector(src, constLabels)
	if err := reg.Register(c); err != nil {
		return nil, err
	}
	return c, nil
}
