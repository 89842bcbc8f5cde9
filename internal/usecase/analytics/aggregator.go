// Package analytics aggregates search statistics in memory.
package analytics

import (
	"cmp"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	domanalytics "github.com/kailas-cloud/recordex/internal/domain/analytics"
)

// Defaults for the aggregator windows.
const (
	DefaultLatencyWindow     = 1000
	DefaultTopQueries        = 10
	DefaultZeroResultQueries = 20
)

// Config bounds the aggregator's rolling windows. Zero fields use defaults.
type Config struct {
	LatencyWindow     int
	TopQueries        int
	ZeroResultQueries int
}

func (c Config) withDefaults() Config {
	if c.LatencyWindow <= 0 {
		c.LatencyWindow = DefaultLatencyWindow
	}
	if c.TopQueries <= 0 {
		c.TopQueries = DefaultTopQueries
	}
	if c.ZeroResultQueries <= 0 {
		c.ZeroResultQueries = DefaultZeroResultQueries
	}
	return c
}

// Aggregator keeps running search totals. Writers hold the lock only to
// bump counters; Snapshot copies under the same short lock.
type Aggregator struct {
	cfg Config

	mu           sync.Mutex
	total        int64
	resultsTotal int64
	users        map[string]struct{}
	byType       map[string]int64
	frequency    map[string]int
	latencies    []time.Duration // ring buffer of the last cfg.LatencyWindow samples
	next         int
	latencySum   time.Duration
	zero         []string
}

// New creates an Aggregator.
func New(cfg Config) *Aggregator {
	cfg = cfg.withDefaults()
	return &Aggregator{
		cfg:       cfg,
		users:     make(map[string]struct{}),
		byType:    make(map[string]int64),
		frequency: make(map[string]int),
		latencies: make([]time.Duration, 0, cfg.LatencyWindow),
	}
}

// Normalize is the form queries are counted under.
func Normalize(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

// Record adds one executed search.
func (a *Aggregator) Record(s domanalytics.Sample) {
	q := Normalize(s.Query)

	a.mu.Lock()
	defer a.mu.Unlock()

	a.total++
	a.resultsTotal += int64(s.Results)
	if s.UserID != "" {
		a.users[s.UserID] = struct{}{}
	}
	for _, t := range s.Types {
		a.byType[t]++
	}
	a.pushLatency(s.Latency)

	if q == "" {
		return
	}
	a.frequency[q]++
	if s.Results == 0 {
		a.pushZero(q)
	}
}

func (a *Aggregator) pushLatency(d time.Duration) {
	if len(a.latencies) < a.cfg.LatencyWindow {
		a.latencies = append(a.latencies, d)
		a.latencySum += d
		return
	}
	a.latencySum += d - a.latencies[a.next]
	a.latencies[a.next] = d
	a.next = (a.next + 1) % a.cfg.LatencyWindow
}

// pushZero keeps the most recent distinct zero-result queries.
func (a *Aggregator) pushZero(q string) {
	if i := slices.Index(a.zero, q); i >= 0 {
		a.zero = slices.Delete(a.zero, i, i+1)
	}
	a.zero = append(a.zero, q)
	if over := len(a.zero) - a.cfg.ZeroResultQueries; over > 0 {
		a.zero = slices.Delete(a.zero, 0, over)
	}
}

// Snapshot returns a copy of the current aggregates.
func (a *Aggregator) Snapshot() domanalytics.Snapshot {
	a.mu.Lock()
	snap := domanalytics.Snapshot{
		TotalSearches:     a.total,
		UniqueUsers:       len(a.users),
		ByType:            maps.Clone(a.byType),
		ZeroResultQueries: slices.Clone(a.zero),
	}
	if n := len(a.latencies); n > 0 {
		snap.AverageLatency = a.latencySum / time.Duration(n)
	}
	if a.total > 0 {
		snap.AverageResults = float64(a.resultsTotal) / float64(a.total)
	}
	counts := make([]domanalytics.QueryCount, 0, len(a.frequency))
	for q, c := range a.frequency {
		counts = append(counts, domanalytics.QueryCount{Query: q, Count: c})
	}
	a.mu.Unlock()

	slices.SortFunc(counts, func(x, y domanalytics.QueryCount) int {
		if c := cmp.Compare(y.Count, x.Count); c != 0 {
			return c
		}
		return strings.Compare(x.Query, y.Query)
	})
	if len(counts) > a.cfg.TopQueries {
		counts = counts[:a.cfg.TopQueries]
	}
	snap.TopQueries = counts
	if snap.ByType == nil {
		snap.ByType = map[string]int64{}
	}
	if snap.ZeroResultQueries == nil {
		snap.ZeroResultQueries = []string{}
	}
	return snap
}

// Frequencies returns a copy of the normalized query counts.
func (a *Aggregator) Frequencies() map[string]int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return maps.Clone(a.frequency)
}
