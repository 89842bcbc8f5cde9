// Package analytics defines search analytics samples and snapshots.
package analytics

import "time"

// Sample is what one executed search contributes to the aggregates.
type Sample struct {
	UserID  string
	Query   string
	Types   []string
	Results int
	Latency time.Duration
}

// QueryCount is a normalized query and how often it ran.
type QueryCount struct {
	Query string
	Count int
}

// Snapshot is a read-only copy of the running aggregates.
type Snapshot struct {
	TotalSearches     int64
	UniqueUsers       int
	ByType            map[string]int64
	AverageLatency    time.Duration
	AverageResults    float64
	TopQueries        []QueryCount
	ZeroResultQueries []string
}
