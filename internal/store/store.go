// Package store persists quiz records and the subscriber roster in SQLite.
package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a lookup matches no active row.
var ErrNotFound = errors.New("store: not found")

// Config configures the SQLite store.
type Config struct {
	Path        string
	BusyTimeout time.Duration // 0 means driver default
}

// Filter narrows quiz retrieval. Zero fields match everything.
type Filter struct {
	Topic    string
	Provider string
}

// TopicStat aggregates active and soft-deleted records for one topic.
type TopicStat struct {
	Topic    string
	Count    int64
	AvgUsage float64
}

// ProviderStat aggregates records contributed by one generation backend.
type ProviderStat struct {
	Provider string
	Count    int64
	AvgUsage float64
}

// Stats is the audit view over the whole quiz table. Soft-deleted records
// stay included so history survives deactivation.
type Stats struct {
	TotalActive int64
	TotalAll    int64
	ByTopic     []TopicStat
	ByProvider  []ProviderStat
}
