package models

import "time"

// MetricsSnapshot summarises process level counters for the JSON metrics endpoint.
type MetricsSnapshot struct {
	RequestsTotal            uint64            `json:"requests_total"`
	AverageRequestDurationMs float64           `json:"average_request_duration_ms"`
	CacheHits                uint64            `json:"cache_hits"`
	CacheMisses              uint64            `json:"cache_misses"`
	CacheHitRatio            float64           `json:"cache_hit_ratio"`
	UpstreamCalls            map[string]uint64 `json:"upstream_calls,omitempty"`
	UpstreamUp               *bool             `json:"upstream_up,omitempty"`
	Goroutines               int               `json:"goroutines"`
	GeneratedAt              time.Time         `json:"generated_at"`
}
