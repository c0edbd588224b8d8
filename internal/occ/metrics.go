package occ

import "sync/atomic"

// metrics tracks scraper counters. Snapshot via Metrics().
var metrics struct {
	SearchRequests atomic.Int64
	DetailRequests atomic.Int64
	HTTPRetries    atomic.Int64
	ParseFailures  atomic.Int64
	DetailFallback atomic.Int64
}

// Metrics returns a snapshot of scraper counters.
func Metrics() map[string]int64 {
	return map[string]int64{
		"occ_search_requests": metrics.SearchRequests.Load(),
		"occ_detail_requests": metrics.DetailRequests.Load(),
		"occ_http_retries":    metrics.HTTPRetries.Load(),
		"occ_parse_failures":  metrics.ParseFailures.Load(),
		"occ_detail_fallback": metrics.DetailFallback.Load(),
	}
}
