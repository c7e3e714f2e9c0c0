// Package common provides shared utilities for risklens
package common

import "time"

// Freshness TTLs for cached data components
const (
	// FreshnessStockIndex bounds the in-memory symbol universe. The listing
	// changes on IPO/delisting timescales, so a daily rebuild is plenty.
	FreshnessStockIndex = 24 * time.Hour
)

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}
