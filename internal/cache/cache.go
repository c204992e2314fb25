// Package cache provides the key-value store behind the search result cache.
// Two backends exist: Redis for deployments and an in-process store used when
// REDIS_ADDR is unset (and by tests). Both support the same narrow contract:
// get, set-with-TTL, and bulk delete by key prefix.
package cache

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Store is the cache contract the search engine depends on.
type Store interface {
	// Get returns the value and true when a live entry exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// DeleteByPrefix removes every key under the given prefix.
	DeleteByPrefix(ctx context.Context, prefix string) error
}

var (
	cacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"backend"},
	)

	cacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"backend"},
	)

	cacheErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_cache_errors_total",
			Help: "Total number of cache backend errors",
		},
		[]string{"backend", "operation"},
	)
)
