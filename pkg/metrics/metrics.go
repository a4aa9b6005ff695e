// Package metrics provides Prometheus metrics for listings, the
// content cache and the download engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Content cache metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "susfs_cache_hits_total",
			Help: "Total number of listing cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "susfs_cache_misses_total",
			Help: "Total number of listing cache misses",
		},
	)

	// Listing metrics
	ListingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "susfs_listings_total",
			Help: "Total number of directory listings by provider and status",
		},
		[]string{"provider", "status"},
	)

	// Download metrics
	DownloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "susfs_downloads_total",
			Help: "Total number of file downloads by status",
		},
		[]string{"status"},
	)

	DownloadBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "susfs_download_bytes_total",
			Help: "Total bytes written by the download engine",
		},
	)
)
