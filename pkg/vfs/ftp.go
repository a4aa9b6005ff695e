package vfs

import (
	"context"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"go.uber.org/zap"

	"github.com/arrow-sus/susfs/pkg/cache"
	"github.com/arrow-sus/susfs/pkg/conn"
	"github.com/arrow-sus/susfs/pkg/logging"
	"github.com/arrow-sus/susfs/pkg/metrics"
)

// Default location of the public archive.
const (
	DefaultHost     = "ftp.datasus.gov.br"
	DefaultBasePath = "/dissemin/publicos"
)

// FTP lists directories on the remote archive, going through the
// shared content cache before touching the network.
type FTP struct {
	host     string
	basePath string
	mgr      *conn.Manager
	cache    *cache.Store
	dedup    DedupRule
	log      *zap.Logger
}

// FTPOption configures the remote provider.
type FTPOption func(*FTP)

// WithDedupRule overrides the compressed/legacy suppression rule.
func WithDedupRule(rule DedupRule) FTPOption {
	return func(f *FTP) { f.dedup = rule }
}

// WithFTPLogger attaches a logger.
func WithFTPLogger(log *zap.Logger) FTPOption {
	return func(f *FTP) { f.log = log }
}

// NewFTP creates a remote provider rooted at basePath on the archive
// behind mgr. store is the process-wide content cache and must not be
// nil.
func NewFTP(mgr *conn.Manager, basePath string, store *cache.Store, opts ...FTPOption) *FTP {
	f := &FTP{
		host:     mgr.Host(),
		basePath: NormalizePath(basePath),
		mgr:      mgr,
		cache:    store,
		dedup:    DefaultDedupRule,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.log = logging.Or(f.log)
	return f
}

// Name implements Provider.
func (f *FTP) Name() string { return "ftp" }

// fullPath maps a caller path onto the archive. Absolute paths that
// already include the base are used as-is; everything else is rooted
// under it.
func (f *FTP) fullPath(p string) string {
	if strings.HasPrefix(p, "/") {
		if strings.HasPrefix(p, f.basePath) {
			return p
		}
		return f.basePath + p
	}
	if p == "" {
		return f.basePath
	}
	return f.basePath + "/" + p
}

// ListDirectory implements Provider. Cache hits are served without a
// session; on a miss the raw listing is fetched, parsed line by line,
// deduplicated and cached.
func (f *FTP) ListDirectory(ctx context.Context, dirPath string) (Listing, error) {
	full := f.fullPath(dirPath)
	key := cache.Key(f.host, full)

	if payload, ok := f.cache.Get(key); ok {
		listing, err := DecodeListing(payload)
		if err == nil {
			metrics.CacheHits.Inc()
			f.log.Debug("listing served from cache",
				zap.String("path", full), zap.Int("entries", len(listing)))
			return listing, nil
		}
		// A payload that fails to decode is treated as a miss and
		// rewritten below.
		f.log.Warn("unreadable cache payload", zap.String("key", key), zap.Error(err))
	}
	metrics.CacheMisses.Inc()

	lines, err := f.mgr.RawList(ctx, full)
	if err != nil {
		metrics.ListingsTotal.WithLabelValues("ftp", "error").Inc()
		return nil, err
	}

	listing := make(Listing)
	for _, line := range lines {
		// Entries carry the normalized full path, so a cached payload
		// reads the same no matter how the caller spelled the path.
		name, entry, ok := ParseLine(line, full)
		if !ok {
			continue
		}
		if entry.Dir != nil {
			entry.Dir.Provider = "ftp"
		}
		listing[name] = entry
	}
	f.dedup.Apply(listing)

	if payload, err := listing.Encode(); err == nil {
		f.cache.Put(key, payload)
	} else {
		f.log.Warn("listing not cached", zap.String("key", key), zap.Error(err))
	}

	metrics.ListingsTotal.WithLabelValues("ftp", "ok").Inc()
	f.log.Debug("listing fetched",
		zap.String("path", full), zap.Int("entries", len(listing)))
	return listing, nil
}

// Exists implements Provider. A path exists when the server lets the
// session change into it.
func (f *FTP) Exists(ctx context.Context, p string) (bool, error) {
	full := f.fullPath(p)
	exists := false
	err := f.mgr.WithConnection(ctx, func(c *ftp.ServerConn) error {
		exists = c.ChangeDir(full) == nil
		return nil
	})
	if err != nil {
		return false, err
	}
	return exists, nil
}

// TimedResult is one listing outcome with its elapsed wall time.
type TimedResult struct {
	Path    string
	Listing Listing
	Err     error
	Elapsed time.Duration
}

// ListDirectoriesWithTiming lists every path concurrently, at most
// maxConcurrent at a time, and reports per-path elapsed time. Results
// come back in input order; failures stay isolated per path.
func (f *FTP) ListDirectoriesWithTiming(ctx context.Context, paths []string, maxConcurrent int) []TimedResult {
	if maxConcurrent <= 0 {
		maxConcurrent = len(paths)
	}

	results := make([]TimedResult, len(paths))
	sem := make(chan struct{}, maxConcurrent)
	done := make(chan struct{})

	for i, p := range paths {
		go func(i int, p string) {
			defer func() { done <- struct{}{} }()
			sem <- struct{}{}
			defer func() { <-sem }()

			start := time.Now()
			listing, err := f.ListDirectory(ctx, p)
			results[i] = TimedResult{
				Path:    p,
				Listing: listing,
				Err:     err,
				Elapsed: time.Since(start),
			}
		}(i, p)
	}
	for range paths {
		<-done
	}
	return results
}
