// Package download materializes remote files onto local storage,
// sequentially or under a bounded concurrency ceiling, reporting one
// outcome per attempted transfer.
package download

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/arrow-sus/susfs/pkg/logging"
	"github.com/arrow-sus/susfs/pkg/metrics"
)

// Config controls where and how files land locally.
type Config struct {
	// DestDir is the destination root for every transfer.
	DestDir string
	// PreserveStructure mirrors the remote path relative to
	// BaseRemotePath under DestDir instead of flattening to the
	// basename.
	PreserveStructure bool
	// BaseRemotePath is the prefix stripped from remote paths when
	// preserving structure.
	BaseRemotePath string
	// MaxConcurrent bounds simultaneous transfers in
	// DownloadParallel.
	MaxConcurrent int
	// BufferSize is the copy chunk size in bytes.
	BufferSize int
	// Overwrite replaces existing local files; when false an existing
	// file is left alone and the transfer is skipped.
	Overwrite bool
}

// DefaultConfig returns the engine defaults for dest.
func DefaultConfig(dest string) Config {
	return Config{
		DestDir:       dest,
		MaxConcurrent: 4,
		BufferSize:    8192,
	}
}

// Result is the immutable outcome of one attempted transfer.
type Result struct {
	RemotePath string
	LocalPath  string
	Bytes      int64
	Elapsed    time.Duration
	Success    bool
	Error      string
}

// Results collects per-file outcomes.
type Results []Result

// Failed returns the subset of failed transfers.
func (rs Results) Failed() Results {
	var failed Results
	for _, r := range rs {
		if !r.Success {
			failed = append(failed, r)
		}
	}
	return failed
}

// TotalBytes sums the bytes written across all transfers.
func (rs Results) TotalBytes() int64 {
	var total int64
	for _, r := range rs {
		total += r.Bytes
	}
	return total
}

// Err aggregates the failures into one error, or nil when every
// transfer succeeded.
func (rs Results) Err() error {
	var merr *multierror.Error
	for _, r := range rs {
		if !r.Success {
			merr = multierror.Append(merr, fmt.Errorf("%s: %s", r.RemotePath, r.Error))
		}
	}
	return merr.ErrorOrNil()
}

// Engine executes transfers from a Source under one Config.
type Engine struct {
	src Source
	cfg Config
	log *zap.Logger
}

// New creates an Engine. log may be nil.
func New(src Source, cfg Config, log *zap.Logger) *Engine {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 8192
	}
	return &Engine{src: src, cfg: cfg, log: logging.Or(log)}
}

// LocalPath returns where remotePath will land under the config's
// structure-preservation rule.
func (e *Engine) LocalPath(remotePath string) string {
	if !e.cfg.PreserveStructure {
		return filepath.Join(e.cfg.DestDir, path.Base(remotePath))
	}
	rel := strings.TrimPrefix(remotePath, e.cfg.BaseRemotePath)
	rel = strings.TrimPrefix(rel, "/")
	return filepath.Join(e.cfg.DestDir, filepath.FromSlash(rel))
}

// Download transfers one file and reports its outcome. On a
// mid-transfer error the partially written local file is left in
// place; callers needing all-or-nothing semantics should write to a
// temporary name and rename.
func (e *Engine) Download(ctx context.Context, remotePath string) Result {
	start := time.Now()
	local := e.LocalPath(remotePath)
	res := Result{RemotePath: remotePath, LocalPath: local}

	if !e.cfg.Overwrite {
		if _, err := os.Stat(local); err == nil {
			// Existing file honored; not a transfer failure.
			res.Success = true
			res.Elapsed = time.Since(start)
			e.log.Debug("skipping existing file", zap.String("local", local))
			metrics.DownloadsTotal.WithLabelValues("skipped").Inc()
			return res
		}
	}

	bytes, err := e.transfer(ctx, remotePath, local)
	res.Bytes = bytes
	res.Elapsed = time.Since(start)
	if err != nil {
		res.Error = err.Error()
		metrics.DownloadsTotal.WithLabelValues("error").Inc()
		e.log.Warn("download failed",
			zap.String("remote", remotePath), zap.Error(err))
		return res
	}

	res.Success = true
	metrics.DownloadsTotal.WithLabelValues("ok").Inc()
	metrics.DownloadBytes.Add(float64(bytes))
	e.log.Info("downloaded",
		zap.String("remote", remotePath),
		zap.String("local", local),
		zap.Int64("bytes", bytes),
		zap.Duration("elapsed", res.Elapsed))
	return res
}

func (e *Engine) transfer(ctx context.Context, remotePath, local string) (int64, error) {
	stream, size, err := e.src.Open(ctx, remotePath)
	if err != nil {
		return 0, err
	}
	defer stream.Close()

	if err := os.MkdirAll(filepath.Dir(local), 0755); err != nil {
		return 0, fmt.Errorf("create destination dir: %w", err)
	}
	out, err := os.Create(local)
	if err != nil {
		return 0, fmt.Errorf("create destination file: %w", err)
	}
	defer out.Close()

	buf := make([]byte, e.cfg.BufferSize)
	written, err := io.CopyBuffer(out, stream, buf)
	if err != nil {
		return written, fmt.Errorf("copy %s: %w", remotePath, err)
	}
	if size >= 0 && written != size {
		return written, fmt.Errorf("short transfer of %s: got %d bytes, want %d", remotePath, written, size)
	}
	return written, nil
}

// DownloadAll transfers the files one after another, collecting every
// result regardless of individual failures.
func (e *Engine) DownloadAll(ctx context.Context, remotePaths []string) Results {
	results := make(Results, 0, len(remotePaths))
	for _, p := range remotePaths {
		results = append(results, e.Download(ctx, p))
	}
	return results
}

// DownloadParallel transfers up to MaxConcurrent files at a time; a
// freed slot immediately starts the next queued file. It returns once
// every file has completed, with results in input order regardless of
// completion order.
func (e *Engine) DownloadParallel(ctx context.Context, remotePaths []string) Results {
	results := make(Results, len(remotePaths))
	sem := make(chan struct{}, e.cfg.MaxConcurrent)
	var wg sync.WaitGroup

	for i, p := range remotePaths {
		wg.Add(1)
		go func(i int, p string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = e.Download(ctx, p)
		}(i, p)
	}

	wg.Wait()
	return results
}
