package vfs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// gaugedProvider tracks how many ListDirectory calls run at once.
type gaugedProvider struct {
	inner   *fakeProvider
	current atomic.Int32
	peak    atomic.Int32
}

func (p *gaugedProvider) ListDirectory(ctx context.Context, path string) (Listing, error) {
	cur := p.current.Add(1)
	for {
		peak := p.peak.Load()
		if cur <= peak || p.peak.CompareAndSwap(peak, cur) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	defer p.current.Add(-1)
	return p.inner.ListDirectory(ctx, path)
}

func (p *gaugedProvider) Exists(ctx context.Context, path string) (bool, error) {
	return p.inner.Exists(ctx, path)
}

func (p *gaugedProvider) Name() string { return p.inner.Name() }

func TestListDirectoriesParallel(t *testing.T) {
	inner := newFakeProvider()
	paths := []string{"/a", "/b", "/c", "/d", "/e", "/f"}
	for _, p := range paths {
		inner.addFile(p, "f.dbc", FileInfo{Size: 1})
	}
	inner.errs["/d"] = errors.New("boom")

	gauged := &gaugedProvider{inner: inner}
	results := ListDirectoriesParallel(context.Background(), gauged, paths, 2)

	if len(results) != len(paths) {
		t.Fatalf("got %d results, want %d", len(results), len(paths))
	}
	failures := 0
	for path, r := range results {
		if r.Err != nil {
			failures++
			continue
		}
		if len(r.Listing) != 1 {
			t.Errorf("%s: %d entries, want 1", path, len(r.Listing))
		}
	}
	if failures != 1 {
		t.Errorf("failures = %d, want 1", failures)
	}
	if results["/d"].Err == nil {
		t.Error("failure not attributed to /d")
	}
	if peak := gauged.peak.Load(); peak > 2 {
		t.Errorf("peak concurrency = %d, ceiling is 2", peak)
	}
}

func TestListDirectoriesParallelUnbounded(t *testing.T) {
	inner := newFakeProvider()
	inner.addFile("/a", "f", FileInfo{})
	results := ListDirectoriesParallel(context.Background(), inner, []string{"/a"}, 0)
	if len(results) != 1 || results["/a"].Err != nil {
		t.Fatalf("results = %+v", results)
	}
}
