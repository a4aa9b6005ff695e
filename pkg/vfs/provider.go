package vfs

import (
	"context"
	"sync"
)

// Provider is the capability set shared by local and remote trees.
type Provider interface {
	// ListDirectory returns the contents of path as a basename to
	// entry map.
	ListDirectory(ctx context.Context, path string) (Listing, error)

	// Exists reports whether path exists on the backing store.
	Exists(ctx context.Context, path string) (bool, error)

	// Name identifies the provider kind ("local", "ftp").
	Name() string
}

// Result pairs one listing outcome with nothing else; parallel calls
// return one Result per requested path.
type Result struct {
	Listing Listing
	Err     error
}

// ListDirectoriesParallel lists every path concurrently, at most
// maxConcurrent at a time, and returns one result per path. A failure
// on one path never cancels or fails the others.
func ListDirectoriesParallel(ctx context.Context, p Provider, paths []string, maxConcurrent int) map[string]Result {
	if maxConcurrent <= 0 {
		maxConcurrent = len(paths)
	}

	results := make(map[string]Result, len(paths))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, maxConcurrent)

	for _, path := range paths {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			listing, err := p.ListDirectory(ctx, path)

			mu.Lock()
			results[path] = Result{Listing: listing, Err: err}
			mu.Unlock()
		}(path)
	}

	wg.Wait()
	return results
}
