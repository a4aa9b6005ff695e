package vfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Local lists operating-system directories directly. It never touches
// the content cache: local listings are cheap and the cache namespace
// is kept for the remote archive.
type Local struct{}

// Name implements Provider.
func (Local) Name() string { return "local" }

// ListDirectory implements Provider. A missing path is an error, the
// same way the remote provider fails when it cannot change into the
// directory; an empty directory is the only source of an empty listing.
func (Local) ListDirectory(_ context.Context, dirPath string) (Listing, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dirPath, err)
	}

	listing := make(Listing, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			listing[name] = DirectoryEntry{Dir: &Directory{
				Path:     filepath.Join(dirPath, name),
				Name:     name,
				Provider: "local",
			}}
			continue
		}

		fi, err := entry.Info()
		if err != nil {
			// Entry vanished between ReadDir and Stat; skip it.
			continue
		}
		file := NewFile(dirPath, name, FileInfo{
			Size:   fi.Size(),
			Modify: fi.ModTime(),
		})
		listing[name] = DirectoryEntry{File: &file}
	}
	return listing, nil
}

// Exists implements Provider.
func (Local) Exists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
