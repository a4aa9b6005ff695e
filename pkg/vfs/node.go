package vfs

import (
	"context"
	"sync"
)

// Node is a lazily-populated directory in a provider-backed tree. Its
// contents are fetched by the first Content call and memoized for the
// node's lifetime; the process-wide content cache underneath is a
// separate concern with its own TTL.
type Node struct {
	Path string
	Name string

	provider Provider

	mu      sync.Mutex
	fetched bool
	content Listing
	err     error
}

// NewNode creates a node for path over p. The path is normalized; no
// listing happens until Content is called.
func NewNode(path string, p Provider) *Node {
	normalized := NormalizePath(path)
	_, name := SplitPath(normalized)
	return &Node{
		Path:     normalized,
		Name:     name,
		provider: p,
	}
}

// Provider returns the provider backing this node.
func (n *Node) Provider() Provider { return n.provider }

// Content returns the directory's entries, invoking the provider at
// most once per node instance. The outcome, error included, is
// memoized; use Reload to fetch again.
func (n *Node) Content(ctx context.Context) (Listing, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.fetched {
		n.content, n.err = n.provider.ListDirectory(ctx, n.Path)
		n.fetched = true
	}
	return n.content, n.err
}

// Reload discards the memoized listing and fetches a fresh one.
func (n *Node) Reload(ctx context.Context) (Listing, error) {
	n.mu.Lock()
	n.fetched = false
	n.content = nil
	n.err = nil
	n.mu.Unlock()
	return n.Content(ctx)
}

// Exists reports whether the node's path exists on the provider.
func (n *Node) Exists(ctx context.Context) (bool, error) {
	return n.provider.Exists(ctx, n.Path)
}

// Parent returns the parent node, or nil at the root.
func (n *Node) Parent() *Node {
	if n.Path == "/" {
		return nil
	}
	parent, _ := SplitPath(n.Path)
	return NewNode(parent, n.provider)
}

// Files returns the file entries of this directory.
func (n *Node) Files(ctx context.Context) ([]File, error) {
	content, err := n.Content(ctx)
	if err != nil {
		return nil, err
	}
	var files []File
	for _, entry := range content {
		if entry.File != nil {
			files = append(files, *entry.File)
		}
	}
	return files, nil
}

// Subdirectories returns child nodes for the directory entries,
// sharing this node's provider.
func (n *Node) Subdirectories(ctx context.Context) ([]*Node, error) {
	content, err := n.Content(ctx)
	if err != nil {
		return nil, err
	}
	var dirs []*Node
	for _, entry := range content {
		if entry.Dir != nil {
			dirs = append(dirs, NewNode(entry.Dir.Path, n.provider))
		}
	}
	return dirs, nil
}

// FilesWithExtension filters Files by a case-insensitive extension
// match.
func (n *Node) FilesWithExtension(ctx context.Context, ext string) ([]File, error) {
	files, err := n.Files(ctx)
	if err != nil {
		return nil, err
	}
	var matched []File
	for _, f := range files {
		if f.HasExtension(ext) {
			matched = append(matched, f)
		}
	}
	return matched, nil
}

// TotalSize walks the tree depth-first and sums the known file sizes;
// files with an unparsed size count as zero. Visited paths are tracked
// so a structural cycle in the backing tree cannot recurse forever.
func (n *Node) TotalSize(ctx context.Context) (int64, error) {
	visited := make(map[string]bool)
	return n.totalSize(ctx, visited)
}

func (n *Node) totalSize(ctx context.Context, visited map[string]bool) (int64, error) {
	if visited[n.Path] {
		return 0, nil
	}
	visited[n.Path] = true

	content, err := n.Content(ctx)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, entry := range content {
		switch {
		case entry.File != nil:
			if entry.File.Info.SizeKnown() {
				total += entry.File.Info.Size
			}
		case entry.Dir != nil:
			sub, err := NewNode(entry.Dir.Path, n.provider).totalSize(ctx, visited)
			if err != nil {
				return 0, err
			}
			total += sub
		}
	}
	return total, nil
}
