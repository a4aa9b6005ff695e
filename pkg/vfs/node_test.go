package vfs

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// fakeProvider serves listings from a fixed map and counts calls.
type fakeProvider struct {
	mu       sync.Mutex
	listings map[string]Listing
	errs     map[string]error
	calls    map[string]int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		listings: make(map[string]Listing),
		errs:     make(map[string]error),
		calls:    make(map[string]int),
	}
}

func (p *fakeProvider) addDir(parent, name string) {
	path := JoinPath(parent, name)
	l := p.listings[parent]
	if l == nil {
		l = Listing{}
		p.listings[parent] = l
	}
	l[name] = DirectoryEntry{Dir: &Directory{Path: path, Name: name, Provider: "fake"}}
	if p.listings[path] == nil {
		p.listings[path] = Listing{}
	}
}

func (p *fakeProvider) addFile(parent, name string, info FileInfo) {
	l := p.listings[parent]
	if l == nil {
		l = Listing{}
		p.listings[parent] = l
	}
	f := NewFile(parent, name, info)
	l[name] = DirectoryEntry{File: &f}
}

func (p *fakeProvider) ListDirectory(_ context.Context, path string) (Listing, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls[path]++
	if err := p.errs[path]; err != nil {
		return nil, err
	}
	l, ok := p.listings[path]
	if !ok {
		return Listing{}, nil
	}
	return l, nil
}

func (p *fakeProvider) Exists(_ context.Context, path string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.listings[path]
	return ok, nil
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) callCount(path string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[path]
}

func TestNodeContentMemoized(t *testing.T) {
	p := newFakeProvider()
	p.addFile("/data", "a.dbc", FileInfo{Size: 1})

	node := NewNode("/data", p)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		listing, err := node.Content(ctx)
		if err != nil {
			t.Fatalf("Content: %v", err)
		}
		if len(listing) != 1 {
			t.Fatalf("got %d entries, want 1", len(listing))
		}
	}
	if n := p.callCount("/data"); n != 1 {
		t.Errorf("provider called %d times, want 1", n)
	}
}

func TestNodeErrorMemoized(t *testing.T) {
	p := newFakeProvider()
	p.errs["/broken"] = errors.New("listing failed")

	node := NewNode("/broken", p)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := node.Content(ctx); err == nil {
			t.Fatal("expected error")
		}
	}
	if n := p.callCount("/broken"); n != 1 {
		t.Errorf("provider called %d times, want 1", n)
	}
}

func TestNodeReload(t *testing.T) {
	p := newFakeProvider()
	p.addFile("/data", "a.dbc", FileInfo{Size: 1})

	node := NewNode("/data", p)
	ctx := context.Background()
	if _, err := node.Content(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := node.Reload(ctx); err != nil {
		t.Fatal(err)
	}
	if n := p.callCount("/data"); n != 2 {
		t.Errorf("provider called %d times after Reload, want 2", n)
	}
}

func TestNodeParent(t *testing.T) {
	p := newFakeProvider()
	node := NewNode("/dissemin/publicos/SIASUS", p)

	parent := node.Parent()
	if parent == nil || parent.Path != "/dissemin/publicos" {
		t.Fatalf("parent = %+v", parent)
	}

	root := NewNode("/", p)
	if root.Parent() != nil {
		t.Error("root should have no parent")
	}
}

func TestNodeFilesAndSubdirectories(t *testing.T) {
	p := newFakeProvider()
	p.addDir("/data", "Dados")
	p.addFile("/data", "a.dbc", FileInfo{Size: 1})
	p.addFile("/data", "b.txt", FileInfo{Size: 2})

	node := NewNode("/data", p)
	ctx := context.Background()

	files, err := node.Files(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Errorf("got %d files, want 2", len(files))
	}

	dirs, err := node.Subdirectories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(dirs) != 1 {
		t.Fatalf("got %d subdirectories, want 1", len(dirs))
	}
	if dirs[0].Path != "/data/Dados" {
		t.Errorf("subdirectory path = %q", dirs[0].Path)
	}
	if dirs[0].Provider() != Provider(p) {
		t.Error("subdirectory does not share the parent's provider")
	}
}

func TestFilesWithExtension(t *testing.T) {
	p := newFakeProvider()
	p.addFile("/data", "a.dbc", FileInfo{Size: 1})
	p.addFile("/data", "a.dbf", FileInfo{Size: 2})
	p.addFile("/data", "b.txt", FileInfo{Size: 3})

	node := NewNode("/data", p)
	matched, err := node.FilesWithExtension(context.Background(), "dbc")
	if err != nil {
		t.Fatal(err)
	}
	if len(matched) != 1 || matched[0].Basename != "a.dbc" {
		t.Errorf("matched = %+v, want only a.dbc", matched)
	}
}

func TestTotalSize(t *testing.T) {
	p := newFakeProvider()
	p.addDir("/", "sub")
	p.addFile("/", "a.dbc", FileInfo{Size: 100})
	p.addFile("/sub", "b.dbc", FileInfo{Size: 23})
	p.addFile("/sub", "odd.dbc", FileInfo{SizeText: "?"})

	total, err := NewNode("/", p).TotalSize(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if total != 123 {
		t.Errorf("total = %d, want 123", total)
	}
}

func TestTotalSizeSurvivesCycle(t *testing.T) {
	p := newFakeProvider()
	p.addDir("/a", "b")
	p.addFile("/a", "f1", FileInfo{Size: 1})
	// The child points back at its parent.
	p.listings["/a/b"]["loop"] = DirectoryEntry{
		Dir: &Directory{Path: "/a", Name: "loop", Provider: "fake"},
	}
	p.addFile("/a/b", "f2", FileInfo{Size: 2})

	total, err := NewNode("/a", p).TotalSize(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
}
