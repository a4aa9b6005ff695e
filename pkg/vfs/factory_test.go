package vfs

import (
	"testing"

	"github.com/arrow-sus/susfs/pkg/cache"
	"github.com/arrow-sus/susfs/pkg/conn"
)

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(ProviderSpec{Kind: "local"})
	if err != nil {
		t.Fatalf("local: %v", err)
	}
	if p.Name() != "local" {
		t.Errorf("name = %q", p.Name())
	}

	p, err = NewProvider(ProviderSpec{
		Kind:     "ftp",
		BasePath: DefaultBasePath,
		Manager:  conn.New(DefaultHost),
		Cache:    cache.New(t.TempDir()),
	})
	if err != nil {
		t.Fatalf("ftp: %v", err)
	}
	if p.Name() != "ftp" {
		t.Errorf("name = %q", p.Name())
	}
}

func TestNewProviderUnavailable(t *testing.T) {
	if _, err := NewProvider(ProviderSpec{Kind: "gopher"}); !conn.IsUnavailable(err) {
		t.Errorf("unknown kind: err = %v, want unavailable", err)
	}
	if _, err := NewProvider(ProviderSpec{Kind: "ftp"}); !conn.IsUnavailable(err) {
		t.Errorf("missing deps: err = %v, want unavailable", err)
	}
}
