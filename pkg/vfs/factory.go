package vfs

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/arrow-sus/susfs/pkg/cache"
	"github.com/arrow-sus/susfs/pkg/conn"
)

// ProviderSpec names a provider kind and carries the dependencies it
// needs. Kind "local" ignores everything else; kind "ftp" requires
// Manager and Cache.
type ProviderSpec struct {
	Kind     string
	BasePath string
	Manager  *conn.Manager
	Cache    *cache.Store
	Logger   *zap.Logger
}

// NewProvider constructs the provider for spec.Kind. An unknown kind
// or missing dependency is reported as a backend-unavailable error so
// callers can fall back to another kind.
func NewProvider(spec ProviderSpec) (Provider, error) {
	switch spec.Kind {
	case "local":
		return Local{}, nil
	case "ftp":
		if spec.Manager == nil || spec.Cache == nil {
			return nil, &conn.Error{
				Kind:    conn.KindUnavailable,
				Op:      "provider",
				Message: "ftp provider needs a connection manager and a cache",
			}
		}
		return NewFTP(spec.Manager, spec.BasePath, spec.Cache, WithFTPLogger(spec.Logger)), nil
	default:
		return nil, &conn.Error{
			Kind:    conn.KindUnavailable,
			Op:      "provider",
			Message: fmt.Sprintf("no provider for kind %q", spec.Kind),
		}
	}
}
