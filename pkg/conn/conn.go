// Package conn manages sessions against the remote archive. It wraps
// jlaffaye/ftp for control operations and file retrieval, and speaks
// the LIST exchange itself because the archive's listing format needs
// a more tolerant parser than the library applies.
package conn

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/jlaffaye/ftp"
	"go.uber.org/zap"

	"github.com/arrow-sus/susfs/pkg/logging"
)

// DefaultTimeout bounds every network operation unless overridden.
const DefaultTimeout = 30 * time.Second

// Manager opens and tears down sessions against one archive host. It
// owns the timeout policy; it holds no open connection between calls.
type Manager struct {
	host     string
	port     int
	timeout  time.Duration
	user     string
	password string
	log      *zap.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithPort sets a non-default control port.
func WithPort(port int) Option {
	return func(m *Manager) { m.port = port }
}

// WithTimeout sets the per-operation network timeout.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) { m.timeout = d }
}

// WithCredentials replaces the default anonymous login.
func WithCredentials(user, password string) Option {
	return func(m *Manager) {
		m.user = user
		m.password = password
	}
}

// WithLogger attaches a logger.
func WithLogger(log *zap.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// New creates a Manager for host. The default session is anonymous on
// port 21, matching the public archive.
func New(host string, opts ...Option) *Manager {
	m := &Manager{
		host:     host,
		port:     21,
		timeout:  DefaultTimeout,
		user:     "anonymous",
		password: "anonymous",
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = logging.Or(m.log)
	return m
}

// Host returns the configured host.
func (m *Manager) Host() string { return m.host }

// Port returns the configured control port.
func (m *Manager) Port() int { return m.port }

// Timeout returns the per-operation timeout.
func (m *Manager) Timeout() time.Duration { return m.timeout }

func (m *Manager) addr() string {
	return net.JoinHostPort(m.host, strconv.Itoa(m.port))
}

// Connect dials and authenticates a new session. The caller owns the
// returned connection and must Quit it; prefer WithConnection.
func (m *Manager) Connect(ctx context.Context) (*ftp.ServerConn, error) {
	c, err := ftp.Dial(m.addr(),
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(m.timeout),
	)
	if err != nil {
		return nil, transportErr("connect", fmt.Sprintf("dial %s", m.addr()), err)
	}
	if err := c.Login(m.user, m.password); err != nil {
		// Close the half-open session before reporting.
		_ = c.Quit()
		return nil, transportErr("connect", "login failed", err)
	}
	return c, nil
}

// WithConnection runs fn against a fresh session and terminates the
// session on every exit path, including panics inside fn.
func (m *Manager) WithConnection(ctx context.Context, fn func(*ftp.ServerConn) error) error {
	c, err := m.Connect(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Quit(); err != nil {
			m.log.Debug("quit failed", zap.String("host", m.host), zap.Error(err))
		}
	}()
	return fn(c)
}

// TestConnection reports whether the archive currently accepts a
// session. It never returns an error; probing is best effort.
func (m *Manager) TestConnection(ctx context.Context) bool {
	ok := false
	err := m.WithConnection(ctx, func(c *ftp.ServerConn) error {
		_, err := c.CurrentDir()
		ok = err == nil
		return nil
	})
	return err == nil && ok
}
