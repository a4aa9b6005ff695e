package download

import (
	"context"
	"io"

	"github.com/jlaffaye/ftp"

	"github.com/arrow-sus/susfs/pkg/conn"
)

// Source opens remote file streams for the engine. The second return
// value is the remote size in bytes, or a negative value when the
// server cannot report one.
type Source interface {
	Open(ctx context.Context, remotePath string) (io.ReadCloser, int64, error)
}

// FTPSource streams files from the archive, one scoped session per
// transfer. Closing the returned stream terminates the session.
type FTPSource struct {
	mgr *conn.Manager
}

// NewFTPSource creates a Source over mgr.
func NewFTPSource(mgr *conn.Manager) *FTPSource {
	return &FTPSource{mgr: mgr}
}

// Open implements Source.
func (s *FTPSource) Open(ctx context.Context, remotePath string) (io.ReadCloser, int64, error) {
	c, err := s.mgr.Connect(ctx)
	if err != nil {
		return nil, -1, err
	}

	size, err := c.FileSize(remotePath)
	if err != nil {
		// SIZE is optional on legacy servers; transfer anyway.
		size = -1
	}

	resp, err := c.Retr(remotePath)
	if err != nil {
		_ = c.Quit()
		return nil, -1, err
	}

	return &ftpStream{resp: resp, conn: c}, size, nil
}

// ftpStream ties the data stream's lifetime to its session: Close
// releases both, whichever way the transfer ended.
type ftpStream struct {
	resp *ftp.Response
	conn *ftp.ServerConn
}

func (s *ftpStream) Read(p []byte) (int, error) {
	return s.resp.Read(p)
}

func (s *ftpStream) Close() error {
	err := s.resp.Close()
	if qerr := s.conn.Quit(); err == nil {
		err = qerr
	}
	return err
}
