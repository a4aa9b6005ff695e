package conn

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// RawList retrieves the unparsed LIST output for path. jlaffaye/ftp
// parses listings itself and silently drops lines its grammar rejects,
// which loses exactly the noisy lines the archive emits; this exchange
// hands every raw line to the caller instead.
func (m *Manager) RawList(ctx context.Context, path string) ([]string, error) {
	dialer := &net.Dialer{Timeout: m.timeout}

	control, err := dialer.DialContext(ctx, "tcp", m.addr())
	if err != nil {
		return nil, transportErr("list", fmt.Sprintf("dial %s", m.addr()), err)
	}
	defer control.Close()
	if err := m.setDeadline(ctx, control); err != nil {
		return nil, transportErr("list", "set deadline", err)
	}

	tp := textproto.NewConn(control)
	if _, _, err := tp.ReadResponse(220); err != nil {
		return nil, transportErr("list", "server greeting", err)
	}

	if err := m.expect(tp, 331, "USER %s", m.user); err != nil {
		return nil, err
	}
	if err := m.expect(tp, 230, "PASS %s", m.password); err != nil {
		return nil, err
	}
	if err := m.expect(tp, 200, "TYPE A"); err != nil {
		return nil, err
	}
	if err := m.expect(tp, 250, "CWD %s", path); err != nil {
		return nil, err
	}

	dataAddr, err := m.passive(tp)
	if err != nil {
		return nil, err
	}

	data, err := dialer.DialContext(ctx, "tcp", dataAddr)
	if err != nil {
		return nil, transportErr("list", fmt.Sprintf("dial data %s", dataAddr), err)
	}
	defer data.Close()
	if err := m.setDeadline(ctx, data); err != nil {
		return nil, transportErr("list", "set data deadline", err)
	}

	if _, err := tp.Cmd("LIST"); err != nil {
		return nil, transportErr("list", "send LIST", err)
	}
	if code, msg, err := tp.ReadResponse(1); err != nil {
		return nil, transportErr("list", fmt.Sprintf("LIST rejected: %d %s", code, msg), err)
	}

	var lines []string
	scanner := bufio.NewScanner(data)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, transportErr("list", "read listing", err)
	}
	data.Close()

	if _, _, err := tp.ReadResponse(226); err != nil {
		return nil, transportErr("list", "transfer completion", err)
	}

	if _, err := tp.Cmd("QUIT"); err == nil {
		_, _, _ = tp.ReadResponse(221)
	}

	m.log.Debug("raw listing retrieved",
		zap.String("path", path), zap.Int("lines", len(lines)))
	return lines, nil
}

// setDeadline bounds c by the manager timeout, tightened by the
// context deadline when that one is earlier.
func (m *Manager) setDeadline(ctx context.Context, c net.Conn) error {
	deadline := time.Now().Add(m.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	return c.SetDeadline(deadline)
}

func (m *Manager) expect(tp *textproto.Conn, code int, format string, args ...any) error {
	if _, err := tp.Cmd(format, args...); err != nil {
		return transportErr("list", "send command", err)
	}
	if got, msg, err := tp.ReadResponse(code); err != nil {
		return transportErr("list", fmt.Sprintf("unexpected reply %d %s", got, msg), err)
	}
	return nil
}

// passive issues PASV and returns the data address. The archive runs a
// legacy server that predates EPSV.
func (m *Manager) passive(tp *textproto.Conn) (string, error) {
	if _, err := tp.Cmd("PASV"); err != nil {
		return "", transportErr("list", "send PASV", err)
	}
	_, msg, err := tp.ReadResponse(227)
	if err != nil {
		return "", transportErr("list", "PASV rejected", err)
	}
	addr, err := parsePasvAddr(msg)
	if err != nil {
		return "", transportErr("list", err.Error(), nil)
	}
	return addr, nil
}

// parsePasvAddr extracts the data address from a 227 reply message,
// e.g. "Entering Passive Mode (192,168,0,1,19,136)".
func parsePasvAddr(msg string) (string, error) {
	start := strings.Index(msg, "(")
	end := strings.Index(msg, ")")
	if start < 0 || end < start {
		return "", fmt.Errorf("malformed PASV reply %q", msg)
	}
	parts := strings.Split(msg[start+1:end], ",")
	if len(parts) != 6 {
		return "", fmt.Errorf("malformed PASV reply %q", msg)
	}

	p1, err1 := strconv.Atoi(strings.TrimSpace(parts[4]))
	p2, err2 := strconv.Atoi(strings.TrimSpace(parts[5]))
	if err1 != nil || err2 != nil {
		return "", fmt.Errorf("malformed PASV port in %q", msg)
	}

	host := strings.Join(parts[:4], ".")
	return net.JoinHostPort(host, strconv.Itoa(p1*256+p2)), nil
}
