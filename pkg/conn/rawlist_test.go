package conn

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestParsePasvAddr(t *testing.T) {
	addr, err := parsePasvAddr("Entering Passive Mode (192,168,0,1,19,136)")
	if err != nil {
		t.Fatalf("parsePasvAddr: %v", err)
	}
	if addr != "192.168.0.1:5000" {
		t.Errorf("addr = %q, want 192.168.0.1:5000", addr)
	}

	bad := []string{
		"Entering Passive Mode",
		"Entering Passive Mode (1,2,3)",
		"Entering Passive Mode (1,2,3,4,x,y)",
		")(",
	}
	for _, msg := range bad {
		if _, err := parsePasvAddr(msg); err == nil {
			t.Errorf("parsePasvAddr(%q) accepted", msg)
		}
	}
}

// fakeListServer speaks just enough of the protocol to serve one LIST.
type fakeListServer struct {
	t     *testing.T
	ln    net.Listener
	lines []string

	mu      sync.Mutex
	gotUser string
	gotCwd  string
}

func newFakeListServer(t *testing.T, lines []string) *fakeListServer {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	s := &fakeListServer{t: t, ln: ln, lines: lines}
	go s.serve()
	t.Cleanup(func() { ln.Close() })
	return s
}

func (s *fakeListServer) port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

func (s *fakeListServer) serve() {
	conn, err := s.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	reply := func(line string) {
		fmt.Fprintf(conn, "%s\r\n", line)
	}
	reply("220 fake archive ready")

	var dataLn net.Listener
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		cmd := scanner.Text()
		switch {
		case strings.HasPrefix(cmd, "USER "):
			s.mu.Lock()
			s.gotUser = strings.TrimPrefix(cmd, "USER ")
			s.mu.Unlock()
			reply("331 password please")
		case strings.HasPrefix(cmd, "PASS "):
			reply("230 logged in")
		case cmd == "TYPE A":
			reply("200 type set")
		case strings.HasPrefix(cmd, "CWD "):
			s.mu.Lock()
			s.gotCwd = strings.TrimPrefix(cmd, "CWD ")
			s.mu.Unlock()
			reply("250 directory changed")
		case cmd == "PASV":
			var err error
			dataLn, err = net.Listen("tcp", "127.0.0.1:0")
			if err != nil {
				reply("421 cannot open data port")
				return
			}
			port := dataLn.Addr().(*net.TCPAddr).Port
			reply(fmt.Sprintf("227 Entering Passive Mode (127,0,0,1,%d,%d)", port/256, port%256))
		case cmd == "LIST":
			reply("150 opening data connection")
			data, err := dataLn.Accept()
			dataLn.Close()
			if err != nil {
				return
			}
			for _, line := range s.lines {
				fmt.Fprintf(data, "%s\r\n", line)
			}
			data.Close()
			reply("226 transfer complete")
		case cmd == "QUIT":
			reply("221 goodbye")
			return
		default:
			reply("502 not implemented")
		}
	}
}

func TestRawList(t *testing.T) {
	lines := []string{
		"12-01-23 02:30PM    <DIR>          SIASUS",
		"01-15-24 10:45AM           2048576 data.dbc",
		"this line would never survive a strict parser",
	}
	srv := newFakeListServer(t, lines)

	m := New("127.0.0.1", WithPort(srv.port()), WithTimeout(5*time.Second))
	got, err := m.RawList(context.Background(), "/dissemin/publicos")
	if err != nil {
		t.Fatalf("RawList: %v", err)
	}

	if len(got) != len(lines) {
		t.Fatalf("got %d lines, want %d", len(got), len(lines))
	}
	for i, line := range lines {
		if got[i] != line {
			t.Errorf("line %d = %q, want %q", i, got[i], line)
		}
	}
	srv.mu.Lock()
	user, cwd := srv.gotUser, srv.gotCwd
	srv.mu.Unlock()
	if user != "anonymous" {
		t.Errorf("login user = %q, want anonymous", user)
	}
	if cwd != "/dissemin/publicos" {
		t.Errorf("CWD = %q", cwd)
	}
}

func TestRawListLoginRejected(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		fmt.Fprintf(conn, "220 ready\r\n")
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			fmt.Fprintf(conn, "530 not logged in\r\n")
		}
	}()

	m := New("127.0.0.1",
		WithPort(ln.Addr().(*net.TCPAddr).Port),
		WithTimeout(2*time.Second),
	)
	_, err = m.RawList(context.Background(), "/x")
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsTransport(err) {
		t.Errorf("error %v not classified as transport", err)
	}
}
