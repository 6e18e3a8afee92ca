package tsquery

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

// fakeServer speaks just enough of the query protocol for the client: it
// greets, then answers each command line with canned responses.
type fakeServer struct {
	ln        net.Listener
	responses map[string]string // command name -> body line ("" for none)
	failures  map[string]string // command name -> error line override
	push      chan string       // raw lines pushed to the client
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &fakeServer{
		ln:        ln,
		responses: map[string]string{},
		failures:  map[string]string{},
		push:      make(chan string, 8),
	}
	t.Cleanup(func() { ln.Close() })

	go srv.serve()
	return srv
}

func (s *fakeServer) serve() {
	conn, err := s.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	conn.Write([]byte("TS3\n\r"))
	conn.Write([]byte("Welcome to the TeamSpeak 3 ServerQuery interface\n\r"))

	lines := make(chan string)
	go func() {
		reader := bufio.NewReader(conn)
		for {
			raw, err := reader.ReadString('\n')
			if err != nil {
				close(lines)
				return
			}
			lines <- strings.Trim(raw, "\r\n")
		}
	}()

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return
			}
			command, _, _ := strings.Cut(line, " ")
			if body := s.responses[command]; body != "" {
				conn.Write([]byte(body + "\n\r"))
			}
			if failure := s.failures[command]; failure != "" {
				conn.Write([]byte(failure + "\n\r"))
				continue
			}
			conn.Write([]byte("error id=0 msg=ok\n\r"))
		case pushed := <-s.push:
			conn.Write([]byte(pushed + "\n\r"))
		}
	}
}

func (s *fakeServer) addr() string {
	return s.ln.Addr().String()
}

func TestExecBeforeConnectFailsWithoutNetworkCall(t *testing.T) {
	client := NewClient("127.0.0.1:1", testLogger())

	_, err := client.Exec(context.Background(), "clientlist")
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestConnectAndExec(t *testing.T) {
	srv := newFakeServer(t)
	srv.responses["clientlist"] = `clid=1 client_nickname=Thrall client_database_id=7|clid=2 client_nickname=Grom client_database_id=8`

	client := NewClient(srv.addr(), testLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	resp, err := client.Exec(ctx, "clientlist")
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	if len(resp.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(resp.Records))
	}
	if resp.Records[0]["client_nickname"] != "Thrall" {
		t.Fatalf("unexpected record: %v", resp.Records[0])
	}
}

func TestExecServerErrorSurfaced(t *testing.T) {
	srv := newFakeServer(t)
	srv.failures["login"] = `error id=520 msg=invalid\sloginname\sor\spassword`

	client := NewClient(srv.addr(), testLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	resp, err := client.Exec(ctx, "login", P("client_login_name", "x"), P("client_login_password", "y"))
	var qe *QueryError
	if !errors.As(err, &qe) || qe.ID != 520 {
		t.Fatalf("expected query error id=520, got %v", err)
	}
	if resp == nil || resp.Message != "invalid loginname or password" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	// The link survives a rejected command.
	if _, err := client.Exec(ctx, "whoami"); err != nil {
		t.Fatalf("exec after rejected command: %v", err)
	}
}

func TestNotificationsDeliveredWhileIdle(t *testing.T) {
	srv := newFakeServer(t)

	client := NewClient(srv.addr(), testLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	srv.push <- `notifytextmessage targetmode=1 msg=hello invokerid=7 invokername=Thrall`

	select {
	case n := <-client.Notifications():
		if n.Event != "notifytextmessage" || n.Args["msg"] != "hello" {
			t.Fatalf("unexpected notification: %+v", n)
		}
	case <-ctx.Done():
		t.Fatalf("notification not delivered")
	}
}

func TestExecAfterCloseFails(t *testing.T) {
	srv := newFakeServer(t)

	client := NewClient(srv.addr(), testLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	client.Close()

	if _, err := client.Exec(ctx, "clientlist"); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected after close, got %v", err)
	}
}

func TestParamEscapingOnWire(t *testing.T) {
	srv := newFakeServer(t)

	client := NewClient(srv.addr(), testLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	// A message containing spaces must round-trip the command without the
	// server splitting it; id=0 terminator proves the line stayed intact.
	if _, err := client.Exec(ctx, "sendtextmessage",
		P("targetmode", "1"), P("target", "42"), P("msg", "hello there friend")); err != nil {
		t.Fatalf("exec with escaped params: %v", err)
	}
}
