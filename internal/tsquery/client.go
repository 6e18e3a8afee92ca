package tsquery

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// ErrNotConnected is returned for any command attempted before the query
// link is established. No network call is made in that case.
var ErrNotConnected = errors.New("serverquery: not connected")

// Param is one key=value argument of a query command.
type Param struct {
	Key   string
	Value string
}

// P builds a command parameter.
func P(key, value string) Param {
	return Param{Key: key, Value: value}
}

// Client speaks the TeamSpeak 3 ServerQuery protocol over a single TCP
// connection. Commands are serialized; notifications are delivered on a
// separate channel as they arrive.
type Client struct {
	addr string
	log  *zerolog.Logger

	mu        sync.Mutex // serializes command/response round trips
	conn      net.Conn
	connected atomic.Bool

	lines  chan string
	notifs chan Notification
}

// NewClient constructs a client for the given query address (host:port).
func NewClient(addr string, logger *zerolog.Logger) *Client {
	return &Client{
		addr:   addr,
		log:    logger,
		lines:  make(chan string, 16),
		notifs: make(chan Notification, 32),
	}
}

// Connect dials the server and consumes the protocol greeting. It must be
// called before any command.
func (c *Client) Connect(ctx context.Context) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.addr, err)
	}

	reader := bufio.NewReader(conn)
	greeting, err := readLine(reader)
	if err != nil {
		conn.Close()
		return fmt.Errorf("read greeting: %w", err)
	}
	if !strings.HasPrefix(greeting, "TS3") {
		conn.Close()
		return fmt.Errorf("unexpected greeting %q", greeting)
	}
	// Discard the welcome banner that follows the protocol identifier.
	if _, err := readLine(reader); err != nil {
		conn.Close()
		return fmt.Errorf("read banner: %w", err)
	}

	c.conn = conn
	c.connected.Store(true)
	go c.readLoop(reader)

	c.log.Info().Str("addr", c.addr).Msg("serverquery connected")
	return nil
}

// Connected reports whether the query link is up.
func (c *Client) Connected() bool {
	return c.connected.Load()
}

// Notifications returns the stream of unsolicited server events. The
// channel closes when the connection drops.
func (c *Client) Notifications() <-chan Notification {
	return c.notifs
}

// Exec sends one command and waits for its terminating error line. The
// returned error is non-nil when the server reported a non-zero error id;
// the response is returned alongside it.
func (c *Client) Exec(ctx context.Context, command string, params ...Param) (*Response, error) {
	if !c.connected.Load() {
		return nil, ErrNotConnected
	}

	var b strings.Builder
	b.WriteString(command)
	for _, p := range params {
		b.WriteByte(' ')
		b.WriteString(p.Key)
		b.WriteByte('=')
		b.WriteString(Escape(p.Value))
	}
	b.WriteByte('\n')

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.conn.Write([]byte(b.String())); err != nil {
		return nil, fmt.Errorf("write command: %w", err)
	}

	resp := &Response{}
	for {
		select {
		case line, ok := <-c.lines:
			if !ok {
				return nil, ErrNotConnected
			}
			if strings.HasPrefix(line, "error ") {
				resp.ErrorID, resp.Message = parseError(line)
				return resp, resp.Err()
			}
			resp.Records = append(resp.Records, parseRecords(line)...)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Close tears down the connection. Pending commands fail with
// ErrNotConnected.
func (c *Client) Close() error {
	if !c.connected.Swap(false) {
		return nil
	}
	return c.conn.Close()
}

func (c *Client) readLoop(reader *bufio.Reader) {
	defer func() {
		c.connected.Store(false)
		close(c.lines)
		close(c.notifs)
	}()

	for {
		line, err := readLine(reader)
		if err != nil {
			if c.connected.Load() {
				c.log.Warn().Err(err).Msg("serverquery read failed")
			}
			return
		}
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "notify") {
			c.notifs <- parseNotification(line)
			continue
		}
		c.lines <- line
	}
}

// readLine reads one protocol line. The server terminates lines with a
// bare "\n\r", so a leading carriage return may precede the next line.
func readLine(reader *bufio.Reader) (string, error) {
	raw, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.Trim(raw, "\r\n"), nil
}
