package connection

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"
)

// DefaultDialTimeout bounds the initial TCP connect.
const DefaultDialTimeout = 5 * time.Second

// WireClient is a RESP client for the scand-server wire protocol.
// It is not safe for concurrent use; scand-cli issues one command
// at a time.
type WireClient struct {
	addr    string
	timeout time.Duration
	conn    net.Conn
	br      *bufio.Reader
	bw      *bufio.Writer
}

// NewWireClient creates a client for the given wire address.
// The timeout applies to each command round trip.
func NewWireClient(addr string, timeout time.Duration) *WireClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &WireClient{addr: addr, timeout: timeout}
}

// Connect dials the server.
func (c *WireClient) Connect() error {
	conn, err := net.DialTimeout("tcp", c.addr, DefaultDialTimeout)
	if err != nil {
		return fmt.Errorf("connect %s: %w", c.addr, err)
	}
	c.conn = conn
	c.br = bufio.NewReader(conn)
	c.bw = bufio.NewWriter(conn)
	return nil
}

// Close closes the connection.
func (c *WireClient) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Addr returns the configured server address.
func (c *WireClient) Addr() string {
	return c.addr
}

// ServerError is an error reply from the server. The code is the
// leading SD-* token of the error line when present.
type ServerError struct {
	Code    string
	Message string
}

func (e *ServerError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// reply is a decoded RESP reply.
type reply struct {
	simple  string
	integer int64
	bulk    []byte
	null    bool
	array   []reply
	kind    byte
}

// do sends one command and decodes the reply.
func (c *WireClient) do(args ...[]byte) (*reply, error) {
	if c.conn == nil {
		if err := c.Connect(); err != nil {
			return nil, err
		}
	}
	if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return nil, err
	}

	fmt.Fprintf(c.bw, "*%d\r\n", len(args))
	for _, a := range args {
		fmt.Fprintf(c.bw, "$%d\r\n", len(a))
		c.bw.Write(a)
		c.bw.WriteString("\r\n")
	}
	if err := c.bw.Flush(); err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}
	return c.readReply()
}

func (c *WireClient) readReply() (*reply, error) {
	line, err := c.readLine()
	if err != nil {
		return nil, err
	}
	if len(line) == 0 {
		return nil, fmt.Errorf("empty reply line")
	}

	body := string(line[1:])
	switch line[0] {
	case '+':
		return &reply{kind: '+', simple: body}, nil
	case '-':
		return nil, parseServerError(body)
	case ':':
		n, err := strconv.ParseInt(body, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad integer reply %q", body)
		}
		return &reply{kind: ':', integer: n}, nil
	case '$':
		n, err := strconv.Atoi(body)
		if err != nil {
			return nil, fmt.Errorf("bad bulk length %q", body)
		}
		if n < 0 {
			return &reply{kind: '$', null: true}, nil
		}
		buf := make([]byte, n+2)
		if _, err := io.ReadFull(c.br, buf); err != nil {
			return nil, fmt.Errorf("read bulk: %w", err)
		}
		return &reply{kind: '$', bulk: buf[:n]}, nil
	case '*':
		n, err := strconv.Atoi(body)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("bad array length %q", body)
		}
		items := make([]reply, 0, n)
		for i := 0; i < n; i++ {
			item, err := c.readReply()
			if err != nil {
				return nil, err
			}
			items = append(items, *item)
		}
		return &reply{kind: '*', array: items}, nil
	default:
		return nil, fmt.Errorf("unexpected reply type %q", line[0])
	}
}

func (c *WireClient) readLine() ([]byte, error) {
	line, err := c.br.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read reply: %w", err)
	}
	if len(line) < 2 || line[len(line)-2] != '\r' {
		return nil, fmt.Errorf("malformed reply line")
	}
	return line[:len(line)-2], nil
}

// parseServerError splits "ERR SD-XXX-NNNN message" into code and message.
func parseServerError(body string) *ServerError {
	rest := body
	if len(rest) > 4 && rest[:4] == "ERR " {
		rest = rest[4:]
	}
	for i := 0; i < len(rest); i++ {
		if rest[i] == ' ' {
			head := rest[:i]
			if len(head) > 3 && head[:3] == "SD-" {
				return &ServerError{Code: head, Message: rest[i+1:]}
			}
			break
		}
	}
	return &ServerError{Message: rest}
}

// ---------------------------------------------------------------------
// Device operations
// ---------------------------------------------------------------------

// Ping checks server liveness.
func (c *WireClient) Ping() error {
	r, err := c.do([]byte("PING"))
	if err != nil {
		return err
	}
	if r.simple != "PONG" {
		return fmt.Errorf("unexpected ping reply %q", r.simple)
	}
	return nil
}

// Open creates a device session and returns its handle.
func (c *WireClient) Open() (string, error) {
	r, err := c.do([]byte("OPEN"))
	if err != nil {
		return "", err
	}
	return string(r.bulk), nil
}

// Read requests the next token for a handle. eof reports a zero-length
// reply, meaning the handle's cursor is at end of stream.
func (c *WireClient) Read(handle string, capacity int) (token []byte, eof bool, err error) {
	r, err := c.do([]byte("READ"), []byte(handle), []byte(strconv.Itoa(capacity)))
	if err != nil {
		return nil, false, err
	}
	if r.null || len(r.bulk) == 0 {
		return nil, true, nil
	}
	return r.bulk, false, nil
}

// Write replaces the shared buffer and returns the byte count accepted.
func (c *WireClient) Write(handle string, payload []byte) (int, error) {
	r, err := c.do([]byte("WRITE"), []byte(handle), payload)
	if err != nil {
		return 0, err
	}
	return int(r.integer), nil
}

// Ioctl issues a control command. The code is passed through verbatim,
// either "magic/nr" or a bare command number.
func (c *WireClient) Ioctl(handle, code string, arg []byte) error {
	args := [][]byte{[]byte("IOCTL"), []byte(handle), []byte(code)}
	if arg != nil {
		args = append(args, arg)
	}
	_, err := c.do(args...)
	return err
}

// Delim replaces the handle's delimiter set.
func (c *WireClient) Delim(handle string, set []byte) error {
	_, err := c.do([]byte("DELIM"), []byte(handle), set)
	return err
}

// Release closes a device session.
func (c *WireClient) Release(handle string) error {
	_, err := c.do([]byte("CLOSE"), []byte(handle))
	return err
}

// Stat returns device status as key/value pairs.
func (c *WireClient) Stat() (map[string]string, error) {
	r, err := c.do([]byte("STAT"))
	if err != nil {
		return nil, err
	}
	if len(r.array)%2 != 0 {
		return nil, fmt.Errorf("odd STAT reply length %d", len(r.array))
	}
	stat := make(map[string]string, len(r.array)/2)
	for i := 0; i+1 < len(r.array); i += 2 {
		stat[string(r.array[i].bulk)] = string(r.array[i+1].bulk)
	}
	return stat, nil
}

// Sessions lists open session handles.
func (c *WireClient) Sessions() ([]string, error) {
	r, err := c.do([]byte("SESSIONS"))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(r.array))
	for _, item := range r.array {
		ids = append(ids, string(item.bulk))
	}
	return ids, nil
}

// Quit asks the server to close the connection.
func (c *WireClient) Quit() error {
	_, err := c.do([]byte("QUIT"))
	return err
}
