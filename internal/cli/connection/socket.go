package connection

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"time"
)

// SocketClient speaks the line protocol on the local management socket.
// Each exchange sends one command line and reads response lines up to
// the blank terminator.
type SocketClient struct {
	path    string
	timeout time.Duration
	conn    net.Conn
}

// NewSocketClient creates a client for the given socket path.
func NewSocketClient(socketPath string, timeout time.Duration) *SocketClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SocketClient{path: socketPath, timeout: timeout}
}

// Connect connects to the local socket.
func (c *SocketClient) Connect() error {
	conn, err := net.DialTimeout("unix", c.path, c.timeout)
	if err != nil {
		return fmt.Errorf("connect %s: %w", c.path, err)
	}
	c.conn = conn
	return nil
}

// Close closes the socket connection.
func (c *SocketClient) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Execute sends a command and returns the response lines.
// An "error:" first line is surfaced as an error.
func (c *SocketClient) Execute(cmd string) ([]string, error) {
	if c.conn == nil {
		if err := c.Connect(); err != nil {
			return nil, err
		}
	}
	if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return nil, err
	}

	if _, err := c.conn.Write([]byte(cmd + "\n")); err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}

	var lines []string
	reader := bufio.NewReader(c.conn)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		lines = append(lines, line)
	}

	if len(lines) > 0 && strings.HasPrefix(lines[0], "error:") {
		return nil, fmt.Errorf("%s", strings.TrimSpace(strings.TrimPrefix(lines[0], "error:")))
	}
	return lines, nil
}
