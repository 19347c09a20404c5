package wireserver

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yndnr/scand-go/internal/core/service"
)

// Config holds the wire server configuration.
type Config struct {
	// Addr is the TCP listen address.
	Addr string
	// ReadTimeout is the timeout for reading a command (default: 30s).
	// Helps prevent slowloris attacks.
	ReadTimeout time.Duration
	// WriteTimeout is the timeout for writing a response (default: 30s).
	WriteTimeout time.Duration
	// IdleTimeout is the timeout for idle connections (default: 5m).
	IdleTimeout time.Duration
	// RatePerSecond is the per-client command rate (default: 200).
	// Non-positive disables rate limiting.
	RatePerSecond float64
	// RateBurst is the per-client burst size (default: 400).
	RateBurst int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:          "127.0.0.1:5379",
		ReadTimeout:   30 * time.Second,
		WriteTimeout:  30 * time.Second,
		IdleTimeout:   5 * time.Minute,
		RatePerSecond: 200,
		RateBurst:     400,
	}
}

// Server is the TCP device protocol server.
type Server struct {
	cfg     *Config
	handler *CommandHandler
	logger  *slog.Logger
	ln      net.Listener
	running atomic.Bool
	wg      sync.WaitGroup
}

// Conn represents a single client connection.
type Conn struct {
	netConn net.Conn
	br      *bufio.Reader
	bw      *bufio.Writer
	closed  atomic.Bool
}

func newConn(c net.Conn) *Conn {
	return &Conn{
		netConn: c,
		br:      bufio.NewReader(c),
		bw:      bufio.NewWriter(c),
	}
}

func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.netConn.Close()
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.netConn.RemoteAddr()
}

// New creates a wire server over the device service.
func New(cfg *Config, device *service.DeviceService, logger *slog.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:    cfg,
		logger: logger,
	}
	s.handler = NewCommandHandler(device, cfg, logger)
	return s
}

// Start begins listening and accepting connections. It does not block.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.running.Store(true)
	s.logger.Info("wire server listening", "address", ln.Addr().String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.acceptLoop(ctx, ln); err != nil && s.running.Load() {
			s.logger.Error("wire server accept error", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound listen address, once started.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)

	var firstErr error
	if s.ln != nil {
		if err := s.ln.Close(); err != nil {
			firstErr = err
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return firstErr
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		c, err := ln.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return err
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(ctx, newConn(c))
		}()
	}
}

func (s *Server) serveConn(ctx context.Context, c *Conn) {
	defer c.Close()

	readTimeout := s.cfg.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 30 * time.Second
	}
	writeTimeout := s.cfg.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 30 * time.Second
	}
	idleTimeout := s.cfg.IdleTimeout
	if idleTimeout == 0 {
		idleTimeout = 5 * time.Minute
	}

	for {
		// First byte: allow the connection to idle between commands.
		if err := c.netConn.SetReadDeadline(time.Now().Add(idleTimeout)); err != nil {
			return
		}
		if _, err := c.br.Peek(1); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				s.logger.Debug("connection timed out", "remote", c.RemoteAddr())
				return
			}
			s.logger.Debug("connection read error", "remote", c.RemoteAddr(), "error", err)
			return
		}

		// After the first byte: tighten to the per-command read timeout.
		if err := c.netConn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			return
		}

		args, err := ReadCommand(c.br)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				s.logger.Debug("connection timed out", "remote", c.RemoteAddr())
				return
			}
			if errors.Is(err, ErrLimitExceeded) {
				s.logger.Warn("protocol limit exceeded", "remote", c.RemoteAddr(), "error", err)
				_ = c.netConn.SetWriteDeadline(time.Now().Add(writeTimeout))
				_ = WriteError(c.bw, "ERR protocol limit exceeded")
				_ = c.bw.Flush()
				return
			}
			_ = c.netConn.SetWriteDeadline(time.Now().Add(writeTimeout))
			_ = WriteError(c.bw, "ERR protocol error: "+err.Error())
			_ = c.bw.Flush()
			return
		}

		if len(args) == 0 {
			_ = c.netConn.SetWriteDeadline(time.Now().Add(writeTimeout))
			_ = WriteError(c.bw, "ERR no command")
			_ = c.bw.Flush()
			continue
		}

		s.handler.Handle(ctx, c, args)

		if err := c.netConn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			return
		}
		if err := c.bw.Flush(); err != nil {
			return
		}
		if c.closed.Load() {
			return
		}
	}
}
