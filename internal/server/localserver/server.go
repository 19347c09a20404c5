package localserver

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// connTimeout bounds a single management exchange.
const connTimeout = 30 * time.Second

// Server represents the local management server.
type Server struct {
	path     string
	handler  *Handler
	logger   *slog.Logger
	listener net.Listener
	running  atomic.Bool
	wg       sync.WaitGroup
}

// New creates a local server serving handler on the given socket path.
func New(socketPath string, handler *Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		path:    socketPath,
		handler: handler,
		logger:  logger,
	}
}

// Start begins listening on the socket. A stale socket file from a
// previous run is removed first. It does not block.
func (s *Server) Start(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return err
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return err
	}
	if err := os.Chmod(s.path, 0o600); err != nil {
		ln.Close()
		return err
	}

	s.listener = ln
	s.running.Store(true)
	s.logger.Info("local server listening", "path", s.path)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.acceptLoop(ctx)
	}()
	return nil
}

// Shutdown gracefully shuts down the server and removes the socket file.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)

	var closeErr error
	if s.listener != nil {
		closeErr = s.listener.Close()
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

	_ = os.Remove(s.path)
	return closeErr
}

func (s *Server) acceptLoop(ctx context.Context) {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			select {
			case <-ctx.Done():
				return
			default:
			}
			s.logger.Error("local server accept error", "error", err)
			return
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(ctx, conn)
		}()
	}
}

func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	for {
		if err := conn.SetDeadline(time.Now().Add(connTimeout)); err != nil {
			return
		}
		if !scanner.Scan() {
			return
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		if err := s.handler.Execute(ctx, conn, fields[0], fields[1:]); err != nil {
			s.logger.Error("management command failed",
				"command", fields[0], "error", err)
			return
		}
	}
}
