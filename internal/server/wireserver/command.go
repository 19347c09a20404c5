package wireserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/yndnr/scand-go/internal/core/domain"
	"github.com/yndnr/scand-go/internal/core/service"
)

// formatWireError converts an error to a wire error string.
// For DomainErrors, returns "ERR <code> <message>".
func formatWireError(err error) string {
	var de *domain.DomainError
	if errors.As(err, &de) {
		return "ERR " + de.Code + " " + de.Message
	}
	return "ERR " + err.Error()
}

// clientLimiter keeps a token bucket per client IP.
type clientLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func newClientLimiter(perSecond float64, burst int) *clientLimiter {
	return &clientLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(perSecond),
		burst:    burst,
	}
}

// allow checks if a command from the given IP should be admitted.
func (cl *clientLimiter) allow(ip string) bool {
	cl.mu.Lock()
	lim, ok := cl.limiters[ip]
	if !ok {
		lim = rate.NewLimiter(cl.rate, cl.burst)
		cl.limiters[ip] = lim
	}
	cl.mu.Unlock()
	return lim.Allow()
}

// CommandHandler dispatches wire commands onto the device service.
type CommandHandler struct {
	device  *service.DeviceService
	logger  *slog.Logger
	limiter *clientLimiter
}

// NewCommandHandler creates a CommandHandler.
func NewCommandHandler(device *service.DeviceService, cfg *Config, logger *slog.Logger) *CommandHandler {
	if logger == nil {
		logger = slog.Default()
	}

	var cl *clientLimiter
	if cfg != nil && cfg.RatePerSecond > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		cl = newClientLimiter(cfg.RatePerSecond, burst)
	}

	return &CommandHandler{
		device:  device,
		logger:  logger,
		limiter: cl,
	}
}

// Handle handles one command (RESP array of bulk strings).
func (h *CommandHandler) Handle(ctx context.Context, conn *Conn, args [][]byte) {
	if len(args) == 0 {
		_ = WriteError(conn.bw, "ERR no command")
		return
	}

	cmdName := normalizeCommandName(args[0])

	// Connection-level commands bypass rate limiting.
	switch cmdName {
	case "PING":
		h.handlePing(conn, args)
		return
	case "QUIT":
		h.handleQuit(conn)
		return
	}

	if h.limiter != nil {
		ip := remoteIP(conn)
		if !h.limiter.allow(ip) {
			_ = WriteError(conn.bw, "ERR SD-RATE-4290 rate limit exceeded")
			return
		}
	}

	switch cmdName {
	case "OPEN":
		h.handleOpen(ctx, conn, args)
	case "READ":
		h.handleRead(ctx, conn, args)
	case "WRITE":
		h.handleWrite(ctx, conn, args)
	case "IOCTL":
		h.handleIoctl(ctx, conn, args)
	case "DELIM":
		h.handleDelim(ctx, conn, args)
	case "CLOSE":
		h.handleClose(ctx, conn, args)
	case "STAT":
		h.handleStat(ctx, conn, args)
	case "SESSIONS":
		h.handleSessions(ctx, conn, args)
	default:
		_ = WriteError(conn.bw, "ERR unknown command '"+cmdName+"'")
	}
}

func remoteIP(conn *Conn) string {
	addr := conn.RemoteAddr().String()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

func (h *CommandHandler) handlePing(conn *Conn, args [][]byte) {
	if len(args) > 1 {
		_ = WriteBulk(conn.bw, args[1])
		return
	}
	_ = WriteSimpleString(conn.bw, "PONG")
}

func (h *CommandHandler) handleQuit(conn *Conn) {
	_ = WriteSimpleString(conn.bw, "OK")
	_ = conn.bw.Flush()
	_ = conn.Close()
}

// OPEN
//
// Opens a session and returns its handle.
func (h *CommandHandler) handleOpen(ctx context.Context, conn *Conn, args [][]byte) {
	if len(args) != 1 {
		_ = WriteError(conn.bw, "ERR wrong number of arguments for 'OPEN' command")
		return
	}

	sess, err := h.device.Open(ctx)
	if err != nil {
		_ = WriteError(conn.bw, formatWireError(err))
		return
	}
	_ = WriteBulkString(conn.bw, sess.ID)
}

// READ <handle> <capacity>
//
// Returns the session's next token as a bulk string, cut to capacity.
// A zero-length bulk means end-of-stream, mirroring a 0-byte read.
func (h *CommandHandler) handleRead(ctx context.Context, conn *Conn, args [][]byte) {
	if len(args) != 3 {
		_ = WriteError(conn.bw, "ERR wrong number of arguments for 'READ' command")
		return
	}

	capacity, err := strconv.Atoi(string(args[2]))
	if err != nil || capacity < 0 {
		_ = WriteError(conn.bw, "ERR SD-ARG-1001 capacity must be a non-negative integer")
		return
	}

	tok, err := h.device.Read(ctx, string(args[1]), capacity)
	if err != nil {
		_ = WriteError(conn.bw, formatWireError(err))
		return
	}
	if tok == nil {
		tok = []byte{}
	}
	_ = WriteBulk(conn.bw, tok)
}

// WRITE <handle> <payload>
//
// Replaces the shared buffer content and returns the stored byte count.
// A null payload bulk means the client failed to deliver its input; the
// buffer is reset to empty so no stale content survives the fault.
func (h *CommandHandler) handleWrite(ctx context.Context, conn *Conn, args [][]byte) {
	if len(args) != 3 {
		_ = WriteError(conn.bw, "ERR wrong number of arguments for 'WRITE' command")
		return
	}

	if args[2] == nil {
		if err := h.device.ResetBuffer(ctx); err != nil {
			_ = WriteError(conn.bw, formatWireError(err))
			return
		}
		_ = WriteError(conn.bw, formatWireError(domain.ErrFaultCopyIn))
		return
	}

	n, err := h.device.Write(ctx, string(args[1]), args[2])
	if err != nil {
		_ = WriteError(conn.bw, formatWireError(err))
		return
	}
	_ = WriteInteger(conn.bw, int64(n))
}

// IOCTL <handle> <code> [arg]
//
// Dispatches a control command. The code is either "<magic>/<nr>"
// (e.g. "q/0") or a bare command number within the device's own magic.
func (h *CommandHandler) handleIoctl(ctx context.Context, conn *Conn, args [][]byte) {
	if len(args) != 3 && len(args) != 4 {
		_ = WriteError(conn.bw, "ERR wrong number of arguments for 'IOCTL' command")
		return
	}

	code, err := parseCommandCode(string(args[2]))
	if err != nil {
		_ = WriteError(conn.bw, formatWireError(err))
		return
	}

	var arg []byte
	if len(args) == 4 {
		arg = args[3]
	}

	if err := h.device.Control(ctx, string(args[1]), code, arg); err != nil {
		_ = WriteError(conn.bw, formatWireError(err))
		return
	}
	_ = WriteSimpleString(conn.bw, "OK")
}

// DELIM <handle> <set>
//
// Shorthand for IOCTL with the set-delimiters command.
func (h *CommandHandler) handleDelim(ctx context.Context, conn *Conn, args [][]byte) {
	if len(args) != 3 {
		_ = WriteError(conn.bw, "ERR wrong number of arguments for 'DELIM' command")
		return
	}

	if err := h.device.Control(ctx, string(args[1]), domain.CmdSetDelimiters, args[2]); err != nil {
		_ = WriteError(conn.bw, formatWireError(err))
		return
	}
	_ = WriteSimpleString(conn.bw, "OK")
}

// CLOSE <handle>
func (h *CommandHandler) handleClose(ctx context.Context, conn *Conn, args [][]byte) {
	if len(args) != 2 {
		_ = WriteError(conn.bw, "ERR wrong number of arguments for 'CLOSE' command")
		return
	}

	if err := h.device.Release(ctx, string(args[1])); err != nil {
		_ = WriteError(conn.bw, formatWireError(err))
		return
	}
	_ = WriteSimpleString(conn.bw, "OK")
}

// STAT
//
// Returns the device status as a flat array of key/value bulk pairs.
func (h *CommandHandler) handleStat(ctx context.Context, conn *Conn, args [][]byte) {
	if len(args) != 1 {
		_ = WriteError(conn.bw, "ERR wrong number of arguments for 'STAT' command")
		return
	}

	st, err := h.device.Stat(ctx)
	if err != nil {
		_ = WriteError(conn.bw, formatWireError(err))
		return
	}

	pairs := [][2]string{
		{"buffer_bytes", strconv.Itoa(st.BufferBytes)},
		{"buffer_generation", strconv.FormatUint(st.BufferGeneration, 10)},
		{"buffer_fingerprint", st.BufferFingerprint},
		{"max_buffer_bytes", strconv.Itoa(st.MaxBufferBytes)},
		{"sessions_open", strconv.Itoa(st.SessionsOpen)},
		{"max_open_sessions", strconv.Itoa(st.MaxOpenSessions)},
		{"uptime_seconds", strconv.FormatInt(st.UptimeSeconds, 10)},
	}

	_ = WriteArrayHeader(conn.bw, len(pairs)*2)
	for _, p := range pairs {
		_ = WriteBulkString(conn.bw, p[0])
		_ = WriteBulkString(conn.bw, p[1])
	}
}

// SESSIONS
//
// Returns the open session handles.
func (h *CommandHandler) handleSessions(ctx context.Context, conn *Conn, args [][]byte) {
	if len(args) != 1 {
		_ = WriteError(conn.bw, "ERR wrong number of arguments for 'SESSIONS' command")
		return
	}

	infos, err := h.device.Sessions(ctx)
	if err != nil {
		_ = WriteError(conn.bw, formatWireError(err))
		return
	}

	_ = WriteArrayHeader(conn.bw, len(infos))
	for _, info := range infos {
		_ = WriteBulkString(conn.bw, info.ID)
	}
}

// parseCommandCode parses "<magic>/<nr>" or a bare command number.
func parseCommandCode(s string) (domain.CommandCode, error) {
	if magic, nr, ok := strings.Cut(s, "/"); ok {
		if len(magic) != 1 {
			return 0, domain.ErrInvalidArgument.WithDetails(
				fmt.Sprintf("command magic %q must be a single character", magic))
		}
		n, err := strconv.ParseUint(nr, 10, 8)
		if err != nil {
			return 0, domain.ErrInvalidArgument.WithDetails("command number must be an integer in 0..255")
		}
		return domain.NewCommandCode(magic[0], uint8(n)), nil
	}

	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, domain.ErrInvalidArgument.WithDetails("command code must be <magic>/<nr> or a number in 0..255")
	}
	return domain.NewCommandCode(domain.DeviceMagic, uint8(n)), nil
}
