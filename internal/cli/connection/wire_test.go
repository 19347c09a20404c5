package connection

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/yndnr/scand-go/internal/core/domain"
	"github.com/yndnr/scand-go/internal/core/service"
	"github.com/yndnr/scand-go/internal/server/wireserver"
	"github.com/yndnr/scand-go/internal/storage/memory"
	"github.com/yndnr/scand-go/internal/telemetry/metric"
)

func startWireServer(t *testing.T) string {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	device := service.NewDeviceService(
		domain.NewBuffer(domain.DefaultMaxBufferBytes),
		memory.NewSessionStore(),
		metric.NewRegistry(),
		log,
		service.Config{},
	)
	srv := wireserver.New(&wireserver.Config{Addr: "127.0.0.1:0"}, device, log)
	if err := srv.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})
	return srv.Addr().String()
}

func newConnectedClient(t *testing.T) *WireClient {
	t.Helper()
	client := NewWireClient(startWireServer(t), 5*time.Second)
	if err := client.Connect(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestWireClient_Ping(t *testing.T) {
	client := newConnectedClient(t)
	if err := client.Ping(); err != nil {
		t.Fatal(err)
	}
}

func TestWireClient_TokenRoundTrip(t *testing.T) {
	client := newConnectedClient(t)

	handle, err := client.Open()
	if err != nil {
		t.Fatal(err)
	}

	n, err := client.Write(handle, []byte("one two"))
	if err != nil {
		t.Fatal(err)
	}
	if n != 7 {
		t.Errorf("write count = %d", n)
	}

	for _, want := range []string{"one", "two"} {
		tok, eof, err := client.Read(handle, 64)
		if err != nil {
			t.Fatal(err)
		}
		if eof || string(tok) != want {
			t.Errorf("token = %q (eof=%v), want %q", tok, eof, want)
		}
	}

	if _, eof, err := client.Read(handle, 64); err != nil || !eof {
		t.Errorf("expected end of stream, err=%v", err)
	}

	if err := client.Release(handle); err != nil {
		t.Fatal(err)
	}
}

func TestWireClient_Delim(t *testing.T) {
	client := newConnectedClient(t)

	handle, err := client.Open()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := client.Write(handle, []byte("a,b")); err != nil {
		t.Fatal(err)
	}
	if err := client.Delim(handle, []byte(",")); err != nil {
		t.Fatal(err)
	}
	tok, _, err := client.Read(handle, 64)
	if err != nil || string(tok) != "a" {
		t.Errorf("token = %q, err = %v", tok, err)
	}
}

func TestWireClient_ServerError(t *testing.T) {
	client := newConnectedClient(t)

	handle, err := client.Open()
	if err != nil {
		t.Fatal(err)
	}
	if err := client.Release(handle); err != nil {
		t.Fatal(err)
	}

	err = client.Release(handle)
	var srvErr *ServerError
	if !errors.As(err, &srvErr) {
		t.Fatalf("error = %v, want *ServerError", err)
	}
	if srvErr.Code != "SD-SESS-4040" {
		t.Errorf("code = %q", srvErr.Code)
	}
}

func TestWireClient_StatAndSessions(t *testing.T) {
	client := newConnectedClient(t)

	handle, err := client.Open()
	if err != nil {
		t.Fatal(err)
	}

	stat, err := client.Stat()
	if err != nil {
		t.Fatal(err)
	}
	if stat["sessions_open"] != "1" {
		t.Errorf("sessions_open = %q", stat["sessions_open"])
	}

	ids, err := client.Sessions()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != handle {
		t.Errorf("sessions = %v", ids)
	}
}

func TestParseServerError(t *testing.T) {
	tests := []struct {
		body     string
		wantCode string
		wantMsg  string
	}{
		{"ERR SD-SESS-4040 session not found", "SD-SESS-4040", "session not found"},
		{"ERR unknown command", "", "unknown command"},
		{"plain failure", "", "plain failure"},
	}
	for _, tt := range tests {
		got := parseServerError(tt.body)
		if got.Code != tt.wantCode || got.Message != tt.wantMsg {
			t.Errorf("parseServerError(%q) = %q/%q", tt.body, got.Code, got.Message)
		}
	}
}
