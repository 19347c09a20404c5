package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/yndnr/scand-go/internal/core/domain"
	"github.com/yndnr/scand-go/internal/storage/memory"
	"github.com/yndnr/scand-go/internal/telemetry/metric"
)

func newTestService(t *testing.T, cfg Config) *DeviceService {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewDeviceService(
		domain.NewBuffer(domain.DefaultMaxBufferBytes),
		memory.NewSessionStore(),
		metric.NewRegistry(),
		log,
		cfg,
	)
}

func newBoundedService(t *testing.T, maxBufferBytes, maxSessions int) *DeviceService {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewDeviceService(
		domain.NewBuffer(maxBufferBytes),
		memory.NewSessionStore(),
		metric.NewRegistry(),
		log,
		Config{MaxOpenSessions: maxSessions},
	)
}

func mustOpen(t *testing.T, d *DeviceService) *domain.Session {
	t.Helper()
	sess, err := d.Open(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return sess
}

func readAll(t *testing.T, d *DeviceService, id string, capacity int) []string {
	t.Helper()
	var out []string
	for {
		tok, err := d.Read(context.Background(), id, capacity)
		if err != nil {
			t.Fatal(err)
		}
		if len(tok) == 0 {
			return out
		}
		out = append(out, string(tok))
	}
}

// ---------------------------------------------------------------------------
// Open / Release
// ---------------------------------------------------------------------------

func TestOpen_CursorAtCurrentContent(t *testing.T) {
	d := newTestService(t, Config{})
	ctx := context.Background()

	writer := mustOpen(t, d)
	if _, err := d.Write(ctx, writer.ID, []byte("pre existing text")); err != nil {
		t.Fatal(err)
	}

	// A session opened after the write scans the content from the start.
	late := mustOpen(t, d)
	tok, err := d.Read(ctx, late.ID, 64)
	if err != nil {
		t.Fatal(err)
	}
	if string(tok) != "pre" {
		t.Errorf("first token for late opener = %q, want \"pre\"", tok)
	}
}

func TestOpen_QuotaExhausted(t *testing.T) {
	d := newBoundedService(t, 1024, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := d.Open(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := d.Open(ctx); !errors.Is(err, domain.ErrSessionQuota) {
		t.Errorf("Open over quota = %v, want ErrSessionQuota", err)
	}
}

func TestRelease_FreesQuota(t *testing.T) {
	d := newBoundedService(t, 1024, 1)
	ctx := context.Background()

	sess := mustOpen(t, d)
	if err := d.Release(ctx, sess.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Open(ctx); err != nil {
		t.Errorf("Open after release = %v", err)
	}
}

func TestRelease_DoubleReleaseReported(t *testing.T) {
	d := newTestService(t, Config{})
	ctx := context.Background()

	sess := mustOpen(t, d)
	if err := d.Release(ctx, sess.ID); err != nil {
		t.Fatal(err)
	}
	if err := d.Release(ctx, sess.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("double release = %v, want ErrSessionNotFound", err)
	}
}

func TestRelease_DoesNotTouchBuffer(t *testing.T) {
	d := newTestService(t, Config{})
	ctx := context.Background()

	a := mustOpen(t, d)
	b := mustOpen(t, d)
	if _, err := d.Write(ctx, a.ID, []byte("kept after release")); err != nil {
		t.Fatal(err)
	}
	if err := d.Release(ctx, a.ID); err != nil {
		t.Fatal(err)
	}

	got := readAll(t, d, b.ID, 64)
	want := []string{"kept", "after", "release"}
	if len(got) != len(want) {
		t.Fatalf("tokens after release = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLookup_MalformedHandle(t *testing.T) {
	d := newTestService(t, Config{})
	ctx := context.Background()

	if _, err := d.Read(ctx, "not-a-handle", 16); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("malformed handle = %v, want ErrInvalidArgument", err)
	}
	if _, err := d.Read(ctx, "", 16); !errors.Is(err, domain.ErrMissingArgument) {
		t.Errorf("empty handle = %v, want ErrMissingArgument", err)
	}
}

// ---------------------------------------------------------------------------
// Read / Write
// ---------------------------------------------------------------------------

func TestReadWrite_SequentialTokens(t *testing.T) {
	d := newTestService(t, Config{})
	ctx := context.Background()

	sess := mustOpen(t, d)
	if _, err := d.Write(ctx, sess.ID, []byte("This is a test.")); err != nil {
		t.Fatal(err)
	}

	got := readAll(t, d, sess.ID, 64)
	want := []string{"This", "is", "a", "test."}
	if len(got) != len(want) {
		t.Fatalf("tokens = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRead_EndOfStreamIsSticky(t *testing.T) {
	d := newTestService(t, Config{})
	ctx := context.Background()

	sess := mustOpen(t, d)
	if _, err := d.Write(ctx, sess.ID, []byte("only")); err != nil {
		t.Fatal(err)
	}
	readAll(t, d, sess.ID, 64)

	for i := 0; i < 3; i++ {
		tok, err := d.Read(ctx, sess.ID, 64)
		if err != nil {
			t.Fatal(err)
		}
		if len(tok) != 0 {
			t.Fatalf("read %d after end-of-stream = %q", i, tok)
		}
	}
}

func TestRead_EmptyBufferIsEndOfStream(t *testing.T) {
	d := newTestService(t, Config{})
	sess := mustOpen(t, d)

	tok, err := d.Read(context.Background(), sess.ID, 64)
	if err != nil {
		t.Fatal(err)
	}
	if len(tok) != 0 {
		t.Errorf("read on empty buffer = %q", tok)
	}
}

func TestRead_TruncationSkipsRemainder(t *testing.T) {
	d := newTestService(t, Config{})
	ctx := context.Background()

	sess := mustOpen(t, d)
	if _, err := d.Write(ctx, sess.ID, []byte("abcdefgh next")); err != nil {
		t.Fatal(err)
	}

	tok, err := d.Read(ctx, sess.ID, 3)
	if err != nil {
		t.Fatal(err)
	}
	if string(tok) != "abc" {
		t.Fatalf("truncated token = %q, want \"abc\"", tok)
	}

	// The unreturned remainder "defgh" is gone; the next read yields
	// the following token.
	tok, err = d.Read(ctx, sess.ID, 64)
	if err != nil {
		t.Fatal(err)
	}
	if string(tok) != "next" {
		t.Errorf("token after truncation = %q, want \"next\"", tok)
	}
}

func TestRead_ZeroCapacityConsumesNothing(t *testing.T) {
	d := newTestService(t, Config{})
	ctx := context.Background()

	sess := mustOpen(t, d)
	if _, err := d.Write(ctx, sess.ID, []byte("intact")); err != nil {
		t.Fatal(err)
	}

	tok, err := d.Read(ctx, sess.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(tok) != 0 {
		t.Fatalf("zero-capacity read = %q", tok)
	}

	tok, err = d.Read(ctx, sess.ID, 64)
	if err != nil {
		t.Fatal(err)
	}
	if string(tok) != "intact" {
		t.Errorf("token after zero-capacity read = %q", tok)
	}
}

func TestWrite_RestartsEveryCursor(t *testing.T) {
	d := newTestService(t, Config{})
	ctx := context.Background()

	a := mustOpen(t, d)
	b := mustOpen(t, d)
	if _, err := d.Write(ctx, a.ID, []byte("alpha beta gamma")); err != nil {
		t.Fatal(err)
	}

	// b consumes partway through the old content.
	tok, err := d.Read(ctx, b.ID, 64)
	if err != nil || string(tok) != "alpha" {
		t.Fatalf("setup read = %q, %v", tok, err)
	}

	if _, err := d.Write(ctx, a.ID, []byte("fresh words")); err != nil {
		t.Fatal(err)
	}

	// Both the writer and the bystander restart at the new content.
	for _, sess := range []*domain.Session{a, b} {
		tok, err := d.Read(ctx, sess.ID, 64)
		if err != nil {
			t.Fatal(err)
		}
		if string(tok) != "fresh" {
			t.Errorf("session %s first token after write = %q, want \"fresh\"", sess.ID, tok)
		}
	}
}

func TestWrite_EmptyPayloadYieldsEndOfStream(t *testing.T) {
	d := newTestService(t, Config{})
	ctx := context.Background()

	sess := mustOpen(t, d)
	if _, err := d.Write(ctx, sess.ID, []byte("something")); err != nil {
		t.Fatal(err)
	}
	n, err := d.Write(ctx, sess.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("empty write returned n = %d", n)
	}

	tok, err := d.Read(ctx, sess.ID, 64)
	if err != nil {
		t.Fatal(err)
	}
	if len(tok) != 0 {
		t.Errorf("read after empty write = %q", tok)
	}
}

func TestWrite_OversizeLeavesBufferEmpty(t *testing.T) {
	d := newBoundedService(t, 8, 16)
	ctx := context.Background()

	sess := mustOpen(t, d)
	if _, err := d.Write(ctx, sess.ID, []byte("ok")); err != nil {
		t.Fatal(err)
	}

	_, err := d.Write(ctx, sess.ID, bytes.Repeat([]byte("x"), 9))
	if !errors.Is(err, domain.ErrBufferCapacity) {
		t.Fatalf("oversize write = %v, want ErrBufferCapacity", err)
	}

	// The failed write leaves the buffer empty, not holding "ok".
	tok, err := d.Read(ctx, sess.ID, 64)
	if err != nil {
		t.Fatal(err)
	}
	if len(tok) != 0 {
		t.Errorf("read after failed write = %q, want end-of-stream", tok)
	}

	st, err := d.Stat(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.BufferBytes != 0 {
		t.Errorf("buffer bytes after failed write = %d", st.BufferBytes)
	}
}

func TestReadWrite_IndependentCursors(t *testing.T) {
	d := newTestService(t, Config{})
	ctx := context.Background()

	a := mustOpen(t, d)
	b := mustOpen(t, d)
	if _, err := d.Write(ctx, a.ID, []byte("one two three")); err != nil {
		t.Fatal(err)
	}

	// Interleaved reads each see the full sequence.
	wantA := []string{"one", "two", "three"}
	wantB := []string{"one", "two", "three"}
	for i := 0; i < 3; i++ {
		tokA, err := d.Read(ctx, a.ID, 64)
		if err != nil {
			t.Fatal(err)
		}
		tokB, err := d.Read(ctx, b.ID, 64)
		if err != nil {
			t.Fatal(err)
		}
		if string(tokA) != wantA[i] || string(tokB) != wantB[i] {
			t.Errorf("interleaved read %d = %q/%q", i, tokA, tokB)
		}
	}
}

// ---------------------------------------------------------------------------
// Control
// ---------------------------------------------------------------------------

func TestControl_SetDelimitersIsPerSession(t *testing.T) {
	d := newTestService(t, Config{})
	ctx := context.Background()

	a := mustOpen(t, d)
	b := mustOpen(t, d)
	if _, err := d.Write(ctx, a.ID, []byte("x,y z,w")); err != nil {
		t.Fatal(err)
	}
	if err := d.Control(ctx, a.ID, domain.CmdSetDelimiters, []byte(",")); err != nil {
		t.Fatal(err)
	}

	// a splits on commas only; b keeps the whitespace default.
	gotA := readAll(t, d, a.ID, 64)
	wantA := []string{"x", "y z", "w"}
	if len(gotA) != len(wantA) {
		t.Fatalf("comma-session tokens = %v", gotA)
	}
	for i := range wantA {
		if gotA[i] != wantA[i] {
			t.Errorf("comma-session token[%d] = %q, want %q", i, gotA[i], wantA[i])
		}
	}

	gotB := readAll(t, d, b.ID, 64)
	wantB := []string{"x,y", "z,w"}
	if len(gotB) != len(wantB) {
		t.Fatalf("default-session tokens = %v", gotB)
	}
	for i := range wantB {
		if gotB[i] != wantB[i] {
			t.Errorf("default-session token[%d] = %q, want %q", i, gotB[i], wantB[i])
		}
	}
}

func TestControl_MidStreamDelimiterChange(t *testing.T) {
	d := newTestService(t, Config{})
	ctx := context.Background()

	sess := mustOpen(t, d)
	if _, err := d.Write(ctx, sess.ID, []byte("a b,c d")); err != nil {
		t.Fatal(err)
	}
	if tok, err := d.Read(ctx, sess.ID, 64); err != nil || string(tok) != "a" {
		t.Fatalf("first token = %q, %v", tok, err)
	}

	// The new set applies from the current cursor; the position is kept.
	if err := d.Control(ctx, sess.ID, domain.CmdSetDelimiters, []byte(",")); err != nil {
		t.Fatal(err)
	}
	tok, err := d.Read(ctx, sess.ID, 64)
	if err != nil {
		t.Fatal(err)
	}
	if string(tok) != " b" {
		t.Errorf("token after delimiter change = %q, want \" b\"", tok)
	}
}

func TestControl_ForeignMagicRejected(t *testing.T) {
	d := newTestService(t, Config{})
	sess := mustOpen(t, d)

	code := domain.NewCommandCode('z', 0)
	err := d.Control(context.Background(), sess.ID, code, nil)
	if !errors.Is(err, domain.ErrUnsupportedCommand) {
		t.Errorf("foreign magic = %v, want ErrUnsupportedCommand", err)
	}
}

func TestControl_NumberOutOfRangeRejected(t *testing.T) {
	d := newTestService(t, Config{})
	sess := mustOpen(t, d)

	code := domain.NewCommandCode(domain.DeviceMagic, domain.MaxCommandNumber+1)
	err := d.Control(context.Background(), sess.ID, code, nil)
	if !errors.Is(err, domain.ErrUnsupportedCommand) {
		t.Errorf("out-of-range number = %v, want ErrUnsupportedCommand", err)
	}
}

func TestControl_OversizeDelimitersKeepOldSet(t *testing.T) {
	d := newTestService(t, Config{})
	ctx := context.Background()

	sess := mustOpen(t, d)
	if _, err := d.Write(ctx, sess.ID, []byte("a b")); err != nil {
		t.Fatal(err)
	}

	huge := bytes.Repeat([]byte("x"), domain.MaxDelimiterSetBytes+1)
	err := d.Control(ctx, sess.ID, domain.CmdSetDelimiters, huge)
	if !errors.Is(err, domain.ErrDelimiterCapacity) {
		t.Fatalf("oversize delimiters = %v, want ErrDelimiterCapacity", err)
	}

	// The whitespace default still applies.
	tok, err := d.Read(ctx, sess.ID, 64)
	if err != nil {
		t.Fatal(err)
	}
	if string(tok) != "a" {
		t.Errorf("token after rejected control = %q", tok)
	}
}

// ---------------------------------------------------------------------------
// Cancellation
// ---------------------------------------------------------------------------

func TestOperations_CancelledContext(t *testing.T) {
	d := newTestService(t, Config{})
	sess := mustOpen(t, d)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := d.Open(ctx); !errors.Is(err, domain.ErrInterrupted) {
		t.Errorf("Open = %v, want ErrInterrupted", err)
	}
	if _, err := d.Read(ctx, sess.ID, 16); !errors.Is(err, domain.ErrInterrupted) {
		t.Errorf("Read = %v, want ErrInterrupted", err)
	}
	if _, err := d.Write(ctx, sess.ID, []byte("x")); !errors.Is(err, domain.ErrInterrupted) {
		t.Errorf("Write = %v, want ErrInterrupted", err)
	}
	if err := d.Control(ctx, sess.ID, domain.CmdSetDelimiters, nil); !errors.Is(err, domain.ErrInterrupted) {
		t.Errorf("Control = %v, want ErrInterrupted", err)
	}
	if err := d.Release(ctx, sess.ID); !errors.Is(err, domain.ErrInterrupted) {
		t.Errorf("Release = %v, want ErrInterrupted", err)
	}

	// The cancelled release touched nothing: the session is still open.
	if _, err := d.Read(context.Background(), sess.ID, 16); err != nil {
		t.Errorf("session gone after cancelled release: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Management views
// ---------------------------------------------------------------------------

func TestStat_ReflectsState(t *testing.T) {
	d := newBoundedService(t, 1024, 8)
	ctx := context.Background()

	sess := mustOpen(t, d)
	if _, err := d.Write(ctx, sess.ID, []byte("hello world")); err != nil {
		t.Fatal(err)
	}

	st, err := d.Stat(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.BufferBytes != 11 {
		t.Errorf("BufferBytes = %d", st.BufferBytes)
	}
	if st.SessionsOpen != 1 {
		t.Errorf("SessionsOpen = %d", st.SessionsOpen)
	}
	if st.MaxOpenSessions != 8 || st.MaxBufferBytes != 1024 {
		t.Errorf("bounds = %d/%d", st.MaxOpenSessions, st.MaxBufferBytes)
	}
	if st.BufferFingerprint == "" {
		t.Error("fingerprint empty for non-empty buffer")
	}
}

func TestSessions_SortedListing(t *testing.T) {
	d := newTestService(t, Config{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		mustOpen(t, d)
	}

	infos, err := d.Sessions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 3 {
		t.Fatalf("listed %d sessions", len(infos))
	}
	for i := 1; i < len(infos); i++ {
		if infos[i-1].ID >= infos[i].ID {
			t.Error("listing not sorted by handle")
		}
	}
}

func TestReset_DropsSessionsAndBuffer(t *testing.T) {
	d := newTestService(t, Config{})
	ctx := context.Background()

	sess := mustOpen(t, d)
	if _, err := d.Write(ctx, sess.ID, []byte("gone")); err != nil {
		t.Fatal(err)
	}

	if err := d.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Read(ctx, sess.ID, 16); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("read after reset = %v, want ErrSessionNotFound", err)
	}
	st, err := d.Stat(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.BufferBytes != 0 || st.SessionsOpen != 0 {
		t.Errorf("state after reset = %+v", st)
	}
}

// ---------------------------------------------------------------------------
// Concurrency
// ---------------------------------------------------------------------------

func TestConcurrent_ReadersAndWriters(t *testing.T) {
	d := newTestService(t, Config{})
	ctx := context.Background()

	writer := mustOpen(t, d)
	if _, err := d.Write(ctx, writer.ID, []byte("seed words here")); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		sess := mustOpen(t, d)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if _, err := d.Read(ctx, sess.ID, 64); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 100; j++ {
			if _, err := d.Write(ctx, writer.ID, []byte("replacement content")); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	wg.Wait()
}
