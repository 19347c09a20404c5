package benchmark

import (
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/yndnr/scand-go/internal/core/domain"
	"github.com/yndnr/scand-go/internal/core/service"
	"github.com/yndnr/scand-go/internal/storage/memory"
	"github.com/yndnr/scand-go/internal/telemetry/metric"
)

func newBenchDevice(b *testing.B) *service.DeviceService {
	b.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return service.NewDeviceService(
		domain.NewBuffer(domain.DefaultMaxBufferBytes),
		memory.NewSessionStore(),
		metric.NewRegistry(),
		log,
		service.Config{MaxOpenSessions: 1 << 20},
	)
}

// wordsPayload builds a payload of size approximately n bytes made of
// space-separated pseudo-random words.
func wordsPayload(n int) []byte {
	rng := rand.New(rand.NewSource(42))
	buf := make([]byte, 0, n)
	for len(buf) < n {
		wordLen := 3 + rng.Intn(10)
		for i := 0; i < wordLen; i++ {
			buf = append(buf, byte('a'+rng.Intn(26)))
		}
		buf = append(buf, ' ')
	}
	return buf[:n]
}
