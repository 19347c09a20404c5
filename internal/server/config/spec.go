package config

import "time"

// ServerConfig is the root configuration for scand-server.
type ServerConfig struct {
	Server ServerSection `koanf:"server"`
	Device DeviceSection `koanf:"device"`
	Log    LogSection    `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	Wire  WireConfig  `koanf:"wire"`
	HTTP  HTTPConfig  `koanf:"http"`
	Local LocalConfig `koanf:"local"`
}

// WireConfig configures the RESP-framed device protocol server.
type WireConfig struct {
	Addr string `koanf:"addr"`

	// ReadTimeout and WriteTimeout bound a single command exchange.
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// RatePerSecond and RateBurst shape the per-client token bucket.
	// A non-positive rate disables limiting.
	RatePerSecond float64 `koanf:"rate_per_second"`
	RateBurst     int     `koanf:"rate_burst"`
}

// HTTPConfig configures the observability HTTP server.
type HTTPConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// LocalConfig configures the local management socket.
type LocalConfig struct {
	Path string `koanf:"path"`
}

// DeviceSection bounds the device state.
type DeviceSection struct {
	// MaxBufferBytes caps the shared buffer content.
	MaxBufferBytes int `koanf:"max_buffer_bytes"`

	// MaxOpenSessions caps concurrently open sessions.
	MaxOpenSessions int `koanf:"max_open_sessions"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
