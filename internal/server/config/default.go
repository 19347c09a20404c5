package config

import "time"

// Default configuration values.
const (
	DefaultWireAddr    = "127.0.0.1:5379"
	DefaultHTTPAddr    = "127.0.0.1:5080"
	DefaultLocalSocket = "/var/run/scand-server/scand-server.sock"

	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 30 * time.Second

	DefaultRatePerSecond = 200.0
	DefaultRateBurst     = 400

	DefaultMaxBufferBytes  = 16 << 20
	DefaultMaxOpenSessions = 1024

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Wire: WireConfig{
				Addr:          DefaultWireAddr,
				ReadTimeout:   DefaultReadTimeout,
				WriteTimeout:  DefaultWriteTimeout,
				RatePerSecond: DefaultRatePerSecond,
				RateBurst:     DefaultRateBurst,
			},
			HTTP: HTTPConfig{
				Enabled: true,
				Addr:    DefaultHTTPAddr,
			},
			Local: LocalConfig{
				Path: DefaultLocalSocket,
			},
		},
		Device: DeviceSection{
			MaxBufferBytes:  DefaultMaxBufferBytes,
			MaxOpenSessions: DefaultMaxOpenSessions,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
