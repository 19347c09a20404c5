package config

import (
	"errors"
	"fmt"
	"net"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyDevice(&cfg.Device); err != nil {
		return err
	}
	if err := verifyLog(&cfg.Log); err != nil {
		return err
	}
	return nil
}

func verifyServer(cfg *ServerSection) error {
	if cfg.Wire.Addr == "" {
		return errors.New("server.wire.addr is required")
	}
	if _, _, err := net.SplitHostPort(cfg.Wire.Addr); err != nil {
		return fmt.Errorf("server.wire.addr: %w", err)
	}
	if cfg.HTTP.Enabled {
		if _, _, err := net.SplitHostPort(cfg.HTTP.Addr); err != nil {
			return fmt.Errorf("server.http.addr: %w", err)
		}
	}
	if cfg.Local.Path == "" {
		return errors.New("server.local.path is required")
	}
	if cfg.Wire.ReadTimeout < 0 || cfg.Wire.WriteTimeout < 0 {
		return errors.New("server.wire timeouts must not be negative")
	}
	if cfg.Wire.RatePerSecond > 0 && cfg.Wire.RateBurst < 1 {
		return errors.New("server.wire.rate_burst must be at least 1 when rate limiting is on")
	}
	return nil
}

func verifyDevice(cfg *DeviceSection) error {
	if cfg.MaxBufferBytes < 1 {
		return errors.New("device.max_buffer_bytes must be at least 1")
	}
	if cfg.MaxOpenSessions < 1 {
		return errors.New("device.max_open_sessions must be at least 1")
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	switch cfg.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Level)
	}
	switch cfg.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format %q is not one of json, text", cfg.Format)
	}
	return nil
}
