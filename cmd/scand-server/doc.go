// Package main provides the entry point for scand-server.
//
// The server hosts a single scanner device: one shared text buffer and
// any number of tokenizing read sessions over it. It exposes:
//
//   - A RESP-framed TCP protocol for device access (open, read, write,
//     ioctl, close)
//   - An HTTP endpoint for health probes, Prometheus metrics, and
//     status inspection
//   - A local Unix socket for management access
//
// Usage:
//
//	scand-server [flags]
//	scand-server --config /path/to/config.yaml
//
// The server loads configuration, initializes infrastructure
// components, and starts all configured listeners.
package main
