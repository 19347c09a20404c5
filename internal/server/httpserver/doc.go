// Package httpserver provides the HTTP observability server.
//
// It uses the Go standard library net/http and exposes health probes,
// Prometheus metrics, and read-only JSON views of the device state.
// Device operations themselves go over the wire protocol, not HTTP.
package httpserver
