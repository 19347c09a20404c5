// Package handler implements the HTTP endpoints: health probes and
// read-only JSON views of the device state.
package handler
