// Package logger provides structured logging for scand.
//
// It wraps the standard library log/slog to provide structured JSON
// logging with automatic redaction of device payload contents and a
// dynamically adjustable level.
package logger
