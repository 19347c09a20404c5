package logger

import (
	"fmt"
	"log/slog"
)

// redactedKeys are attribute keys whose values carry user data written
// into or read out of the shared buffer. The data itself never reaches
// the log; only its length does.
var redactedKeys = map[string]bool{
	"payload":    true,
	"token":      true,
	"delimiters": true,
}

// redactSensitive replaces user-data attribute values with a length
// placeholder.
func redactSensitive(a slog.Attr) slog.Attr {
	if !redactedKeys[a.Key] {
		return a
	}

	switch v := a.Value.Any().(type) {
	case string:
		a.Value = slog.StringValue(fmt.Sprintf("[%d bytes]", len(v)))
	case []byte:
		a.Value = slog.StringValue(fmt.Sprintf("[%d bytes]", len(v)))
	default:
		a.Value = slog.StringValue("[redacted]")
	}
	return a
}
