// Package scan implements delimiter-based token extraction over a byte
// buffer.
//
// A token is a maximal run of non-delimiter bytes bounded by delimiter
// bytes or the buffer edges. Runs of consecutive delimiters collapse and
// never produce empty tokens. The scan position is owned by the caller,
// which makes the package usable from any number of independent cursors
// over the same content.
package scan
