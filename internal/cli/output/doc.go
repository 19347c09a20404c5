// Package output provides output formatting for scand-cli.
//
// Command results render as an aligned table by default; --output
// selects JSON or YAML instead.
package output
