// Package main provides the entry point for scand-cli.
//
// The CLI tool provides command-line access to scand-server for:
//
//   - Device operations (open, read, write, delim, ioctl, close)
//   - Device inspection (stat, sessions)
//   - Server management over the local socket (status, loglevel,
//     reset, shutdown)
//
// Usage:
//
//	scand-cli [command] [flags]
//	scand-cli device open
//	scand-cli device read scfd-01kct9ns8he7a9m022x0tgbhds --all
//	scand-cli system status --output json
package main
