// Package command provides CLI command definitions for scand-cli.
//
// Device commands talk to the wire listener over RESP; system commands
// use the local management socket and need no network access.
package command
