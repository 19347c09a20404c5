// Package localserver provides the local management server.
//
// It listens on a Unix domain socket and speaks a line protocol: one
// command per line, one or more response lines terminated by a blank
// line. Access control is the socket's file permissions; no further
// authentication is applied.
package localserver
