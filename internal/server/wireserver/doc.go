// Package wireserver provides the TCP device protocol server.
//
// Commands and responses are framed with the Redis RESP wire format, so
// any RESP client library can drive the device. The command set maps
// one-to-one onto the device operations: OPEN, READ, WRITE, IOCTL,
// DELIM, CLOSE, STAT, plus PING and QUIT for connection management.
package wireserver
