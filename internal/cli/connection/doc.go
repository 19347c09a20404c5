// Package connection provides client transports for scand-cli.
//
// WireClient speaks the RESP-framed device protocol to a scand-server
// wire listener. SocketClient speaks the line protocol on the local
// management socket.
package connection
