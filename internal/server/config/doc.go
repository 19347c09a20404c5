// Package config defines the server configuration structure for
// scand-server: serving addresses, device bounds, and logging.
package config
