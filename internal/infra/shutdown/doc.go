// Package shutdown provides graceful shutdown handling: hooks run in
// reverse registration order on SIGINT, SIGTERM, or a programmatic
// trigger.
package shutdown
