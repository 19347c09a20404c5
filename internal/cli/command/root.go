package command

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/scand-go/internal/cli/connection"
	"github.com/yndnr/scand-go/internal/cli/output"
)

// Build information, set via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "scand-cli",
		Usage:   "scand command-line management tool",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildTime),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			DeviceCommand(),
			SystemCommand(),
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "scand-server wire address",
			EnvVars: []string{"SCAND_SERVER"},
			Value:   "127.0.0.1:5379",
		},
		&cli.StringFlag{
			Name:    "socket",
			Usage:   "Local management socket path",
			EnvVars: []string{"SCAND_SOCKET"},
			Value:   "/var/run/scand-server/scand-server.sock",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Command timeout",
			Value: 30 * time.Second,
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server  string
	Socket  string
	Output  output.Format
	Timeout time.Duration
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Server:  c.String("server"),
		Socket:  c.String("socket"),
		Output:  output.Format(c.String("output")),
		Timeout: c.Duration("timeout"),
	}
}

// dialWire connects a wire client using the global flags.
func dialWire(c *cli.Context) (*connection.WireClient, *GlobalFlags, error) {
	flags := ParseGlobalFlags(c)
	if !flags.Output.Valid() {
		return nil, nil, fmt.Errorf("unknown output format %q", flags.Output)
	}
	client := connection.NewWireClient(flags.Server, flags.Timeout)
	if err := client.Connect(); err != nil {
		return nil, nil, err
	}
	return client, flags, nil
}

// dialSocket connects a management socket client using the global flags.
func dialSocket(c *cli.Context) (*connection.SocketClient, *GlobalFlags, error) {
	flags := ParseGlobalFlags(c)
	if !flags.Output.Valid() {
		return nil, nil, fmt.Errorf("unknown output format %q", flags.Output)
	}
	client := connection.NewSocketClient(flags.Socket, flags.Timeout)
	if err := client.Connect(); err != nil {
		return nil, nil, err
	}
	return client, flags, nil
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
