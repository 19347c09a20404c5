package command

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/scand-go/internal/cli/output"
)

// SystemCommand returns the system subcommand group. These commands
// use the local management socket, not the wire listener.
func SystemCommand() *cli.Command {
	return &cli.Command{
		Name:    "system",
		Aliases: []string{"sys"},
		Usage:   "Server management over the local socket",
		Subcommands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show server status summary",
				Action: systemStatus,
			},
			{
				Name:   "sessions",
				Usage:  "List sessions with cursor detail",
				Action: systemSessions,
			},
			{
				Name:      "loglevel",
				Usage:     "Get or set the server log level",
				ArgsUsage: "[debug|info|warn|error]",
				Action:    systemLogLevel,
			},
			{
				Name:  "reset",
				Usage: "Clear the buffer and release all sessions",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Skip confirmation",
					},
				},
				Action: systemReset,
			},
			{
				Name:  "shutdown",
				Usage: "Request graceful server shutdown",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Skip confirmation",
					},
				},
				Action: systemShutdown,
			},
		},
	}
}

func systemStatus(c *cli.Context) error {
	client, flags, err := dialSocket(c)
	if err != nil {
		return err
	}
	defer client.Close()

	lines, err := client.Execute("status")
	if err != nil {
		return err
	}
	return renderLines(flags, lines)
}

func systemSessions(c *cli.Context) error {
	client, _, err := dialSocket(c)
	if err != nil {
		return err
	}
	defer client.Close()

	lines, err := client.Execute("sessions")
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}

func systemLogLevel(c *cli.Context) error {
	client, _, err := dialSocket(c)
	if err != nil {
		return err
	}
	defer client.Close()

	cmd := "loglevel"
	if level := c.Args().First(); level != "" {
		cmd += " " + level
	}
	lines, err := client.Execute(cmd)
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}

func systemReset(c *cli.Context) error {
	if !c.Bool("force") && !confirm("This clears the buffer and releases every session. Continue? [y/N]: ") {
		fmt.Println("Cancelled.")
		return nil
	}

	client, _, err := dialSocket(c)
	if err != nil {
		return err
	}
	defer client.Close()

	lines, err := client.Execute("reset")
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}

func systemShutdown(c *cli.Context) error {
	if !c.Bool("force") && !confirm("Shut down the server? [y/N]: ") {
		fmt.Println("Cancelled.")
		return nil
	}

	client, _, err := dialSocket(c)
	if err != nil {
		return err
	}
	defer client.Close()

	lines, err := client.Execute("shutdown")
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	var answer string
	fmt.Scanln(&answer)
	return answer == "y" || answer == "Y"
}

// renderLines prints "key: value" response lines verbatim in table
// mode, and re-encodes them through the structured formatters otherwise.
func renderLines(flags *GlobalFlags, lines []string) error {
	if flags.Output == output.FormatTable {
		for _, line := range lines {
			fmt.Println(line)
		}
		return nil
	}
	kv := make(map[string]string, len(lines))
	for _, line := range lines {
		key, value, found := strings.Cut(line, ":")
		if !found {
			kv[line] = ""
			continue
		}
		kv[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return output.NewFormatter(flags.Output).Format(os.Stdout, kv)
}
