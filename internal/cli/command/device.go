package command

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/scand-go/internal/cli/output"
)

// DeviceCommand returns the device subcommand group.
func DeviceCommand() *cli.Command {
	return &cli.Command{
		Name:    "device",
		Aliases: []string{"dev"},
		Usage:   "Operate the scanner device",
		Subcommands: []*cli.Command{
			{
				Name:   "open",
				Usage:  "Open a session and print its handle",
				Action: deviceOpen,
			},
			{
				Name:      "read",
				Usage:     "Read the next token for a handle",
				ArgsUsage: "HANDLE",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "capacity",
						Aliases: []string{"c"},
						Value:   4096,
						Usage:   "Read buffer capacity in bytes",
					},
					&cli.BoolFlag{
						Name:    "all",
						Aliases: []string{"a"},
						Usage:   "Read tokens until end of stream",
					},
				},
				Action: deviceRead,
			},
			{
				Name:      "write",
				Usage:     "Replace the shared buffer",
				ArgsUsage: "HANDLE [TEXT]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "stdin",
						Usage: "Read the payload from standard input",
					},
				},
				Action: deviceWrite,
			},
			{
				Name:      "delim",
				Usage:     "Set the handle's delimiter characters",
				ArgsUsage: "HANDLE CHARS",
				Action:    deviceDelim,
			},
			{
				Name:      "ioctl",
				Usage:     "Issue a raw control command",
				ArgsUsage: "HANDLE CODE [ARG]",
				Action:    deviceIoctl,
			},
			{
				Name:      "close",
				Usage:     "Release a session",
				ArgsUsage: "HANDLE",
				Action:    deviceClose,
			},
			{
				Name:   "stat",
				Usage:  "Show device status",
				Action: deviceStat,
			},
			{
				Name:   "sessions",
				Usage:  "List open session handles",
				Action: deviceSessions,
			},
		},
	}
}

func deviceOpen(c *cli.Context) error {
	client, _, err := dialWire(c)
	if err != nil {
		return err
	}
	defer client.Close()

	handle, err := client.Open()
	if err != nil {
		return err
	}
	fmt.Println(handle)
	return nil
}

func deviceRead(c *cli.Context) error {
	handle := c.Args().First()
	if handle == "" {
		return fmt.Errorf("handle required")
	}

	client, _, err := dialWire(c)
	if err != nil {
		return err
	}
	defer client.Close()

	capacity := c.Int("capacity")
	for {
		tok, eof, err := client.Read(handle, capacity)
		if err != nil {
			return err
		}
		if eof {
			if !c.Bool("all") {
				fmt.Fprintln(os.Stderr, "end of stream")
			}
			return nil
		}
		fmt.Printf("%s\n", tok)
		if !c.Bool("all") {
			return nil
		}
	}
}

func deviceWrite(c *cli.Context) error {
	handle := c.Args().First()
	if handle == "" {
		return fmt.Errorf("handle required")
	}

	var payload []byte
	if c.Bool("stdin") || c.Args().Get(1) == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		payload = data
	} else {
		if c.NArg() < 2 {
			return fmt.Errorf("payload required (or --stdin)")
		}
		payload = []byte(c.Args().Get(1))
	}

	client, _, err := dialWire(c)
	if err != nil {
		return err
	}
	defer client.Close()

	n, err := client.Write(handle, payload)
	if err != nil {
		return err
	}
	fmt.Printf("%d bytes written\n", n)
	return nil
}

func deviceDelim(c *cli.Context) error {
	handle := c.Args().First()
	chars := c.Args().Get(1)
	if handle == "" || chars == "" {
		return fmt.Errorf("handle and delimiter characters required")
	}

	client, _, err := dialWire(c)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Delim(handle, []byte(chars)); err != nil {
		return err
	}
	fmt.Printf("delimiters set (%d bytes)\n", len(chars))
	return nil
}

func deviceIoctl(c *cli.Context) error {
	handle := c.Args().First()
	code := c.Args().Get(1)
	if handle == "" || code == "" {
		return fmt.Errorf("handle and command code required")
	}

	client, _, err := dialWire(c)
	if err != nil {
		return err
	}
	defer client.Close()

	var arg []byte
	if c.NArg() > 2 {
		arg = []byte(c.Args().Get(2))
	}
	if err := client.Ioctl(handle, code, arg); err != nil {
		return err
	}
	fmt.Println("ok")
	return nil
}

func deviceClose(c *cli.Context) error {
	handle := c.Args().First()
	if handle == "" {
		return fmt.Errorf("handle required")
	}

	client, _, err := dialWire(c)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Release(handle); err != nil {
		return err
	}
	fmt.Printf("session %s released\n", handle)
	return nil
}

func deviceStat(c *cli.Context) error {
	client, flags, err := dialWire(c)
	if err != nil {
		return err
	}
	defer client.Close()

	stat, err := client.Stat()
	if err != nil {
		return err
	}
	return output.NewFormatter(flags.Output).Format(os.Stdout, stat)
}

func deviceSessions(c *cli.Context) error {
	client, flags, err := dialWire(c)
	if err != nil {
		return err
	}
	defer client.Close()

	ids, err := client.Sessions()
	if err != nil {
		return err
	}
	table := &output.Table{Headers: []string{"HANDLE"}}
	for _, id := range ids {
		table.AddRow(id)
	}
	if err := output.NewFormatter(flags.Output).Format(os.Stdout, table); err != nil {
		return err
	}
	if flags.Output == output.FormatTable {
		fmt.Printf("\nTotal: %d sessions\n", len(ids))
	}
	return nil
}
