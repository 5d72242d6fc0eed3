// Package main is the i2cdev command line tool. It reads and writes device registers and drives
// AD524x potentiometers on the buses described by a config file.
package main

import (
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"go.viam.com/i2cdev/logging"
)

const (
	// Flags.
	flagConfig = "config"
	flagDebug  = "debug"
	flagBus    = "bus"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(w io.Writer) *cli.App {
	var logger logging.Logger

	withLogger := func(action func(*cli.Context, logging.Logger) error) cli.ActionFunc {
		return func(c *cli.Context) error {
			return action(c, logger)
		}
	}

	return &cli.App{
		Name:            "i2cdev",
		Usage:           "talk to register devices on an i2c bus",
		HideHelpCommand: true,
		Writer:          w,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     flagConfig,
				Aliases:  []string{"c"},
				Usage:    "load configuration from `FILE`",
				Required: true,
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.StringFlag{
				Name:    flagBus,
				Aliases: []string{"b"},
				Usage:   "use the bus named `NAME`; may be omitted when only one bus is configured",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool(flagDebug) {
				logger = logging.NewDebugLogger("i2cdev")
			} else {
				logger = logging.NewLogger("i2cdev")
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "read",
				Usage:     "read consecutive registers",
				ArgsUsage: "<address> <register> [count]",
				Action:    withLogger(ReadAction),
			},
			{
				Name:      "write",
				Usage:     "write consecutive registers",
				ArgsUsage: "<address> <register> <byte>...",
				Action:    withLogger(WriteAction),
			},
			{
				Name:      "read-bits",
				Usage:     "read a bit-field of one register",
				ArgsUsage: "<address> <register> <start> <length>",
				Action:    withLogger(ReadBitsAction),
			},
			{
				Name:      "write-bits",
				Usage:     "replace a bit-field of one register, keeping the other bits",
				ArgsUsage: "<address> <register> <start> <length> <value>",
				Action:    withLogger(WriteBitsAction),
			},
			{
				Name:            "pot",
				Usage:           "work with ad524x potentiometers",
				HideHelpCommand: true,
				Subcommands: []*cli.Command{
					{
						Name:      "set",
						Usage:     "set a wiper position",
						ArgsUsage: "<component> <rdac1|rdac2> <value>",
						Action:    withLogger(PotSetAction),
					},
					{
						Name:      "output",
						Usage:     "drive a logic output",
						ArgsUsage: "<component> <o1|o2> <on|off>",
						Action:    withLogger(PotOutputAction),
					},
					{
						Name:      "midscale",
						Usage:     "reset a wiper to midscale",
						ArgsUsage: "<component> <rdac1|rdac2>",
						Action:    withLogger(PotMidscaleAction),
					},
					{
						Name:      "shutdown",
						Usage:     "enter or leave shutdown",
						ArgsUsage: "<component> <on|off>",
						Action:    withLogger(PotShutdownAction),
					},
				},
			},
			{
				Name:      "trace",
				Usage:     "run one transaction on a fake bus and print the conditions it produced",
				ArgsUsage: "<address> <register> [byte]...",
				Action:    withLogger(TraceAction),
			},
		},
	}
}
