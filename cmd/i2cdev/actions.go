package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	goutils "go.viam.com/utils"

	"go.viam.com/i2cdev/components/board/bitfield"
	"go.viam.com/i2cdev/components/board/fake"
	"go.viam.com/i2cdev/components/board/i2cdev"
	"go.viam.com/i2cdev/components/potentiometer/ad524x"
	"go.viam.com/i2cdev/config"
	"go.viam.com/i2cdev/logging"
	"go.viam.com/i2cdev/utils"
)

// ReadAction is the corresponding action for 'read'.
func ReadAction(c *cli.Context, logger logging.Logger) error {
	args, err := parseArgs(c, 2, 3)
	if err != nil {
		return err
	}
	count := 1
	if len(args) == 3 {
		if args[2] == 0 {
			return errors.New("count must be at least 1")
		}
		count = int(args[2])
	}
	return withBus(c, logger, func(bus *i2cdev.Bus) error {
		buf := make([]byte, count)
		n, err := bus.ReadBytes(c.Context, i2cdev.Addr(args[0]), args[1], buf)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "% #x\n", buf[:n])
		return nil
	})
}

// WriteAction is the corresponding action for 'write'.
func WriteAction(c *cli.Context, logger logging.Logger) error {
	args, err := parseArgs(c, 3, -1)
	if err != nil {
		return err
	}
	return withBus(c, logger, func(bus *i2cdev.Bus) error {
		n, err := bus.WriteBytes(c.Context, i2cdev.Addr(args[0]), args[1], args[2:])
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "wrote %d bytes\n", n)
		return nil
	})
}

// ReadBitsAction is the corresponding action for 'read-bits'.
func ReadBitsAction(c *cli.Context, logger logging.Logger) error {
	args, err := parseArgs(c, 4, 4)
	if err != nil {
		return err
	}
	return withBus(c, logger, func(bus *i2cdev.Bus) error {
		v, err := bus.ReadBits(c.Context, i2cdev.Addr(args[0]), args[1], bitfield.Field{Start: args[2], Length: args[3]})
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "0x%02X\n", v)
		return nil
	})
}

// WriteBitsAction is the corresponding action for 'write-bits'.
func WriteBitsAction(c *cli.Context, logger logging.Logger) error {
	args, err := parseArgs(c, 5, 5)
	if err != nil {
		return err
	}
	return withBus(c, logger, func(bus *i2cdev.Bus) error {
		f := bitfield.Field{Start: args[2], Length: args[3]}
		if err := bus.WriteBits(c.Context, i2cdev.Addr(args[0]), args[1], f, args[4]); err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, "ok")
		return nil
	})
}

// PotSetAction is the corresponding action for 'pot set'.
func PotSetAction(c *cli.Context, logger logging.Logger) error {
	if c.Args().Len() != 3 {
		return errors.New("expected a component, a wiper and a value")
	}
	ch, err := parseChannel(c.Args().Get(1))
	if err != nil {
		return err
	}
	value, err := utils.ParseByte(c.Args().Get(2))
	if err != nil {
		return err
	}
	return withPot(c, logger, func(pot *ad524x.Pot) error {
		return pot.SetRDAC(c.Context, ch, value)
	})
}

// PotOutputAction is the corresponding action for 'pot output'.
func PotOutputAction(c *cli.Context, logger logging.Logger) error {
	if c.Args().Len() != 3 {
		return errors.New("expected a component, an output and on or off")
	}
	var o ad524x.Output
	switch strings.ToLower(c.Args().Get(1)) {
	case "o1", "1":
		o = ad524x.O1
	case "o2", "2":
		o = ad524x.O2
	default:
		return errors.Errorf("unknown output %q", c.Args().Get(1))
	}
	on, err := parseSwitch(c.Args().Get(2))
	if err != nil {
		return err
	}
	return withPot(c, logger, func(pot *ad524x.Pot) error {
		if on {
			return pot.SetOutput(c.Context, o)
		}
		return pot.ClearOutput(c.Context, o)
	})
}

// PotMidscaleAction is the corresponding action for 'pot midscale'.
func PotMidscaleAction(c *cli.Context, logger logging.Logger) error {
	if c.Args().Len() != 2 {
		return errors.New("expected a component and a wiper")
	}
	ch, err := parseChannel(c.Args().Get(1))
	if err != nil {
		return err
	}
	return withPot(c, logger, func(pot *ad524x.Pot) error {
		return pot.SetMidscale(c.Context, ch)
	})
}

// PotShutdownAction is the corresponding action for 'pot shutdown'.
func PotShutdownAction(c *cli.Context, logger logging.Logger) error {
	if c.Args().Len() != 2 {
		return errors.New("expected a component and on or off")
	}
	on, err := parseSwitch(c.Args().Get(1))
	if err != nil {
		return err
	}
	return withPot(c, logger, func(pot *ad524x.Pot) error {
		return pot.Shutdown(c.Context, on)
	})
}

// TraceAction is the corresponding action for 'trace'.
func TraceAction(c *cli.Context, logger logging.Logger) error {
	args, err := parseArgs(c, 2, -1)
	if err != nil {
		return err
	}
	return withMachine(c, logger, func(m *config.Machine) error {
		name, bus, err := selectBus(c, m)
		if err != nil {
			return err
		}
		p, _ := m.Peripheral(name)
		sim, ok := p.(*fake.Peripheral)
		if !ok {
			return errors.Errorf("bus %q is not a fake bus, nothing to trace", name)
		}
		sim.ResetTrace()

		addr := i2cdev.Addr(args[0])
		if len(args) > 2 {
			_, err = bus.WriteBytes(c.Context, addr, args[1], args[2:])
		} else {
			_, err = bus.ReadByte(c.Context, addr, args[1])
		}
		fmt.Fprintln(c.App.Writer, sim.Trace().String())
		return err
	})
}

func withMachine(c *cli.Context, logger logging.Logger, f func(m *config.Machine) error) error {
	cfg, err := config.Read(c.String(flagConfig), logger)
	if err != nil {
		return err
	}
	m, err := config.Build(cfg, logger)
	if err != nil {
		return err
	}
	defer goutils.UncheckedErrorFunc(m.Close)
	return f(m)
}

func withBus(c *cli.Context, logger logging.Logger, f func(bus *i2cdev.Bus) error) error {
	return withMachine(c, logger, func(m *config.Machine) error {
		_, bus, err := selectBus(c, m)
		if err != nil {
			return err
		}
		return f(bus)
	})
}

func withPot(c *cli.Context, logger logging.Logger, f func(pot *ad524x.Pot) error) error {
	return withMachine(c, logger, func(m *config.Machine) error {
		pot, err := m.Pot(c.Args().First())
		if err != nil {
			return err
		}
		if err := f(pot); err != nil {
			return err
		}
		logger.Infow("potentiometer updated", "component", c.Args().First(), "instruction", fmt.Sprintf("0x%02X", pot.Instruction()))
		fmt.Fprintln(c.App.Writer, "ok")
		return nil
	})
}

// selectBus returns the bus named by --bus, or the only bus when the flag is not set.
func selectBus(c *cli.Context, m *config.Machine) (string, *i2cdev.Bus, error) {
	name := c.String(flagBus)
	if name == "" {
		names := m.BusNames()
		if len(names) != 1 {
			return "", nil, errors.Errorf("%d buses configured, choose one with --%s", len(names), flagBus)
		}
		name = names[0]
	}
	bus, err := m.Bus(name)
	if err != nil {
		return "", nil, err
	}
	return name, bus, nil
}

// parseArgs parses between least and most byte arguments. A negative most means no upper bound.
func parseArgs(c *cli.Context, least, most int) ([]byte, error) {
	n := c.Args().Len()
	if n < least || (most >= 0 && n > most) {
		return nil, errors.Errorf("wrong number of arguments, usage: %s %s", c.Command.Name, c.Command.ArgsUsage)
	}
	return utils.ParseBytes(c.Args().Slice())
}

func parseChannel(s string) (ad524x.Channel, error) {
	switch strings.ToLower(s) {
	case "rdac1", "1":
		return ad524x.RDAC1, nil
	case "rdac2", "2":
		return ad524x.RDAC2, nil
	}
	return 0, errors.Errorf("unknown wiper %q", s)
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	on, err := strconv.ParseBool(s)
	if err != nil {
		return false, errors.Errorf("expected on or off but got %q", s)
	}
	return on, nil
}
