// Package ad524x implements a driver for the Analog Devices AD5241 and AD5242 digital
// potentiometers. A datasheet is at
// https://www.analog.com/media/en/technical-documentation/data-sheets/AD5241_5242.pdf
//
// Every write starts with an instruction byte that selects the wiper (RDAC) and carries the
// midscale reset, shutdown and logic output flags. The driver keeps the last instruction byte it
// sent, so setting one output does not clear the other. The AD5241 has a single wiper; both chips
// have the two logic outputs O1 and O2.
//
// The chip answers on 0x2C to 0x2F depending on how its AD0 and AD1 pins are wired.
package ad524x

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"go.viam.com/i2cdev/components/board/bitfield"
	"go.viam.com/i2cdev/components/board/buses"
	"go.viam.com/i2cdev/logging"
)

// BaseAddress is the 7-bit address with AD0 and AD1 wired to ground.
const BaseAddress = 0x2C

// Instruction byte bits.
const (
	bitRDAC2    = 7
	bitMidscale = 6
	bitShutdown = 5
	bitO1       = 4
	bitO2       = 3
)

// Channel selects one of the wipers.
type Channel int

// Wipers. The AD5241 only has RDAC1.
const (
	RDAC1 Channel = 1
	RDAC2 Channel = 2
)

// Output selects one of the logic outputs.
type Output int

// Logic outputs.
const (
	O1 Output = 1
	O2 Output = 2
)

// ErrUnsupportedChannel is returned for RDAC2 on an AD5241.
var ErrUnsupportedChannel = errors.New("wiper not present on this model")

// Pot is one AD5241 or AD5242.
type Pot struct {
	bus    buses.I2C
	addr   byte
	model  Model
	logger logging.Logger

	// mu guards instr and orders writes, so concurrent calls cannot interleave flag changes.
	mu    sync.Mutex
	instr byte
}

// New returns a driver for the chip cfg describes on bus. Nothing is sent until the first call.
func New(bus buses.I2C, cfg *Config, logger logging.Logger) (*Pot, error) {
	model, err := ModelFromString(cfg.Model)
	if err != nil {
		return nil, err
	}
	addr := cfg.Address()
	logger.Debugf("using address %#x for %s", addr, model)
	return &Pot{bus: bus, addr: addr, model: model, logger: logger}, nil
}

// Address returns the 7-bit address the driver talks to.
func (p *Pot) Address() byte {
	return p.addr
}

// Model returns the chip model.
func (p *Pot) Model() Model {
	return p.model
}

// Instruction returns the instruction byte the next write will start from.
func (p *Pot) Instruction() byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.instr
}

// SetRDAC sets wiper ch to value, 0 being terminal B and 255 terminal A.
func (p *Pot) SetRDAC(ctx context.Context, ch Channel, value byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.selectChannel(ch); err != nil {
		return err
	}
	return p.withHandle(func(h buses.I2CHandle) error {
		return h.WriteByteData(ctx, p.instr, value)
	})
}

// SetOutput drives logic output o high.
func (p *Pot) SetOutput(ctx context.Context, o Output) error {
	return p.setOutput(ctx, o, true)
}

// ClearOutput drives logic output o low.
func (p *Pot) ClearOutput(ctx context.Context, o Output) error {
	return p.setOutput(ctx, o, false)
}

func (p *Pot) setOutput(ctx context.Context, o Output, high bool) error {
	var pos uint8
	switch o {
	case O1:
		pos = bitO1
	case O2:
		pos = bitO2
	default:
		return errors.Errorf("unknown output %d", o)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.instr = bitfield.SetBit(p.instr, pos, high)
	return p.writeInstruction(ctx)
}

// SetMidscale resets wiper ch to the middle of its range. The reset flag is only sent once.
func (p *Pot) SetMidscale(ctx context.Context, ch Channel) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.selectChannel(ch); err != nil {
		return err
	}
	p.instr = bitfield.SetBit(p.instr, bitMidscale, true)
	defer func() {
		p.instr = bitfield.SetBit(p.instr, bitMidscale, false)
	}()
	return p.writeInstruction(ctx)
}

// Shutdown opens terminal A of the selected wiper and connects the wiper to terminal B, or
// restores normal operation. The wiper setting is kept.
func (p *Pot) Shutdown(ctx context.Context, on bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.instr = bitfield.SetBit(p.instr, bitShutdown, on)
	return p.writeInstruction(ctx)
}

// RDAC reads back the value of the wiper selected by the last write.
func (p *Pot) RDAC(ctx context.Context) (byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var value byte
	err := p.withHandle(func(h buses.I2CHandle) error {
		data, err := h.Read(ctx, 1)
		if err != nil {
			return err
		}
		value = data[0]
		return nil
	})
	return value, err
}

// selectChannel must be called with mu held.
func (p *Pot) selectChannel(ch Channel) error {
	switch ch {
	case RDAC1:
		p.instr = bitfield.SetBit(p.instr, bitRDAC2, false)
	case RDAC2:
		if p.model == ModelAD5241 {
			return errors.Wrapf(ErrUnsupportedChannel, "%s has no RDAC2", p.model)
		}
		p.instr = bitfield.SetBit(p.instr, bitRDAC2, true)
	default:
		return errors.Errorf("unknown channel %d", ch)
	}
	return nil
}

// writeInstruction sends the instruction byte alone. It must be called with mu held.
func (p *Pot) writeInstruction(ctx context.Context) error {
	return p.withHandle(func(h buses.I2CHandle) error {
		return h.WriteBlockData(ctx, p.instr, nil)
	})
}

func (p *Pot) withHandle(f func(h buses.I2CHandle) error) error {
	handle, err := p.bus.OpenHandle(p.addr)
	if err != nil {
		return err
	}
	defer func() {
		err := handle.Close()
		if err != nil {
			p.logger.Error(err)
		}
	}()
	if err := f(handle); err != nil {
		return errors.Wrapf(err, "%s at %#x", p.model, p.addr)
	}
	return nil
}
