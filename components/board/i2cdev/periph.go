package i2cdev

import (
	"context"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"

	"go.viam.com/i2cdev/components/board/buses"
	"go.viam.com/i2cdev/utils"
)

// PeriphBus exposes a Bus as a periph.io i2c.BusCloser, so periph device drivers can run on it.
type PeriphBus struct {
	bus *Bus
}

var _ i2c.BusCloser = (*PeriphBus)(nil)

// NewPeriphBus wraps b.
func NewPeriphBus(b *Bus) *PeriphBus {
	return &PeriphBus{bus: b}
}

func (p *PeriphBus) String() string {
	return p.bus.Name()
}

// Tx implements i2c.Bus. Only 7-bit addresses are supported.
func (p *PeriphBus) Tx(addr uint16, w, r []byte) error {
	if addr > 0x7F {
		return errors.Wrapf(ErrInvalidAddress, "%#x", addr)
	}
	return p.bus.Tx(context.Background(), Addr(addr), w, r)
}

// SetSpeed implements i2c.Bus when the peripheral's clock can be configured.
func (p *PeriphBus) SetSpeed(f physic.Frequency) error {
	periph := p.bus.Master().Peripheral()
	cc, ok := periph.(buses.ClockConfigurer)
	if !ok {
		return errors.Wrapf(utils.NewUnimplementedInterfaceError("ClockConfigurer", periph), "bus %s cannot change speed", p.bus.Name())
	}
	if f < physic.Hertz {
		return errors.Errorf("invalid bus speed %s", f)
	}
	return cc.SetClock(uint32(f / physic.Hertz))
}

// Close implements io.Closer. The Bus itself stays usable.
func (p *PeriphBus) Close() error {
	return nil
}

// RegisterPeriph registers b with periph's i2creg under its name, so i2creg.Open finds it.
func RegisterPeriph(b *Bus) error {
	if b.Name() == "" {
		return errors.New("bus needs a name to be registered")
	}
	return i2creg.Register(b.Name(), nil, -1, func() (i2c.BusCloser, error) {
		return NewPeriphBus(b), nil
	})
}
