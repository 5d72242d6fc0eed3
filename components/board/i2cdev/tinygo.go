package i2cdev

import (
	"context"

	"github.com/pkg/errors"
	"tinygo.org/x/drivers"
)

// TinyGoBus exposes a Bus as a TinyGo drivers.I2C, so TinyGo sensor drivers can run on it.
type TinyGoBus struct {
	bus *Bus
}

var _ drivers.I2C = (*TinyGoBus)(nil)

// NewTinyGoBus wraps b.
func NewTinyGoBus(b *Bus) *TinyGoBus {
	return &TinyGoBus{bus: b}
}

// Tx implements drivers.I2C.
func (t *TinyGoBus) Tx(addr uint16, w, r []byte) error {
	if addr > 0x7F {
		return errors.Wrapf(ErrInvalidAddress, "%#x", addr)
	}
	return t.bus.Tx(context.Background(), Addr(addr), w, r)
}

// ReadRegister implements drivers.I2C.
func (t *TinyGoBus) ReadRegister(addr, r uint8, buf []byte) error {
	_, err := t.bus.ReadBytes(context.Background(), Addr(addr), r, buf)
	return err
}

// WriteRegister implements drivers.I2C.
func (t *TinyGoBus) WriteRegister(addr, r uint8, buf []byte) error {
	_, err := t.bus.WriteBytes(context.Background(), Addr(addr), r, buf)
	return err
}
