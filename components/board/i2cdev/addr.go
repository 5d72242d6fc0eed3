package i2cdev

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrInvalidAddress is returned for device addresses that do not fit in 7 bits.
var ErrInvalidAddress = errors.New("i2c device address must fit in 7 bits")

// Addr is a 7-bit device address. The direction bit is added by the bus.
type Addr uint8

// AddrFromWriteByte converts the 8-bit write form of an address, as printed in many datasheets,
// to an Addr. Bit 0 must be clear.
func AddrFromWriteByte(b byte) (Addr, error) {
	if b&1 != 0 {
		return 0, errors.Errorf("%#02x is a read address byte", b)
	}
	return Addr(b >> 1), nil
}

// Validate returns ErrInvalidAddress if a does not fit in 7 bits.
func (a Addr) Validate() error {
	if a > 0x7F {
		return errors.Wrapf(ErrInvalidAddress, "%#x", uint8(a))
	}
	return nil
}

// Write returns the addressing byte for a write transfer.
func (a Addr) Write() byte {
	return byte(a) << 1
}

// Read returns the addressing byte for a read transfer.
func (a Addr) Read() byte {
	return byte(a)<<1 | 1
}

func (a Addr) String() string {
	return fmt.Sprintf("0x%02X", uint8(a))
}
