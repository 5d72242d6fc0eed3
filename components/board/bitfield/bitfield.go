// Package bitfield implements the arithmetic for reading and writing bit-fields within a single
// 8-bit register. I2C has no sub-byte addressing, so every bit-level write on the bus is a read of
// the whole register, an Insert in memory and a write of the whole register.
//
// Fields are right-aligned and addressed by their most significant bit:
//
//	01101001 register
//	76543210 bit numbers
//	   xxx   Field{Start: 4, Length: 3}
//	     010 Extract
package bitfield

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrInvalidField is returned for bit positions and fields that do not fit in one byte.
var ErrInvalidField = errors.New("invalid bit-field")

// Field is a contiguous span of Length bits whose most significant bit is Start.
type Field struct {
	Start  uint8
	Length uint8
}

func (f Field) String() string {
	return fmt.Sprintf("[%d:%d]", f.Start, int(f.Start)-int(f.Length)+1)
}

// Validate checks that 1 <= Length <= 8 and Length-1 <= Start <= 7.
func (f Field) Validate() error {
	if f.Length < 1 || f.Length > 8 {
		return errors.Wrapf(ErrInvalidField, "length %d not in [1,8]", f.Length)
	}
	if f.Start > 7 || f.Start < f.Length-1 {
		return errors.Wrapf(ErrInvalidField, "start bit %d not in [%d,7] for length %d", f.Start, f.Length-1, f.Length)
	}
	return nil
}

func (f Field) shift() uint8 {
	return f.Start - f.Length + 1
}

// Mask returns the register bits covered by the field. The field must be valid.
func (f Field) Mask() byte {
	return byte((uint16(1)<<f.Length)-1) << f.shift()
}

// Extract returns the field's bits of b, right-aligned. The field must be valid.
func (f Field) Extract(b byte) byte {
	return (b & f.Mask()) >> f.shift()
}

// Insert returns b with the field's bits replaced by the low Length bits of v. Bits outside the
// field are preserved. The field must be valid.
func (f Field) Insert(b, v byte) byte {
	mask := f.Mask()
	return (b &^ mask) | ((v << f.shift()) & mask)
}

// Bit returns the mask for a single bit position, 0 being the least significant.
func Bit(pos uint8) (byte, error) {
	if pos > 7 {
		return 0, errors.Wrapf(ErrInvalidField, "bit %d not in [0,7]", pos)
	}
	return 1 << pos, nil
}

// SetBit returns b with the bit at pos set or cleared. pos must be valid.
func SetBit(b byte, pos uint8, value bool) byte {
	if value {
		return b | (1 << pos)
	}
	return b &^ (1 << pos)
}
