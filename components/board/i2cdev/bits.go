package i2cdev

import (
	"context"

	"go.viam.com/i2cdev/components/board/bitfield"
)

// ReadBit reads register reg and reports whether bit pos is set.
func (b *Bus) ReadBit(ctx context.Context, addr Addr, reg byte, pos uint8) (bool, error) {
	mask, err := bitfield.Bit(pos)
	if err != nil {
		return false, err
	}
	v, err := b.ReadByte(ctx, addr, reg)
	if err != nil {
		return false, err
	}
	return v&mask != 0, nil
}

// ReadBits reads register reg and returns field f right-aligned.
func (b *Bus) ReadBits(ctx context.Context, addr Addr, reg byte, f bitfield.Field) (byte, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}
	v, err := b.ReadByte(ctx, addr, reg)
	if err != nil {
		return 0, err
	}
	return f.Extract(v), nil
}

// WriteBit sets or clears bit pos of register reg, leaving the other bits as they were read.
func (b *Bus) WriteBit(ctx context.Context, addr Addr, reg byte, pos uint8, value bool) error {
	if _, err := bitfield.Bit(pos); err != nil {
		return err
	}
	return b.modify(ctx, addr, reg, func(v byte) byte {
		return bitfield.SetBit(v, pos, value)
	})
}

// WriteBits replaces field f of register reg with the low f.Length bits of value, leaving the
// other bits as they were read.
func (b *Bus) WriteBits(ctx context.Context, addr Addr, reg byte, f bitfield.Field, value byte) error {
	if err := f.Validate(); err != nil {
		return err
	}
	return b.modify(ctx, addr, reg, func(v byte) byte {
		return f.Insert(v, value)
	})
}

// modify is a read-modify-write of one register. Both transactions run under the bus lock, so no
// other user of this Bus can touch the register in between.
func (b *Bus) modify(ctx context.Context, addr Addr, reg byte, change func(byte) byte) error {
	if err := addr.Validate(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf [1]byte
	if _, err := b.readBytes(addr, reg, buf[:]); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := b.writeBytes(addr, reg, []byte{change(buf[0])})
	return err
}
