package buses

import (
	"context"

	"go.viam.com/i2cdev/components/board/bitfield"
)

// I2C represents a shareable I2C bus.
type I2C interface {
	// OpenHandle locks the bus and returns a handle bound to one 7-bit device address. The handle
	// MUST be closed to release the bus.
	OpenHandle(addr byte) (I2CHandle, error)
}

// I2CHandle is similar to an io handle. It MUST be closed to release the bus.
type I2CHandle interface {
	// Write sends tx in a single write transaction, with no register byte.
	Write(ctx context.Context, tx []byte) error
	// Read reads count bytes in a single read transaction, with no register byte.
	Read(ctx context.Context, count int) ([]byte, error)

	ReadByteData(ctx context.Context, register byte) (byte, error)
	WriteByteData(ctx context.Context, register, data byte) error

	ReadBlockData(ctx context.Context, register byte, numBytes uint8) ([]byte, error)
	WriteBlockData(ctx context.Context, register byte, data []byte) error

	// Close closes the handle and releases the lock on the bus.
	Close() error
}

// An I2CRegister is a lightweight wrapper around a handle for a particular register.
type I2CRegister struct {
	Handle   I2CHandle
	Register byte
}

// ReadByteData reads a byte from the I2C channel register.
func (reg *I2CRegister) ReadByteData(ctx context.Context) (byte, error) {
	return reg.Handle.ReadByteData(ctx, reg.Register)
}

// WriteByteData writes a byte to the I2C channel register.
func (reg *I2CRegister) WriteByteData(ctx context.Context, data byte) error {
	return reg.Handle.WriteByteData(ctx, reg.Register, data)
}

// ReadBit reads the whole register and reports whether bit pos is set.
func (reg *I2CRegister) ReadBit(ctx context.Context, pos uint8) (bool, error) {
	mask, err := bitfield.Bit(pos)
	if err != nil {
		return false, err
	}
	b, err := reg.ReadByteData(ctx)
	if err != nil {
		return false, err
	}
	return b&mask != 0, nil
}

// WriteBit sets or clears bit pos with a read-modify-write of the whole register.
func (reg *I2CRegister) WriteBit(ctx context.Context, pos uint8, value bool) error {
	if _, err := bitfield.Bit(pos); err != nil {
		return err
	}
	b, err := reg.ReadByteData(ctx)
	if err != nil {
		return err
	}
	return reg.WriteByteData(ctx, bitfield.SetBit(b, pos, value))
}

// ReadBits reads the whole register and returns field f right-aligned.
func (reg *I2CRegister) ReadBits(ctx context.Context, f bitfield.Field) (byte, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}
	b, err := reg.ReadByteData(ctx)
	if err != nil {
		return 0, err
	}
	return f.Extract(b), nil
}

// WriteBits replaces field f with the low bits of value with a read-modify-write of the whole
// register.
func (reg *I2CRegister) WriteBits(ctx context.Context, f bitfield.Field, value byte) error {
	if err := f.Validate(); err != nil {
		return err
	}
	b, err := reg.ReadByteData(ctx)
	if err != nil {
		return err
	}
	return reg.WriteByteData(ctx, f.Insert(b, value))
}
