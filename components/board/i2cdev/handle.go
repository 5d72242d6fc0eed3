package i2cdev

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"go.viam.com/i2cdev/components/board/buses"
)

// OpenHandle implements buses.I2C. The handle holds the bus until it is closed, so a driver can
// run several transactions with no other user of the Bus in between.
func (b *Bus) OpenHandle(addr byte) (buses.I2CHandle, error) {
	a := Addr(addr)
	if err := a.Validate(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	return &handle{bus: b, addr: a}, nil
}

type handle struct {
	bus  *Bus
	addr Addr

	closeOnce sync.Once
	closed    bool
}

func (h *handle) check(ctx context.Context) error {
	if h.closed {
		return errors.New("i2c handle already closed")
	}
	return ctx.Err()
}

// Write sends tx with no register byte.
func (h *handle) Write(ctx context.Context, tx []byte) error {
	if err := h.check(ctx); err != nil {
		return err
	}
	if len(tx) == 0 {
		return ErrEmptyBuffer
	}
	return h.bus.tx(h.addr, tx, nil)
}

// Read reads count bytes with no register byte.
func (h *handle) Read(ctx context.Context, count int) ([]byte, error) {
	if err := h.check(ctx); err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, ErrEmptyBuffer
	}
	buf := make([]byte, count)
	if err := h.bus.tx(h.addr, nil, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (h *handle) ReadByteData(ctx context.Context, register byte) (byte, error) {
	if err := h.check(ctx); err != nil {
		return 0, err
	}
	var buf [1]byte
	if _, err := h.bus.readBytes(h.addr, register, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (h *handle) WriteByteData(ctx context.Context, register, data byte) error {
	if err := h.check(ctx); err != nil {
		return err
	}
	_, err := h.bus.writeBytes(h.addr, register, []byte{data})
	return err
}

func (h *handle) ReadBlockData(ctx context.Context, register byte, numBytes uint8) ([]byte, error) {
	if err := h.check(ctx); err != nil {
		return nil, err
	}
	if numBytes == 0 {
		return nil, ErrEmptyBuffer
	}
	buf := make([]byte, numBytes)
	if _, err := h.bus.readBytes(h.addr, register, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteBlockData writes data to consecutive registers starting at register. With no data only the
// register byte is sent, which is how devices with a single command byte are written.
func (h *handle) WriteBlockData(ctx context.Context, register byte, data []byte) error {
	if err := h.check(ctx); err != nil {
		return err
	}
	_, err := h.bus.writeBytes(h.addr, register, data)
	return err
}

func (h *handle) Close() error {
	err := errors.New("i2c handle already closed")
	h.closeOnce.Do(func() {
		h.closed = true
		h.bus.mu.Unlock()
		err = nil
	})
	return err
}
