// Package i2cdev implements register access to I2C devices on top of a bus master: multi-byte
// register reads and writes, single bits and bit-fields, and raw write-then-read transfers.
//
// Every operation is one or more complete transactions that begin with a start condition and
// always end with exactly one stop condition, whatever fails in between. A Bus serialises its
// transactions, so it can be shared between goroutines; it cannot stop another master on the
// same wires from interleaving between two transactions.
package i2cdev

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/i2cdev/components/board/buses"
	"go.viam.com/i2cdev/logging"
)

// ErrorMode selects what a transaction does when a byte is not acknowledged or collides.
type ErrorMode int

const (
	// PropagateErrors ends the transaction at the first failed byte and reports it along with the
	// number of bytes transferred.
	PropagateErrors ErrorMode = iota
	// MaskErrors ignores failed bytes, drives the whole sequence and reports every byte as
	// transferred. Timeouts are still reported.
	MaskErrors
)

func (m ErrorMode) String() string {
	switch m {
	case PropagateErrors:
		return "propagate"
	case MaskErrors:
		return "mask"
	}
	return "unknown"
}

// ErrorModeFromString parses "propagate" or "mask". The empty string is PropagateErrors.
func ErrorModeFromString(s string) (ErrorMode, error) {
	switch strings.ToLower(s) {
	case "", "propagate":
		return PropagateErrors, nil
	case "mask":
		return MaskErrors, nil
	}
	return 0, errors.Errorf("unknown error mode %q", s)
}

// Options configure a Bus.
type Options struct {
	// Name identifies the bus in logs and in periph's registry.
	Name      string
	ErrorMode ErrorMode
}

// Bus performs register transactions through a Master.
type Bus struct {
	mu     sync.Mutex
	m      *buses.Master
	opts   Options
	logger logging.Logger
}

// NewBus returns a Bus driving m.
func NewBus(m *buses.Master, opts Options, logger logging.Logger) *Bus {
	return &Bus{m: m, opts: opts, logger: logger}
}

// Name returns the configured bus name.
func (b *Bus) Name() string {
	return b.opts.Name
}

// Master returns the underlying bus master.
func (b *Bus) Master() *buses.Master {
	return b.m
}

// WriteBytes writes data to consecutive registers starting at reg and returns how many data bytes
// the device acknowledged.
func (b *Bus) WriteBytes(ctx context.Context, addr Addr, reg byte, data []byte) (int, error) {
	if err := addr.Validate(); err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return b.writeBytes(addr, reg, data)
}

// ReadBytes fills buf from consecutive registers starting at reg and returns how many bytes were
// read. The register is selected and the data read within one transaction joined by a repeated
// start.
func (b *Bus) ReadBytes(ctx context.Context, addr Addr, reg byte, buf []byte) (int, error) {
	if err := addr.Validate(); err != nil {
		return 0, err
	}
	if len(buf) == 0 {
		return 0, ErrEmptyBuffer
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return b.readBytes(addr, reg, buf)
}

// WriteByte writes one register.
func (b *Bus) WriteByte(ctx context.Context, addr Addr, reg, value byte) error {
	_, err := b.WriteBytes(ctx, addr, reg, []byte{value})
	return err
}

// ReadByte reads one register.
func (b *Bus) ReadByte(ctx context.Context, addr Addr, reg byte) (byte, error) {
	var buf [1]byte
	if _, err := b.ReadBytes(ctx, addr, reg, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// Tx writes w and then reads into r in one transaction, with a repeated start between the two.
// Either may be empty, but not both. No register byte is sent beyond what w holds.
func (b *Bus) Tx(ctx context.Context, addr Addr, w, r []byte) error {
	if err := addr.Validate(); err != nil {
		return err
	}
	if len(w) == 0 && len(r) == 0 {
		return ErrEmptyBuffer
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.tx(addr, w, r)
}

func (b *Bus) writeBytes(addr Addr, reg byte, data []byte) (int, error) {
	return b.run(addr, func(t *txn) {
		t.start()
		t.write(PhaseAddress, 0, addr.Write())
		t.write(PhaseRegister, 0, reg)
		t.writeData(data)
	})
}

func (b *Bus) readBytes(addr Addr, reg byte, buf []byte) (int, error) {
	return b.run(addr, func(t *txn) {
		t.start()
		t.write(PhaseAddress, 0, addr.Write())
		t.write(PhaseRegister, 0, reg)
		t.restart()
		t.write(PhaseReadAddress, 0, addr.Read())
		t.readData(buf)
	})
}

func (b *Bus) tx(addr Addr, w, r []byte) error {
	_, err := b.run(addr, func(t *txn) {
		t.start()
		if len(w) > 0 {
			t.write(PhaseAddress, 0, addr.Write())
			t.writeData(w)
			if len(r) == 0 {
				return
			}
			t.restart()
		}
		t.write(PhaseReadAddress, 0, addr.Read())
		t.readData(r)
	})
	return err
}

// run drives one transaction and always finishes it with a stop condition.
func (b *Bus) run(addr Addr, body func(t *txn)) (int, error) {
	t := &txn{m: b.m, mode: b.opts.ErrorMode, logger: b.logger, addr: addr}
	body(t)
	err := t.err
	if stopErr := b.m.Stop(); stopErr != nil {
		err = multierr.Combine(err, &TransferError{Phase: PhaseStop, Err: stopErr})
	}
	if err != nil {
		b.logger.Debugw("i2c transaction failed", "bus", b.opts.Name, "address", addr, "transferred", t.n, "error", err)
		return t.n, errors.Wrapf(err, "i2c transaction with %s failed after %d bytes", addr, t.n)
	}
	return t.n, nil
}

// txn is the state of one transaction. Once err is set every further step is skipped.
type txn struct {
	m      *buses.Master
	mode   ErrorMode
	logger logging.Logger
	addr   Addr
	// n counts data bytes written or read.
	n   int
	err error
}

func (t *txn) fail(phase Phase, index int, err error) {
	t.err = &TransferError{Phase: phase, Index: index, Err: err}
}

func (t *txn) start() {
	if err := t.m.Start(); err != nil {
		t.fail(PhaseStart, 0, err)
	}
}

func (t *txn) restart() {
	if t.err != nil {
		return
	}
	if err := t.m.Restart(); err != nil {
		t.fail(PhaseRestart, 0, err)
	}
}

// write sends one byte and reports whether the transaction goes on.
func (t *txn) write(phase Phase, index int, v byte) bool {
	if t.err != nil {
		return false
	}
	err := t.m.WriteByte(v)
	if err == nil {
		return true
	}
	if t.mode == MaskErrors && !buses.IsTimeout(err) {
		t.logger.Debugw("ignoring i2c byte failure", "address", t.addr, "phase", phase, "index", index, "error", err)
		return true
	}
	t.fail(phase, index, err)
	return false
}

func (t *txn) writeData(data []byte) {
	for i, v := range data {
		if !t.write(PhaseData, i, v) {
			return
		}
		t.n++
	}
}

func (t *txn) readData(buf []byte) {
	last := len(buf) - 1
	for i := range buf {
		if t.err != nil {
			return
		}
		v, err := t.m.ReadByte()
		if err != nil {
			t.fail(PhaseRead, i, err)
			return
		}
		buf[i] = v
		t.n++
		if i == last {
			err = t.m.NotAck()
		} else {
			err = t.m.Ack()
		}
		if err != nil {
			t.fail(PhaseAck, i, err)
		}
	}
}
