// Package mmio drives a memory-mapped synchronous serial port register block, such as the MSSP
// found on PIC18 microcontrollers.
package mmio

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"periph.io/x/host/v3/pmem"

	"go.viam.com/i2cdev/components/board/bitfield"
	"go.viam.com/i2cdev/components/board/buses"
)

// Layout gives the byte offset of every register from the start of the mapped block.
type Layout struct {
	SSPBUF  int `json:"sspbuf"`
	SSPADD  int `json:"sspadd"`
	SSPCON1 int `json:"sspcon1"`
	SSPCON2 int `json:"sspcon2"`
	SSPSTAT int `json:"sspstat"`
	PIR1    int `json:"pir1"`
}

// DefaultBase is the address of PIR1 on a PIC18F4550, the lowest register DefaultLayout uses.
const DefaultBase = 0xF9E

// DefaultLayout is the PIC18F4550 register map relative to DefaultBase.
var DefaultLayout = Layout{
	PIR1:    0x00,
	SSPCON2: 0x27,
	SSPCON1: 0x28,
	SSPSTAT: 0x29,
	SSPADD:  0x2A,
	SSPBUF:  0x2B,
}

// Size returns the number of bytes the layout spans.
func (l Layout) Size() int {
	size := 0
	for _, off := range []int{l.SSPBUF, l.SSPADD, l.SSPCON1, l.SSPCON2, l.SSPSTAT, l.PIR1} {
		if off+1 > size {
			size = off + 1
		}
	}
	return size
}

// Validate ensures no offset is negative.
func (l Layout) Validate() error {
	for _, off := range []int{l.SSPBUF, l.SSPADD, l.SSPCON1, l.SSPCON2, l.SSPSTAT, l.PIR1} {
		if off < 0 {
			return errors.Errorf("register offset %d is negative", off)
		}
	}
	return nil
}

// SSPCON1 bits.
const (
	bitWCOL  = 7
	bitSSPEN = 5
	bitCKP   = 4
	maskSSPM = 0x0F
)

// SSPCON2 bits.
const (
	bitACKSTAT = 6
	bitACKDT   = 5
	bitACKEN   = 4
	bitRCEN    = 3
	bitPEN     = 2
	bitRSEN    = 1
	bitSEN     = 0
)

// maskControl covers SEN, RSEN, PEN, RCEN and ACKEN.
const maskControl = 0x1F

// SSPSTAT bits.
const (
	bitRW = 2
	bitBF = 0
)

// PIR1 bits.
const bitSSPIF = 3

// Peripheral is a buses.Peripheral over a register block.
type Peripheral struct {
	mu     sync.Mutex
	regs   []byte
	layout Layout
	foscHz uint32
	view   *pmem.View
}

// New wraps regs, which must span layout. foscHz is the oscillator frequency SetClock divides.
func New(regs []byte, layout Layout, foscHz uint32) (*Peripheral, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if len(regs) < layout.Size() {
		return nil, errors.Errorf("register block is %d bytes but the layout needs %d", len(regs), layout.Size())
	}
	return &Peripheral{regs: regs, layout: layout, foscHz: foscHz}, nil
}

// Open maps the physical register block at base. Close must be called to unmap it.
func Open(base uint64, layout Layout, foscHz uint32) (*Peripheral, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	view, err := pmem.Map(base, layout.Size())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to map register block at %#x", base)
	}
	p, err := New([]byte(view.Slice), layout, foscHz)
	if err != nil {
		return nil, multierr.Combine(err, view.Close())
	}
	p.view = view
	return p, nil
}

// Close unmaps the register block if Open mapped it.
func (p *Peripheral) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.view == nil {
		return nil
	}
	err := p.view.Close()
	p.view = nil
	return err
}

func (p *Peripheral) bit(off int, pos uint8) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.regs[off]&(1<<pos) != 0
}

func (p *Peripheral) setBit(off int, pos uint8, value bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.regs[off] = bitfield.SetBit(p.regs[off], pos, value)
}

// Enable resets the control registers and turns the port on in mode m.
func (p *Peripheral) Enable(m buses.Mode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.regs[p.layout.SSPCON2] = 0
	p.regs[p.layout.SSPCON1] = byte(m)&maskSSPM | 1<<bitSSPEN
}

// SetMode writes the mode select field of SSPCON1.
func (p *Peripheral) SetMode(m buses.Mode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.regs[p.layout.SSPCON1] = p.regs[p.layout.SSPCON1]&^maskSSPM | byte(m)&maskSSPM
}

// Mode implements buses.Peripheral.
func (p *Peripheral) Mode() buses.Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return buses.Mode(p.regs[p.layout.SSPCON1] & maskSSPM)
}

// RequestStart implements buses.Peripheral.
func (p *Peripheral) RequestStart() {
	p.setBit(p.layout.SSPCON2, bitSEN, true)
}

// RequestRestart implements buses.Peripheral.
func (p *Peripheral) RequestRestart() {
	p.setBit(p.layout.SSPCON2, bitRSEN, true)
}

// RequestStop implements buses.Peripheral.
func (p *Peripheral) RequestStop() {
	p.setBit(p.layout.SSPCON2, bitPEN, true)
}

// RequestAck implements buses.Peripheral. ACKDT must be set before ACKEN.
func (p *Peripheral) RequestAck(notAck bool) {
	p.setBit(p.layout.SSPCON2, bitACKDT, notAck)
	p.setBit(p.layout.SSPCON2, bitACKEN, true)
}

// RequestReceive implements buses.Peripheral.
func (p *Peripheral) RequestReceive() {
	p.setBit(p.layout.SSPCON2, bitRCEN, true)
}

// ReleaseClock implements buses.Peripheral.
func (p *Peripheral) ReleaseClock() {
	p.setBit(p.layout.SSPCON1, bitCKP, true)
}

// LoadByte implements buses.Peripheral.
func (p *Peripheral) LoadByte(b byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.regs[p.layout.SSPBUF] = b
}

// ReceivedByte implements buses.Peripheral.
func (p *Peripheral) ReceivedByte() byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.regs[p.layout.SSPBUF]
}

// ClearWriteCollision implements buses.Peripheral.
func (p *Peripheral) ClearWriteCollision() {
	p.setBit(p.layout.SSPCON1, bitWCOL, false)
}

// ClearInterrupt implements buses.Peripheral.
func (p *Peripheral) ClearInterrupt() {
	p.setBit(p.layout.PIR1, bitSSPIF, false)
}

// StartPending implements buses.Peripheral.
func (p *Peripheral) StartPending() bool {
	return p.bit(p.layout.SSPCON2, bitSEN)
}

// RestartPending implements buses.Peripheral.
func (p *Peripheral) RestartPending() bool {
	return p.bit(p.layout.SSPCON2, bitRSEN)
}

// StopPending implements buses.Peripheral.
func (p *Peripheral) StopPending() bool {
	return p.bit(p.layout.SSPCON2, bitPEN)
}

// AckPending implements buses.Peripheral.
func (p *Peripheral) AckPending() bool {
	return p.bit(p.layout.SSPCON2, bitACKEN)
}

// ControlPending implements buses.Peripheral.
func (p *Peripheral) ControlPending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.regs[p.layout.SSPCON2]&maskControl != 0
}

// RW implements buses.Peripheral.
func (p *Peripheral) RW() bool {
	return p.bit(p.layout.SSPSTAT, bitRW)
}

// BufferFull implements buses.Peripheral.
func (p *Peripheral) BufferFull() bool {
	return p.bit(p.layout.SSPSTAT, bitBF)
}

// WriteCollision implements buses.Peripheral.
func (p *Peripheral) WriteCollision() bool {
	return p.bit(p.layout.SSPCON1, bitWCOL)
}

// Interrupt implements buses.Peripheral.
func (p *Peripheral) Interrupt() bool {
	return p.bit(p.layout.PIR1, bitSSPIF)
}

// AckReceived implements buses.Peripheral.
func (p *Peripheral) AckReceived() bool {
	return !p.bit(p.layout.SSPCON2, bitACKSTAT)
}

// SetClock implements buses.ClockConfigurer by programming the baud rate generator with
// Fosc/(4*hz) - 1.
func (p *Peripheral) SetClock(hz uint32) error {
	if hz == 0 {
		return errors.New("bus clock must be positive")
	}
	if p.foscHz == 0 {
		return errors.New("oscillator frequency unknown")
	}
	div := uint64(p.foscHz) / (4 * uint64(hz))
	if div < 1 || div > 256 {
		return errors.Errorf("%dHz cannot be derived from a %dHz oscillator", hz, p.foscHz)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.regs[p.layout.SSPADD] = byte(div - 1)
	return nil
}
