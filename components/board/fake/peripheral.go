// Package fake implements a simulated serial port peripheral with slaves attached to its bus.
//
// The peripheral completes each requested condition or byte after a configurable number of
// polls of its status flags, so a Master driving it goes through the same waits it would on
// hardware. Every condition and byte that reaches the bus is recorded in a Trace.
package fake

import (
	"sync"

	"go.viam.com/i2cdev/components/board/buses"
)

// Cond names an operation the peripheral completes asynchronously.
type Cond int

// Conditions that can be stalled.
const (
	CondStart Cond = iota
	CondRestart
	CondStop
	CondAck
	CondReceive
	CondTransmit
)

func (c Cond) String() string {
	switch c {
	case CondStart:
		return "start"
	case CondRestart:
		return "restart"
	case CondStop:
		return "stop"
	case CondAck:
		return "ack"
	case CondReceive:
		return "receive"
	case CondTransmit:
		return "transmit"
	}
	return "unknown"
}

const numConds = int(CondTransmit) + 1

type phase int

const (
	phaseIdle phase = iota
	phaseAddress
	phaseWrite
	phaseRead
	phaseIgnored
	phaseReadDone
)

// DefaultClockHz is the bus clock a new Peripheral reports.
const DefaultClockHz = 100000

// Peripheral is a simulated port. It is safe for concurrent use, so tests may hold a condition from
// one goroutine and release it from another.
type Peripheral struct {
	mu      sync.Mutex
	mode    buses.Mode
	latency int
	clockHz uint32
	slaves  map[uint8]Slave
	trace   Trace

	// remaining polls per in-flight condition; -1 when idle.
	countdown [numConds]int
	stalled   [numConds]bool

	collideNext bool

	ackdt   bool
	rw      bool
	bf      bool
	wcol    bool
	sspif   bool
	ackstat bool
	ckp     bool
	buf     byte

	phase  phase
	active Slave
}

// NewPeripheral returns an idle peripheral in master mode with a latency of one poll and no
// slaves.
func NewPeripheral() *Peripheral {
	p := &Peripheral{
		mode:    buses.ModeMaster,
		latency: 1,
		clockHz: DefaultClockHz,
		slaves:  map[uint8]Slave{},
	}
	for i := range p.countdown {
		p.countdown[i] = -1
	}
	return p
}

// Attach puts s on the bus, replacing any slave at the same address.
func (p *Peripheral) Attach(s Slave) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.slaves[s.Address()&0x7F] = s
}

// Detach removes the slave at the 7-bit address addr.
func (p *Peripheral) Detach(addr uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.slaves, addr&0x7F)
}

// SetMode changes the port mode.
func (p *Peripheral) SetMode(m buses.Mode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = m
}

// SetLatency sets how many polls a condition or byte stays pending. Zero completes it
// immediately on request.
func (p *Peripheral) SetLatency(polls int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if polls < 0 {
		polls = 0
	}
	p.latency = polls
}

// Stall stops c from completing until Unstall is called.
func (p *Peripheral) Stall(c Cond) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stalled[c] = true
}

// Unstall lets c complete again.
func (p *Peripheral) Unstall(c Cond) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stalled[c] = false
}

// CollideNext makes the next LoadByte report a write collision.
func (p *Peripheral) CollideNext() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.collideNext = true
}

// Trace returns a copy of the events recorded so far.
func (p *Peripheral) Trace() Trace {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(Trace, len(p.trace))
	copy(out, p.trace)
	return out
}

// ResetTrace forgets all recorded events.
func (p *Peripheral) ResetTrace() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.trace = nil
}

// SetClock implements buses.ClockConfigurer.
func (p *Peripheral) SetClock(hz uint32) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clockHz = hz
	return nil
}

// Clock returns the bus clock last set.
func (p *Peripheral) Clock() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clockHz
}

// Mode implements buses.Peripheral.
func (p *Peripheral) Mode() buses.Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

// RequestStart implements buses.Peripheral.
func (p *Peripheral) RequestStart() {
	p.request(CondStart)
}

// RequestRestart implements buses.Peripheral.
func (p *Peripheral) RequestRestart() {
	p.request(CondRestart)
}

// RequestStop implements buses.Peripheral.
func (p *Peripheral) RequestStop() {
	p.request(CondStop)
}

// RequestAck implements buses.Peripheral.
func (p *Peripheral) RequestAck(notAck bool) {
	p.mu.Lock()
	p.ackdt = notAck
	p.mu.Unlock()
	p.request(CondAck)
}

// RequestReceive implements buses.Peripheral.
func (p *Peripheral) RequestReceive() {
	p.request(CondReceive)
}

// ReleaseClock implements buses.Peripheral. In slave modes it starts clocking out the loaded byte.
func (p *Peripheral) ReleaseClock() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ckp = true
	if !p.mode.IsMaster() && p.bf {
		p.start(CondTransmit)
	}
}

// LoadByte implements buses.Peripheral.
func (p *Peripheral) LoadByte(b byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.collideNext || p.countdown[CondTransmit] >= 0 || p.controlPending() {
		p.collideNext = false
		p.wcol = true
		return
	}
	p.buf = b
	p.bf = true
	if p.mode.IsMaster() {
		p.rw = true
		p.start(CondTransmit)
		return
	}
	// slave modes hold the clock until it is released.
	p.ckp = false
}

// ReceivedByte implements buses.Peripheral.
func (p *Peripheral) ReceivedByte() byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bf = false
	return p.buf
}

// ClearWriteCollision implements buses.Peripheral.
func (p *Peripheral) ClearWriteCollision() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.wcol = false
}

// ClearInterrupt implements buses.Peripheral.
func (p *Peripheral) ClearInterrupt() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sspif = false
}

// StartPending implements buses.Peripheral.
func (p *Peripheral) StartPending() bool {
	return p.pending(CondStart)
}

// RestartPending implements buses.Peripheral.
func (p *Peripheral) RestartPending() bool {
	return p.pending(CondRestart)
}

// StopPending implements buses.Peripheral.
func (p *Peripheral) StopPending() bool {
	return p.pending(CondStop)
}

// AckPending implements buses.Peripheral.
func (p *Peripheral) AckPending() bool {
	return p.pending(CondAck)
}

// ControlPending implements buses.Peripheral.
func (p *Peripheral) ControlPending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.step()
	return p.controlPending()
}

// RW implements buses.Peripheral.
func (p *Peripheral) RW() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.step()
	return p.rw
}

// BufferFull implements buses.Peripheral.
func (p *Peripheral) BufferFull() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.step()
	return p.bf
}

// WriteCollision implements buses.Peripheral.
func (p *Peripheral) WriteCollision() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.wcol
}

// Interrupt implements buses.Peripheral.
func (p *Peripheral) Interrupt() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.step()
	return p.sspif
}

// AckReceived implements buses.Peripheral.
func (p *Peripheral) AckReceived() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.ackstat
}

func (p *Peripheral) request(c Cond) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.start(c)
}

func (p *Peripheral) pending(c Cond) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.step()
	return p.countdown[c] >= 0
}

func (p *Peripheral) controlPending() bool {
	for _, c := range []Cond{CondStart, CondRestart, CondStop, CondAck, CondReceive} {
		if p.countdown[c] >= 0 {
			return true
		}
	}
	return false
}

// start must be called with mu held.
func (p *Peripheral) start(c Cond) {
	p.countdown[c] = p.latency
	if p.latency == 0 && !p.stalled[c] {
		p.complete(c)
	}
}

// step advances every in-flight condition by one poll. It must be called with mu held.
func (p *Peripheral) step() {
	for i := range p.countdown {
		c := Cond(i)
		if p.countdown[c] < 0 || p.stalled[c] {
			continue
		}
		if p.countdown[c] > 0 {
			p.countdown[c]--
		}
		if p.countdown[c] == 0 {
			p.complete(c)
		}
	}
}

func (p *Peripheral) complete(c Cond) {
	p.countdown[c] = -1
	p.sspif = true
	switch c {
	case CondStart:
		p.endSlave()
		p.record(Event{Kind: EventStart})
		p.phase = phaseAddress
	case CondRestart:
		p.endSlave()
		p.record(Event{Kind: EventRestart})
		p.phase = phaseAddress
	case CondStop:
		p.endSlave()
		p.record(Event{Kind: EventStop})
		p.phase = phaseIdle
	case CondAck:
		if p.ackdt {
			p.record(Event{Kind: EventNotAck})
			if p.phase == phaseRead {
				p.phase = phaseReadDone
			}
		} else {
			p.record(Event{Kind: EventAck})
		}
	case CondReceive:
		b := byte(0xFF)
		if p.phase == phaseRead && p.active != nil {
			b = p.active.Read()
		}
		p.buf = b
		p.bf = true
		p.record(Event{Kind: EventRead, Byte: b})
	case CondTransmit:
		b := p.buf
		p.bf = false
		if !p.mode.IsMaster() {
			// an external master is reading from us and acknowledges every byte.
			p.rw = true
			p.record(Event{Kind: EventWrite, Byte: b, Acked: true})
			return
		}
		p.rw = false
		acked := p.transmit(b)
		p.ackstat = !acked
		p.record(Event{Kind: EventWrite, Byte: b, Acked: acked})
	}
}

// transmit delivers b to the bus and reports whether a slave acknowledged it.
func (p *Peripheral) transmit(b byte) bool {
	switch p.phase {
	case phaseAddress:
		s, ok := p.slaves[b>>1]
		if !ok {
			p.phase = phaseIgnored
			return false
		}
		p.active = s
		if b&1 == 1 {
			p.phase = phaseRead
			s.BeginRead()
		} else {
			p.phase = phaseWrite
			s.BeginWrite()
		}
		return true
	case phaseWrite:
		return p.active.Write(b)
	default:
		return false
	}
}

func (p *Peripheral) endSlave() {
	if p.active != nil {
		p.active.End()
		p.active = nil
	}
}

func (p *Peripheral) record(e Event) {
	p.trace = append(p.trace, e)
}
