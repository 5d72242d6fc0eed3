// Package inject provides peripherals and buses whose methods can be replaced per test.
package inject

import (
	"go.viam.com/i2cdev/components/board/buses"
)

// Peripheral is an injected buses.Peripheral. Every method calls its Func field when set and the
// embedded Peripheral otherwise.
type Peripheral struct {
	buses.Peripheral
	ModeFunc                func() buses.Mode
	RequestStartFunc        func()
	RequestRestartFunc      func()
	RequestStopFunc         func()
	RequestAckFunc          func(notAck bool)
	RequestReceiveFunc      func()
	ReleaseClockFunc        func()
	LoadByteFunc            func(b byte)
	ReceivedByteFunc        func() byte
	ClearWriteCollisionFunc func()
	ClearInterruptFunc      func()
	StartPendingFunc        func() bool
	RestartPendingFunc      func() bool
	StopPendingFunc         func() bool
	AckPendingFunc          func() bool
	ControlPendingFunc      func() bool
	RWFunc                  func() bool
	BufferFullFunc          func() bool
	WriteCollisionFunc      func() bool
	InterruptFunc           func() bool
	AckReceivedFunc         func() bool
}

// Mode calls the injected Mode or the real version.
func (p *Peripheral) Mode() buses.Mode {
	if p.ModeFunc == nil {
		return p.Peripheral.Mode()
	}
	return p.ModeFunc()
}

// RequestStart calls the injected RequestStart or the real version.
func (p *Peripheral) RequestStart() {
	if p.RequestStartFunc == nil {
		p.Peripheral.RequestStart()
		return
	}
	p.RequestStartFunc()
}

// RequestRestart calls the injected RequestRestart or the real version.
func (p *Peripheral) RequestRestart() {
	if p.RequestRestartFunc == nil {
		p.Peripheral.RequestRestart()
		return
	}
	p.RequestRestartFunc()
}

// RequestStop calls the injected RequestStop or the real version.
func (p *Peripheral) RequestStop() {
	if p.RequestStopFunc == nil {
		p.Peripheral.RequestStop()
		return
	}
	p.RequestStopFunc()
}

// RequestAck calls the injected RequestAck or the real version.
func (p *Peripheral) RequestAck(notAck bool) {
	if p.RequestAckFunc == nil {
		p.Peripheral.RequestAck(notAck)
		return
	}
	p.RequestAckFunc(notAck)
}

// RequestReceive calls the injected RequestReceive or the real version.
func (p *Peripheral) RequestReceive() {
	if p.RequestReceiveFunc == nil {
		p.Peripheral.RequestReceive()
		return
	}
	p.RequestReceiveFunc()
}

// ReleaseClock calls the injected ReleaseClock or the real version.
func (p *Peripheral) ReleaseClock() {
	if p.ReleaseClockFunc == nil {
		p.Peripheral.ReleaseClock()
		return
	}
	p.ReleaseClockFunc()
}

// LoadByte calls the injected LoadByte or the real version.
func (p *Peripheral) LoadByte(b byte) {
	if p.LoadByteFunc == nil {
		p.Peripheral.LoadByte(b)
		return
	}
	p.LoadByteFunc(b)
}

// ReceivedByte calls the injected ReceivedByte or the real version.
func (p *Peripheral) ReceivedByte() byte {
	if p.ReceivedByteFunc == nil {
		return p.Peripheral.ReceivedByte()
	}
	return p.ReceivedByteFunc()
}

// ClearWriteCollision calls the injected ClearWriteCollision or the real version.
func (p *Peripheral) ClearWriteCollision() {
	if p.ClearWriteCollisionFunc == nil {
		p.Peripheral.ClearWriteCollision()
		return
	}
	p.ClearWriteCollisionFunc()
}

// ClearInterrupt calls the injected ClearInterrupt or the real version.
func (p *Peripheral) ClearInterrupt() {
	if p.ClearInterruptFunc == nil {
		p.Peripheral.ClearInterrupt()
		return
	}
	p.ClearInterruptFunc()
}

// StartPending calls the injected StartPending or the real version.
func (p *Peripheral) StartPending() bool {
	if p.StartPendingFunc == nil {
		return p.Peripheral.StartPending()
	}
	return p.StartPendingFunc()
}

// RestartPending calls the injected RestartPending or the real version.
func (p *Peripheral) RestartPending() bool {
	if p.RestartPendingFunc == nil {
		return p.Peripheral.RestartPending()
	}
	return p.RestartPendingFunc()
}

// StopPending calls the injected StopPending or the real version.
func (p *Peripheral) StopPending() bool {
	if p.StopPendingFunc == nil {
		return p.Peripheral.StopPending()
	}
	return p.StopPendingFunc()
}

// AckPending calls the injected AckPending or the real version.
func (p *Peripheral) AckPending() bool {
	if p.AckPendingFunc == nil {
		return p.Peripheral.AckPending()
	}
	return p.AckPendingFunc()
}

// ControlPending calls the injected ControlPending or the real version.
func (p *Peripheral) ControlPending() bool {
	if p.ControlPendingFunc == nil {
		return p.Peripheral.ControlPending()
	}
	return p.ControlPendingFunc()
}

// RW calls the injected RW or the real version.
func (p *Peripheral) RW() bool {
	if p.RWFunc == nil {
		return p.Peripheral.RW()
	}
	return p.RWFunc()
}

// BufferFull calls the injected BufferFull or the real version.
func (p *Peripheral) BufferFull() bool {
	if p.BufferFullFunc == nil {
		return p.Peripheral.BufferFull()
	}
	return p.BufferFullFunc()
}

// WriteCollision calls the injected WriteCollision or the real version.
func (p *Peripheral) WriteCollision() bool {
	if p.WriteCollisionFunc == nil {
		return p.Peripheral.WriteCollision()
	}
	return p.WriteCollisionFunc()
}

// Interrupt calls the injected Interrupt or the real version.
func (p *Peripheral) Interrupt() bool {
	if p.InterruptFunc == nil {
		return p.Peripheral.Interrupt()
	}
	return p.InterruptFunc()
}

// AckReceived calls the injected AckReceived or the real version.
func (p *Peripheral) AckReceived() bool {
	if p.AckReceivedFunc == nil {
		return p.Peripheral.AckReceived()
	}
	return p.AckReceivedFunc()
}
