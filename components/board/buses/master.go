// Package buses drives an I2C bus as the single master through a synchronous serial port
// peripheral, one bus condition or byte at a time, and defines the shareable I2C bus contract that
// device drivers consume.
//
// Every Master method blocks, polling the peripheral's flags until the hardware reports that the
// condition or byte is done. There are no retries: a NACK or collision is reported once and the
// caller decides how to end the transaction, normally with Stop.
package buses

import (
	"go.viam.com/i2cdev/logging"
)

// Master issues the atomic I2C bus conditions and byte transfers.
type Master struct {
	p      Peripheral
	poll   poller
	logger logging.Logger
}

// NewMaster returns a Master driving p.
func NewMaster(p Peripheral, cfg PollConfig, logger logging.Logger) *Master {
	return &Master{p: p, poll: newPoller(cfg), logger: logger}
}

// Peripheral returns the peripheral the master drives.
func (m *Master) Peripheral() Peripheral {
	return m.p
}

// Start generates a start condition. The bus is assumed idle; a busy bus is not detected.
func (m *Master) Start() error {
	m.p.RequestStart()
	return m.poll.while("start condition", m.p.StartPending)
}

// Restart generates a repeated start without releasing the bus, so a write phase can be followed
// by a read phase with no other master in between.
func (m *Master) Restart() error {
	m.p.RequestRestart()
	return m.poll.while("repeated start condition", m.p.RestartPending)
}

// Stop generates a stop condition, releasing the bus.
func (m *Master) Stop() error {
	m.p.RequestStop()
	return m.poll.while("stop condition", m.p.StopPending)
}

// Ack acknowledges the byte just received, asking the slave for another.
func (m *Master) Ack() error {
	m.p.RequestAck(false)
	return m.poll.while("acknowledge sequence", m.p.AckPending)
}

// NotAck declines the byte just received. It must follow the last byte of a read.
func (m *Master) NotAck() error {
	m.p.RequestAck(true)
	return m.poll.while("not-acknowledge sequence", m.p.AckPending)
}

// WriteByte transmits b and returns ErrCollision if the port was still busy, ErrNACK if the
// slave did not acknowledge, or a *TimeoutError.
//
// The completion check depends on the port mode. In master modes the port clocks the byte out
// itself, so the buffer must drain and every control sequence must finish before the slave's
// acknowledge bit is valid. In the other modes the clock is held until released and the end of
// the byte is signalled by the interrupt flag. Waiting on the wrong set of flags never returns.
func (m *Master) WriteByte(b byte) error {
	m.p.LoadByte(b)
	if m.p.WriteCollision() {
		m.p.ClearWriteCollision()
		m.logger.Debugw("i2c write collision", "byte", b)
		return ErrCollision
	}

	if m.p.Mode().IsMaster() {
		if err := m.poll.while("transmit buffer empty", m.p.BufferFull); err != nil {
			return err
		}
		if err := m.poll.while("transmit complete", m.transmitting); err != nil {
			return err
		}
		if !m.p.AckReceived() {
			m.logger.Debugw("i2c byte not acknowledged", "byte", b)
			return ErrNACK
		}
		return nil
	}

	m.p.ReleaseClock()
	if err := m.poll.until("byte transfer interrupt", m.p.Interrupt); err != nil {
		return err
	}
	m.p.ClearInterrupt()
	if !m.p.RW() && !m.p.BufferFull() {
		m.logger.Debugw("i2c byte not acknowledged", "byte", b, "mode", m.p.Mode())
		return ErrNACK
	}
	return nil
}

func (m *Master) transmitting() bool {
	return m.p.ControlPending() || m.p.RW()
}

// ReadByte receives one byte. In master modes it first enables the receiver, which clocks the
// byte in. It must be called once per expected byte, after the slave was addressed for reading,
// and be followed by Ack or NotAck.
func (m *Master) ReadByte() (byte, error) {
	if m.p.Mode().IsMaster() {
		m.p.RequestReceive()
	}
	if err := m.poll.until("receive buffer full", m.p.BufferFull); err != nil {
		return 0, err
	}
	return m.p.ReceivedByte(), nil
}
