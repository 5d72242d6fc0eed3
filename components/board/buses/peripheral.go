package buses

import "fmt"

// Mode is the 4-bit synchronous serial port mode select field (SSPM).
type Mode uint8

// Modes the port can be configured in. Only the two master modes drive the bus; the rest are
// slave modes in which the port holds the clock low until released.
const (
	ModeSlave7         Mode = 0x06
	ModeSlave10        Mode = 0x07
	ModeMaster         Mode = 0x08
	ModeFirmwareMaster Mode = 0x0B
	ModeSlave7Intr     Mode = 0x0E
	ModeSlave10Intr    Mode = 0x0F
)

// IsMaster reports whether the port generates the bus clock itself.
func (m Mode) IsMaster() bool {
	return m == ModeMaster || m == ModeFirmwareMaster
}

func (m Mode) String() string {
	switch m {
	case ModeSlave7:
		return "slave-7bit"
	case ModeSlave10:
		return "slave-10bit"
	case ModeMaster:
		return "master"
	case ModeFirmwareMaster:
		return "firmware-master"
	case ModeSlave7Intr:
		return "slave-7bit-intr"
	case ModeSlave10Intr:
		return "slave-10bit-intr"
	}
	return fmt.Sprintf("mode(%#x)", uint8(m))
}

// Peripheral is the hardware serial port as seen by Master. Implementations only expose the
// port's status flags and the actions that set them; all sequencing lives in Master.
//
// The flag names follow the port's control and status bits: a Request* action sets the
// corresponding enable bit (SEN, RSEN, PEN, ACKEN, RCEN) and hardware clears it when the
// condition has been generated on the bus.
type Peripheral interface {
	// Mode returns the configured port mode.
	Mode() Mode

	RequestStart()
	RequestRestart()
	RequestStop()
	// RequestAck sets the acknowledge data bit to notAck and starts an acknowledge sequence.
	RequestAck(notAck bool)
	// RequestReceive enables the master receiver for one byte.
	RequestReceive()
	// ReleaseClock releases a clock held low in slave modes (CKP).
	ReleaseClock()
	// LoadByte writes the transmit buffer, which starts a transmission.
	LoadByte(b byte)
	// ReceivedByte reads the receive buffer, which clears BufferFull.
	ReceivedByte() byte
	ClearWriteCollision()
	ClearInterrupt()

	StartPending() bool
	RestartPending() bool
	StopPending() bool
	AckPending() bool
	// ControlPending reports whether any of start, restart, stop, receive or acknowledge is
	// still in progress.
	ControlPending() bool
	// RW is the read/write status bit. In master modes it is set while a transmission is in
	// progress; in slave modes it holds the direction of the last address match.
	RW() bool
	BufferFull() bool
	WriteCollision() bool
	// Interrupt is the port's interrupt flag, set at the end of every byte and condition.
	Interrupt() bool
	// AckReceived reports whether the slave acknowledged the last byte transmitted.
	AckReceived() bool
}

// ClockConfigurer is implemented by peripherals whose bus clock can be changed.
type ClockConfigurer interface {
	SetClock(hz uint32) error
}
