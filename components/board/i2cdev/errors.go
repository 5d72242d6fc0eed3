package i2cdev

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrEmptyBuffer is returned by reads into an empty buffer. A read must end by declining its last
// byte, so it needs at least one.
var ErrEmptyBuffer = errors.New("i2c read needs at least one byte")

// Phase is the step of a transaction at which it failed.
type Phase int

// Transaction phases, in bus order.
const (
	PhaseStart Phase = iota
	PhaseAddress
	PhaseRegister
	PhaseData
	PhaseRestart
	PhaseReadAddress
	PhaseRead
	PhaseAck
	PhaseStop
)

func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseAddress:
		return "address"
	case PhaseRegister:
		return "register"
	case PhaseData:
		return "data"
	case PhaseRestart:
		return "restart"
	case PhaseReadAddress:
		return "read address"
	case PhaseRead:
		return "read"
	case PhaseAck:
		return "acknowledge"
	case PhaseStop:
		return "stop"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// A TransferError reports the byte-level failure that ended a transaction. It unwraps to the
// cause, one of buses.ErrNACK, buses.ErrCollision or a *buses.TimeoutError.
type TransferError struct {
	Phase Phase
	// Index is the position of the failed byte within the data for PhaseData, PhaseRead and
	// PhaseAck, and zero otherwise.
	Index int
	Err   error
}

func (e *TransferError) Error() string {
	switch e.Phase {
	case PhaseData, PhaseRead, PhaseAck:
		return fmt.Sprintf("i2c %s byte %d: %v", e.Phase, e.Index, e.Err)
	default:
		return fmt.Sprintf("i2c %s: %v", e.Phase, e.Err)
	}
}

func (e *TransferError) Unwrap() error {
	return e.Err
}
