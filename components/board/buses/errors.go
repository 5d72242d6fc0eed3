package buses

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrCollision is returned by WriteByte when the transmit buffer was written while a transfer
	// was still in progress.
	ErrCollision = errors.New("i2c write collision")

	// ErrNACK is returned by WriteByte when the addressed slave did not acknowledge the byte.
	ErrNACK = errors.New("i2c byte not acknowledged")
)

// A TimeoutError is returned when a hardware completion flag did not change within the poll
// bound. It usually means the bus is stuck or nothing is connected.
type TimeoutError struct {
	Condition string
	Timeout   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("i2c bus timed out after %s waiting for %s", e.Timeout, e.Condition)
}

// IsTimeout reports whether err is, or wraps, a *TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}
