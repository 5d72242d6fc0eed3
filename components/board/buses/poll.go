package buses

import (
	"runtime"
	"time"

	"github.com/benbjohnson/clock"
)

// DefaultPollTimeout bounds every wait on a hardware flag. A byte at 100kHz takes about 90µs, so
// the bound is never reached by working hardware.
const DefaultPollTimeout = 100 * time.Millisecond

// PollConfig controls how Master waits for hardware flags.
type PollConfig struct {
	// Timeout is how long a single wait may take. Zero means DefaultPollTimeout.
	Timeout time.Duration
	// Unbounded waits forever for every flag. A stuck bus then hangs the caller instead of
	// returning a *TimeoutError.
	Unbounded bool
	// Clock defaults to the wall clock.
	Clock clock.Clock
}

func (cfg PollConfig) timeout() time.Duration {
	if cfg.Timeout <= 0 {
		return DefaultPollTimeout
	}
	return cfg.Timeout
}

func (cfg PollConfig) clock() clock.Clock {
	if cfg.Clock == nil {
		return clock.New()
	}
	return cfg.Clock
}

type poller struct {
	clk       clock.Clock
	timeout   time.Duration
	unbounded bool
}

func newPoller(cfg PollConfig) poller {
	return poller{clk: cfg.clock(), timeout: cfg.timeout(), unbounded: cfg.Unbounded}
}

// until spins until done returns true.
func (p poller) until(condition string, done func() bool) error {
	if done() {
		return nil
	}
	start := p.clk.Now()
	for !done() {
		if !p.unbounded && p.clk.Since(start) > p.timeout {
			return &TimeoutError{Condition: condition, Timeout: p.timeout}
		}
		runtime.Gosched()
	}
	return nil
}

// while spins while busy returns true.
func (p poller) while(condition string, busy func() bool) error {
	return p.until(condition, func() bool { return !busy() })
}
