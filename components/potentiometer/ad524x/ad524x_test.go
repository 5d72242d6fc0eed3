package ad524x

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/i2cdev/components/board/buses"
	"go.viam.com/i2cdev/components/board/fake"
	"go.viam.com/i2cdev/components/board/i2cdev"
	"go.viam.com/i2cdev/logging"
	"go.viam.com/i2cdev/testutils/inject"
)

// chip simulates the wipers and outputs of an AD5242.
type chip struct {
	mu       sync.Mutex
	addr     uint8
	rdac     [2]byte
	o1, o2   bool
	shutdown bool
	instr    byte
	written  int
}

func (c *chip) Address() uint8 { return c.addr }

func (c *chip) BeginWrite() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = 0
}

func (c *chip) Write(b byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.written++ }()
	if c.written == 0 {
		c.instr = b
		c.o1 = b&(1<<bitO1) != 0
		c.o2 = b&(1<<bitO2) != 0
		c.shutdown = b&(1<<bitShutdown) != 0
		if b&(1<<bitMidscale) != 0 {
			c.rdac[b>>bitRDAC2] = 0x80
		}
		return true
	}
	if c.written == 1 {
		c.rdac[c.instr>>bitRDAC2] = b
		return true
	}
	return false
}

func (c *chip) BeginRead() {}

func (c *chip) Read() byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rdac[c.instr>>bitRDAC2]
}

func (c *chip) End() {}

func newTestPot(t *testing.T, cfg *Config) (*Pot, *fake.Peripheral, *chip) {
	t.Helper()
	logger := logging.NewTestLogger(t)
	p := fake.NewPeripheral()
	c := &chip{addr: cfg.Address()}
	p.Attach(c)
	bus := i2cdev.NewBus(buses.NewMaster(p, buses.PollConfig{}, logger), i2cdev.Options{Name: "pots"}, logger)
	pot, err := New(bus, cfg, logger)
	test.That(t, err, test.ShouldBeNil)
	return pot, p, c
}

func TestAddress(t *testing.T) {
	test.That(t, (&Config{}).Address(), test.ShouldEqual, 0x2C)
	test.That(t, (&Config{AD0: true}).Address(), test.ShouldEqual, 0x2D)
	test.That(t, (&Config{AD1: true}).Address(), test.ShouldEqual, 0x2E)
	test.That(t, (&Config{AD0: true, AD1: true}).Address(), test.ShouldEqual, 0x2F)
}

func TestSetRDAC(t *testing.T) {
	pot, p, c := newTestPot(t, &Config{Bus: "pots", Model: "ad5242"})
	ctx := context.Background()

	test.That(t, pot.SetRDAC(ctx, RDAC1, 0x10), test.ShouldBeNil)
	test.That(t, p.Trace().Strings(), test.ShouldResemble, []string{
		"Start", "Write(0x58)->ACK", "Write(0x00)->ACK", "Write(0x10)->ACK", "Stop",
	})
	test.That(t, c.rdac[0], test.ShouldEqual, 0x10)

	test.That(t, pot.SetRDAC(ctx, RDAC2, 0xF0), test.ShouldBeNil)
	test.That(t, pot.Instruction(), test.ShouldEqual, 0x80)
	test.That(t, c.rdac[1], test.ShouldEqual, 0xF0)

	v, err := pot.RDAC(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v, test.ShouldEqual, 0xF0)

	test.That(t, pot.SetRDAC(ctx, RDAC1, 0x11), test.ShouldBeNil)
	test.That(t, pot.Instruction(), test.ShouldEqual, 0x00)
	v, err = pot.RDAC(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v, test.ShouldEqual, 0x11)

	test.That(t, pot.SetRDAC(ctx, Channel(3), 0), test.ShouldNotBeNil)
}

func TestOutputs(t *testing.T) {
	pot, p, c := newTestPot(t, &Config{Bus: "pots", Model: "ad5242", AD1: true})
	ctx := context.Background()

	test.That(t, pot.SetOutput(ctx, O1), test.ShouldBeNil)
	test.That(t, p.Trace().Strings(), test.ShouldResemble, []string{
		"Start", "Write(0x5C)->ACK", "Write(0x10)->ACK", "Stop",
	})
	test.That(t, pot.SetOutput(ctx, O2), test.ShouldBeNil)
	test.That(t, pot.Instruction(), test.ShouldEqual, 0x18)
	test.That(t, c.o1, test.ShouldBeTrue)
	test.That(t, c.o2, test.ShouldBeTrue)

	test.That(t, pot.ClearOutput(ctx, O1), test.ShouldBeNil)
	test.That(t, pot.Instruction(), test.ShouldEqual, 0x08)
	test.That(t, c.o1, test.ShouldBeFalse)
	test.That(t, c.o2, test.ShouldBeTrue)

	test.That(t, pot.ClearOutput(ctx, O2), test.ShouldBeNil)
	test.That(t, c.o2, test.ShouldBeFalse)

	test.That(t, pot.SetOutput(ctx, Output(0)), test.ShouldNotBeNil)
}

func TestMidscale(t *testing.T) {
	pot, p, c := newTestPot(t, &Config{Bus: "pots", Model: "ad5242"})
	ctx := context.Background()

	test.That(t, pot.SetRDAC(ctx, RDAC2, 0x01), test.ShouldBeNil)
	p.ResetTrace()
	test.That(t, pot.SetMidscale(ctx, RDAC2), test.ShouldBeNil)
	test.That(t, p.Trace().Strings(), test.ShouldResemble, []string{
		"Start", "Write(0x58)->ACK", "Write(0xC0)->ACK", "Stop",
	})
	test.That(t, pot.Instruction(), test.ShouldEqual, 0x80)
	test.That(t, c.rdac[1], test.ShouldEqual, 0x80)

	test.That(t, pot.SetMidscale(ctx, RDAC1), test.ShouldBeNil)
	test.That(t, c.instr, test.ShouldEqual, 0x40)
	test.That(t, pot.Instruction(), test.ShouldEqual, 0x00)
	test.That(t, c.rdac[0], test.ShouldEqual, 0x80)
}

func TestShutdown(t *testing.T) {
	pot, _, c := newTestPot(t, &Config{Bus: "pots", Model: "ad5241"})
	ctx := context.Background()

	test.That(t, pot.SetOutput(ctx, O2), test.ShouldBeNil)
	test.That(t, pot.Shutdown(ctx, true), test.ShouldBeNil)
	test.That(t, c.shutdown, test.ShouldBeTrue)
	test.That(t, c.instr, test.ShouldEqual, 0x28)
	test.That(t, pot.Shutdown(ctx, false), test.ShouldBeNil)
	test.That(t, c.shutdown, test.ShouldBeFalse)
	test.That(t, c.o2, test.ShouldBeTrue)
}

func TestAD5241HasNoRDAC2(t *testing.T) {
	pot, p, _ := newTestPot(t, &Config{Bus: "pots", Model: "AD5241"})
	ctx := context.Background()

	test.That(t, pot.Model(), test.ShouldEqual, ModelAD5241)
	err := pot.SetRDAC(ctx, RDAC2, 0x10)
	test.That(t, errors.Is(err, ErrUnsupportedChannel), test.ShouldBeTrue)
	err = pot.SetMidscale(ctx, RDAC2)
	test.That(t, errors.Is(err, ErrUnsupportedChannel), test.ShouldBeTrue)
	test.That(t, p.Trace(), test.ShouldBeEmpty)
	test.That(t, pot.Instruction(), test.ShouldEqual, 0x00)
}

func TestBusErrors(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	var closed int
	handle := &inject.I2CHandle{
		WriteBlockDataFunc: func(ctx context.Context, register byte, data []byte) error {
			test.That(t, data, test.ShouldBeEmpty)
			return buses.ErrNACK
		},
		ReadFunc: func(ctx context.Context, count int) ([]byte, error) {
			test.That(t, count, test.ShouldEqual, 1)
			return []byte{0x42}, nil
		},
		CloseFunc: func() error {
			closed++
			return errors.New("close failed")
		},
	}
	bus := &inject.I2C{
		OpenHandleFunc: func(addr byte) (buses.I2CHandle, error) {
			test.That(t, addr, test.ShouldEqual, 0x2D)
			return handle, nil
		},
	}
	pot, err := New(bus, &Config{Bus: "pots", Model: "ad5242", AD0: true}, logger)
	test.That(t, err, test.ShouldBeNil)

	err = pot.SetOutput(context.Background(), O1)
	test.That(t, errors.Is(err, buses.ErrNACK), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "ad5242 at 0x2d")

	v, err := pot.RDAC(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v, test.ShouldEqual, 0x42)

	test.That(t, closed, test.ShouldEqual, 2)
	test.That(t, logs.FilterMessage("close failed").Len(), test.ShouldEqual, 2)

	bus.OpenHandleFunc = func(addr byte) (buses.I2CHandle, error) {
		return nil, errors.New("bus gone")
	}
	test.That(t, pot.Shutdown(context.Background(), true), test.ShouldNotBeNil)
}

func TestConfigValidate(t *testing.T) {
	deps, err := (&Config{Bus: "mssp1", Model: "ad5242"}).Validate("components.0")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, deps, test.ShouldResemble, []string{"mssp1"})

	_, err = (&Config{Model: "ad5242"}).Validate("components.0")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "bus")

	_, err = (&Config{Bus: "mssp1"}).Validate("components.0")
	test.That(t, err, test.ShouldNotBeNil)

	_, err = (&Config{Bus: "mssp1", Model: "ad5280"}).Validate("components.0")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "ad5280")

	_, err = New(&inject.I2C{}, &Config{Model: "x"}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
}
