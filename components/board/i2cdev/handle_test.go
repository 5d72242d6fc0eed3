package i2cdev_test

import (
	"context"
	"testing"
	"time"

	"go.viam.com/test"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"

	"go.viam.com/i2cdev/components/board/bitfield"
	"go.viam.com/i2cdev/components/board/buses"
	"go.viam.com/i2cdev/components/board/fake"
	"go.viam.com/i2cdev/components/board/i2cdev"
	"go.viam.com/i2cdev/logging"
)

func TestHandle(t *testing.T) {
	b, p, mem := newBus(t, i2cdev.PropagateErrors, buses.PollConfig{})
	ctx := context.Background()

	var bus buses.I2C = b
	h, err := bus.OpenHandle(uint8(devAddr))
	test.That(t, err, test.ShouldBeNil)

	test.That(t, h.WriteByteData(ctx, 0x01, 0x99), test.ShouldBeNil)
	v, err := h.ReadByteData(ctx, 0x01)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v, test.ShouldEqual, 0x99)

	test.That(t, h.WriteBlockData(ctx, 0x10, []byte{1, 2, 3}), test.ShouldBeNil)
	block, err := h.ReadBlockData(ctx, 0x10, 3)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, block, test.ShouldResemble, []byte{1, 2, 3})

	// a raw write sets the pointer, a raw read continues from it.
	test.That(t, h.Write(ctx, []byte{0x11}), test.ShouldBeNil)
	raw, err := h.Read(ctx, 2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, raw, test.ShouldResemble, []byte{2, 3})

	p.ResetTrace()
	test.That(t, h.WriteBlockData(ctx, 0x40, nil), test.ShouldBeNil)
	test.That(t, p.Trace().Strings(), test.ShouldResemble, []string{
		"Start", "Write(0xB0)->ACK", "Write(0x40)->ACK", "Stop",
	})
	test.That(t, mem.Pointer(), test.ShouldEqual, 0x40)

	_, err = h.ReadBlockData(ctx, 0x10, 0)
	test.That(t, err, test.ShouldBeError, i2cdev.ErrEmptyBuffer)

	test.That(t, h.Close(), test.ShouldBeNil)
	test.That(t, h.Close(), test.ShouldNotBeNil)
	_, err = h.ReadByteData(ctx, 0x01)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = bus.OpenHandle(0x80)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestHandleHoldsBus(t *testing.T) {
	b, _, mem := newBus(t, i2cdev.PropagateErrors, buses.PollConfig{})
	ctx := context.Background()

	h, err := b.OpenHandle(uint8(devAddr))
	test.That(t, err, test.ShouldBeNil)

	done := make(chan error)
	go func() {
		done <- b.WriteByte(ctx, devAddr, 0x02, 0x22)
	}()

	test.That(t, h.WriteByteData(ctx, 0x02, 0x11), test.ShouldBeNil)
	select {
	case err := <-done:
		t.Fatalf("write ran while a handle was open: %v", err)
	case <-time.After(20 * time.Millisecond):
	}
	test.That(t, mem.Reg(0x02), test.ShouldEqual, 0x11)

	test.That(t, h.Close(), test.ShouldBeNil)
	test.That(t, <-done, test.ShouldBeNil)
	test.That(t, mem.Reg(0x02), test.ShouldEqual, 0x22)
}

func TestRegister(t *testing.T) {
	b, _, mem := newBus(t, i2cdev.PropagateErrors, buses.PollConfig{})
	ctx := context.Background()
	mem.SetReg(0x6B, 0x40)

	h, err := b.OpenHandle(uint8(devAddr))
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, h.Close(), test.ShouldBeNil)
	}()

	reg := &buses.I2CRegister{Handle: h, Register: 0x6B}
	sleep, err := reg.ReadBit(ctx, 6)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sleep, test.ShouldBeTrue)

	test.That(t, reg.WriteBit(ctx, 6, false), test.ShouldBeNil)
	test.That(t, mem.Reg(0x6B), test.ShouldEqual, 0x00)

	clockSource := bitfield.Field{Start: 2, Length: 3}
	test.That(t, reg.WriteBits(ctx, clockSource, 0x01), test.ShouldBeNil)
	got, err := reg.ReadBits(ctx, clockSource)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got, test.ShouldEqual, 0x01)
	test.That(t, mem.Reg(0x6B), test.ShouldEqual, 0x01)

	_, err = reg.ReadBits(ctx, bitfield.Field{Start: 1, Length: 3})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, reg.WriteBit(ctx, 8, true), test.ShouldNotBeNil)
}

func TestPeriphBus(t *testing.T) {
	b, p, mem := newBus(t, i2cdev.PropagateErrors, buses.PollConfig{})
	mem.SetReg(0x20, 0x42)

	pb := i2cdev.NewPeriphBus(b)
	test.That(t, pb.String(), test.ShouldEqual, "test")

	d := &i2c.Dev{Addr: uint16(devAddr), Bus: pb}
	r := make([]byte, 1)
	test.That(t, d.Tx([]byte{0x20}, r), test.ShouldBeNil)
	test.That(t, r, test.ShouldResemble, []byte{0x42})

	_, err := d.Write([]byte{0x21, 0x07})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mem.Reg(0x21), test.ShouldEqual, 0x07)

	test.That(t, pb.Tx(0x3FF, []byte{0}, nil), test.ShouldNotBeNil)

	test.That(t, pb.SetSpeed(400*physic.KiloHertz), test.ShouldBeNil)
	test.That(t, p.Clock(), test.ShouldEqual, 400000)
	test.That(t, pb.SetSpeed(0), test.ShouldNotBeNil)
	test.That(t, pb.Close(), test.ShouldBeNil)
}

func TestPeriphBusSpeedUnsupported(t *testing.T) {
	logger := logging.NewTestLogger(t)
	p := &struct{ buses.Peripheral }{fake.NewPeripheral()}
	b := i2cdev.NewBus(buses.NewMaster(p, buses.PollConfig{}, logger), i2cdev.Options{Name: "fixed"}, logger)
	err := i2cdev.NewPeriphBus(b).SetSpeed(100 * physic.KiloHertz)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "expected implementation of ClockConfigurer")
}

func TestRegisterPeriph(t *testing.T) {
	b, _, mem := newBus(t, i2cdev.PropagateErrors, buses.PollConfig{})
	test.That(t, i2cdev.RegisterPeriph(b), test.ShouldBeNil)
	defer func() {
		test.That(t, i2creg.Unregister("test"), test.ShouldBeNil)
	}()

	bc, err := i2creg.Open("test")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, bc.Tx(uint16(devAddr), []byte{0x30, 0x55}, nil), test.ShouldBeNil)
	test.That(t, mem.Reg(0x30), test.ShouldEqual, 0x55)
	test.That(t, bc.Close(), test.ShouldBeNil)

	logger := logging.NewTestLogger(t)
	unnamed := i2cdev.NewBus(b.Master(), i2cdev.Options{}, logger)
	test.That(t, i2cdev.RegisterPeriph(unnamed), test.ShouldNotBeNil)
}

func TestTinyGoBus(t *testing.T) {
	b, _, mem := newBus(t, i2cdev.PropagateErrors, buses.PollConfig{})
	tb := i2cdev.NewTinyGoBus(b)

	test.That(t, tb.WriteRegister(uint8(devAddr), 0x50, []byte{0x0A, 0x0B}), test.ShouldBeNil)
	test.That(t, mem.Reg(0x51), test.ShouldEqual, 0x0B)

	buf := make([]byte, 2)
	test.That(t, tb.ReadRegister(uint8(devAddr), 0x50, buf), test.ShouldBeNil)
	test.That(t, buf, test.ShouldResemble, []byte{0x0A, 0x0B})

	r := make([]byte, 1)
	test.That(t, tb.Tx(uint16(devAddr), []byte{0x51}, r), test.ShouldBeNil)
	test.That(t, r, test.ShouldResemble, []byte{0x0B})

	test.That(t, tb.Tx(0x100, nil, r), test.ShouldNotBeNil)
	test.That(t, tb.ReadRegister(0x10, 0x00, buf), test.ShouldNotBeNil)
}
