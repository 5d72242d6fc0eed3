package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"

	"go.viam.com/i2cdev/testutils"
)

func TestMain(m *testing.M) {
	testutils.VerifyTestMain(m)
}

const machineConfig = `
buses:
  - name: mssp1
    model: fake
    attributes:
      devices: [0x50, 0x2e]
components:
  - name: pot
    model: ad5242
    bus: mssp1
    attributes:
      ad1: true
`

const twoBusConfig = `
buses:
  - name: left
    model: fake
    attributes:
      devices: [0x50]
  - name: right
    model: fake
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "machine.yaml")
	test.That(t, os.WriteFile(path, []byte(content), 0o600), test.ShouldBeNil)
	return path
}

func run(t *testing.T, path string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newApp(&out).Run(append([]string{"i2cdev", "--config", path}, args...))
	return out.String(), err
}

func TestRegisterCommands(t *testing.T) {
	path := writeConfig(t, machineConfig)

	out, err := run(t, path, "write", "0x50", "0x10", "1", "2")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldEqual, "wrote 2 bytes\n")

	// every invocation builds a fresh simulated bus.
	out, err = run(t, path, "read", "0x50", "0x10", "2")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldEqual, "0x00 0x00\n")

	out, err = run(t, path, "read", "0x50", "0x10")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldEqual, "0x00\n")

	out, err = run(t, path, "write-bits", "0x50", "0x00", "4", "3", "5")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldEqual, "ok\n")

	out, err = run(t, path, "read-bits", "0x50", "0x00", "7", "8")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldEqual, "0x00\n")

	_, err = run(t, path, "read", "0x51", "0x00")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "0x51")
}

func TestArguments(t *testing.T) {
	path := writeConfig(t, machineConfig)

	_, err := run(t, path, "read", "0x50")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "wrong number of arguments")

	_, err = run(t, path, "write", "0x50", "0x10")
	test.That(t, err, test.ShouldNotBeNil)

	_, err = run(t, path, "read", "0x50", "0x10", "0")
	test.That(t, err, test.ShouldNotBeNil)

	_, err = run(t, path, "write", "0x50", "0x10", "0x100")
	test.That(t, err, test.ShouldNotBeNil)

	_, err = run(t, path, "read-bits", "0x50", "0x00", "1", "3")
	test.That(t, err, test.ShouldNotBeNil)

	_, err = run(t, filepath.Join(t.TempDir(), "missing.yaml"), "read", "0x50", "0x00")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestBusSelection(t *testing.T) {
	path := writeConfig(t, twoBusConfig)

	_, err := run(t, path, "read", "0x50", "0x00")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "--bus")

	out, err := run(t, path, "--bus", "left", "read", "0x50", "0x00")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldEqual, "0x00\n")

	_, err = run(t, path, "--bus", "right", "read", "0x50", "0x00")
	test.That(t, err, test.ShouldNotBeNil)

	_, err = run(t, path, "--bus", "middle", "read", "0x50", "0x00")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "middle")
}

func TestTrace(t *testing.T) {
	path := writeConfig(t, machineConfig)

	out, err := run(t, path, "trace", "0x50", "0x10", "0xAA")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "CONDITION")
	test.That(t, out, test.ShouldContainSubstring, "0xA0")
	test.That(t, out, test.ShouldContainSubstring, "0xAA")
	test.That(t, out, test.ShouldContainSubstring, "Stop")
	test.That(t, out, test.ShouldNotContainSubstring, "NACK")

	out, err = run(t, path, "trace", "0x50", "0x10")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "Restart")
	test.That(t, out, test.ShouldContainSubstring, "0xA1")
	test.That(t, out, test.ShouldContainSubstring, "NotAck")

	out, err = run(t, path, "trace", "0x51", "0x10", "0x01")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, out, test.ShouldContainSubstring, "NACK")
	test.That(t, out, test.ShouldContainSubstring, "Stop")
}

func TestPotCommands(t *testing.T) {
	path := writeConfig(t, machineConfig)

	for _, args := range [][]string{
		{"pot", "set", "pot", "rdac2", "0x80"},
		{"pot", "set", "pot", "1", "12"},
		{"pot", "output", "pot", "o1", "on"},
		{"pot", "output", "pot", "O2", "off"},
		{"pot", "midscale", "pot", "rdac1"},
		{"pot", "shutdown", "pot", "on"},
		{"pot", "shutdown", "pot", "false"},
	} {
		out, err := run(t, path, args...)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out, test.ShouldEqual, "ok\n")
	}

	for _, args := range [][]string{
		{"pot", "set", "pot", "rdac3", "1"},
		{"pot", "set", "pot", "rdac1"},
		{"pot", "output", "pot", "o3", "on"},
		{"pot", "output", "pot", "o1", "maybe"},
		{"pot", "midscale", "nope", "rdac1"},
		{"pot", "shutdown", "pot"},
	} {
		_, err := run(t, path, args...)
		test.That(t, err, test.ShouldNotBeNil)
	}
}
