package utils

import (
	"testing"

	"go.viam.com/test"
)

type someIfc interface{}

type someStruct struct{}

func TestNewUnexpectedTypeError(t *testing.T) {
	for _, tc := range []struct {
		name     string
		expected interface{}
		actual   interface{}
		errStr   string
	}{
		{"one", "exp1", "actual1", `expected string but got string`},
		{"two", 1, "actual2", `expected int but got string`},
		{"three", nil, "actual3", `expected <nil> but got string`},
		{"four", (*someIfc)(nil), 4, `expected *utils.someIfc but got int`},
		{"five", (*someStruct)(nil), 5, `expected *utils.someStruct but got int`},
		{"six", someStruct{}, 6, `expected utils.someStruct but got int`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := NewUnexpectedTypeError(tc.expected, tc.actual)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.errStr)
		})
	}
}

func TestNewUnimplementedInterfaceError(t *testing.T) {
	err := NewUnimplementedInterfaceError("ClockConfigurer", someStruct{})
	test.That(t, err.Error(), test.ShouldEqual, "expected implementation of ClockConfigurer but got utils.someStruct")
}

func TestNewModelNotFoundError(t *testing.T) {
	err := NewModelNotFoundError("bus", "spi")
	test.That(t, err.Error(), test.ShouldEqual, `no bus model named "spi"`)
}
