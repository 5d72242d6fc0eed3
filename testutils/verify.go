// Package testutils holds helpers shared by the package tests.
package testutils

import (
	"go.uber.org/goleak"
)

// VerifyTestMain runs the package's tests and fails if any goroutine outlives them. Bus tests
// start goroutines to hold or release flags mid-transaction, so this catches a wait that never
// returned.
func VerifyTestMain(m goleak.TestingM) {
	goleak.VerifyTestMain(m)
}
