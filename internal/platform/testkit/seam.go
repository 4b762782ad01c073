package testkit

import (
	"sync"
	"testing"
)

var seamMu sync.Mutex

// Swap points a package level seam (run id source, retry backoff) at replacement until the test ends
func Swap[T any](t *testing.T, target *T, replacement T) {
	t.Helper()
	orig := *target
	*target = replacement
	t.Cleanup(func() { *target = orig })
}

// Serial holds one process wide lock for the rest of the test.
// Take it once per test that swaps seams; it is not reentrant
func Serial(t *testing.T) {
	t.Helper()
	seamMu.Lock()
	t.Cleanup(seamMu.Unlock)
}
