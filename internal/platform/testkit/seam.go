package testkit

import (
	"sync"
	"testing"
)

// one lock guards every package-level seam in the binary under test
var (
	seamMu sync.Mutex
	holder sync.Map // *testing.T -> struct{}
)

// Serial holds the seam lock until t finishes; calling it again from the same test is a no-op
// a subtest is a different t and must not call Serial while its parent holds the lock
func Serial(t *testing.T) {
	t.Helper()
	if _, held := holder.LoadOrStore(t, struct{}{}); held {
		return
	}
	seamMu.Lock()
	t.Cleanup(func() {
		holder.Delete(t)
		seamMu.Unlock()
	})
}

// Swap replaces *target for the rest of t under the seam lock and restores it on cleanup
// the restore runs before the lock is released
func Swap[T any](t *testing.T, target *T, replacement T) {
	t.Helper()
	Serial(t)
	orig := *target
	*target = replacement
	t.Cleanup(func() { *target = orig })
}
