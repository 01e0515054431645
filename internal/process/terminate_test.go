package process

// Notes:
// - Only PIDs that cannot name a live process are exercised; killing real
//   processes is covered by the browser rasterizer's Close in integration runs.

import "testing"

func TestTerminateTree_IgnoresNonPositivePID(t *testing.T) {
	t.Parallel()

	// Must return without signalling the test's own process group.
	TerminateTree(0)
	TerminateTree(-1)
}

func TestTerminateTree_UnknownPID(t *testing.T) {
	t.Parallel()

	TerminateTree(999999999)
}
