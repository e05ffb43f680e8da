// Package pfverify exposes partition.Map's internal invariant checker to
// external callers that want to verify a map without enabling
// Map.SetDebug's per-mutation overhead — for example a test harness that
// only wants to check invariants once at the end of a scenario (spec.md
// 8's scenario S6).
package pfverify

import "github.com/lixenwraith/polypath/partition"

// Check verifies spec.md 8's invariants 1-4 against m's current state,
// returning a descriptive error on the first violation found.
func Check(m *partition.Map) error {
	return partition.Verify(m)
}
