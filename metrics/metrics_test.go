package metrics

import "testing"

func TestIntMapAddCreatesAndAccumulates(t *testing.T) {
	r := NewRegistry()
	r.Ints.Add(CounterSplits, 1)
	r.Ints.Add(CounterSplits, 2)

	if got := r.Ints.Get(CounterSplits).Load(); got != 3 {
		t.Fatalf("counter = %d, want 3", got)
	}
}

func TestIntMapRangeIsSortedByKey(t *testing.T) {
	r := NewRegistry()
	r.Ints.Add(CounterTraces, 1)
	r.Ints.Add(CounterCollapses, 1)
	r.Ints.Add(CounterMoves, 1)

	var keys []string
	r.Ints.Range(func(k string, v int64) {
		keys = append(keys, k)
	})

	for i := 1; i < len(keys); i++ {
		if keys[i-1] > keys[i] {
			t.Fatalf("Range not sorted: %v", keys)
		}
	}
}
