// Package tunable groups the named constants that govern partition
// split/collapse thresholds and pathfinder search behavior, in the
// teacher's parameter-package idiom (parameter/navigation.go,
// parameter/engine.go): a single struct of named fields with a Default
// constructor, rather than scattered package-level constants, so a config
// file can override the whole set at once.
package tunable

// Set holds every tunable used by partition and pathfinder. Zero-valued
// Set is not valid; use Default and override selectively, or Validate
// after hand-assembling one.
type Set struct {
	// MinPartitionEntities is the number of sorted entity projections
	// ConsiderSplit skips at each end before seeding split candidates; a
	// leaf with fewer than 2*Min entities is never split. Collapse is
	// governed by TriggerDestroyEntities, not by this value.
	MinPartitionEntities int
	// MaxPartitionEntities is a soft ceiling informing split eagerness;
	// it is not a hard cap.
	MaxPartitionEntities int
	// TriggerCreateEntities is the entity count above which a leaf
	// considers splitting. Constructor requires TriggerCreateEntities >= 2*Min so a
	// split's two children can each retain at least Min.
	TriggerCreateEntities int
	// TriggerDestroyEntities is the combined sibling count at which
	// ConsiderPrune fires. Constructor requires
	// TriggerDestroyEntities <= 2*Min-1 so collapse triggers strictly
	// before a re-split would immediately re-trigger (preventing split/
	// collapse thrashing at the boundary).
	TriggerDestroyEntities int

	// HeuristicWeight scales the pathfinder's h() term in g + weight*h
	// best-first ordering (spec.md 4.3).
	HeuristicWeight float64

	// PunishmentA, PunishmentB, PunishmentC parameterize the entity
	// repulsion punishment function P(x) = sum 1/(a*d^2 + b*|d| + c) used
	// by ConsiderSplit's seed/axis search (spec.md 4.2).
	PunishmentA float64
	PunishmentB float64
	PunishmentC float64

	// NewtonMaxIterations bounds ConsiderSplit's root search.
	NewtonMaxIterations int
}

// Default returns the tuning spec.md 9 names as the production defaults.
func Default() Set {
	return Set{
		MinPartitionEntities:   4,
		MaxPartitionEntities:   20,
		TriggerCreateEntities:  15,
		TriggerDestroyEntities: 4,

		HeuristicWeight: 1.5,

		PunishmentA: 16,
		PunishmentB: 25,
		PunishmentC: 0.7,

		NewtonMaxIterations: 10,
	}
}

// Validate checks the cross-field relationships ConsiderSplit/ConsiderPrune
// depend on to avoid split/collapse thrashing, per spec.md 4.2.
func (s Set) Validate() error {
	if s.MinPartitionEntities < 1 {
		return errInvalid("MinPartitionEntities must be >= 1")
	}
	if s.MaxPartitionEntities < s.MinPartitionEntities {
		return errInvalid("MaxPartitionEntities must be >= MinPartitionEntities")
	}
	if s.TriggerCreateEntities < 2*s.MinPartitionEntities {
		return errInvalid("TriggerCreateEntities must be >= 2*MinPartitionEntities")
	}
	if s.TriggerDestroyEntities > 2*s.MinPartitionEntities-1 {
		return errInvalid("TriggerDestroyEntities must be <= 2*MinPartitionEntities-1")
	}
	if s.NewtonMaxIterations < 1 {
		return errInvalid("NewtonMaxIterations must be >= 1")
	}
	return nil
}

type errInvalid string

func (e errInvalid) Error() string { return "tunable: " + string(e) }
