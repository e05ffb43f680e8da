// Package config loads a tunable.Set from a TOML file, reusing the
// teacher's hand-rolled reflection-based decoder (toml package, kept down
// to its decode path — this library only ever loads tunables, never
// writes them back out).
package config

import (
	"fmt"
	"os"

	"github.com/lixenwraith/polypath/toml"
	"github.com/lixenwraith/polypath/tunable"
)

// file mirrors tunable.Set's shape with toml tags; decoded separately so
// tunable itself carries no serialization concerns.
type file struct {
	MinPartitionEntities   int     `toml:"min_partition_entities"`
	MaxPartitionEntities   int     `toml:"max_partition_entities"`
	TriggerCreateEntities  int     `toml:"trigger_create_entities"`
	TriggerDestroyEntities int     `toml:"trigger_destroy_entities"`
	HeuristicWeight        float64 `toml:"heuristic_weight"`
	PunishmentA            float64 `toml:"punishment_a"`
	PunishmentB            float64 `toml:"punishment_b"`
	PunishmentC            float64 `toml:"punishment_c"`
	NewtonMaxIterations    int     `toml:"newton_max_iterations"`
}

// Load reads and parses the TOML file at path, starting from
// tunable.Default() and overriding only fields present in the file, then
// validates the result.
func Load(path string) (tunable.Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tunable.Set{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes TOML data into a tunable.Set, same rules as Load.
func Parse(data []byte) (tunable.Set, error) {
	set := tunable.Default()

	var f file
	fillFromSet(&f, set)
	if err := toml.Unmarshal(data, &f); err != nil {
		return tunable.Set{}, fmt.Errorf("config: parse: %w", err)
	}
	set = toSet(f)

	if err := set.Validate(); err != nil {
		return tunable.Set{}, fmt.Errorf("config: %w", err)
	}
	return set, nil
}

func fillFromSet(f *file, s tunable.Set) {
	f.MinPartitionEntities = s.MinPartitionEntities
	f.MaxPartitionEntities = s.MaxPartitionEntities
	f.TriggerCreateEntities = s.TriggerCreateEntities
	f.TriggerDestroyEntities = s.TriggerDestroyEntities
	f.HeuristicWeight = s.HeuristicWeight
	f.PunishmentA = s.PunishmentA
	f.PunishmentB = s.PunishmentB
	f.PunishmentC = s.PunishmentC
	f.NewtonMaxIterations = s.NewtonMaxIterations
}

func toSet(f file) tunable.Set {
	return tunable.Set{
		MinPartitionEntities:   f.MinPartitionEntities,
		MaxPartitionEntities:   f.MaxPartitionEntities,
		TriggerCreateEntities:  f.TriggerCreateEntities,
		TriggerDestroyEntities: f.TriggerDestroyEntities,
		HeuristicWeight:        f.HeuristicWeight,
		PunishmentA:            f.PunishmentA,
		PunishmentB:            f.PunishmentB,
		PunishmentC:            f.PunishmentC,
		NewtonMaxIterations:    f.NewtonMaxIterations,
	}
}
