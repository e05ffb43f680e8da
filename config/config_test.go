package config

import (
	"strings"
	"testing"

	"github.com/lixenwraith/polypath/tunable"
)

func TestParseOverridesOnlyPresentFields(t *testing.T) {
	data := []byte(`
min_partition_entities = 8
max_partition_entities = 40
trigger_create_entities = 16
`)

	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := tunable.Default()
	want.MinPartitionEntities = 8
	want.MaxPartitionEntities = 40
	want.TriggerCreateEntities = 16

	if got != want {
		t.Fatalf("Parse() = %+v, want %+v", got, want)
	}
}

func TestParseEmptyReturnsDefaults(t *testing.T) {
	got, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got != tunable.Default() {
		t.Fatalf("Parse(nil) = %+v, want defaults", got)
	}
}

func TestParseRejectsInvalidCombination(t *testing.T) {
	data := []byte(`trigger_create_entities = 1`)
	_, err := Parse(data)
	if err == nil {
		t.Fatal("expected validation error for trigger_create_entities below 2*min")
	}
	if !strings.Contains(err.Error(), "TriggerCreateEntities") {
		t.Fatalf("error = %v, want mention of TriggerCreateEntities", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/tunables.toml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
