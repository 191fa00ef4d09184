package replay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/petsim/internal/eval"
	"github.com/danielpatrickdp/petsim/internal/persona"
	"github.com/danielpatrickdp/petsim/internal/state"
	"github.com/danielpatrickdp/petsim/internal/traits"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture. Days use the
// persisted record layout; their traits and personality, when present, are
// the expected values.
type Fixture struct {
	Description string         `json:"description"`
	StartTraits map[string]int `json:"start_traits,omitempty"`
	Config      FixtureConfig  `json:"config"`
	Days        []state.Record `json:"days"`
}

// FixtureConfig bundles the tunables for a replay run. Zero sections fall
// back to defaults.
type FixtureConfig struct {
	Thresholds    *FixtureThresholds `json:"thresholds,omitempty"`
	MaxDailyCount int                `json:"max_daily_count,omitempty"`
}

// FixtureThresholds mirrors persona.Thresholds with JSON tags.
type FixtureThresholds struct {
	EnergyLowBelow      int `json:"energy_low_below"`
	WorkEthicHighFrom   int `json:"work_ethic_high_from"`
	SociabilityHighFrom int `json:"sociability_high_from"`
	DisciplineHighFrom  int `json:"discipline_high_from"`
	BadHabitsBelow      int `json:"bad_habits_below"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// WriteFixture writes f as indented JSON. Recorded days keep their stored
// content.
func WriteFixture(path string, f *Fixture) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode fixture: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// Start converts StartTraits into a snapshot. Missing names take the neutral
// value and every value is clamped; an empty map means no previous snapshot.
func (f *Fixture) Start() *state.TraitSnapshot {
	if len(f.StartTraits) == 0 {
		return nil
	}
	snap := state.NeutralTraits()
	for i, name := range state.TraitNames {
		if v, ok := f.StartTraits[name]; ok {
			snap[i] = state.ClampTrait(v)
		}
	}
	return &snap
}

// ToReplayConfig converts a FixtureConfig to a domain ReplayConfig.
func (fc *FixtureConfig) ToReplayConfig() ReplayConfig {
	config := DefaultReplayConfig()
	if fc.Thresholds != nil {
		config.Thresholds = persona.Thresholds{
			EnergyLowBelow:      fc.Thresholds.EnergyLowBelow,
			WorkEthicHighFrom:   fc.Thresholds.WorkEthicHighFrom,
			SociabilityHighFrom: fc.Thresholds.SociabilityHighFrom,
			DisciplineHighFrom:  fc.Thresholds.DisciplineHighFrom,
			BadHabitsBelow:      fc.Thresholds.BadHabitsBelow,
		}
	}
	config.EvalConfig.MaxDailyCount = fc.MaxDailyCount
	return config
}

// #endregion fixture-loader

// #region fixture-export

// FromRecords builds a fixture from the last n records (all when n <= 0).
// The snapshot of the record just before the slice becomes the start traits,
// so the fixture replays exactly as the pipeline produced it.
func FromRecords(records []state.Record, n int, description string) *Fixture {
	start := 0
	if n > 0 && n < len(records) {
		start = len(records) - n
	}

	f := &Fixture{
		Description: description,
		Days:        append([]state.Record(nil), records[start:]...),
	}
	if start > 0 && records[start-1].Traits != nil {
		f.StartTraits = records[start-1].Traits.Map()
	}
	return f
}

// #endregion fixture-export

// #region defaults

// DefaultReplayConfig uses the standard rules and thresholds. Replayed days
// need not carry traits, so only succession and counts are checked.
func DefaultReplayConfig() ReplayConfig {
	return ReplayConfig{
		Rules:      traits.DefaultRules(),
		Thresholds: persona.DefaultThresholds(),
		EvalConfig: eval.EvalConfig{},
	}
}

// #endregion defaults
