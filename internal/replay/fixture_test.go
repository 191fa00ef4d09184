package replay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/petsim/internal/state"
)

// #region fixture-tests

// TestFixture_NeglectWeek replays the checked-in fixture. Any change to the
// accumulation rules or persona thresholds shows up here as a mismatch.
func TestFixture_NeglectWeek(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "neglect_week.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if len(f.Days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(f.Days))
	}

	results := Replay(f.Start(), f.Days, f.Config.ToReplayConfig())
	for _, r := range results {
		if r.Action != ActionMatch {
			t.Errorf("%v: expected match, got %s (%s)", r.Key, r.Action, r.Reason)
		}
	}

	summary := Summarize(results)
	if summary.Matches != 3 {
		t.Fatalf("expected 3 matches, got %+v", summary)
	}
	if summary.FinalTraits != (state.TraitSnapshot{4, 6, 5, 7, 6}) {
		t.Fatalf("unexpected final traits %v", summary.FinalTraits)
	}
}

// TestLoadFixture_NotFound verifies error on missing file.
func TestLoadFixture_NotFound(t *testing.T) {
	_, err := LoadFixture("testdata/nonexistent.json")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

// TestLoadFixture_Malformed verifies error on invalid JSON.
func TestLoadFixture_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not valid json}"), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	if _, err := LoadFixture(path); err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
}

func TestLoadFixture_BadDay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad_day.json")
	body := `{"description":"x","days":[{"week":0,"day":"Someday"}]}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	if _, err := LoadFixture(path); err == nil {
		t.Fatal("expected error for unknown day")
	}
}

func TestFixture_StartFillsNeutral(t *testing.T) {
	f := &Fixture{StartTraits: map[string]int{"energy": 12, "discipline": 1}}
	got := f.Start()
	if got == nil {
		t.Fatal("expected start snapshot")
	}
	if *got != (state.TraitSnapshot{1, 5, 10, 5, 5}) {
		t.Fatalf("unexpected start %v", *got)
	}
	if (&Fixture{}).Start() != nil {
		t.Fatal("empty start traits should mean no previous snapshot")
	}
}

func TestFixtureConfig_Thresholds(t *testing.T) {
	fc := FixtureConfig{
		Thresholds:    &FixtureThresholds{EnergyLowBelow: 6, WorkEthicHighFrom: 5, SociabilityHighFrom: 5, DisciplineHighFrom: 5, BadHabitsBelow: 4},
		MaxDailyCount: 9,
	}
	config := fc.ToReplayConfig()
	if config.Thresholds.EnergyLowBelow != 6 {
		t.Errorf("expected custom energy threshold, got %d", config.Thresholds.EnergyLowBelow)
	}
	if config.EvalConfig.MaxDailyCount != 9 {
		t.Errorf("expected max daily count 9, got %d", config.EvalConfig.MaxDailyCount)
	}
	if len(config.Rules) != 5 {
		t.Errorf("expected default rules, got %d", len(config.Rules))
	}
}

// #endregion fixture-tests

// #region export-tests

func TestFromRecords_RoundTrip(t *testing.T) {
	records := chain(t, []state.ActivityVector{
		{1, 1, 1, 1, 1},
		{0, 4, 0, 0, 0},
		{2, 0, 3, 5, 1},
		{1, 2, 2, 2, 2},
	})

	f := FromRecords(records, 2, "last two days")
	if len(f.Days) != 2 || f.Days[0].Key != records[2].Key {
		t.Fatalf("expected the last two records, got %d starting %v", len(f.Days), f.Days[0].Key)
	}
	if f.StartTraits["energy"] != records[1].Traits.Get(state.Energy) {
		t.Fatalf("start traits should come from the preceding record, got %v", f.StartTraits)
	}

	path := filepath.Join(t.TempDir(), "export.json")
	if err := WriteFixture(path, f); err != nil {
		t.Fatalf("WriteFixture: %v", err)
	}
	loaded, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	summary := Summarize(Replay(loaded.Start(), loaded.Days, loaded.Config.ToReplayConfig()))
	if summary.Matches != 2 || summary.Mismatches != 0 {
		t.Fatalf("expected exported fixture to replay cleanly, got %+v", summary)
	}
}

func TestFromRecords_All(t *testing.T) {
	records := chain(t, []state.ActivityVector{{1, 0, 0, 0, 0}, {0, 1, 0, 0, 0}})
	f := FromRecords(records, 0, "")
	if len(f.Days) != 2 {
		t.Fatalf("expected all records, got %d", len(f.Days))
	}
	if f.StartTraits != nil {
		t.Fatalf("full export starts neutral, got %v", f.StartTraits)
	}
}

// #endregion export-tests
