package replay

import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/petsim/internal/eval"
	"github.com/danielpatrickdp/petsim/internal/persona"
	"github.com/danielpatrickdp/petsim/internal/state"
	"github.com/danielpatrickdp/petsim/internal/traits"
)

// #region types

// Action outcomes for a replayed day.
const (
	ActionMatch      = "match"
	ActionMismatch   = "mismatch"
	ActionUnchecked  = "unchecked"
	ActionEvalReject = "eval_reject"
)

// ReplayConfig bundles the rule set, persona thresholds and validation bounds.
type ReplayConfig struct {
	Rules      []traits.Rule
	Thresholds persona.Thresholds
	EvalConfig eval.EvalConfig
}

// ReplayResult captures the outcome of replaying one day.
type ReplayResult struct {
	Key     state.DayKey
	Action  string // "match" | "mismatch" | "unchecked" | "eval_reject"
	Reason  string
	Traits  traits.Result
	Persona state.Persona
	Eval    eval.EvalResult
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	TotalDays   int
	Matches     int
	Mismatches  int
	Unchecked   int
	EvalRejects int
	FinalTraits state.TraitSnapshot
}

// #endregion types

// #region replay

// Replay recomputes traits and persona for each day in order. start seeds the
// first day; every later day starts from the previous day's recorded traits,
// and a day recorded without traits hands on a neutral start, exactly as a
// pipeline run reads its latest record. Operates entirely in-memory.
func Replay(start *state.TraitSnapshot, days []state.Record, config ReplayConfig) []ReplayResult {
	engine := traits.New(config.Rules)
	summarizer := persona.NewSummarizer(config.Thresholds)
	harness := eval.NewEvalHarness(config.EvalConfig)

	results := make([]ReplayResult, 0, len(days))
	previous := start

	for i, day := range days {
		acts := day.Activities
		tr := engine.Update(previous, acts)
		pers := summarizer.Summarize(tr.Traits, &acts)

		r := ReplayResult{
			Key:     day.Key,
			Traits:  tr,
			Persona: pers,
			Eval:    harness.Run(days[:i], day),
		}

		var diffs []string
		if day.Traits != nil {
			diffs = append(diffs, traitDiffs(*day.Traits, tr.Traits)...)
		}
		if day.Persona != nil && *day.Persona != pers {
			diffs = append(diffs, fmt.Sprintf("personality: recorded %+v, computed %+v", *day.Persona, pers))
		}

		switch {
		case !r.Eval.Passed:
			r.Action = ActionEvalReject
			r.Reason = r.Eval.Reason
		case len(diffs) > 0:
			r.Action = ActionMismatch
			r.Reason = strings.Join(diffs, "; ")
		case day.Traits == nil && day.Persona == nil:
			r.Action = ActionUnchecked
		default:
			r.Action = ActionMatch
		}
		results = append(results, r)

		previous = day.Traits
	}

	return results
}

func traitDiffs(recorded, computed state.TraitSnapshot) []string {
	var out []string
	for i := range recorded {
		if recorded[i] != computed[i] {
			out = append(out, fmt.Sprintf("%s: recorded %d, computed %d", state.TraitNames[i], recorded[i], computed[i]))
		}
	}
	return out
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []ReplayResult) ReplaySummary {
	s := ReplaySummary{TotalDays: len(results)}
	for _, r := range results {
		switch r.Action {
		case ActionMatch:
			s.Matches++
		case ActionMismatch:
			s.Mismatches++
		case ActionUnchecked:
			s.Unchecked++
		case ActionEvalReject:
			s.EvalRejects++
		}
	}
	if len(results) > 0 {
		s.FinalTraits = results[len(results)-1].Traits.Traits
	}
	return s
}

// #endregion replay
