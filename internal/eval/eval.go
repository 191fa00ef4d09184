package eval

import (
	"fmt"

	"github.com/danielpatrickdp/petsim/internal/state"
)

// #region eval-harness
// EvalHarness checks a candidate record against the history it extends.
type EvalHarness struct {
	config EvalConfig
}

// NewEvalHarness creates an eval harness with the given configuration.
func NewEvalHarness(config EvalConfig) *EvalHarness {
	return &EvalHarness{config: config}
}

// Run validates candidate as the successor of the latest record in history.
func (h *EvalHarness) Run(history []state.Record, candidate state.Record) EvalResult {
	var metrics []EvalMetric
	var failReasons []string
	check := func(name string, value int, pass bool, reason string) {
		metrics = append(metrics, EvalMetric{Name: name, Value: value, Pass: pass})
		if !pass {
			failReasons = append(failReasons, reason)
		}
	}

	// 1. Day succession
	if last, ok := state.Latest(history); ok {
		want := last.Key.Next()
		check("day_succession", candidate.Key.Week, candidate.Key == want,
			fmt.Sprintf("day %v does not follow %v", candidate.Key, last.Key))
	}

	// 2. Activity counts
	for i, v := range candidate.Activities {
		name := state.ActivityNames[i]
		pass := v >= 0 && (h.config.MaxDailyCount == 0 || v <= h.config.MaxDailyCount)
		check("activity_"+name, v, pass, fmt.Sprintf("%s count %d out of range", name, v))
	}

	// 3. Trait range
	if candidate.Traits == nil {
		check("traits_present", 0, !h.config.RequireTraits, "traits missing")
	} else {
		for i, v := range candidate.Traits {
			name := state.TraitNames[i]
			check("trait_"+name, v, v >= state.TraitMin && v <= state.TraitMax,
				fmt.Sprintf("%s %d outside [%d, %d]", name, v, state.TraitMin, state.TraitMax))
		}
	}
	if h.config.RequireTraits && candidate.Persona == nil {
		check("persona_present", 0, false, "persona missing")
	}

	reason := "all checks passed"
	if len(failReasons) == 1 {
		reason = fmt.Sprintf("eval failed: %s", failReasons[0])
	} else if len(failReasons) > 1 {
		reason = fmt.Sprintf("eval failed: %d checks: %s", len(failReasons), failReasons[0])
	}

	return EvalResult{
		Passed:  len(failReasons) == 0,
		Metrics: metrics,
		Reason:  reason,
	}
}

// #endregion eval-harness
