package traits

import "github.com/danielpatrickdp/petsim/internal/state"

// #region rule
// Rule adds a signed combination of today's activities to one trait.
type Rule struct {
	Trait  state.Trait
	Weight state.ActivityVector // per-activity coefficient
}

// DefaultRules are the accumulation rules:
//
//	discipline  += work - play
//	sociability += play - work
//	energy      += rest - exercise
//	work_ethic  += work + exercise - play
//	playfulness += play - work
func DefaultRules() []Rule {
	return []Rule{
		{Trait: state.Discipline, Weight: weights(map[state.Activity]int{state.Work: 1, state.Play: -1})},
		{Trait: state.Sociability, Weight: weights(map[state.Activity]int{state.Play: 1, state.Work: -1})},
		{Trait: state.Energy, Weight: weights(map[state.Activity]int{state.Rest: 1, state.Exercise: -1})},
		{Trait: state.WorkEthic, Weight: weights(map[state.Activity]int{state.Work: 1, state.Exercise: 1, state.Play: -1})},
		{Trait: state.Playfulness, Weight: weights(map[state.Activity]int{state.Play: 1, state.Work: -1})},
	}
}

func weights(m map[state.Activity]int) state.ActivityVector {
	var w state.ActivityVector
	for a, c := range m {
		w[a] = c
	}
	return w
}
// #endregion rule

// #region result
// Result bundles everything returned by Update.
type Result struct {
	Traits  state.TraitSnapshot
	Start   state.TraitSnapshot // snapshot the rules were applied to
	Deltas  [state.NumTraits]int
	Clamped []state.Trait // traits whose raw value fell outside the range
	Initial bool          // true when no previous snapshot existed
}
// #endregion result
