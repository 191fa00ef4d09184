// Package persona turns a trait snapshot into a qualitative description.
package persona

import "github.com/danielpatrickdp/petsim/internal/state"

// #region thresholds
// Thresholds holds the cut-offs used by Summarize.
type Thresholds struct {
	EnergyLowBelow      int // energy below this reads "low"
	WorkEthicHighFrom   int
	SociabilityHighFrom int
	DisciplineHighFrom  int
	BadHabitsBelow      int // discipline below this picks the neglect background
}

// DefaultThresholds returns the standard cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		EnergyLowBelow:      4,
		WorkEthicHighFrom:   5,
		SociabilityHighFrom: 5,
		DisciplineHighFrom:  5,
		BadHabitsBelow:      4,
	}
}

const (
	BackgroundNeglected  = "Learned some bad habits due to neglect"
	BackgroundWellRaised = "Well-raised with good routines"
)
// #endregion thresholds

// #region summarizer
// Summarizer derives personas from traits.
type Summarizer struct {
	t Thresholds
}

// NewSummarizer creates a summarizer with the given thresholds.
func NewSummarizer(t Thresholds) *Summarizer {
	return &Summarizer{t: t}
}

// Summarize is a pure function of traits. today is accepted for callers that
// have the day's activities at hand; it does not affect the result.
func (s *Summarizer) Summarize(traits state.TraitSnapshot, today *state.ActivityVector) state.Persona {
	p := state.Persona{
		Energy:      state.High,
		WorkEthic:   atLeast(traits.Get(state.WorkEthic), s.t.WorkEthicHighFrom),
		Sociability: atLeast(traits.Get(state.Sociability), s.t.SociabilityHighFrom),
		Discipline:  atLeast(traits.Get(state.Discipline), s.t.DisciplineHighFrom),
		Background:  BackgroundWellRaised,
	}
	if traits.Get(state.Energy) < s.t.EnergyLowBelow {
		p.Energy = state.Low
	}
	if traits.Get(state.Discipline) < s.t.BadHabitsBelow {
		p.Background = BackgroundNeglected
	}
	return p
}

// Summarize uses DefaultThresholds.
func Summarize(traits state.TraitSnapshot) state.Persona {
	return NewSummarizer(DefaultThresholds()).Summarize(traits, nil)
}

func atLeast(v, threshold int) state.Level {
	if v >= threshold {
		return state.High
	}
	return state.Low
}
// #endregion summarizer
