// Package traits accumulates personality traits from daily activities.
package traits

import (
	"math"

	"github.com/danielpatrickdp/petsim/internal/state"
)

// #region engine
// Engine applies a fixed rule set. The zero value is not usable; use New or Default.
type Engine struct {
	rules []Rule
}

// New returns an engine for rules.
func New(rules []Rule) *Engine {
	return &Engine{rules: rules}
}

// Default returns an engine with DefaultRules.
func Default() *Engine {
	return New(DefaultRules())
}
// #endregion engine

// #region update
// Update is a pure function of its inputs. A nil previous snapshot starts
// every trait at state.TraitNeutral. All rules read the same starting
// snapshot, then every trait is clamped into [TraitMin, TraitMax].
func (e *Engine) Update(previous *state.TraitSnapshot, today state.ActivityVector) Result {
	res := Result{Start: state.NeutralTraits(), Initial: previous == nil}
	if previous != nil {
		res.Start = *previous
	}

	raw := res.Start
	for _, r := range e.rules {
		d := dot(r.Weight, today)
		res.Deltas[r.Trait] = satAdd(res.Deltas[r.Trait], d)
		raw[r.Trait] = satAdd(raw[r.Trait], d)
	}

	for i, v := range raw {
		res.Traits[i] = state.ClampTrait(v)
		if res.Traits[i] != v {
			res.Clamped = append(res.Clamped, state.Trait(i))
		}
	}
	return res
}

// Update applies DefaultRules.
func Update(previous *state.TraitSnapshot, today state.ActivityVector) Result {
	return Default().Update(previous, today)
}
// #endregion update

// #region saturating
func dot(w, v state.ActivityVector) int {
	var sum int
	for i := range w {
		sum = satAdd(sum, satMul(w[i], v[i]))
	}
	return sum
}

func satAdd(a, b int) int {
	s := a + b
	switch {
	case a > 0 && b > 0 && s < 0:
		return math.MaxInt
	case a < 0 && b < 0 && s >= 0:
		return math.MinInt
	}
	return s
}

func satMul(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	p := a * b
	if p/b != a || (a == -1 && b == math.MinInt) || (b == -1 && a == math.MinInt) {
		if (a > 0) == (b > 0) {
			return math.MaxInt
		}
		return math.MinInt
	}
	return p
}
// #endregion saturating
