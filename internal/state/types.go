package state

import "encoding/json"

// #region activities
// Activity indexes the canonical activity list.
type Activity int

const (
	Eat Activity = iota
	Play
	Rest
	Work
	Exercise

	NumActivities = 5
)

// ActivityNames is the canonical activity order used for vectors and JSON fields.
var ActivityNames = [NumActivities]string{"eat", "play", "rest", "work", "exercise"}

func (a Activity) String() string { return ActivityNames[a] }

// ActivityVector holds one day's activity counts in canonical order.
type ActivityVector [NumActivities]int

// Get returns the count for a.
func (v ActivityVector) Get(a Activity) int { return v[a] }

// Map returns the vector keyed by activity name.
func (v ActivityVector) Map() map[string]int {
	m := make(map[string]int, NumActivities)
	for i, name := range ActivityNames {
		m[name] = v[i]
	}
	return m
}
// #endregion activities

// #region traits
// Trait indexes the canonical trait list.
type Trait int

const (
	Discipline Trait = iota
	Sociability
	Energy
	WorkEthic
	Playfulness

	NumTraits = 5
)

// TraitNames is the canonical trait order.
var TraitNames = [NumTraits]string{"discipline", "sociability", "energy", "work_ethic", "playfulness"}

func (t Trait) String() string { return TraitNames[t] }

const (
	TraitMin     = 0
	TraitMax     = 10
	TraitNeutral = 5 // starting value when no prior snapshot exists
)

// TraitSnapshot holds trait values in canonical order. Values lie in [TraitMin, TraitMax].
type TraitSnapshot [NumTraits]int

// NeutralTraits returns a snapshot with every trait at TraitNeutral.
func NeutralTraits() TraitSnapshot {
	var t TraitSnapshot
	for i := range t {
		t[i] = TraitNeutral
	}
	return t
}

// Get returns the value of trait tr.
func (t TraitSnapshot) Get(tr Trait) int { return t[tr] }

// Map returns the snapshot keyed by trait name.
func (t TraitSnapshot) Map() map[string]int {
	m := make(map[string]int, NumTraits)
	for i, name := range TraitNames {
		m[name] = t[i]
	}
	return m
}

// MarshalJSON encodes the snapshot as an object keyed by trait name.
func (t TraitSnapshot) MarshalJSON() ([]byte, error) {
	return marshalOrdered(TraitNames[:], t[:])
}

// ClampTrait bounds v into [TraitMin, TraitMax].
func ClampTrait(v int) int {
	return max(TraitMin, min(TraitMax, v))
}
// #endregion traits

// #region persona
// Level is a qualitative persona rating.
type Level string

const (
	Low  Level = "low"
	High Level = "high"
)

// Persona is the threshold-derived description of a trait snapshot.
type Persona struct {
	Energy      Level  `json:"energy"`
	WorkEthic   Level  `json:"work_ethic"`
	Sociability Level  `json:"sociability"`
	Discipline  Level  `json:"discipline"`
	Background  string `json:"background"`
}
// #endregion persona

// #region record
// Record is one persisted day. Traits and Persona are nil on seed records
// that were written without them.
type Record struct {
	Key        DayKey
	Activities ActivityVector
	Traits     *TraitSnapshot
	Persona    *Persona

	// raw keeps the stored encoding of a loaded record so rewrites reproduce it.
	raw json.RawMessage
}
// #endregion record

// #region defaults
// DefaultWindowWeeks is how many trailing weeks of history feed the forecaster.
const DefaultWindowWeeks = 6
// #endregion defaults
