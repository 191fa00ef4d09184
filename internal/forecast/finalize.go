package forecast

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/danielpatrickdp/petsim/internal/state"
)

// #region jitter
// JitterSource yields per-activity noise in {-1, 0, +1}.
type JitterSource interface {
	Draw() int
}

// Jitter draws uniform noise from a PCG generator.
type Jitter struct {
	rng *rand.Rand
}

// NewJitter seeds the generator from seed, or from process entropy when seed is nil.
func NewJitter(seed *uint64) *Jitter {
	var src *rand.PCG
	if seed != nil {
		src = rand.NewPCG(*seed, *seed)
	} else {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Jitter{rng: rand.New(src)}
}

// Draw returns -1, 0 or +1 with equal probability.
func (j *Jitter) Draw() int {
	return j.rng.IntN(3) - 1
}
// #endregion jitter

// #region finalize
// Finalize rounds each predicted component half-to-even, adds one jitter draw
// per activity, and clamps the result at zero.
func Finalize(pred []float64, jitter JitterSource) (state.ActivityVector, error) {
	var out state.ActivityVector
	if len(pred) != state.NumActivities {
		return out, fmt.Errorf("prediction has %d components, want %d", len(pred), state.NumActivities)
	}
	for i, p := range pred {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return out, fmt.Errorf("prediction for %s is %v", state.ActivityNames[i], p)
		}
		rounded := math.RoundToEven(max(-maxPrediction, min(p, maxPrediction)))
		out[i] = max(0, int(rounded)+jitter.Draw())
	}
	return out, nil
}

// maxPrediction caps absurd model output before integer conversion.
const maxPrediction = 1 << 31
// #endregion finalize
