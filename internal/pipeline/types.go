package pipeline

// #region imports
import (
	"errors"
	"fmt"

	"github.com/danielpatrickdp/petsim/internal/eval"
	"github.com/danielpatrickdp/petsim/internal/state"
	"github.com/danielpatrickdp/petsim/internal/traits"
)

// #endregion imports

// #region stage

// Stage names a step of a run. Stages execute strictly in declaration order.
type Stage string

const (
	StageLoad      Stage = "LOAD"
	StageWindow    Stage = "WINDOW"
	StageFit       Stage = "FIT"
	StagePredict   Stage = "PREDICT"
	StageTraits    Stage = "ACCUMULATE_TRAITS"
	StageSummarize Stage = "SUMMARIZE"
	StageAppend    Stage = "APPEND"
	StageDone      Stage = "DONE"
)

// #endregion stage

// #region errors

// ErrValidation is wrapped when the candidate record fails the pre-append checks.
var ErrValidation = errors.New("candidate record rejected")

// RunError reports the stage at which a run halted.
type RunError struct {
	Stage Stage
	Err   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

// #endregion errors

// #region result

// Result describes a completed run.
type Result struct {
	RunID      string
	Record     state.Record // the appended record
	Prediction []float64    // raw model output before rounding and jitter
	Traits     traits.Result
	Eval       eval.EvalResult
	WindowSize int // records fed to the forecaster
}

// #endregion result
