// Package forecast predicts the next day's activity counts from recent history.
//
// The model behind a Forecaster is swappable: an in-process random forest, a
// weekday-mean rule model, or a remote service reached over gRPC. Whatever the
// model returns is real-valued; Finalize turns it into counts.
package forecast

import (
	"context"
	"errors"

	"github.com/danielpatrickdp/petsim/internal/state"
)

// ErrInsufficientHistory is returned when there is nothing to fit.
var ErrInsufficientHistory = errors.New("insufficient history: window is empty")

// #region types
// Sample is one training example.
type Sample struct {
	Key        state.DayKey
	Activities state.ActivityVector
}

// Model predicts a real-valued activity vector, one entry per state.ActivityNames.
type Model interface {
	Predict(ctx context.Context, key state.DayKey) ([]float64, error)
}

// Forecaster fits a Model to history. Implementations must be deterministic
// for identical samples and configuration, and must accept a single sample.
type Forecaster interface {
	Fit(ctx context.Context, samples []Sample) (Model, error)
}
// #endregion types

// #region samples
// Samples converts records into training examples.
func Samples(records []state.Record) []Sample {
	out := make([]Sample, len(records))
	for i, r := range records {
		out[i] = Sample{Key: r.Key, Activities: r.Activities}
	}
	return out
}

// features is the regression input for a day: (week, day index).
func features(key state.DayKey) [numFeatures]float64 {
	return [numFeatures]float64{float64(key.Week), float64(key.Day)}
}

const numFeatures = 2
// #endregion samples
