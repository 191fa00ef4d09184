package eval

// #region eval-config
// EvalConfig holds bounds for pre-append validation.
type EvalConfig struct {
	MaxDailyCount int  // reject any single activity count above this (0 = unbounded)
	RequireTraits bool // candidate must carry traits and persona
}

// DefaultEvalConfig returns the checks run before every append.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		MaxDailyCount: 0,
		RequireTraits: true,
	}
}

// #endregion eval-config

// #region eval-metric
// EvalMetric captures a single validation check result.
type EvalMetric struct {
	Name  string
	Value int
	Pass  bool
}

// #endregion eval-metric

// #region eval-result
// EvalResult is the outcome of validating one candidate record.
type EvalResult struct {
	Passed  bool
	Metrics []EvalMetric
	Reason  string
}

// #endregion eval-result
