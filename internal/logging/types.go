package logging

import "time"

// #region run-entry
// RunEntry is a single row in the run_log table.
type RunEntry struct {
	RunID       string
	Week        int
	Day         string
	Stage       string // last stage reached
	Outcome     string // "appended" | "failed"
	Reason      string
	PayloadJSON string // RunPayload, JSON encoded
	CreatedAt   time.Time
}
// #endregion run-entry

// #region run-payload
// RunPayload captures the inputs and outputs of one run for later audit.
type RunPayload struct {
	Forecaster string         `json:"forecaster"`
	WindowSize int            `json:"window_size"`
	Prediction []float64      `json:"prediction,omitempty"`
	Activities map[string]int `json:"activities,omitempty"`
	Previous   map[string]int `json:"previous_traits,omitempty"`
	Traits     map[string]int `json:"traits,omitempty"`
	Clamped    []string       `json:"clamped,omitempty"`
	EvalReason string         `json:"eval_reason,omitempty"`
}
// #endregion run-payload
