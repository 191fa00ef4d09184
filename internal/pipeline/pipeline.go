// Package pipeline runs one simulated day end to end: load the history,
// forecast the next day's activities, accumulate traits, derive the persona
// and append the resulting record.
package pipeline

// #region imports
import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/danielpatrickdp/petsim/internal/eval"
	"github.com/danielpatrickdp/petsim/internal/forecast"
	"github.com/danielpatrickdp/petsim/internal/logging"
	"github.com/danielpatrickdp/petsim/internal/persona"
	"github.com/danielpatrickdp/petsim/internal/state"
	"github.com/danielpatrickdp/petsim/internal/traits"
)

// #endregion imports

// #region deps

// Deps wires a Pipeline. Store and Forecaster are required; every other field
// falls back to its package default when zero.
type Deps struct {
	Store          state.Store
	Forecaster     forecast.Forecaster
	ForecasterName string
	WindowWeeks    int
	Jitter         forecast.JitterSource
	Traits         *traits.Engine
	Persona        *persona.Summarizer
	Eval           *eval.EvalHarness
	Ledger         *logging.Ledger
	Log            logrus.FieldLogger
}

// #endregion deps

// #region pipeline-struct

// Pipeline executes runs against a single store. It is not safe for
// concurrent use; callers serialize runs.
type Pipeline struct {
	deps Deps
}

// New fills defaults into deps and returns a ready pipeline.
func New(deps Deps) *Pipeline {
	if deps.WindowWeeks <= 0 {
		deps.WindowWeeks = state.DefaultWindowWeeks
	}
	if deps.Jitter == nil {
		deps.Jitter = forecast.NewJitter(nil)
	}
	if deps.Traits == nil {
		deps.Traits = traits.Default()
	}
	if deps.Persona == nil {
		deps.Persona = persona.NewSummarizer(persona.DefaultThresholds())
	}
	if deps.Eval == nil {
		deps.Eval = eval.NewEvalHarness(eval.DefaultEvalConfig())
	}
	if deps.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		deps.Log = l
	}
	if deps.ForecasterName == "" {
		deps.ForecasterName = fmt.Sprintf("%T", deps.Forecaster)
	}
	return &Pipeline{deps: deps}
}

// #endregion pipeline-struct

// #region run

// Run executes LOAD through APPEND. Any failure halts the run before the
// store is written and is returned as a *RunError.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	res := Result{RunID: uuid.NewString()}
	log := p.deps.Log.WithField("run_id", res.RunID)
	payload := logging.RunPayload{Forecaster: p.deps.ForecasterName}
	var key *state.DayKey

	fail := func(stage Stage, err error) (Result, error) {
		runErr := &RunError{Stage: stage, Err: err}
		log.WithField("stage", stage).WithError(err).Error("run failed")
		p.record(ctx, log, res.RunID, key, stage, "failed", runErr.Error(), payload)
		return res, runErr
	}

	// LOAD
	log.WithField("stage", StageLoad).Debug("loading history")
	records, err := p.deps.Store.Load(ctx)
	if err != nil {
		return fail(StageLoad, err)
	}

	// WINDOW
	window := state.Window(records, p.deps.WindowWeeks)
	res.WindowSize = len(window)
	payload.WindowSize = len(window)
	log.WithFields(logrus.Fields{
		"stage":   StageWindow,
		"records": len(records),
		"window":  len(window),
	}).Debug("history windowed")

	// FIT
	model, err := p.deps.Forecaster.Fit(ctx, forecast.Samples(window))
	if err != nil {
		return fail(StageFit, err)
	}

	// PREDICT
	latest, _ := state.Latest(window)
	next := latest.Key.Next()
	key = &next
	log = log.WithFields(logrus.Fields{"week": next.Week, "day": next.Day.String()})

	raw, err := model.Predict(ctx, next)
	if err != nil {
		return fail(StagePredict, err)
	}
	res.Prediction = raw
	payload.Prediction = raw
	activities, err := forecast.Finalize(raw, p.deps.Jitter)
	if err != nil {
		return fail(StagePredict, err)
	}
	payload.Activities = activities.Map()
	log.WithField("stage", StagePredict).Debugf("predicted %v", activities)

	// ACCUMULATE_TRAITS
	tr := p.deps.Traits.Update(latest.Traits, activities)
	res.Traits = tr
	if latest.Traits != nil {
		payload.Previous = latest.Traits.Map()
	}
	payload.Traits = tr.Traits.Map()
	for _, t := range tr.Clamped {
		payload.Clamped = append(payload.Clamped, t.String())
	}

	// SUMMARIZE
	traitsOut := tr.Traits
	pers := p.deps.Persona.Summarize(traitsOut, &activities)

	candidate := state.Record{
		Key:        next,
		Activities: activities,
		Traits:     &traitsOut,
		Persona:    &pers,
	}

	// APPEND
	res.Eval = p.deps.Eval.Run(records, candidate)
	payload.EvalReason = res.Eval.Reason
	if !res.Eval.Passed {
		return fail(StageAppend, fmt.Errorf("%w: %s", ErrValidation, res.Eval.Reason))
	}
	if err := p.deps.Store.Append(ctx, candidate); err != nil {
		return fail(StageAppend, err)
	}
	res.Record = candidate

	log.WithFields(logrus.Fields{
		"stage":      StageDone,
		"traits":     traitsOut.Map(),
		"background": pers.Background,
	}).Info("record appended")
	p.record(ctx, log, res.RunID, key, StageDone, "appended", "", payload)
	return res, nil
}

// #endregion run

// #region ledger

// record writes the run outcome to the ledger. Ledger failures are logged and
// never change the run result.
func (p *Pipeline) record(ctx context.Context, log logrus.FieldLogger, runID string, key *state.DayKey, stage Stage, outcome, reason string, payload logging.RunPayload) {
	if p.deps.Ledger == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.WithError(err).Warn("encode run payload")
	}
	entry := logging.RunEntry{
		RunID:       runID,
		Stage:       string(stage),
		Outcome:     outcome,
		Reason:      reason,
		PayloadJSON: string(body),
	}
	if key != nil {
		entry.Week = key.Week
		entry.Day = key.Day.String()
	}
	if err := p.deps.Ledger.LogRun(context.WithoutCancel(ctx), entry); err != nil {
		log.WithError(err).Warn("ledger write failed")
	}
}

// #endregion ledger
