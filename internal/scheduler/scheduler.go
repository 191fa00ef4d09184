// Package scheduler triggers pipeline runs on a cron schedule.
package scheduler

// #region imports
import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/danielpatrickdp/petsim/internal/metrics"
	"github.com/danielpatrickdp/petsim/internal/pipeline"
)

// #endregion imports

// #region types

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context) (pipeline.Result, error)
}

// Scheduler fires Runner on a cron spec. A tick that arrives while the
// previous run is still going is skipped, so runs never overlap.
type Scheduler struct {
	spec    string
	runner  Runner
	metrics *metrics.Metrics
	log     logrus.FieldLogger
}

// #endregion types

// #region constructor

// New validates spec (standard five-field cron or a descriptor such as
// "@daily" or "@every 1h"). m may be nil.
func New(spec string, runner Runner, m *metrics.Metrics, log logrus.FieldLogger) (*Scheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	return &Scheduler{spec: spec, runner: runner, metrics: m, log: log}, nil
}

// #endregion constructor

// #region run

// RunOnce executes a single run and records its outcome.
func (s *Scheduler) RunOnce(ctx context.Context) (pipeline.Result, error) {
	start := time.Now()
	res, err := s.runner.Run(ctx)
	elapsed := time.Since(start)
	s.metrics.ObserveRun(res, err, elapsed)

	entry := s.log.WithField("elapsed", elapsed.Round(time.Millisecond).String())
	if err != nil {
		entry.WithError(err).Warn("scheduled run failed")
	} else {
		entry.WithField("day", res.Record.Key.String()).Info("scheduled run appended")
	}
	return res, err
}

// Start runs the schedule until ctx is cancelled, then waits for an
// in-flight run to finish.
func (s *Scheduler) Start(ctx context.Context) error {
	logger := cron.PrintfLogger(s.log)
	c := cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))
	if _, err := c.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("schedule %q: %w", s.spec, err)
	}

	s.log.WithField("cron", s.spec).Info("scheduler started")
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	s.log.Info("scheduler stopped")
	return nil
}

// #endregion run
