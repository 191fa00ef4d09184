package scheduler

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"

	"github.com/danielpatrickdp/petsim/internal/metrics"
	"github.com/danielpatrickdp/petsim/internal/pipeline"
	"github.com/danielpatrickdp/petsim/internal/state"
)

// #region helpers
type countingRunner struct {
	calls atomic.Int32
	err   error
}

func (r *countingRunner) Run(ctx context.Context) (pipeline.Result, error) {
	r.calls.Add(1)
	if r.err != nil {
		return pipeline.Result{}, r.err
	}
	return pipeline.Result{Record: state.Record{Key: state.DayKey{Week: 1, Day: state.Mon}}}, nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// #endregion helpers

func TestNew_RejectsBadSpec(t *testing.T) {
	if _, err := New("every tuesday", &countingRunner{}, nil, quietLogger()); err == nil {
		t.Fatal("expected invalid cron expression error")
	}
	for _, spec := range []string{"@daily", "0 6 * * *", "@every 1h"} {
		if _, err := New(spec, &countingRunner{}, nil, quietLogger()); err != nil {
			t.Errorf("spec %q: %v", spec, err)
		}
	}
}

func TestRunOnce_RecordsMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	runner := &countingRunner{}
	s, err := New("@daily", runner, m, quietLogger())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if _, err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	runner.err = &pipeline.RunError{Stage: pipeline.StageLoad, Err: errors.New("corrupt")}
	if _, err := s.RunOnce(context.Background()); err == nil {
		t.Fatal("expected runner error to propagate")
	}

	if got := testutil.ToFloat64(m.Runs.WithLabelValues("appended", "DONE")); got != 1 {
		t.Errorf("expected 1 appended run, got %v", got)
	}
	if got := testutil.ToFloat64(m.Runs.WithLabelValues("failed", "LOAD")); got != 1 {
		t.Errorf("expected 1 LOAD failure, got %v", got)
	}
}

func TestStart_FiresAndStops(t *testing.T) {
	runner := &countingRunner{}
	s, err := New("@every 1s", runner, nil, quietLogger())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	deadline := time.After(5 * time.Second)
	for runner.calls.Load() == 0 {
		select {
		case <-deadline:
			cancel()
			t.Fatal("scheduler never fired")
		case <-time.After(50 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("start returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
