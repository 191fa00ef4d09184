package main

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/petsim/internal/config"
	"github.com/danielpatrickdp/petsim/internal/forecast"
	"github.com/danielpatrickdp/petsim/internal/logging"
	"github.com/danielpatrickdp/petsim/internal/pipeline"
	"github.com/danielpatrickdp/petsim/internal/state"
)

// #region exit-codes

// exitError carries a process exit code through cobra's error return.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// exitCode maps an error to the process exit code: 1 for run or replay
// failures, 2 for configuration and usage errors.
func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}

// #endregion exit-codes

// #region env

// env holds everything a subcommand needs once configuration is resolved.
type env struct {
	cfg    *config.Config
	log    *logrus.Logger
	store  state.Store
	ledger *logging.Ledger
}

// setup loads configuration, the logger, the store and the ledger. The
// caller must call close.
func setup(cmd *cobra.Command) (*env, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, &exitError{code: 2, err: err}
	}

	e := &env{
		cfg: cfg,
		log: logging.NewLogger(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr()),
	}

	switch cfg.Store.Backend {
	case config.BackendSQLite:
		s, err := state.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		e.store = s
		if cfg.LedgerPath == "" {
			if e.ledger, err = logging.NewLedger(s.DB()); err != nil {
				s.Close()
				return nil, err
			}
		}
	default:
		e.store = state.NewDocumentStore(cfg.Store.Path)
	}

	if cfg.LedgerPath != "" {
		if e.ledger, err = logging.OpenLedger(cfg.LedgerPath); err != nil {
			e.store.Close()
			return nil, err
		}
	}
	return e, nil
}

func (e *env) close() {
	if err := e.ledger.Close(); err != nil {
		e.log.WithError(err).Warn("close ledger")
	}
	if err := e.store.Close(); err != nil {
		e.log.WithError(err).Warn("close store")
	}
}

// forecaster builds the configured forecaster. The returned func releases
// any connection it holds.
func (e *env) forecaster() (forecast.Forecaster, func(), error) {
	fc := e.cfg.Forecaster
	switch fc.Kind {
	case config.KindForest:
		return forecast.NewForest(fc.ForestConfig()), func() {}, nil
	case config.KindWeekdayMean:
		return forecast.WeekdayMean{}, func() {}, nil
	case config.KindRemote:
		r, err := forecast.DialRemote(fc.RemoteAddr, fc.RemoteTimeout)
		if err != nil {
			return nil, nil, err
		}
		return r, func() { r.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown forecaster %q", fc.Kind)
}

// pipeline wires the configured forecaster into a pipeline over the store.
func (e *env) pipeline() (*pipeline.Pipeline, func(), error) {
	f, release, err := e.forecaster()
	if err != nil {
		return nil, nil, err
	}
	p := pipeline.New(pipeline.Deps{
		Store:          e.store,
		Forecaster:     f,
		ForecasterName: e.cfg.Forecaster.Kind,
		WindowWeeks:    e.cfg.WindowWeeks,
		Jitter:         forecast.NewJitter(e.cfg.Forecaster.JitterSeed),
		Ledger:         e.ledger,
		Log:            e.log,
	})
	return p, release, nil
}

// #endregion env
