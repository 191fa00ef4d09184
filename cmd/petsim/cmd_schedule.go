package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/petsim/internal/metrics"
	"github.com/danielpatrickdp/petsim/internal/scheduler"
)

func newScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the pipeline on a cron schedule",
		Long: `schedule keeps the process alive and runs the pipeline on the configured
cron expression (schedule.cron, default "@daily"). When schedule.metrics_addr
is set, Prometheus metrics are served on /metrics at that address.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			spec := e.cfg.Schedule.Cron
			if cmd.Flags().Changed("cron") {
				spec, _ = cmd.Flags().GetString("cron")
			}

			p, release, err := e.pipeline()
			if err != nil {
				return err
			}
			defer release()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			m := metrics.New(reg)

			s, err := scheduler.New(spec, p, m, e.log)
			if err != nil {
				return &exitError{code: 2, err: err}
			}

			once, _ := cmd.Flags().GetBool("once")
			now, _ := cmd.Flags().GetBool("now")
			if once {
				_, err := s.RunOnce(cmd.Context())
				return err
			}
			if now {
				// A failed immediate run is logged by RunOnce; the schedule still starts.
				s.RunOnce(cmd.Context())
			}

			g, ctx := errgroup.WithContext(cmd.Context())
			if addr := e.cfg.Schedule.MetricsAddr; addr != "" {
				lis, err := net.Listen("tcp", addr)
				if err != nil {
					return err
				}
				e.log.WithField("addr", lis.Addr().String()).Info("serving metrics")
				g.Go(func() error { return serveMetrics(ctx, lis, reg) })
			}
			g.Go(func() error { return s.Start(ctx) })
			return g.Wait()
		},
	}
	cmd.Flags().String("cron", "", "Override schedule.cron")
	cmd.Flags().Bool("now", false, "Run once immediately before waiting for the first tick")
	cmd.Flags().Bool("once", false, "Run once, record metrics and exit")
	return cmd
}

// serveMetrics serves reg on /metrics until ctx is done.
func serveMetrics(ctx context.Context, lis net.Listener, reg *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(lis) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
