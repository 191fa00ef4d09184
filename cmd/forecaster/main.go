package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/danielpatrickdp/petsim/internal/config"
	"github.com/danielpatrickdp/petsim/internal/forecast"
	"github.com/danielpatrickdp/petsim/internal/logging"
)

// #region main
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forecaster",
		Short: "Serve activity forecasts over gRPC",
		Long: `forecaster exposes a local forecaster as ` + forecast.ServiceName + `.

petsim points at it with forecaster.kind: remote. The standard gRPC health
service is registered alongside.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			addr, _ := cmd.Flags().GetString("addr")
			kind, _ := cmd.Flags().GetString("kind")

			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			log := logging.NewLogger(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())

			f, err := localForecaster(kind, cfg.Forecaster)
			if err != nil {
				return err
			}

			lis, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", addr, err)
			}
			log.WithField("addr", lis.Addr().String()).WithField("kind", kind).Info("forecaster listening")
			return serve(cmd.Context(), lis, forecast.NewServer(f, log))
		},
	}

	cmd.Flags().String("config", "", "Path to YAML config file")
	cmd.Flags().String("addr", "localhost:7070", "Listen address")
	cmd.Flags().String("kind", config.KindForest, "Forecaster to serve: forest or weekday_mean")
	return cmd
}
// #endregion main

// #region serve
// serve runs the gRPC server until ctx is cancelled, then stops it gracefully.
func serve(ctx context.Context, lis net.Listener, srv *forecast.Server) error {
	s := grpc.NewServer()
	forecast.RegisterServer(s, srv)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus(forecast.ServiceName, healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Serve(lis)
	})
	g.Go(func() error {
		<-ctx.Done()
		hs.Shutdown()
		s.GracefulStop()
		return nil
	})
	return g.Wait()
}

func localForecaster(kind string, fc config.ForecasterConfig) (forecast.Forecaster, error) {
	switch kind {
	case config.KindForest:
		return forecast.NewForest(fc.ForestConfig()), nil
	case config.KindWeekdayMean:
		return forecast.WeekdayMean{}, nil
	}
	return nil, fmt.Errorf("cannot serve forecaster %q", kind)
}
// #endregion serve
