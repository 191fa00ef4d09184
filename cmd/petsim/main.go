package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "petsim",
		Short: "Virtual pet simulator: forecast a day, grow a personality",
		Long: `petsim keeps a rolling history of a virtual pet's daily activities.

Each run forecasts the next day's activities from the last weeks of history,
accumulates personality traits from them, derives a persona, and appends the
new day to the store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")

	rootCmd.AddCommand(
		newRunCmd(),
		newInspectCmd(),
		newExportFixtureCmd(),
		newReplayCmd(),
		newImportCmd(),
		newScheduleCmd(),
	)
	return rootCmd
}
