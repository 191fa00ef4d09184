package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/petsim/internal/replay"
)

// #region export-fixture

func newExportFixtureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-fixture",
		Short: "Write the last N stored days as a replay fixture",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			last, _ := cmd.Flags().GetInt("last")
			desc, _ := cmd.Flags().GetString("description")
			if out == "" {
				return &exitError{code: 2, err: errors.New("--out is required")}
			}

			e, err := setup(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			records, err := e.store.Load(cmd.Context())
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return errors.New("store has no records to export")
			}
			if desc == "" {
				desc = fmt.Sprintf("exported from %s", e.cfg.Store.Path)
			}

			f := replay.FromRecords(records, last, desc)
			if err := replay.WriteFixture(out, f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d days to %s\n", len(f.Days), out)
			return nil
		},
	}

	cmd.Flags().String("out", "", "Fixture file to write")
	cmd.Flags().Int("last", 7, "Number of most recent days to export (0 = all)")
	cmd.Flags().String("description", "", "Fixture description")
	return cmd
}

// #endregion export-fixture

// #region replay

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Recompute traits and persona for a fixture and report mismatches",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("fixture")
			if path == "" {
				return &exitError{code: 2, err: errors.New("--fixture is required")}
			}

			f, err := replay.LoadFixture(path)
			if err != nil {
				return &exitError{code: 2, err: err}
			}

			results := replay.Replay(f.Start(), f.Days, f.Config.ToReplayConfig())
			summary := replay.Summarize(results)

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Fixture: %s\n", f.Description)
			fmt.Fprintf(w, "%-5s %-4s %-12s %s\n", "WEEK", "DAY", "ACTION", "REASON")
			for _, r := range results {
				fmt.Fprintf(w, "%-5d %-4s %-12s %s\n", r.Key.Week, r.Key.Day, r.Action, r.Reason)
			}
			fmt.Fprintf(w, "\n%d days: %d match, %d mismatch, %d unchecked, %d rejected\n",
				summary.TotalDays, summary.Matches, summary.Mismatches, summary.Unchecked, summary.EvalRejects)
			fmt.Fprintf(w, "Final traits: %v\n", summary.FinalTraits.Map())

			if summary.Mismatches > 0 || summary.EvalRejects > 0 {
				return &exitError{code: 1, err: fmt.Errorf("replay: %d of %d days did not reproduce",
					summary.Mismatches+summary.EvalRejects, summary.TotalDays)}
			}
			return nil
		},
	}

	cmd.Flags().String("fixture", "", "Path to fixture JSON")
	return cmd
}

// #endregion replay
