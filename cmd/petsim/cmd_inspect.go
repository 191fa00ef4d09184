package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/petsim/internal/logging"
	"github.com/danielpatrickdp/petsim/internal/state"
)

// #region inspect

type inspectOutput struct {
	Records []state.Record `json:"records"`
	Totals  map[string]int `json:"totals"`
	Runs    []runRow       `json:"runs,omitempty"`
}

type runRow struct {
	RunID     string `json:"run_id"`
	Week      int    `json:"week"`
	Day       string `json:"day,omitempty"`
	Stage     string `json:"stage"`
	Outcome   string `json:"outcome"`
	Reason    string `json:"reason,omitempty"`
	CreatedAt string `json:"created_at"`
}

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List stored days, activity totals and recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			week, _ := cmd.Flags().GetInt("week")
			runs, _ := cmd.Flags().GetInt("runs")
			jsonOut, _ := cmd.Flags().GetBool("json")

			records, err := e.store.Load(cmd.Context())
			if err != nil {
				return err
			}
			if week >= 0 {
				records = state.DaysInWeek(records, week)
			}

			out := inspectOutput{
				Records: records,
				Totals:  state.Totals(records).Map(),
			}
			if e.ledger != nil && runs > 0 {
				entries, err := e.ledger.Recent(cmd.Context(), runs)
				if err != nil {
					return err
				}
				out.Runs = toRunRows(entries)
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetEscapeHTML(false)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			printInspect(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().Int("week", -1, "Only show days of this week")
	cmd.Flags().Int("runs", 5, "Show N most recent runs from the ledger")
	return cmd
}

func toRunRows(entries []logging.RunEntry) []runRow {
	rows := make([]runRow, len(entries))
	for i, e := range entries {
		rows[i] = runRow{
			RunID:     e.RunID,
			Week:      e.Week,
			Day:       e.Day,
			Stage:     e.Stage,
			Outcome:   e.Outcome,
			Reason:    e.Reason,
			CreatedAt: e.CreatedAt.Format("2006-01-02 15:04:05"),
		}
	}
	return rows
}

// #endregion inspect

// #region table

func printInspect(w io.Writer, out inspectOutput) {
	if len(out.Records) == 0 {
		fmt.Fprintln(w, "no records found")
	} else {
		fmt.Fprintf(w, "%-5s %-4s %4s %4s %4s %4s %8s  %s\n",
			"WEEK", "DAY", "EAT", "PLAY", "REST", "WORK", "EXERCISE", "TRAITS")
		for _, r := range out.Records {
			a := r.Activities
			traits := "-"
			if r.Traits != nil {
				traits = fmt.Sprint(r.Traits[:])
			}
			fmt.Fprintf(w, "%-5d %-4s %4d %4d %4d %4d %8d  %s\n",
				r.Key.Week, r.Key.Day, a[state.Eat], a[state.Play], a[state.Rest], a[state.Work], a[state.Exercise], traits)
		}

		fmt.Fprintln(w)
		fmt.Fprintf(w, "Totals over %d days:", len(out.Records))
		for _, name := range state.ActivityNames {
			fmt.Fprintf(w, " %s=%d", name, out.Totals[name])
		}
		fmt.Fprintln(w)
	}

	if len(out.Runs) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Recent runs:")
		for _, r := range out.Runs {
			line := fmt.Sprintf("  %s  %-8s %-17s", r.CreatedAt, r.Outcome, r.Stage)
			if r.Day != "" {
				line += fmt.Sprintf(" week %d %s", r.Week, r.Day)
			}
			if r.Reason != "" {
				line += "  " + r.Reason
			}
			fmt.Fprintln(w, line)
		}
	}
}

// #endregion table
