package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/petsim/internal/state"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Simulate the next day and append it to the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			p, release, err := e.pipeline()
			if err != nil {
				return err
			}
			defer release()

			res, err := p.Run(cmd.Context())
			if err != nil {
				return err
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetEscapeHTML(false)
				enc.SetIndent("", "  ")
				return enc.Encode(res.Record)
			}
			printRecord(cmd.OutOrStdout(), res.Record)
			return nil
		},
	}
}

func printRecord(w io.Writer, rec state.Record) {
	fmt.Fprintf(w, "Week %d, %s\n", rec.Key.Week, rec.Key.Day)

	var acts []string
	for i, name := range state.ActivityNames {
		acts = append(acts, fmt.Sprintf("%s=%d", name, rec.Activities[i]))
	}
	fmt.Fprintf(w, "  activities:  %s\n", strings.Join(acts, " "))

	if rec.Traits != nil {
		var tr []string
		for i, name := range state.TraitNames {
			tr = append(tr, fmt.Sprintf("%s=%d", name, rec.Traits[i]))
		}
		fmt.Fprintf(w, "  traits:      %s\n", strings.Join(tr, " "))
	}
	if rec.Persona != nil {
		p := rec.Persona
		fmt.Fprintf(w, "  personality: energy=%s work_ethic=%s sociability=%s discipline=%s\n",
			p.Energy, p.WorkEthic, p.Sociability, p.Discipline)
		fmt.Fprintf(w, "  background:  %s\n", p.Background)
	}
}
