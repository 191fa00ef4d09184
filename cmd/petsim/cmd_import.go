package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/petsim/internal/state"
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Seed the sqlite store from a JSON history document",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetString("from")
			if from == "" {
				return &exitError{code: 2, err: errors.New("--from is required")}
			}

			e, err := setup(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			db, ok := e.store.(*state.SQLiteStore)
			if !ok {
				return &exitError{code: 2, err: errors.New("import needs store.backend: sqlite")}
			}

			existing, err := db.Load(cmd.Context())
			if err != nil {
				return err
			}
			if len(existing) > 0 {
				return fmt.Errorf("store %s already holds %d records", e.cfg.Store.Path, len(existing))
			}

			records, err := state.NewDocumentStore(from).Load(cmd.Context())
			if err != nil {
				return err
			}
			if err := db.Import(cmd.Context(), records); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d records from %s\n", len(records), from)
			return nil
		},
	}

	cmd.Flags().String("from", "", "JSON document to import")
	return cmd
}
