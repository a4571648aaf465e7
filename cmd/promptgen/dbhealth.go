package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/system-prompt-generator/internal/repository"
)

func newDBHealthCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dbhealth",
		Short: "Ping the history database and print recent generations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := root.load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			db, err := openDB(ctx, cfg, logger)
			if err != nil {
				return fmt.Errorf("DB health: FAIL (%w)", err)
			}
			defer db.Close()

			if err := db.HealthCheck(ctx, time.Second); err != nil {
				return fmt.Errorf("DB health: FAIL (%w)", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "DB health: OK (%s)\n", db.Dialect)

			gens, err := repository.NewGenerationRepository(db, logger).List(ctx, 10)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "recent generations: %d\n", len(gens))
			for _, g := range gens {
				fmt.Fprintf(out, "- %s %-9s %s %s\n", g.StartedAt.Format(time.RFC3339), g.Status, g.ID, g.Company)
			}
			return nil
		},
	}
}
