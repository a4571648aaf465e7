package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/system-prompt-generator/internal/flow"
)

func newFlowCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "flow <file>",
		Short: "Print the steps extracted from a workflow document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := root.load()
			if err != nil {
				return err
			}
			steps, err := flow.NewParser(newOCR(cfg, logger), logger).Parse(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for i, s := range steps {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, s)
			}
			return nil
		},
	}
}
