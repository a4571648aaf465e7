package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/system-prompt-generator/internal/common"
)

type rootOptions struct {
	envFile string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "promptgen",
		Short:         "Generate recruiter system prompts from flow, script and job documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env", "", "Path to .env file")

	root.AddCommand(
		newServeCmd(opts),
		newGenerateCmd(opts),
		newFlowCmd(opts),
		newExportCmd(opts),
		newDBHealthCmd(opts),
	)
	return root
}

// load reads configuration and installs the process logger.
func (o *rootOptions) load() (*common.Config, *slog.Logger, error) {
	cfg, err := common.LoadConfig(o.envFile)
	if err != nil {
		return nil, nil, err
	}
	logger := common.NewLogger(os.Stderr, cfg.Log)
	slog.SetDefault(logger)
	return cfg, logger, nil
}
