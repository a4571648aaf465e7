package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/system-prompt-generator/internal/pipeline"
	"github.com/joseph-ayodele/system-prompt-generator/internal/repository"
)

type generateOptions struct {
	flow      string
	example   string
	jobDesc   string
	jobDetail string
	outputDir string
	history   bool
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	o := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run the pipeline on local files and print the generated prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := root.load()
			if err != nil {
				return err
			}
			if o.outputDir != "" {
				cfg.Server.OutputDir = o.outputDir
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx := cmd.Context()

			var repo repository.GenerationRepository
			if o.history {
				db, err := openDB(ctx, cfg, logger)
				if err != nil {
					return err
				}
				defer db.Close()
				repo = repository.NewGenerationRepository(db, logger)
			}

			proc, _, err := newProcessor(ctx, cfg, repo, logger)
			if err != nil {
				return err
			}
			res, err := proc.Generate(ctx, pipeline.Inputs{
				FlowPath:          o.flow,
				ScriptPath:        o.example,
				JobDescPath:       o.jobDesc,
				JobDetailPath:     o.jobDetail,
				FlowFilename:      filepath.Base(o.flow),
				ScriptFilename:    filepath.Base(o.example),
				JobDescFilename:   filepath.Base(o.jobDesc),
				JobDetailFilename: filepath.Base(o.jobDetail),
			})
			if err != nil {
				return err
			}
			logger.Info("generated", "generation_id", res.ID, "output", res.OutputPath)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Text)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.flow, "flow", "", "workflow document (.xml, .png, .jpg)")
	f.StringVar(&o.example, "example", "", "example script")
	f.StringVar(&o.jobDesc, "job-desc", "", "job description JSON")
	f.StringVar(&o.jobDetail, "job-detail", "", "job detail JSON")
	f.StringVar(&o.outputDir, "output-dir", "", "override OUTPUT_DIR")
	f.BoolVar(&o.history, "history", false, "record the run in the history database")
	for _, name := range []string{"flow", "example", "job-desc", "job-detail"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
