// Package pipeline runs one prompt generation end to end.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/system-prompt-generator/constants"
	"github.com/joseph-ayodele/system-prompt-generator/internal/common"
	"github.com/joseph-ayodele/system-prompt-generator/internal/jobdata"
	"github.com/joseph-ayodele/system-prompt-generator/internal/llm"
	"github.com/joseph-ayodele/system-prompt-generator/internal/repository"
)

type FlowParser interface {
	Parse(ctx context.Context, path string) ([]string, error)
}

type ScriptExtractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

type PromptRenderer interface {
	Render(data map[string]any) (string, error)
}

// Inputs are the four uploaded documents on local disk. Filenames are the
// client-side names recorded in history. A non-zero ID means the history row
// already exists (queued runs).
type Inputs struct {
	ID uuid.UUID

	FlowPath      string
	ScriptPath    string
	JobDescPath   string
	JobDetailPath string

	FlowFilename      string
	ScriptFilename    string
	JobDescFilename   string
	JobDetailFilename string
}

type Result struct {
	ID             uuid.UUID
	Steps          []string
	Fields         jobdata.Fields
	RenderedPrompt string
	Text           string
	Provider       string
	Model          string
	PromptPath     string
	OutputPath     string
}

// Processor coordinates extraction, mapping, rendering and generation.
type Processor struct {
	Flow      FlowParser
	Script    ScriptExtractor
	Mapper    *jobdata.Mapper
	Renderer  PromptRenderer
	Generator llm.Generator
	Repo      repository.GenerationRepository // optional
	OutputDir string
	Logger    *slog.Logger
}

func NewProcessor(flow FlowParser, script ScriptExtractor, mapper *jobdata.Mapper, renderer PromptRenderer,
	gen llm.Generator, repo repository.GenerationRepository, outputDir string, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		Flow:      flow,
		Script:    script,
		Mapper:    mapper,
		Renderer:  renderer,
		Generator: gen,
		Repo:      repo,
		OutputDir: outputDir,
		Logger:    logger,
	}
}

// Generate runs the whole pipeline and records the outcome in history.
func (p *Processor) Generate(ctx context.Context, in Inputs) (Result, error) {
	start := time.Now()
	id, err := p.begin(ctx, in)
	if err != nil {
		return Result{}, err
	}
	ctx = common.WithGenerationID(ctx, id.String())
	log := p.Logger.With("generation_id", id)

	res, err := p.run(ctx, in)
	res.ID = id
	if err != nil {
		log.Error("pipeline.run.failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		if p.Repo != nil {
			if ferr := p.Repo.FinishFailure(context.WithoutCancel(ctx), id, err.Error()); ferr != nil {
				log.Error("pipeline.history.finish_failed", "error", ferr)
			}
		}
		return res, err
	}

	if p.Repo != nil {
		if err := p.Repo.FinishSuccess(context.WithoutCancel(ctx), id, repository.SuccessParams{
			Company:        res.Fields.Company,
			StepCount:      len(res.Steps),
			Provider:       res.Provider,
			Model:          res.Model,
			RenderedPrompt: res.RenderedPrompt,
			OutputText:     res.Text,
			OutputPath:     res.OutputPath,
		}); err != nil {
			log.Error("pipeline.history.finish_failed", "error", err)
		}
	}
	log.Info("pipeline.run.ok",
		"steps", len(res.Steps),
		"company", res.Fields.Company,
		"output", res.OutputPath,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (p *Processor) begin(ctx context.Context, in Inputs) (uuid.UUID, error) {
	if p.Repo == nil {
		if in.ID != uuid.Nil {
			return in.ID, nil
		}
		return uuid.New(), nil
	}
	if in.ID != uuid.Nil {
		return in.ID, p.Repo.MarkRunning(ctx, in.ID)
	}
	g, err := p.Repo.Start(ctx, repository.StartParams{
		Status:            constants.StatusRunning,
		FlowFilename:      in.FlowFilename,
		ScriptFilename:    in.ScriptFilename,
		JobDescFilename:   in.JobDescFilename,
		JobDetailFilename: in.JobDetailFilename,
	})
	if err != nil {
		return uuid.Nil, err
	}
	return g.ID, nil
}

func (p *Processor) run(ctx context.Context, in Inputs) (Result, error) {
	var res Result

	steps, err := p.Flow.Parse(ctx, in.FlowPath)
	if err != nil {
		return res, fmt.Errorf("parse flow: %w", err)
	}
	res.Steps = steps
	p.Logger.Debug("pipeline.flow.ok", "steps", len(steps))

	script, err := p.Script.Extract(ctx, in.ScriptPath)
	if err != nil {
		return res, fmt.Errorf("extract script: %w", err)
	}

	desc, err := loadDocument(in.JobDescPath, "job description")
	if err != nil {
		return res, err
	}
	detail, err := loadDocument(in.JobDetailPath, "job detail")
	if err != nil {
		return res, err
	}

	fields, err := p.Mapper.Map(desc, detail)
	if err != nil {
		return res, err
	}
	res.Fields = fields

	rendered, err := p.Renderer.Render(fields.TemplateData(steps, script))
	if err != nil {
		return res, err
	}
	res.RenderedPrompt = rendered

	gen, err := p.Generator.Generate(ctx, llm.GenerateRequest{Prompt: rendered})
	if err != nil {
		return res, err
	}
	res.Text = gen.Text
	res.Provider = gen.Provider
	res.Model = gen.Model

	if err := os.MkdirAll(p.OutputDir, 0o755); err != nil {
		return res, fmt.Errorf("create output dir: %w", err)
	}
	res.PromptPath = filepath.Join(p.OutputDir, constants.RenderedPromptFile)
	if err := writeFileAtomic(res.PromptPath, []byte(rendered)); err != nil {
		return res, err
	}
	res.OutputPath = filepath.Join(p.OutputDir, constants.FinalPromptFile)
	if err := writeFileAtomic(res.OutputPath, []byte(gen.Text)); err != nil {
		return res, err
	}
	return res, nil
}

func loadDocument(path, name string) (jobdata.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()
	return jobdata.LoadDocument(f, name)
}

// writeFileAtomic replaces path via a temp file in the same directory so
// readers never observe a partial write.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
