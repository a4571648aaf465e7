package main

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/system-prompt-generator/internal/common"
	"github.com/joseph-ayodele/system-prompt-generator/internal/flow"
	"github.com/joseph-ayodele/system-prompt-generator/internal/jobdata"
	"github.com/joseph-ayodele/system-prompt-generator/internal/llm/provider"
	"github.com/joseph-ayodele/system-prompt-generator/internal/ocr"
	"github.com/joseph-ayodele/system-prompt-generator/internal/pipeline"
	"github.com/joseph-ayodele/system-prompt-generator/internal/prompt"
	"github.com/joseph-ayodele/system-prompt-generator/internal/repository"
	"github.com/joseph-ayodele/system-prompt-generator/internal/script"
)

func newOCR(cfg *common.Config, logger *slog.Logger) *ocr.Extractor {
	return ocr.NewExtractor(ocr.Config{
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		Pdftotext:     cfg.OCR.Pdftotext,
	}, ocr.ExecRunner{Logger: logger}, logger)
}

func openDB(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*repository.DB, error) {
	return repository.Open(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
}

// newProcessor wires the full pipeline. repo may be nil.
func newProcessor(ctx context.Context, cfg *common.Config, repo repository.GenerationRepository, logger *slog.Logger) (*pipeline.Processor, *prompt.Renderer, error) {
	policy, err := jobdata.ParsePolicy(cfg.Fields.MissingPolicy)
	if err != nil {
		return nil, nil, err
	}
	renderer, err := prompt.NewRenderer(prompt.Config{
		Path:  cfg.Prompt.TemplatePath,
		Watch: cfg.Prompt.Watch && cfg.Prompt.TemplatePath != "",
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	gen, err := provider.New(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, nil, err
	}

	x := newOCR(cfg, logger)
	proc := pipeline.NewProcessor(
		flow.NewParser(x, logger),
		script.NewExtractor(x, logger),
		jobdata.NewMapper(policy, cfg.Fields.Placeholder),
		renderer,
		gen,
		repo,
		cfg.Server.OutputDir,
		logger,
	)
	return proc, renderer, nil
}
