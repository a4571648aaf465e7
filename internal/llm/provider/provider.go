// Package provider builds the configured llm.Generator.
package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/system-prompt-generator/internal/common"
	"github.com/joseph-ayodele/system-prompt-generator/internal/llm"
	"github.com/joseph-ayodele/system-prompt-generator/internal/llm/gemini"
	"github.com/joseph-ayodele/system-prompt-generator/internal/llm/openai"
)

func New(ctx context.Context, cfg common.LLMConfig, logger *slog.Logger) (llm.Generator, error) {
	switch cfg.Provider {
	case common.ProviderGemini, "":
		return gemini.NewClient(ctx, gemini.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger)
	case common.ProviderOpenAI:
		return openai.NewClient(openai.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger), nil
	default:
		return nil, common.NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown LLM provider %q", cfg.Provider), common.ErrInvalidInput)
	}
}
