// Package gemini generates text with Google's Gemini models through the GenAI SDK.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/joseph-ayodele/system-prompt-generator/internal/llm"
)

const (
	providerName = "gemini"
	DefaultModel = "gemini-1.5-flash"
)

type Config struct {
	APIKey      string
	BaseURL     string // optional endpoint override
	Model       string
	Temperature *float32 // nil sends no generation config
	Timeout     time.Duration
}

type Client struct {
	cfg    Config
	models *genai.Models
	log    *slog.Logger
}

var _ llm.Generator = (*Client)(nil)

func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{Timeout: cfg.Timeout},
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{cfg: cfg, models: gc.Models, log: logger}, nil
}

// Generate sends the prompt as a single text turn.
func (c *Client) Generate(ctx context.Context, req llm.GenerateRequest) (llm.GenerateResult, error) {
	start := time.Now()
	model := c.cfg.Model
	if req.Model != "" {
		model = req.Model
	}

	c.log.Info("llm.generate.start",
		"provider", providerName,
		"model", model,
		"prompt_len", len(req.Prompt),
	)

	var gen *genai.GenerateContentConfig
	if c.cfg.Temperature != nil {
		gen = &genai.GenerateContentConfig{Temperature: genai.Ptr(*c.cfg.Temperature)}
	}
	resp, err := c.models.GenerateContent(ctx, model, genai.Text(req.Prompt), gen)
	if err != nil {
		c.log.Error("llm.generate.http_error",
			"provider", providerName, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.GenerateResult{}, fmt.Errorf("gemini generate: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		c.log.Error("llm.generate.empty", "provider", providerName, "candidates", len(resp.Candidates))
		return llm.GenerateResult{}, llm.ErrEmptyResponse
	}

	out := llm.GenerateResult{Text: text, Provider: providerName, Model: model}
	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}
	if u := resp.UsageMetadata; u != nil {
		out.PromptTokens = int(u.PromptTokenCount)
		out.ResponseTokens = int(u.CandidatesTokenCount)
	}

	c.log.Info("llm.generate.ok",
		"provider", providerName,
		"model", out.Model,
		"text_len", len(out.Text),
		"prompt_tokens", out.PromptTokens,
		"response_tokens", out.ResponseTokens,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}
