package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/system-prompt-generator/internal/llm"
)

const providerName = "openai"

var _ llm.Generator = (*Client)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature *float32      `json:"temperature,omitempty"`
	Messages    []chatMessage `json:"messages"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Generate sends the prompt as a single user message to /chat/completions.
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

	body := chatRequest{
		Model:       model,
		Temperature: c.cfg.Temperature,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
	}
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	raw, _, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.log)
	if err != nil {
		c.log.Error("llm.generate.http_error",
			"provider", providerName, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.GenerateResult{}, fmt.Errorf("openai generate: %w", err)
	}

	var cc chatResponse
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.generate.decode_error",
			"provider", providerName, "error", err, "raw_bytes", len(raw),
		)
		return llm.GenerateResult{}, fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 || strings.TrimSpace(cc.Choices[0].Message.Content) == "" {
		c.log.Error("llm.generate.empty", "provider", providerName, "choices", len(cc.Choices))
		return llm.GenerateResult{}, llm.ErrEmptyResponse
	}

	out := llm.GenerateResult{
		Text:           cc.Choices[0].Message.Content,
		Provider:       providerName,
		Model:          model,
		PromptTokens:   cc.Usage.PromptTokens,
		ResponseTokens: cc.Usage.CompletionTokens,
	}
	if cc.Model != "" {
		out.Model = cc.Model
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
