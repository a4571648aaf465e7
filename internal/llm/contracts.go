package llm

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when the provider answers without any text.
var ErrEmptyResponse = errors.New("llm: empty response")

type GenerateRequest struct {
	Prompt string
	Model  string // overrides the configured model when set
}

type GenerateResult struct {
	Text     string
	Provider string
	Model    string

	PromptTokens   int
	ResponseTokens int
}

// Generator is the interface the pipeline depends on. Implementations make a
// single blocking call with no retries.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)
}
