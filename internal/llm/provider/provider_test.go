package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/system-prompt-generator/internal/common"
	"github.com/joseph-ayodele/system-prompt-generator/internal/llm/gemini"
	"github.com/joseph-ayodele/system-prompt-generator/internal/llm/openai"
)

func TestNew(t *testing.T) {
	g, err := New(context.Background(), common.LLMConfig{Provider: common.ProviderGemini, APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &gemini.Client{}, g)

	g, err = New(context.Background(), common.LLMConfig{Provider: common.ProviderOpenAI, APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &openai.Client{}, g)

	_, err = New(context.Background(), common.LLMConfig{Provider: "anthropic"}, nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
