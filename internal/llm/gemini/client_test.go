package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/system-prompt-generator/internal/llm"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), Config{APIKey: "test-key", BaseURL: srv.URL + "/"}, nil)
	require.NoError(t, err)
	return c
}

func TestGenerate(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-1.5-flash:generateContent"), r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "You are RecruitAI."}]}}],
			"usageMetadata": {"promptTokenCount": 20, "candidatesTokenCount": 5}
		}`))
	})

	res, err := c.Generate(context.Background(), llm.GenerateRequest{Prompt: "rendered prompt"})
	require.NoError(t, err)
	assert.Equal(t, "You are RecruitAI.", res.Text)
	assert.Equal(t, "gemini", res.Provider)
	assert.Equal(t, DefaultModel, res.Model)
	assert.Equal(t, 20, res.PromptTokens)
	assert.Equal(t, 5, res.ResponseTokens)

	raw, err := json.Marshal(body["contents"])
	require.NoError(t, err)
	assert.Contains(t, string(raw), "rendered prompt")
}

func TestGenerateEmptyCandidates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": []}`))
	})

	_, err := c.Generate(context.Background(), llm.GenerateRequest{Prompt: "p"})
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
}

func TestGenerateProviderError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"code": 400, "message": "API key not valid", "status": "INVALID_ARGUMENT"}}`))
	})

	_, err := c.Generate(context.Background(), llm.GenerateRequest{Prompt: "p"})
	require.Error(t, err)
	assert.ErrorContains(t, err, "gemini generate")
}

func TestGenerateSendsNoGenerationConfigByDefault(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "ok"}]}}]}`))
	})

	_, err := c.Generate(context.Background(), llm.GenerateRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.NotContains(t, body, "generationConfig")
}

func TestGenerateSendsConfiguredTemperature(t *testing.T) {
	var body struct {
		GenerationConfig struct {
			Temperature *float64 `json:"temperature"`
		} `json:"generationConfig"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "ok"}]}}]}`))
	}))
	t.Cleanup(srv.Close)

	temp := float32(0.3)
	c, err := NewClient(context.Background(), Config{APIKey: "k", BaseURL: srv.URL + "/", Temperature: &temp}, nil)
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), llm.GenerateRequest{Prompt: "p"})
	require.NoError(t, err)
	require.NotNil(t, body.GenerationConfig.Temperature)
	assert.InDelta(t, 0.3, *body.GenerationConfig.Temperature, 1e-6)
}
