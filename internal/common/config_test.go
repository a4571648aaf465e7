package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "g-key")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.HTTPAddr)
	assert.Equal(t, "outputs", cfg.Server.OutputDir)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, int64(32<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "g-key", cfg.LLM.APIKey)
	assert.Equal(t, 2*time.Minute, cfg.LLM.Timeout)
	assert.Equal(t, "placeholder", cfg.Fields.MissingPolicy)
	assert.Equal(t, "Not specified", cfg.Fields.Placeholder)
	assert.Nil(t, cfg.LLM.Temperature)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigTemperature(t *testing.T) {
	t.Setenv("LLM_TEMPERATURE", "0.7")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.NotNil(t, cfg.LLM.Temperature)
	assert.InDelta(t, 0.7, *cfg.LLM.Temperature, 1e-6)
}

func TestLoadConfigEnvFileAndOverride(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "LLM_PROVIDER=openai\nOPENAI_API_KEY=file-key\nOUTPUT_DIR=/tmp/out\nFIELDS_MISSING_POLICY=strict\nLLM_TIMEOUT=45s\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	t.Setenv("OUTPUT_DIR", "/srv/out")

	cfg, err := LoadConfig(envFile)
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "file-key", cfg.LLM.APIKey)
	assert.Equal(t, "/srv/out", cfg.Server.OutputDir)
	assert.Equal(t, "strict", cfg.Fields.MissingPolicy)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
}

func TestLoadConfigMissingEnvFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.env"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server: ServerConfig{HTTPAddr: ":8000", OutputDir: "outputs"},
			LLM:    LLMConfig{Provider: ProviderGemini, APIKey: "k"},
			Fields: FieldsConfig{MissingPolicy: "placeholder"},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{name: "valid", mutate: func(c *Config) {}, ok: true},
		{name: "unknown provider", mutate: func(c *Config) { c.LLM.Provider = "bard" }},
		{name: "missing key", mutate: func(c *Config) { c.LLM.APIKey = "" }},
		{name: "bad policy", mutate: func(c *Config) { c.Fields.MissingPolicy = "raise" }},
		{name: "no addr", mutate: func(c *Config) { c.Server.HTTPAddr = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
