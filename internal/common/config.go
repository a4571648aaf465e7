package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	OCR      OCRConfig
	LLM      LLMConfig
	Prompt   PromptConfig
	Fields   FieldsConfig
	Queue    QueueConfig
	Log      LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr       string
	GRPCAddr       string
	UploadDir      string
	OutputDir      string
	CORSOrigins    []string
	MaxUploadBytes int64
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Tesseract     string
	TesseractLang string
	TessdataDir   string
	Pdftotext     string
}

// LLMConfig holds generation-provider configuration
type LLMConfig struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature *float32 // nil leaves the provider's default
	Timeout     time.Duration
}

// PromptConfig holds template configuration
type PromptConfig struct {
	TemplatePath string
	Watch        bool
}

// FieldsConfig controls how the field mapper treats absent keys.
type FieldsConfig struct {
	MissingPolicy string
	Placeholder   string
}

// QueueConfig holds async worker configuration
type QueueConfig struct {
	Workers        int
	Size           int
	ProcessTimeout time.Duration
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string
}

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_ADDR", ":8000")
	v.SetDefault("GRPC_ADDR", "")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("OUTPUT_DIR", "outputs")
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
	v.SetDefault("MAX_UPLOAD_MB", 32)
	v.SetDefault("HTTP_READ_TIMEOUT", 30*time.Second)
	v.SetDefault("HTTP_WRITE_TIMEOUT", 3*time.Minute)

	v.SetDefault("DB_URL", "file:promptgen.db?_pragma=busy_timeout(5000)")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("DB_MAX_CONN_LIFETIME", 30*time.Minute)
	v.SetDefault("DB_MAX_CONN_IDLE_TIME", 5*time.Minute)
	v.SetDefault("DB_DIAL_TIMEOUT", 3*time.Second)

	v.SetDefault("TESSERACT_BIN", "tesseract")
	v.SetDefault("TESSERACT_LANG", "eng")
	v.SetDefault("TESSDATA_PREFIX", "")
	v.SetDefault("PDFTOTEXT_BIN", "pdftotext")

	v.SetDefault("LLM_PROVIDER", ProviderGemini)
	v.SetDefault("LLM_MODEL", "")
	v.SetDefault("LLM_BASE_URL", "")
	v.SetDefault("LLM_TIMEOUT", 2*time.Minute)

	v.SetDefault("PROMPT_TEMPLATE_PATH", "")
	v.SetDefault("PROMPT_TEMPLATE_WATCH", false)

	v.SetDefault("FIELDS_MISSING_POLICY", "placeholder")
	v.SetDefault("FIELDS_PLACEHOLDER", "Not specified")

	v.SetDefault("QUEUE_WORKERS", 2)
	v.SetDefault("QUEUE_SIZE", 64)
	v.SetDefault("QUEUE_PROCESS_TIMEOUT", 5*time.Minute)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
}

// LoadConfig loads configuration from an optional .env file and the environment.
// Environment variables win over the file.
func LoadConfig(envFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, NewAppError("CONFIG_ERROR", fmt.Sprintf("read %s", envFile), err)
		}
	}
	v.AutomaticEnv()

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	provider := strings.ToLower(strings.TrimSpace(v.GetString("LLM_PROVIDER")))

	return &Config{
		Server: ServerConfig{
			HTTPAddr:       v.GetString("HTTP_ADDR"),
			GRPCAddr:       v.GetString("GRPC_ADDR"),
			UploadDir:      v.GetString("UPLOAD_DIR"),
			OutputDir:      v.GetString("OUTPUT_DIR"),
			CORSOrigins:    splitList(v.GetString("CORS_ALLOW_ORIGINS")),
			MaxUploadBytes: v.GetInt64("MAX_UPLOAD_MB") << 20,
			ReadTimeout:    v.GetDuration("HTTP_READ_TIMEOUT"),
			WriteTimeout:   v.GetDuration("HTTP_WRITE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			DSN:             v.GetString("DB_URL"),
			MaxConns:        v.GetInt32("DB_MAX_CONNS"),
			MinConns:        v.GetInt32("DB_MIN_CONNS"),
			MaxConnLifetime: v.GetDuration("DB_MAX_CONN_LIFETIME"),
			MaxConnIdleTime: v.GetDuration("DB_MAX_CONN_IDLE_TIME"),
			DialTimeout:     v.GetDuration("DB_DIAL_TIMEOUT"),
		},
		OCR: OCRConfig{
			Tesseract:     v.GetString("TESSERACT_BIN"),
			TesseractLang: v.GetString("TESSERACT_LANG"),
			TessdataDir:   v.GetString("TESSDATA_PREFIX"),
			Pdftotext:     v.GetString("PDFTOTEXT_BIN"),
		},
		LLM: LLMConfig{
			Provider:    provider,
			Model:       v.GetString("LLM_MODEL"),
			APIKey:      apiKeyFor(v, provider),
			BaseURL:     v.GetString("LLM_BASE_URL"),
			Temperature: optionalFloat32(v, "LLM_TEMPERATURE"),
			Timeout:     v.GetDuration("LLM_TIMEOUT"),
		},
		Prompt: PromptConfig{
			TemplatePath: v.GetString("PROMPT_TEMPLATE_PATH"),
			Watch:        v.GetBool("PROMPT_TEMPLATE_WATCH"),
		},
		Fields: FieldsConfig{
			MissingPolicy: strings.ToLower(strings.TrimSpace(v.GetString("FIELDS_MISSING_POLICY"))),
			Placeholder:   v.GetString("FIELDS_PLACEHOLDER"),
		},
		Queue: QueueConfig{
			Workers:        v.GetInt("QUEUE_WORKERS"),
			Size:           v.GetInt("QUEUE_SIZE"),
			ProcessTimeout: v.GetDuration("QUEUE_PROCESS_TIMEOUT"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
}

// apiKeyFor prefers LLM_API_KEY, then the provider's conventional variable.
func apiKeyFor(v *viper.Viper, provider string) string {
	if k := v.GetString("LLM_API_KEY"); k != "" {
		return k
	}
	switch provider {
	case ProviderOpenAI:
		return v.GetString("OPENAI_API_KEY")
	default:
		if k := v.GetString("GOOGLE_API_KEY"); k != "" {
			return k
		}
		return v.GetString("GEMINI_API_KEY")
	}
}

// optionalFloat32 returns nil when key is unset or blank.
func optionalFloat32(v *viper.Viper, key string) *float32 {
	if !v.IsSet(key) || strings.TrimSpace(v.GetString(key)) == "" {
		return nil
	}
	f := float32(v.GetFloat64(key))
	return &f
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("LLM_PROVIDER %q is not supported", c.LLM.Provider), ErrInvalidInput)
	}
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "an API key is required for provider "+c.LLM.Provider, ErrInvalidInput)
	}
	switch c.Fields.MissingPolicy {
	case "strict", "placeholder", "empty":
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("FIELDS_MISSING_POLICY %q must be strict, placeholder or empty", c.Fields.MissingPolicy), ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Server.OutputDir == "" {
		return NewAppError("CONFIG_ERROR", "OUTPUT_DIR is required", ErrInvalidInput)
	}
	return nil
}
