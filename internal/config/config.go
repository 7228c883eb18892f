package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/cloo-solutions/syllabus/internal/llm"
	"github.com/cloo-solutions/syllabus/internal/storage"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "SYLLABUS"

type Config struct {
	Port        string `envconfig:"PORT" default:"8000"`
	Debug       bool   `envconfig:"DEBUG" default:"false"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// Empty selects the in-memory stores.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	UploadsDir   string `envconfig:"UPLOADS_DIR" default:"data/uploads"`
	ProcessedDir string `envconfig:"PROCESSED_DIR" default:"data/processed"`
	MaxUploadMB  int64  `envconfig:"MAX_UPLOAD_MB" default:"32"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"syllabus-documents"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	LLMProvider          string  `envconfig:"LLM_PROVIDER" default:"ollama"`
	OllamaBaseURL        string  `envconfig:"OLLAMA_BASE_URL" default:"http://localhost:11434"`
	OllamaModel          string  `envconfig:"OLLAMA_MODEL" default:"llama3.2:3b"`
	OpenAIAPIKey         string  `envconfig:"OPENAI_API_KEY"`
	OpenAIModel          string  `envconfig:"OPENAI_MODEL"`
	OpenAIBaseURL        string  `envconfig:"OPENAI_BASE_URL"`
	GeminiAPIKey         string  `envconfig:"GEMINI_API_KEY"`
	GeminiModel          string  `envconfig:"GEMINI_MODEL"`
	LLMRequestsPerSecond float64 `envconfig:"LLM_REQUESTS_PER_SECOND" default:"0"`

	Workers       int           `envconfig:"WORKERS" default:"2"`
	QueueSize     int           `envconfig:"QUEUE_SIZE" default:"32"`
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"1m"`

	APIKey      string   `envconfig:"API_KEY"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS"`

	SentryDSN string `envconfig:"SENTRY_DSN"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// Validate checks the settings that envconfig tags cannot express.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case llm.ProviderOllama:
	case llm.ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("%s_OPENAI_API_KEY is required when LLM_PROVIDER is openai", EnvPrefix)
		}
	case llm.ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("%s_GEMINI_API_KEY is required when LLM_PROVIDER is gemini", EnvPrefix)
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}

	if c.Workers < 1 {
		return fmt.Errorf("WORKERS must be at least 1, got %d", c.Workers)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("QUEUE_SIZE must be at least 1, got %d", c.QueueSize)
	}
	return nil
}

func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

func (c *Config) LLM() llm.Config {
	return llm.Config{
		Provider:          c.LLMProvider,
		OllamaBaseURL:     c.OllamaBaseURL,
		OllamaModel:       c.OllamaModel,
		OpenAIAPIKey:      c.OpenAIAPIKey,
		OpenAIModel:       c.OpenAIModel,
		OpenAIBaseURL:     c.OpenAIBaseURL,
		GeminiAPIKey:      c.GeminiAPIKey,
		GeminiModel:       c.GeminiModel,
		RequestsPerSecond: c.LLMRequestsPerSecond,
	}
}

func (c *Config) S3() storage.S3ClientConfig {
	return storage.S3ClientConfig{
		Endpoint:        c.S3Endpoint,
		Region:          c.S3Region,
		AccessKeyID:     c.S3AccessKey,
		SecretAccessKey: c.S3SecretKey,
		Bucket:          c.S3Bucket,
		UsePathStyle:    true,
	}
}
