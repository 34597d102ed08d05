// Package config defines configuration parsing and helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"dev"`
	Port   int    `env:"PORT" envDefault:"8080"`

	// Oracle provider selection: openai (OpenAI-compatible HTTP API),
	// gemini (Google GenAI), or stub (deterministic, offline).
	OracleProvider string `env:"ORACLE_PROVIDER" envDefault:"openai"`

	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-4o"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-pro"`

	// OracleTimeout bounds each oracle call; a slow call is treated the same
	// as a transport error by the pipeline (degrade, don't abort the batch).
	OracleTimeout   time.Duration `env:"ORACLE_TIMEOUT" envDefault:"90s"`
	OracleMaxTokens int           `env:"ORACLE_MAX_TOKENS" envDefault:"1200"`

	// Oracle backoff configuration (transport retries within one logical call).
	OracleBackoffMaxElapsedTime  time.Duration `env:"ORACLE_BACKOFF_MAX_ELAPSED_TIME" envDefault:"60s"`
	OracleBackoffInitialInterval time.Duration `env:"ORACLE_BACKOFF_INITIAL_INTERVAL" envDefault:"2s"`
	OracleBackoffMaxInterval     time.Duration `env:"ORACLE_BACKOFF_MAX_INTERVAL" envDefault:"20s"`
	OracleBackoffMultiplier      float64       `env:"ORACLE_BACKOFF_MULTIPLIER" envDefault:"1.5"`

	// MaxComparative caps how many Stage-1 records enter the comparative
	// re-ranking call.
	MaxComparative int `env:"MAX_COMPARATIVE" envDefault:"100"`

	// PipelineConcurrency bounds concurrent gate+score tasks. 1 reproduces
	// the strictly sequential reference behavior.
	PipelineConcurrency int `env:"PIPELINE_CONCURRENCY" envDefault:"1"`

	// RerankTokenBudget bounds the Stage-2 prompt size in tokens; summary
	// lines beyond the budget are truncated field-wise, never dropped.
	RerankTokenBudget int `env:"RERANK_TOKEN_BUDGET" envDefault:"24000"`

	// SurfaceRawResponses includes raw oracle text in evaluated records for
	// diagnostics. Off by default; raw text can be large.
	SurfaceRawResponses bool `env:"SURFACE_RAW_RESPONSES" envDefault:"false"`

	// Document fetch retry policy.
	FetchMaxRetries   int           `env:"FETCH_MAX_RETRIES" envDefault:"3"`
	FetchInitialDelay time.Duration `env:"FETCH_INITIAL_DELAY" envDefault:"1s"`
	FetchTimeout      time.Duration `env:"FETCH_TIMEOUT" envDefault:"30s"`

	// Optional YAML file overriding built-in prompt templates.
	PromptsFile string `env:"PROMPTS_FILE"`

	MaxUploadMB           int64         `env:"MAX_UPLOAD_MB" envDefault:"10"`
	CORSAllowOrigins      string        `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	RateLimitPerMin       int           `env:"RATE_LIMIT_PER_MIN" envDefault:"10"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	HTTPReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	HTTPWriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15m"`
	HTTPIdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`

	OTLPEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	OTELServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"resume-scorer"`
}

// Load parses environment variables into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	return cfg, nil
}

// IsDev reports whether the app is running in development mode.
func (c Config) IsDev() bool { return strings.ToLower(c.AppEnv) == "dev" }

// IsProd reports whether the app is running in production mode.
func (c Config) IsProd() bool { return strings.ToLower(c.AppEnv) == "prod" }

// IsTest reports whether the app is running in test mode.
func (c Config) IsTest() bool { return strings.ToLower(c.AppEnv) == "test" }

// OracleBackoffConfig returns backoff settings for the current environment.
// Test mode uses much shorter intervals so unit tests stay fast.
func (c Config) OracleBackoffConfig() (maxElapsedTime, initialInterval, maxInterval time.Duration, multiplier float64) {
	if c.IsTest() {
		return 2 * time.Second, 50 * time.Millisecond, 500 * time.Millisecond, 2.0
	}
	return c.OracleBackoffMaxElapsedTime, c.OracleBackoffInitialInterval, c.OracleBackoffMaxInterval, c.OracleBackoffMultiplier
}
