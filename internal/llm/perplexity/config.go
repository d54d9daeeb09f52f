package perplexity

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/joseph-ayodele/docnamer/internal/common"
)

const (
	DefaultBaseURL     = "https://api.perplexity.ai"
	DefaultModel       = "sonar"
	DefaultMaxTokens   = 500
	DefaultTemperature = 0.2
	DefaultTopP        = 0.9
)

// Config for the Perplexity client.
type Config struct {
	APIKey      string
	BaseURL     string // default https://api.perplexity.ai
	Model       string
	MaxTokens   int
	Temperature float64 // zero means DefaultTemperature
	TopP        float64
	Timeout     time.Duration // http client timeout
}

// ConfigFrom maps the application AI section onto a client Config.
func ConfigFrom(ai common.AIConfig) Config {
	return Config{
		APIKey:      ai.APIKey,
		BaseURL:     ai.BaseURL,
		Model:       ai.Model,
		MaxTokens:   ai.MaxTokens,
		Temperature: ai.Temperature,
		TopP:        ai.TopP,
		Timeout:     ai.Timeout,
	}
}

// Configured reports whether the key passes the minimum length check.
func (c Config) Configured() bool {
	return len(c.APIKey) >= common.MinAPIKeyLength
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.TopP <= 0 {
		cfg.TopP = DefaultTopP
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}
