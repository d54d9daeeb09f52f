package common

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "DOCNAMER"

// Config holds all application configuration
type Config struct {
	AI      AIConfig
	OCR     OCRConfig
	Extract ExtractConfig
	Batch   BatchConfig
	Watch   WatchConfig
	Log     LogConfig
}

// AIConfig holds the remote completion settings
type AIConfig struct {
	Enabled      bool
	Disambiguate bool
	APIKey       string
	BaseURL      string
	Model        string
	MaxTokens    int
	Temperature  float64
	TopP         float64
	Timeout      time.Duration
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Binary     string
	Language   string
	PSM        int
	Timeout    time.Duration
	Rasterizer string
	DPI        int
}

// ExtractConfig holds text extraction thresholds
type ExtractConfig struct {
	PDFMaxPages    int
	MinNativeChars int
	MinTextChars   int
}

// BatchConfig holds batch run behaviour
type BatchConfig struct {
	Execute    bool
	Workers    int
	Report     string
	Silent     bool
	SkipHidden bool
}

type WatchConfig struct {
	Debounce time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// DefaultConfig returns a configuration with the documented defaults.
func DefaultConfig() *Config {
	return &Config{
		AI: AIConfig{
			Enabled:      true,
			Disambiguate: true,
			BaseURL:      "https://api.perplexity.ai",
			Model:        "sonar",
			MaxTokens:    500,
			Temperature:  0.2,
			TopP:         0.9,
			Timeout:      30 * time.Second,
		},
		OCR: OCRConfig{
			Binary:     "tesseract",
			Language:   "deu",
			PSM:        1,
			Timeout:    30 * time.Second,
			Rasterizer: "pdftoppm",
			DPI:        300,
		},
		Extract: ExtractConfig{
			PDFMaxPages:    5,
			MinNativeChars: 50,
			MinTextChars:   10,
		},
		Batch: BatchConfig{
			Workers:    1,
			SkipHidden: true,
		},
		Watch: WatchConfig{Debounce: 2 * time.Second},
		Log:   LogConfig{Level: "info", Format: "json"},
	}
}

// flag name -> viper key
var flagKeys = map[string]string{
	"ai":            "ai.enabled",
	"disambiguate":  "ai.disambiguate",
	"api-key":       "ai.api_key",
	"base-url":      "ai.base_url",
	"model":         "ai.model",
	"max-tokens":    "ai.max_tokens",
	"temperature":   "ai.temperature",
	"top-p":         "ai.top_p",
	"ai-timeout":    "ai.timeout",
	"tesseract":     "ocr.binary",
	"ocr-lang":      "ocr.language",
	"ocr-psm":       "ocr.psm",
	"ocr-timeout":   "ocr.timeout",
	"rasterizer":    "ocr.rasterizer",
	"dpi":           "ocr.dpi",
	"pdf-max-pages": "extract.pdf_max_pages",
	"min-pdf-chars": "extract.min_native_chars",
	"min-chars":     "extract.min_text_chars",
	"execute":       "batch.execute",
	"workers":       "batch.workers",
	"report":        "batch.report",
	"silent":        "batch.silent",
	"skip-hidden":   "batch.skip_hidden",
	"debounce":      "watch.debounce",
	"log-level":     "log.level",
	"log-format":    "log.format",
}

// LoadConfig reads .env, an optional YAML file, DOCNAMER_* environment
// variables and command line flags, in increasing order of precedence.
// Positional arguments remain available through fs.Args().
func LoadConfig(fs *pflag.FlagSet, args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, NewAppError(CodeConfig, "load .env", err)
	}

	cfg := DefaultConfig()
	v := viper.New()
	setupViperEnvironment(v, cfg)
	defineCommandLineFlags(fs, cfg)

	if err := fs.Parse(args); err != nil {
		return nil, NewAppError(CodeConfig, "parse flags", err)
	}
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, NewAppError(CodeConfig, "bind flag "+name, err)
		}
	}

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, NewAppError(CodeConfig, "read config file", err)
		}
	}

	populateConfigFromViper(v, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, NewAppError(CodeConfig, "invalid configuration", err)
	}
	return cfg, nil
}

func setupViperEnvironment(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("ai.api_key", EnvPrefix+"_AI_API_KEY", "PERPLEXITY_API_KEY")

	v.SetDefault("ai.enabled", cfg.AI.Enabled)
	v.SetDefault("ai.disambiguate", cfg.AI.Disambiguate)
	v.SetDefault("ai.base_url", cfg.AI.BaseURL)
	v.SetDefault("ai.model", cfg.AI.Model)
	v.SetDefault("ai.max_tokens", cfg.AI.MaxTokens)
	v.SetDefault("ai.temperature", cfg.AI.Temperature)
	v.SetDefault("ai.top_p", cfg.AI.TopP)
	v.SetDefault("ai.timeout", cfg.AI.Timeout)
	v.SetDefault("ocr.binary", cfg.OCR.Binary)
	v.SetDefault("ocr.language", cfg.OCR.Language)
	v.SetDefault("ocr.psm", cfg.OCR.PSM)
	v.SetDefault("ocr.timeout", cfg.OCR.Timeout)
	v.SetDefault("ocr.rasterizer", cfg.OCR.Rasterizer)
	v.SetDefault("ocr.dpi", cfg.OCR.DPI)
	v.SetDefault("extract.pdf_max_pages", cfg.Extract.PDFMaxPages)
	v.SetDefault("extract.min_native_chars", cfg.Extract.MinNativeChars)
	v.SetDefault("extract.min_text_chars", cfg.Extract.MinTextChars)
	v.SetDefault("batch.workers", cfg.Batch.Workers)
	v.SetDefault("batch.skip_hidden", cfg.Batch.SkipHidden)
	v.SetDefault("watch.debounce", cfg.Watch.Debounce)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
}

func defineCommandLineFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.String("config", "", "path to a YAML config file")

	fs.Bool("ai", cfg.AI.Enabled, "use the remote model when an API key is configured")
	fs.Bool("disambiguate", cfg.AI.Disambiguate, "ask the remote model to pick the letter date among several candidates")
	fs.String("api-key", "", "API key for the completion endpoint (or PERPLEXITY_API_KEY)")
	fs.String("base-url", cfg.AI.BaseURL, "completion endpoint base URL")
	fs.String("model", cfg.AI.Model, "model name")
	fs.Int("max-tokens", cfg.AI.MaxTokens, "max tokens per completion")
	fs.Float64("temperature", cfg.AI.Temperature, "sampling temperature")
	fs.Float64("top-p", cfg.AI.TopP, "nucleus sampling")
	fs.Duration("ai-timeout", cfg.AI.Timeout, "HTTP timeout for completion calls")

	fs.String("tesseract", cfg.OCR.Binary, "tesseract binary")
	fs.String("ocr-lang", cfg.OCR.Language, "tesseract language model")
	fs.Int("ocr-psm", cfg.OCR.PSM, "tesseract page segmentation mode")
	fs.Duration("ocr-timeout", cfg.OCR.Timeout, "hard timeout per OCR run")
	fs.String("rasterizer", cfg.OCR.Rasterizer, "pdftoppm binary used before OCR on scanned PDFs")
	fs.Int("dpi", cfg.OCR.DPI, "rasterization DPI")

	fs.Int("pdf-max-pages", cfg.Extract.PDFMaxPages, "pages read by native PDF extraction")
	fs.Int("min-pdf-chars", cfg.Extract.MinNativeChars, "native PDF text at or below this length falls through to OCR")
	fs.Int("min-chars", cfg.Extract.MinTextChars, "files with less extracted text are skipped")

	fs.BoolP("execute", "x", cfg.Batch.Execute, "rename files (default is preview)")
	fs.IntP("workers", "w", cfg.Batch.Workers, "files processed in parallel")
	fs.String("report", cfg.Batch.Report, "write an XLSX report to this path")
	fs.BoolP("silent", "s", cfg.Batch.Silent, "no desktop notification")
	fs.Bool("skip-hidden", cfg.Batch.SkipHidden, "ignore dot files and directories")

	fs.Duration("debounce", cfg.Watch.Debounce, "quiet period before a watched file is processed")

	fs.String("log-level", cfg.Log.Level, "debug, info, warn, error")
	fs.String("log-format", cfg.Log.Format, "json or text")
}

func populateConfigFromViper(v *viper.Viper, cfg *Config) {
	cfg.AI.Enabled = v.GetBool("ai.enabled")
	cfg.AI.Disambiguate = v.GetBool("ai.disambiguate")
	cfg.AI.APIKey = strings.TrimSpace(v.GetString("ai.api_key"))
	cfg.AI.BaseURL = v.GetString("ai.base_url")
	cfg.AI.Model = v.GetString("ai.model")
	cfg.AI.MaxTokens = v.GetInt("ai.max_tokens")
	cfg.AI.Temperature = v.GetFloat64("ai.temperature")
	cfg.AI.TopP = v.GetFloat64("ai.top_p")
	cfg.AI.Timeout = v.GetDuration("ai.timeout")

	cfg.OCR.Binary = v.GetString("ocr.binary")
	cfg.OCR.Language = v.GetString("ocr.language")
	cfg.OCR.PSM = v.GetInt("ocr.psm")
	cfg.OCR.Timeout = v.GetDuration("ocr.timeout")
	cfg.OCR.Rasterizer = v.GetString("ocr.rasterizer")
	cfg.OCR.DPI = v.GetInt("ocr.dpi")

	cfg.Extract.PDFMaxPages = v.GetInt("extract.pdf_max_pages")
	cfg.Extract.MinNativeChars = v.GetInt("extract.min_native_chars")
	cfg.Extract.MinTextChars = v.GetInt("extract.min_text_chars")

	cfg.Batch.Execute = v.GetBool("batch.execute")
	cfg.Batch.Workers = v.GetInt("batch.workers")
	cfg.Batch.Report = v.GetString("batch.report")
	cfg.Batch.Silent = v.GetBool("batch.silent")
	cfg.Batch.SkipHidden = v.GetBool("batch.skip_hidden")

	cfg.Watch.Debounce = v.GetDuration("watch.debounce")

	cfg.Log.Level = strings.ToLower(v.GetString("log.level"))
	cfg.Log.Format = strings.ToLower(v.GetString("log.format"))
}

// Validate checks ranges; a missing API key is not an error, it disables the AI path.
func (c *Config) Validate() error {
	v := NewValidator()
	v.Field("ai.base_url", c.AI.BaseURL, Required)
	v.Field("ai.model", c.AI.Model, Required, MaxLength(128))
	v.Field("ai.max_tokens", c.AI.MaxTokens, Positive)
	v.Field("ai.temperature", c.AI.Temperature, Range(0, 2))
	v.Field("ai.top_p", c.AI.TopP, Range(0, 1))
	v.Field("ai.timeout", c.AI.Timeout, Positive)
	v.Field("ocr.binary", c.OCR.Binary, Required)
	v.Field("ocr.language", c.OCR.Language, Required)
	v.Field("ocr.psm", c.OCR.PSM, Range(0, 13))
	v.Field("ocr.timeout", c.OCR.Timeout, Positive)
	v.Field("extract.pdf_max_pages", c.Extract.PDFMaxPages, Positive)
	v.Field("extract.min_native_chars", c.Extract.MinNativeChars, Range(0, 100000))
	v.Field("batch.workers", c.Batch.Workers, Range(1, 64))
	v.Field("log.format", c.Log.Format, oneOf("json", "text"))
	v.Field("log.level", c.Log.Level, oneOf("debug", "info", "warn", "error"))
	return v.Error()
}

// AIReady reports whether the remote path should be wired at all.
func (c *Config) AIReady() bool {
	return c.AI.Enabled && len(c.AI.APIKey) >= MinAPIKeyLength
}

// MinAPIKeyLength is the sanity floor for a credential; shorter keys are treated as absent.
const MinAPIKeyLength = 10

func oneOf(allowed ...string) ValidationRule {
	return func(fieldName string, value interface{}) *ValidationError {
		s, _ := value.(string)
		for _, a := range allowed {
			if s == a {
				return nil
			}
		}
		return &ValidationError{
			Field:   fieldName,
			Value:   value,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
		}
	}
}
