// Package config builds the pipeline configuration from the process environment.
// The configuration is constructed once at startup and passed by reference to
// every client; nothing reads the environment after that.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"paper-translator/internal/logger"
	"paper-translator/internal/types"
)

const (
	EnvInputDir          = "INPUT_DIR"
	EnvOutputDir         = "OUTPUT_DIR"
	EnvGrobidURL         = "GROBID_API_URL"
	EnvGrobidTimeout     = "GROBID_TIMEOUT"
	EnvGrobidConsolidate = "GROBID_CONSOLIDATE"
	EnvTranslator        = "TRANSLATOR"
	EnvDeepLURL          = "DEEPL_API_URL"
	EnvDeepLAPIKey       = "DEEPL_API_KEY"
	EnvOpenAIAPIKey      = "OPENAI_API_KEY"
	EnvOpenAIBaseURL     = "OPENAI_BASE_URL"
	EnvOpenAIModel       = "OPENAI_MODEL"
	EnvSourceLang        = "SOURCE_LANG"
	EnvTargetLang        = "TARGET_LANG"
	EnvTranslateTimeout  = "TRANSLATE_TIMEOUT"
	EnvTranslateInterval = "TRANSLATE_INTERVAL"
	EnvChunkMaxChars     = "CHUNK_MAX_CHARS"
	EnvRenderFontPath    = "RENDER_FONT_PATH"
	EnvLogLevel          = "LOG_LEVEL"
	EnvLogFile           = "LOG_FILE"
)

const (
	DefaultInputDir          = "input_pdf"
	DefaultOutputDir         = "output_pdf"
	DefaultGrobidURL         = "http://localhost:8070/api/processFulltextDocument"
	DefaultGrobidTimeout     = 180 * time.Second
	DefaultDeepLURL          = "https://api-free.deepl.com/v2/translate"
	DefaultOpenAIBaseURL     = "https://api.openai.com/v1"
	DefaultOpenAIModel       = "gpt-4o-mini"
	DefaultSourceLang        = "EN"
	DefaultTargetLang        = "JA"
	DefaultTranslateTimeout  = 30 * time.Second
	DefaultTranslateInterval = 500 * time.Millisecond
	DefaultChunkMaxChars     = 5000
	DefaultLogLevel          = "info"
	DefaultLogFile           = "batch_translate.log"
)

// TranslatorKind selects the translation backend.
type TranslatorKind string

const (
	TranslatorDeepL  TranslatorKind = "deepl"
	TranslatorOpenAI TranslatorKind = "openai"
)

// Config holds every runtime setting of a pipeline run.
type Config struct {
	InputDir  string
	OutputDir string

	GrobidURL         string
	GrobidTimeout     time.Duration
	GrobidConsolidate bool

	Translator        TranslatorKind
	DeepLURL          string
	DeepLAPIKey       string
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenAIModel       string
	SourceLang        string
	TargetLang        string
	TranslateTimeout  time.Duration
	TranslateInterval time.Duration

	ChunkMaxChars  int
	RenderFontPath string
	RefreshMarkup  bool

	LogLevel string
	LogFile  string
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (".env" when none are
// given) without overriding variables already set. A missing file is not an error.
func LoadDotEnv(paths ...string) bool {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return false
	}
	if err := godotenv.Load(existing...); err != nil {
		logger.Warn("could not load .env file", logger.Err(err))
		return false
	}
	return true
}

// FromEnv builds a Config from environment variables, applying defaults.
// It does not validate; call Validate once flag overrides have been applied.
func FromEnv() *Config {
	return &Config{
		InputDir:          getEnvOrDefault(EnvInputDir, DefaultInputDir),
		OutputDir:         getEnvOrDefault(EnvOutputDir, DefaultOutputDir),
		GrobidURL:         getEnvOrDefault(EnvGrobidURL, DefaultGrobidURL),
		GrobidTimeout:     getEnvDurationOrDefault(EnvGrobidTimeout, DefaultGrobidTimeout),
		GrobidConsolidate: getEnvBoolOrDefault(EnvGrobidConsolidate, true),
		Translator:        TranslatorKind(strings.ToLower(getEnvOrDefault(EnvTranslator, string(TranslatorDeepL)))),
		DeepLURL:          getEnvOrDefault(EnvDeepLURL, DefaultDeepLURL),
		DeepLAPIKey:       os.Getenv(EnvDeepLAPIKey),
		OpenAIAPIKey:      os.Getenv(EnvOpenAIAPIKey),
		OpenAIBaseURL:     getEnvOrDefault(EnvOpenAIBaseURL, DefaultOpenAIBaseURL),
		OpenAIModel:       getEnvOrDefault(EnvOpenAIModel, DefaultOpenAIModel),
		SourceLang:        strings.ToUpper(getEnvOrDefault(EnvSourceLang, DefaultSourceLang)),
		TargetLang:        strings.ToUpper(getEnvOrDefault(EnvTargetLang, DefaultTargetLang)),
		TranslateTimeout:  getEnvDurationOrDefault(EnvTranslateTimeout, DefaultTranslateTimeout),
		TranslateInterval: getEnvDurationOrDefault(EnvTranslateInterval, DefaultTranslateInterval),
		ChunkMaxChars:     getEnvIntOrDefault(EnvChunkMaxChars, DefaultChunkMaxChars),
		RenderFontPath:    os.Getenv(EnvRenderFontPath),
		LogLevel:          getEnvOrDefault(EnvLogLevel, DefaultLogLevel),
		LogFile:           getEnvOrDefault(EnvLogFile, DefaultLogFile),
	}
}

// Validate reports the first configuration problem as a CONFIG_ERROR.
func (c *Config) Validate() error {
	switch c.Translator {
	case TranslatorDeepL:
		if c.DeepLAPIKey == "" {
			return types.NewAppError(types.ErrConfig, EnvDeepLAPIKey+" is not set", nil)
		}
	case TranslatorOpenAI:
		if c.OpenAIAPIKey == "" {
			return types.NewAppError(types.ErrConfig, EnvOpenAIAPIKey+" is not set", nil)
		}
	default:
		return types.NewAppErrorWithDetails(types.ErrConfig, "unknown translator", string(c.Translator), nil)
	}

	if c.InputDir == "" || c.OutputDir == "" {
		return types.NewAppError(types.ErrConfig, "input and output directories must be set", nil)
	}
	if c.ChunkMaxChars <= 0 {
		return types.NewAppErrorWithDetails(types.ErrConfig, "chunk size must be positive", strconv.Itoa(c.ChunkMaxChars), nil)
	}
	if c.GrobidTimeout <= 0 || c.TranslateTimeout <= 0 {
		return types.NewAppError(types.ErrConfig, "timeouts must be positive", nil)
	}
	if c.TranslateInterval < 0 {
		return types.NewAppError(types.ErrConfig, "translate interval must not be negative", nil)
	}
	if c.TargetLang == "" {
		return types.NewAppError(types.ErrConfig, EnvTargetLang+" is empty", nil)
	}
	if c.RenderFontPath != "" {
		if _, err := os.Stat(c.RenderFontPath); err != nil {
			return types.NewAppError(types.ErrConfig, "render font not readable", err)
		}
	}
	return nil
}

// RenderEnabled reports whether a translated PDF should be produced.
func (c *Config) RenderEnabled() bool {
	return c.RenderFontPath != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
		logger.Warn("ignoring invalid integer setting", logger.String("key", key), logger.String("value", value))
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
		logger.Warn("ignoring invalid boolean setting", logger.String("key", key), logger.String("value", value))
	}
	return defaultValue
}

// getEnvDurationOrDefault accepts Go durations ("90s") and bare seconds ("90").
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	logger.Warn("ignoring invalid duration setting", logger.String("key", key), logger.String("value", value))
	return defaultValue
}
