package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string         `toml:"environment"` // "development" or "production"
	Server      ServerConfig   `toml:"server"`
	Logging     LoggingConfig  `toml:"logging"`
	Market      MarketConfig   `toml:"market"`
	Analysis    AnalysisConfig `toml:"analysis"`
	Gemini      GeminiConfig   `toml:"gemini"`
	Claude      ClaudeConfig   `toml:"claude"`
	LLM         LLMConfig      `toml:"llm"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Format string   `toml:"format"` // "json" or "text"
	Output []string `toml:"output"` // "stdout", "file"
}

// MarketConfig contains market data provider (EODHD) configuration
type MarketConfig struct {
	APIKey         string `toml:"api_key"`         // EODHD API key
	BaseURL        string `toml:"base_url"`        // Override API base URL (primarily for tests)
	RateLimit      int    `toml:"rate_limit"`      // Requests per second
	RequestTimeout string `toml:"request_timeout"` // HTTP request timeout as duration string (default: "30s")
	CacheTTL       string `toml:"cache_ttl"`       // Quote/fundamentals cache TTL as duration string (default: "5m")
}

// RequestTimeoutDuration returns the parsed request timeout, falling back to 30s.
func (c *MarketConfig) RequestTimeoutDuration() time.Duration {
	if d, err := time.ParseDuration(c.RequestTimeout); err == nil && d > 0 {
		return d
	}
	return 30 * time.Second
}

// CacheTTLDuration returns the parsed cache TTL, falling back to 5m.
func (c *MarketConfig) CacheTTLDuration() time.Duration {
	if d, err := time.ParseDuration(c.CacheTTL); err == nil && d > 0 {
		return d
	}
	return 5 * time.Minute
}

// AnalysisConfig contains defaults for the analysis pipeline
type AnalysisConfig struct {
	BaseCurrency    string `toml:"base_currency"`    // Default base currency for currency-risk assessment
	DefaultExchange string `toml:"default_exchange"` // Exchange assumed for bare ticker codes
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google Gemini API key
	Model       string  `toml:"model"`       // Model for AI operations (default: "gemini-3-flash-preview")
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "2m")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.7)
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key for Claude operations
	Model       string  `toml:"model"`       // Model for AI operations (default: "claude-haiku-3-5-20241022")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 2048)
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "2m")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.7)
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig contains unified configuration for all AI providers
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider"` // "gemini" or "claude" (default: "claude")
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
		Market: MarketConfig{
			APIKey:         "", // User must provide API key (CONSILIO_MARKET_API_KEY or config file)
			RateLimit:      10,
			RequestTimeout: "30s",
			CacheTTL:       "5m",
		},
		Analysis: AnalysisConfig{
			BaseCurrency:    "USD",
			DefaultExchange: "US",
		},
		Gemini: GeminiConfig{
			APIKey:      "",
			Model:       "gemini-3-flash-preview",
			Timeout:     "2m",
			Temperature: 0.7,
		},
		Claude: ClaudeConfig{
			APIKey:      "", // User must provide API key (ANTHROPIC_API_KEY or config file)
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   2048,
			Timeout:     "2m",
			Temperature: 0.7,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderClaude,
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env. Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	// Environment configuration (highest priority: CONSILIO_ENV, fallback: GO_ENV)
	if env := os.Getenv("CONSILIO_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("CONSILIO_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("CONSILIO_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Logging configuration
	if level := os.Getenv("CONSILIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("CONSILIO_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("CONSILIO_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Market data configuration
	if apiKey := os.Getenv("CONSILIO_MARKET_API_KEY"); apiKey != "" {
		config.Market.APIKey = apiKey
	} else if apiKey := os.Getenv("EODHD_API_KEY"); apiKey != "" {
		config.Market.APIKey = apiKey
	}
	if baseURL := os.Getenv("CONSILIO_MARKET_BASE_URL"); baseURL != "" {
		config.Market.BaseURL = baseURL
	}
	if rateLimit := os.Getenv("CONSILIO_MARKET_RATE_LIMIT"); rateLimit != "" {
		if rl, err := strconv.Atoi(rateLimit); err == nil {
			config.Market.RateLimit = rl
		}
	}
	if requestTimeout := os.Getenv("CONSILIO_MARKET_REQUEST_TIMEOUT"); requestTimeout != "" {
		config.Market.RequestTimeout = requestTimeout
	}
	if cacheTTL := os.Getenv("CONSILIO_MARKET_CACHE_TTL"); cacheTTL != "" {
		config.Market.CacheTTL = cacheTTL
	}

	// Analysis configuration
	if baseCurrency := os.Getenv("CONSILIO_ANALYSIS_BASE_CURRENCY"); baseCurrency != "" {
		config.Analysis.BaseCurrency = strings.ToUpper(baseCurrency)
	}
	if exchange := os.Getenv("CONSILIO_ANALYSIS_DEFAULT_EXCHANGE"); exchange != "" {
		config.Analysis.DefaultExchange = strings.ToUpper(exchange)
	}

	// Gemini configuration
	if apiKey := os.Getenv("CONSILIO_GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	} else if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if model := os.Getenv("CONSILIO_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}
	if timeout := os.Getenv("CONSILIO_GEMINI_TIMEOUT"); timeout != "" {
		config.Gemini.Timeout = timeout
	}
	if temperature := os.Getenv("CONSILIO_GEMINI_TEMPERATURE"); temperature != "" {
		if t, err := strconv.ParseFloat(temperature, 32); err == nil {
			config.Gemini.Temperature = float32(t)
		}
	}

	// Claude configuration (CONSILIO_ prefix takes priority over ANTHROPIC_API_KEY)
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("CONSILIO_CLAUDE_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if model := os.Getenv("CONSILIO_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}
	if maxTokens := os.Getenv("CONSILIO_CLAUDE_MAX_TOKENS"); maxTokens != "" {
		if mt, err := strconv.Atoi(maxTokens); err == nil {
			config.Claude.MaxTokens = mt
		}
	}
	if timeout := os.Getenv("CONSILIO_CLAUDE_TIMEOUT"); timeout != "" {
		config.Claude.Timeout = timeout
	}
	if temperature := os.Getenv("CONSILIO_CLAUDE_TEMPERATURE"); temperature != "" {
		if t, err := strconv.ParseFloat(temperature, 32); err == nil {
			config.Claude.Temperature = float32(t)
		}
	}

	// LLM provider configuration
	if provider := os.Getenv("CONSILIO_LLM_DEFAULT_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(provider)
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	// Command-line flags have highest priority
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// ResolveAPIKey resolves an API key with environment variable priority.
// Resolution order: environment variables -> config fallback -> error.
func ResolveAPIKey(name string, configFallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"gemini_api_key":    {"CONSILIO_GEMINI_API_KEY", "GEMINI_API_KEY"},
		"anthropic_api_key": {"CONSILIO_CLAUDE_API_KEY", "ANTHROPIC_API_KEY"},
		"market_api_key":    {"CONSILIO_MARKET_API_KEY", "EODHD_API_KEY"},
	}

	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	if configFallback != "" {
		return configFallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment or config", name)
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
