// Package config loads medsum settings from .medsum.yaml, a .env file and the
// process environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/medsum/medsum/relay"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = ".medsum.yaml"

// Fallback environment variable consulted when api_key_env is unset.
const fallbackAPIKeyEnv = "OPENROUTER_API_KEY"

// ErrMissingAPIKey is returned when no API key is found in the environment.
var ErrMissingAPIKey = errors.New("config: API key is not set")

// Provider names accepted by the provider setting.
const (
	ProviderOpenAI = "openai"
	ProviderHTTP   = "http"
)

// Config holds every setting the CLI surfaces need.
type Config struct {
	Provider  string `yaml:"provider"`    // openai (SDK) or http (raw wire client)
	Model     string `yaml:"model"`       // completion model identifier
	BaseURL   string `yaml:"base_url"`    // OpenAI-compatible API root
	Timeout   string `yaml:"timeout"`     // per-request timeout, e.g. "60s"
	Template  string `yaml:"template"`    // short or extended
	APIKeyEnv string `yaml:"api_key_env"` // env var holding the key (default: API_KEY)
	Listen    string `yaml:"listen"`      // web form listen address
	GRPC      string `yaml:"grpc_listen"` // gRPC listen address
	LogLevel  string `yaml:"log_level"`   // debug, info, warn, error
	LogFormat string `yaml:"log_format"`  // text or json

	path string
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Provider:  ProviderOpenAI,
		Model:     relay.DefaultModel,
		BaseURL:   relay.DefaultBaseURL,
		Timeout:   relay.DefaultTimeout.String(),
		Template:  relay.TemplateExtended.String(),
		APIKeyEnv: "API_KEY",
		Listen:    ":8080",
		GRPC:      ":50053",
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads path (DefaultPath when empty) over the defaults and loads a
// .env file from the working directory into the environment. Missing files
// are not errors; existing environment variables are never overwritten.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if path == "" {
		path = DefaultPath
	}

	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Path returns the file the config was loaded from (it may not exist).
func (c *Config) Path() string { return c.path }

// Validate rejects unknown enum values and malformed durations.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderHTTP:
	default:
		return fmt.Errorf("unknown provider %q (want %s or %s)", c.Provider, ProviderOpenAI, ProviderHTTP)
	}
	if _, err := relay.ParseTemplate(c.Template); err != nil {
		return err
	}
	if _, err := c.RequestTimeout(); err != nil {
		return err
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log_format %q (want text or json)", c.LogFormat)
	}
	return nil
}

// RequestTimeout parses the timeout setting.
func (c *Config) RequestTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return relay.DefaultTimeout, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %s", d)
	}
	return d, nil
}

// PromptTemplate parses the template setting.
func (c *Config) PromptTemplate() (relay.Template, error) {
	return relay.ParseTemplate(c.Template)
}

// SlogLevel parses the log_level setting.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
}

// APIKey returns the completion API key from the configured environment
// variable, falling back to OPENROUTER_API_KEY.
func (c *Config) APIKey() (string, error) {
	names := []string{c.APIKeyEnv, fallbackAPIKeyEnv}
	for _, name := range names {
		if name == "" {
			continue
		}
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: set %s (or %s) in the environment or .env", ErrMissingAPIKey, c.APIKeyEnv, fallbackAPIKeyEnv)
}

// NewProvider builds the configured completion provider around apiKey.
func (c *Config) NewProvider(apiKey string) (relay.Provider, error) {
	timeout, err := c.RequestTimeout()
	if err != nil {
		return nil, err
	}

	opts := []relay.OpenAIOption{
		relay.WithAPIKey(apiKey),
		relay.WithModel(c.Model),
		relay.WithBaseURL(c.BaseURL),
		relay.WithTimeout(timeout),
	}

	switch c.Provider {
	case ProviderHTTP:
		return relay.NewHTTPProvider(opts...), nil
	case ProviderOpenAI, "":
		return relay.NewOpenAIProvider(opts...), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", c.Provider)
	}
}

// NewLogger builds the process logger from log_level and log_format.
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := c.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// NewRelay wires the API key, provider and prompt template into a Relay.
func (c *Config) NewRelay(logger *slog.Logger) (*relay.Relay, error) {
	key, err := c.APIKey()
	if err != nil {
		return nil, err
	}
	provider, err := c.NewProvider(key)
	if err != nil {
		return nil, err
	}
	tmpl, err := c.PromptTemplate()
	if err != nil {
		return nil, err
	}
	return relay.New(provider, relay.WithTemplate(tmpl), relay.WithLogger(logger)), nil
}
