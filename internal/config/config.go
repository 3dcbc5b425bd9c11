// Package config loads runtime settings for the learnpath CLI.
//
// Sources are layered, later ones winning:
//  1. built-in defaults
//  2. an optional YAML file (CONFIG_PATH, or learnpath.yaml in the working directory)
//  3. environment variables, including those from a .env file
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/learnpath/learnpath/internal/feature"
	"github.com/learnpath/learnpath/internal/llm"
	"github.com/learnpath/learnpath/internal/logging"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"learnpath.yaml",
	"learnpath.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Config is the full runtime configuration.
type Config struct {
	Model ModelConfig `koanf:"model"`

	// UseFallbackOnly skips the model and always serves fallback results.
	UseFallbackOnly bool `koanf:"use_fallback_only"`

	Log       logging.Config  `koanf:"log"`
	Store     StoreConfig     `koanf:"store"`
	Recommend RecommendConfig `koanf:"recommend"`
}

// ModelConfig selects and tunes the model provider.
type ModelConfig struct {
	Provider       string  `koanf:"provider" validate:"required,oneof=zhipu openai openrouter anthropic gemini mock"`
	APIKey         string  `koanf:"api_key"`
	Name           string  `koanf:"name"`
	BaseURL        string  `koanf:"base_url" validate:"omitempty,url"`
	TimeoutSeconds float64 `koanf:"timeout_seconds" validate:"gt=0,lte=600"`
	MaxTokens      int     `koanf:"max_tokens" validate:"min=0"`
	Temperature    float64 `koanf:"temperature" validate:"gte=0,lte=2"`
}

// StoreConfig controls the SQLite event store.
type StoreConfig struct {
	Enabled bool `koanf:"enabled"`

	// Path is the database file. Empty means the platform default.
	Path string `koanf:"path"`
}

// RecommendConfig holds recommendation defaults.
type RecommendConfig struct {
	Limit int `koanf:"limit" validate:"min=1,max=50"`
}

// defaultConfig returns the built-in defaults.
func defaultConfig() *Config {
	base := llm.DefaultConfig()
	return &Config{
		Model: ModelConfig{
			Provider:       base.Provider,
			TimeoutSeconds: base.Timeout.Seconds(),
			MaxTokens:      base.MaxTokens,
			Temperature:    base.Temperature,
		},
		Log:       logging.DefaultConfig(),
		Store:     StoreConfig{Enabled: true},
		Recommend: RecommendConfig{Limit: feature.DefaultLimit},
	}
}

// Default returns the built-in configuration without reading any source.
func Default() *Config {
	return defaultConfig()
}

// Load reads .env, then layers defaults, the config file and the
// environment, and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env file: %w", err)
	}

	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	// Not representable in koanf; always restore.
	cfg.Log.Output = defaults.Log.Output

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns CONFIG_PATH when it exists, else the first default
// path that exists, else "".
func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envMappings maps environment variable names (lowercased) to config keys.
var envMappings = map[string]string{
	"model_provider":        "model.provider",
	"model_api_key":         "model.api_key",
	"model_name":            "model.name",
	"model_base_url":        "model.base_url",
	"model_timeout_seconds": "model.timeout_seconds",
	"model_max_tokens":      "model.max_tokens",
	"model_temperature":     "model.temperature",
	"use_fallback_only":     "use_fallback_only",
	"log_level":             "log.level",
	"log_format":            "log.format",
	"log_caller":            "log.caller",
	"learnpath_store":       "store.enabled",
	"learnpath_db":          "store.path",
	"recommend_limit":       "recommend.limit",
}

// envTransformFunc maps known variables and drops everything else so
// unrelated environment does not leak into the config.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// Validate checks field constraints and provider settings.
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	switch c.Log.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("log format must be json or console, got %q", c.Log.Format)
	}
	return c.LLM().Validate()
}

// LLM converts the model settings into the provider configuration.
func (c *Config) LLM() llm.Config {
	return llm.Config{
		Provider:    c.Model.Provider,
		APIKey:      c.Model.APIKey,
		Model:       c.Model.Name,
		BaseURL:     c.Model.BaseURL,
		MaxTokens:   c.Model.MaxTokens,
		Temperature: c.Model.Temperature,
		Timeout:     seconds(c.Model.TimeoutSeconds),
	}
}

// seconds converts a possibly fractional number of seconds to a duration.
func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
