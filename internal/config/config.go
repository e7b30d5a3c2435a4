package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
)

type Config struct {
	LogLevel string       `koanf:"log_level"`
	Models   ModelsConfig `koanf:"models"`
}

type ModelsConfig struct {
	Default             string          `koanf:"default"`
	Fallback            string          `koanf:"fallback"`
	MaxFallbackAttempts int             `koanf:"max_fallback_attempts"`
	Registry            []ModelRegistry `koanf:"registry"`
}

// ModelRegistry configures one named provider entry. APIKey is filled from
// the provider's conventional environment variable when left empty; it is
// read once at load time and never logged.
type ModelRegistry struct {
	Name           string  `koanf:"name"`
	Provider       string  `koanf:"provider"`
	BaseURL        string  `koanf:"base_url"`
	APIKey         string  `koanf:"api_key"`
	Model          string  `koanf:"model"`
	RequestTimeout string  `koanf:"request_timeout"`
	Temperature    float32 `koanf:"temperature"`
	MaxTokens      int     `koanf:"max_tokens"`
	MaxRetries     int     `koanf:"max_retries"`
}

const (
	DefaultLogLevel             = "info"
	DefaultModelDefault         = "gpt-4o"
	DefaultModelMaxFallbackAttempts = 2

	DefaultGitHubBaseURL      = "https://models.github.ai/inference/chat/completions"
	DefaultGitHubModel        = "openai/gpt-4o"
	DefaultHuggingFaceBaseURL = "https://router.huggingface.co/v1"
	DefaultOpenAIBaseURL      = "https://api.openai.com/v1"
	DefaultOllamaBaseURL      = "http://localhost:11434/v1"
	DefaultOllamaAPIKey       = "ollama"

	// Documented sampling and transport defaults, applied when a registry
	// entry or request leaves them unset.
	DefaultRequestTimeout = "30s"
	DefaultTemperature    = float32(0.7)
	DefaultMaxRetries     = 3
)

// envKeyByProvider maps provider types to the environment variable their
// credential is conventionally read from.
var envKeyByProvider = map[string]string{
	"github":      "GITHUB_TOKEN",
	"openai":      "OPENAI_API_KEY",
	"huggingface": "HF_TOKEN",
	"anthropic":   "ANTHROPIC_API_KEY",
	"gemini":      "GEMINI_API_KEY",
}

// Load builds the configuration by layering defaults, an optional yaml
// file, GHINFER_* environment variables and CLI flags, in that order.
func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"log_level":                    DefaultLogLevel,
		"models.default":               DefaultModelDefault,
		"models.fallback":              "",
		"models.max_fallback_attempts": DefaultModelMaxFallbackAttempts,
		"models.registry": []ModelRegistry{
			{Name: DefaultModelDefault, Provider: "github", Model: DefaultGitHubModel},
		},
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	configPath := ""
	if cmd != nil {
		if flag := cmd.Flags().Lookup("config"); flag != nil {
			configPath = strings.TrimSpace(flag.Value.String())
		}
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, err
		}
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			globalPath := filepath.Join(home, ".ghinfer", "config.yaml")
			if err := k.Load(file.Provider(globalPath), yaml.Parser()); err != nil {
				slog.Debug("Global config not found or invalid", "path", globalPath, "error", err)
			}
		}
	}

	k.Load(env.Provider("GHINFER_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "GHINFER_")), "_", ".", -1)
	}), nil)

	if cmd != nil {
		k.Load(posflag.Provider(cmd.Flags(), ".", k), nil)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	for i, m := range cfg.Models.Registry {
		if m.Provider == "" {
			cfg.Models.Registry[i].Provider = "github"
		}
	}

	injectCredentials(&cfg)

	return &cfg, nil
}

// injectCredentials fills empty registry api_key fields from the standard
// environment variables, once, at load time.
func injectCredentials(cfg *Config) {
	for provider, envKey := range envKeyByProvider {
		key := os.Getenv(envKey)
		if key == "" {
			continue
		}
		for i, m := range cfg.Models.Registry {
			if m.Provider == provider && m.APIKey == "" {
				cfg.Models.Registry[i].APIKey = key
			}
		}
	}
}
