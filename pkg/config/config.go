// Package config loads atelier's provider and model settings from an optional TOML
// file, a .env file, and the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/papercomputeco/atelier/pkg/gateway"
	"github.com/papercomputeco/atelier/pkg/provider/openai"
)

// DefaultAPIKeyEnv is the environment variable holding the provider credential.
const DefaultAPIKeyEnv = "OPENROUTER_API_KEY"

// Config is the file-backed configuration.
type Config struct {
	// BaseURL of the OpenAI-compatible provider.
	BaseURL string `toml:"base_url"`

	// APIKeyEnv names the environment variable that holds the credential.
	APIKeyEnv string `toml:"api_key_env"`

	Text   ModelConfig `toml:"text"`
	Vision ModelConfig `toml:"vision"`
}

// ModelConfig describes one model identity.
type ModelConfig struct {
	Model        string   `toml:"model"`
	Instructions string   `toml:"instructions"`
	Temperature  *float64 `toml:"temperature"`
	MaxTokens    *int     `toml:"max_tokens"`
}

// Default returns the built-in configuration.
func Default() *Config {
	p := gateway.DefaultProfiles()
	return &Config{
		BaseURL:   openai.DefaultBaseURL,
		APIKeyEnv: DefaultAPIKeyEnv,
		Text:      fromProfile(p.Text),
		Vision:    fromProfile(p.Vision),
	}
}

// Load reads the TOML file at path on top of the defaults. An empty path
// returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	// Keys set to empty strings fall back to the defaults too
	def := Default()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = def.APIKeyEnv
	}
	if cfg.Text.Model == "" {
		cfg.Text.Model = def.Text.Model
	}
	if cfg.Vision.Model == "" {
		cfg.Vision.Model = def.Vision.Model
	}

	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (".env" when none) into
// the environment. Variables already set are not overridden and missing files
// are ignored.
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}

	for _, name := range filenames {
		if err := godotenv.Load(name); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

// APIKey returns the credential from the environment, possibly empty.
func (c *Config) APIKey() string {
	return os.Getenv(c.APIKeyEnv)
}

// Profiles converts the model sections into gateway profiles.
func (c *Config) Profiles() gateway.Profiles {
	return gateway.Profiles{
		Text:   c.Text.profile(),
		Vision: c.Vision.profile(),
	}
}

func (m ModelConfig) profile() gateway.Profile {
	return gateway.Profile{
		Model:        m.Model,
		Instructions: m.Instructions,
		Temperature:  m.Temperature,
		MaxTokens:    m.MaxTokens,
	}
}

func fromProfile(p gateway.Profile) ModelConfig {
	return ModelConfig{
		Model:        p.Model,
		Instructions: p.Instructions,
		Temperature:  p.Temperature,
		MaxTokens:    p.MaxTokens,
	}
}
