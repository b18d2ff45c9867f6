// Package config loads and validates the harness configuration.
package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/aletheia-ai/retrace/pkg/errors"
)

// StorageConfig selects and locates the durable state backend.
type StorageConfig struct {
	Backend string `yaml:"backend" validate:"required,oneof=json sqlite"`
	Path    string `yaml:"path" validate:"required"`
}

// Config is the full harness configuration.
type Config struct {
	// Provider selects the model client. "scripted" needs no credentials.
	Provider string `yaml:"provider" validate:"required,oneof=anthropic scripted"`
	Model    string `yaml:"model" validate:"required_if=Provider anthropic"`
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"api_key_env"`

	Storage StorageConfig `yaml:"storage"`

	Runs          int   `yaml:"runs" validate:"min=1"`
	MaxIterations int   `yaml:"max_iterations" validate:"min=1"`
	Seed          int64 `yaml:"seed"`

	// Confusion enables the demo destabilizer on early runs.
	Confusion bool `yaml:"confusion"`

	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR"`

	Tasks []string `yaml:"tasks" validate:"min=1,dive,required"`
}

// Default returns the demonstration configuration: scripted model, JSON
// state file, confusion enabled, and the stock travel-planning tasks.
func Default() *Config {
	return &Config{
		Provider:      "scripted",
		APIKeyEnv:     "ANTHROPIC_API_KEY",
		Storage:       StorageConfig{Backend: "json", Path: "agent_memory.json"},
		Runs:          10,
		MaxIterations: 10,
		Seed:          1,
		Confusion:     true,
		LogLevel:      "INFO",
		Tasks: []string{
			"Help me plan a 5-day trip to Paris, France. I need to know about weather, flights from New York, hotels, and activities.",
			"I want to visit Tokyo for 4 days. Please help me plan everything including weather check, flights from Los Angeles, accommodation, and itinerary.",
			"Plan a week-long vacation to London. I'm traveling from Boston and need the complete travel plan.",
			"Organize a 3-day trip to Dubai. Check weather, find flights from Miami, suggest hotels, and create an itinerary.",
			"Help me plan a 6-day trip to Sydney, Australia from San Francisco. Full planning needed.",
		},
	}
}

// Load reads a YAML config file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "failed to read config file"),
			errors.Fields{"path": path})
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "failed to parse config file"),
			errors.Fields{"path": path})
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, errors.InvalidInput, "invalid configuration")
	}
	return nil
}

// APIKey resolves the configured credential from the environment.
func (c *Config) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}
