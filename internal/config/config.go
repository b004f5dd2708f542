// Package config loads the run settings: an optional YAML file layered
// under environment variables. A missing API key is a fatal configuration
// error reported before any graph work starts.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvAPIKey is the environment variable holding the OpenAI API key. It
// overrides the config file when set.
const EnvAPIKey = "OPENAI_API_KEY"

// Defaults applied when neither file nor environment says otherwise.
const (
	DefaultModel   = "gpt-4o"
	DefaultTimeout = 90 * time.Second
)

// Duration is a time.Duration that unmarshals from YAML strings like "90s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Settings holds everything the agent needs beyond the per-run inputs.
type Settings struct {
	APIKey      string   `yaml:"api_key"`
	Model       string   `yaml:"model"`
	BaseURL     string   `yaml:"base_url"`
	Timeout     Duration `yaml:"timeout"`
	Concurrency int      `yaml:"concurrency"`
	Browser     bool     `yaml:"browser"`
}

// MissingAPIKeyError reports that no API key was configured anywhere.
type MissingAPIKeyError struct {
	EnvVar string
}

func (e *MissingAPIKeyError) Error() string {
	return fmt.Sprintf("no OpenAI API key configured: set %s or api_key in the config file", e.EnvVar)
}

// Load reads the optional YAML file at path (empty path skips the file),
// applies the environment override and the defaults, and validates the
// result.
func Load(path string) (*Settings, error) {
	s := &Settings{
		Model:   DefaultModel,
		Timeout: Duration(DefaultTimeout),
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, s); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if key := os.Getenv(EnvAPIKey); key != "" {
		s.APIKey = key
	}
	if s.APIKey == "" {
		return nil, &MissingAPIKeyError{EnvVar: EnvAPIKey}
	}
	if s.Model == "" {
		s.Model = DefaultModel
	}
	if s.Timeout <= 0 {
		s.Timeout = Duration(DefaultTimeout)
	}
	return s, nil
}
