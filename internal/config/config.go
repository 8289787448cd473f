// Package config resolves client configuration once at startup.
//
// Resolution order: built-in defaults, then the optional YAML config file
// (~/.devtracker/config.yaml), then environment variables. Flags applied by
// the command layer win over all of these.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/devtracker/devtracker-cli/internal/errors"
)

// EnvAPIBaseURL overrides the API base URL.
const EnvAPIBaseURL = "DEVTRACKER_API_URL"

// DefaultAPIBaseURL is used when nothing else is configured.
const DefaultAPIBaseURL = "http://localhost:8080"

// Config holds the recognized client options.
type Config struct {
	// APIBaseURL is the base URL of the DevTracker REST API.
	APIBaseURL string `yaml:"apiBaseUrl"`

	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `yaml:"logLevel"`

	// LogFormat is the log output format (text, json).
	LogFormat string `yaml:"logFormat"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		APIBaseURL: DefaultAPIBaseURL,
		LogLevel:   "warn",
		LogFormat:  "text",
	}
}

// Load resolves the configuration from defaults, the config file in dir,
// and the environment. A missing config file is not an error.
func Load(dir string) (Config, error) {
	cfg := Default()

	path := filepath.Join(dir, "config.yaml")
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrap(errors.ErrCodeConfigInvalid, errors.KindValidation, "invalid config file: "+path, err).
				WithSuggestion("Fix the YAML syntax or delete the file to use defaults")
		}
	} else if !os.IsNotExist(err) {
		return cfg, errors.Wrap(errors.ErrCodeFileReadFailed, errors.KindUnknown, "cannot read config file: "+path, err)
	}

	if v := os.Getenv(EnvAPIBaseURL); v != "" {
		cfg.APIBaseURL = v
	}

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}

	return cfg, nil
}
