// Package config loads pluginevent CLI configuration from a config file,
// .env files, and PLUGINEVENT_* environment variables using Viper.
package config

import (
	stderrors "errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/pluginevent/pkg/errors"
	"github.com/agentstation/pluginevent/pkg/logging"
)

// EnvPrefix is the prefix for environment variables read by the CLI.
const EnvPrefix = "PLUGINEVENT"

// DefaultEnvFiles are loaded in order; later files do not override values
// already set in the environment.
var DefaultEnvFiles = []string{".env", ".env.local"}

// Config holds CLI settings.
type Config struct {
	// Source is the plugin name used for events built by the CLI.
	Source string `mapstructure:"source"`

	// EnvelopeFormat is the wire format for export and import (json, yaml).
	EnvelopeFormat string `mapstructure:"envelope_format"`

	// Logging configures the default logger.
	Logging logging.Config `mapstructure:"logging"`
}

// New returns a Viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("source", "pluginevent")
	v.SetDefault("envelope_format", "json")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "auto")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.time_format", "kitchen")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// LoadEnvFiles loads the given .env files into the process environment,
// skipping files that do not exist. It returns the files that were loaded.
func LoadEnvFiles(files ...string) []string {
	var loaded []string
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err == nil {
			loaded = append(loaded, file)
		}
	}
	return loaded
}

// Load reads configFile, or searches for .pluginevent.yaml in the home and
// working directories when configFile is empty, and unmarshals the result.
// A missing search-path config file is not an error.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".pluginevent")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !stderrors.As(err, &notFound) {
			return nil, errors.NewConfigError("config", "reading config file", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.NewConfigError("config", "decoding config", err)
	}
	if cfg.Source == "" {
		return nil, errors.NewConfigError("config", "source must not be empty", errors.ErrInvalidInput)
	}
	return &cfg, nil
}
