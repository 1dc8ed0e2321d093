// Package config loads ddgtran settings from an optional YAML file,
// DDGTRAN_* environment variables and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/valpere/ddgtran/internal/session"
	"github.com/valpere/ddgtran/internal/translator"
)

const (
	EnvPrefix = "DDGTRAN"
	fileName  = ".ddgtran"

	DefaultDBPath      = "./data/ddgtran.db"
	DefaultConcurrency = 4
	DefaultLogLevel    = "warn"
)

type Config struct {
	translator.ServiceConfig `mapstructure:",squash"`

	DB          string `mapstructure:"db"`
	Concurrency int    `mapstructure:"concurrency"`
	LogLevel    string `mapstructure:"log_level"`
}

// SetDefaults registers every key so environment variables are picked up by
// Unmarshal even when no config file exists.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("base_url", session.DefaultBaseURL)
	v.SetDefault("user_agent", session.DefaultUserAgent)
	v.SetDefault("timeout", session.DefaultTimeout)
	v.SetDefault("db", DefaultDBPath)
	v.SetDefault("concurrency", DefaultConcurrency)
	v.SetDefault("log_level", DefaultLogLevel)
}

// Init points v at cfgFile, or at ~/.ddgtran.yaml and ./.ddgtran.yaml when
// cfgFile is empty, and reads it. A missing default file is not an error.
// It returns the path of the file used, if any.
func Init(v *viper.Viper, cfgFile string) (string, error) {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(fileName)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read config: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = session.DefaultTimeout
	}
	return &cfg, nil
}
