// Package config loads console settings from a YAML file, EVALCONSOLE_*
// environment variables and defaults, and builds the zap logger.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	configName = "evalconsole"
	envPrefix  = "EVALCONSOLE"
)

// Config holds console settings.
type Config struct {
	Prompt       string `mapstructure:"prompt"`
	Prefix       string `mapstructure:"prefix"`
	HistoryFile  string `mapstructure:"history_file"`
	HistoryLimit int    `mapstructure:"history_limit"`
	ViMode       bool   `mapstructure:"vi_mode"`
	LogLevel     string `mapstructure:"log_level"`
	LogFormat    string `mapstructure:"log_format"`

	// Source is the config file that was read, empty when none was found.
	Source string `mapstructure:"-"`
}

// Defaults returns the built-in value of every setting.
func Defaults() map[string]any {
	history := ""
	if home, err := os.UserHomeDir(); err == nil {
		history = filepath.Join(home, ".evalconsole_history")
	}
	return map[string]any{
		"prompt":        "gremlin> ",
		"prefix":        "==> ",
		"history_file":  history,
		"history_limit": 1000,
		"vi_mode":       false,
		"log_level":     "warn",
		"log_format":    "console",
	}
}

// Load reads settings. An explicit path must exist; otherwise evalconsole.yaml
// is looked up in $HOME/.config/evalconsole and the working directory, and a
// missing file is not an error. Environment variables override the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", configName))
	}
	v.AddConfigPath(".")
	if path != "" {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, val := range Defaults() {
		v.SetDefault(key, val)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Source = v.ConfigFileUsed()
	return cfg, nil
}
