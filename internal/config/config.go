// Package config loads groundwork's user configuration from the standard
// config directory, with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "GROUNDWORK"

// Config is the effective user configuration.
type Config struct {
	// LogLevel sets the minimum log level (trace, debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`
	// StatePath locates the manifest database.
	StatePath string `mapstructure:"state_path"`
	// NoColor disables styled terminal output.
	NoColor bool `mapstructure:"no_color"`
	// Templates configures template discovery.
	Templates TemplatesConfig `mapstructure:"templates"`
	// Render configures default rendering behavior.
	Render RenderConfig `mapstructure:"render"`
}

// TemplatesConfig configures template discovery.
type TemplatesConfig struct {
	// Paths lists extra template directories searched before the builtins.
	Paths []string `mapstructure:"paths"`
}

// RenderConfig configures default rendering behavior.
type RenderConfig struct {
	// Fallback replaces unresolved placeholders when set.
	Fallback string `mapstructure:"fallback"`
	// Strict turns resolution warnings into errors.
	Strict bool `mapstructure:"strict"`
	// Backup writes a .bak copy before overwriting managed files.
	Backup bool `mapstructure:"backup"`
}

// Load reads configuration from the given file, or from the default search
// locations when path is empty. A missing default config file is not an
// error; a missing explicit one is.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(".groundwork"))
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "groundwork"))
		}
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("state_path", DefaultStatePath())
	v.SetDefault("no_color", false)
	v.SetDefault("templates.paths", []string{})
	v.SetDefault("render.fallback", "")
	v.SetDefault("render.strict", false)
	v.SetDefault("render.backup", true)
}

// DefaultStatePath returns the manifest database location used when neither
// config nor flags override it.
func DefaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".groundwork", "groundwork.db")
	}
	return filepath.Join(home, ".local", "share", "groundwork", "groundwork.db")
}
