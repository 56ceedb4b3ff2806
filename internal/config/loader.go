package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the prefix for every environment variable override.
const envPrefix = "CSVWIZARD"

// configFileName is the base name searched for in the user config directory
// and the working directory.
const configFileName = "csvwizard.yaml"

// Loader handles configuration loading using Viper.
//
// Create with [NewLoader], then call [Loader.Load] for the standard search
// order or [Loader.LoadFromFile] for an explicit file.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new [Loader] with defaults and environment bindings applied.
func NewLoader() *Loader {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, DefaultConfig())

	// Short aliases for the settings people override most often.
	_ = v.BindEnv("api.base_url", envPrefix+"_API_BASE_URL", envPrefix+"_BASE_URL")
	_ = v.BindEnv("log.level", envPrefix+"_LOG_LEVEL")

	return &Loader{v: v}
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("api.base_url", cfg.API.BaseURL)
	v.SetDefault("api.prefix", cfg.API.Prefix)
	v.SetDefault("api.consolidate_endpoint", cfg.API.ConsolidateEndpoint)
	v.SetDefault("api.timeout", cfg.API.Timeout)
	v.SetDefault("steps", cfg.Steps)
	v.SetDefault("steps_manifest", cfg.StepsManifest)
	v.SetDefault("mapping.standard_columns", cfg.Mapping.StandardColumns)
	v.SetDefault("output.download_dir", cfg.Output.DownloadDir)
	v.SetDefault("output.download_name", cfg.Output.DownloadName)
	v.SetDefault("output.color", cfg.Output.Color)
	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.upload_dir", cfg.Server.UploadDir)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.development", cfg.Log.Development)
}

// Load loads configuration following the documented priority order.
//
// A missing config file is not an error; defaults and environment variables
// still apply. A file that exists but cannot be parsed is an error.
func (l *Loader) Load() (*Config, error) {
	if path := l.findConfigFile(); path != "" {
		l.v.SetConfigFile(path)
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	return l.unmarshal()
}

// LoadFromFile loads configuration from the given YAML file, layered over
// the defaults. Environment variables still take priority.
func (l *Loader) LoadFromFile(path string) (*Config, error) {
	l.v.SetConfigFile(path)
	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return l.unmarshal()
}

func (l *Loader) unmarshal() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// findConfigFile returns the first config file found in priority order, or
// an empty string when none exists.
func (l *Loader) findConfigFile() string {
	if path := os.Getenv(envPrefix + "_CONFIG_PATH"); path != "" {
		return path
	}

	var candidates []string
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "csvwizard", configFileName))
	}
	candidates = append(candidates, configFileName)

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// Validate checks the settings that every command relies on.
//
// Step identity is validated by the wizard package when the step list is
// built, because the list may come from a manifest instead of this config.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url must not be empty")
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative, got %s", c.API.Timeout)
	}
	if c.Output.DownloadName == "" {
		return errors.New("output.download_name must not be empty")
	}
	if strings.ContainsAny(c.Output.DownloadName, `/\`) {
		return fmt.Errorf("output.download_name must be a file name, got %q", c.Output.DownloadName)
	}
	return nil
}
