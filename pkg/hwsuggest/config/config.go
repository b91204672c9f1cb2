package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/hwsuggest/pkg/hwsuggest/logging"
	"github.com/spf13/viper"
)

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level" yaml:"level"`
	Path       string            `mapstructure:"path" yaml:"path"`
	Components map[string]string `mapstructure:"components" yaml:"components"`
	MaxSize    string            `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups int               `mapstructure:"max_backups" yaml:"max_backups"`
}

// Config represents the application configuration.
type Config struct {
	Output   string        `mapstructure:"output" yaml:"output"`
	Template string        `mapstructure:"template" yaml:"template"`
	Logging  LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// Configure sets up v with config file locations, environment binding and
// defaults, then reads the config file. A missing config file is not an error
// unless cfgFile names it explicitly.
//
// Config file locations (in order of precedence):
//   - cfgFile, when non-empty
//   - $XDG_CONFIG_HOME/hwsuggest/config.yaml
//   - $HOME/.config/hwsuggest/config.yaml
//
// Environment variables are prefixed with HWSUGGEST_ (e.g., HWSUGGEST_LOGGING_LEVEL).
func Configure(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(strings.TrimSuffix(ConfigFileName, filepath.Ext(ConfigFileName)))
		v.SetConfigType("yaml")

		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			v.AddConfigPath(filepath.Join(xdgConfigHome, AppName))
		}
		if homeDir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".config", AppName))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("output", DefaultOutput)
	v.SetDefault("template", DefaultTemplate)
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.path", "") // Empty means console only
	v.SetDefault("logging.components", map[string]string{})
	v.SetDefault("logging.max_size", DefaultLogMaxSize)
	v.SetDefault("logging.max_backups", DefaultLogMaxBackups)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &configFileNotFoundError) {
			// Config file not found is acceptable; we use defaults
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}

// Decode unmarshals the settings held by v into a Config.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	path, err := ExpandPath(cfg.Logging.Path)
	if err != nil {
		return nil, err
	}
	cfg.Logging.Path = path

	return &cfg, nil
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, AppName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", AppName), nil
}

// ConfigPath returns the path of the default config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// WriteDefault writes a default config file if none exists.
// It reports whether a new file was created.
func WriteDefault() (bool, error) {
	if err := EnsureConfigDir(); err != nil {
		return false, err
	}

	configPath, err := ConfigPath()
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(configPath); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to check config file: %w", err)
	}

	defaultConfig := fmt.Sprintf(`# hwsuggest configuration

# Summary printed to stdout after hardware.json is written.
# One of: pretty, plain, json, yaml, table, csv, markdown, template.
# Empty prints no summary.
output: "%s"

# Template used by the "template" output format.
template: %q

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: %s
  # Optional log file in addition to stderr, e.g. %s
  path: ""
  # Per-component log levels (report, hardware, output, cli), e.g.
  #   components:
  #     report: debug
  components: {}
  # The log file is rotated once it reaches max_size (e.g. 10MB, 512KiB),
  # keeping max_backups older files next to it.
  max_size: %s
  max_backups: %d
`, DefaultOutput, DefaultTemplate, DefaultLogLevel, logging.DefaultLogPath(),
		DefaultLogMaxSize, DefaultLogMaxBackups)

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return false, fmt.Errorf("failed to write default config: %w", err)
	}

	return true, nil
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}
