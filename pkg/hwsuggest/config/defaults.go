// Package config provides configuration management for hwsuggest.
package config

import (
	"github.com/jamesainslie/hwsuggest/pkg/hwsuggest/logging"
	"github.com/jamesainslie/hwsuggest/pkg/hwsuggest/output"
)

// Default configuration values for hwsuggest.
const (
	// AppName names the config, state and log directories.
	AppName = "hwsuggest"

	// EnvPrefix is the prefix for environment variable overrides.
	EnvPrefix = "HWSUGGEST"

	// ConfigFileName is the name of the config file inside ConfigDir.
	ConfigFileName = "config.yaml"

	// DefaultOutput is the summary format printed to stdout.
	// Empty means no summary; the run is reported through logs only.
	DefaultOutput = ""

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"

	// DefaultLogMaxSize is the log file size that triggers rotation.
	DefaultLogMaxSize = "10MB"

	// DefaultLogMaxBackups is the number of rotated log files kept.
	DefaultLogMaxBackups = logging.DefaultMaxBackups

	// DefaultTemplate is used by the template output format when none is configured.
	DefaultTemplate = output.DefaultTemplate
)
