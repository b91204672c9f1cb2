// Package logging provides component loggers for hwsuggest built on
// charmbracelet/log.
//
// Console output always goes to a writer (stderr unless configured
// otherwise). A log file can be added with Config.Path, which is useful
// when hwsuggest runs as one step of a larger batch pipeline. The file is
// shared by concurrent runs and rotated by size (see RotationConfig).
//
// Basic usage:
//
//	if err := logging.Init(logging.Config{Level: "info"}); err != nil {
//	    return err
//	}
//	defer logging.Close()
//
//	logger := logging.Get("report")
//	logger.Info("report loaded", "path", path)
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// Level represents a logging level.
type Level int

// Log levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// toCharmLevel converts our Level to charmbracelet/log level.
func (l Level) toCharmLevel() log.Level {
	switch l {
	case LevelDebug:
		return log.DebugLevel
	case LevelInfo:
		return log.InfoLevel
	case LevelWarn:
		return log.WarnLevel
	case LevelError:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// ErrInvalidLevel is returned when an invalid log level string is provided.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel parses a string into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
	}
}

// Config configures the logging system.
type Config struct {
	// Level is the default log level (debug, info, warn, error).
	Level string

	// Path is an optional log file. Empty disables file output.
	Path string

	// Rotation bounds the size of the log file at Path.
	Rotation RotationConfig

	// Components maps component names to their log levels.
	Components map[string]string

	// Console receives console output. Nil means os.Stderr.
	Console io.Writer
}

// Logger wraps charmbracelet/log with component identification.
// It writes to the console and, when configured, to a log file.
type Logger struct {
	console   *log.Logger
	file      *log.Logger
	component string
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.log(LevelDebug, msg, args...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...interface{}) {
	l.log(LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.log(LevelWarn, msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...interface{}) {
	l.log(LevelError, msg, args...)
}

// Component returns the component name the logger was created for.
func (l *Logger) Component() string {
	return l.component
}

func (l *Logger) log(level Level, msg string, args ...interface{}) {
	c, f := l.targets()
	logTo(c, level, msg, args...)
	if f != nil {
		logTo(f, level, msg, args...)
	}
}

// targets returns the underlying loggers. Package-level loggers obtained
// before Init are refreshed in place, so they pick up the current state.
func (l *Logger) targets() (*log.Logger, *log.Logger) {
	globalState.mu.RLock()
	defer globalState.mu.RUnlock()
	return l.console, l.file
}

// logTo writes a log message to the given logger at the specified level.
func logTo(logger *log.Logger, level Level, msg string, args ...interface{}) {
	switch level {
	case LevelDebug:
		logger.Debug(msg, args...)
	case LevelInfo:
		logger.Info(msg, args...)
	case LevelWarn:
		logger.Warn(msg, args...)
	case LevelError:
		logger.Error(msg, args...)
	}
}

// With returns a new logger with additional context.
func (l *Logger) With(args ...interface{}) *Logger {
	c, f := l.targets()
	newLogger := &Logger{
		console:   c.With(args...),
		component: l.component,
	}
	if f != nil {
		newLogger.file = f.With(args...)
	}
	return newLogger
}

// state holds the global logging state.
type state struct {
	mu          sync.RWMutex
	initialized bool
	file        *rotatingFile
	console     io.Writer
	level       Level
	components  map[string]Level
	loggers     map[string]*Logger
}

var globalState = &state{
	loggers:    make(map[string]*Logger),
	components: make(map[string]Level),
}

// Init initializes the logging system with the given configuration.
// Before Init is called, all loggers write to io.Discard.
// Loggers obtained earlier with Get are reconfigured in place.
func Init(cfg Config) error {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}

	components := make(map[string]Level, len(cfg.Components))
	for comp, lvl := range cfg.Components {
		parsedLevel, err := ParseLevel(lvl)
		if err != nil {
			return fmt.Errorf("parsing level for component %s: %w", comp, err)
		}
		components[comp] = parsedLevel
	}

	var file *rotatingFile
	if cfg.Path != "" {
		file, err = openRotatingFile(cfg.Path, cfg.Rotation)
		if err != nil {
			return err
		}
	}

	console := cfg.Console
	if console == nil {
		console = os.Stderr
	}

	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if globalState.file != nil {
		if err := globalState.file.Close(); err != nil {
			if file != nil {
				_ = file.Close()
			}
			return fmt.Errorf("closing existing log file: %w", err)
		}
	}

	globalState.file = file
	globalState.console = console
	globalState.level = level
	globalState.components = components
	globalState.initialized = true

	for component, logger := range globalState.loggers {
		configure(logger, component)
	}

	return nil
}

// Get returns the logger for the given component.
// If the component has a level override in the config, it uses that level.
// Otherwise, it uses the default level.
func Get(component string) *Logger {
	globalState.mu.RLock()
	if logger, ok := globalState.loggers[component]; ok {
		globalState.mu.RUnlock()
		return logger
	}
	globalState.mu.RUnlock()

	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if logger, ok := globalState.loggers[component]; ok {
		return logger
	}

	logger := &Logger{component: component}
	configure(logger, component)
	globalState.loggers[component] = logger
	return logger
}

// configure points logger at the current outputs.
// Must be called with globalState.mu held.
func configure(logger *Logger, component string) {
	level := globalState.level
	if compLevel, ok := globalState.components[component]; ok {
		level = compLevel
	}

	if !globalState.initialized {
		logger.console = log.NewWithOptions(io.Discard, log.Options{
			Level:  level.toCharmLevel(),
			Prefix: component,
		})
		logger.file = nil
		return
	}

	logger.console = log.NewWithOptions(globalState.console, log.Options{
		Level:           level.toCharmLevel(),
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Prefix:          component,
	})

	logger.file = nil
	if globalState.file != nil {
		logger.file = log.NewWithOptions(globalState.file, log.Options{
			Level:           level.toCharmLevel(),
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          component,
			Formatter:       log.LogfmtFormatter,
		})
	}
}

// Close flushes and closes the log file and silences all loggers.
func Close() error {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if !globalState.initialized {
		return nil
	}

	var closeErr error
	if globalState.file != nil {
		closeErr = globalState.file.Close()
		globalState.file = nil
	}

	globalState.initialized = false
	globalState.level = LevelInfo
	globalState.components = make(map[string]Level)
	for component, logger := range globalState.loggers {
		configure(logger, component)
	}

	return closeErr
}

// DefaultLogPath returns the default log file path,
// $XDG_STATE_HOME/hwsuggest/hwsuggest.log.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, "hwsuggest", "hwsuggest.log")
}

// DefaultConfig returns a console-only configuration at info level.
func DefaultConfig() Config {
	return Config{
		Level: "info",
	}
}
