package logging_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jamesainslie/hwsuggest/pkg/hwsuggest/logging"
)

// TestParseLevel tests parsing of log level strings.
func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    logging.Level
		wantErr bool
	}{
		{input: "debug", want: logging.LevelDebug},
		{input: "DEBUG", want: logging.LevelDebug},
		{input: "info", want: logging.LevelInfo},
		{input: "", want: logging.LevelInfo},
		{input: "warn", want: logging.LevelWarn},
		{input: "warning", want: logging.LevelWarn},
		{input: " error ", want: logging.LevelError},
		{input: "verbose", want: logging.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := logging.ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, logging.ErrInvalidLevel) {
				t.Errorf("ParseLevel(%q) error = %v, want ErrInvalidLevel", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLevel_String(t *testing.T) {
	tests := map[logging.Level]string{
		logging.LevelDebug: "debug",
		logging.LevelInfo:  "info",
		logging.LevelWarn:  "warn",
		logging.LevelError: "error",
		logging.Level(42):  "unknown",
	}
	for level, want := range tests {
		if got := level.String(); got != want {
			t.Errorf("Level(%d).String() = %q, want %q", int(level), got, want)
		}
	}
}

// Note: the tests below modify global state and must not run in parallel.

func TestGet_SilentBeforeInit(t *testing.T) {
	if err := logging.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	logger := logging.Get("silent")
	// Must not panic or write anywhere.
	logger.Info("dropped")
	logger.Error("dropped")
}

func TestInit_ConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	if err := logging.Init(logging.Config{Level: "info", Console: &buf}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { _ = logging.Close() })

	logger := logging.Get("report")
	logger.Debug("hidden detail")
	logger.Info("report loaded", "lines", 42)
	logger.Warn("fallback used")

	out := buf.String()
	if strings.Contains(out, "hidden detail") {
		t.Errorf("debug message written at info level: %q", out)
	}
	if !strings.Contains(out, "report loaded") || !strings.Contains(out, "lines=42") {
		t.Errorf("info message missing: %q", out)
	}
	if !strings.Contains(out, "fallback used") {
		t.Errorf("warn message missing: %q", out)
	}
	if !strings.Contains(out, "report") {
		t.Errorf("component prefix missing: %q", out)
	}
}

func TestInit_ReconfiguresExistingLoggers(t *testing.T) {
	_ = logging.Close()
	early := logging.Get("early")

	var buf bytes.Buffer
	if err := logging.Init(logging.Config{Level: "debug", Console: &buf}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { _ = logging.Close() })

	early.Debug("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Errorf("logger obtained before Init was not reconfigured: %q", buf.String())
	}
}

func TestInit_ComponentOverride(t *testing.T) {
	var buf bytes.Buffer
	cfg := logging.Config{
		Level:      "warn",
		Console:    &buf,
		Components: map[string]string{"hardware": "debug"},
	}
	if err := logging.Init(cfg); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { _ = logging.Close() })

	logging.Get("hardware").Debug("tier considered")
	logging.Get("output").Info("not shown")

	out := buf.String()
	if !strings.Contains(out, "tier considered") {
		t.Errorf("component override ignored: %q", out)
	}
	if strings.Contains(out, "not shown") {
		t.Errorf("default level ignored: %q", out)
	}
}

func TestInit_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  logging.Config
	}{
		{name: "invalid level", cfg: logging.Config{Level: "loud"}},
		{name: "invalid component level", cfg: logging.Config{Level: "info", Components: map[string]string{"cli": "loud"}}},
		{name: "log path is a directory", cfg: logging.Config{Level: "info", Path: t.TempDir()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := logging.Init(tt.cfg); err == nil {
				_ = logging.Close()
				t.Fatal("Init() error = nil, want error")
			}
		})
	}
}

func TestInit_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "hwsuggest.log")

	var console bytes.Buffer
	if err := logging.Init(logging.Config{Level: "info", Path: path, Console: &console}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	logging.Get("cli").With("run", "abc123").Info("hardware file written", "path", "hardware.json")

	if err := logging.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	content := string(data)
	for _, want := range []string{"hardware file written", "run=abc123", "path=hardware.json"} {
		if !strings.Contains(content, want) {
			t.Errorf("log file missing %q: %q", want, content)
		}
	}
	if !strings.Contains(console.String(), "hardware file written") {
		t.Errorf("console missing message: %q", console.String())
	}
}

func TestClose_Idempotent(t *testing.T) {
	if err := logging.Close(); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	if err := logging.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := logging.DefaultConfig()
	if cfg.Level != "info" {
		t.Errorf("Level = %q, want info", cfg.Level)
	}
	if cfg.Path != "" {
		t.Errorf("Path = %q, want empty", cfg.Path)
	}
	if !strings.HasSuffix(logging.DefaultLogPath(), filepath.Join("hwsuggest", "hwsuggest.log")) {
		t.Errorf("DefaultLogPath() = %q", logging.DefaultLogPath())
	}
}
