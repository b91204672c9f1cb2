package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/jamesainslie/hwsuggest/pkg/hwsuggest/logging"
	"github.com/jamesainslie/hwsuggest/pkg/hwsuggest/output"
	"github.com/jamesainslie/hwsuggest/pkg/hwsuggest/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Note: these tests change the working directory and must not run in parallel.

// isolate points HOME at an empty directory and moves into a fresh working
// directory, which it returns.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")
	work := t.TempDir()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(work))
	t.Cleanup(func() { _ = os.Chdir(prev) })
	return work
}

// runCLI executes a fresh command tree with args.
func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err = cmd.Execute()
	_ = logging.Close()
	return out.String(), errOut.String(), err
}

// writeReport writes a datacheck report with one estimate section per value.
func writeReport(t *testing.T, dir, name string, values ...float64) string {
	t.Helper()
	lines := []string{
		"   Abaqus 2023                                  Date 04-Mar-2024   Time 10:12:44",
		"",
	}
	for i, v := range values {
		lines = append(lines,
			"                      M E M O R Y   E S T I M A T E",
			"",
			" PROCESS      FLOATING PT       MINIMUM MEMORY        MEMORY TO",
			"              OPERATIONS           REQUIRED          MINIMIZE I/O",
			"             PER ITERATION           (MB)               (MB)",
			"",
			fmt.Sprintf("     %d          1.21E+09              44            %s", i+1,
				strconv.FormatFloat(v, 'f', -1, 64)),
			"",
		)
	}
	return writeLines(t, dir, name, lines)
}

func writeLines(t *testing.T, dir, name string, lines []string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func readHardware(t *testing.T, dir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, output.HardwareFile))
	require.NoError(t, err)
	return string(data)
}

func assertNoHardware(t *testing.T, dir string) {
	t.Helper()
	_, err := os.Stat(filepath.Join(dir, output.HardwareFile))
	assert.True(t, os.IsNotExist(err), "hardware.json must not be written")
}

func TestSuggest_EndToEnd(t *testing.T) {
	work := isolate(t)
	writeReport(t, work, "job.dat", 210, 45000.0, 1200)

	stdout, stderr, err := runCLI(t, "job.dat")
	require.NoError(t, err)
	assert.Empty(t, stdout, "no summary unless -o is given")

	want := "{\n" +
		"    \"code\": \"kyanite\",\n" +
		"    \"corecount\": 8,\n" +
		"    \"memory\": 64000\n" +
		"}"
	assert.Equal(t, want, readHardware(t, work))

	assert.Contains(t, stderr, "maximum memory estimate to minimize I/O")
	assert.Contains(t, stderr, "file=job.dat")
	assert.Contains(t, stderr, "mb=45000")
	assert.Contains(t, stderr, "suggested coretype")
	assert.Contains(t, stderr, "coretype information written")
	assert.Contains(t, stderr, "run=")
	assert.NotContains(t, stderr, "no coretype suggestion found")
}

func TestSuggest_SampleReport(t *testing.T) {
	sample, err := filepath.Abs(filepath.Join("testdata", "job.dat"))
	require.NoError(t, err)
	work := isolate(t)

	stdout, _, err := runCLI(t, "-o", "plain", sample)
	require.NoError(t, err)

	assert.Contains(t, readHardware(t, work), `"corecount": 4,`)
	assert.Contains(t, stdout, "18234")
}

func TestSuggest_Fallback(t *testing.T) {
	work := isolate(t)
	writeReport(t, work, "big.dat", 600000)

	_, stderr, err := runCLI(t, "big.dat")
	require.NoError(t, err)

	var tier map[string]any
	require.NoError(t, json.Unmarshal([]byte(readHardware(t, work)), &tier))
	assert.Equal(t, map[string]any{"code": "kyanite", "corecount": 64.0, "memory": 512000.0}, tier)

	assert.Contains(t, stderr, "no coretype suggestion found, using default")
}

func TestSuggest_ExactTierMemoryFallsThrough(t *testing.T) {
	work := isolate(t)
	writeReport(t, work, "job.dat", 8000)

	_, _, err := runCLI(t, "job.dat")
	require.NoError(t, err)
	assert.Contains(t, readHardware(t, work), `"corecount": 2,`)
}

func TestSuggest_OverwritesExisting(t *testing.T) {
	work := isolate(t)
	writeReport(t, work, "job.dat", 100)
	require.NoError(t, os.WriteFile(filepath.Join(work, output.HardwareFile), []byte("old"), 0o644))

	_, _, err := runCLI(t, "job.dat")
	require.NoError(t, err)
	assert.Contains(t, readHardware(t, work), `"corecount": 1,`)
}

func TestSuggest_Failures(t *testing.T) {
	tests := []struct {
		name     string
		prepare  func(t *testing.T, dir string)
		args     []string
		wantCode int
	}{
		{
			name:     "missing report",
			args:     []string{"missing.dat"},
			wantCode: ExitNotFound,
		},
		{
			name: "report is a directory",
			prepare: func(t *testing.T, dir string) {
				require.NoError(t, os.Mkdir(filepath.Join(dir, "job.dat"), 0o755))
			},
			args:     []string{"job.dat"},
			wantCode: ExitNotFound,
		},
		{
			name: "no estimate sections",
			prepare: func(t *testing.T, dir string) {
				writeLines(t, dir, "job.dat", []string{"   Abaqus 2023", "", " END OF STEP"})
			},
			args:     []string{"job.dat"},
			wantCode: ExitMalformed,
		},
		{
			name: "empty report",
			prepare: func(t *testing.T, dir string) {
				writeLines(t, dir, "job.dat", nil)
			},
			args:     []string{"job.dat"},
			wantCode: ExitMalformed,
		},
		{
			name: "truncated section",
			prepare: func(t *testing.T, dir string) {
				writeLines(t, dir, "job.dat", []string{
					"                      M E M O R Y   E S T I M A T E",
					"",
					" PROCESS      FLOATING PT",
				})
			},
			args:     []string{"job.dat"},
			wantCode: ExitMalformed,
		},
		{
			name: "non-numeric data line",
			prepare: func(t *testing.T, dir string) {
				path := writeReport(t, dir, "job.dat", 45000)
				data, err := os.ReadFile(path)
				require.NoError(t, err)
				require.NoError(t, os.WriteFile(path, bytes.Replace(data, []byte("1.21E+09"), []byte("n/a"), 1), 0o644))
			},
			args:     []string{"job.dat"},
			wantCode: ExitMalformed,
		},
		{
			name:     "no arguments",
			args:     []string{},
			wantCode: ExitUsage,
		},
		{
			name:     "too many arguments",
			args:     []string{"a.dat", "b.dat"},
			wantCode: ExitUsage,
		},
		{
			name:     "unknown flag",
			args:     []string{"--bogus", "job.dat"},
			wantCode: ExitUsage,
		},
		{
			name: "unknown output format",
			prepare: func(t *testing.T, dir string) {
				writeReport(t, dir, "job.dat", 45000)
			},
			args:     []string{"-o", "xml", "job.dat"},
			wantCode: ExitUsage,
		},
		{
			name: "invalid template",
			prepare: func(t *testing.T, dir string) {
				writeReport(t, dir, "job.dat", 45000)
			},
			args:     []string{"-o", "template", "--template", "{{.Broken", "job.dat"},
			wantCode: ExitUsage,
		},
		{
			name: "verbose and quiet together",
			prepare: func(t *testing.T, dir string) {
				writeReport(t, dir, "job.dat", 45000)
			},
			args:     []string{"-v", "-q", "job.dat"},
			wantCode: ExitUsage,
		},
		{
			name: "missing config file",
			prepare: func(t *testing.T, dir string) {
				writeReport(t, dir, "job.dat", 45000)
			},
			args:     []string{"--config", "nope.yaml", "job.dat"},
			wantCode: ExitUsage,
		},
		{
			name: "invalid log rotation size",
			prepare: func(t *testing.T, dir string) {
				t.Setenv("HWSUGGEST_LOGGING_MAX_SIZE", "lots")
				writeReport(t, dir, "job.dat", 45000)
			},
			args:     []string{"job.dat"},
			wantCode: ExitUsage,
		},
		{
			name: "hardware file cannot be replaced",
			prepare: func(t *testing.T, dir string) {
				writeReport(t, dir, "job.dat", 45000)
				require.NoError(t, os.Mkdir(filepath.Join(dir, output.HardwareFile), 0o755))
			},
			args:     []string{"job.dat"},
			wantCode: ExitWrite,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			work := isolate(t)
			if tt.prepare != nil {
				tt.prepare(t, work)
			}

			_, _, err := runCLI(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, classifyError(err), "error: %v", err)

			if tt.wantCode != ExitWrite {
				assertNoHardware(t, work)
			}
		})
	}
}

func TestSuggest_JSONSummary(t *testing.T) {
	work := isolate(t)
	writeReport(t, work, "job.dat", 210, 45000)

	stdout, _, err := runCLI(t, "-o", "json", "job.dat")
	require.NoError(t, err)

	var doc struct {
		Source    string  `json:"source"`
		MaxMemory float64 `json:"max_memory_mb"`
		Suggested struct {
			CoreCount int `json:"corecount"`
		} `json:"suggested"`
		Estimates    []report.Estimate `json:"estimates"`
		HardwareFile string            `json:"hardware_file"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, "job.dat", doc.Source)
	assert.Equal(t, 45000.0, doc.MaxMemory)
	assert.Equal(t, 8, doc.Suggested.CoreCount)
	assert.Len(t, doc.Estimates, 2)
	assert.Equal(t, output.HardwareFile, doc.HardwareFile)
}

func TestSuggest_TemplateSummary(t *testing.T) {
	work := isolate(t)
	writeReport(t, work, "job.dat", 45000)

	stdout, _, err := runCLI(t, "-o", "template", "--template", "{{.Suggested.CoreCount}} {{mb .MaxMemory}}", "job.dat")
	require.NoError(t, err)
	assert.Equal(t, "8 45,000 MB", stdout)
}

func TestSuggest_OutputFromEnv(t *testing.T) {
	work := isolate(t)
	writeReport(t, work, "job.dat", 45000)
	t.Setenv("HWSUGGEST_OUTPUT", "plain")

	stdout, _, err := runCLI(t, "job.dat")
	require.NoError(t, err)
	assert.Contains(t, stdout, "corecount")
}

func TestSuggest_OutputFromConfigFile(t *testing.T) {
	work := isolate(t)
	writeReport(t, work, "job.dat", 45000)
	cfgPath := filepath.Join(work, "custom.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output: template\ntemplate: \"{{.Suggested.Memory}}\"\n"), 0o644))

	stdout, _, err := runCLI(t, "--config", cfgPath, "job.dat")
	require.NoError(t, err)
	assert.Equal(t, "64000", stdout)
}

func TestSuggest_LogLevels(t *testing.T) {
	t.Run("quiet hides info", func(t *testing.T) {
		work := isolate(t)
		writeReport(t, work, "job.dat", 45000)

		_, stderr, err := runCLI(t, "-q", "job.dat")
		require.NoError(t, err)
		assert.NotContains(t, stderr, "suggested coretype")
	})

	t.Run("quiet keeps fallback warning", func(t *testing.T) {
		work := isolate(t)
		writeReport(t, work, "job.dat", 900000)

		_, stderr, err := runCLI(t, "-q", "job.dat")
		require.NoError(t, err)
		assert.Contains(t, stderr, "no coretype suggestion found")
	})

	t.Run("verbose shows each estimate", func(t *testing.T) {
		work := isolate(t)
		writeReport(t, work, "job.dat", 210, 45000)

		_, stderr, err := runCLI(t, "-v", "job.dat")
		require.NoError(t, err)
		assert.Equal(t, 2, strings.Count(stderr, "memory estimate section="))
		assert.Contains(t, stderr, "tier selected")
	})
}

func TestSuggest_LogFile(t *testing.T) {
	work := isolate(t)
	writeReport(t, work, "job.dat", 45000)

	logPath := filepath.Join(work, "logs", "hwsuggest.log")
	t.Setenv("HWSUGGEST_LOGGING_PATH", logPath)
	t.Setenv("HWSUGGEST_LOGGING_MAX_SIZE", "1KB")
	t.Setenv("HWSUGGEST_LOGGING_MAX_BACKUPS", "2")

	for i := 0; i < 10; i++ {
		_, _, err := runCLI(t, "job.dat")
		require.NoError(t, err)
	}

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "coretype information written")
	assert.LessOrEqual(t, len(data), 1000)

	assert.FileExists(t, logPath+".1")
	assert.FileExists(t, logPath+".2")
	assert.NoFileExists(t, logPath+".3")
}

func TestTiersCmd(t *testing.T) {
	isolate(t)

	stdout, _, err := runCLI(t, "tiers")
	require.NoError(t, err)
	assert.Contains(t, stdout, "CORES")
	assert.Contains(t, stdout, "512,000 MB")
	assert.Contains(t, stdout, "Default:")

	stdout, _, err = runCLI(t, "tiers", "-o", "csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 10)
	assert.NotContains(t, stdout, "*")

	_, _, err = runCLI(t, "tiers", "extra")
	assert.Equal(t, ExitUsage, classifyError(err))
}

func TestVersionCmd(t *testing.T) {
	isolate(t)

	stdout, _, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "hwsuggest dev")
	assert.Contains(t, stdout, "go:")
}

func TestConfigCmd(t *testing.T) {
	isolate(t)
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	wantPath := filepath.Join(xdg, "hwsuggest", "config.yaml")

	stdout, _, err := runCLI(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, wantPath+"\n", stdout)

	stdout, _, err = runCLI(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Created default config file")
	assert.FileExists(t, wantPath)

	stdout, _, err = runCLI(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "already exists")

	t.Setenv("HWSUGGEST_LOGGING_LEVEL", "warn")
	stdout, _, err = runCLI(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Config file: "+wantPath)
	assert.Contains(t, stdout, "level: warn")
	assert.Contains(t, stdout, "HWSUGGEST_LOGGING_LEVEL=warn")
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"not found", fmt.Errorf("reading report: %w: %w", report.ErrReportNotFound, os.ErrNotExist), ExitNotFound},
		{"malformed", fmt.Errorf("reading report: %w", &report.MalformedReportError{Line: 7, Reason: "too few fields"}), ExitMalformed},
		{"write", &output.WriteError{Path: "hardware.json", Err: os.ErrPermission}, ExitWrite},
		{"unknown format", fmt.Errorf("%w: xml", output.ErrUnknownFormat), ExitUsage},
		{"usage", &usageError{err: errors.New("accepts 1 arg(s), received 0")}, ExitUsage},
		{"other", errors.New("boom"), ExitInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyError(tt.err))
		})
	}
}
