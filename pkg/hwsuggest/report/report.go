// Package report extracts memory estimates from the .dat file written by an
// Abaqus datacheck run.
//
// Every "M E M O R Y   E S T I M A T E" heading in the report is followed by
// five lines of column headers and units, then one data line of numeric fields:
//
//	                  M E M O R Y   E S T I M A T E
//
//	PROCESS      FLOATING PT       MINIMUM MEMORY        MEMORY TO
//	             OPERATIONS           REQUIRED          MINIMIZE I/O
//	            PER ITERATION           (MB)               (MB)
//
//	    1          1.21E+09              44                 210
//
// The fourth field of the data line is the memory (in MB) needed to minimize
// I/O for that analysis step.
//
// Basic usage:
//
//	estimates, err := report.ReadFile("job.dat")
//	if err != nil {
//	    return err
//	}
//	peak, err := report.Max(estimates)
package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/jamesainslie/hwsuggest/pkg/hwsuggest/logging"
)

// logger is the package-level logger for report scanning.
var logger = logging.Get("report")

const (
	// Marker is the letter-spaced heading that introduces a memory estimate section.
	Marker = "M E M O R Y   E S T I M A T E"

	// DataLineOffset is the distance from a marker line to its data line.
	DataLineOffset = 6

	// MemoryField is the index of the "memory to minimize I/O" field on a data line.
	MemoryField = 3
)

// Estimate is one memory estimate taken from a report section.
type Estimate struct {
	// Section is the 1-based ordinal of the section in the report.
	Section int `json:"section" yaml:"section"`

	// MarkerLine is the 1-based line number of the section heading.
	MarkerLine int `json:"marker_line" yaml:"marker_line"`

	// DataLine is the 1-based line number of the data line.
	DataLine int `json:"data_line" yaml:"data_line"`

	// MB is the memory needed to minimize I/O, in megabytes.
	MB float64 `json:"mb" yaml:"mb"`
}

// Scan extracts one estimate per marker from the report lines, in report order.
// It returns a *MalformedReportError if a data line is missing, too short or
// not numeric, or if the report has no markers at all.
func Scan(lines []string) ([]Estimate, error) {
	var estimates []Estimate

	for i, line := range lines {
		if !strings.Contains(line, Marker) {
			continue
		}

		dataIdx := i + DataLineOffset
		if dataIdx >= len(lines) {
			return nil, malformed(i+1, fmt.Sprintf("data line %d is past the end of the report", dataIdx+1), nil)
		}

		mb, err := parseDataLine(lines[dataIdx], dataIdx+1)
		if err != nil {
			return nil, err
		}

		est := Estimate{
			Section:    len(estimates) + 1,
			MarkerLine: i + 1,
			DataLine:   dataIdx + 1,
			MB:         mb,
		}
		logger.Debug("memory estimate", "section", est.Section, "line", est.DataLine, "mb", est.MB)
		estimates = append(estimates, est)
	}

	if len(estimates) == 0 {
		return nil, malformed(0, "", ErrNoEstimates)
	}

	return estimates, nil
}

// parseDataLine parses every field of a data line and returns the memory field.
func parseDataLine(line string, lineNo int) (float64, error) {
	fields := strings.Fields(line)
	if len(fields) <= MemoryField {
		return 0, malformed(lineNo, fmt.Sprintf("expected at least %d fields, got %d", MemoryField+1, len(fields)), nil)
	}

	values := make([]float64, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return 0, malformed(lineNo, fmt.Sprintf("field %d %q is not numeric", i+1, field), nil)
		}
		values[i] = v
	}

	mb := values[MemoryField]
	if math.IsNaN(mb) {
		return 0, malformed(lineNo, "memory estimate is NaN", nil)
	}

	return mb, nil
}

// ScanReader buffers all of r and scans it.
func ScanReader(r io.Reader) ([]Estimate, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}
	return Scan(lines)
}

// ReadFile reads the report at path and scans it.
// The file is closed before the content is scanned.
func ReadFile(path string) ([]Estimate, error) {
	lines, err := loadFile(path)
	if err != nil {
		return nil, err
	}

	logger.Debug("report loaded", "path", path, "lines", len(lines))
	return Scan(lines)
}

func loadFile(path string) (lines []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReportNotFound, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing report: %w", closeErr)
		}
	}()

	lines, err = readLines(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReportNotFound, path, err)
	}
	return lines, nil
}

// newlines folds \r\n and bare \r line endings into \n.
var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// readLines buffers all of r and splits it into lines without their
// terminators. Lines have no length limit.
func readLines(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	return splitLines(string(data)), nil
}

// splitLines splits s on \n, \r\n or \r. A final terminator does not start
// another line.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(newlines.Replace(s), "\n")
	return strings.Split(s, "\n")
}

// Max returns the largest estimate. Ties keep the earliest section.
func Max(estimates []Estimate) (Estimate, error) {
	if len(estimates) == 0 {
		return Estimate{}, malformed(0, "", ErrNoEstimates)
	}

	peak := estimates[0]
	for _, est := range estimates[1:] {
		if est.MB > peak.MB {
			peak = est
		}
	}
	return peak, nil
}
