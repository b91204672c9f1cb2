package output

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/hwsuggest/pkg/hwsuggest/hardware"
)

// PrettyFormatter formats output with colors and styling using lipgloss.
// It is meant for a terminal.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	if r.HasSuggestion() {
		w.WriteString(f.formatHeader(r))
		w.WriteString("\n")
	}

	w.WriteString(f.formatTable(r))
	w.WriteString(f.formatFooter(r))
	w.WriteString("\n")

	return nil
}

// formatHeader builds the header box with the report and its peak estimate.
func (f *PrettyFormatter) formatHeader(r *Result) string {
	var lines []string

	if r.Source != "" {
		lines = append(lines, fmt.Sprintf("%s %s",
			LabelStyle.Render("Report:"), ValueStyle.Render(r.Source)))
	}

	peak := fmt.Sprintf("%s %s", LabelStyle.Render("Memory to minimize I/O:"),
		MemoryStyle.Render(formatMB(r.MaxMemory)))
	if section := peakSection(r); section > 0 {
		peak += MutedStyle.Render(fmt.Sprintf("  (section %d of %d)", section, len(r.Estimates)))
	}
	lines = append(lines, peak)

	return HeaderBox.Render(strings.Join(lines, "\n"))
}

// formatTable lists the tiers with the selected one highlighted.
func (f *PrettyFormatter) formatTable(r *Result) string {
	tiers := r.tierRows()
	if len(tiers) == 0 {
		return MutedStyle.Render("  No tiers available") + "\n"
	}

	coresWidth, memWidth := len("CORES"), len("MEMORY")
	for _, t := range tiers {
		coresWidth = max(coresWidth, len(strconv.Itoa(t.CoreCount)))
		memWidth = max(memWidth, len(formatMB(float64(t.Memory))))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("    %s  %s  %s\n",
		TableHeaderStyle.Render("CODE"),
		TableHeaderStyle.Render(padLeft("CORES", coresWidth)),
		TableHeaderStyle.Render(padLeft("MEMORY", memWidth))))

	for _, t := range tiers {
		row := fmt.Sprintf("%s  %s  %s",
			t.Code,
			padLeft(strconv.Itoa(t.CoreCount), coresWidth),
			padLeft(formatMB(float64(t.Memory)), memWidth))
		if r.isSelected(t) {
			sb.WriteString("  > " + SelectedStyle.Render(row) + "\n")
			continue
		}
		sb.WriteString("    " + ValueStyle.Render(row) + "\n")
	}

	return sb.String()
}

// formatFooter builds the footer box with the suggestion or the default tier.
func (f *PrettyFormatter) formatFooter(r *Result) string {
	if !r.HasSuggestion() {
		content := fmt.Sprintf("%s %s", LabelStyle.Render("Default:"),
			ValueStyle.Render(hardware.Default().String()))
		return FooterBox.Render(content)
	}

	var lines []string
	if r.Fallback {
		lines = append(lines,
			fmt.Sprintf("%s %s", LabelStyle.Render("Suggested:"), WarningStyle.Render(r.Suggested.String())),
			WarningStyle.Render(fmt.Sprintf("No tier offers more than %s, using the default", formatMB(r.MaxMemory))))
	} else {
		lines = append(lines,
			fmt.Sprintf("%s %s", LabelStyle.Render("Suggested:"), SuccessStyle.Render(r.Suggested.String())))
	}
	if r.Artifact != "" {
		lines = append(lines, fmt.Sprintf("%s %s", LabelStyle.Render("Written:"), ValueStyle.Render(r.Artifact)))
	}

	return FooterBox.Render(strings.Join(lines, "\n"))
}

// peakSection returns the section the maximum came from, or 0 if unknown.
func peakSection(r *Result) int {
	for _, e := range r.Estimates {
		if e.MB == r.MaxMemory {
			return e.Section
		}
	}
	return 0
}

// formatMB renders a megabyte figure with thousands separators.
func formatMB(mb float64) string {
	return humanize.Commaf(mb) + " MB"
}

// padLeft pads a string with spaces on the left to achieve the desired width.
func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
