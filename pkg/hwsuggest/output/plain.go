package output

import (
	"bytes"
	"fmt"
	"strconv"
	"text/tabwriter"
)

// PlainFormatter formats output as unstyled, tab-aligned text for scripts.
// With a suggestion it prints key/value pairs, otherwise the tier table.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	if r.HasSuggestion() {
		pairs := [][2]string{
			{"source", r.Source},
			{"estimates", strconv.Itoa(len(r.Estimates))},
			{"max_memory_mb", strconv.FormatFloat(r.MaxMemory, 'f', -1, 64)},
			{"code", r.Suggested.Code},
			{"corecount", strconv.Itoa(r.Suggested.CoreCount)},
			{"memory", strconv.Itoa(r.Suggested.Memory)},
			{"fallback", strconv.FormatBool(r.Fallback)},
		}
		if r.Artifact != "" {
			pairs = append(pairs, [2]string{"hardware_file", r.Artifact})
		}
		for _, p := range pairs {
			if _, err := fmt.Fprintf(tw, "%s\t%s\n", p[0], p[1]); err != nil {
				return err
			}
		}
		return tw.Flush()
	}

	if _, err := tw.Write([]byte("CODE\tCORES\tMEMORY\n")); err != nil {
		return err
	}
	for _, t := range r.tierRows() {
		if _, err := fmt.Fprintf(tw, "%s\t%d\t%d\n", t.Code, t.CoreCount, t.Memory); err != nil {
			return err
		}
	}

	return tw.Flush()
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
