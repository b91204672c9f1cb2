package output

import (
	"bytes"

	"github.com/jedib0t/go-pretty/v6/table"
)

// tableStyle selects how a go-pretty table is rendered.
type tableStyle int

const (
	styleBox tableStyle = iota
	styleCSV
	styleMarkdown
)

// TableFormatter renders the tier table with go-pretty.
// The selected tier is marked with an asterisk in the first column.
type TableFormatter struct {
	style tableStyle
}

// Format writes the formatted output to the buffer.
func (f *TableFormatter) Format(w *bytes.Buffer, r *Result) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"SELECTED", "CODE", "CORES", "MEMORY_MB"})

	for _, tier := range r.tierRows() {
		mark := ""
		if r.isSelected(tier) {
			mark = "*"
		}
		t.AppendRow(table.Row{mark, tier.Code, tier.CoreCount, tier.Memory})
	}

	switch f.style {
	case styleCSV:
		t.RenderCSV()
	case styleMarkdown:
		t.RenderMarkdown()
	default:
		t.SetStyle(table.StyleLight)
		if r.HasSuggestion() {
			caption := "memory to minimize I/O: " + formatMB(r.MaxMemory)
			if r.Fallback {
				caption += " (no tier fits, default used)"
			}
			t.SetCaption("%s", caption)
		}
		t.Render()
	}

	return nil
}

func init() {
	Register("table", func() Formatter {
		return &TableFormatter{style: styleBox}
	})
	Register("csv", func() Formatter {
		return &TableFormatter{style: styleCSV}
	})
	Register("markdown", func() Formatter {
		return &TableFormatter{style: styleMarkdown}
	})
}

// Ensure TableFormatter implements Formatter.
var _ Formatter = (*TableFormatter)(nil)
