package output

import (
	"bytes"
	"fmt"
	"sync"
	"text/template"

	"github.com/dustin/go-humanize"
)

// DefaultTemplate prints the suggested tier as "code corecount memory".
const DefaultTemplate = "{{.Suggested.Code}} {{.Suggested.CoreCount}} {{.Suggested.Memory}}\n"

// TemplateFormatter formats output using a custom Go text/template.
// The template receives the Result.
type TemplateFormatter struct {
	templateStr string
	template    *template.Template
	mu          sync.Mutex
}

// NewTemplateFormatter creates a new template formatter with the given template string.
func NewTemplateFormatter(templateStr string) *TemplateFormatter {
	return &TemplateFormatter{
		templateStr: templateStr,
	}
}

// SetTemplate sets or updates the template string.
func (f *TemplateFormatter) SetTemplate(templateStr string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.templateStr = templateStr
	f.template = nil
}

// templateFuncs returns the custom template functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		// mb formats a megabyte figure, e.g. {{mb .MaxMemory}} gives "45,000 MB".
		"mb": func(v any) (string, error) {
			f, err := toFloat(v)
			if err != nil {
				return "", err
			}
			return formatMB(f), nil
		},

		// comma adds thousands separators, e.g. {{comma .Suggested.Memory}}.
		"comma": func(v any) (string, error) {
			f, err := toFloat(v)
			if err != nil {
				return "", err
			}
			return humanize.Commaf(f), nil
		},
	}
}

// toFloat accepts the numeric kinds found in Result.
func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}

// Compile parses the template so syntax errors surface before any output.
func (f *TemplateFormatter) Compile() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.compile()
}

// compile must be called with f.mu held.
func (f *TemplateFormatter) compile() error {
	if f.template != nil {
		return nil
	}
	tmpl, err := template.New("output").Funcs(templateFuncs()).Parse(f.templateStr)
	if err != nil {
		return fmt.Errorf("parsing template: %w", err)
	}
	f.template = tmpl
	return nil
}

// Format writes the formatted output to the buffer.
func (f *TemplateFormatter) Format(w *bytes.Buffer, r *Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.compile(); err != nil {
		return err
	}
	return f.template.Execute(w, r)
}

func init() {
	Register("template", func() Formatter {
		return NewTemplateFormatter(DefaultTemplate)
	})
}

// Ensure TemplateFormatter implements Formatter.
var _ Formatter = (*TemplateFormatter)(nil)
