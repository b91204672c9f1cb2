// Package output renders hwsuggest results and writes the hardware.json
// artifact.
//
// Summary formatters are kept in a registry so the CLI can pick one at
// runtime with -o:
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    return err
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, result); err != nil {
//	    return err
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/jamesainslie/hwsuggest/pkg/hwsuggest/hardware"
	"github.com/jamesainslie/hwsuggest/pkg/hwsuggest/logging"
	"github.com/jamesainslie/hwsuggest/pkg/hwsuggest/report"
)

// logger is the package-level logger for output operations.
var logger = logging.Get("output")

// Result contains everything a formatter can render.
// A zero Suggested marks a listing of the tier table without a report.
type Result struct {
	// Source is the report the estimates were read from.
	Source string

	// Estimates holds every estimate found in the report, in file order.
	Estimates []report.Estimate

	// MaxMemory is the largest estimate in MB.
	MaxMemory float64

	// Suggested is the selected tier.
	Suggested hardware.Tier

	// Fallback is set when no tier fit and the default was used.
	Fallback bool

	// Tiers is the tier table the selection ran against.
	Tiers []hardware.Tier

	// Artifact is the path of the written hardware file.
	Artifact string
}

// HasSuggestion reports whether r carries a selection from a report.
func (r *Result) HasSuggestion() bool {
	return !r.Suggested.IsZero()
}

// tierRows returns the tiers to list, falling back to the suggestion alone.
func (r *Result) tierRows() []hardware.Tier {
	if len(r.Tiers) > 0 {
		return r.Tiers
	}
	if r.HasSuggestion() {
		return []hardware.Tier{r.Suggested}
	}
	return nil
}

// isSelected reports whether t is the suggested tier.
func (r *Result) isSelected(t hardware.Tier) bool {
	return r.HasSuggestion() && t == r.Suggested
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry.
// It will replace any existing formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
