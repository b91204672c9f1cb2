package output

import (
	"github.com/jamesainslie/hwsuggest/pkg/hwsuggest/hardware"
	"github.com/jamesainslie/hwsuggest/pkg/hwsuggest/report"
)

// document is the structured summary shared by the JSON and YAML formatters.
type document struct {
	Source       string            `json:"source,omitempty" yaml:"source,omitempty"`
	Estimates    []report.Estimate `json:"estimates,omitempty" yaml:"estimates,omitempty"`
	MaxMemory    *float64          `json:"max_memory_mb,omitempty" yaml:"max_memory_mb,omitempty"`
	Suggested    *hardware.Tier    `json:"suggested,omitempty" yaml:"suggested,omitempty"`
	Fallback     bool              `json:"fallback" yaml:"fallback"`
	HardwareFile string            `json:"hardware_file,omitempty" yaml:"hardware_file,omitempty"`
	Tiers        []hardware.Tier   `json:"tiers,omitempty" yaml:"tiers,omitempty"`
	Default      hardware.Tier     `json:"default" yaml:"default"`
}

// buildDocument converts r to the structured summary.
// Report fields are left out when r only lists tiers.
func buildDocument(r *Result) document {
	doc := document{
		Tiers:   r.Tiers,
		Default: hardware.Default(),
	}
	if !r.HasSuggestion() {
		return doc
	}

	maxMemory := r.MaxMemory
	suggested := r.Suggested
	doc.Source = r.Source
	doc.Estimates = r.Estimates
	doc.MaxMemory = &maxMemory
	doc.Suggested = &suggested
	doc.Fallback = r.Fallback
	doc.HardwareFile = r.Artifact
	return doc
}
