package main

import (
	"fmt"

	"github.com/jamesainslie/hwsuggest/pkg/hwsuggest/hardware"
	"github.com/jamesainslie/hwsuggest/pkg/hwsuggest/output"
	"github.com/jamesainslie/hwsuggest/pkg/hwsuggest/report"
	"github.com/spf13/cobra"
)

// artifactDir is where hardware.json is written: the working directory.
const artifactDir = "."

// runSuggest reads the report, selects a tier and writes hardware.json.
// Nothing is written unless scanning and selection both succeed.
func (c *cli) runSuggest(cmd *cobra.Command, args []string) error {
	path := args[0]

	var formatter output.Formatter
	if format := c.cfg.Output; format != "" {
		f, err := c.formatter(format)
		if err != nil {
			return err
		}
		formatter = f
	}

	estimates, err := report.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading report: %w", err)
	}
	peak, err := report.Max(estimates)
	if err != nil {
		return fmt.Errorf("reading report: %w", err)
	}
	c.logger.Info("maximum memory estimate to minimize I/O",
		"file", path, "mb", peak.MB, "section", peak.Section, "sections", len(estimates))

	suggestion := hardware.Suggest(peak.MB)
	if suggestion.Fallback {
		c.logger.Warn("no coretype suggestion found, using default",
			"required_mb", peak.MB, "default", suggestion.Tier.String())
	}
	tier := suggestion.Tier
	c.logger.Info("suggested coretype",
		"code", tier.Code, "corecount", tier.CoreCount, "memory", tier.Memory)

	written, err := output.WriteHardwareFile(artifactDir, tier)
	if err != nil {
		return err
	}
	c.logger.Info("coretype information written", "path", written)

	if formatter == nil {
		return nil
	}
	return c.render(cmd, formatter, &output.Result{
		Source:    path,
		Estimates: estimates,
		MaxMemory: peak.MB,
		Suggested: tier,
		Fallback:  suggestion.Fallback,
		Tiers:     hardware.Tiers(),
		Artifact:  written,
	})
}
