package main

import (
	"github.com/jamesainslie/hwsuggest/pkg/hwsuggest/hardware"
	"github.com/jamesainslie/hwsuggest/pkg/hwsuggest/output"
	"github.com/spf13/cobra"
)

// defaultTiersFormat is used by the tiers command when no output is configured.
const defaultTiersFormat = "pretty"

func newTiersCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "tiers",
		Short: "List the hardware tiers",
		Long: `List the kyanite tiers a suggestion is chosen from, smallest first, and the
default tier used when no tier has enough memory.

A tier is chosen when its memory is strictly greater than the largest
"memory to minimize I/O" estimate in the report.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			format := c.cfg.Output
			if format == "" {
				format = defaultTiersFormat
			}
			f, err := c.formatter(format)
			if err != nil {
				return err
			}
			return c.render(cmd, f, &output.Result{Tiers: hardware.Tiers()})
		},
	}
}
