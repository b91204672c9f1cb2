package main

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/jamesainslie/hwsuggest/pkg/hwsuggest/config"
	"github.com/jamesainslie/hwsuggest/pkg/hwsuggest/logging"
	"github.com/jamesainslie/hwsuggest/pkg/hwsuggest/output"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cli holds the state shared by the root command and its subcommands.
type cli struct {
	v       *viper.Viper
	cfgFile string
	verbose bool
	quiet   bool

	cfg    *config.Config
	logger *logging.Logger
}

// newRootCmd builds the command tree with a fresh viper instance.
func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "hwsuggest <dat-file>",
		Short: "Suggest a kyanite hardware tier from an Abaqus datacheck report",
		Long: `hwsuggest reads the .dat file written by an Abaqus datacheck run, extracts
the "memory to minimize I/O" estimates and suggests the smallest kyanite
coretype and corecount whose memory exceeds the largest estimate.

The suggestion is written to hardware.json in the current directory for the
job submission step. If no tier is large enough, the 64-core tier is used and
a warning is logged.

Examples:
  hwsuggest job.dat                 # write hardware.json
  hwsuggest -o pretty job.dat       # also print a summary
  hwsuggest -v job.dat              # show every estimate found
  hwsuggest tiers                   # list the tier table
  hwsuggest config show             # show configuration`,
		Args:              usageArgs(cobra.ExactArgs(1)),
		PersistentPreRunE: c.setup,
		RunE:              c.runSuggest,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default: ~/.config/hwsuggest/config.yaml)")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "debug output")
	flags.BoolVarP(&c.quiet, "quiet", "q", false, "only log warnings and errors")
	flags.StringP("output", "o", "", "summary format: "+strings.Join(output.Available(), ", "))
	flags.String("template", "", "template for -o template (Go text/template syntax)")

	_ = c.v.BindPFlag("output", flags.Lookup("output"))
	_ = c.v.BindPFlag("template", flags.Lookup("template"))

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	rootCmd.AddCommand(newTiersCmd(c))
	rootCmd.AddCommand(newConfigCmd(c))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// usageArgs marks positional argument errors as usage errors.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

// setup loads configuration and initializes logging before any command runs.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if c.verbose && c.quiet {
		return &usageError{err: errors.New("--verbose and --quiet cannot be used together")}
	}

	if err := config.Configure(c.v, c.cfgFile); err != nil {
		return &usageError{err: err}
	}
	cfg, err := config.Decode(c.v)
	if err != nil {
		return &usageError{err: err}
	}

	if cfg.Output != "" && !slices.Contains(output.Available(), cfg.Output) {
		return &usageError{err: fmt.Errorf("%w: %s (available: %s)",
			output.ErrUnknownFormat, cfg.Output, strings.Join(output.Available(), ", "))}
	}

	level := cfg.Logging.Level
	switch {
	case c.verbose:
		level = "debug"
	case c.quiet:
		level = "warn"
	}

	maxSize, err := logging.ParseSize(cfg.Logging.MaxSize)
	if err != nil {
		return &usageError{err: err}
	}

	err = logging.Init(logging.Config{
		Level:      level,
		Path:       cfg.Logging.Path,
		Components: cfg.Logging.Components,
		Console:    cmd.ErrOrStderr(),
		Rotation: logging.RotationConfig{
			MaxSize:    maxSize,
			MaxBackups: cfg.Logging.MaxBackups,
		},
	})
	if err != nil {
		return &usageError{err: fmt.Errorf("initializing logging: %w", err)}
	}

	c.cfg = cfg
	c.logger = logging.Get("cli").With("run", uuid.NewString())
	c.logger.Debug("configuration loaded", "file", c.v.ConfigFileUsed(), "level", level)
	return nil
}

// formatter resolves the summary formatter for format.
// Templates are compiled here so a bad template fails before anything is written.
func (c *cli) formatter(format string) (output.Formatter, error) {
	if format != "template" {
		return output.Get(format)
	}
	f := output.NewTemplateFormatter(c.template())
	if err := f.Compile(); err != nil {
		return nil, &usageError{err: err}
	}
	return f, nil
}

// render writes r to stdout with f.
func (c *cli) render(cmd *cobra.Command, f output.Formatter, r *output.Result) error {
	var buf bytes.Buffer
	if err := f.Format(&buf, r); err != nil {
		return fmt.Errorf("rendering summary: %w", err)
	}
	_, err := cmd.OutOrStdout().Write(buf.Bytes())
	return err
}

// template returns the configured template, or the default one.
func (c *cli) template() string {
	if c.cfg != nil && c.cfg.Template != "" {
		return c.cfg.Template
	}
	return output.DefaultTemplate
}

// Execute runs the root command.
func Execute() error {
	defer func() { _ = logging.Close() }()
	return newRootCmd().Execute()
}
