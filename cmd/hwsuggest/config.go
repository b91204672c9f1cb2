package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jamesainslie/hwsuggest/pkg/hwsuggest/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// envOverrides lists the environment variables read for each config key.
var envOverrides = []struct {
	name string
	key  string
}{
	{config.EnvPrefix + "_OUTPUT", "output"},
	{config.EnvPrefix + "_TEMPLATE", "template"},
	{config.EnvPrefix + "_LOGGING_LEVEL", "logging.level"},
	{config.EnvPrefix + "_LOGGING_PATH", "logging.path"},
}

func newConfigCmd(c *cli) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage hwsuggest configuration settings.

Configuration is loaded from:
  1. the file named by --config
  2. $XDG_CONFIG_HOME/hwsuggest/config.yaml (if set)
  3. ~/.config/hwsuggest/config.yaml

Environment variables override config file settings using the HWSUGGEST_ prefix:
  HWSUGGEST_OUTPUT=json
  HWSUGGEST_LOGGING_LEVEL=debug`,
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  `Display the effective configuration after merging file, environment and flags.`,
		Args:  usageArgs(cobra.NoArgs),
		RunE:  c.runConfigShow,
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  usageArgs(cobra.NoArgs),
		RunE:  c.runConfigPath,
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Long:  `Create a default configuration file if one doesn't exist.`,
		Args:  usageArgs(cobra.NoArgs),
		RunE:  c.runConfigInit,
	})

	return configCmd
}

// runConfigShow displays the effective configuration.
func (c *cli) runConfigShow(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()

	if configFile := c.v.ConfigFileUsed(); configFile != "" {
		fmt.Fprintf(w, "Config file: %s\n\n", configFile)
	} else {
		fmt.Fprintf(w, "Config file: (using defaults, no file found)\n\n")
	}

	data, err := yaml.Marshal(c.cfg)
	if err != nil {
		return fmt.Errorf("encoding configuration: %w", err)
	}
	fmt.Fprintln(w, "Current Configuration:")
	fmt.Fprintln(w, "----------------------")
	fmt.Fprint(w, string(data))

	fmt.Fprintln(w, "\nEnvironment Overrides:")
	fmt.Fprintln(w, "----------------------")
	var set []string
	for _, ev := range envOverrides {
		if val := os.Getenv(ev.name); val != "" {
			set = append(set, fmt.Sprintf("%s=%s", ev.name, val))
		}
	}
	if len(set) == 0 {
		fmt.Fprintln(w, "(none)")
		return nil
	}
	fmt.Fprintln(w, strings.Join(set, "\n"))
	return nil
}

// runConfigPath prints the config file path.
func (c *cli) runConfigPath(cmd *cobra.Command, _ []string) error {
	path := c.v.ConfigFileUsed()
	if path == "" {
		var err error
		if path, err = config.ConfigPath(); err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		c.logger.Debug("config file does not exist, defaults apply", "path", path)
	}
	return nil
}

// runConfigInit creates a default config file.
func (c *cli) runConfigInit(cmd *cobra.Command, _ []string) error {
	created, err := config.WriteDefault()
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	path, err := config.ConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	if created {
		fmt.Fprintf(cmd.OutOrStdout(), "Created default config file: %s\n", path)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Config file already exists: %s\n", path)
	}
	return nil
}
