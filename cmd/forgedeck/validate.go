package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/forgedeck/config"
)

// validateCmd validates a config file without starting the plugin.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a forgedeck configuration file without starting the plugin.

This command parses the YAML, expands environment variables, and validates
all fields.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  forgedeck validate -c forgedeck.yaml
  FORGEDECK_CONFIG=/etc/forgedeck.yaml forgedeck validate`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile := settings.GetString("config")
	if configFile == "" {
		return errors.New("no config file given (use -c or FORGEDECK_CONFIG)")
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	debugAddr := cfg.DebugAddr
	if debugAddr == "" {
		debugAddr = "disabled"
	}
	logLevel := cfg.LogLevel
	if logLevel == "" {
		logLevel = "off"
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  API URL:          %s\n", cfg.APIURL)
	fmt.Fprintf(out, "  Fetch timeout:    %s\n", cfg.FetchTimeout.Duration())
	fmt.Fprintf(out, "  Min refresh:      %s\n", cfg.MinRefreshInterval.Duration())
	fmt.Fprintf(out, "  Log level:        %s\n", logLevel)
	fmt.Fprintf(out, "  Debug API:        %s\n", debugAddr)

	return nil
}
