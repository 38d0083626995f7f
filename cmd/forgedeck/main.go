// Package main is the entry point for the forgedeck Stream Deck plugin.
//
// The Stream Deck application starts the binary with its registration flags;
// the root command connects back to the host and runs the plugin until the
// host closes the connection. The subcommands are for humans.
//
// Usage:
//
//	forgedeck -port 28196 -pluginUUID ... -registerEvent registerPlugin -info '{...}'
//	forgedeck validate -c forgedeck.yaml   # Validate configuration
//	forgedeck fetch                        # Query the API once and print the list
//	forgedeck version                      # Show version info
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// defaultConfigFile is loaded from the working directory when no config is
// given. The host starts plugins inside their .sdPlugin directory.
const defaultConfigFile = "forgedeck.yaml"

// settings resolves values that may come from a flag or the environment.
//
//	config     --config / -c     FORGEDECK_CONFIG
//	log_level  --log-level       FORGEDECK_LOG_LEVEL
var settings = viper.New()

// hostFlags are the flags the Stream Deck application passes with a single
// leading dash.
var hostFlags = []string{"port", "pluginUUID", "registerEvent", "info"}

// rootCmd runs the plugin when launched by the Stream Deck application.
var rootCmd = &cobra.Command{
	Use:   "forgedeck",
	Short: "Stream Deck+ dial plugin showing ForgeServ server status",
	Long: `forgedeck polls the ForgeServ status API and shows one server's name,
player count and icon on a Stream Deck+ dial. Rotating the dial scrolls
through the other servers for a few seconds before snapping back.

The Stream Deck application launches this binary with -port, -pluginUUID,
-registerEvent and -info. Settings beyond those come from an optional
forgedeck.yaml next to the binary, or the file named by --config or
FORGEDECK_CONFIG.

Example config:
  api_url: https://api.forgeserv.net
  fetch_timeout: 10s
  log_level: debug
  log_file: /tmp/forgedeck.log
  debug_addr: 127.0.0.1:8765`,
	SilenceUsage: true,
	RunE:         runPlugin,
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this forgedeck binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "forgedeck %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "path to config file (env FORGEDECK_CONFIG)")
	rootCmd.PersistentFlags().String("log-level", "", "debug, info, warn or error (env FORGEDECK_LOG_LEVEL)")

	rootCmd.Flags().Int("port", 0, "host websocket port")
	rootCmd.Flags().String("pluginUUID", "", "plugin UUID assigned by the host")
	rootCmd.Flags().String("registerEvent", "", "registration event name")
	rootCmd.Flags().String("info", "", "host and device information as JSON")

	settings.SetEnvPrefix("FORGEDECK")
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settings.AutomaticEnv()
	_ = settings.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = settings.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(versionCmd)
}

// normalizeArgs rewrites the host's single-dash long flags (-port 1234) to
// the double-dash form cobra expects. Other arguments pass through.
func normalizeArgs(args []string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		out[i] = arg
		if !strings.HasPrefix(arg, "-") || strings.HasPrefix(arg, "--") {
			continue
		}
		name, _, _ := strings.Cut(arg[1:], "=")
		for _, f := range hostFlags {
			if name == f {
				out[i] = "-" + arg
				break
			}
		}
	}
	return out
}

// Execute runs the root command.
func Execute() {
	rootCmd.SetArgs(normalizeArgs(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}

func main() {
	Execute()
}
