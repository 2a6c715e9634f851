package main

import (
	"github.com/minus-twelve/relay"
	"github.com/minus-twelve/relay/types"
	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "relayd",
	Short: "relay dispatch server",
	Long: `relayd serves the relay routing kernel over HTTP. Each request is
resolved to a controller and action from its path and method, runs with a
cookie-backed session, and is answered with a JSON {message, payload}
envelope.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("relayd version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
}

func loadConfig() (types.Config, error) {
	return relay.LoadConfig(configPath)
}
