// Package cmd holds the msgagent command line.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"msgagent/config"
	"msgagent/utils"
)

// Version is set via ldflags at build time.
var Version = "dev"

var (
	configPath string
	jsonOutput bool
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "msgagent",
	Short:         "msgagent - rule based message organizer",
	Long:          "Classify, tag, prioritize, archive and draft replies for incoming messages.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return err
		}

		// stdout belongs to command output (and to the MCP stdio transport)
		utils.ConfigureLogging(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.JSON)

		if err := utils.InitI18n(); err != nil {
			utils.Log.Warn("Failed to initialize i18n: %v", err)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "msgagent", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.toml", "Path to the TOML config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of formatted output")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
