// Package cli implements the groundwork command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/groundwork-cli/groundwork/internal/config"
	"github.com/groundwork-cli/groundwork/internal/logging"
	"github.com/groundwork-cli/groundwork/internal/manifest"
)

// Version is stamped at build time.
var Version = "dev"

var (
	cfgFile        string
	verbose        bool
	jsonOutput     bool
	nonInteractive bool
	noProgress     bool
	statePath      string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "groundwork",
	Short: "Bootstrap agent-ready project documentation",
	Long: `Groundwork analyzes a repository and generates its working agreements:
AGENTS.md, development guides, ADR scaffolding, and MCP server configuration.

Generated files carry managed regions that survive regeneration, so teams can
annotate them without losing edits.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded

		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		logging.Setup(level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/groundwork/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit machine-readable JSON output")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "never prompt; use defaults")
	rootCmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "suppress progress output")
	rootCmd.PersistentFlags().StringVar(&statePath, "state", "", "manifest database path (default from config)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func openManifest() (*manifest.DB, error) {
	path := statePath
	if path == "" && cfg != nil {
		path = cfg.StatePath
	}
	if path == "" {
		path = config.DefaultStatePath()
	}

	database, err := manifest.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest database: %w", err)
	}
	return database, nil
}
