package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"recletter/config"
)

var version = "0.1.0"

var (
	configPath string
	logLevel   string

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "recletter",
	Short: "Academic recommendation letter drafting assistant",
	Long: `Turn raw recommender and student notes into a structured recommendation
letter (logic draft, English letter, critique), then refine the letter
conversationally.

Use "recletter serve" for the HTTP API or "recletter chat" for a terminal session.`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			loaded.LogLevel = logLevel
		}
		cfg = loaded
		setupLogging(cfg.LogLevel)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/config.json", "Path to config.json")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}
