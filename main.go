package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kennygrant/codash/config"
	"github.com/kennygrant/codash/logging"
)

var (
	// Global flags
	configPath string

	// Set up before any command runs
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "codash",
	Short: "codash serves case, death and per capita tables for regions",
	Long: `codash fetches daily case records, keeps an overview state of the
current date filter and selected regions, and serves table rows and rankings
as json.

Set COVID=dev to serve plain http on a local port.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Dev, cfg.LogLevel)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultFile, "path to the yaml config file")

	// With no command given, serve
	rootCmd.RunE = runServe

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(tableCmd)
	rootCmd.AddCommand(importCmd)
}

// Main runs the command given, serving data by default
func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
