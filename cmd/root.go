// Package cmd implements the command line interface of the analytics engine.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/envelope-zero/analytics/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	flagConfig string

	// cfg is loaded before any subcommand runs
	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Multi-axis cost allocation and budget analytics",
	Long: `analytics tags ledger entries along configurable analytical axes,
allocates shared costs with rules and tracks budgets against actuals.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", os.Getenv("CONFIG_FILE"), "configuration file (YAML or TOML)")
}

func setup(_ *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	return setupLogging(cfg.API.GinMode, cfg.Log, os.Stderr)
}

// setupLogging configures gin and the global logger.
//
// The log format defaults to human readable in debug mode and JSON otherwise.
func setupLogging(ginMode string, l config.Log, out io.Writer) error {
	gin.SetMode(ginMode)

	output := out
	if (l.Format == "" && gin.IsDebugging()) || l.Format == "human" {
		output = zerolog.ConsoleWriter{Out: out}
	}

	level := zerolog.InfoLevel
	if gin.IsDebugging() {
		level = zerolog.DebugLevel
	}
	if l.Level != "" {
		parsed, err := zerolog.ParseLevel(l.Level)
		if err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
		level = parsed
	}

	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(output).With().Timestamp().Logger()
	return nil
}
