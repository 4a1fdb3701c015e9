// Package main provides the ppi CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kataras/golog"
	"github.com/spf13/cobra"

	"github.com/matsen/ppigraph/internal/config"
	"github.com/matsen/ppigraph/internal/session"
	"github.com/matsen/ppigraph/internal/tasks"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors is set, so cobra errors would otherwise be lost
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ppi",
	Short: "Protein interaction knowledge graph viewer",
	Long: `ppi serves and renders a protein-interaction knowledge graph.

Proteins, interaction nodes and supporting papers are shown as a diagram.
Selecting a protein highlights it and dims the others; protein labels can be
renamed inline. The graph lives in memory and starts from a built-in seed.

All commands output JSON by default; pass --human for readable output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// newLogger returns a golog logger at the configured level writing to stderr.
func newLogger(level string) *golog.Logger {
	logger := golog.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(level)
	return logger
}

// sessionOptions maps config values onto session options.
func sessionOptions(cfg *config.Config, logger *golog.Logger) []session.Option {
	return []session.Option{
		session.WithLogger(logger),
		session.WithNotificationLimit(cfg.NotificationLimit),
		session.WithMaxUploadBytes(cfg.MaxUploadBytes),
		session.WithTaskOptions(
			tasks.WithDelays(cfg.SearchDelay, cfg.LookupDelay, cfg.CSVDelay),
			tasks.WithRateLimit(cfg.RateLimit),
		),
	}
}

// mustOpenSession builds a seeded session from config, exits on error.
// The caller is responsible for calling Close() on the returned session.
func mustOpenSession(cfg *config.Config) *session.Session {
	sess, err := session.New(sessionOptions(cfg, newLogger(cfg.LogLevel))...)
	if err != nil {
		exitWithError(ExitError, "creating session: %v", err)
	}
	return sess
}
