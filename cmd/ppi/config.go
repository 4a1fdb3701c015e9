package main

import (
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matsen/ppigraph/internal/config"
)

var configForce bool

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configPathCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}

// ConfigPathResponse is the response for config path.
type ConfigPathResponse struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the effective configuration: defaults, then the config file, then
PPI_ADDR and PPI_LOG_LEVEL from the environment or a .env file.

Usage:
  ppi config          # Show effective config
  ppi config path     # Show config file location
  ppi config init     # Write a config file with defaults`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.Path()
		_, err := os.Stat(path)
		if humanOutput {
			outputHuman("%s\n", path)
			return nil
		}
		return outputJSON(ConfigPathResponse{Path: path, Exists: err == nil})
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with default values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.Path()
		if path == "" {
			exitWithError(ExitConfigError, "cannot determine config location")
		}
		if _, err := os.Stat(path); err == nil && !configForce {
			exitWithError(ExitConfigError, "config already exists: %s (use --force to overwrite)", path)
		}
		if err := config.Default().Save(path); err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		if humanOutput {
			outputHuman("Wrote %s\n", path)
			return nil
		}
		return outputJSON(OutputResponse{Output: path})
	},
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	if !humanOutput {
		return outputJSON(configJSON(cfg))
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	subtleColor.Printf("# %s\n", config.Path())
	os.Stdout.Write(data)
	return nil
}

// configJSON renders durations as strings, matching the YAML file.
func configJSON(cfg *config.Config) map[string]interface{} {
	return map[string]interface{}{
		"addr":               cfg.Addr,
		"log_level":          cfg.LogLevel,
		"layout":             cfg.Layout,
		"search_delay":       cfg.SearchDelay.String(),
		"lookup_delay":       cfg.LookupDelay.String(),
		"csv_delay":          cfg.CSVDelay.String(),
		"rate_limit":         cfg.RateLimit,
		"max_upload_bytes":   cfg.MaxUploadBytes,
		"notification_limit": cfg.NotificationLimit,
	}
}
