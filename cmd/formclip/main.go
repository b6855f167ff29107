package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/formclip/internal/infrastructure/config"
	"github.com/GriffinCanCode/formclip/internal/infrastructure/logging"
)

var (
	logLevel string
	devMode  bool
)

var rootCmd = &cobra.Command{
	Use:           "formclip",
	Short:         "Copy form data between web pages",
	Long:          "formclip scans form fields, groups them into entities, and fills matching fields on another page.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "Development logging")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if devMode {
		cfg.Logging.Development = true
	}
	return cfg, nil
}

// setup loads the configuration and builds the logger the command uses.
func setup() (*config.Config, *logging.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.FromConfig(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, nil
}
