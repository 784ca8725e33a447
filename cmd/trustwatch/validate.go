package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trustwatch/trustwatch/config"
)

// validateCmd validates a config file without starting the daemon.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a TrustWatch configuration file without starting the daemon.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  trustwatch validate -c config.yaml
  trustwatch validate --config /etc/trustwatch/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	enabled := 0
	for _, src := range cfg.Sources {
		if src.IsEnabled() {
			enabled++
		}
	}

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Port:          %d\n", cfg.Port)
	fmt.Printf("  Sync interval: %s\n", cfg.SyncInterval.Duration())
	fmt.Printf("  Fetch timeout: %s\n", cfg.FetchTimeout.Duration())
	fmt.Printf("  Sources:       %d configured, %d enabled\n", len(cfg.Sources), enabled)
	if cfg.DataPath != "" {
		fmt.Printf("  Data path:     %s\n", cfg.DataPath)
	}

	return nil
}
