package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trustwatch/trustwatch"
	"github.com/trustwatch/trustwatch/config"
)

// syncCmd runs a single sync cycle and exits.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one sync cycle and exit",
	Long: `Run a single sync cycle against all configured sources and exit.

The exit code reflects the cycle outcome:
  0 - Cycle reached success or warning
  1 - Cycle ended in error, or setup failed

Useful from cron or CI when the daemon is not wanted. Pair with
data_path in the config so the fetched watchlist survives the process.

Example:
  trustwatch sync -c config.yaml`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = syncCmd.MarkFlagRequired("config")
}

func runSync(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	tw, err := trustwatch.New(buildOptions(cfg, logger)...)
	if err != nil {
		return fmt.Errorf("failed to create TrustWatch: %w", err)
	}

	status, err := tw.SyncOnce(cmd.Context())
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	fmt.Printf("Sync %s\n", status.State)
	fmt.Printf("  Entries: %d\n", status.EntryCount)
	if status.Message != "" {
		fmt.Printf("  Message: %s\n", status.Message)
	}

	if status.State == trustwatch.StateError {
		return fmt.Errorf("sync ended in error: %s", status.Message)
	}
	return nil
}
