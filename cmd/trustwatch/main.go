// Package main is the entry point for the trustwatch CLI.
//
// TrustWatch can be run either as a library (SDK) or as a standalone binary
// with YAML configuration. This CLI provides the standalone binary approach.
//
// Usage:
//
//	trustwatch serve -c config.yaml       # Run the sync daemon and dashboard
//	trustwatch sync -c config.yaml        # Run one sync cycle and exit
//	trustwatch check -c config.yaml URL   # Match a URL against the watchlist
//	trustwatch validate -c config.yaml    # Validate configuration
//	trustwatch version                    # Show version info
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "trustwatch",
	Short: "A watchlist sync engine with URL matching",
	Long: `TrustWatch keeps a merged site watchlist in sync from remote feeds.

It fetches one or more JSON feeds at a configurable interval, using
conditional requests so unchanged feeds cost nothing, merges the results
into a single watchlist, and serves a status dashboard with live updates.
Individual feed failures never take down the cycle; the last good
snapshot of a failing feed stays in the merge.

Quick start:
  1. Create a config file (trustwatch.yaml)
  2. Run: trustwatch serve -c trustwatch.yaml
  3. Open http://localhost:8080 in your browser

Example config:
  port: 8080
  sync_interval: 60m
  sources:
    - name: main feed
      url: https://feeds.example.com/watchlist`,
	// No Run/RunE means this just shows help when called without subcommands
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// "check" signals matches via a distinct exit code
		var matched *matchedError
		if errors.As(err, &matched) {
			os.Exit(2)
		}
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this trustwatch binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("trustwatch %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}
