package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trustwatch/trustwatch"
	"github.com/trustwatch/trustwatch/config"
)

// checkCmd matches a URL against the persisted watchlist.
var checkCmd = &cobra.Command{
	Use:   "check URL",
	Short: "Match a URL against the persisted watchlist",
	Long: `Match a URL against the watchlist persisted by a previous sync.

Reads the watchlist from the data_path configured in the YAML file, so
run "trustwatch sync" (or the daemon) at least once first. An entry
matches when its address is a wildcard pattern covering the URL, or a
substring of the URL's hostname or of the full URL.

Exit codes:
  0 - No matches
  2 - One or more entries matched (details printed to stdout)
  1 - Setup failed

Example:
  trustwatch check -c config.yaml https://news.example.com/story`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = checkCmd.MarkFlagRequired("config")
}

func runCheck(cmd *cobra.Command, args []string) error {
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

	candidate := args[0]
	matches, err := tw.CheckURL(candidate)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	if len(matches) == 0 {
		fmt.Printf("No watchlist matches for %s\n", candidate)
		return nil
	}

	fmt.Printf("%d watchlist match(es) for %s\n", len(matches), candidate)
	for _, m := range matches {
		fmt.Printf("  - %s", m.Address)
		if m.ShortRemark != "" {
			fmt.Printf(": %s", m.ShortRemark)
		}
		if m.OriginSourceName != "" {
			fmt.Printf(" (from %s)", m.OriginSourceName)
		}
		fmt.Println()
	}

	// distinct exit code so scripts can branch on "matched"
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return &matchedError{count: len(matches)}
}

// matchedError signals matches were found; mapped to exit code 2.
type matchedError struct {
	count int
}

func (e *matchedError) Error() string {
	return fmt.Sprintf("%d match(es) found", e.count)
}
