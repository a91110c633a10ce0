// Package cli implements the courtsync command line interface.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgPath     string
	debugMode   bool
	user        string
	limit       int
	dateMin     string
	court       string
	token       string
	userAgent   string
	fields      string
	sinceFile   string
	dataDir     string
	metricsAddr string
)

var rootCmd = &cobra.Command{
	Use:   "courtsync",
	Short: "Incremental CourtListener opinion fetcher",
	Long: `courtsync fetches court opinions from the CourtListener REST API and
stores them locally as JSON Lines, tracking a date_filed watermark so
repeated runs fetch only new data.`,
	Run: runFetch,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (YAML, optional)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")

	rootCmd.Flags().StringVar(&user, "user", "", "username to store data under (required)")
	rootCmd.Flags().IntVar(&limit, "limit", 10, "maximum number of records to fetch")
	rootCmd.Flags().StringVar(&dateMin, "date-min", "", "filter: date_filed_min (YYYY-MM-DD)")
	rootCmd.Flags().StringVar(&court, "court", "", "filter: court identifier")
	rootCmd.Flags().StringVar(&token, "token", "", "CourtListener API token")
	rootCmd.Flags().StringVar(&userAgent, "user-agent", "", "User-Agent string")
	rootCmd.Flags().StringVar(&fields, "fields", "", "comma-separated fields to save")
	rootCmd.Flags().StringVar(&sinceFile, "since-file", "", "path to since-file for incremental sync")
	rootCmd.Flags().StringVar(&dataDir, "data-dir", "data", "directory for output files")
	rootCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	_ = rootCmd.MarkFlagRequired("user")
}
