package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "sluice",
	Short: "Sluice - token bucket rate limiting gateway",
	Long: `Sluice is an HTTP gateway that enforces per-key token bucket rate limits.

Tokens accrue at a fixed fill interval up to a configured capacity, and each
request spends tokens from its client's bucket. Clients that exhaust their
bucket receive 429 responses with a Retry-After hint.

It provides:
  - Per-key token buckets with configurable capacity, quantum, and interval
  - Named limit profiles with live configuration reload
  - Prometheus metrics and structured logging
  - Scheduled sweeping of idle buckets`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
