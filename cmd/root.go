// Package cmd defines and implements the CLI commands for the reviewscraper
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/arnadev/SaaS-review-Scraper/internal/config"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reviewscraper",
		Short: "Scrapes SaaS product reviews from public review sites.",
		Long: `reviewscraper retrieves product reviews for a named company from
G2, Capterra, and TrustPilot, keeping only reviews whose date falls inside a
given window. Results are written as a single JSON document.`,
		SilenceUsage: true,
	}

	cobra.OnInitialize(func() {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		}
		config.InitDefaults()
	})

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	cmd.AddCommand(newScrapeCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "reviewscraper: %v\n", err)
		os.Exit(1)
	}
}
