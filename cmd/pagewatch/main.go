// Package main is the entry point for the pagewatch CLI.
//
// Usage:
//
//	pagewatch run shop.yaml,blog.yaml     # Check every monitor, update state and history
//	pagewatch validate -c shop.yaml       # Validate monitor configs
//	pagewatch version                     # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set at build time via -ldflags "-X main.version=1.0.0".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "pagewatch",
	Short: "Watch web pages for content changes",
	Long: `pagewatch fetches web pages, extracts the parts you care about with
CSS or XPath selectors, and reports what changed since the last run.

Quick start:
  1. Create a monitor config (shop.yaml)
  2. Run: pagewatch run shop.yaml
  3. Run it again later (e.g. from a scheduled CI job) to see changes

Example config:
  monitors:
    - id: shop-price
      name: Shop price
      url: https://shop.example.com/product/1
      selectors:
        - name: price
          type: css
          value: ".price"
          match: {type: regex, pattern: "\\d+"}`,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "pagewatch %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	registerAppFlags(rootCmd)
}
