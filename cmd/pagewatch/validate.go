package main

import (
	"fmt"

	"github.com/aleister1102/pagewatch/internal/common"
	"github.com/aleister1102/pagewatch/internal/config"
	"github.com/aleister1102/pagewatch/internal/runner"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate monitor configs",
	Long: `Validate one or more monitor configs without fetching anything. Every
config is checked even when an earlier one is invalid.

Each file is parsed, environment variables are expanded, defaults are
applied and every field is validated.

Exit codes:
  0 - All configs are valid
  1 - A config is invalid (error details printed to stderr)

Example:
  pagewatch validate -c shop.yaml
  pagewatch validate --config shop.yaml,blog.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "comma-separated monitor config paths (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFiles, _ := cmd.Flags().GetString("config")
	out := cmd.OutOrStdout()

	var errs common.ErrorCollector
	for _, path := range runner.SplitConfigPaths(configFiles) {
		file, err := config.LoadMonitorsFile(path)
		if err != nil {
			errs.AddWithContext(err, "invalid config "+path)
			continue
		}

		selectors := 0
		for _, m := range file.Monitors {
			selectors += len(m.Selectors)
		}

		fmt.Fprintf(out, "Config is valid: %s\n", path)
		fmt.Fprintf(out, "  Monitors:  %d\n", len(file.Monitors))
		fmt.Fprintf(out, "  Selectors: %d\n", selectors)
	}
	return errs.Error()
}
