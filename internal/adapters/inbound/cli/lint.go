package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pactlint/pactlint/internal/adapters/outbound/config"
	"github.com/pactlint/pactlint/internal/adapters/outbound/extractor"
	"github.com/pactlint/pactlint/internal/adapters/outbound/gitinfo"
	"github.com/pactlint/pactlint/internal/adapters/outbound/scanner"
	"github.com/pactlint/pactlint/internal/adapters/outbound/tui"
	"github.com/pactlint/pactlint/internal/application"
)

func newLintService() *application.LintService {
	return application.NewLintService(
		scanner.New(),
		extractor.New(),
		config.New(),
		gitinfo.New(),
	)
}

func newLintCmd() *cobra.Command {
	var (
		jsonOutput bool
		ciMode     bool
		strict     bool
	)

	cmd := &cobra.Command{
		Use:   "lint [path]",
		Short: "Lint a project against its contract manifest",
		Long:  "Extract source facts from the project, reconcile them against the contract manifest, and report conformance violations.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			absPath, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			report, err := newLintService().LintProject(cmd.Context(), absPath)
			if err != nil {
				return fmt.Errorf("lint failed: %w", err)
			}

			if jsonOutput {
				if err := renderJSON(cmd, report); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderReport(report))
			}

			if ciMode && report.HasBlocking(strict) {
				return fmt.Errorf("%d errors", report.Summary.ErrorCount)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output report as JSON")
	cmd.Flags().BoolVar(&ciMode, "ci", false, "CI mode: exit 1 on error-severity violations")
	cmd.Flags().BoolVar(&strict, "strict", false, "With --ci, inferred-confidence errors also fail the run")

	return cmd
}

func renderJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
