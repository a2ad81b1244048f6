package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pactlint/pactlint/internal/adapters/outbound/config"
	"github.com/pactlint/pactlint/internal/application"
)

func newValidateCmd() *cobra.Command {
	var (
		jsonOutput   bool
		manifestPath string
	)

	cmd := &cobra.Command{
		Use:   "validate [path]",
		Short: "Validate the contract manifest without linting",
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

			svc := application.NewValidateService(config.New())
			report, err := svc.ValidateManifest(absPath, manifestPath)
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}

			if jsonOutput {
				if err := renderJSON(cmd, report); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "manifest: %s\n", report.ManifestPath)
				fmt.Fprintf(out, "version:  %s\n", report.Version)
				fmt.Fprintf(out, "contracts: %d, endpoints: %d\n", report.Contracts, report.Endpoints)
				for _, e := range report.Errors {
					fmt.Fprintf(out, "  error: %s\n", e)
				}
			}

			if !report.Valid() {
				return fmt.Errorf("%d manifest errors", len(report.Errors))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output result as JSON")
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "Manifest path (overrides config)")

	return cmd
}
