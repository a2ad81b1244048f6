package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRulesCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the contract reconciliation rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			rules := newLintService().Rules()

			if jsonOutput {
				type ruleDoc struct {
					ID          string `json:"id"`
					Severity    string `json:"default_severity"`
					Description string `json:"description"`
					Why         string `json:"why"`
				}
				docs := make([]ruleDoc, 0, len(rules))
				for _, r := range rules {
					docs = append(docs, ruleDoc{
						ID:          r.ID(),
						Severity:    r.DefaultSeverity(),
						Description: r.Description(),
						Why:         r.Why(),
					})
				}
				return renderJSON(cmd, docs)
			}

			out := cmd.OutOrStdout()
			for _, r := range rules {
				fmt.Fprintf(out, "%-28s %-8s %s\n", r.ID(), r.DefaultSeverity(), r.Description())
				fmt.Fprintf(out, "%-28s %-8s %s\n", "", "", r.Why())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output rules as JSON")

	return cmd
}
