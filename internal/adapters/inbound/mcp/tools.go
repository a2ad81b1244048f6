package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/pactlint/pactlint/internal/adapters/outbound/config"
	"github.com/pactlint/pactlint/internal/adapters/outbound/extractor"
	"github.com/pactlint/pactlint/internal/adapters/outbound/gitinfo"
	"github.com/pactlint/pactlint/internal/adapters/outbound/scanner"
	"github.com/pactlint/pactlint/internal/application"
)

// registerTools registers the pactlint MCP tools on the given server.
func registerTools(s *server.MCPServer, projectPath string) {
	s.AddTool(
		mcplib.NewTool("lint_project",
			mcplib.WithDescription("Lint the project against its contract manifest and return the full violation report as JSON"),
			mcplib.WithBoolean("strict", mcplib.Description("Treat inferred-confidence errors as blocking in the reported verdict")),
		),
		handleLintProject(projectPath),
	)

	s.AddTool(
		mcplib.NewTool("validate_manifest",
			mcplib.WithDescription("Validate the contract manifest without linting any code"),
			mcplib.WithString("manifest", mcplib.Description("Manifest path (overrides project config)")),
		),
		handleValidateManifest(projectPath),
	)

	s.AddTool(
		mcplib.NewTool("list_rules",
			mcplib.WithDescription("List the contract reconciliation rules with their default severities"),
		),
		handleListRules(),
	)
}

func newLintService() *application.LintService {
	return application.NewLintService(
		scanner.New(),
		extractor.New(),
		config.New(),
		gitinfo.New(),
	)
}

func handleLintProject(projectPath string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		report, err := newLintService().LintProject(ctx, projectPath)
		if err != nil {
			return errorResult(fmt.Sprintf("lint failed: %v", err)), nil
		}

		strict, _ := request.GetArguments()["strict"].(bool)
		type verdictReport struct {
			Blocking bool `json:"blocking"`
			Report   any  `json:"report"`
		}
		return jsonResult(verdictReport{
			Blocking: report.HasBlocking(strict),
			Report:   report,
		})
	}
}

func handleValidateManifest(projectPath string) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		manifestPath, _ := request.GetArguments()["manifest"].(string)

		svc := application.NewValidateService(config.New())
		report, err := svc.ValidateManifest(projectPath, manifestPath)
		if err != nil {
			return errorResult(fmt.Sprintf("validation failed: %v", err)), nil
		}
		return jsonResult(report)
	}
}

func handleListRules() server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		type ruleDoc struct {
			ID          string `json:"id"`
			Severity    string `json:"default_severity"`
			Description string `json:"description"`
			Why         string `json:"why"`
		}
		var docs []ruleDoc
		for _, r := range newLintService().Rules() {
			docs = append(docs, ruleDoc{
				ID:          r.ID(),
				Severity:    r.DefaultSeverity(),
				Description: r.Description(),
				Why:         r.Why(),
			})
		}
		return jsonResult(docs)
	}
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
