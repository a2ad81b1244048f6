package mcp

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewPactlintMCPServer creates an MCP server with the pactlint tools
// registered. The projectPath is the root directory of the project to lint.
func NewPactlintMCPServer(projectPath string) *server.MCPServer {
	s := server.NewMCPServer(
		"pactlint",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	registerTools(s, projectPath)

	return s
}
