package mcp

import (
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/promptlab/promptlab/internal/server"
)

// RegisterTools registers all MCP tools with the server.
func RegisterTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	return registerExperimentTools(s, sc)
}
