package server

import (
	"github.com/promptlab/promptlab/internal/llm"
)

// ServerContext holds shared dependencies for MCP tool handlers.
type ServerContext struct {
	LLMClient      llm.Client
	OutputDir      string
	ExperimentsDir string // external experiments directory (optional)
}
