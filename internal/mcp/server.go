package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mfenderov/sentiscore/internal/pipeline"
	"github.com/mfenderov/sentiscore/pkg/models"
)

// Config holds MCP server configuration.
type Config struct {
	Name    string
	Version string
}

// Scorer runs the scoring pipeline for a keyword.
type Scorer interface {
	Run(ctx context.Context, keyword string) (*models.ScoreResult, error)
}

// Server exposes the scoring pipeline as MCP tools.
type Server struct {
	mcpServer *server.MCPServer
	scorer    Scorer
}

// NewServer creates a new MCP server with the get_score tool.
func NewServer(config Config, scorer Scorer) (*Server, error) {
	if scorer == nil {
		return nil, fmt.Errorf("scorer is required")
	}

	mcpServer := server.NewMCPServer(
		config.Name,
		config.Version,
		server.WithToolCapabilities(true),
	)

	s := &Server{
		mcpServer: mcpServer,
		scorer:    scorer,
	}

	scoreTool := mcp.NewTool("get_score",
		mcp.WithDescription("Fetch the review page for a keyword, rate every review 1-5 with a sentiment model and return the average on a 0-10 scale."),
		mcp.WithString("keyword",
			mcp.Required(),
			mcp.Description("Business keyword as it appears in the review page URL, e.g. tartine-bakery-san-francisco"),
		),
	)
	mcpServer.AddTool(scoreTool, s.scoreHandler)

	return s, nil
}

// scoreHandler handles the get_score tool call.
func (s *Server) scoreHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	keyword, err := req.RequireString("keyword")
	if err != nil || models.NormalizeKeyword(keyword) == "" {
		return mcp.NewToolResultError("keyword parameter is required"), nil
	}

	result, err := s.scorer.Run(ctx, keyword)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scoring failed (%s): %v", pipeline.KindOf(err), err)), nil
	}

	out, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}

	return mcp.NewToolResultText(string(out)), nil
}

// ServeStdio starts the MCP server using stdio transport.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
