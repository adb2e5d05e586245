package mcphost

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"archmap/internal/analyzer"
	"archmap/internal/config"
)

// Serve runs an MCP server over stdio exposing the analysis pipeline as
// tools, so editors and agents can query a repository's architecture.
func Serve(version string) error {
	mcpServer := server.NewMCPServer(
		"archmap",
		version,
		server.WithToolCapabilities(false),
	)

	analyzeTool := mcp.NewTool("analyze_repo",
		mcp.WithDescription("Analyze a repository and return its full dependency model as JSON"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Repository root to analyze"),
		),
	)
	mcpServer.AddTool(analyzeTool, analyzeRepoHandler)

	healthTool := mcp.NewTool("architecture_health",
		mcp.WithDescription("Return the health summary (score, grade, violations) for a repository"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Repository root to analyze"),
		),
	)
	mcpServer.AddTool(healthTool, healthHandler)

	cyclesTool := mcp.NewTool("list_cycles",
		mcp.WithDescription("List circular dependencies detected in a repository"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Repository root to analyze"),
		),
	)
	mcpServer.AddTool(cyclesTool, cyclesHandler)

	return server.ServeStdio(mcpServer)
}

func analyzeAt(ctx context.Context, request mcp.CallToolRequest) (*analyzer.Analyzer, string, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("load config: %w", err)
	}
	a, err := analyzer.New(cfg)
	if err != nil {
		return nil, "", err
	}
	return a, path, nil
}

func analyzeRepoHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, path, err := analyzeAt(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := a.Analyze(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func healthHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, path, err := analyzeAt(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := a.Analyze(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := json.MarshalIndent(result.Health, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func cyclesHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, path, err := analyzeAt(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := a.Analyze(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(result.Graph.Cycles) == 0 {
		return mcp.NewToolResultText("no circular dependencies"), nil
	}
	var sb strings.Builder
	for _, c := range result.Graph.Cycles {
		sb.WriteString(strings.Join(c, " -> "))
		sb.WriteString("\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}
