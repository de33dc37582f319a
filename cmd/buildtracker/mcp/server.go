package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/neilberkman/buildtracker/internal/core/models"
	"github.com/neilberkman/buildtracker/internal/core/stats"
	"github.com/neilberkman/buildtracker/internal/core/tracker"
)

// ListBuildsArgs defines arguments for the list_builds tool
type ListBuildsArgs struct {
	Limit   int    `json:"limit,omitempty" jsonschema:"description=Max builds to return (default: 20)"`
	Project string `json:"project,omitempty" jsonschema:"description=Filter by project name"`
	Status  string `json:"status,omitempty" jsonschema:"description=Filter by status (success/failed/running)"`
}

// StartServer serves the build history over MCP on stdio
func StartServer(tr *tracker.Tracker, version string) error {
	if version == "" {
		version = "dev"
	}
	return server.ServeStdio(NewServer(tr, version))
}

// NewServer creates the MCP server with all tools registered
func NewServer(tr *tracker.Tracker, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"BuildTracker",
		version,
	)

	// Register list_builds tool
	listTool := mcp.NewTool("list_builds",
		mcp.WithDescription("Get recently logged builds, most recent first, optionally filtered by project or status"),
		mcp.WithNumber("limit",
			mcp.Description("Max builds to return (default: 20)")),
		mcp.WithString("project",
			mcp.Description("Filter by project name")),
		mcp.WithString("status",
			mcp.Description("Filter by status: success, failed or running")),
	)
	s.AddTool(listTool, makeListBuildsHandler(tr))

	// Register get_stats tool
	statsTool := mcp.NewTool("get_stats",
		mcp.WithDescription("Get build statistics: totals, success rate, average duration in minutes and the most recent build time"),
	)
	s.AddTool(statsTool, makeGetStatsHandler(tr))

	// Register generate_report tool
	reportTool := mcp.NewTool("generate_report",
		mcp.WithDescription("Get build statistics together with the ten most recent builds"),
	)
	s.AddTool(reportTool, makeGenerateReportHandler(tr))

	return s
}

func makeListBuildsHandler(tr *tracker.Tracker) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args ListBuildsArgs
		argsBytes, _ := json.Marshal(request.Params.Arguments)
		if err := json.Unmarshal(argsBytes, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		// Set defaults
		limit := args.Limit
		if limit <= 0 {
			limit = tracker.DefaultListLimit
		}

		builds, err := tr.ListBuildsFiltered(stats.Filter{
			Project: args.Project,
			Status:  models.Status(args.Status),
			Limit:   limit,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
		}

		return jsonResult(map[string]interface{}{
			"builds": builds,
		})
	}
}

func makeGetStatsHandler(tr *tracker.Tracker) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s, err := tr.GetStats()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("stats failed: %v", err)), nil
		}
		return jsonResult(s)
	}
}

func makeGenerateReportHandler(tr *tracker.Tracker) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		r, err := tr.GenerateReport()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("report failed: %v", err)), nil
		}
		return jsonResult(r)
	}
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	resultJSON, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(resultJSON)), nil
}
