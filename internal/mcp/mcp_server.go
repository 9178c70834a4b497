// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/bundlesize/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the bundlesize MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Bundle Size Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: process_stats ---
	s.AddTool(mcp.NewTool("process_stats",
		mcp.WithDescription("Compute per-route JavaScript sizes (raw and gzipped) from a webpack stats manifest."),
		mcp.WithString("stats_file", mcp.Description("Path to the stats manifest, e.g. .next/stats.json."), mcp.Required()),
		mcp.WithString("build_dir", mcp.Description("Directory holding the built assets. Defaults to the manifest's directory.")),
		mcp.WithNumber("gzip_level", mcp.Description("Gzip compression level between 1 and 9. Defaults to 9.")),
	), h.handleProcessStats)

	// --- 2. Tool: compare_routes ---
	s.AddTool(mcp.NewTool("compare_routes",
		mcp.WithDescription("Compare two route size snapshots and render the bundle size report."),
		mcp.WithString("current_file", mcp.Description("Path to the current route snapshot JSON."), mcp.Required()),
		mcp.WithString("baseline_file", mcp.Description("Path to the baseline route snapshot JSON."), mcp.Required()),
		mcp.WithString("base_branch", mcp.Description("Branch name shown in the diff column header.")),
		mcp.WithNumber("minimum_change", mcp.Description("Byte changes at or below this value count as unchanged.")),
		mcp.WithNumber("budget_percent_increase_red", mcp.Description("Increases above this percentage are critical.")),
		mcp.WithString("format", mcp.Description("Result format. Defaults to 'markdown'."), mcp.Enum("markdown", "json")),
	), h.handleCompareRoutes)

	// --- 3. Tool: format_bytes ---
	s.AddTool(mcp.NewTool("format_bytes",
		mcp.WithDescription("Format a byte count the way the bundle size report does."),
		mcp.WithNumber("bytes", mcp.Description("Number of bytes."), mcp.Required()),
	), h.handleFormatBytes)

	// --- 4. Tool: get_history ---
	s.AddTool(mcp.NewTool("get_history",
		mcp.WithDescription("List recorded route size snapshots, newest first."),
		mcp.WithString("branch", mcp.Description("Only list snapshots of this branch.")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of snapshots.")),
	), h.handleGetHistory)

	return s
}

// StartMCPServer starts the bundlesize MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
