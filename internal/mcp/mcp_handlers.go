package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/bundlesize/core"
	"github.com/huangsam/bundlesize/internal/contract"
	"github.com/huangsam/bundlesize/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

func (h *toolHandler) handleProcessStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	statsFile := request.GetString("stats_file", "")
	if statsFile == "" {
		return mcp.NewToolResultError("stats_file is required"), nil
	}
	opts := core.ExtractOptions{
		BuildDir:  request.GetString("build_dir", ""),
		GzipLevel: request.GetInt("gzip_level", h.baseCfg.GzipLevel),
		Workers:   h.baseCfg.Workers,
	}
	if opts.GzipLevel < 0 || opts.GzipLevel > 9 {
		return mcp.NewToolResultError(fmt.Sprintf("gzip_level must be between 1 and 9 (received %d)", opts.GzipLevel)), nil
	}

	routes, err := core.ExtractRoutes(core.WithSuppressWarnings(ctx), statsFile, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("processing failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(routes, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleCompareRoutes(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if b := request.GetString("base_branch", ""); b != "" {
		cfg.BaseBranch = b
	}
	cfg.Thresholds.MinimumChange = int64(request.GetInt("minimum_change", int(cfg.Thresholds.MinimumChange)))
	cfg.Thresholds.BudgetPercentIncreaseRed = request.GetFloat("budget_percent_increase_red", cfg.Thresholds.BudgetPercentIncreaseRed)
	if cfg.Thresholds.MinimumChange < 0 || cfg.Thresholds.BudgetPercentIncreaseRed < 0 {
		return mcp.NewToolResultError("thresholds must be 0 or greater"), nil
	}

	current, err := core.LoadRouteSizes(request.GetString("current_file", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("current: %v", err)), nil
	}
	baseline, err := core.LoadRouteSizes(request.GetString("baseline_file", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("baseline: %v", err)), nil
	}

	result, markdown := core.BuildReport(cfg, current, baseline)
	if request.GetString("format", "markdown") == "json" {
		jsonData, _ := json.MarshalIndent(result, "", "  ")
		return mcp.NewToolResultText(string(jsonData)), nil
	}
	return mcp.NewToolResultText(markdown), nil
}

func (h *toolHandler) handleFormatBytes(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n := request.GetFloat("bytes", -1)
	if n < 0 {
		return mcp.NewToolResultError("bytes must be 0 or greater"), nil
	}
	return mcp.NewToolResultText(core.FormatBytes(int64(n))), nil
}

func (h *toolHandler) handleGetHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.mgr == nil || h.mgr.GetSnapshotStore() == nil {
		return mcp.NewToolResultError("snapshot store is not initialized"), nil
	}
	limit := request.GetInt("limit", h.baseCfg.HistoryLimit)
	if limit <= 0 || limit > contract.MaxHistoryLimit {
		return mcp.NewToolResultError(fmt.Sprintf("limit must be between 1 and %d", contract.MaxHistoryLimit)), nil
	}

	history, err := h.mgr.GetSnapshotStore().ListSnapshots(ctx, request.GetString("branch", ""), limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("history failed: %v", err)), nil
	}
	if history == nil {
		history = []schema.SnapshotSummary{}
	}
	jsonData, _ := json.MarshalIndent(history, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
