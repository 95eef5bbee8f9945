package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/marketloom/graphgate/core"
	"github.com/marketloom/graphgate/internal/contract"
	"github.com/marketloom/graphgate/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	store   contract.GraphStore
	engine  *core.Engine
}

func (h *toolHandler) handleGetTopics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", h.baseCfg.ResultLimit)
	if limit <= 0 || limit > contract.MaxResultLimit {
		limit = contract.MaxResultLimit
	}

	topics, err := h.store.ListTopics(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("topic listing failed: %v", err)), nil
	}
	if len(topics) > limit {
		topics = topics[:limit]
	}

	jsonData, _ := json.MarshalIndent(topics, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetCapacityReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topicID := request.GetString("topic_id", "")
	if topicID == "" {
		return mcp.NewToolResultError("topic_id is required"), nil
	}

	dist, err := h.engine.GetDistribution(ctx, topicID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("capacity report failed: %v", err)), nil
	}

	report := struct {
		*schema.Distribution
		OverCount int `json:"over_count"`
	}{Distribution: dist, OverCount: dist.OverCount()}

	jsonData, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleCheckCapacity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topicID := request.GetString("topic_id", "")
	if topicID == "" {
		return mcp.NewToolResultError("topic_id is required"), nil
	}

	tf, err := schema.ParseTimeframe(request.GetString("timeframe", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid timeframe: %v", err)), nil
	}

	tier := request.GetInt("tier", 0)
	if _, ok := h.baseCfg.TierLimits[tier]; !ok {
		return mcp.NewToolResultError(fmt.Sprintf("tier %d has no capacity limit", tier)), nil
	}

	var status schema.CapacityStatus
	if p := request.GetString("perspective", ""); p != "" {
		perspective, perr := schema.ParsePerspective(p)
		if perr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid perspective: %v", perr)), nil
		}
		status, err = h.engine.CheckCapacityPerPerspective(ctx, topicID, tf, perspective, tier)
	} else {
		status, err = h.engine.CheckCapacity(ctx, topicID, tf, tier)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("capacity check failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(status, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleRunCleanup(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topicID := request.GetString("topic_id", "")
	if topicID == "" {
		return mcp.NewToolResultError("topic_id is required"), nil
	}

	opts := schema.SweepOptions{
		// Agent-driven sweeps stay read-only unless explicitly told otherwise
		DryRun:    request.GetBool("dry_run", true),
		MaxPasses: request.GetInt("max_passes", 0),
	}

	report, err := h.engine.RunCapacityCleanup(ctx, topicID, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cleanup failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
