// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/marketloom/graphgate/core"
	"github.com/marketloom/graphgate/internal/contract"
)

// NewMCPServer initializes and configures the Graphgate MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, store contract.GraphStore, engine *core.Engine) *server.MCPServer {
	s := server.NewMCPServer(
		"Graphgate Capacity Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		store:   store,
		engine:  engine,
	}

	// --- 1. Tool: get_topics ---
	s.AddTool(mcp.NewTool("get_topics",
		mcp.WithDescription("List graph topics ordered weakest first (lowest importance, then oldest)."),
		mcp.WithNumber("limit", mcp.Description("Limit the number of topics returned.")),
	), h.handleGetTopics)

	// --- 2. Tool: get_capacity_report ---
	s.AddTool(mcp.NewTool("get_capacity_report",
		mcp.WithDescription("Report bucket occupancy per timeframe and tier for one topic, flagging over-capacity buckets."),
		mcp.WithString("topic_id", mcp.Description("The topic to report on."), mcp.Required()),
	), h.handleGetCapacityReport)

	// --- 3. Tool: check_capacity ---
	s.AddTool(mcp.NewTool("check_capacity",
		mcp.WithDescription("Check whether one bucket has room, optionally scoped to a single perspective."),
		mcp.WithString("topic_id", mcp.Description("The topic owning the bucket."), mcp.Required()),
		mcp.WithString("timeframe", mcp.Description("Bucket timeframe (fundamental, medium, current)."), mcp.Required(), mcp.Enum("fundamental", "medium", "current")),
		mcp.WithNumber("tier", mcp.Description("Importance tier (1-3)."), mcp.Required()),
		mcp.WithString("perspective", mcp.Description("Optional perspective (risk, opportunity, trend, catalyst)."), mcp.Enum("risk", "opportunity", "trend", "catalyst")),
	), h.handleCheckCapacity)

	// --- 4. Tool: run_cleanup ---
	s.AddTool(mcp.NewTool("run_cleanup",
		mcp.WithDescription("Run a capacity cleanup sweep over one topic. Dry-run by default: set dry_run=false to apply remediation."),
		mcp.WithString("topic_id", mcp.Description("The topic to sweep."), mcp.Required()),
		mcp.WithBoolean("dry_run", mcp.Description("Detect and report only, apply nothing. Defaults to true.")),
		mcp.WithNumber("max_passes", mcp.Description("Maximum check-and-remediate passes.")),
	), h.handleRunCleanup)

	return s
}

// StartMCPServer starts the Graphgate MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, store contract.GraphStore, engine *core.Engine) error {
	s := NewMCPServer(baseCfg, store, engine)
	return server.ServeStdio(s)
}
