package mcp_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketloom/graphgate/core"
	"github.com/marketloom/graphgate/internal/contract"
	"github.com/marketloom/graphgate/internal/graphstore"
	mcp_internal "github.com/marketloom/graphgate/internal/mcp"
	"github.com/marketloom/graphgate/internal/oracle"
	"github.com/marketloom/graphgate/schema"
)

func newTestServer(t *testing.T) (*server.MCPServer, *graphstore.MemoryStore) {
	t.Helper()
	cfg := &contract.Config{
		MaxTopics:        100,
		MaxCleanupPasses: 5,
		BucketScanWindow: 15,
		TierLimits:       schema.DefaultTierLimits(),
		ResultLimit:      25,
		Workers:          2,
	}
	store := graphstore.NewMemoryStore()
	engine := core.NewEngine(cfg, store, oracle.NewRulesOracle(), nil, nil)
	return mcp_internal.NewMCPServer(cfg, store, engine), store
}

func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	return res
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	s, _ := newTestServer(t)

	t.Run("get_capacity_report missing topic_id", func(t *testing.T) {
		res := callTool(t, s, "get_capacity_report", map[string]any{})
		assert.True(t, res.IsError, "The response should indicate an error state")
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "topic_id is required")
	})

	t.Run("check_capacity invalid timeframe", func(t *testing.T) {
		res := callTool(t, s, "check_capacity", map[string]any{
			"topic_id":  "us-inflation",
			"timeframe": "yearly",
			"tier":      3.0,
		})
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "invalid timeframe")
	})

	t.Run("check_capacity unmanaged tier", func(t *testing.T) {
		res := callTool(t, s, "check_capacity", map[string]any{
			"topic_id":  "us-inflation",
			"timeframe": "current",
			"tier":      7.0,
		})
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "no capacity limit")
	})

	t.Run("run_cleanup missing topic_id", func(t *testing.T) {
		res := callTool(t, s, "run_cleanup", map[string]any{})
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "topic_id is required")
	})
}

func TestMCPServerHandlers_Results(t *testing.T) {
	s, store := newTestServer(t)

	ctx := context.Background()
	muts := []schema.EdgeMutation{
		{
			Kind: schema.CreateTopicMutation,
			Topic: &schema.Topic{
				ID: "us-inflation", Name: "US Inflation", Category: "macro_driver",
				Importance: 9, LastUpdated: time.Now(),
			},
			At: time.Now(),
		},
	}
	require.NoError(t, store.Apply(ctx, muts))

	t.Run("get_topics", func(t *testing.T) {
		res := callTool(t, s, "get_topics", map[string]any{})
		require.False(t, res.IsError)

		var topics []schema.Topic
		require.NoError(t, json.Unmarshal([]byte(res.Content[0].(mcp.TextContent).Text), &topics))
		require.Len(t, topics, 1)
		assert.Equal(t, "us-inflation", topics[0].ID)
	})

	t.Run("check_capacity has room", func(t *testing.T) {
		res := callTool(t, s, "check_capacity", map[string]any{
			"topic_id":  "us-inflation",
			"timeframe": "current",
			"tier":      3.0,
		})
		require.False(t, res.IsError)

		var status schema.CapacityStatus
		require.NoError(t, json.Unmarshal([]byte(res.Content[0].(mcp.TextContent).Text), &status))
		assert.True(t, status.HasRoom)
		assert.Equal(t, 0, status.Count)
		assert.Equal(t, 4, status.Max)
	})

	t.Run("run_cleanup dry run converges", func(t *testing.T) {
		res := callTool(t, s, "run_cleanup", map[string]any{
			"topic_id": "us-inflation",
		})
		require.False(t, res.IsError)

		var report schema.SweepReport
		require.NoError(t, json.Unmarshal([]byte(res.Content[0].(mcp.TextContent).Text), &report))
		assert.Equal(t, "us-inflation", report.TopicID)
		assert.True(t, report.Converged)
	})
}
