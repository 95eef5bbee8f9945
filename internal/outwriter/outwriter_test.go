package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketloom/graphgate/internal/contract"
	"github.com/marketloom/graphgate/schema"
)

func testConfig() *contract.Config {
	return &contract.Config{
		MaxTopics:    100,
		GraphBackend: schema.MemoryGraph,
		Output:       schema.TextOut,
		Width:        120,
		Workers:      4,
	}
}

func sampleDistribution() *schema.Distribution {
	return &schema.Distribution{
		TopicID: "us-inflation",
		TakenAt: time.Now().UTC(),
		Overall: []schema.DistributionCell{
			{Timeframe: schema.CurrentTimeframe, Tier: 3, Count: 5, Max: 4},
			{Timeframe: schema.CurrentTimeframe, Tier: 2, Count: 8, Max: 8},
			{Timeframe: schema.MediumTimeframe, Tier: 3, Count: 1, Max: 4},
		},
		Perspective: []schema.DistributionCell{
			{Timeframe: schema.CurrentTimeframe, Perspective: schema.RiskPerspective, Tier: 3, Count: 2, Max: 4},
		},
	}
}

func TestWriteDistributionTable(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig()

	err := writeDistributionTable(sampleDistribution(), cfg, time.Second, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "us-inflation")
	assert.Contains(t, out, contract.OverValue)
	assert.Contains(t, out, contract.FullValue)
	assert.Contains(t, out, contract.OkValue)
	assert.Contains(t, out, "1 over capacity")
}

func TestWriteCSVWithHeader(t *testing.T) {
	var buf bytes.Buffer
	err := writeCSVWithHeader(&buf, []string{"topic", "tier"}, func(w *csv.Writer) error {
		return w.Write([]string{"us-inflation", "3"})
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "topic,tier", lines[0])
	assert.Equal(t, "us-inflation,3", lines[1])
}

func TestWriteDistributionJSONRoundTrip(t *testing.T) {
	dist := sampleDistribution()

	var jsonBuf bytes.Buffer
	require.NoError(t, writeJSON(&jsonBuf, dist))
	var decoded schema.Distribution
	require.NoError(t, json.Unmarshal(jsonBuf.Bytes(), &decoded))
	assert.Equal(t, dist.TopicID, decoded.TopicID)
	assert.Len(t, decoded.Overall, 3)
}

func TestWriteTopicTable(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig()
	topics := []schema.Topic{
		{ID: "oil-supply", Name: "Oil Supply", Category: "commodity", Importance: 4, LastUpdated: time.Now()},
		{ID: "us-inflation", Name: "US Inflation", Category: "macro_driver", Importance: 9, LastUpdated: time.Now()},
	}

	err := writeTopicTable(topics, cfg, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "oil-supply")
	assert.Contains(t, out, "US Inflation")
	assert.Contains(t, out, "Showing 2 topics")
	assert.Contains(t, out, "ceiling: 100")
}

func TestWriteSweepTable(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig()
	before := sampleDistribution()
	after := &schema.Distribution{TopicID: "us-inflation", Overall: []schema.DistributionCell{
		{Timeframe: schema.CurrentTimeframe, Tier: 3, Count: 4, Max: 4},
	}}
	reports := []*schema.SweepReport{
		{
			SweepID: "sweep-1", TopicID: "us-inflation",
			Passes: []schema.SweepPass{
				{Number: 1, Readings: make([]schema.BucketReading, 45), OverCapacity: 1, ActionsApplied: 2},
				{Number: 2, Readings: make([]schema.BucketReading, 45)},
			},
			Converged: true,
			Before:    before,
			After:     after,
		},
		nil, // failed topics are skipped
	}

	err := writeSweepTable(reports, cfg, 2*time.Second, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "us-inflation")
	assert.Contains(t, out, "Swept 1 topics, 1 converged")
	assert.Contains(t, out, "90") // total checks
}

func TestWriteEventTable(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig()
	topicID := "us-inflation"
	detail := "admitted at tier 3"
	events := []schema.AuditEventRecord{
		{EventID: 2, EventTime: time.Now(), Event: "article_added", TopicID: &topicID, Detail: &detail},
		{EventID: 1, EventTime: time.Now(), Event: "sweep_completed", TopicID: &topicID},
	}

	err := writeEventTable(events, cfg, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "article_added")
	assert.Contains(t, out, "sweep_completed")
	assert.Contains(t, out, "Showing 2 events")
}

func TestCapacityLabel(t *testing.T) {
	cfg := testConfig()

	// Plain labels without colors
	assert.Equal(t, contract.OverValue, capacityLabel(cfg, 5, 4))
	assert.Equal(t, contract.FullValue, capacityLabel(cfg, 4, 4))
	assert.Equal(t, contract.OkValue, capacityLabel(cfg, 3, 4))

	// Colored labels still contain the plain text
	cfg.UseColors = true
	assert.Contains(t, capacityLabel(cfg, 5, 4), contract.OverValue)
}

func TestGetMaxTableNameWidth(t *testing.T) {
	cfg := testConfig()

	cfg.Width = 200
	assert.Equal(t, 60, getMaxTableNameWidth(cfg))

	cfg.Width = 60
	assert.Equal(t, 15, getMaxTableNameWidth(cfg))

	cfg.Width = 100
	assert.Equal(t, 45, getMaxTableNameWidth(cfg))
}

func TestOverCountLabel(t *testing.T) {
	assert.Equal(t, "-", overCountLabel(nil))
	assert.Equal(t, "1", overCountLabel(sampleDistribution()))
}
