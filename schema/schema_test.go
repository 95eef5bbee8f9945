package schema_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketloom/graphgate/schema"
)

func TestNewClassification(t *testing.T) {
	t.Run("derives overall importance from max score", func(t *testing.T) {
		cls, err := schema.NewClassification(schema.CurrentTimeframe, schema.RiskPerspective, 1, 3, 0, 2)
		require.NoError(t, err)
		assert.Equal(t, 3, cls.OverallImportance)
	})

	t.Run("rejects all-zero scores", func(t *testing.T) {
		_, err := schema.NewClassification(schema.CurrentTimeframe, schema.RiskPerspective, 0, 0, 0, 0)
		assert.ErrorContains(t, err, "all perspective scores are zero")
	})

	t.Run("rejects out-of-range scores", func(t *testing.T) {
		_, err := schema.NewClassification(schema.CurrentTimeframe, schema.RiskPerspective, 4, 0, 0, 0)
		assert.ErrorContains(t, err, "outside")

		_, err = schema.NewClassification(schema.CurrentTimeframe, schema.RiskPerspective, -1, 2, 0, 0)
		assert.ErrorContains(t, err, "outside")
	})

	t.Run("rejects invalid timeframe and perspective", func(t *testing.T) {
		_, err := schema.NewClassification("yearly", schema.RiskPerspective, 1, 0, 0, 0)
		assert.ErrorContains(t, err, "invalid timeframe")

		_, err = schema.NewClassification(schema.CurrentTimeframe, "vibes", 1, 0, 0, 0)
		assert.ErrorContains(t, err, "invalid dominant perspective")
	})
}

func TestClassificationValidate(t *testing.T) {
	cls := schema.Classification{
		Timeframe:           schema.MediumTimeframe,
		OverallImportance:   2,
		DominantPerspective: schema.TrendPerspective,
		Trend:               2,
		Risk:                1,
	}
	assert.NoError(t, cls.Validate())

	cls.OverallImportance = 3
	assert.ErrorContains(t, cls.Validate(), "does not match max perspective score")
}

func TestClassificationAtTier(t *testing.T) {
	cls, err := schema.NewClassification(schema.CurrentTimeframe, schema.CatalystPerspective, 3, 1, 2, 3)
	require.NoError(t, err)

	down := cls.AtTier(2)
	assert.Equal(t, 2, down.OverallImportance)
	assert.Equal(t, 2, down.Risk)
	assert.Equal(t, 2, down.Opportunity)
	assert.Equal(t, 2, down.Trend)
	assert.Equal(t, 2, down.Catalyst)
	assert.Equal(t, schema.CatalystPerspective, down.DominantPerspective)
}

func TestAboutEdgeBuckets(t *testing.T) {
	edge := schema.AboutEdge{
		Timeframe:   schema.CurrentTimeframe,
		Risk:        3,
		Opportunity: 1,
	}

	t.Run("overall tier is max score", func(t *testing.T) {
		assert.Equal(t, 3, edge.OverallTier())
	})

	t.Run("superset tier membership", func(t *testing.T) {
		// Any perspective score >= tier qualifies, so a tier-3 edge also
		// occupies the tier-2 and tier-1 buckets of its timeframe.
		assert.True(t, edge.InTierBucket(schema.CurrentTimeframe, 3))
		assert.True(t, edge.InTierBucket(schema.CurrentTimeframe, 2))
		assert.True(t, edge.InTierBucket(schema.CurrentTimeframe, 1))
		assert.False(t, edge.InTierBucket(schema.MediumTimeframe, 1))
		assert.False(t, edge.InTierBucket(schema.CurrentTimeframe, 0))
	})

	t.Run("perspective membership is per score", func(t *testing.T) {
		assert.True(t, edge.InPerspectiveBucket(schema.CurrentTimeframe, schema.RiskPerspective, 3))
		assert.False(t, edge.InPerspectiveBucket(schema.CurrentTimeframe, schema.OpportunityPerspective, 2))
		assert.True(t, edge.InPerspectiveBucket(schema.CurrentTimeframe, schema.OpportunityPerspective, 1))
	})

	t.Run("archived edges occupy nothing", func(t *testing.T) {
		archived := schema.AboutEdge{Timeframe: schema.CurrentTimeframe}
		assert.True(t, archived.Archived())
		assert.False(t, archived.InTierBucket(schema.CurrentTimeframe, 1))
		assert.False(t, archived.InPerspectiveBucket(schema.CurrentTimeframe, schema.RiskPerspective, 1))
	})
}

func TestWeakestTopic(t *testing.T) {
	now := time.Now()
	topics := []schema.Topic{
		{ID: "a", Importance: 5, LastUpdated: now},
		{ID: "b", Importance: 2, LastUpdated: now},
		{ID: "c", Importance: 2, LastUpdated: now.Add(-time.Hour)},
	}

	weakest := schema.WeakestTopic(topics)
	require.NotNil(t, weakest)
	assert.Equal(t, "c", weakest.ID, "Importance ties should break by oldest last_updated")

	assert.Nil(t, schema.WeakestTopic(nil))
}

func TestParseHelpers(t *testing.T) {
	tf, err := schema.ParseTimeframe("  Current ")
	require.NoError(t, err)
	assert.Equal(t, schema.CurrentTimeframe, tf)

	_, err = schema.ParseTimeframe("weekly")
	assert.Error(t, err)

	p, err := schema.ParsePerspective("RISK")
	require.NoError(t, err)
	assert.Equal(t, schema.RiskPerspective, p)

	_, err = schema.ParsePerspective("sentiment")
	assert.Error(t, err)
}

func TestDistributionOverCountAndEqual(t *testing.T) {
	dist := &schema.Distribution{
		TopicID: "us-inflation",
		Overall: []schema.DistributionCell{
			{Timeframe: schema.CurrentTimeframe, Tier: 3, Count: 5, Max: 4},
			{Timeframe: schema.CurrentTimeframe, Tier: 2, Count: 8, Max: 8},
		},
		Perspective: []schema.DistributionCell{
			{Timeframe: schema.CurrentTimeframe, Perspective: schema.RiskPerspective, Tier: 3, Count: 6, Max: 4},
		},
	}
	assert.Equal(t, 2, dist.OverCount())

	other := &schema.Distribution{
		TopicID:     "us-inflation",
		TakenAt:     time.Now(),
		Overall:     append([]schema.DistributionCell{}, dist.Overall...),
		Perspective: append([]schema.DistributionCell{}, dist.Perspective...),
	}
	assert.True(t, dist.Equal(other), "Equal should ignore timestamps")

	other.Overall[0].Count = 4
	assert.False(t, dist.Equal(other))
	assert.False(t, dist.Equal(nil))
}

func TestSweepReportTotals(t *testing.T) {
	report := schema.SweepReport{
		Passes: []schema.SweepPass{
			{Readings: make([]schema.BucketReading, 45), ActionsApplied: 2},
			{Readings: make([]schema.BucketReading, 45), ActionsApplied: 0},
		},
	}
	assert.Equal(t, 90, report.TotalChecks())
	assert.Equal(t, 2, report.TotalActions())
}
