package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketloom/graphgate/core"
	"github.com/marketloom/graphgate/schema"
)

func TestMakeRoomWithRoomAvailable(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	seedTopic(t, store, "gold", 7)
	oracle := &scriptedOracle{}
	engine := core.NewEngine(testConfig(nil), store, oracle, nil, nil)

	cls := classification(t, schema.CurrentTimeframe, 3, 0, 0, 0)
	result, err := engine.MakeRoomForArticle(ctx, "gold", schema.Article{ID: "new"}, cls, false)
	require.NoError(t, err)
	assert.Equal(t, schema.AcceptAction, result.Action)
	assert.Empty(t, result.Mutations)
	assert.Zero(t, oracle.articleCalls)
}

func TestMakeRoomDowngradeIntoLowerTier(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	seedTopic(t, store, "gold", 7)
	seedEdge(t, store, "gold", "old", schema.CurrentTimeframe, 3, 0, 0, 0, time.Now().UTC())

	oracle := &scriptedOracle{articleDecisions: []schema.ArticleDecision{
		downgradeDecision("old", 2),
	}}
	engine := core.NewEngine(testConfig(map[int]int{3: 1, 2: 4, 1: 8}), store, oracle, nil, nil)

	cls := classification(t, schema.CurrentTimeframe, 3, 0, 0, 0)
	result, err := engine.MakeRoomForArticle(ctx, "gold", schema.Article{ID: "new"}, cls, false)
	require.NoError(t, err)
	assert.Equal(t, schema.DowngradeAction, result.Action)
	assert.Equal(t, "old", result.TargetArticleID)
	require.Len(t, result.Mutations, 1)

	assert.Zero(t, bucketCount(t, store, "gold", schema.CurrentTimeframe, 3))
	assert.Equal(t, 1, bucketCount(t, store, "gold", schema.CurrentTimeframe, 2))
}

func TestMakeRoomCascadesThroughFullTiers(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	seedTopic(t, store, "gold", 7)
	base := time.Now().UTC()
	seedEdge(t, store, "gold", "a", schema.CurrentTimeframe, 3, 0, 0, 0, base.Add(-3*time.Hour))
	seedEdge(t, store, "gold", "b", schema.CurrentTimeframe, 2, 0, 0, 0, base.Add(-2*time.Hour))
	seedEdge(t, store, "gold", "c", schema.CurrentTimeframe, 1, 0, 0, 0, base.Add(-time.Hour))

	// Superset counting fills every tier: tier 3 holds a, tier 2 holds a+b,
	// tier 1 holds a+b+c.
	oracle := &scriptedOracle{articleDecisions: []schema.ArticleDecision{
		downgradeDecision("a", 2),
		downgradeDecision("b", 1),
		downgradeDecision("c", schema.TierArchived),
	}}
	engine := core.NewEngine(testConfig(map[int]int{3: 1, 2: 2, 1: 3}), store, oracle, nil, nil)

	cls := classification(t, schema.CurrentTimeframe, 3, 0, 0, 0)
	result, err := engine.MakeRoomForArticle(ctx, "gold", schema.Article{ID: "new"}, cls, false)
	require.NoError(t, err)
	assert.Equal(t, schema.DowngradeAction, result.Action)
	assert.Equal(t, "a", result.TargetArticleID, "The caller sees the first displaced occupant")
	require.NotNil(t, result.NewImportance)
	assert.Equal(t, 2, *result.NewImportance)
	require.Len(t, result.Mutations, 3)
	assert.Equal(t, 3, oracle.articleCalls)

	assert.Zero(t, bucketCount(t, store, "gold", schema.CurrentTimeframe, 3))
	assert.Equal(t, 1, bucketCount(t, store, "gold", schema.CurrentTimeframe, 2))
	assert.Equal(t, 2, bucketCount(t, store, "gold", schema.CurrentTimeframe, 1))

	status, err := store.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, status.ArchivedEdges, "The cascade bottoms out in an archive")
}

func TestMakeRoomPendingDisplacementFreesBucket(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	seedTopic(t, store, "gold", 7)
	seedEdge(t, store, "gold", "a", schema.CurrentTimeframe, 3, 0, 0, 0, time.Now().UTC())

	// Tier 2 only holds a itself, so once a's downgrade is pending the lower
	// bucket is effectively free and the chain stops without an oracle call.
	oracle := &scriptedOracle{articleDecisions: []schema.ArticleDecision{
		downgradeDecision("a", 2),
	}}
	engine := core.NewEngine(testConfig(map[int]int{3: 1, 2: 1, 1: 1}), store, oracle, nil, nil)

	cls := classification(t, schema.CurrentTimeframe, 3, 0, 0, 0)
	result, err := engine.MakeRoomForArticle(ctx, "gold", schema.Article{ID: "new"}, cls, false)
	require.NoError(t, err)
	assert.Equal(t, schema.DowngradeAction, result.Action)
	require.Len(t, result.Mutations, 1)
	assert.Equal(t, 1, oracle.articleCalls)
}

func TestMakeRoomRejectsWhenLowerTierContested(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	seedTopic(t, store, "gold", 7)
	base := time.Now().UTC()
	seedEdge(t, store, "gold", "a", schema.CurrentTimeframe, 3, 0, 0, 0, base.Add(-2*time.Hour))
	seedEdge(t, store, "gold", "b", schema.CurrentTimeframe, 2, 0, 0, 0, base.Add(-time.Hour))

	oracle := &scriptedOracle{articleDecisions: []schema.ArticleDecision{
		downgradeDecision("a", 2),
		{Action: schema.RejectAction, Motivation: "b is load-bearing"},
	}}
	engine := core.NewEngine(testConfig(map[int]int{3: 1, 2: 1, 1: 4}), store, oracle, nil, nil)

	cls := classification(t, schema.CurrentTimeframe, 3, 0, 0, 0)
	result, err := engine.MakeRoomForArticle(ctx, "gold", schema.Article{ID: "new"}, cls, false)
	require.NoError(t, err)
	assert.Equal(t, schema.RejectAction, result.Action)
	assert.Equal(t, "Cannot downgrade - tier 2 at capacity", result.Motivation)

	// A reject anywhere in the chain discards the whole accumulator.
	assert.Equal(t, 1, bucketCount(t, store, "gold", schema.CurrentTimeframe, 3))
}

func TestMakeRoomIntegrityFailure(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	seedTopic(t, store, "gold", 7)
	seedEdge(t, store, "gold", "a", schema.CurrentTimeframe, 3, 0, 0, 0, time.Now().UTC())

	oracle := &scriptedOracle{articleDecisions: []schema.ArticleDecision{
		downgradeDecision("ghost", 2),
	}}
	engine := core.NewEngine(testConfig(map[int]int{3: 1, 2: 4, 1: 8}), store, oracle, nil, nil)

	cls := classification(t, schema.CurrentTimeframe, 3, 0, 0, 0)
	_, err := engine.MakeRoomForArticle(ctx, "gold", schema.Article{ID: "new"}, cls, false)
	require.ErrorIs(t, err, core.ErrIntegrity)

	assert.Equal(t, 1, bucketCount(t, store, "gold", schema.CurrentTimeframe, 3), "Nothing is mutated")
}

func TestMakeRoomMalformedDowngrades(t *testing.T) {
	ctx := context.Background()
	cls := classification(t, schema.CurrentTimeframe, 3, 0, 0, 0)

	newEngineWith := func(t *testing.T, decision schema.ArticleDecision) *core.Engine {
		t.Helper()
		store := newMemoryStore()
		seedTopic(t, store, "gold", 7)
		seedEdge(t, store, "gold", "a", schema.CurrentTimeframe, 3, 0, 0, 0, time.Now().UTC())
		oracle := &scriptedOracle{articleDecisions: []schema.ArticleDecision{decision}}
		return core.NewEngine(testConfig(map[int]int{3: 1, 2: 4, 1: 8}), store, oracle, nil, nil)
	}

	t.Run("missing new_importance", func(t *testing.T) {
		engine := newEngineWith(t, schema.ArticleDecision{
			Action: schema.DowngradeAction, TargetArticleID: "a",
		})
		result, err := engine.MakeRoomForArticle(ctx, "gold", schema.Article{ID: "new"}, cls, false)
		require.NoError(t, err)
		assert.Equal(t, schema.RejectAction, result.Action)
		assert.Contains(t, result.Motivation, "missing new_importance")
	})

	t.Run("new_importance not below tier", func(t *testing.T) {
		engine := newEngineWith(t, downgradeDecision("a", 3))
		result, err := engine.MakeRoomForArticle(ctx, "gold", schema.Article{ID: "new"}, cls, false)
		require.NoError(t, err)
		assert.Equal(t, schema.RejectAction, result.Action)
		assert.Contains(t, result.Motivation, "invalid tier 3")
	})

	t.Run("unexpected action", func(t *testing.T) {
		engine := newEngineWith(t, schema.ArticleDecision{Action: "promote"})
		result, err := engine.MakeRoomForArticle(ctx, "gold", schema.Article{ID: "new"}, cls, false)
		require.NoError(t, err)
		assert.Equal(t, schema.RejectAction, result.Action)
	})
}
