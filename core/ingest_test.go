package core_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketloom/graphgate/core"
	"github.com/marketloom/graphgate/schema"
)

func TestAddArticleValidation(t *testing.T) {
	ctx := context.Background()
	engine := core.NewEngine(testConfig(nil), newMemoryStore(), &scriptedOracle{}, nil, nil)
	cls := classification(t, schema.CurrentTimeframe, 3, 0, 0, 0)

	t.Run("missing article id", func(t *testing.T) {
		_, err := engine.AddArticle(ctx, "gold", schema.Article{}, cls, false)
		assert.ErrorContains(t, err, "no id")
	})

	t.Run("invalid classification", func(t *testing.T) {
		bad := cls
		bad.OverallImportance = 1
		_, err := engine.AddArticle(ctx, "gold", schema.Article{ID: "a1"}, bad, false)
		assert.ErrorContains(t, err, "invalid classification")
	})

	t.Run("unknown topic", func(t *testing.T) {
		_, err := engine.AddArticle(ctx, "gold", schema.Article{ID: "a1"}, cls, false)
		assert.ErrorContains(t, err, "does not exist")
	})
}

func TestAddArticleWithRoom(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	seedTopic(t, store, "gold", 7)
	oracle := &scriptedOracle{}
	engine := core.NewEngine(testConfig(nil), store, oracle, nil, nil)

	cls := classification(t, schema.CurrentTimeframe, 3, 1, 0, 0)
	result, err := engine.AddArticle(ctx, "gold", schema.Article{ID: "a1", Summary: "s", Source: "test"}, cls, false)
	require.NoError(t, err)
	assert.Equal(t, schema.AcceptAction, result.Action)
	assert.Equal(t, 3, result.Tier)
	assert.Zero(t, oracle.articleCalls, "A bucket with room never consults the oracle")

	has, err := store.HasAboutEdge(ctx, "a1", "gold")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestAddArticleDuplicate(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	seedTopic(t, store, "gold", 7)
	seedEdge(t, store, "gold", "a1", schema.CurrentTimeframe, 3, 0, 0, 0, time.Now().UTC())
	engine := core.NewEngine(testConfig(nil), store, &scriptedOracle{}, nil, nil)

	cls := classification(t, schema.CurrentTimeframe, 2, 0, 0, 0)
	result, err := engine.AddArticle(ctx, "gold", schema.Article{ID: "a1"}, cls, false)
	require.NoError(t, err)
	assert.Equal(t, schema.DuplicateAction, result.Action)
}

func TestAddArticleDisplacesIntoFreedSlot(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	seedTopic(t, store, "gold", 7)
	seedEdge(t, store, "gold", "old", schema.CurrentTimeframe, 3, 0, 0, 0, time.Now().UTC().Add(-time.Hour))

	oracle := &scriptedOracle{articleDecisions: []schema.ArticleDecision{
		downgradeDecision("old", 2),
	}}
	engine := core.NewEngine(testConfig(map[int]int{3: 1, 2: 4, 1: 8}), store, oracle, nil, nil)

	cls := classification(t, schema.CurrentTimeframe, 3, 0, 0, 0)
	result, err := engine.AddArticle(ctx, "gold", schema.Article{ID: "new", Summary: "s", Source: "test"}, cls, false)
	require.NoError(t, err)
	assert.Equal(t, schema.DowngradeAction, result.Action)
	assert.Equal(t, "old", result.MakeRoom.TargetArticleID)
	require.NotNil(t, result.MakeRoom.NewImportance)
	assert.Equal(t, 2, *result.MakeRoom.NewImportance)
	require.Len(t, result.MakeRoom.Mutations, 2, "Downgrade and edge creation land in one transaction")

	// The freed tier-3 slot now holds only the new article.
	assert.Equal(t, 1, bucketCount(t, store, "gold", schema.CurrentTimeframe, 3))
	has, err := store.HasAboutEdge(ctx, "new", "gold")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestAddArticleRejected(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	seedTopic(t, store, "gold", 7)
	seedEdge(t, store, "gold", "old", schema.CurrentTimeframe, 3, 0, 0, 0, time.Now().UTC())

	oracle := &scriptedOracle{articleDecisions: []schema.ArticleDecision{
		{Action: schema.RejectAction, Motivation: "incumbent is fresher"},
	}}
	engine := core.NewEngine(testConfig(map[int]int{3: 1, 2: 4, 1: 8}), store, oracle, nil, nil)

	cls := classification(t, schema.CurrentTimeframe, 3, 0, 0, 0)
	result, err := engine.AddArticle(ctx, "gold", schema.Article{ID: "new"}, cls, false)
	require.NoError(t, err)
	assert.Equal(t, schema.RejectAction, result.Action)
	assert.Equal(t, "incumbent is fresher", result.MakeRoom.Motivation)

	has, err := store.HasAboutEdge(ctx, "new", "gold")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestAddArticleOracleFailureRejects(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	seedTopic(t, store, "gold", 7)
	seedEdge(t, store, "gold", "old", schema.CurrentTimeframe, 3, 0, 0, 0, time.Now().UTC())

	oracle := &scriptedOracle{articleErr: fmt.Errorf("model timeout")}
	engine := core.NewEngine(testConfig(map[int]int{3: 1, 2: 4, 1: 8}), store, oracle, nil, nil)

	cls := classification(t, schema.CurrentTimeframe, 3, 0, 0, 0)
	result, err := engine.AddArticle(ctx, "gold", schema.Article{ID: "new"}, cls, false)
	require.NoError(t, err)
	assert.Equal(t, schema.RejectAction, result.Action)
	assert.Contains(t, result.MakeRoom.Motivation, core.ErrOracleUnavailable.Error())

	has, err := store.HasAboutEdge(ctx, "new", "gold")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestAddArticleTestModeAppliesNothing(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	seedTopic(t, store, "gold", 7)
	seedEdge(t, store, "gold", "old", schema.CurrentTimeframe, 3, 0, 0, 0, time.Now().UTC())

	oracle := &scriptedOracle{articleDecisions: []schema.ArticleDecision{
		downgradeDecision("old", 2),
	}}
	engine := core.NewEngine(testConfig(map[int]int{3: 1, 2: 4, 1: 8}), store, oracle, nil, nil)

	cls := classification(t, schema.CurrentTimeframe, 3, 0, 0, 0)
	result, err := engine.AddArticle(ctx, "gold", schema.Article{ID: "new"}, cls, true)
	require.NoError(t, err)
	assert.Equal(t, schema.DowngradeAction, result.Action)
	assert.Equal(t, 1, oracle.articleCalls, "Test mode still consults the oracle")
	assert.Empty(t, result.MakeRoom.Mutations)

	has, err := store.HasAboutEdge(ctx, "new", "gold")
	require.NoError(t, err)
	assert.False(t, has)
	assert.Equal(t, 1, bucketCount(t, store, "gold", schema.CurrentTimeframe, 3), "Incumbent keeps its tier")
}
