package core_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/marketloom/graphgate/internal/contract"
	"github.com/marketloom/graphgate/internal/graphstore"
	"github.com/marketloom/graphgate/schema"
)

// scriptedOracle pops pre-programmed decisions in call order. An exhausted
// queue is a test bug and surfaces as an error.
type scriptedOracle struct {
	mu sync.Mutex

	articleDecisions []schema.ArticleDecision
	articleErr       error
	topicDecisions   []schema.TopicDecision
	topicErr         error
	picks            []schema.WeakestPick
	pickErr          error

	articleCalls int
	topicCalls   int
	pickCalls    int
}

var _ contract.DecisionOracle = (*scriptedOracle)(nil)

func (o *scriptedOracle) DecideArticleCapacity(_ context.Context, _ schema.ArticleCapacityRequest) (schema.ArticleDecision, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.articleCalls++
	if o.articleErr != nil {
		return schema.ArticleDecision{}, o.articleErr
	}
	if len(o.articleDecisions) == 0 {
		return schema.ArticleDecision{}, fmt.Errorf("scripted oracle has no article decision left")
	}
	d := o.articleDecisions[0]
	o.articleDecisions = o.articleDecisions[1:]
	return d, nil
}

func (o *scriptedOracle) DecideTopicCapacity(_ context.Context, _ schema.TopicCapacityRequest) (schema.TopicDecision, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.topicCalls++
	if o.topicErr != nil {
		return schema.TopicDecision{}, o.topicErr
	}
	if len(o.topicDecisions) == 0 {
		return schema.TopicDecision{}, fmt.Errorf("scripted oracle has no topic decision left")
	}
	d := o.topicDecisions[0]
	o.topicDecisions = o.topicDecisions[1:]
	return d, nil
}

func (o *scriptedOracle) PickWeakest(_ context.Context, _ schema.WeakestPickRequest) (schema.WeakestPick, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pickCalls++
	if o.pickErr != nil {
		return schema.WeakestPick{}, o.pickErr
	}
	if len(o.picks) == 0 {
		return schema.WeakestPick{}, fmt.Errorf("scripted oracle has no weakest pick left")
	}
	p := o.picks[0]
	o.picks = o.picks[1:]
	return p, nil
}

func downgradeDecision(target string, newTier int) schema.ArticleDecision {
	return schema.ArticleDecision{
		Action:          schema.DowngradeAction,
		TargetArticleID: target,
		NewImportance:   &newTier,
		Motivation:      "scripted downgrade",
	}
}

// testConfig returns an engine config with small tier limits so capacity
// pressure is easy to set up.
func testConfig(tierLimits map[int]int) *contract.Config {
	if tierLimits == nil {
		tierLimits = schema.DefaultTierLimits()
	}
	return &contract.Config{
		MaxTopics:        3,
		MaxCleanupPasses: contract.DefaultMaxCleanupPasses,
		BucketScanWindow: contract.DefaultBucketScanWindow,
		TierLimits:       tierLimits,
		OracleTimeout:    time.Second,
		Workers:          2,
	}
}

func seedTopic(t *testing.T, store contract.GraphStore, id string, importance int) {
	t.Helper()
	mut := schema.EdgeMutation{
		Kind: schema.CreateTopicMutation,
		Topic: &schema.Topic{
			ID: id, Name: id, Category: "asset",
			Importance: importance, LastUpdated: time.Now().UTC(),
		},
		At: time.Now().UTC(),
	}
	require.NoError(t, store.Apply(context.Background(), []schema.EdgeMutation{mut}))
}

func seedEdge(t *testing.T, store contract.GraphStore, topicID, articleID string, tf schema.Timeframe, risk, opportunity, trend, catalyst int, createdAt time.Time) {
	t.Helper()
	cls := schema.Classification{
		Timeframe:           tf,
		OverallImportance:   max(risk, opportunity, trend, catalyst),
		DominantPerspective: schema.RiskPerspective,
		Risk:                risk,
		Opportunity:         opportunity,
		Trend:               trend,
		Catalyst:            catalyst,
	}
	mut := schema.EdgeMutation{
		Kind:           schema.CreateEdgeMutation,
		ArticleID:      articleID,
		TopicID:        topicID,
		Timeframe:      tf,
		Article:        &schema.Article{ID: articleID, Summary: "s", Source: "test", PublishedAt: createdAt},
		Classification: &cls,
		At:             createdAt,
	}
	require.NoError(t, store.Apply(context.Background(), []schema.EdgeMutation{mut}))
}

func bucketCount(t *testing.T, store contract.GraphStore, topicID string, tf schema.Timeframe, tier int) int {
	t.Helper()
	count, err := store.CountBucket(context.Background(), topicID, tf, tier)
	require.NoError(t, err)
	return count
}

func classification(t *testing.T, tf schema.Timeframe, risk, opportunity, trend, catalyst int) schema.Classification {
	t.Helper()
	cls, err := schema.NewClassification(tf, schema.RiskPerspective, risk, opportunity, trend, catalyst)
	require.NoError(t, err)
	return cls
}

func newMemoryStore() *graphstore.MemoryStore {
	return graphstore.NewMemoryStore()
}
