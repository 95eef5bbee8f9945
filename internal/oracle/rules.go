package oracle

import (
	"context"
	"fmt"

	"github.com/marketloom/graphgate/internal/contract"
	"github.com/marketloom/graphgate/schema"
)

// RulesOracle is the deterministic fallback policy. It needs no network and
// makes every run reproducible: the oldest occupant is always the weakest,
// and a topic candidate replaces the weakest topic only when strictly more
// important.
type RulesOracle struct{}

var _ contract.DecisionOracle = (*RulesOracle)(nil)

// NewRulesOracle creates the deterministic policy.
func NewRulesOracle() *RulesOracle {
	return &RulesOracle{}
}

// DecideArticleCapacity downgrades the oldest occupant one tier below the
// contested tier. With no occupant to displace the candidate is rejected.
func (o *RulesOracle) DecideArticleCapacity(_ context.Context, req schema.ArticleCapacityRequest) (schema.ArticleDecision, error) {
	oldest := oldestOccupant(req.Occupants)
	if oldest == nil {
		return schema.ArticleDecision{
			Action:     schema.RejectAction,
			Motivation: "no displaceable occupant in the contested bucket",
		}, nil
	}
	newImportance := req.Tier - 1
	if newImportance < schema.TierArchived {
		newImportance = schema.TierArchived
	}
	return schema.ArticleDecision{
		Action:          schema.DowngradeAction,
		TargetArticleID: oldest.Article.ID,
		NewImportance:   &newImportance,
		Motivation: fmt.Sprintf("oldest occupant %s downgraded to tier %d to admit fresher coverage",
			oldest.Article.ID, newImportance),
	}, nil
}

// DecideTopicCapacity replaces the weakest topic only when the candidate is
// strictly more important; ties keep the incumbent.
func (o *RulesOracle) DecideTopicCapacity(_ context.Context, req schema.TopicCapacityRequest) (schema.TopicDecision, error) {
	if req.Weakest == nil {
		return schema.TopicDecision{
			Action:     schema.RejectTopic,
			Motivation: "no weakest topic to compare against",
		}, nil
	}
	if req.Candidate.Importance > req.Weakest.Importance {
		return schema.TopicDecision{
			Action:     schema.ReplaceTopic,
			IDToRemove: req.Weakest.ID,
			Motivation: fmt.Sprintf("candidate importance %d exceeds weakest topic %s at %d",
				req.Candidate.Importance, req.Weakest.ID, req.Weakest.Importance),
		}, nil
	}
	return schema.TopicDecision{
		Action: schema.RejectTopic,
		Motivation: fmt.Sprintf("candidate importance %d does not exceed weakest topic %s at %d",
			req.Candidate.Importance, req.Weakest.ID, req.Weakest.Importance),
	}, nil
}

// PickWeakest names the oldest occupant. The pick is mandatory, so an empty
// occupant list is an error.
func (o *RulesOracle) PickWeakest(_ context.Context, req schema.WeakestPickRequest) (schema.WeakestPick, error) {
	oldest := oldestOccupant(req.Occupants)
	if oldest == nil {
		return schema.WeakestPick{}, fmt.Errorf("weakest pick with no occupants")
	}
	return schema.WeakestPick{
		ArticleID: oldest.Article.ID,
		Reasoning: fmt.Sprintf("oldest edge in the bucket, created %s", oldest.Edge.CreatedAt.Format("2006-01-02")),
	}, nil
}

// oldestOccupant returns the occupant with the earliest created_at, or nil
// for an empty list. Occupants arrive newest-first, so ties keep the later
// list position.
func oldestOccupant(occupants []schema.BucketOccupant) *schema.BucketOccupant {
	if len(occupants) == 0 {
		return nil
	}
	oldest := &occupants[0]
	for i := range occupants[1:] {
		o := &occupants[i+1]
		if !o.Edge.CreatedAt.After(oldest.Edge.CreatedAt) {
			oldest = o
		}
	}
	return oldest
}
