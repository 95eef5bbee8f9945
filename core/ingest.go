package core

import (
	"context"
	"fmt"
	"time"

	"github.com/marketloom/graphgate/schema"
)

// AddArticle runs the full ingest pipeline for one article/topic pair:
// duplicate check, make-room planning, then edge creation. The room-making
// mutations and the new edge land in one store transaction, so a crash never
// leaves a freed slot without its article. With test=true the oracle is
// still consulted but nothing is applied.
func (e *Engine) AddArticle(ctx context.Context, topicID string, art schema.Article, cls schema.Classification, test bool) (schema.IngestResult, error) {
	if art.ID == "" {
		return schema.IngestResult{}, fmt.Errorf("article has no id")
	}
	if err := cls.Validate(); err != nil {
		return schema.IngestResult{}, fmt.Errorf("invalid classification: %w", err)
	}

	unlock := e.lockTopic(topicID)
	defer unlock()

	topic, err := e.store.GetTopic(ctx, topicID)
	if err != nil {
		return schema.IngestResult{}, err
	}
	if topic == nil {
		return schema.IngestResult{}, fmt.Errorf("topic %s does not exist", topicID)
	}

	dup, err := e.store.HasAboutEdge(ctx, art.ID, topicID)
	if err != nil {
		return schema.IngestResult{}, err
	}
	if dup {
		e.trackArticle("article_duplicate", topicID, art.ID, "ABOUT edge already exists")
		return schema.IngestResult{
			Action:   schema.DuplicateAction,
			Tier:     cls.OverallImportance,
			MakeRoom: schema.MakeRoomResult{Action: schema.DuplicateAction},
		}, nil
	}

	plan, err := e.planRoom(ctx, topicID, art, cls, nil, nil)
	if err != nil {
		return schema.IngestResult{}, err
	}
	makeRoom := roomResult(plan)
	if plan.rejected {
		e.trackArticle("article_rejected", topicID, art.ID, plan.motivation)
		return schema.IngestResult{
			Action:   schema.RejectAction,
			Tier:     cls.OverallImportance,
			MakeRoom: makeRoom,
		}, nil
	}

	result := schema.IngestResult{
		Action:   makeRoom.Action,
		Tier:     cls.OverallImportance,
		MakeRoom: makeRoom,
	}
	if test {
		return result, nil
	}

	muts := append(plan.muts, schema.EdgeMutation{
		Kind:           schema.CreateEdgeMutation,
		ArticleID:      art.ID,
		TopicID:        topicID,
		Timeframe:      cls.Timeframe,
		Article:        &art,
		Classification: &cls,
		At:             time.Now().UTC(),
	})
	if err := e.store.Apply(ctx, muts); err != nil {
		return schema.IngestResult{}, fmt.Errorf("applying ingest mutations for %s: %w", topicID, err)
	}
	e.emitMutationEvents(topicID, muts)
	e.trackArticle("article_added", topicID, art.ID,
		fmt.Sprintf("timeframe=%s tier=%d dominant=%s", cls.Timeframe, cls.OverallImportance, cls.DominantPerspective))
	result.MakeRoom.Mutations = muts
	return result, nil
}
