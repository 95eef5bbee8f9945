package core

import (
	"context"
	"fmt"
	"time"

	"github.com/marketloom/graphgate/internal/contract"
	"github.com/marketloom/graphgate/schema"
)

// roomPlan accumulates the pending mutations of one make-room chain. The
// chain applies as a single store transaction only when every level
// succeeds; a reject anywhere discards the accumulator untouched.
type roomPlan struct {
	muts       []schema.EdgeMutation
	first      *displacement // first displaced occupant, reported to the caller
	motivation string
	rejected   bool
}

// displacement names the occupant the oracle chose at the top level.
type displacement struct {
	articleID string
	newTier   int
}

// MakeRoomForArticle frees a slot in the (topic, timeframe, tier) bucket the
// classification targets, cascading downgrades into lower tiers when they
// are full themselves. With test=true the oracle is still consulted but no
// graph mutation is applied.
func (e *Engine) MakeRoomForArticle(ctx context.Context, topicID string, art schema.Article, cls schema.Classification, test bool) (schema.MakeRoomResult, error) {
	if err := cls.Validate(); err != nil {
		return schema.MakeRoomResult{}, fmt.Errorf("invalid classification: %w", err)
	}

	unlock := e.lockTopic(topicID)
	defer unlock()

	return e.makeRoomLocked(ctx, topicID, art, cls, test)
}

// makeRoomLocked runs the plan/apply split under the caller-held topic lock.
func (e *Engine) makeRoomLocked(ctx context.Context, topicID string, art schema.Article, cls schema.Classification, test bool) (schema.MakeRoomResult, error) {
	plan, err := e.planRoom(ctx, topicID, art, cls, nil, nil)
	if err != nil {
		return schema.MakeRoomResult{}, err
	}

	result := roomResult(plan)
	if plan.rejected || test || len(plan.muts) == 0 {
		return result, nil
	}

	if err := e.store.Apply(ctx, plan.muts); err != nil {
		return schema.MakeRoomResult{}, fmt.Errorf("applying make-room mutations for %s: %w", topicID, err)
	}
	e.emitMutationEvents(topicID, plan.muts)
	result.Mutations = plan.muts
	return result, nil
}

// planRoom walks descending tiers as an explicit bounded loop, carrying the
// mutation accumulator. Per level: a bucket with room accepts; a full bucket
// asks the oracle to downgrade one occupant; a downgrade into a full lower
// tier turns the displaced occupant into the candidate one level down.
// Archive (tier 0) always succeeds and terminates the chain.
func (e *Engine) planRoom(ctx context.Context, topicID string, cand schema.Article, cls schema.Classification, seed []schema.EdgeMutation, displaced map[string]bool) (roomPlan, error) {
	plan := roomPlan{muts: seed}
	if displaced == nil {
		displaced = make(map[string]bool)
	}
	tier := cls.OverallImportance

	for depth := 0; ; depth++ {
		if depth >= len(schema.ManagedTiers) {
			// Tiers strictly decrease and tier 0 always accepts, so
			// running out of depth means the tier table is misconfigured.
			msg := fmt.Sprintf("topic=%s timeframe=%s tier=%d: %v", topicID, cls.Timeframe, tier, ErrRecursionExhausted)
			contract.LogWarn("Capacity cascade", ErrRecursionExhausted)
			e.track("capacity_recursion_exhausted", msg)
			return roomPlan{rejected: true, motivation: msg}, nil
		}

		status, err := e.CheckCapacity(ctx, topicID, cls.Timeframe, tier)
		if err != nil {
			return roomPlan{}, err
		}
		if status.HasRoom {
			return plan, nil
		}

		occupants, err := e.store.BucketOccupants(ctx, topicID, cls.Timeframe, tier, e.cfg.BucketScanWindow)
		if err != nil {
			return roomPlan{}, err
		}
		occupants = filterOccupants(occupants, cand.ID, displaced)
		if len(occupants) == 0 {
			// Every counted occupant is already pending displacement in
			// this chain; applying the accumulator frees the bucket.
			return plan, nil
		}

		topic, err := e.store.GetTopic(ctx, topicID)
		if err != nil {
			return roomPlan{}, err
		}
		if topic == nil {
			return roomPlan{}, fmt.Errorf("topic %s does not exist", topicID)
		}

		octx, cancel := e.oracleContext(ctx)
		decision, derr := e.oracle.DecideArticleCapacity(octx, schema.ArticleCapacityRequest{
			Topic:          *topic,
			Timeframe:      cls.Timeframe,
			Tier:           tier,
			Candidate:      cand,
			Classification: cls,
			Occupants:      occupants,
			Capacity:       status,
		})
		cancel()
		if derr != nil {
			// Fail closed: an unreachable or malformed oracle never admits.
			contract.LogWarn("Article capacity oracle", derr)
			return rejectPlan(depth, tier, fmt.Sprintf("%v: %v", ErrOracleUnavailable, derr)), nil
		}

		switch decision.Action {
		case schema.RejectAction:
			return rejectPlan(depth, tier, decision.Motivation), nil
		case schema.DowngradeAction:
			// handled below
		default:
			contract.LogWarn("Article capacity oracle", fmt.Errorf("unexpected action %q", decision.Action))
			return rejectPlan(depth, tier, fmt.Sprintf("unexpected oracle action %q", decision.Action)), nil
		}

		target := findOccupant(occupants, decision.TargetArticleID)
		if target == nil {
			return roomPlan{}, fmt.Errorf("downgrade target %q not in %s/%s/tier%d occupants: %w",
				decision.TargetArticleID, topicID, cls.Timeframe, tier, ErrIntegrity)
		}
		if decision.NewImportance == nil {
			contract.LogWarn("Article capacity oracle", fmt.Errorf("downgrade without new_importance"))
			return rejectPlan(depth, tier, "oracle downgrade missing new_importance"), nil
		}
		newTier := *decision.NewImportance
		if newTier < schema.TierArchived || newTier >= tier {
			contract.LogWarn("Article capacity oracle", fmt.Errorf("downgrade to tier %d from tier %d", newTier, tier))
			return rejectPlan(depth, tier, fmt.Sprintf("oracle downgrade to invalid tier %d", newTier)), nil
		}

		if plan.first == nil {
			plan.first = &displacement{articleID: target.Article.ID, newTier: newTier}
			plan.motivation = decision.Motivation
		}
		now := time.Now().UTC()

		if newTier == schema.TierArchived {
			// Base case: archived edges occupy no bucket, so archiving
			// needs no capacity check and always succeeds.
			plan.muts = append(plan.muts, schema.EdgeMutation{
				Kind:      schema.ArchiveEdgeMutation,
				ArticleID: target.Article.ID,
				TopicID:   topicID,
				Timeframe: cls.Timeframe,
				Reason:    decision.Motivation,
				At:        now,
			})
			return plan, nil
		}

		plan.muts = append(plan.muts, schema.EdgeMutation{
			Kind:          schema.DowngradeEdgeMutation,
			ArticleID:     target.Article.ID,
			TopicID:       topicID,
			Timeframe:     cls.Timeframe,
			NewImportance: newTier,
			Reason:        decision.Motivation,
			At:            now,
		})
		displaced[target.Article.ID] = true

		lower, err := e.CheckCapacity(ctx, topicID, cls.Timeframe, newTier)
		if err != nil {
			return roomPlan{}, err
		}
		if lower.HasRoom {
			return plan, nil
		}

		// Cascade: the displaced occupant becomes the candidate one tier
		// down, with a uniform classification at the target tier and the
		// dominant perspective preserved.
		cand = target.Article
		cls = cls.AtTier(newTier)
		tier = newTier
	}
}

// roomResult converts a finished plan into the caller-facing result.
func roomResult(plan roomPlan) schema.MakeRoomResult {
	if plan.rejected {
		return schema.MakeRoomResult{Action: schema.RejectAction, Motivation: plan.motivation}
	}
	result := schema.MakeRoomResult{Action: schema.AcceptAction, Motivation: plan.motivation}
	if plan.first != nil {
		newTier := plan.first.newTier
		result.Action = schema.DowngradeAction
		result.TargetArticleID = plan.first.articleID
		result.NewImportance = &newTier
	}
	return result
}

// rejectPlan builds the rejection outcome for one level. Rejections below
// the top level surface the canonical full-lower-tier motivation, since the
// caller's downgrade is what could not proceed.
func rejectPlan(depth, tier int, motivation string) roomPlan {
	if depth > 0 {
		motivation = fmt.Sprintf("Cannot downgrade - tier %d at capacity", tier)
	}
	return roomPlan{rejected: true, motivation: motivation}
}

// filterOccupants drops the candidate's own edge and edges already pending
// displacement in this chain; an article never competes against itself.
func filterOccupants(occupants []schema.BucketOccupant, candidateID string, displaced map[string]bool) []schema.BucketOccupant {
	filtered := make([]schema.BucketOccupant, 0, len(occupants))
	for _, o := range occupants {
		if o.Article.ID == candidateID || displaced[o.Article.ID] {
			continue
		}
		filtered = append(filtered, o)
	}
	return filtered
}

// findOccupant returns the occupant with the given article id, or nil.
func findOccupant(occupants []schema.BucketOccupant, articleID string) *schema.BucketOccupant {
	for i := range occupants {
		if occupants[i].Article.ID == articleID {
			return &occupants[i]
		}
	}
	return nil
}

// emitMutationEvents records one audit event per applied mutation.
func (e *Engine) emitMutationEvents(topicID string, muts []schema.EdgeMutation) {
	for _, m := range muts {
		switch m.Kind {
		case schema.ArchiveEdgeMutation:
			e.trackArticle("article_archived", topicID, m.ArticleID, m.Reason)
		case schema.DowngradeEdgeMutation:
			e.trackArticle("article_downgraded", topicID, m.ArticleID,
				fmt.Sprintf("downgraded to tier %d: %s", m.NewImportance, m.Reason))
		case schema.ClampPerspectiveMutation:
			e.trackArticle("article_downgraded", topicID, m.ArticleID,
				fmt.Sprintf("%s perspective clamped to tier %d: %s", m.Perspective, m.NewImportance, m.Reason))
		}
	}
}
