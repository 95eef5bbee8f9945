package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marketloom/graphgate/internal/contract"
	"github.com/marketloom/graphgate/schema"
)

// RunCapacityCleanup sweeps every capacity bucket of one topic and
// remediates over-capacity findings, repeating up to MaxPasses until a pass
// finds nothing over capacity. DryRun and Test both report without
// remediating, so no mutation ever lands. Failed capacity checks are
// contained: the bucket is recorded as check-failed and the sweep continues.
func (e *Engine) RunCapacityCleanup(ctx context.Context, topicID string, opts schema.SweepOptions) (*schema.SweepReport, error) {
	opts = normalizeSweepOptions(opts, e.cfg)

	unlock := e.lockTopic(topicID)
	defer unlock()

	report := &schema.SweepReport{
		SweepID:   uuid.NewString(),
		TopicID:   topicID,
		StartedAt: time.Now().UTC(),
	}

	astore := e.auditStore()
	if astore != nil {
		params := map[string]any{
			"max_passes":  opts.MaxPasses,
			"dry_run":     opts.DryRun,
			"test":        opts.Test,
			"scan_window": e.cfg.BucketScanWindow,
		}
		if err := astore.BeginSweep(report.SweepID, topicID, report.StartedAt, params); err != nil {
			contract.LogWarn("Audit begin sweep", err)
			astore = nil
		}
	}

	before, err := e.GetDistribution(ctx, topicID)
	if err != nil {
		contract.LogWarn("Sweep before-snapshot", err)
	} else {
		report.Before = before
		if astore != nil {
			if serr := astore.RecordSnapshot(report.SweepID, "before", before); serr != nil {
				contract.LogWarn("Audit snapshot", serr)
			}
		}
	}

	remediate := !opts.DryRun && !opts.Test
	for n := 1; n <= opts.MaxPasses; n++ {
		pass := e.sweepPass(ctx, topicID, opts, remediate)
		pass.Number = n
		report.Passes = append(report.Passes, pass)

		if pass.OverCapacity == 0 {
			report.Converged = true
			break
		}
		if !remediate {
			// Diagnostic mode: repeating identical passes adds nothing.
			break
		}
		if pass.ActionsApplied == 0 {
			// Over capacity but no remediation landed; a rerun cannot
			// change the outcome.
			break
		}
	}
	report.EndedAt = time.Now().UTC()

	after, err := e.GetDistribution(ctx, topicID)
	if err != nil {
		contract.LogWarn("Sweep after-snapshot", err)
	} else {
		report.After = after
		if astore != nil {
			if serr := astore.RecordSnapshot(report.SweepID, "after", after); serr != nil {
				contract.LogWarn("Audit snapshot", serr)
			}
		}
	}

	if astore != nil {
		if serr := astore.EndSweep(report.SweepID, report.EndedAt,
			len(report.Passes), report.TotalChecks(), report.TotalActions(), report.Converged); serr != nil {
			contract.LogWarn("Audit end sweep", serr)
		}
	}

	e.track("sweep_completed", fmt.Sprintf("topic=%s passes=%d checks=%d actions=%d converged=%t",
		topicID, len(report.Passes), report.TotalChecks(), report.TotalActions(), report.Converged))
	if !report.Converged {
		e.track("sweep_non_convergence", fmt.Sprintf("topic=%s still over capacity after %d passes",
			topicID, len(report.Passes)))
	}
	return report, nil
}

// RunCapacityCleanupAll sweeps every topic in the graph, fanning topics out
// over a bounded worker pool. Per-topic results come back in topic listing
// order; one failed topic does not stop the rest.
func (e *Engine) RunCapacityCleanupAll(ctx context.Context, opts schema.SweepOptions) ([]*schema.SweepReport, error) {
	topics, err := e.store.ListTopics(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing topics for cleanup: %w", err)
	}

	reports := make([]*schema.SweepReport, len(topics))
	sem := make(chan struct{}, e.cfg.Workers)
	var wg sync.WaitGroup
	for i, t := range topics {
		sem <- struct{}{}
		wg.Go(func() {
			defer func() { <-sem }()
			report, rerr := e.RunCapacityCleanup(ctx, t.ID, opts)
			if rerr != nil {
				contract.LogWarn(fmt.Sprintf("Cleanup for topic %s", t.ID), rerr)
				return
			}
			reports[i] = report
		})
	}
	wg.Wait()

	out := make([]*schema.SweepReport, 0, len(reports))
	for _, r := range reports {
		if r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

// sweepPass runs one pass over the cross-product of buckets: overall
// (timeframe, tier) first, then every (timeframe, perspective, tier).
func (e *Engine) sweepPass(ctx context.Context, topicID string, opts schema.SweepOptions, remediate bool) schema.SweepPass {
	var pass schema.SweepPass

	for _, tf := range opts.Timeframes {
		for _, tier := range opts.Tiers {
			limit := e.cfg.TierLimit(tier)

			count, err := e.store.CountBucket(ctx, topicID, tf, tier)
			reading := schema.BucketReading{
				Key: schema.BucketKey{TopicID: topicID, Timeframe: tf, Tier: tier},
				Max: limit,
			}
			if err != nil {
				contract.LogWarn(fmt.Sprintf("Sweep check %s/%s/tier%d", topicID, tf, tier), err)
				reading.CheckFailed = true
				pass.FailedChecks++
			} else {
				reading.Count = count
				reading.OverCapacity = count > limit
			}
			pass.Readings = append(pass.Readings, reading)
			if reading.OverCapacity {
				pass.OverCapacity++
				if remediate {
					pass.ActionsApplied += e.remediateOverall(ctx, topicID, tf, tier)
				}
			}

			for _, p := range schema.AllPerspectives {
				pcount, perr := e.store.CountPerspectiveBucket(ctx, topicID, tf, p, tier)
				preading := schema.BucketReading{
					Key: schema.BucketKey{TopicID: topicID, Timeframe: tf, Perspective: p, Tier: tier},
					Max: limit,
				}
				if perr != nil {
					contract.LogWarn(fmt.Sprintf("Sweep check %s/%s/%s/tier%d", topicID, tf, p, tier), perr)
					preading.CheckFailed = true
					pass.FailedChecks++
				} else {
					preading.Count = pcount
					preading.OverCapacity = pcount > limit
				}
				pass.Readings = append(pass.Readings, preading)
				if preading.OverCapacity {
					pass.OverCapacity++
					if remediate {
						pass.ActionsApplied += e.remediatePerspective(ctx, topicID, tf, p, tier)
					}
				}
			}
		}
	}
	return pass
}

// remediateOverall shrinks an over-capacity (timeframe, tier) bucket by one
// occupant: the oracle's weakest pick is archived at the lowest managed tier
// and downgraded one tier otherwise, cascading through the regular make-room
// plan when the lower tier is itself full. Returns mutations applied.
func (e *Engine) remediateOverall(ctx context.Context, topicID string, tf schema.Timeframe, tier int) int {
	occupants, err := e.store.BucketOccupants(ctx, topicID, tf, tier, e.cfg.BucketScanWindow)
	if err != nil || len(occupants) == 0 {
		if err != nil {
			contract.LogWarn(fmt.Sprintf("Sweep occupants %s/%s/tier%d", topicID, tf, tier), err)
		}
		return 0
	}
	topic, err := e.store.GetTopic(ctx, topicID)
	if err != nil || topic == nil {
		contract.LogWarn(fmt.Sprintf("Sweep topic %s", topicID), err)
		return 0
	}

	octx, cancel := e.oracleContext(ctx)
	pick, err := e.oracle.PickWeakest(octx, schema.WeakestPickRequest{
		Topic:     *topic,
		Timeframe: tf,
		Tier:      tier,
		Occupants: occupants,
	})
	cancel()
	if err != nil {
		contract.LogWarn("Weakest-pick oracle", err)
		return 0
	}
	target := findOccupant(occupants, pick.ArticleID)
	if target == nil {
		contract.LogWarn("Weakest-pick oracle",
			fmt.Errorf("pick %q not in %s/%s/tier%d occupants: %w", pick.ArticleID, topicID, tf, tier, ErrIntegrity))
		return 0
	}

	newTier := tier - 1
	now := time.Now().UTC()
	var muts []schema.EdgeMutation
	if newTier == schema.TierArchived {
		muts = []schema.EdgeMutation{{
			Kind:      schema.ArchiveEdgeMutation,
			ArticleID: target.Article.ID,
			TopicID:   topicID,
			Timeframe: tf,
			Reason:    pick.Reasoning,
			At:        now,
		}}
	} else {
		seed := []schema.EdgeMutation{{
			Kind:          schema.DowngradeEdgeMutation,
			ArticleID:     target.Article.ID,
			TopicID:       topicID,
			Timeframe:     tf,
			NewImportance: newTier,
			Reason:        pick.Reasoning,
			At:            now,
		}}
		displaced := map[string]bool{target.Article.ID: true}
		cls := sweepClassification(target.Edge, tf, newTier)
		plan, perr := e.planRoom(ctx, topicID, target.Article, cls, seed, displaced)
		if perr != nil {
			contract.LogWarn(fmt.Sprintf("Sweep cascade %s/%s/tier%d", topicID, tf, tier), perr)
			return 0
		}
		if plan.rejected {
			contract.LogWarn(fmt.Sprintf("Sweep cascade %s/%s/tier%d", topicID, tf, tier),
				fmt.Errorf("rejected: %s", plan.motivation))
			return 0
		}
		muts = plan.muts
	}

	if err := e.store.Apply(ctx, muts); err != nil {
		contract.LogWarn(fmt.Sprintf("Sweep apply %s/%s/tier%d", topicID, tf, tier), err)
		return 0
	}
	e.emitMutationEvents(topicID, muts)
	return len(muts)
}

// remediatePerspective clamps the weakest occupant of an over-capacity
// (timeframe, perspective, tier) bucket one tier down in that perspective
// only. No cascade: subsequent passes re-check the lower bucket.
func (e *Engine) remediatePerspective(ctx context.Context, topicID string, tf schema.Timeframe, p schema.Perspective, tier int) int {
	occupants, err := e.store.PerspectiveOccupants(ctx, topicID, tf, p, tier, e.cfg.BucketScanWindow)
	if err != nil || len(occupants) == 0 {
		if err != nil {
			contract.LogWarn(fmt.Sprintf("Sweep occupants %s/%s/%s/tier%d", topicID, tf, p, tier), err)
		}
		return 0
	}
	topic, err := e.store.GetTopic(ctx, topicID)
	if err != nil || topic == nil {
		contract.LogWarn(fmt.Sprintf("Sweep topic %s", topicID), err)
		return 0
	}

	octx, cancel := e.oracleContext(ctx)
	pick, err := e.oracle.PickWeakest(octx, schema.WeakestPickRequest{
		Topic:       *topic,
		Timeframe:   tf,
		Perspective: p,
		Tier:        tier,
		Occupants:   occupants,
	})
	cancel()
	if err != nil {
		contract.LogWarn("Weakest-pick oracle", err)
		return 0
	}
	target := findOccupant(occupants, pick.ArticleID)
	if target == nil {
		contract.LogWarn("Weakest-pick oracle",
			fmt.Errorf("pick %q not in %s/%s/%s/tier%d occupants: %w", pick.ArticleID, topicID, tf, p, tier, ErrIntegrity))
		return 0
	}

	mut := schema.EdgeMutation{
		Kind:          schema.ClampPerspectiveMutation,
		ArticleID:     target.Article.ID,
		TopicID:       topicID,
		Timeframe:     tf,
		Perspective:   p,
		NewImportance: tier - 1,
		Reason:        pick.Reasoning,
		At:            time.Now().UTC(),
	}
	if err := e.store.Apply(ctx, []schema.EdgeMutation{mut}); err != nil {
		contract.LogWarn(fmt.Sprintf("Sweep apply %s/%s/%s/tier%d", topicID, tf, p, tier), err)
		return 0
	}
	e.emitMutationEvents(topicID, []schema.EdgeMutation{mut})
	return 1
}

// normalizeSweepOptions fills in the configured defaults.
func normalizeSweepOptions(opts schema.SweepOptions, cfg *contract.Config) schema.SweepOptions {
	if len(opts.Timeframes) == 0 {
		opts.Timeframes = schema.AllTimeframes
	}
	if len(opts.Tiers) == 0 {
		opts.Tiers = schema.ManagedTiers
	}
	if opts.MaxPasses <= 0 {
		opts.MaxPasses = cfg.MaxCleanupPasses
	}
	return opts
}

// sweepClassification builds the cascade classification for a displaced
// occupant: uniform scores at the target tier, dominant perspective taken
// from the edge's highest score.
func sweepClassification(edge schema.AboutEdge, tf schema.Timeframe, tier int) schema.Classification {
	dominant := schema.RiskPerspective
	best := -1
	for _, p := range schema.AllPerspectives {
		if s := edge.Score(p); s > best {
			best = s
			dominant = p
		}
	}
	return schema.Classification{
		Timeframe:           tf,
		OverallImportance:   tier,
		DominantPerspective: dominant,
		Risk:                tier,
		Opportunity:         tier,
		Trend:               tier,
		Catalyst:            tier,
	}
}
