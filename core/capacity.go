package core

import (
	"context"
	"fmt"
	"time"

	"github.com/marketloom/graphgate/schema"
)

// CheckCapacity returns the occupancy of the (topic, timeframe, tier)
// bucket against its configured limit.
func (e *Engine) CheckCapacity(ctx context.Context, topicID string, tf schema.Timeframe, tier int) (schema.CapacityStatus, error) {
	count, err := e.store.CountBucket(ctx, topicID, tf, tier)
	if err != nil {
		return schema.CapacityStatus{}, fmt.Errorf("capacity check for %s/%s/tier%d: %w", topicID, tf, tier, err)
	}
	limit := e.cfg.TierLimit(tier)
	return schema.CapacityStatus{Count: count, Max: limit, HasRoom: count < limit}, nil
}

// CheckCapacityPerPerspective returns the occupancy of the
// (topic, timeframe, perspective, tier) bucket against its limit.
func (e *Engine) CheckCapacityPerPerspective(ctx context.Context, topicID string, tf schema.Timeframe, p schema.Perspective, tier int) (schema.CapacityStatus, error) {
	count, err := e.store.CountPerspectiveBucket(ctx, topicID, tf, p, tier)
	if err != nil {
		return schema.CapacityStatus{}, fmt.Errorf("perspective capacity check for %s/%s/%s/tier%d: %w", topicID, tf, p, tier, err)
	}
	limit := e.cfg.TierLimit(tier)
	return schema.CapacityStatus{Count: count, Max: limit, HasRoom: count < limit}, nil
}

// GetDistribution captures the full bucket snapshot for one topic: overall
// counts per (timeframe, tier) and per-perspective counts per
// (timeframe, perspective, tier). This is the before/after report the
// sweeper persists for observability.
func (e *Engine) GetDistribution(ctx context.Context, topicID string) (*schema.Distribution, error) {
	dist := &schema.Distribution{
		TopicID: topicID,
		TakenAt: time.Now().UTC(),
	}

	for _, tf := range schema.AllTimeframes {
		for _, tier := range schema.ManagedTiers {
			count, err := e.store.CountBucket(ctx, topicID, tf, tier)
			if err != nil {
				return nil, fmt.Errorf("distribution for %s/%s/tier%d: %w", topicID, tf, tier, err)
			}
			dist.Overall = append(dist.Overall, schema.DistributionCell{
				Timeframe: tf,
				Tier:      tier,
				Count:     count,
				Max:       e.cfg.TierLimit(tier),
			})
		}
	}

	for _, tf := range schema.AllTimeframes {
		for _, p := range schema.AllPerspectives {
			for _, tier := range schema.ManagedTiers {
				count, err := e.store.CountPerspectiveBucket(ctx, topicID, tf, p, tier)
				if err != nil {
					return nil, fmt.Errorf("distribution for %s/%s/%s/tier%d: %w", topicID, tf, p, tier, err)
				}
				dist.Perspective = append(dist.Perspective, schema.DistributionCell{
					Timeframe:   tf,
					Perspective: p,
					Tier:        tier,
					Count:       count,
					Max:         e.cfg.TierLimit(tier),
				})
			}
		}
	}

	return dist, nil
}
