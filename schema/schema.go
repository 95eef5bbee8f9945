// Package schema has configs, models and shared constants for all parts of graphgate.
package schema

import (
	"fmt"
	"time"
)

// Topic represents a persistent analytical anchor node in the graph:
// an asset, policy, macro driver, geography, company or sector.
type Topic struct {
	ID          string    `json:"id"`         // Stable slug, unique across the graph
	Name        string    `json:"name"`       // Display name
	Category    string    `json:"category"`   // Coarse type: asset, policy, geography, ...
	Importance  int       `json:"importance"` // Ordinal rank used to pick eviction candidates
	LastUpdated time.Time `json:"last_updated"`
}

// Article represents an ingested content unit. Immutable once ingested.
type Article struct {
	ID          string    `json:"id"`
	Summary     string    `json:"summary"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

// AboutEdge is the Article -> Topic relationship carrying the per-topic
// classification. It is the central mutable entity of the capacity engine.
type AboutEdge struct {
	ArticleID string    `json:"article_id"`
	TopicID   string    `json:"topic_id"`
	Timeframe Timeframe `json:"timeframe"`

	Risk        int `json:"importance_risk"`
	Opportunity int `json:"importance_opportunity"`
	Trend       int `json:"importance_trend"`
	Catalyst    int `json:"importance_catalyst"`

	CreatedAt    time.Time  `json:"created_at"`
	DowngradedAt *time.Time `json:"downgraded_at,omitempty"`
	ArchivedAt   *time.Time `json:"archived_at,omitempty"`

	DowngradeReason string `json:"downgrade_reason,omitempty"`
	ArchiveReason   string `json:"archive_reason,omitempty"`
	Motivation      string `json:"motivation,omitempty"`
	Implications    string `json:"implications,omitempty"`
}

// Score returns the edge's score for one perspective.
func (e *AboutEdge) Score(p Perspective) int {
	switch p {
	case RiskPerspective:
		return e.Risk
	case OpportunityPerspective:
		return e.Opportunity
	case TrendPerspective:
		return e.Trend
	case CatalystPerspective:
		return e.Catalyst
	default:
		return 0
	}
}

// OverallTier returns the max of the four perspective scores (0 if all zero).
func (e *AboutEdge) OverallTier() int {
	tier := e.Risk
	for _, s := range []int{e.Opportunity, e.Trend, e.Catalyst} {
		if s > tier {
			tier = s
		}
	}
	return tier
}

// Archived reports whether all four perspective scores are zero. Archived
// edges are excluded from every capacity bucket.
func (e *AboutEdge) Archived() bool {
	return e.Risk == 0 && e.Opportunity == 0 && e.Trend == 0 && e.Catalyst == 0
}

// InTierBucket reports membership in the (timeframe, tier) bucket: any
// perspective score >= tier. One edge can occupy several tier buckets at
// once; this is a superset rule, not exact-tier bucketing.
func (e *AboutEdge) InTierBucket(tf Timeframe, tier int) bool {
	if e.Timeframe != tf || e.Archived() || tier <= 0 {
		return false
	}
	return e.Risk >= tier || e.Opportunity >= tier || e.Trend >= tier || e.Catalyst >= tier
}

// InPerspectiveBucket reports membership in the (timeframe, perspective,
// tier) bucket: that specific perspective's score >= tier.
func (e *AboutEdge) InPerspectiveBucket(tf Timeframe, p Perspective, tier int) bool {
	if e.Timeframe != tf || e.Archived() || tier <= 0 {
		return false
	}
	return e.Score(p) >= tier
}

// Classification captures how one article relates to one topic. Construct
// via NewClassification so the fields are validated once, at the boundary.
type Classification struct {
	Timeframe           Timeframe   `json:"timeframe"`
	OverallImportance   int         `json:"overall_importance"`
	DominantPerspective Perspective `json:"dominant_perspective"`

	Risk        int `json:"importance_risk"`
	Opportunity int `json:"importance_opportunity"`
	Trend       int `json:"importance_trend"`
	Catalyst    int `json:"importance_catalyst"`

	Motivation   string `json:"motivation,omitempty"`
	Implications string `json:"implications,omitempty"`
}

// NewClassification validates and normalizes a classification. The overall
// importance is derived as the max of the four scores; a zero overall (all
// scores zero) is rejected because archived edges are never admitted.
func NewClassification(tf Timeframe, dominant Perspective, risk, opportunity, trend, catalyst int) (Classification, error) {
	if _, ok := ValidTimeframes[tf]; !ok {
		return Classification{}, fmt.Errorf("invalid timeframe %q", tf)
	}
	if _, ok := ValidPerspectives[dominant]; !ok {
		return Classification{}, fmt.Errorf("invalid dominant perspective %q", dominant)
	}
	for _, s := range []struct {
		name  Perspective
		score int
	}{
		{RiskPerspective, risk},
		{OpportunityPerspective, opportunity},
		{TrendPerspective, trend},
		{CatalystPerspective, catalyst},
	} {
		if s.score < TierArchived || s.score > TierPremium {
			return Classification{}, fmt.Errorf("importance_%s=%d outside [%d,%d]", s.name, s.score, TierArchived, TierPremium)
		}
	}
	cls := Classification{
		Timeframe:           tf,
		DominantPerspective: dominant,
		Risk:                risk,
		Opportunity:         opportunity,
		Trend:               trend,
		Catalyst:            catalyst,
	}
	cls.OverallImportance = maxScore(risk, opportunity, trend, catalyst)
	if cls.OverallImportance == TierArchived {
		return Classification{}, fmt.Errorf("all perspective scores are zero")
	}
	return cls, nil
}

// Validate re-checks an already constructed classification, for documents
// decoded from files or wire formats.
func (c Classification) Validate() error {
	rebuilt, err := NewClassification(c.Timeframe, c.DominantPerspective, c.Risk, c.Opportunity, c.Trend, c.Catalyst)
	if err != nil {
		return err
	}
	if c.OverallImportance != 0 && c.OverallImportance != rebuilt.OverallImportance {
		return fmt.Errorf("overall_importance=%d does not match max perspective score %d",
			c.OverallImportance, rebuilt.OverallImportance)
	}
	return nil
}

// Score returns the classification's score for one perspective.
func (c Classification) Score(p Perspective) int {
	switch p {
	case RiskPerspective:
		return c.Risk
	case OpportunityPerspective:
		return c.Opportunity
	case TrendPerspective:
		return c.Trend
	case CatalystPerspective:
		return c.Catalyst
	default:
		return 0
	}
}

// AtTier synthesizes the classification used when a displaced article
// becomes the candidate one tier down: uniform target tier across all four
// perspectives, dominant perspective preserved.
func (c Classification) AtTier(tier int) Classification {
	return Classification{
		Timeframe:           c.Timeframe,
		OverallImportance:   tier,
		DominantPerspective: c.DominantPerspective,
		Risk:                tier,
		Opportunity:         tier,
		Trend:               tier,
		Catalyst:            tier,
		Motivation:          c.Motivation,
		Implications:        c.Implications,
	}
}

func maxScore(scores ...int) int {
	m := 0
	for _, s := range scores {
		if s > m {
			m = s
		}
	}
	return m
}
