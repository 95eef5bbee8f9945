package schema

import (
	"fmt"
	"strings"
)

// ParseTimeframe normalizes and validates a timeframe string.
func ParseTimeframe(s string) (Timeframe, error) {
	tf := Timeframe(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := ValidTimeframes[tf]; !ok {
		return "", fmt.Errorf("invalid timeframe '%s'. must be fundamental, medium, current", s)
	}
	return tf, nil
}

// ParsePerspective normalizes and validates a perspective string.
func ParsePerspective(s string) (Perspective, error) {
	p := Perspective(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := ValidPerspectives[p]; !ok {
		return "", fmt.Errorf("invalid perspective '%s'. must be risk, opportunity, trend, catalyst", s)
	}
	return p, nil
}

// TierName returns the descriptive name for a tier.
func TierName(tier int) string {
	switch tier {
	case TierPremium:
		return "premium"
	case TierStandard:
		return "standard"
	case TierFiller:
		return "filler"
	case TierArchived:
		return "archived"
	default:
		return fmt.Sprintf("tier%d", tier)
	}
}

// TimeframeHorizon returns the human-readable horizon for a timeframe.
func TimeframeHorizon(tf Timeframe) string {
	switch tf {
	case FundamentalTimeframe:
		return "6+ months"
	case MediumTimeframe:
		return "1-6 months"
	case CurrentTimeframe:
		return "0-4 weeks"
	default:
		return "unknown"
	}
}

// WeakestTopic picks the replacement candidate from a topic list: lowest
// importance, ties broken by oldest last_updated. Returns nil for an empty
// list.
func WeakestTopic(topics []Topic) *Topic {
	if len(topics) == 0 {
		return nil
	}
	weakest := topics[0]
	for _, t := range topics[1:] {
		if t.Importance < weakest.Importance ||
			(t.Importance == weakest.Importance && t.LastUpdated.Before(weakest.LastUpdated)) {
			weakest = t
		}
	}
	return &weakest
}

// SummarizeTopic converts a topic into the compact form listed in admission
// requests.
func SummarizeTopic(t Topic) TopicSummary {
	return TopicSummary{
		ID:          t.ID,
		Name:        t.Name,
		Importance:  t.Importance,
		LastUpdated: t.LastUpdated.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}
