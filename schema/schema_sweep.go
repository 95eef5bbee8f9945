package schema

import "time"

// SweepOptions controls one cleanup sweep.
type SweepOptions struct {
	Timeframes []Timeframe // defaults to AllTimeframes
	Tiers      []int       // defaults to ManagedTiers
	MaxPasses  int         // defaults to Config.MaxCleanupPasses
	DryRun     bool        // detect and report only, no remediation
	Test       bool        // like DryRun; kept distinct for symmetry with ingest
}

// BucketKey identifies one capacity bucket. Perspective is empty for
// overall-tier buckets.
type BucketKey struct {
	TopicID     string      `json:"topic_id"`
	Timeframe   Timeframe   `json:"timeframe"`
	Perspective Perspective `json:"perspective,omitempty"`
	Tier        int         `json:"tier"`
}

// BucketReading is one capacity check outcome within a sweep pass.
type BucketReading struct {
	Key          BucketKey `json:"key"`
	Count        int       `json:"count"`
	Max          int       `json:"max"`
	OverCapacity bool      `json:"over_capacity"`
	CheckFailed  bool      `json:"check_failed"` // query error; treated as not over
}

// SweepPass summarizes one pass over the cross-product of buckets.
type SweepPass struct {
	Number         int             `json:"number"`
	Readings       []BucketReading `json:"readings"`
	OverCapacity   int             `json:"over_capacity"`
	FailedChecks   int             `json:"failed_checks"`
	ActionsApplied int             `json:"actions_applied"`
}

// SweepReport is the outcome of a cleanup sweep for one topic.
type SweepReport struct {
	SweepID   string        `json:"sweep_id"`
	TopicID   string        `json:"topic_id"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at"`
	Passes    []SweepPass   `json:"passes"`
	Converged bool          `json:"converged"`
	Before    *Distribution `json:"before"`
	After     *Distribution `json:"after"`
}

// TotalActions sums remediation actions applied across passes.
func (r *SweepReport) TotalActions() int {
	total := 0
	for _, p := range r.Passes {
		total += p.ActionsApplied
	}
	return total
}

// TotalChecks sums capacity checks run across passes.
func (r *SweepReport) TotalChecks() int {
	total := 0
	for _, p := range r.Passes {
		total += len(p.Readings)
	}
	return total
}

// DistributionCell is one bucket count inside a distribution report.
type DistributionCell struct {
	Timeframe   Timeframe   `json:"timeframe"`
	Perspective Perspective `json:"perspective,omitempty"`
	Tier        int         `json:"tier"`
	Count       int         `json:"count"`
	Max         int         `json:"max"`
}

// Over reports whether the cell exceeds its limit.
func (c DistributionCell) Over() bool { return c.Count > c.Max }

// Distribution is the before/after snapshot the sweeper logs for
// observability: overall counts per (timeframe, tier) and per-perspective
// counts per (timeframe, perspective, tier).
type Distribution struct {
	TopicID     string             `json:"topic_id"`
	TakenAt     time.Time          `json:"taken_at"`
	Overall     []DistributionCell `json:"overall"`
	Perspective []DistributionCell `json:"perspective"`
}

// OverCount returns the number of over-capacity cells.
func (d *Distribution) OverCount() int {
	over := 0
	for _, c := range d.Overall {
		if c.Over() {
			over++
		}
	}
	for _, c := range d.Perspective {
		if c.Over() {
			over++
		}
	}
	return over
}

// Equal compares two distributions cell by cell, ignoring timestamps.
// Idempotent sweeps produce equal before/after distributions on a rerun.
func (d *Distribution) Equal(other *Distribution) bool {
	if other == nil || d.TopicID != other.TopicID ||
		len(d.Overall) != len(other.Overall) || len(d.Perspective) != len(other.Perspective) {
		return false
	}
	for i, c := range d.Overall {
		if c != other.Overall[i] {
			return false
		}
	}
	for i, c := range d.Perspective {
		if c != other.Perspective[i] {
			return false
		}
	}
	return true
}
