package schema

import "time"

// AuditEventRecord represents a row from the graphgate_audit_events table.
type AuditEventRecord struct {
	EventID   int64
	EventTime time.Time
	Event     string
	TopicID   *string
	ArticleID *string
	Detail    *string
}

// SweepRunRecord represents a row from the graphgate_sweep_runs table.
type SweepRunRecord struct {
	SweepID        string
	TopicID        string
	StartedAt      time.Time
	FinishedAt     *time.Time
	Passes         int32
	Converged      bool
	ChecksRun      int32
	ActionsApplied int32
	ConfigParams   *string
}

// BucketSnapshotRecord represents a row from the graphgate_bucket_snapshots
// table: one distribution cell captured before or after a sweep.
type BucketSnapshotRecord struct {
	SweepID      string
	Phase        string // before | after
	TopicID      string
	Timeframe    string
	Perspective  *string // nil for overall-tier cells
	Tier         int32
	ArticleCount int32
	MaxAllowed   int32
	SnapTime     time.Time
}

// EventFilter narrows audit event listings. Zero values mean no filter.
type EventFilter struct {
	Event   string
	TopicID string
	Since   time.Time
	Limit   int
}
