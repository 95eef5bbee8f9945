// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/marketloom/graphgate/schema"
)

// GraphStore defines the operations the capacity engine needs from the
// property graph. This allows the core logic to be tested against an
// in-memory graph without a running database.
type GraphStore interface {
	// --- Topics ---

	// CountTopics returns the number of topic nodes in the graph.
	CountTopics(ctx context.Context) (int, error)

	// ListTopics returns all topics ordered by importance ascending,
	// ties broken by oldest last_updated first (weakest first).
	ListTopics(ctx context.Context) ([]schema.Topic, error)

	// GetTopic returns one topic by id, or nil when it does not exist.
	GetTopic(ctx context.Context, id string) (*schema.Topic, error)

	// --- Articles / ABOUT edges ---

	// HasAboutEdge reports whether an ABOUT edge already links the article
	// to the topic, archived or not.
	HasAboutEdge(ctx context.Context, articleID, topicID string) (bool, error)

	// BucketOccupants returns the non-archived edges in the
	// (topic, timeframe, tier) bucket joined with article metadata,
	// ordered newest-first by created_at, capped at limit.
	BucketOccupants(ctx context.Context, topicID string, tf schema.Timeframe, tier, limit int) ([]schema.BucketOccupant, error)

	// PerspectiveOccupants is BucketOccupants for a single perspective's
	// (topic, timeframe, perspective, tier) bucket.
	PerspectiveOccupants(ctx context.Context, topicID string, tf schema.Timeframe, p schema.Perspective, tier, limit int) ([]schema.BucketOccupant, error)

	// CountBucket returns the occupancy of the (topic, timeframe, tier)
	// bucket: non-archived edges with any perspective score >= tier.
	CountBucket(ctx context.Context, topicID string, tf schema.Timeframe, tier int) (int, error)

	// CountPerspectiveBucket returns the occupancy of the
	// (topic, timeframe, perspective, tier) bucket.
	CountPerspectiveBucket(ctx context.Context, topicID string, tf schema.Timeframe, p schema.Perspective, tier int) (int, error)

	// --- Mutation ---

	// Apply executes the pending mutations as a single write transaction.
	// Either every mutation lands or none do.
	Apply(ctx context.Context, muts []schema.EdgeMutation) error

	// --- Lifecycle / status ---

	// GetStatus returns connectivity and node/edge counts.
	GetStatus(ctx context.Context) (schema.GraphStatus, error)

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}

// DecisionOracle defines the structured decision surface backed by a
// text-generation service or a deterministic policy. Implementations
// validate field presence and types before returning; a malformed or
// unavailable answer surfaces as an error, which callers treat as reject.
type DecisionOracle interface {
	// DecideTopicCapacity answers add/replace/reject for a topic candidate
	// once the graph is at its topic ceiling.
	DecideTopicCapacity(ctx context.Context, req schema.TopicCapacityRequest) (schema.TopicDecision, error)

	// DecideArticleCapacity answers downgrade/reject for an article
	// candidate whose target bucket is full.
	DecideArticleCapacity(ctx context.Context, req schema.ArticleCapacityRequest) (schema.ArticleDecision, error)

	// PickWeakest names the least valuable occupant of an over-capacity
	// bucket. There is no reject option; the pick is mandatory.
	PickWeakest(ctx context.Context, req schema.WeakestPickRequest) (schema.WeakestPick, error)
}

// Tracker is the fire-and-forget audit event sink. Implementations must
// never block or fail the caller; recording errors are logged and dropped.
type Tracker interface {
	// Track records a bare audit event.
	Track(event, message string)

	// TrackArticle records an audit event tied to a topic and article.
	TrackArticle(event, topicID, articleID, message string)
}

// AuditManager defines the interface for reaching the audit store.
// This allows the audit layer to be mocked for testing.
type AuditManager interface {
	GetAuditStore() AuditStore
}

// AuditStore defines the interface for persisting audit events, sweep runs
// and distribution snapshots.
type AuditStore interface {
	// RecordEvent stores one audit event row. TopicID and ArticleID may be nil.
	RecordEvent(event string, topicID, articleID *string, detail string) error

	// BeginSweep creates a sweep run row and stores its config parameters.
	BeginSweep(sweepID, topicID string, startedAt time.Time, configParams map[string]any) error

	// EndSweep updates the sweep run with completion data.
	EndSweep(sweepID string, finishedAt time.Time, passes, checksRun, actionsApplied int, converged bool) error

	// RecordSnapshot stores every cell of a before/after distribution.
	RecordSnapshot(sweepID, phase string, dist *schema.Distribution) error

	// ListEvents returns events matching the filter, newest first.
	ListEvents(filter schema.EventFilter) ([]schema.AuditEventRecord, error)

	// GetAllEvents returns every event row for export.
	GetAllEvents() ([]schema.AuditEventRecord, error)

	// GetAllSweepRuns returns every sweep run row for export.
	GetAllSweepRuns() ([]schema.SweepRunRecord, error)

	// GetAllSnapshots returns every snapshot row for export.
	GetAllSnapshots() ([]schema.BucketSnapshotRecord, error)

	// GetStatus returns status information about the audit store.
	GetStatus() (schema.AuditStatus, error)

	// Close closes the underlying connection.
	Close() error
}
