package schema

import "time"

// MutationKind discriminates pending graph writes.
type MutationKind string

// All mutation kinds supported.
const (
	ArchiveEdgeMutation      MutationKind = "archive_edge"
	DowngradeEdgeMutation    MutationKind = "downgrade_edge"
	ClampPerspectiveMutation MutationKind = "clamp_perspective"
	CreateEdgeMutation       MutationKind = "create_edge"
	CreateTopicMutation      MutationKind = "create_topic"
	RemoveTopicMutation      MutationKind = "remove_topic"
)

// EdgeMutation is one pending graph write. Make-room chains accumulate
// these and apply them in a single store transaction only when the whole
// chain succeeds; a reject anywhere discards the accumulator untouched.
type EdgeMutation struct {
	Kind      MutationKind `json:"kind"`
	ArticleID string       `json:"article_id,omitempty"`
	TopicID   string       `json:"topic_id,omitempty"`
	Timeframe Timeframe    `json:"timeframe,omitempty"`

	// Downgrade fields: each perspective score is clamped to
	// min(current, NewImportance). ClampPerspectiveMutation touches only
	// Perspective. Archive forces all four scores to zero.
	NewImportance int         `json:"new_importance,omitempty"`
	Perspective   Perspective `json:"perspective,omitempty"`
	Reason        string      `json:"reason,omitempty"`

	// Create fields.
	Article        *Article        `json:"article,omitempty"`
	Classification *Classification `json:"classification,omitempty"`
	Topic          *Topic          `json:"topic,omitempty"`

	At time.Time `json:"at"`
}
