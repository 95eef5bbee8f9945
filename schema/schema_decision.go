package schema

// BucketOccupant is one existing edge presented to the oracle, joined with
// its article metadata.
type BucketOccupant struct {
	Article Article   `json:"article"`
	Edge    AboutEdge `json:"edge"`
}

// CapacityStatus is the occupancy of one bucket against its limit.
type CapacityStatus struct {
	Count   int  `json:"count"`
	Max     int  `json:"max"`
	HasRoom bool `json:"has_room"`
}

// ArticleCapacityRequest is the structured context for an article-level
// capacity decision: the candidate, the bucket it targets, and the occupants
// it competes with.
type ArticleCapacityRequest struct {
	Topic          Topic            `json:"topic"`
	Timeframe      Timeframe        `json:"timeframe"`
	Tier           int              `json:"tier"`
	Candidate      Article          `json:"candidate"`
	Classification Classification   `json:"classification"`
	Occupants      []BucketOccupant `json:"occupants"`
	Capacity       CapacityStatus   `json:"capacity"`
}

// ArticleDecision is the oracle's answer to an ArticleCapacityRequest.
// Action is downgrade or reject; a downgrade names one of the presented
// occupants and a new importance tier, where 0 means archive.
type ArticleDecision struct {
	Action          CapacityAction `json:"action"`
	TargetArticleID string         `json:"target_article_id,omitempty"`
	NewImportance   *int           `json:"new_importance,omitempty"`
	Motivation      string         `json:"motivation"`
}

// WeakestPickRequest asks the oracle to name the least valuable occupant of
// an over-capacity bucket. Perspective is empty for overall-tier buckets.
type WeakestPickRequest struct {
	Topic       Topic            `json:"topic"`
	Timeframe   Timeframe        `json:"timeframe"`
	Perspective Perspective      `json:"perspective,omitempty"`
	Tier        int              `json:"tier"`
	Occupants   []BucketOccupant `json:"occupants"`
}

// WeakestPick is a mandatory choice: the oracle has no reject option here.
type WeakestPick struct {
	ArticleID string `json:"downgrade"`
	Reasoning string `json:"reasoning"`
}

// TopicSummary is the compact topic form listed in admission requests.
type TopicSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Importance  int    `json:"importance"`
	LastUpdated string `json:"last_updated"`
}

// TopicCapacityRequest is the structured context for a topic admission
// decision once the graph is at its topic ceiling.
type TopicCapacityRequest struct {
	Candidate Topic          `json:"candidate"`
	Existing  []TopicSummary `json:"existing"`
	Weakest   *TopicSummary  `json:"weakest,omitempty"`
	MaxTopics int            `json:"max_topics"`
}

// TopicDecision is the oracle's answer to a TopicCapacityRequest.
type TopicDecision struct {
	Action     TopicAction `json:"action"`
	IDToRemove string      `json:"id_to_remove,omitempty"`
	Motivation string      `json:"motivation"`
}

// MakeRoomResult is the outcome of one make-room call. TargetArticleID and
// NewImportance describe the first displaced occupant when the action is
// downgrade; Motivation carries the oracle's stated reason either way.
type MakeRoomResult struct {
	Action          CapacityAction `json:"action"`
	TargetArticleID string         `json:"target_article_id,omitempty"`
	NewImportance   *int           `json:"new_importance,omitempty"`
	Motivation      string         `json:"motivation,omitempty"`
	Mutations       []EdgeMutation `json:"-"` // applied mutations, empty on reject or test runs
}

// TopicAdmissionResult is the outcome of one topic admission call.
type TopicAdmissionResult struct {
	Action     TopicAction `json:"action"`
	RemovedID  string      `json:"removed_id,omitempty"`
	Motivation string      `json:"motivation,omitempty"`
}

// IngestResult is the outcome of the full add-article pipeline.
type IngestResult struct {
	Action   CapacityAction `json:"action"`
	Tier     int            `json:"tier"`
	MakeRoom MakeRoomResult `json:"make_room"`
}
