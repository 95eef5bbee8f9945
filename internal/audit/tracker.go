package audit

import (
	"github.com/marketloom/graphgate/internal/contract"
)

// StoreTracker records engine events through the audit store. Tracking is
// fire-and-forget: a failed write warns on stderr and never blocks the
// admission path.
type StoreTracker struct {
	manager contract.AuditManager
}

var _ contract.Tracker = &StoreTracker{} // Compile-time check

// NewStoreTracker creates a tracker backed by the given audit manager.
func NewStoreTracker(manager contract.AuditManager) *StoreTracker {
	return &StoreTracker{manager: manager}
}

// Track records a graph-level event.
func (t *StoreTracker) Track(event, message string) {
	t.record(event, nil, nil, message)
}

// TrackArticle records an event scoped to a topic and article.
func (t *StoreTracker) TrackArticle(event, topicID, articleID, message string) {
	var tp, ap *string
	if topicID != "" {
		tp = &topicID
	}
	if articleID != "" {
		ap = &articleID
	}
	t.record(event, tp, ap, message)
}

func (t *StoreTracker) record(event string, topicID, articleID *string, detail string) {
	if t == nil || t.manager == nil {
		return
	}
	store := t.manager.GetAuditStore()
	if store == nil {
		return
	}
	if err := store.RecordEvent(event, topicID, articleID, detail); err != nil {
		contract.LogWarn("Audit event "+event, err)
	}
}
