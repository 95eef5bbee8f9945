package audit

import (
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/marketloom/graphgate/schema"
)

func TestStoreTracker_Track(t *testing.T) {
	mockStore := new(MockAuditStore)
	mockStore.On("RecordEvent", "sweep_completed", (*string)(nil), (*string)(nil), "converged in 2 passes").Return(nil)

	manager := &AuditStoreManager{}
	manager.SetAuditStore(mockStore)

	tracker := NewStoreTracker(manager)
	tracker.Track("sweep_completed", "converged in 2 passes")

	mockStore.AssertExpectations(t)
}

func TestStoreTracker_TrackArticle(t *testing.T) {
	mockStore := new(MockAuditStore)
	mockStore.On("RecordEvent", "article_added",
		mock.MatchedBy(func(p *string) bool { return p != nil && *p == "us-inflation" }),
		mock.MatchedBy(func(p *string) bool { return p != nil && *p == "art-1" }),
		"admitted at tier 3").Return(nil)

	manager := &AuditStoreManager{}
	manager.SetAuditStore(mockStore)

	tracker := NewStoreTracker(manager)
	tracker.TrackArticle("article_added", "us-inflation", "art-1", "admitted at tier 3")

	mockStore.AssertExpectations(t)
}

func TestStoreTracker_NilStore(t *testing.T) {
	// No audit store configured, tracking is silently dropped
	tracker := NewStoreTracker(&AuditStoreManager{})
	tracker.Track("article_added", "no-op")
	tracker.TrackArticle("article_added", "t", "a", "no-op")
}

func TestStoreTracker_EmptyIDsBecomeNil(t *testing.T) {
	mockStore := new(MockAuditStore)
	mockStore.On("RecordEvent", "topic_added",
		mock.MatchedBy(func(p *string) bool { return p != nil && *p == "us-inflation" }),
		(*string)(nil), "").Return(nil)

	manager := &AuditStoreManager{}
	manager.SetAuditStore(mockStore)

	tracker := NewStoreTracker(manager)
	tracker.TrackArticle("topic_added", "us-inflation", "", "")

	mockStore.AssertExpectations(t)
}

func TestAuditStoreManager_GetSet(t *testing.T) {
	manager := &AuditStoreManager{}
	if manager.GetAuditStore() != nil {
		t.Fatal("expected nil store before SetAuditStore")
	}

	store, err := NewAuditStore(schema.NoneBackend, "")
	if err != nil {
		t.Fatal(err)
	}
	manager.SetAuditStore(store)
	if manager.GetAuditStore() == nil {
		t.Fatal("expected store after SetAuditStore")
	}
}
