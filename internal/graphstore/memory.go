// Package graphstore has the GraphStore backends: an in-memory graph for
// tests and local runs, and a Neo4j driver for production graphs.
package graphstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/marketloom/graphgate/internal/contract"
	"github.com/marketloom/graphgate/schema"
)

// edgeKey identifies one ABOUT edge.
type edgeKey struct {
	articleID string
	topicID   string
}

// MemoryStore is a process-local GraphStore. It holds copies of everything
// it is given and applies mutation batches all-or-nothing, matching the
// transactional contract of the Neo4j backend.
type MemoryStore struct {
	mu       sync.RWMutex
	topics   map[string]schema.Topic
	articles map[string]schema.Article
	edges    map[edgeKey]schema.AboutEdge
}

var _ contract.GraphStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory graph.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		topics:   make(map[string]schema.Topic),
		articles: make(map[string]schema.Article),
		edges:    make(map[edgeKey]schema.AboutEdge),
	}
}

// CountTopics returns the number of topic nodes.
func (s *MemoryStore) CountTopics(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.topics), nil
}

// ListTopics returns all topics weakest first: importance ascending, ties
// broken by oldest last_updated, then id for stability.
func (s *MemoryStore) ListTopics(_ context.Context) ([]schema.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	topics := make([]schema.Topic, 0, len(s.topics))
	for _, t := range s.topics {
		topics = append(topics, t)
	}
	sort.Slice(topics, func(i, j int) bool {
		if topics[i].Importance != topics[j].Importance {
			return topics[i].Importance < topics[j].Importance
		}
		if !topics[i].LastUpdated.Equal(topics[j].LastUpdated) {
			return topics[i].LastUpdated.Before(topics[j].LastUpdated)
		}
		return topics[i].ID < topics[j].ID
	})
	return topics, nil
}

// GetTopic returns one topic by id, or nil when it does not exist.
func (s *MemoryStore) GetTopic(_ context.Context, id string) (*schema.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.topics[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

// HasAboutEdge reports whether an ABOUT edge links the article to the topic.
func (s *MemoryStore) HasAboutEdge(_ context.Context, articleID, topicID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.edges[edgeKey{articleID, topicID}]
	return ok, nil
}

// BucketOccupants returns the (topic, timeframe, tier) bucket members joined
// with article metadata, newest-first by created_at, capped at limit.
func (s *MemoryStore) BucketOccupants(_ context.Context, topicID string, tf schema.Timeframe, tier, limit int) ([]schema.BucketOccupant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collectOccupants(topicID, limit, func(e *schema.AboutEdge) bool {
		return e.InTierBucket(tf, tier)
	}), nil
}

// PerspectiveOccupants is BucketOccupants for one perspective's bucket.
func (s *MemoryStore) PerspectiveOccupants(_ context.Context, topicID string, tf schema.Timeframe, p schema.Perspective, tier, limit int) ([]schema.BucketOccupant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collectOccupants(topicID, limit, func(e *schema.AboutEdge) bool {
		return e.InPerspectiveBucket(tf, p, tier)
	}), nil
}

// CountBucket returns the occupancy of the (topic, timeframe, tier) bucket.
func (s *MemoryStore) CountBucket(_ context.Context, topicID string, tf schema.Timeframe, tier int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for key, e := range s.edges {
		if key.topicID == topicID && e.InTierBucket(tf, tier) {
			count++
		}
	}
	return count, nil
}

// CountPerspectiveBucket returns the occupancy of one perspective's bucket.
func (s *MemoryStore) CountPerspectiveBucket(_ context.Context, topicID string, tf schema.Timeframe, p schema.Perspective, tier int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for key, e := range s.edges {
		if key.topicID == topicID && e.InPerspectiveBucket(tf, p, tier) {
			count++
		}
	}
	return count, nil
}

// Apply executes the batch all-or-nothing: every mutation is validated
// against current state before any of them lands.
func (s *MemoryStore) Apply(_ context.Context, muts []schema.EdgeMutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, m := range muts {
		if err := s.validateMutation(m); err != nil {
			return fmt.Errorf("mutation %d (%s): %w", i, m.Kind, err)
		}
	}
	for _, m := range muts {
		s.applyMutation(m)
	}
	return nil
}

// GetStatus returns node and edge counts.
func (s *MemoryStore) GetStatus(_ context.Context) (schema.GraphStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	archived := 0
	for _, e := range s.edges {
		if e.Archived() {
			archived++
		}
	}
	return schema.GraphStatus{
		Backend:       string(schema.MemoryGraph),
		Connected:     true,
		TopicCount:    len(s.topics),
		ArticleCount:  len(s.articles),
		EdgeCount:     len(s.edges),
		ArchivedEdges: archived,
	}, nil
}

// Close is a no-op for the in-memory graph.
func (s *MemoryStore) Close(_ context.Context) error { return nil }

// collectOccupants gathers edges of one topic matching the predicate,
// newest-first by created_at with article id as a stable tiebreaker.
// Callers must hold at least the read lock.
func (s *MemoryStore) collectOccupants(topicID string, limit int, match func(*schema.AboutEdge) bool) []schema.BucketOccupant {
	var occupants []schema.BucketOccupant
	for key, e := range s.edges {
		if key.topicID != topicID || !match(&e) {
			continue
		}
		occupants = append(occupants, schema.BucketOccupant{
			Article: s.articles[key.articleID],
			Edge:    e,
		})
	}
	sort.Slice(occupants, func(i, j int) bool {
		if !occupants[i].Edge.CreatedAt.Equal(occupants[j].Edge.CreatedAt) {
			return occupants[i].Edge.CreatedAt.After(occupants[j].Edge.CreatedAt)
		}
		return occupants[i].Article.ID < occupants[j].Article.ID
	})
	if limit > 0 && len(occupants) > limit {
		occupants = occupants[:limit]
	}
	return occupants
}

func (s *MemoryStore) validateMutation(m schema.EdgeMutation) error {
	switch m.Kind {
	case schema.ArchiveEdgeMutation, schema.DowngradeEdgeMutation, schema.ClampPerspectiveMutation:
		if _, ok := s.edges[edgeKey{m.ArticleID, m.TopicID}]; !ok {
			return fmt.Errorf("edge %s->%s does not exist", m.ArticleID, m.TopicID)
		}
		if m.Kind == schema.ClampPerspectiveMutation {
			if _, ok := schema.ValidPerspectives[m.Perspective]; !ok {
				return fmt.Errorf("invalid perspective %q", m.Perspective)
			}
		}
	case schema.CreateEdgeMutation:
		if m.Article == nil || m.Classification == nil {
			return fmt.Errorf("create edge needs article and classification")
		}
		if _, ok := s.topics[m.TopicID]; !ok {
			return fmt.Errorf("topic %s does not exist", m.TopicID)
		}
		if _, ok := s.edges[edgeKey{m.Article.ID, m.TopicID}]; ok {
			return fmt.Errorf("edge %s->%s already exists", m.Article.ID, m.TopicID)
		}
	case schema.CreateTopicMutation:
		if m.Topic == nil {
			return fmt.Errorf("create topic needs a topic")
		}
		if _, ok := s.topics[m.Topic.ID]; ok {
			return fmt.Errorf("topic %s already exists", m.Topic.ID)
		}
	case schema.RemoveTopicMutation:
		if _, ok := s.topics[m.TopicID]; !ok {
			return fmt.Errorf("topic %s does not exist", m.TopicID)
		}
	default:
		return fmt.Errorf("unknown mutation kind %q", m.Kind)
	}
	return nil
}

func (s *MemoryStore) applyMutation(m schema.EdgeMutation) {
	switch m.Kind {
	case schema.ArchiveEdgeMutation:
		key := edgeKey{m.ArticleID, m.TopicID}
		e := s.edges[key]
		e.Risk, e.Opportunity, e.Trend, e.Catalyst = 0, 0, 0, 0
		at := m.At
		e.ArchivedAt = &at
		e.ArchiveReason = m.Reason
		s.edges[key] = e
	case schema.DowngradeEdgeMutation:
		key := edgeKey{m.ArticleID, m.TopicID}
		e := s.edges[key]
		e.Risk = min(e.Risk, m.NewImportance)
		e.Opportunity = min(e.Opportunity, m.NewImportance)
		e.Trend = min(e.Trend, m.NewImportance)
		e.Catalyst = min(e.Catalyst, m.NewImportance)
		at := m.At
		e.DowngradedAt = &at
		e.DowngradeReason = m.Reason
		s.edges[key] = e
	case schema.ClampPerspectiveMutation:
		key := edgeKey{m.ArticleID, m.TopicID}
		e := s.edges[key]
		switch m.Perspective {
		case schema.RiskPerspective:
			e.Risk = min(e.Risk, m.NewImportance)
		case schema.OpportunityPerspective:
			e.Opportunity = min(e.Opportunity, m.NewImportance)
		case schema.TrendPerspective:
			e.Trend = min(e.Trend, m.NewImportance)
		case schema.CatalystPerspective:
			e.Catalyst = min(e.Catalyst, m.NewImportance)
		}
		at := m.At
		e.DowngradedAt = &at
		e.DowngradeReason = m.Reason
		s.edges[key] = e
	case schema.CreateEdgeMutation:
		art := *m.Article
		cls := m.Classification
		s.articles[art.ID] = art
		s.edges[edgeKey{art.ID, m.TopicID}] = schema.AboutEdge{
			ArticleID:    art.ID,
			TopicID:      m.TopicID,
			Timeframe:    cls.Timeframe,
			Risk:         cls.Risk,
			Opportunity:  cls.Opportunity,
			Trend:        cls.Trend,
			Catalyst:     cls.Catalyst,
			CreatedAt:    m.At,
			Motivation:   cls.Motivation,
			Implications: cls.Implications,
		}
	case schema.CreateTopicMutation:
		s.topics[m.Topic.ID] = *m.Topic
	case schema.RemoveTopicMutation:
		delete(s.topics, m.TopicID)
		for key := range s.edges {
			if key.topicID == m.TopicID {
				delete(s.edges, key)
			}
		}
	}
}
