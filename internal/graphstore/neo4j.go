package graphstore

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/marketloom/graphgate/internal/contract"
	"github.com/marketloom/graphgate/schema"
)

// Neo4jStore is the production GraphStore backed by a Neo4j property graph.
// Topics and articles are nodes; the classification lives on the ABOUT
// relationship between them.
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
}

var _ contract.GraphStore = (*Neo4jStore)(nil)

// NewNeo4jStore connects to Neo4j and verifies connectivity before use.
func NewNeo4jStore(ctx context.Context, uri, user, password, database string) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verifying neo4j connectivity: %w", err)
	}
	return &Neo4jStore{driver: driver, database: database}, nil
}

func (s *Neo4jStore) readSession(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.database,
	})
}

func (s *Neo4jStore) writeSession(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.database,
	})
}

// bucketPredicate is the superset membership rule: any perspective score at
// or above the tier puts the edge in the bucket. Archived edges have all
// four scores at zero and never match for tier >= 1.
const bucketPredicate = `(r.importance_risk >= $tier OR r.importance_opportunity >= $tier
	OR r.importance_trend >= $tier OR r.importance_catalyst >= $tier)`

// CountTopics returns the number of topic nodes.
func (s *Neo4jStore) CountTopics(ctx context.Context) (int, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.Run(ctx, `MATCH (t:Topic) RETURN count(t) AS n`, nil)
	if err != nil {
		return 0, fmt.Errorf("counting topics: %w", err)
	}
	record, err := result.Single(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting topics: %w", err)
	}
	return recordInt(record, "n"), nil
}

// ListTopics returns all topics weakest first.
func (s *Neo4jStore) ListTopics(ctx context.Context) ([]schema.Topic, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	query := `
		MATCH (t:Topic)
		RETURN t.id AS id, t.name AS name, t.category AS category,
		       t.importance AS importance, t.last_updated AS last_updated
		ORDER BY t.importance ASC, t.last_updated ASC, t.id ASC
	`
	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return nil, fmt.Errorf("listing topics: %w", err)
	}

	var topics []schema.Topic
	for result.Next(ctx) {
		topics = append(topics, topicFromRecord(result.Record()))
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("listing topics: %w", err)
	}
	return topics, nil
}

// GetTopic returns one topic by id, or nil when it does not exist.
func (s *Neo4jStore) GetTopic(ctx context.Context, id string) (*schema.Topic, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	query := `
		MATCH (t:Topic {id: $id})
		RETURN t.id AS id, t.name AS name, t.category AS category,
		       t.importance AS importance, t.last_updated AS last_updated
	`
	result, err := session.Run(ctx, query, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("getting topic %s: %w", id, err)
	}
	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, fmt.Errorf("getting topic %s: %w", id, err)
		}
		return nil, nil
	}
	topic := topicFromRecord(result.Record())
	return &topic, nil
}

// HasAboutEdge reports whether an ABOUT edge links the article to the topic.
func (s *Neo4jStore) HasAboutEdge(ctx context.Context, articleID, topicID string) (bool, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	query := `
		MATCH (a:Article {id: $articleID})-[r:ABOUT]->(t:Topic {id: $topicID})
		RETURN count(r) > 0 AS found
	`
	result, err := session.Run(ctx, query, map[string]any{"articleID": articleID, "topicID": topicID})
	if err != nil {
		return false, fmt.Errorf("checking edge %s->%s: %w", articleID, topicID, err)
	}
	record, err := result.Single(ctx)
	if err != nil {
		return false, fmt.Errorf("checking edge %s->%s: %w", articleID, topicID, err)
	}
	found, _ := record.Get("found")
	b, _ := found.(bool)
	return b, nil
}

// BucketOccupants returns the (topic, timeframe, tier) bucket members,
// newest-first by created_at, capped at limit.
func (s *Neo4jStore) BucketOccupants(ctx context.Context, topicID string, tf schema.Timeframe, tier, limit int) ([]schema.BucketOccupant, error) {
	query := fmt.Sprintf(`
		MATCH (a:Article)-[r:ABOUT {timeframe: $timeframe}]->(t:Topic {id: $topicID})
		WHERE %s
		RETURN %s
		ORDER BY r.created_at DESC
		LIMIT $limit
	`, bucketPredicate, occupantReturnClause)
	return s.queryOccupants(ctx, query, map[string]any{
		"topicID":   topicID,
		"timeframe": string(tf),
		"tier":      tier,
		"limit":     limit,
	})
}

// PerspectiveOccupants is BucketOccupants for one perspective's bucket.
func (s *Neo4jStore) PerspectiveOccupants(ctx context.Context, topicID string, tf schema.Timeframe, p schema.Perspective, tier, limit int) ([]schema.BucketOccupant, error) {
	if _, ok := schema.ValidPerspectives[p]; !ok {
		return nil, fmt.Errorf("invalid perspective %q", p)
	}
	// Perspective comes from the validated enum, never user input, so
	// splicing the property name into the query is safe.
	query := fmt.Sprintf(`
		MATCH (a:Article)-[r:ABOUT {timeframe: $timeframe}]->(t:Topic {id: $topicID})
		WHERE r.importance_%s >= $tier
		RETURN %s
		ORDER BY r.created_at DESC
		LIMIT $limit
	`, p, occupantReturnClause)
	return s.queryOccupants(ctx, query, map[string]any{
		"topicID":   topicID,
		"timeframe": string(tf),
		"tier":      tier,
		"limit":     limit,
	})
}

// CountBucket returns the occupancy of the (topic, timeframe, tier) bucket.
func (s *Neo4jStore) CountBucket(ctx context.Context, topicID string, tf schema.Timeframe, tier int) (int, error) {
	query := fmt.Sprintf(`
		MATCH (a:Article)-[r:ABOUT {timeframe: $timeframe}]->(t:Topic {id: $topicID})
		WHERE %s
		RETURN count(r) AS n
	`, bucketPredicate)
	return s.queryCount(ctx, query, map[string]any{
		"topicID":   topicID,
		"timeframe": string(tf),
		"tier":      tier,
	})
}

// CountPerspectiveBucket returns the occupancy of one perspective's bucket.
func (s *Neo4jStore) CountPerspectiveBucket(ctx context.Context, topicID string, tf schema.Timeframe, p schema.Perspective, tier int) (int, error) {
	if _, ok := schema.ValidPerspectives[p]; !ok {
		return 0, fmt.Errorf("invalid perspective %q", p)
	}
	query := fmt.Sprintf(`
		MATCH (a:Article)-[r:ABOUT {timeframe: $timeframe}]->(t:Topic {id: $topicID})
		WHERE r.importance_%s >= $tier
		RETURN count(r) AS n
	`, p)
	return s.queryCount(ctx, query, map[string]any{
		"topicID":   topicID,
		"timeframe": string(tf),
		"tier":      tier,
	})
}

// Apply executes the batch inside one managed write transaction, so the
// whole make-room chain lands or none of it does.
func (s *Neo4jStore) Apply(ctx context.Context, muts []schema.EdgeMutation) error {
	if len(muts) == 0 {
		return nil
	}
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for i, m := range muts {
			if err := applyMutationTx(ctx, tx, m); err != nil {
				return nil, fmt.Errorf("mutation %d (%s): %w", i, m.Kind, err)
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("applying %d mutations: %w", len(muts), err)
	}
	return nil
}

// GetStatus returns connectivity and node/edge counts.
func (s *Neo4jStore) GetStatus(ctx context.Context) (schema.GraphStatus, error) {
	status := schema.GraphStatus{Backend: string(schema.Neo4jGraph)}

	session := s.readSession(ctx)
	defer session.Close(ctx)

	query := `
		OPTIONAL MATCH (t:Topic)
		WITH count(t) AS topics
		OPTIONAL MATCH (a:Article)
		WITH topics, count(a) AS articles
		OPTIONAL MATCH ()-[r:ABOUT]->()
		WITH topics, articles, count(r) AS edges,
		     count(CASE WHEN r.importance_risk = 0 AND r.importance_opportunity = 0
		                 AND r.importance_trend = 0 AND r.importance_catalyst = 0
		            THEN 1 END) AS archived
		RETURN topics, articles, edges, archived
	`
	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return status, fmt.Errorf("graph status: %w", err)
	}
	record, err := result.Single(ctx)
	if err != nil {
		return status, fmt.Errorf("graph status: %w", err)
	}
	status.Connected = true
	status.TopicCount = recordInt(record, "topics")
	status.ArticleCount = recordInt(record, "articles")
	status.EdgeCount = recordInt(record, "edges")
	status.ArchivedEdges = recordInt(record, "archived")
	return status, nil
}

// Close releases the driver.
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

const occupantReturnClause = `
		a.id AS article_id, a.summary AS summary, a.source AS source, a.published_at AS published_at,
		r.timeframe AS timeframe,
		r.importance_risk AS risk, r.importance_opportunity AS opportunity,
		r.importance_trend AS trend, r.importance_catalyst AS catalyst,
		r.created_at AS created_at, r.motivation AS motivation, r.implications AS implications`

func (s *Neo4jStore) queryOccupants(ctx context.Context, query string, params map[string]any) ([]schema.BucketOccupant, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("querying occupants: %w", err)
	}

	var occupants []schema.BucketOccupant
	for result.Next(ctx) {
		record := result.Record()
		articleID := recordString(record, "article_id")
		occupants = append(occupants, schema.BucketOccupant{
			Article: schema.Article{
				ID:          articleID,
				Summary:     recordString(record, "summary"),
				Source:      recordString(record, "source"),
				PublishedAt: recordTime(record, "published_at"),
			},
			Edge: schema.AboutEdge{
				ArticleID:    articleID,
				TopicID:      params["topicID"].(string),
				Timeframe:    schema.Timeframe(recordString(record, "timeframe")),
				Risk:         recordInt(record, "risk"),
				Opportunity:  recordInt(record, "opportunity"),
				Trend:        recordInt(record, "trend"),
				Catalyst:     recordInt(record, "catalyst"),
				CreatedAt:    recordTime(record, "created_at"),
				Motivation:   recordString(record, "motivation"),
				Implications: recordString(record, "implications"),
			},
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("querying occupants: %w", err)
	}
	return occupants, nil
}

func (s *Neo4jStore) queryCount(ctx context.Context, query string, params map[string]any) (int, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return 0, fmt.Errorf("counting bucket: %w", err)
	}
	record, err := result.Single(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting bucket: %w", err)
	}
	return recordInt(record, "n"), nil
}

func applyMutationTx(ctx context.Context, tx neo4j.ManagedTransaction, m schema.EdgeMutation) error {
	switch m.Kind {
	case schema.ArchiveEdgeMutation:
		return runExpectingEdge(ctx, tx, `
			MATCH (a:Article {id: $articleID})-[r:ABOUT]->(t:Topic {id: $topicID})
			SET r.importance_risk = 0, r.importance_opportunity = 0,
			    r.importance_trend = 0, r.importance_catalyst = 0,
			    r.archived_at = datetime($at), r.archive_reason = $reason
			RETURN count(r) AS n
		`, map[string]any{
			"articleID": m.ArticleID,
			"topicID":   m.TopicID,
			"at":        m.At.UTC().Format(time.RFC3339),
			"reason":    m.Reason,
		}, m)
	case schema.DowngradeEdgeMutation:
		// Clamp, never raise: scores already below the target tier keep
		// their value.
		return runExpectingEdge(ctx, tx, `
			MATCH (a:Article {id: $articleID})-[r:ABOUT]->(t:Topic {id: $topicID})
			SET r.importance_risk = CASE WHEN r.importance_risk > $new THEN $new ELSE r.importance_risk END,
			    r.importance_opportunity = CASE WHEN r.importance_opportunity > $new THEN $new ELSE r.importance_opportunity END,
			    r.importance_trend = CASE WHEN r.importance_trend > $new THEN $new ELSE r.importance_trend END,
			    r.importance_catalyst = CASE WHEN r.importance_catalyst > $new THEN $new ELSE r.importance_catalyst END,
			    r.downgraded_at = datetime($at), r.downgrade_reason = $reason
			RETURN count(r) AS n
		`, map[string]any{
			"articleID": m.ArticleID,
			"topicID":   m.TopicID,
			"new":       m.NewImportance,
			"at":        m.At.UTC().Format(time.RFC3339),
			"reason":    m.Reason,
		}, m)
	case schema.ClampPerspectiveMutation:
		if _, ok := schema.ValidPerspectives[m.Perspective]; !ok {
			return fmt.Errorf("invalid perspective %q", m.Perspective)
		}
		query := fmt.Sprintf(`
			MATCH (a:Article {id: $articleID})-[r:ABOUT]->(t:Topic {id: $topicID})
			SET r.importance_%s = CASE WHEN r.importance_%s > $new THEN $new ELSE r.importance_%s END,
			    r.downgraded_at = datetime($at), r.downgrade_reason = $reason
			RETURN count(r) AS n
		`, m.Perspective, m.Perspective, m.Perspective)
		return runExpectingEdge(ctx, tx, query, map[string]any{
			"articleID": m.ArticleID,
			"topicID":   m.TopicID,
			"new":       m.NewImportance,
			"at":        m.At.UTC().Format(time.RFC3339),
			"reason":    m.Reason,
		}, m)
	case schema.CreateEdgeMutation:
		if m.Article == nil || m.Classification == nil {
			return fmt.Errorf("create edge needs article and classification")
		}
		cls := m.Classification
		_, err := tx.Run(ctx, `
			MATCH (t:Topic {id: $topicID})
			MERGE (a:Article {id: $articleID})
			ON CREATE SET a.summary = $summary, a.source = $source,
			              a.published_at = datetime($publishedAt)
			CREATE (a)-[r:ABOUT {
				timeframe: $timeframe,
				importance_risk: $risk,
				importance_opportunity: $opportunity,
				importance_trend: $trend,
				importance_catalyst: $catalyst,
				created_at: datetime($at),
				motivation: $motivation,
				implications: $implications
			}]->(t)
		`, map[string]any{
			"topicID":      m.TopicID,
			"articleID":    m.Article.ID,
			"summary":      m.Article.Summary,
			"source":       m.Article.Source,
			"publishedAt":  m.Article.PublishedAt.UTC().Format(time.RFC3339),
			"timeframe":    string(cls.Timeframe),
			"risk":         cls.Risk,
			"opportunity":  cls.Opportunity,
			"trend":        cls.Trend,
			"catalyst":     cls.Catalyst,
			"at":           m.At.UTC().Format(time.RFC3339),
			"motivation":   cls.Motivation,
			"implications": cls.Implications,
		})
		return err
	case schema.CreateTopicMutation:
		if m.Topic == nil {
			return fmt.Errorf("create topic needs a topic")
		}
		_, err := tx.Run(ctx, `
			MERGE (t:Topic {id: $id})
			SET t.name = $name, t.category = $category,
			    t.importance = $importance, t.last_updated = datetime($lastUpdated)
		`, map[string]any{
			"id":          m.Topic.ID,
			"name":        m.Topic.Name,
			"category":    m.Topic.Category,
			"importance":  m.Topic.Importance,
			"lastUpdated": m.Topic.LastUpdated.UTC().Format(time.RFC3339),
		})
		return err
	case schema.RemoveTopicMutation:
		_, err := tx.Run(ctx, `
			MATCH (t:Topic {id: $id})
			DETACH DELETE t
		`, map[string]any{"id": m.TopicID})
		return err
	default:
		return fmt.Errorf("unknown mutation kind %q", m.Kind)
	}
}

// runExpectingEdge runs an edge update and fails when the edge was missing.
func runExpectingEdge(ctx context.Context, tx neo4j.ManagedTransaction, query string, params map[string]any, m schema.EdgeMutation) error {
	result, err := tx.Run(ctx, query, params)
	if err != nil {
		return err
	}
	record, err := result.Single(ctx)
	if err != nil {
		return err
	}
	if recordInt(record, "n") == 0 {
		return fmt.Errorf("edge %s->%s does not exist", m.ArticleID, m.TopicID)
	}
	return nil
}

func topicFromRecord(record *neo4j.Record) schema.Topic {
	return schema.Topic{
		ID:          recordString(record, "id"),
		Name:        recordString(record, "name"),
		Category:    recordString(record, "category"),
		Importance:  recordInt(record, "importance"),
		LastUpdated: recordTime(record, "last_updated"),
	}
}

func recordString(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return ""
	}
	s, _ := val.(string)
	return s
}

func recordInt(record *neo4j.Record, key string) int {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return 0
	}
	switch v := val.(type) {
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func recordTime(record *neo4j.Record, key string) time.Time {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return time.Time{}
	}
	switch v := val.(type) {
	case time.Time:
		return v
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err == nil {
			return t
		}
	}
	return time.Time{}
}
