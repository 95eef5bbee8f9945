package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/marketloom/graphgate/internal/contract"
	"github.com/marketloom/graphgate/internal/extract"
	"github.com/marketloom/graphgate/schema"
)

// articleDocument is the on-disk shape of a classified article file.
type articleDocument struct {
	Article        schema.Article        `json:"article"`
	Classification schema.Classification `json:"classification"`
}

// LoadArticleDocument reads a JSON document holding one article and its
// classification. A missing dominant perspective defaults to the
// highest-scoring one; a missing published_at defaults to now.
func LoadArticleDocument(path string) (schema.Article, schema.Classification, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return schema.Article{}, schema.Classification{}, fmt.Errorf("reading article document %s: %w", path, err)
	}

	var doc articleDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return schema.Article{}, schema.Classification{}, fmt.Errorf("parsing article document %s: %w", path, err)
	}

	art := doc.Article
	if art.ID == "" {
		return schema.Article{}, schema.Classification{}, fmt.Errorf("article document %s has no article id", path)
	}
	if art.Summary == "" {
		return schema.Article{}, schema.Classification{}, fmt.Errorf("article document %s has no summary", path)
	}
	if art.PublishedAt.IsZero() {
		art.PublishedAt = time.Now().UTC()
	}

	cls := doc.Classification
	if cls.DominantPerspective == "" {
		cls.DominantPerspective = dominantOf(cls)
	}
	if err := cls.Validate(); err != nil {
		return schema.Article{}, schema.Classification{}, fmt.Errorf("article document %s: %w", path, err)
	}
	if cls.OverallImportance == 0 {
		for _, p := range schema.AllPerspectives {
			if s := cls.Score(p); s > cls.OverallImportance {
				cls.OverallImportance = s
			}
		}
	}
	return art, cls, nil
}

// LoadArticleHTML extracts an article from a local HTML page. The id is
// derived from the page title, or from the file name when the page has none;
// the caller supplies the classification.
func LoadArticleHTML(path string) (schema.Article, error) {
	f, err := os.Open(path)
	if err != nil {
		return schema.Article{}, fmt.Errorf("reading article page %s: %w", path, err)
	}
	defer f.Close()

	extracted, err := extract.FromReader(f)
	if err != nil {
		return schema.Article{}, fmt.Errorf("parsing article page %s: %w", path, err)
	}
	if extracted.Text == "" {
		return schema.Article{}, fmt.Errorf("article page %s has no paragraph text", path)
	}

	id := extracted.Title
	if id == "" {
		id = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return schema.Article{
		ID:          contract.SlugifyTopicID(id),
		Summary:     extracted.Text,
		Source:      filepath.Base(path),
		PublishedAt: time.Now().UTC(),
	}, nil
}

// LoadTopicCandidate reads a JSON topic candidate for admission. A missing
// id is derived from the name, matching the seed file behavior.
func LoadTopicCandidate(path string) (schema.Topic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return schema.Topic{}, fmt.Errorf("reading topic candidate %s: %w", path, err)
	}

	var cand schema.Topic
	if err := json.Unmarshal(data, &cand); err != nil {
		return schema.Topic{}, fmt.Errorf("parsing topic candidate %s: %w", path, err)
	}
	if cand.Name == "" {
		return schema.Topic{}, fmt.Errorf("topic candidate %s has no name", path)
	}
	if cand.ID == "" {
		cand.ID = contract.SlugifyTopicID(cand.Name)
	}
	cand.LastUpdated = time.Now().UTC()
	return cand, nil
}

// dominantOf picks the highest-scoring perspective of a classification, ties
// broken by the canonical perspective order.
func dominantOf(cls schema.Classification) schema.Perspective {
	dominant := schema.RiskPerspective
	best := cls.Risk
	for _, p := range schema.AllPerspectives[1:] {
		if s := cls.Score(p); s > best {
			dominant, best = p, s
		}
	}
	return dominant
}
