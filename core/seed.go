package core

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/marketloom/graphgate/internal/contract"
	"github.com/marketloom/graphgate/schema"
)

// interestAreaFile is the on-disk shape of a topic seed file.
type interestAreaFile struct {
	Topics []interestArea `yaml:"topics"`
}

// interestArea is one seed entry. Priority maps directly to topic
// importance; a missing id is derived from the name.
type interestArea struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	Priority int    `yaml:"priority"`
}

// LoadInterestAreas reads a YAML seed file into topic candidates.
func LoadInterestAreas(path string) ([]schema.Topic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading interest areas %s: %w", path, err)
	}

	var file interestAreaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing interest areas %s: %w", path, err)
	}
	if len(file.Topics) == 0 {
		return nil, fmt.Errorf("interest areas %s has no topics", path)
	}

	now := time.Now().UTC()
	topics := make([]schema.Topic, 0, len(file.Topics))
	for i, area := range file.Topics {
		if area.Name == "" {
			return nil, fmt.Errorf("interest areas %s: topic %d has no name", path, i)
		}
		id := area.ID
		if id == "" {
			id = contract.SlugifyTopicID(area.Name)
		}
		topics = append(topics, schema.Topic{
			ID:          id,
			Name:        area.Name,
			Category:    area.Category,
			Importance:  area.Priority,
			LastUpdated: now,
		})
	}
	return topics, nil
}

// SeedTopics runs topic admission for each candidate in order. One rejected
// or failed candidate does not stop the rest; per-candidate errors are
// reported inline as rejects.
func (e *Engine) SeedTopics(ctx context.Context, topics []schema.Topic, test bool) []schema.TopicAdmissionResult {
	results := make([]schema.TopicAdmissionResult, 0, len(topics))
	for _, t := range topics {
		res, err := e.DecideTopicAdmission(ctx, t, test)
		if err != nil {
			contract.LogWarn(fmt.Sprintf("Seeding topic %s", t.ID), err)
			res = schema.TopicAdmissionResult{
				Action:     schema.RejectTopic,
				Motivation: err.Error(),
			}
		}
		results = append(results, res)
	}
	return results
}
