// Package oracle has the DecisionOracle backends: an LLM client speaking the
// OpenAI chat-completions protocol, a deterministic rules policy, and a
// none backend where every decision fails closed.
package oracle

import (
	"fmt"

	"github.com/marketloom/graphgate/internal/contract"
	"github.com/marketloom/graphgate/schema"
)

// New builds the oracle for the configured backend.
func New(cfg *contract.Config) (contract.DecisionOracle, error) {
	switch cfg.OracleBackend {
	case schema.LLMOracle:
		return NewLLMOracle(cfg.OracleEndpoint, cfg.OracleModel, cfg.OracleAPIKey, cfg.OracleTimeout), nil
	case schema.RulesOracle:
		return NewRulesOracle(), nil
	case schema.NoneOracle:
		return NewNoneOracle(), nil
	default:
		return nil, fmt.Errorf("unknown oracle backend %q", cfg.OracleBackend)
	}
}

// validateArticleDecision checks an article decision against the request it
// answers. Downgrades must target a presented occupant and land strictly
// below the contested tier.
func validateArticleDecision(req schema.ArticleCapacityRequest, d schema.ArticleDecision) error {
	switch d.Action {
	case schema.RejectAction:
		return nil
	case schema.DowngradeAction:
		if d.TargetArticleID == "" {
			return fmt.Errorf("downgrade decision missing target_article_id")
		}
		if !occupantPresent(req.Occupants, d.TargetArticleID) {
			return fmt.Errorf("target_article_id %q is not an allowed id", d.TargetArticleID)
		}
		if d.NewImportance == nil {
			return fmt.Errorf("downgrade decision missing new_importance")
		}
		if *d.NewImportance < schema.TierArchived || *d.NewImportance >= req.Tier {
			return fmt.Errorf("new_importance %d is not below tier %d", *d.NewImportance, req.Tier)
		}
		return nil
	default:
		return fmt.Errorf("unknown action %q", d.Action)
	}
}

// validateTopicDecision checks a topic decision for field presence.
func validateTopicDecision(d schema.TopicDecision) error {
	switch d.Action {
	case schema.AddTopic, schema.RejectTopic:
		return nil
	case schema.ReplaceTopic:
		if d.IDToRemove == "" {
			return fmt.Errorf("replace decision missing id_to_remove")
		}
		return nil
	default:
		return fmt.Errorf("unknown action %q", d.Action)
	}
}

// validateWeakestPick checks that the mandatory pick names a presented
// occupant.
func validateWeakestPick(req schema.WeakestPickRequest, p schema.WeakestPick) error {
	if p.ArticleID == "" {
		return fmt.Errorf("weakest pick missing downgrade id")
	}
	if !occupantPresent(req.Occupants, p.ArticleID) {
		return fmt.Errorf("downgrade id %q is not an allowed id", p.ArticleID)
	}
	return nil
}

func occupantPresent(occupants []schema.BucketOccupant, articleID string) bool {
	for _, o := range occupants {
		if o.Article.ID == articleID {
			return true
		}
	}
	return false
}
