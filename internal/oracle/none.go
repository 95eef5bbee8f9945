package oracle

import (
	"context"
	"fmt"

	"github.com/marketloom/graphgate/internal/contract"
	"github.com/marketloom/graphgate/schema"
)

// NoneOracle answers every decision with an error, so every capacity
// question fails closed. Useful for read-only deployments where no
// displacement should ever happen.
type NoneOracle struct{}

var _ contract.DecisionOracle = (*NoneOracle)(nil)

// NewNoneOracle creates the fail-closed oracle.
func NewNoneOracle() *NoneOracle {
	return &NoneOracle{}
}

var errNoOracle = fmt.Errorf("no decision oracle configured")

// DecideTopicCapacity always fails.
func (o *NoneOracle) DecideTopicCapacity(context.Context, schema.TopicCapacityRequest) (schema.TopicDecision, error) {
	return schema.TopicDecision{}, errNoOracle
}

// DecideArticleCapacity always fails.
func (o *NoneOracle) DecideArticleCapacity(context.Context, schema.ArticleCapacityRequest) (schema.ArticleDecision, error) {
	return schema.ArticleDecision{}, errNoOracle
}

// PickWeakest always fails.
func (o *NoneOracle) PickWeakest(context.Context, schema.WeakestPickRequest) (schema.WeakestPick, error) {
	return schema.WeakestPick{}, errNoOracle
}
