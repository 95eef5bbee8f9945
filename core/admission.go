package core

import (
	"context"
	"fmt"
	"time"

	"github.com/marketloom/graphgate/internal/contract"
	"github.com/marketloom/graphgate/schema"
)

// admissionLock serializes topic admissions graph-wide. Replacement touches
// two topics at once, so a per-topic lock is not enough here.
const admissionLock = "\x00topic-admission"

// topicListingCap bounds the number of existing topics presented to the
// oracle in one admission request.
func (e *Engine) topicListingCap() int {
	return e.cfg.MaxTopics + 10
}

// DecideTopicAdmission admits a candidate topic into the graph. Below the
// topic ceiling the candidate is added outright; at the ceiling the oracle
// picks between replacing an existing topic and rejecting the candidate.
// With test=true the oracle is still consulted but no graph mutation is
// applied.
func (e *Engine) DecideTopicAdmission(ctx context.Context, cand schema.Topic, test bool) (schema.TopicAdmissionResult, error) {
	if cand.ID == "" {
		return schema.TopicAdmissionResult{}, fmt.Errorf("topic candidate has no id")
	}
	if cand.LastUpdated.IsZero() {
		cand.LastUpdated = time.Now().UTC()
	}

	unlock := e.lockTopic(admissionLock)
	defer unlock()

	existing, err := e.store.GetTopic(ctx, cand.ID)
	if err != nil {
		return schema.TopicAdmissionResult{}, err
	}
	if existing != nil {
		// Admission is idempotent for topics already in the graph.
		return schema.TopicAdmissionResult{
			Action:     schema.AddTopic,
			Motivation: fmt.Sprintf("topic %s already exists", cand.ID),
		}, nil
	}

	count, err := e.store.CountTopics(ctx)
	if err != nil {
		return schema.TopicAdmissionResult{}, err
	}

	if count < e.cfg.MaxTopics {
		if !test {
			mut := schema.EdgeMutation{
				Kind:  schema.CreateTopicMutation,
				Topic: &cand,
				At:    time.Now().UTC(),
			}
			if err := e.store.Apply(ctx, []schema.EdgeMutation{mut}); err != nil {
				return schema.TopicAdmissionResult{}, fmt.Errorf("creating topic %s: %w", cand.ID, err)
			}
			e.track("topic_added", fmt.Sprintf("topic=%s importance=%d (%d/%d)", cand.ID, cand.Importance, count+1, e.cfg.MaxTopics))
		}
		return schema.TopicAdmissionResult{Action: schema.AddTopic}, nil
	}

	topics, err := e.store.ListTopics(ctx)
	if err != nil {
		return schema.TopicAdmissionResult{}, err
	}
	if cap := e.topicListingCap(); len(topics) > cap {
		topics = topics[:cap]
	}

	summaries := make([]schema.TopicSummary, 0, len(topics))
	for _, t := range topics {
		summaries = append(summaries, schema.SummarizeTopic(t))
	}
	var weakest *schema.TopicSummary
	if w := schema.WeakestTopic(topics); w != nil {
		s := schema.SummarizeTopic(*w)
		weakest = &s
	}

	octx, cancel := e.oracleContext(ctx)
	decision, derr := e.oracle.DecideTopicCapacity(octx, schema.TopicCapacityRequest{
		Candidate: cand,
		Existing:  summaries,
		Weakest:   weakest,
		MaxTopics: e.cfg.MaxTopics,
	})
	cancel()
	if derr != nil {
		// Fail closed: the graph keeps its current topics.
		contract.LogWarn("Topic admission oracle", derr)
		e.track("topic_rejected", fmt.Sprintf("topic=%s: %v: %v", cand.ID, ErrOracleUnavailable, derr))
		return schema.TopicAdmissionResult{
			Action:     schema.RejectTopic,
			Motivation: fmt.Sprintf("%v: %v", ErrOracleUnavailable, derr),
		}, nil
	}

	switch decision.Action {
	case schema.ReplaceTopic:
		return e.replaceTopic(ctx, cand, decision, test)
	case schema.RejectTopic:
		e.track("topic_rejected", fmt.Sprintf("topic=%s: %s", cand.ID, decision.Motivation))
		return schema.TopicAdmissionResult{Action: schema.RejectTopic, Motivation: decision.Motivation}, nil
	default:
		// "add" has no meaning at the ceiling; treat anything unexpected as
		// reject rather than grow the graph past its cap.
		contract.LogWarn("Topic admission oracle", fmt.Errorf("unexpected action %q at topic ceiling", decision.Action))
		return schema.TopicAdmissionResult{
			Action:     schema.RejectTopic,
			Motivation: fmt.Sprintf("unexpected oracle action %q", decision.Action),
		}, nil
	}
}

// replaceTopic swaps the oracle's eviction target for the candidate in a
// single transaction. A target that does not exist in the graph is an
// integrity failure and nothing is mutated.
func (e *Engine) replaceTopic(ctx context.Context, cand schema.Topic, decision schema.TopicDecision, test bool) (schema.TopicAdmissionResult, error) {
	if decision.IDToRemove == "" {
		contract.LogWarn("Topic admission oracle", fmt.Errorf("replace without id_to_remove"))
		return schema.TopicAdmissionResult{
			Action:     schema.RejectTopic,
			Motivation: "oracle replace missing id_to_remove",
		}, nil
	}

	target, err := e.store.GetTopic(ctx, decision.IDToRemove)
	if err != nil {
		return schema.TopicAdmissionResult{}, err
	}
	if target == nil {
		return schema.TopicAdmissionResult{}, fmt.Errorf("replacement target %q does not exist: %w",
			decision.IDToRemove, ErrIntegrity)
	}

	result := schema.TopicAdmissionResult{
		Action:     schema.ReplaceTopic,
		RemovedID:  decision.IDToRemove,
		Motivation: decision.Motivation,
	}
	if test {
		return result, nil
	}

	now := time.Now().UTC()
	muts := []schema.EdgeMutation{
		{Kind: schema.RemoveTopicMutation, TopicID: decision.IDToRemove, Reason: decision.Motivation, At: now},
		{Kind: schema.CreateTopicMutation, Topic: &cand, At: now},
	}
	if err := e.store.Apply(ctx, muts); err != nil {
		return schema.TopicAdmissionResult{}, fmt.Errorf("replacing topic %s with %s: %w",
			decision.IDToRemove, cand.ID, err)
	}
	e.track("topic_replaced", fmt.Sprintf("topic=%s replaced %s: %s", cand.ID, decision.IDToRemove, decision.Motivation))
	return result, nil
}
