package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/marketloom/graphgate/internal/contract"
	"github.com/marketloom/graphgate/schema"
)

// LLMOracle asks an OpenAI-compatible chat-completions endpoint for every
// decision. Responses must be strict JSON; malformed or out-of-policy
// answers surface as errors, which callers treat as reject.
type LLMOracle struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

var _ contract.DecisionOracle = (*LLMOracle)(nil)

// NewLLMOracle builds a client for the given endpoint and model.
func NewLLMOracle(endpoint, model, apiKey string, timeout time.Duration) *LLMOracle {
	if timeout <= 0 {
		timeout = contract.DefaultOracleTimeout
	}
	return &LLMOracle{
		endpoint: endpoint,
		model:    model,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

const articleCapacitySystemPrompt = `You manage article capacity for a macro/markets knowledge graph.
A topic's bucket for one timeframe and importance tier is full and a new article wants in.

Decide between:
1. "downgrade": pick ONE existing article to move down. Suggest its new importance tier
   strictly below the contested tier; tier 0 archives the article.
2. "reject": the new article does not justify displacing any existing one. Prefer this if unsure.

Prioritize, in order: perspective diversity, freshness, source quality, importance accuracy.

Respond with strict JSON only, no markdown:
{"motivation": "1-2 sentences", "action": "downgrade" | "reject", "target_article_id": "id" | null, "new_importance": 0 | 1 | 2 | null}`

const topicCapacitySystemPrompt = `You guard the topic ceiling of a macro/markets knowledge graph.
The graph is at its maximum topic count and a candidate topic wants in.
Topics are persistent analytical anchors worth tracking for months.

Decide between:
1. "replace": the candidate is clearly more important than the weakest existing topic.
   Set id_to_remove to that topic's id.
2. "reject": the existing set is already stronger. Prefer this if unsure.

Respond with strict JSON only, no markdown:
{"motivation": "1-2 sentences", "action": "replace" | "reject", "id_to_remove": "topic_id" | null}`

const pickWeakestSystemPrompt = `You manage article capacity for a macro/markets knowledge graph.
A bucket is over capacity and you MUST pick exactly one existing article to downgrade.
There is no reject or skip option.

Pick the article with the least analytical value, weighing in order: trading value,
timeliness, redundancy, source quality, specificity.

Respond with strict JSON only, no markdown:
{"downgrade": "existing_article_id", "reasoning": "why this article has the least value"}`

// DecideArticleCapacity asks for a downgrade/reject decision on a full bucket.
func (o *LLMOracle) DecideArticleCapacity(ctx context.Context, req schema.ArticleCapacityRequest) (schema.ArticleDecision, error) {
	var decision schema.ArticleDecision
	if err := o.decide(ctx, articleCapacitySystemPrompt, req, &decision); err != nil {
		return schema.ArticleDecision{}, err
	}
	if err := validateArticleDecision(req, decision); err != nil {
		return schema.ArticleDecision{}, fmt.Errorf("article capacity decision: %w", err)
	}
	return decision, nil
}

// DecideTopicCapacity asks for an add/replace/reject decision at the topic
// ceiling.
func (o *LLMOracle) DecideTopicCapacity(ctx context.Context, req schema.TopicCapacityRequest) (schema.TopicDecision, error) {
	var decision schema.TopicDecision
	if err := o.decide(ctx, topicCapacitySystemPrompt, req, &decision); err != nil {
		return schema.TopicDecision{}, err
	}
	if err := validateTopicDecision(decision); err != nil {
		return schema.TopicDecision{}, fmt.Errorf("topic capacity decision: %w", err)
	}
	return decision, nil
}

// PickWeakest asks for the mandatory weakest occupant of an over-capacity
// bucket.
func (o *LLMOracle) PickWeakest(ctx context.Context, req schema.WeakestPickRequest) (schema.WeakestPick, error) {
	var pick schema.WeakestPick
	if err := o.decide(ctx, pickWeakestSystemPrompt, req, &pick); err != nil {
		return schema.WeakestPick{}, err
	}
	if err := validateWeakestPick(req, pick); err != nil {
		return schema.WeakestPick{}, fmt.Errorf("weakest pick: %w", err)
	}
	return pick, nil
}

// decide posts the request as a user message and unmarshals the answer.
func (o *LLMOracle) decide(ctx context.Context, systemPrompt string, payload any, out any) error {
	if o.endpoint == "" || o.model == "" {
		return fmt.Errorf("llm oracle misconfigured")
	}

	userContent, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal oracle payload: %w", err)
	}

	body, err := json.Marshal(map[string]any{
		"model": o.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": string(userContent)},
		},
		"temperature": 0,
	})
	if err != nil {
		return fmt.Errorf("marshal oracle request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new oracle request: %w", err)
	}
	if o.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("oracle request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("oracle error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return fmt.Errorf("decode oracle response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return fmt.Errorf("oracle response has no choices")
	}

	content := stripCodeFence(completion.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("oracle answered non-JSON: %w", err)
	}
	return nil
}

// stripCodeFence removes a surrounding markdown code fence, which some
// models add despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
