package oracle_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketloom/graphgate/internal/contract"
	"github.com/marketloom/graphgate/internal/oracle"
	"github.com/marketloom/graphgate/schema"
)

func newConfig(backend schema.OracleBackend) *contract.Config {
	return &contract.Config{OracleBackend: backend, OracleTimeout: time.Second}
}

// completionServer answers every chat completion with the given content.
func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "test-model", payload["model"])

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestLLMOracleDecideArticleCapacity(t *testing.T) {
	req := schema.ArticleCapacityRequest{
		Tier:      3,
		Occupants: []schema.BucketOccupant{occupant("a1", time.Now())},
	}

	t.Run("valid downgrade decision", func(t *testing.T) {
		srv := completionServer(t, `{"motivation": "stale coverage", "action": "downgrade", "target_article_id": "a1", "new_importance": 2}`)
		defer srv.Close()

		o := oracle.NewLLMOracle(srv.URL, "test-model", "key", 5*time.Second)
		decision, err := o.DecideArticleCapacity(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, schema.DowngradeAction, decision.Action)
		assert.Equal(t, "a1", decision.TargetArticleID)
		require.NotNil(t, decision.NewImportance)
		assert.Equal(t, 2, *decision.NewImportance)
	})

	t.Run("strips markdown code fence", func(t *testing.T) {
		srv := completionServer(t, "```json\n{\"motivation\": \"m\", \"action\": \"reject\"}\n```")
		defer srv.Close()

		o := oracle.NewLLMOracle(srv.URL, "test-model", "", 5*time.Second)
		decision, err := o.DecideArticleCapacity(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, schema.RejectAction, decision.Action)
	})

	t.Run("rejects target outside presented occupants", func(t *testing.T) {
		srv := completionServer(t, `{"motivation": "m", "action": "downgrade", "target_article_id": "ghost", "new_importance": 2}`)
		defer srv.Close()

		o := oracle.NewLLMOracle(srv.URL, "test-model", "", 5*time.Second)
		_, err := o.DecideArticleCapacity(context.Background(), req)
		assert.ErrorContains(t, err, "not an allowed id")
	})

	t.Run("rejects downgrade at or above the contested tier", func(t *testing.T) {
		srv := completionServer(t, `{"motivation": "m", "action": "downgrade", "target_article_id": "a1", "new_importance": 3}`)
		defer srv.Close()

		o := oracle.NewLLMOracle(srv.URL, "test-model", "", 5*time.Second)
		_, err := o.DecideArticleCapacity(context.Background(), req)
		assert.ErrorContains(t, err, "not below tier")
	})

	t.Run("non-JSON answer is an error", func(t *testing.T) {
		srv := completionServer(t, "I think you should reject this one.")
		defer srv.Close()

		o := oracle.NewLLMOracle(srv.URL, "test-model", "", 5*time.Second)
		_, err := o.DecideArticleCapacity(context.Background(), req)
		assert.ErrorContains(t, err, "non-JSON")
	})
}

func TestLLMOracleDecideTopicCapacity(t *testing.T) {
	t.Run("valid replace decision", func(t *testing.T) {
		srv := completionServer(t, `{"motivation": "m", "action": "replace", "id_to_remove": "weak"}`)
		defer srv.Close()

		o := oracle.NewLLMOracle(srv.URL, "test-model", "", 5*time.Second)
		decision, err := o.DecideTopicCapacity(context.Background(), schema.TopicCapacityRequest{})
		require.NoError(t, err)
		assert.Equal(t, schema.ReplaceTopic, decision.Action)
		assert.Equal(t, "weak", decision.IDToRemove)
	})

	t.Run("replace without id_to_remove is an error", func(t *testing.T) {
		srv := completionServer(t, `{"motivation": "m", "action": "replace"}`)
		defer srv.Close()

		o := oracle.NewLLMOracle(srv.URL, "test-model", "", 5*time.Second)
		_, err := o.DecideTopicCapacity(context.Background(), schema.TopicCapacityRequest{})
		assert.ErrorContains(t, err, "missing id_to_remove")
	})
}

func TestLLMOraclePickWeakest(t *testing.T) {
	req := schema.WeakestPickRequest{
		Occupants: []schema.BucketOccupant{occupant("a1", time.Now())},
	}

	t.Run("valid pick", func(t *testing.T) {
		srv := completionServer(t, `{"downgrade": "a1", "reasoning": "least value"}`)
		defer srv.Close()

		o := oracle.NewLLMOracle(srv.URL, "test-model", "", 5*time.Second)
		pick, err := o.PickWeakest(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "a1", pick.ArticleID)
	})

	t.Run("pick outside occupants is an error", func(t *testing.T) {
		srv := completionServer(t, `{"downgrade": "ghost", "reasoning": "r"}`)
		defer srv.Close()

		o := oracle.NewLLMOracle(srv.URL, "test-model", "", 5*time.Second)
		_, err := o.PickWeakest(context.Background(), req)
		assert.ErrorContains(t, err, "not an allowed id")
	})
}

func TestLLMOracleTransportErrors(t *testing.T) {
	t.Run("http error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "model overloaded", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		o := oracle.NewLLMOracle(srv.URL, "test-model", "", 5*time.Second)
		_, err := o.DecideTopicCapacity(context.Background(), schema.TopicCapacityRequest{})
		assert.ErrorContains(t, err, "503")
	})

	t.Run("empty choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"choices": []}`))
		}))
		defer srv.Close()

		o := oracle.NewLLMOracle(srv.URL, "test-model", "", 5*time.Second)
		_, err := o.DecideTopicCapacity(context.Background(), schema.TopicCapacityRequest{})
		assert.ErrorContains(t, err, "no choices")
	})

	t.Run("misconfigured client", func(t *testing.T) {
		o := oracle.NewLLMOracle("", "", "", 0)
		_, err := o.DecideTopicCapacity(context.Background(), schema.TopicCapacityRequest{})
		assert.ErrorContains(t, err, "misconfigured")
	})
}

func TestOracleFactory(t *testing.T) {
	_, err := oracle.New(newConfig("carrier-pigeon"))
	assert.ErrorContains(t, err, "unknown oracle backend")

	o, err := oracle.New(newConfig(schema.RulesOracle))
	require.NoError(t, err)
	assert.IsType(t, &oracle.RulesOracle{}, o)

	o, err = oracle.New(newConfig(schema.NoneOracle))
	require.NoError(t, err)
	assert.IsType(t, &oracle.NoneOracle{}, o)
}

func TestNoneOracleFailsClosed(t *testing.T) {
	o := oracle.NewNoneOracle()
	ctx := context.Background()

	_, err := o.DecideTopicCapacity(ctx, schema.TopicCapacityRequest{})
	assert.Error(t, err)
	_, err = o.DecideArticleCapacity(ctx, schema.ArticleCapacityRequest{})
	assert.Error(t, err)
	_, err = o.PickWeakest(ctx, schema.WeakestPickRequest{})
	assert.Error(t, err)
}
