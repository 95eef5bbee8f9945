// Package core has the capacity engine: topic admission, article make-room
// with cascading downgrade, and the cleanup sweeper.
package core

import (
	"context"
	"errors"
	"sync"

	"github.com/marketloom/graphgate/internal/contract"
)

// Sentinel errors for capacity decisions.
var (
	// ErrIntegrity means the oracle named a target that does not exist in
	// the presented set. The operation aborts; nothing is mutated.
	ErrIntegrity = errors.New("oracle decision failed integrity check")

	// ErrOracleUnavailable means the oracle timed out, errored, or answered
	// with a malformed decision. Callers treat it as reject (fail closed).
	ErrOracleUnavailable = errors.New("decision oracle unavailable")

	// ErrRecursionExhausted means a cascading downgrade chain ran past the
	// number of managed tiers without reaching the archive base case. This
	// indicates a tier-table misconfiguration and maps to reject.
	ErrRecursionExhausted = errors.New("cascading downgrade exhausted tier depth")
)

// Engine executes every capacity decision against an injected graph store
// and decision oracle. All mutation for one operation is applied as a single
// store transaction, and operations on the same topic are serialized by a
// per-topic mutex to close the check-then-act window under concurrent
// ingestion.
type Engine struct {
	cfg     *contract.Config
	store   contract.GraphStore
	oracle  contract.DecisionOracle
	tracker contract.Tracker
	audit   contract.AuditManager

	mu         sync.Mutex // guards topicLocks
	topicLocks map[string]*sync.Mutex
}

// NewEngine creates a capacity engine with explicit dependencies.
func NewEngine(cfg *contract.Config, store contract.GraphStore, oracle contract.DecisionOracle, tracker contract.Tracker, audit contract.AuditManager) *Engine {
	return &Engine{
		cfg:        cfg,
		store:      store,
		oracle:     oracle,
		tracker:    tracker,
		audit:      audit,
		topicLocks: make(map[string]*sync.Mutex),
	}
}

// lockTopic serializes engine mutations per topic. Distinct topics proceed
// in parallel; the graph store transaction is still the final arbiter.
func (e *Engine) lockTopic(topicID string) func() {
	e.mu.Lock()
	lock, ok := e.topicLocks[topicID]
	if !ok {
		lock = &sync.Mutex{}
		e.topicLocks[topicID] = lock
	}
	e.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// oracleContext bounds the only high-latency call in the engine. A timeout
// surfaces as an oracle error, which every caller treats as reject.
func (e *Engine) oracleContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.cfg.OracleTimeout)
}

// track emits a fire-and-forget audit event when a tracker is configured.
func (e *Engine) track(event, message string) {
	if e.tracker != nil {
		e.tracker.Track(event, message)
	}
}

// trackArticle emits a topic/article-scoped audit event.
func (e *Engine) trackArticle(event, topicID, articleID, message string) {
	if e.tracker != nil {
		e.tracker.TrackArticle(event, topicID, articleID, message)
	}
}

// auditStore returns the audit store when one is configured, nil otherwise.
func (e *Engine) auditStore() contract.AuditStore {
	if e.audit == nil {
		return nil
	}
	return e.audit.GetAuditStore()
}
