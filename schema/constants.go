package schema

// Custom string types for type safety.
type (
	// Timeframe represents the horizon bucket of an article classification.
	Timeframe string

	// Perspective represents one of the four independent relevance lenses.
	Perspective string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for audit tracking.
	DatabaseBackend string

	// GraphBackend represents the graph store backend.
	GraphBackend string

	// OracleBackend represents the decision oracle backend.
	OracleBackend string

	// CapacityAction represents the outcome of a make-room call.
	CapacityAction string

	// TopicAction represents the outcome of a topic admission call.
	TopicAction string
)

// All timeframes supported.
const (
	FundamentalTimeframe Timeframe = "fundamental" // 6+ months
	MediumTimeframe      Timeframe = "medium"      // 1-6 months
	CurrentTimeframe     Timeframe = "current"     // 0-4 weeks
)

// All perspectives supported.
const (
	RiskPerspective        Perspective = "risk"
	OpportunityPerspective Perspective = "opportunity"
	TrendPerspective       Perspective = "trend"
	CatalystPerspective    Perspective = "catalyst"
)

// Importance tiers. Scores on ABOUT edges range over [0,3]; buckets are
// capacity-managed for tiers 1-3, and tier 0 means archived.
const (
	TierArchived = 0
	TierFiller   = 1
	TierStandard = 2
	TierPremium  = 3
)

// All output modes supported.
const (
	CSVOut  OutputMode = "csv"
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
)

// All audit backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All graph backends supported.
const (
	Neo4jGraph  GraphBackend = "neo4j"
	MemoryGraph GraphBackend = "memory" // default
)

// All oracle backends supported.
const (
	LLMOracle   OracleBackend = "llm"
	RulesOracle OracleBackend = "rules" // default
	NoneOracle  OracleBackend = "none"  // every decision fails closed
)

// Outcomes of make-room and ingest calls.
const (
	AcceptAction    CapacityAction = "accept"
	DowngradeAction CapacityAction = "downgrade"
	RejectAction    CapacityAction = "reject"
	DuplicateAction CapacityAction = "duplicate"
)

// Outcomes of topic admission calls.
const (
	AddTopic     TopicAction = "add"
	ReplaceTopic TopicAction = "replace"
	RejectTopic  TopicAction = "reject"
)

// AllTimeframes returns a list of all supported timeframes.
var AllTimeframes = []Timeframe{FundamentalTimeframe, MediumTimeframe, CurrentTimeframe}

// AllPerspectives returns a list of all supported perspectives.
var AllPerspectives = []Perspective{RiskPerspective, OpportunityPerspective, TrendPerspective, CatalystPerspective}

// ManagedTiers lists the capacity-managed tiers in sweep order (highest first).
var ManagedTiers = []int{TierPremium, TierStandard, TierFiller}

// ValidTimeframes lists all valid timeframes.
var ValidTimeframes = map[Timeframe]struct{}{
	FundamentalTimeframe: {},
	MediumTimeframe:      {},
	CurrentTimeframe:     {},
}

// ValidPerspectives lists all valid perspectives.
var ValidPerspectives = map[Perspective]struct{}{
	RiskPerspective:        {},
	OpportunityPerspective: {},
	TrendPerspective:       {},
	CatalystPerspective:    {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:  {},
	TextOut: {},
	JSONOut: {},
}

// ValidDatabaseBackends lists all valid audit backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidGraphBackends lists all valid graph backends.
var ValidGraphBackends = map[GraphBackend]struct{}{
	Neo4jGraph:  {},
	MemoryGraph: {},
}

// ValidOracleBackends lists all valid oracle backends.
var ValidOracleBackends = map[OracleBackend]struct{}{
	LLMOracle:   {},
	RulesOracle: {},
	NoneOracle:  {},
}

// DefaultTierLimits returns the default per-bucket capacity table, keyed by
// tier. Limits currently apply uniformly across timeframes and perspectives.
func DefaultTierLimits() map[int]int {
	return map[int]int{
		TierPremium:  4,
		TierStandard: 8,
		TierFiller:   12,
	}
}
