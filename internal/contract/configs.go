package contract

import (
	"fmt"
	"maps"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/marketloom/graphgate/schema"
)

// Default values for configuration.
const (
	DefaultMaxTopics        = 100
	DefaultMaxCleanupPasses = 5
	DefaultBucketScanWindow = 15
	DefaultResultLimit      = 25
	MaxResultLimit          = 1000
	DefaultOracleTimeout    = 20 * time.Second
)

// DefaultWorkers is the default number of concurrent workers for bulk sweeps.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Config holds the runtime configuration for the capacity engine.
// This struct remains the "final, validated" config.
type Config struct {
	MaxTopics        int
	MaxCleanupPasses int
	BucketScanWindow int
	TierLimits       map[int]int // tier -> max bucket occupancy

	GraphBackend  schema.GraphBackend
	GraphURI      string
	GraphUser     string
	GraphPassword string // Please use env var as this is plaintext
	GraphDatabase string

	OracleBackend  schema.OracleBackend
	OracleEndpoint string
	OracleModel    string
	OracleAPIKey   string // Please use env var as this is plaintext
	OracleTimeout  time.Duration

	AuditBackend   schema.DatabaseBackend
	AuditDBConnect string // Please use env var as this is plaintext

	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	Workers     int
	ResultLimit int
	Strict      bool // non-zero exit when a sweep fails to converge
	DryRun      bool // sweeps detect and report only
	Test        bool // consult the oracle but apply nothing

	// TopicID is the positional topic argument; empty or "all" means every topic.
	TopicID string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	TopicIDStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	MaxTopics        int    `mapstructure:"max-topics"`
	MaxCleanupPasses int    `mapstructure:"max-cleanup-passes"`
	BucketScanWindow int    `mapstructure:"bucket-scan-window"`
	TierLimits       string `mapstructure:"tier-limits"`

	GraphBackend  string `mapstructure:"graph-backend"`
	GraphURI      string `mapstructure:"graph-uri"`
	GraphUser     string `mapstructure:"graph-user"`
	GraphPassword string `mapstructure:"graph-password"`
	GraphDatabase string `mapstructure:"graph-database"`

	OracleBackend  string `mapstructure:"oracle-backend"`
	OracleEndpoint string `mapstructure:"oracle-endpoint"`
	OracleModel    string `mapstructure:"oracle-model"`
	OracleAPIKey   string `mapstructure:"oracle-api-key"`
	OracleTimeout  string `mapstructure:"oracle-timeout"`

	AuditBackend   string `mapstructure:"audit-backend"`
	AuditDBConnect string `mapstructure:"audit-db-connect"`

	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Width      int    `mapstructure:"width"`
	Color      string `mapstructure:"color"`

	Workers int  `mapstructure:"workers"`
	Limit   int  `mapstructure:"limit"`
	Strict  bool `mapstructure:"strict"`

	// --- Fields from cleanupCmd.Flags() ---
	DryRun bool `mapstructure:"dry-run"`

	// --- Fields from topic/ingest flags ---
	Test bool `mapstructure:"test"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.TierLimits != nil {
		clone.TierLimits = make(map[int]int, len(c.TierLimits))
		maps.Copy(clone.TierLimits, c.TierLimits)
	}
	return &clone
}

// TierLimit returns the capacity limit for a tier. Tiers outside the
// configured table have no room at all, which surfaces misconfiguration as
// rejects instead of unbounded growth.
func (c *Config) TierLimit(tier int) int {
	if limit, ok := c.TierLimits[tier]; ok {
		return limit
	}
	return 0
}

// SweepAllTopics reports whether the positional topic argument asks for a
// full-graph sweep (absent or the literal token all/ALL).
func (c *Config) SweepAllTopics() bool {
	return c.TopicID == "" || strings.EqualFold(c.TopicID, "all")
}

// ProcessAndValidate performs all complex parsing and validation on the raw
// inputs and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processTierLimits(cfg, input); err != nil {
		return err
	}
	if err := processOracleConfig(cfg, input); err != nil {
		return err
	}
	cfg.TopicID = strings.TrimSpace(input.TopicIDStr)
	return nil
}

// validateSimpleInputs processes and validates all non-backend fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Strict = input.Strict
	cfg.DryRun = input.DryRun
	cfg.Test = input.Test

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Capacity ceilings ---
	if input.MaxTopics <= 0 {
		return fmt.Errorf("max-topics must be greater than 0 (received %d)", input.MaxTopics)
	}
	cfg.MaxTopics = input.MaxTopics

	if input.MaxCleanupPasses <= 0 {
		return fmt.Errorf("max-cleanup-passes must be greater than 0 (received %d)", input.MaxCleanupPasses)
	}
	cfg.MaxCleanupPasses = input.MaxCleanupPasses

	if input.BucketScanWindow <= 0 {
		return fmt.Errorf("bucket-scan-window must be greater than 0 (received %d)", input.BucketScanWindow)
	}
	cfg.BucketScanWindow = input.BucketScanWindow

	// --- 2. ResultLimit Validation ---
	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- 3. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 4. Output Validation ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", cfg.Output)
	}

	return nil
}

// validateBackendConfigs validates graph and audit backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Graph Backend Validation ---
	cfg.GraphBackend = schema.GraphBackend(strings.ToLower(input.GraphBackend))
	if _, ok := schema.ValidGraphBackends[cfg.GraphBackend]; !ok {
		return fmt.Errorf("invalid graph backend '%s'. must be neo4j, memory", input.GraphBackend)
	}
	cfg.GraphURI = input.GraphURI
	cfg.GraphUser = input.GraphUser
	cfg.GraphPassword = input.GraphPassword
	cfg.GraphDatabase = input.GraphDatabase
	if cfg.GraphBackend == schema.Neo4jGraph && cfg.GraphURI == "" {
		return fmt.Errorf("graph-uri is required when using the %s backend", cfg.GraphBackend)
	}

	// --- Audit Backend Validation ---
	cfg.AuditBackend = schema.DatabaseBackend(strings.ToLower(input.AuditBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.AuditBackend]; !ok {
		return fmt.Errorf("invalid audit backend '%s'. must be sqlite, mysql, postgresql, none", input.AuditBackend)
	}
	cfg.AuditDBConnect = input.AuditDBConnect
	return ValidateDatabaseConnectionString(cfg.AuditBackend, cfg.AuditDBConnect)
}

// ValidateDatabaseConnectionString validates the format of database
// connection strings for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("audit-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("audit-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// processTierLimits parses the tier-limits flag into the final capacity
// table. Tier 0 is never capacity-managed; archived edges occupy no bucket.
func processTierLimits(cfg *Config, input *ConfigRawInput) error {
	limits := schema.DefaultTierLimits()

	if input.TierLimits != "" {
		parsed, err := ParseTierLimitsString(input.TierLimits)
		if err != nil {
			return fmt.Errorf("invalid --tier-limits format: %w", err)
		}
		maps.Copy(limits, parsed)
	}

	for tier, limit := range limits {
		if tier < schema.TierFiller || tier > schema.TierPremium {
			return fmt.Errorf("tier-limits tier %d outside managed range [%d,%d]", tier, schema.TierFiller, schema.TierPremium)
		}
		if limit <= 0 {
			return fmt.Errorf("tier-limits value for tier %d must be greater than 0 (received %d)", tier, limit)
		}
	}
	for _, tier := range schema.ManagedTiers {
		if _, ok := limits[tier]; !ok {
			return fmt.Errorf("tier-limits is missing tier %d; every managed tier needs a limit", tier)
		}
	}

	cfg.TierLimits = limits
	return nil
}

// processOracleConfig validates the oracle backend and its timeout.
func processOracleConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.OracleBackend = schema.OracleBackend(strings.ToLower(input.OracleBackend))
	if _, ok := schema.ValidOracleBackends[cfg.OracleBackend]; !ok {
		return fmt.Errorf("invalid oracle backend '%s'. must be llm, rules, none", input.OracleBackend)
	}
	cfg.OracleEndpoint = input.OracleEndpoint
	cfg.OracleModel = input.OracleModel
	cfg.OracleAPIKey = input.OracleAPIKey

	if cfg.OracleBackend == schema.LLMOracle {
		if cfg.OracleEndpoint == "" || cfg.OracleModel == "" {
			return fmt.Errorf("oracle-endpoint and oracle-model are required when using the %s backend", cfg.OracleBackend)
		}
	}

	cfg.OracleTimeout = DefaultOracleTimeout
	if input.OracleTimeout != "" {
		timeout, err := time.ParseDuration(input.OracleTimeout)
		if err != nil {
			return fmt.Errorf("invalid oracle-timeout '%s': %w", input.OracleTimeout, err)
		}
		if timeout <= 0 {
			return fmt.Errorf("oracle-timeout must be positive (received %s)", timeout)
		}
		cfg.OracleTimeout = timeout
	}
	return nil
}

// ParseTierLimitsString parses a string like "3:4,2:8,1:12" into a map of
// tier to max bucket occupancy.
func ParseTierLimitsString(s string) (map[int]int, error) {
	limits := make(map[int]int)

	if s == "" {
		return limits, nil
	}

	parts := strings.SplitSeq(s, ",")
	for part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		keyValue := strings.Split(part, ":")
		if len(keyValue) != 2 {
			return nil, fmt.Errorf("invalid tier limit format '%s', expected 'tier:max'", part)
		}

		tier, err := strconv.Atoi(strings.TrimSpace(keyValue[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid tier '%s': %w", keyValue[0], err)
		}
		limit, err := strconv.Atoi(strings.TrimSpace(keyValue[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid limit '%s' for tier %d: %w", keyValue[1], tier, err)
		}

		limits[tier] = limit
	}

	return limits, nil
}
