package contract_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketloom/graphgate/internal/contract"
	"github.com/marketloom/graphgate/schema"
)

// validInput returns a raw input equivalent to the CLI defaults.
func validInput() *contract.ConfigRawInput {
	return &contract.ConfigRawInput{
		MaxTopics:        contract.DefaultMaxTopics,
		MaxCleanupPasses: contract.DefaultMaxCleanupPasses,
		BucketScanWindow: contract.DefaultBucketScanWindow,
		GraphBackend:     "memory",
		OracleBackend:    "rules",
		OracleTimeout:    "20s",
		AuditBackend:     "none",
		Output:           "text",
		Color:            "yes",
		Workers:          4,
		Limit:            contract.DefaultResultLimit,
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	cfg := &contract.Config{}
	require.NoError(t, contract.ProcessAndValidate(cfg, validInput()))

	assert.Equal(t, contract.DefaultMaxTopics, cfg.MaxTopics)
	assert.Equal(t, schema.MemoryGraph, cfg.GraphBackend)
	assert.Equal(t, schema.RulesOracle, cfg.OracleBackend)
	assert.Equal(t, 20*time.Second, cfg.OracleTimeout)
	assert.Equal(t, schema.DefaultTierLimits(), cfg.TierLimits)
	assert.True(t, cfg.UseColors)
}

func TestProcessAndValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*contract.ConfigRawInput)
		wantErr string
	}{
		{
			name:    "zero max topics",
			mutate:  func(in *contract.ConfigRawInput) { in.MaxTopics = 0 },
			wantErr: "max-topics",
		},
		{
			name:    "zero cleanup passes",
			mutate:  func(in *contract.ConfigRawInput) { in.MaxCleanupPasses = 0 },
			wantErr: "max-cleanup-passes",
		},
		{
			name:    "zero scan window",
			mutate:  func(in *contract.ConfigRawInput) { in.BucketScanWindow = 0 },
			wantErr: "bucket-scan-window",
		},
		{
			name:    "limit above ceiling",
			mutate:  func(in *contract.ConfigRawInput) { in.Limit = contract.MaxResultLimit + 1 },
			wantErr: "limit",
		},
		{
			name:    "zero workers",
			mutate:  func(in *contract.ConfigRawInput) { in.Workers = 0 },
			wantErr: "workers",
		},
		{
			name:    "unknown output mode",
			mutate:  func(in *contract.ConfigRawInput) { in.Output = "xml" },
			wantErr: "invalid output format",
		},
		{
			name:    "unknown graph backend",
			mutate:  func(in *contract.ConfigRawInput) { in.GraphBackend = "dgraph" },
			wantErr: "invalid graph backend",
		},
		{
			name:    "neo4j without uri",
			mutate:  func(in *contract.ConfigRawInput) { in.GraphBackend = "neo4j" },
			wantErr: "graph-uri is required",
		},
		{
			name:    "unknown audit backend",
			mutate:  func(in *contract.ConfigRawInput) { in.AuditBackend = "oracle" },
			wantErr: "invalid audit backend",
		},
		{
			name:    "unknown oracle backend",
			mutate:  func(in *contract.ConfigRawInput) { in.OracleBackend = "dice" },
			wantErr: "invalid oracle backend",
		},
		{
			name:    "llm oracle without endpoint",
			mutate:  func(in *contract.ConfigRawInput) { in.OracleBackend = "llm" },
			wantErr: "oracle-endpoint and oracle-model are required",
		},
		{
			name:    "bad oracle timeout",
			mutate:  func(in *contract.ConfigRawInput) { in.OracleTimeout = "soon" },
			wantErr: "invalid oracle-timeout",
		},
		{
			name:    "negative oracle timeout",
			mutate:  func(in *contract.ConfigRawInput) { in.OracleTimeout = "-5s" },
			wantErr: "must be positive",
		},
		{
			name:    "bad color value",
			mutate:  func(in *contract.ConfigRawInput) { in.Color = "maybe" },
			wantErr: "invalid --color",
		},
		{
			name:    "tier limits outside managed range",
			mutate:  func(in *contract.ConfigRawInput) { in.TierLimits = "4:2" },
			wantErr: "outside managed range",
		},
		{
			name:    "tier limits zero capacity",
			mutate:  func(in *contract.ConfigRawInput) { in.TierLimits = "3:0" },
			wantErr: "greater than 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(in)
			err := contract.ProcessAndValidate(&contract.Config{}, in)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestProcessAndValidateTierLimitOverride(t *testing.T) {
	in := validInput()
	in.TierLimits = "3:2, 2:5"
	cfg := &contract.Config{}
	require.NoError(t, contract.ProcessAndValidate(cfg, in))

	// Overrides merge over the defaults; unnamed tiers keep theirs.
	assert.Equal(t, 2, cfg.TierLimit(schema.TierPremium))
	assert.Equal(t, 5, cfg.TierLimit(schema.TierStandard))
	assert.Equal(t, schema.DefaultTierLimits()[schema.TierFiller], cfg.TierLimit(schema.TierFiller))
	assert.Zero(t, cfg.TierLimit(schema.TierArchived), "Unmanaged tiers have no capacity")
}

func TestProcessAndValidateTopicID(t *testing.T) {
	in := validInput()
	in.TopicIDStr = "  us-inflation "
	cfg := &contract.Config{}
	require.NoError(t, contract.ProcessAndValidate(cfg, in))
	assert.Equal(t, "us-inflation", cfg.TopicID)
	assert.False(t, cfg.SweepAllTopics())

	in.TopicIDStr = "ALL"
	require.NoError(t, contract.ProcessAndValidate(cfg, in))
	assert.True(t, cfg.SweepAllTopics())

	in.TopicIDStr = ""
	require.NoError(t, contract.ProcessAndValidate(cfg, in))
	assert.True(t, cfg.SweepAllTopics())
}

func TestParseTierLimitsString(t *testing.T) {
	limits, err := contract.ParseTierLimitsString("3:4,2:8,1:12")
	require.NoError(t, err)
	assert.Equal(t, map[int]int{3: 4, 2: 8, 1: 12}, limits)

	limits, err = contract.ParseTierLimitsString(" 3 : 4 , ")
	require.NoError(t, err)
	assert.Equal(t, map[int]int{3: 4}, limits)

	_, err = contract.ParseTierLimitsString("3=4")
	assert.ErrorContains(t, err, "expected 'tier:max'")

	_, err = contract.ParseTierLimitsString("three:4")
	assert.ErrorContains(t, err, "invalid tier")
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		connStr string
		wantErr string
	}{
		{name: "sqlite empty ok", backend: schema.SQLiteBackend},
		{name: "none empty ok", backend: schema.NoneBackend},
		{name: "mysql valid", backend: schema.MySQLBackend, connStr: "root:pw@tcp(localhost:3306)/graphgate"},
		{name: "mysql empty", backend: schema.MySQLBackend, wantErr: "required"},
		{name: "mysql missing tcp", backend: schema.MySQLBackend, connStr: "root:pw/graphgate", wantErr: "@tcp("},
		{name: "postgres valid", backend: schema.PostgreSQLBackend, connStr: "host=localhost dbname=graphgate"},
		{name: "postgres missing host", backend: schema.PostgreSQLBackend, connStr: "dbname=graphgate", wantErr: "host="},
		{name: "postgres missing dbname", backend: schema.PostgreSQLBackend, connStr: "host=localhost", wantErr: "dbname="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := contract.ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	cfg := &contract.Config{TierLimits: map[int]int{3: 4}}
	clone := cfg.Clone()
	clone.TierLimits[3] = 99
	assert.Equal(t, 4, cfg.TierLimits[3], "Clone must not share the tier table")
}

func TestUtilityHelpers(t *testing.T) {
	t.Run("capacity labels", func(t *testing.T) {
		assert.Equal(t, contract.OverValue, contract.GetPlainCapacityLabel(5, 4))
		assert.Equal(t, contract.FullValue, contract.GetPlainCapacityLabel(4, 4))
		assert.Equal(t, contract.OkValue, contract.GetPlainCapacityLabel(3, 4))
	})

	t.Run("bool strings", func(t *testing.T) {
		for _, s := range []string{"yes", "TRUE", "1"} {
			got, err := contract.ParseBoolString(s)
			require.NoError(t, err)
			assert.True(t, got)
		}
		for _, s := range []string{"no", "False", "0"} {
			got, err := contract.ParseBoolString(s)
			require.NoError(t, err)
			assert.False(t, got)
		}
		_, err := contract.ParseBoolString("maybe")
		assert.Error(t, err)
	})

	t.Run("slugify", func(t *testing.T) {
		assert.Equal(t, "us_inflation", contract.SlugifyTopicID("US Inflation"))
		assert.Equal(t, "ecb_rate_policy", contract.SlugifyTopicID("  ECB: Rate Policy!  "))
		assert.Equal(t, "gold", contract.SlugifyTopicID("Gold"))
	})

	t.Run("truncate", func(t *testing.T) {
		assert.Equal(t, "us-in...", contract.TruncateText("us-inflation", 8))
		assert.Equal(t, "gold", contract.TruncateText("gold", 8))
	})
}
