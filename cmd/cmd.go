// Package cmd defines the command-line interface for graphgate.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/marketloom/graphgate/internal/contract"
	"github.com/marketloom/graphgate/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(topicCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the topic subcommands to the parent topic command
	topicCmd.AddCommand(topicAdmitCmd)
	topicCmd.AddCommand(topicListCmd)
	topicCmd.AddCommand(topicSeedCmd)

	// Add the audit subcommands to the parent audit command
	auditCmd.AddCommand(auditStatusCmd)
	auditCmd.AddCommand(auditEventsCmd)
	auditCmd.AddCommand(auditExportCmd)
	auditCmd.AddCommand(auditClearCmd)
	auditCmd.AddCommand(auditMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().Int("max-topics", contract.DefaultMaxTopics, "Maximum number of topics in the graph")
	rootCmd.PersistentFlags().Int("max-cleanup-passes", contract.DefaultMaxCleanupPasses, "Maximum check-and-remediate passes per sweep")
	rootCmd.PersistentFlags().Int("bucket-scan-window", contract.DefaultBucketScanWindow, "Newest occupants presented to the oracle per bucket")
	rootCmd.PersistentFlags().String("tier-limits", "", "Override bucket capacity per tier (format: '3:4,2:8,1:12')")
	rootCmd.PersistentFlags().String("graph-backend", string(schema.MemoryGraph), "Graph backend: neo4j or memory")
	rootCmd.PersistentFlags().String("graph-uri", "", "Neo4j connection URI (e.g., neo4j://localhost:7687)")
	rootCmd.PersistentFlags().String("graph-user", "", "Neo4j username")
	rootCmd.PersistentFlags().String("graph-password", "", "Neo4j password (prefer GRAPHGATE_GRAPH_PASSWORD)")
	rootCmd.PersistentFlags().String("graph-database", "", "Neo4j database name")
	rootCmd.PersistentFlags().String("oracle-backend", string(schema.RulesOracle), "Decision oracle: llm or rules or none")
	rootCmd.PersistentFlags().String("oracle-endpoint", "", "OpenAI-compatible chat completions URL")
	rootCmd.PersistentFlags().String("oracle-model", "", "Model name for the LLM oracle")
	rootCmd.PersistentFlags().String("oracle-api-key", "", "API key for the LLM oracle (prefer GRAPHGATE_ORACLE_API_KEY)")
	rootCmd.PersistentFlags().String("oracle-timeout", "20s", "Timeout for one oracle decision")
	rootCmd.PersistentFlags().String("audit-backend", string(schema.SQLiteBackend), "Audit backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("audit-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers for full-graph sweeps")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().Bool("strict", false, "Exit non-zero when a sweep fails to converge")
	rootCmd.PersistentFlags().Bool("test", false, "Consult the oracle but apply nothing")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of cleanupCmd to Viper
	cleanupCmd.Flags().Bool("dry-run", false, "Detect and report over-capacity buckets without remediating")
	if err := viper.BindPFlags(cleanupCmd.Flags()); err != nil {
		contract.LogFatal("Error binding cleanup flags", err)
	}

	// Bind all flags of ingestCmd to Viper
	ingestCmd.Flags().String("article-id", "", "Stable article identifier")
	ingestCmd.Flags().String("summary", "", "Article summary text")
	ingestCmd.Flags().String("source", "", "Article source name or host")
	ingestCmd.Flags().String("url", "", "Fetch the article page and extract summary text from it")
	ingestCmd.Flags().String("published", "", "Publication timestamp in ISO8601 (defaults to now)")
	ingestCmd.Flags().String("timeframe", string(schema.CurrentTimeframe), "Classification timeframe: fundamental, medium, current")
	ingestCmd.Flags().String("dominant", "", "Dominant perspective (defaults to the highest-scoring one)")
	ingestCmd.Flags().Int("risk", 0, "Risk perspective score (0-3)")
	ingestCmd.Flags().Int("opportunity", 0, "Opportunity perspective score (0-3)")
	ingestCmd.Flags().Int("trend", 0, "Trend perspective score (0-3)")
	ingestCmd.Flags().Int("catalyst", 0, "Catalyst perspective score (0-3)")
	if err := viper.BindPFlags(ingestCmd.Flags()); err != nil {
		contract.LogFatal("Error binding ingest flags", err)
	}

	// Bind all flags of topicAdmitCmd to Viper
	topicAdmitCmd.Flags().String("name", "", "Topic display name (defaults to the id)")
	topicAdmitCmd.Flags().String("category", "", "Topic category: asset, policy, geography, ...")
	topicAdmitCmd.Flags().Int("importance", 0, "Topic importance rank")
	if err := viper.BindPFlags(topicAdmitCmd.Flags()); err != nil {
		contract.LogFatal("Error binding topic admit flags", err)
	}

	// Bind all flags of topicSeedCmd to Viper
	topicSeedCmd.Flags().String("file", "", "YAML file with interest areas to seed")
	if err := viper.BindPFlags(topicSeedCmd.Flags()); err != nil {
		contract.LogFatal("Error binding topic seed flags", err)
	}

	// Bind all flags of auditEventsCmd to Viper
	auditEventsCmd.Flags().String("event", "", "Filter by event name (e.g., article_added)")
	auditEventsCmd.Flags().String("topic", "", "Filter by topic id")
	auditEventsCmd.Flags().String("since", "", "Only show events at or after this ISO8601 timestamp")
	if err := viper.BindPFlags(auditEventsCmd.Flags()); err != nil {
		contract.LogFatal("Error binding audit events flags", err)
	}

	// Bind all flags of auditMigrateCmd to Viper
	auditMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(auditMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding audit migrate flags", err)
	}
}
