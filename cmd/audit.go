package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/marketloom/graphgate/internal/audit"
	"github.com/marketloom/graphgate/internal/contract"
	"github.com/marketloom/graphgate/schema"
)

// auditSetup loads minimal configuration needed for audit operations.
// This is used by commands that need audit access without full shared setup.
func auditSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get audit-related config values
	backendStr := viper.GetString("audit-backend")
	connStr := viper.GetString("audit-db-connect")

	// Handle empty backend as NoneBackend
	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.NoneBackend
	} else {
		backend = schema.DatabaseBackend(backendStr)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.AuditBackend = backend
	cfg.AuditDBConnect = connStr

	// Get output-related config values (used by export and events commands)
	cfg.Output = schema.OutputMode(viper.GetString("output"))
	cfg.OutputFile = viper.GetString("output-file")
	cfg.ResultLimit = viper.GetInt("limit")
	cfg.Width = viper.GetInt("width")
	colors, err := contract.ParseBoolString(viper.GetString("color"))
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// Initialize the audit store with the loaded config
	if err := audit.InitAudit(cfg); err != nil {
		return fmt.Errorf("failed to initialize audit store: %w", err)
	}

	return nil
}

// auditSetupWrapper wraps auditSetup to provide PreRunE for audit commands.
func auditSetupWrapper(_ *cobra.Command, _ []string) error {
	return auditSetup()
}

// auditMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize the store or create
// tables, allowing migrations to run on a fresh database.
func auditMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get audit-related config values
	backendStr := viper.GetString("audit-backend")
	connStr := viper.GetString("audit-db-connect")

	// Handle empty backend as NoneBackend
	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.NoneBackend
	} else {
		backend = schema.DatabaseBackend(backendStr)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetAuditDBFilePath()
	}

	cfg.AuditBackend = backend
	cfg.AuditDBConnect = connStr

	return nil
}

// auditMigrateSetupWrapper wraps auditMigrateSetup to provide PreRunE for migrate command.
func auditMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return auditMigrateSetup()
}

// auditCmd focused on audit trail management.
//
// Note: Audit subcommands use minimal initialization (auditSetup) instead of
// the full sharedSetup used by graph commands. This avoids graph backend
// connections and complex config processing for simple audit operations.
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Manage the audit trail of admissions, evictions and sweeps",
	Long: `Manage the audit trail the capacity engine writes as it works.

Every admission, rejection, downgrade, archive and cleanup sweep is
recorded, along with before/after bucket snapshots per sweep. This makes
eviction decisions reviewable after the fact and enables offline analysis
of capacity pressure over time.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show audit store statistics
  events  - List recent audit events
  export  - Export data to Parquet for analytics
  clear   - Remove all audit data
  migrate - Run database schema migrations

Examples:
  # Check audit trail status
  graphgate audit status

  # Review the latest evictions
  graphgate audit events --event article_archived`,
}

// auditStatusCmd shows audit store status.
var auditStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display audit store statistics and connection details",
	Long: `Show detailed information about the audit trail store.

Displays:
- Backend type and connection status
- Total number of recorded events and sweeps
- Last event and oldest sweep timestamps
- Database table sizes

Use this to:
- Verify audit tracking is enabled and working
- Monitor data accumulation over time
- Estimate storage requirements

Examples:
  # Check audit store status
  graphgate audit status`,
	PreRunE: auditSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := audit.Manager.GetAuditStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get audit status", err)
		}
		audit.PrintAuditStatus(status)
	},
}

// auditEventsCmd lists recent audit events.
var auditEventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List recent audit events, newest first",
	Long: `List recorded audit events with optional filtering.

Each row shows when the event happened, which topic and article it touched
and a short detail message. Events cover topic admissions and evictions,
article admissions, downgrades, archives and sweep lifecycle markers.

Examples:
  # Latest events across the graph
  graphgate audit events

  # Only archive decisions for one topic
  graphgate audit events --event article_archived --topic us-inflation

  # Everything since a point in time
  graphgate audit events --since 2026-08-01T00:00:00Z --limit 100`,
	PreRunE: auditSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		filter := schema.EventFilter{
			Event:   viper.GetString("event"),
			TopicID: viper.GetString("topic"),
			Limit:   cfg.ResultLimit,
		}
		if since := viper.GetString("since"); since != "" {
			t, err := time.Parse(contract.DateTimeFormat, since)
			if err != nil {
				contract.LogFatal("Invalid --since value", err)
			}
			filter.Since = t
		}

		events, err := audit.Manager.GetAuditStore().ListEvents(filter)
		if err != nil {
			contract.LogFatal("Failed to list audit events", err)
		}
		if err := ow.WriteEvents(events, cfg); err != nil {
			contract.LogFatal("Cannot write audit events", err)
		}
	},
}

// auditClearCmd clears the audit data.
var auditClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded audit data",
	Long: `Delete all stored audit events, sweep runs and bucket snapshots.

WARNING: This action cannot be undone. Consider exporting data first.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the audit tables

Examples:
  # Export before clearing
  graphgate audit export --output-file backup
  graphgate audit clear`,
	PreRunE: auditSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := audit.ClearAudit(cfg); err != nil {
			contract.LogFatal("Failed to clear audit data", err)
		}
		fmt.Println("Audit data cleared successfully.")
	},
}

// auditExportCmd exports audit data to Parquet files.
var auditExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export audit data to Parquet for BI tools and analytics",
	Long: `Export all stored audit data to Parquet format for use with analytics tools.

Exports three datasets:
- Audit events - every admission, eviction and downgrade decision
- Sweep runs - metadata about each cleanup sweep execution
- Bucket snapshots - before/after bucket occupancy per sweep

Parquet format enables:
- Fast querying with DuckDB, Apache Spark, pandas
- Efficient storage with columnar compression
- Direct import into BI tools (Tableau, Metabase, etc.)

Requires: --output-file parameter

Examples:
  # Export all data
  graphgate audit export --output-file graphgate-data

  # Use with DuckDB for analysis
  graphgate audit export --output-file data
  duckdb -c "SELECT * FROM read_parquet('data.audit_events.parquet') LIMIT 10"`,
	PreRunE: auditSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := audit.ExecuteAuditExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export audit data", err)
		}
	},
}

// auditMigrateCmd runs database migrations for the audit store.
var auditMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the audit trail store.

Migrations allow:
- Upgrading to new schema versions when graphgate is updated
- Safely modifying database structure without data loss
- Rolling back schema changes if needed

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  graphgate audit migrate

  # Migrate to specific version
  graphgate audit migrate --target-version 2

  # Rollback to initial state
  graphgate audit migrate --target-version 0`,
	PreRunE: auditMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := audit.RunMigrations(cfg, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
