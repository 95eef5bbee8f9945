package audit

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver

	"github.com/marketloom/graphgate/internal/contract"
	"github.com/marketloom/graphgate/schema"
)

// Table names for audit tracking.
const (
	eventsTable    = "graphgate_audit_events"
	sweepRunsTable = "graphgate_sweep_runs"
	snapshotsTable = "graphgate_bucket_snapshots"
)

// AuditStoreImpl implements the AuditStore interface over SQLite, MySQL or
// PostgreSQL.
type AuditStoreImpl struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
	connStr    string
}

var _ contract.AuditStore = &AuditStoreImpl{} // Compile-time check

// NewAuditStore creates a new AuditStore with the specified backend.
func NewAuditStore(backend schema.DatabaseBackend, connStr string) (contract.AuditStore, error) {
	var db *sql.DB
	var err error
	var driverName string

	switch backend {
	case schema.SQLiteBackend:
		driverName = "sqlite"
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetAuditDBFilePath()
		}
		db, err = sql.Open(driverName, dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		driverName = "mysql"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		driverName = "pgx"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	case schema.NoneBackend:
		// Return a no-op store for disabled tracking
		return &AuditStoreImpl{
			db:         nil,
			backend:    backend,
			driverName: "",
		}, nil

	default:
		return nil, fmt.Errorf("unsupported audit backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}

	// Ping to verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w. Verify the server is running and connection parameters are valid", backend, err)
	}

	// Create the table schemas
	if err := createAuditTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create audit tables: %w", err)
	}

	return &AuditStoreImpl{
		db:         db,
		backend:    backend,
		driverName: driverName,
		connStr:    connStr,
	}, nil
}

// validateTableName ensures the name is a safe SQL identifier.
func validateTableName(name string) error {
	if name == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	matched, err := regexp.MatchString(`^[a-zA-Z_][a-zA-Z0-9_]*$`, name)
	if err != nil {
		return fmt.Errorf("error validating table name: %w", err)
	}
	if !matched {
		return fmt.Errorf("invalid table name: %s (must match pattern ^[a-zA-Z_][a-zA-Z0-9_]*$)", name)
	}
	return nil
}

// quoteTableName returns the properly quoted table name for the given backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", name)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("\"%s\"", name)
	}
}

// createAuditTables creates the audit tracking tables.
func createAuditTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{eventsTable, getCreateEventsQuery(backend)},
		{sweepRunsTable, getCreateSweepRunsQuery(backend)},
		{snapshotsTable, getCreateSnapshotsQuery(backend)},
	}

	for _, table := range tables {
		if err := validateTableName(table.name); err != nil {
			return err
		}
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}

	return nil
}

func getCreateEventsQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(eventsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				event_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				event_time DATETIME(6) NOT NULL,
				event VARCHAR(100) NOT NULL,
				topic_id VARCHAR(255),
				article_id VARCHAR(255),
				detail TEXT
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				event_id BIGSERIAL PRIMARY KEY,
				event_time TIMESTAMPTZ NOT NULL,
				event TEXT NOT NULL,
				topic_id TEXT,
				article_id TEXT,
				detail TEXT
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				event_id INTEGER PRIMARY KEY AUTOINCREMENT,
				event_time TEXT NOT NULL,
				event TEXT NOT NULL,
				topic_id TEXT,
				article_id TEXT,
				detail TEXT
			);
		`, quoted)
	}
}

func getCreateSweepRunsQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(sweepRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				sweep_id VARCHAR(64) PRIMARY KEY,
				topic_id VARCHAR(255) NOT NULL,
				started_at DATETIME(6) NOT NULL,
				finished_at DATETIME(6),
				passes INT NOT NULL DEFAULT 0,
				converged BOOLEAN NOT NULL DEFAULT FALSE,
				checks_run INT NOT NULL DEFAULT 0,
				actions_applied INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				sweep_id TEXT PRIMARY KEY,
				topic_id TEXT NOT NULL,
				started_at TIMESTAMPTZ NOT NULL,
				finished_at TIMESTAMPTZ,
				passes INT NOT NULL DEFAULT 0,
				converged BOOLEAN NOT NULL DEFAULT FALSE,
				checks_run INT NOT NULL DEFAULT 0,
				actions_applied INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				sweep_id TEXT PRIMARY KEY,
				topic_id TEXT NOT NULL,
				started_at TEXT NOT NULL,
				finished_at TEXT,
				passes INTEGER NOT NULL DEFAULT 0,
				converged INTEGER NOT NULL DEFAULT 0,
				checks_run INTEGER NOT NULL DEFAULT 0,
				actions_applied INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quoted)
	}
}

func getCreateSnapshotsQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(snapshotsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				sweep_id VARCHAR(64) NOT NULL,
				phase VARCHAR(10) NOT NULL,
				topic_id VARCHAR(255) NOT NULL,
				timeframe VARCHAR(20) NOT NULL,
				perspective VARCHAR(20),
				tier INT NOT NULL,
				article_count INT NOT NULL,
				max_allowed INT NOT NULL,
				snap_time DATETIME(6) NOT NULL
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				sweep_id TEXT NOT NULL,
				phase TEXT NOT NULL,
				topic_id TEXT NOT NULL,
				timeframe TEXT NOT NULL,
				perspective TEXT,
				tier INT NOT NULL,
				article_count INT NOT NULL,
				max_allowed INT NOT NULL,
				snap_time TIMESTAMPTZ NOT NULL
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				sweep_id TEXT NOT NULL,
				phase TEXT NOT NULL,
				topic_id TEXT NOT NULL,
				timeframe TEXT NOT NULL,
				perspective TEXT,
				tier INTEGER NOT NULL,
				article_count INTEGER NOT NULL,
				max_allowed INTEGER NOT NULL,
				snap_time TEXT NOT NULL
			);
		`, quoted)
	}
}

// placeholderFormat returns the squirrel placeholder style for the backend.
func (as *AuditStoreImpl) placeholderFormat() sq.PlaceholderFormat {
	if as.backend == schema.PostgreSQLBackend {
		return sq.Dollar
	}
	return sq.Question
}

// RecordEvent stores one audit event row.
func (as *AuditStoreImpl) RecordEvent(event string, topicID, articleID *string, detail string) error {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil
	}

	query, args, err := sq.Insert(quoteTableName(eventsTable, as.backend)).
		Columns("event_time", "event", "topic_id", "article_id", "detail").
		Values(formatTime(time.Now().UTC(), as.backend), event, topicID, articleID, detail).
		PlaceholderFormat(as.placeholderFormat()).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build event insert: %w", err)
	}

	if _, err := as.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}

// BeginSweep creates a sweep run row and stores its config parameters.
func (as *AuditStoreImpl) BeginSweep(sweepID, topicID string, startedAt time.Time, configParams map[string]any) error {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return fmt.Errorf("failed to marshal config params: %w", err)
	}

	query, args, err := sq.Insert(quoteTableName(sweepRunsTable, as.backend)).
		Columns("sweep_id", "topic_id", "started_at", "config_params").
		Values(sweepID, topicID, formatTime(startedAt, as.backend), string(configJSON)).
		PlaceholderFormat(as.placeholderFormat()).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sweep insert: %w", err)
	}

	if _, err := as.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to insert sweep run: %w", err)
	}
	return nil
}

// EndSweep updates the sweep run with completion data.
func (as *AuditStoreImpl) EndSweep(sweepID string, finishedAt time.Time, passes, checksRun, actionsApplied int, converged bool) error {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil
	}

	query, args, err := sq.Update(quoteTableName(sweepRunsTable, as.backend)).
		Set("finished_at", formatTime(finishedAt, as.backend)).
		Set("passes", passes).
		Set("checks_run", checksRun).
		Set("actions_applied", actionsApplied).
		Set("converged", converged).
		Where(sq.Eq{"sweep_id": sweepID}).
		PlaceholderFormat(as.placeholderFormat()).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sweep update: %w", err)
	}

	if _, err := as.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to update sweep run %s: %w", sweepID, err)
	}
	return nil
}

// RecordSnapshot stores every cell of a before/after distribution.
func (as *AuditStoreImpl) RecordSnapshot(sweepID, phase string, dist *schema.Distribution) error {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil
	}
	if dist == nil {
		return nil
	}

	builder := sq.Insert(quoteTableName(snapshotsTable, as.backend)).
		Columns("sweep_id", "phase", "topic_id", "timeframe", "perspective",
			"tier", "article_count", "max_allowed", "snap_time").
		PlaceholderFormat(as.placeholderFormat())

	snapTime := formatTime(dist.TakenAt, as.backend)
	for _, cell := range dist.Overall {
		builder = builder.Values(sweepID, phase, dist.TopicID, string(cell.Timeframe), nil,
			cell.Tier, cell.Count, cell.Max, snapTime)
	}
	for _, cell := range dist.Perspective {
		builder = builder.Values(sweepID, phase, dist.TopicID, string(cell.Timeframe), string(cell.Perspective),
			cell.Tier, cell.Count, cell.Max, snapTime)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build snapshot insert: %w", err)
	}
	if _, err := as.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to insert snapshot cells: %w", err)
	}
	return nil
}

// ListEvents returns events matching the filter, newest first.
func (as *AuditStoreImpl) ListEvents(filter schema.EventFilter) ([]schema.AuditEventRecord, error) {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	builder := sq.Select("event_id", "event_time", "event", "topic_id", "article_id", "detail").
		From(quoteTableName(eventsTable, as.backend)).
		OrderBy("event_id DESC").
		PlaceholderFormat(as.placeholderFormat())

	if filter.Event != "" {
		builder = builder.Where(sq.Eq{"event": filter.Event})
	}
	if filter.TopicID != "" {
		builder = builder.Where(sq.Eq{"topic_id": filter.TopicID})
	}
	if !filter.Since.IsZero() {
		builder = builder.Where(sq.GtOrEq{"event_time": formatTime(filter.Since, as.backend)})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build event query: %w", err)
	}

	rows, err := as.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return as.scanEvents(rows)
}

// GetAllEvents returns every event row for export.
func (as *AuditStoreImpl) GetAllEvents() ([]schema.AuditEventRecord, error) {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT event_id, event_time, event, topic_id, article_id, detail FROM %s ORDER BY event_id",
		quoteTableName(eventsTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return as.scanEvents(rows)
}

func (as *AuditStoreImpl) scanEvents(rows *sql.Rows) ([]schema.AuditEventRecord, error) {
	var results []schema.AuditEventRecord

	for rows.Next() {
		var record schema.AuditEventRecord

		switch as.backend {
		case schema.SQLiteBackend:
			var eventTimeStr string
			if err := rows.Scan(&record.EventID, &eventTimeStr, &record.Event,
				&record.TopicID, &record.ArticleID, &record.Detail); err != nil {
				return nil, fmt.Errorf("failed to scan audit event: %w", err)
			}
			eventTime, err := time.Parse(time.RFC3339Nano, eventTimeStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse event_time: %w", err)
			}
			record.EventTime = eventTime
		default: // MySQL and PostgreSQL store as native datetime
			if err := rows.Scan(&record.EventID, &record.EventTime, &record.Event,
				&record.TopicID, &record.ArticleID, &record.Detail); err != nil {
				return nil, fmt.Errorf("failed to scan audit event: %w", err)
			}
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit events: %w", err)
	}
	return results, nil
}

// GetAllSweepRuns returns every sweep run row for export.
func (as *AuditStoreImpl) GetAllSweepRuns() ([]schema.SweepRunRecord, error) {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT sweep_id, topic_id, started_at, finished_at, passes, converged,
    checks_run, actions_applied, config_params FROM %s ORDER BY started_at`,
		quoteTableName(sweepRunsTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sweep runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.SweepRunRecord

	for rows.Next() {
		var record schema.SweepRunRecord

		switch as.backend {
		case schema.SQLiteBackend:
			var startedAtStr string
			var finishedAtStr *string
			if err := rows.Scan(&record.SweepID, &record.TopicID, &startedAtStr, &finishedAtStr,
				&record.Passes, &record.Converged, &record.ChecksRun, &record.ActionsApplied,
				&record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan sweep run: %w", err)
			}
			startedAt, err := time.Parse(time.RFC3339Nano, startedAtStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse started_at: %w", err)
			}
			record.StartedAt = startedAt
			if finishedAtStr != nil {
				finishedAt, err := time.Parse(time.RFC3339Nano, *finishedAtStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse finished_at: %w", err)
				}
				record.FinishedAt = &finishedAt
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.SweepID, &record.TopicID, &record.StartedAt, &record.FinishedAt,
				&record.Passes, &record.Converged, &record.ChecksRun, &record.ActionsApplied,
				&record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan sweep run: %w", err)
			}
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sweep runs: %w", err)
	}
	return results, nil
}

// GetAllSnapshots returns every snapshot row for export.
func (as *AuditStoreImpl) GetAllSnapshots() ([]schema.BucketSnapshotRecord, error) {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT sweep_id, phase, topic_id, timeframe, perspective, tier,
    article_count, max_allowed, snap_time FROM %s ORDER BY snap_time, sweep_id`,
		quoteTableName(snapshotsTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.BucketSnapshotRecord

	for rows.Next() {
		var record schema.BucketSnapshotRecord

		switch as.backend {
		case schema.SQLiteBackend:
			var snapTimeStr string
			if err := rows.Scan(&record.SweepID, &record.Phase, &record.TopicID, &record.Timeframe,
				&record.Perspective, &record.Tier, &record.ArticleCount, &record.MaxAllowed,
				&snapTimeStr); err != nil {
				return nil, fmt.Errorf("failed to scan snapshot: %w", err)
			}
			snapTime, err := time.Parse(time.RFC3339Nano, snapTimeStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse snap_time: %w", err)
			}
			record.SnapTime = snapTime
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.SweepID, &record.Phase, &record.TopicID, &record.Timeframe,
				&record.Perspective, &record.Tier, &record.ArticleCount, &record.MaxAllowed,
				&record.SnapTime); err != nil {
				return nil, fmt.Errorf("failed to scan snapshot: %w", err)
			}
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}
	return results, nil
}

// Close closes the underlying connection.
func (as *AuditStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

// GetStatus returns status information about the audit store.
func (as *AuditStoreImpl) GetStatus() (schema.AuditStatus, error) {
	status := schema.AuditStatus{
		Backend:    string(as.backend),
		Connected:  as.db != nil,
		TableSizes: make(map[string]int64),
	}

	if as.backend == schema.NoneBackend || as.db == nil {
		return status, nil
	}

	// Get total events
	eventsQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(eventsTable, as.backend))
	row := as.db.QueryRow(eventsQuery)
	if err := row.Scan(&status.TotalEvents); err != nil {
		return status, fmt.Errorf("failed to get total events: %w", err)
	}

	if status.TotalEvents > 0 {
		lastQuery := fmt.Sprintf("SELECT event_time FROM %s ORDER BY event_id DESC LIMIT 1",
			quoteTableName(eventsTable, as.backend))
		row = as.db.QueryRow(lastQuery)

		switch as.backend {
		case schema.SQLiteBackend:
			var lastTimeStr string
			if err := row.Scan(&lastTimeStr); err != nil {
				return status, fmt.Errorf("failed to get last event time: %w", err)
			}
			lastTime, err := time.Parse(time.RFC3339Nano, lastTimeStr)
			if err != nil {
				return status, fmt.Errorf("failed to parse last event time: %w", err)
			}
			status.LastEventTime = lastTime
		default: // MySQL and PostgreSQL store as native datetime
			if err := row.Scan(&status.LastEventTime); err != nil {
				return status, fmt.Errorf("failed to get last event time: %w", err)
			}
		}
	}

	// Get total sweeps
	sweepsQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(sweepRunsTable, as.backend))
	row = as.db.QueryRow(sweepsQuery)
	if err := row.Scan(&status.TotalSweeps); err != nil {
		return status, fmt.Errorf("failed to get total sweeps: %w", err)
	}

	if status.TotalSweeps > 0 {
		lastSweepQuery := fmt.Sprintf("SELECT sweep_id FROM %s ORDER BY started_at DESC LIMIT 1",
			quoteTableName(sweepRunsTable, as.backend))
		row = as.db.QueryRow(lastSweepQuery)
		if err := row.Scan(&status.LastSweepID); err != nil {
			return status, fmt.Errorf("failed to get last sweep id: %w", err)
		}

		oldestQuery := fmt.Sprintf("SELECT started_at FROM %s ORDER BY started_at ASC LIMIT 1",
			quoteTableName(sweepRunsTable, as.backend))
		row = as.db.QueryRow(oldestQuery)

		switch as.backend {
		case schema.SQLiteBackend:
			var oldestStr string
			if err := row.Scan(&oldestStr); err != nil {
				return status, fmt.Errorf("failed to get oldest sweep time: %w", err)
			}
			oldest, err := time.Parse(time.RFC3339Nano, oldestStr)
			if err != nil {
				return status, fmt.Errorf("failed to parse oldest sweep time: %w", err)
			}
			status.OldestSweepRun = oldest
		default: // MySQL and PostgreSQL
			if err := row.Scan(&status.OldestSweepRun); err != nil {
				return status, fmt.Errorf("failed to get oldest sweep time: %w", err)
			}
		}
	}

	// Get table sizes
	tables := []string{eventsTable, sweepRunsTable, snapshotsTable}
	for _, table := range tables {
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, as.backend))
		row = as.db.QueryRow(countQuery)
		var count int64
		if err := row.Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.Format(time.RFC3339Nano)
	default:
		return t
	}
}
