// Package parquet provides data structures and functions for exporting audit
// data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/marketloom/graphgate/schema"
)

// AuditEvent represents a single admission or sweep event.
// This struct maps to the graphgate_audit_events database table.
type AuditEvent struct {
	// EventID is the unique identifier for this event
	EventID int64 `parquet:"event_id,snappy"`

	// EventTime is when the event was recorded (stored as TIMESTAMP with nanosecond precision)
	EventTime time.Time `parquet:"event_time,snappy"`

	// Event is the event name, e.g. article_added or sweep_completed
	Event string `parquet:"event,snappy"`

	// TopicID is the topic the event is scoped to (nullable)
	TopicID *string `parquet:"topic_id,optional,snappy"`

	// ArticleID is the article the event is scoped to (nullable)
	ArticleID *string `parquet:"article_id,optional,snappy"`

	// Detail is the free-form event description (nullable)
	Detail *string `parquet:"detail,optional,snappy"`
}

// SweepRun represents one capacity cleanup run over a topic.
// This struct maps to the graphgate_sweep_runs database table.
type SweepRun struct {
	// SweepID is the unique identifier for this sweep run
	SweepID string `parquet:"sweep_id,snappy"`

	// TopicID is the topic the sweep covered
	TopicID string `parquet:"topic_id,snappy"`

	// StartedAt is when the sweep began (stored as TIMESTAMP with nanosecond precision)
	StartedAt time.Time `parquet:"started_at,snappy"`

	// FinishedAt is when the sweep completed (nullable)
	FinishedAt *time.Time `parquet:"finished_at,optional,snappy"`

	// Passes is the number of check-and-remediate passes performed
	Passes int32 `parquet:"passes,snappy"`

	// Converged reports whether the final pass found no violations
	Converged bool `parquet:"converged,snappy"`

	// ChecksRun is the total number of bucket checks across all passes
	ChecksRun int32 `parquet:"checks_run,snappy"`

	// ActionsApplied is the total number of mutations applied
	ActionsApplied int32 `parquet:"actions_applied,snappy"`

	// ConfigParams contains the JSON-encoded sweep parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// BucketSnapshot represents one bucket cell of a before/after distribution.
// This struct maps to the graphgate_bucket_snapshots database table.
type BucketSnapshot struct {
	// SweepID references the parent sweep run
	SweepID string `parquet:"sweep_id,snappy"`

	// Phase is either before or after
	Phase string `parquet:"phase,snappy"`

	// TopicID is the topic the bucket belongs to
	TopicID string `parquet:"topic_id,snappy"`

	// Timeframe is the bucket timeframe
	Timeframe string `parquet:"timeframe,snappy"`

	// Perspective is the perspective dimension, empty for overall buckets (nullable)
	Perspective *string `parquet:"perspective,optional,snappy"`

	// Tier is the importance tier of the bucket
	Tier int32 `parquet:"tier,snappy"`

	// ArticleCount is the number of articles observed in the bucket
	ArticleCount int32 `parquet:"article_count,snappy"`

	// MaxAllowed is the configured capacity of the bucket
	MaxAllowed int32 `parquet:"max_allowed,snappy"`

	// SnapTime is when the snapshot was taken
	SnapTime time.Time `parquet:"snap_time,snappy"`
}

// WriteAuditEventsParquet writes a slice of AuditEvent structs to a Parquet file.
func WriteAuditEventsParquet(data []AuditEvent, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteSweepRunsParquet writes a slice of SweepRun structs to a Parquet file.
func WriteSweepRunsParquet(data []SweepRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteBucketSnapshotsParquet writes a slice of BucketSnapshot structs to a Parquet file.
func WriteBucketSnapshotsParquet(data []BucketSnapshot, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes records to a Parquet file with schema inference from
// the struct tags.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// ConvertAuditEventRecords converts schema.AuditEventRecord to AuditEvent for Parquet export.
func ConvertAuditEventRecords(records []schema.AuditEventRecord) []AuditEvent {
	result := make([]AuditEvent, len(records))
	for i, record := range records {
		result[i] = AuditEvent{
			EventID:   record.EventID,
			EventTime: record.EventTime,
			Event:     record.Event,
			TopicID:   record.TopicID,
			ArticleID: record.ArticleID,
			Detail:    record.Detail,
		}
	}
	return result
}

// ConvertSweepRunRecords converts schema.SweepRunRecord to SweepRun for Parquet export.
func ConvertSweepRunRecords(records []schema.SweepRunRecord) []SweepRun {
	result := make([]SweepRun, len(records))
	for i, record := range records {
		result[i] = SweepRun{
			SweepID:        record.SweepID,
			TopicID:        record.TopicID,
			StartedAt:      record.StartedAt,
			FinishedAt:     record.FinishedAt,
			Passes:         record.Passes,
			Converged:      record.Converged,
			ChecksRun:      record.ChecksRun,
			ActionsApplied: record.ActionsApplied,
			ConfigParams:   record.ConfigParams,
		}
	}
	return result
}

// ConvertBucketSnapshotRecords converts schema.BucketSnapshotRecord to BucketSnapshot for Parquet export.
func ConvertBucketSnapshotRecords(records []schema.BucketSnapshotRecord) []BucketSnapshot {
	result := make([]BucketSnapshot, len(records))
	for i, record := range records {
		result[i] = BucketSnapshot{
			SweepID:      record.SweepID,
			Phase:        record.Phase,
			TopicID:      record.TopicID,
			Timeframe:    record.Timeframe,
			Perspective:  record.Perspective,
			Tier:         record.Tier,
			ArticleCount: record.ArticleCount,
			MaxAllowed:   record.MaxAllowed,
			SnapTime:     record.SnapTime,
		}
	}
	return result
}
