package audit

import (
	"errors"
	"fmt"

	"github.com/marketloom/graphgate/internal/parquet"
)

// ExecuteAuditExport exports all audit data to Parquet files.
func ExecuteAuditExport(outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := Manager.GetAuditStore()
	if store == nil {
		return errors.New("audit store is not initialized")
	}

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get audit status: %w", err)
	}

	if status.TotalEvents == 0 && status.TotalSweeps == 0 {
		return errors.New("no audit data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total events: %d\n", status.TotalEvents)
	fmt.Printf("Total sweep runs: %d\n", status.TotalSweeps)

	events, err := store.GetAllEvents()
	if err != nil {
		return fmt.Errorf("failed to retrieve audit events: %w", err)
	}

	sweepRuns, err := store.GetAllSweepRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve sweep runs: %w", err)
	}

	snapshots, err := store.GetAllSnapshots()
	if err != nil {
		return fmt.Errorf("failed to retrieve bucket snapshots: %w", err)
	}

	// Convert to Parquet format
	parquetEvents := parquet.ConvertAuditEventRecords(events)
	parquetSweepRuns := parquet.ConvertSweepRunRecords(sweepRuns)
	parquetSnapshots := parquet.ConvertBucketSnapshotRecords(snapshots)

	eventsFile := outputFile + ".audit_events.parquet"
	if err := parquet.WriteAuditEventsParquet(parquetEvents, eventsFile); err != nil {
		return fmt.Errorf("failed to write audit events: %w", err)
	}
	fmt.Printf("Exported %d events to: %s\n", len(parquetEvents), eventsFile)

	sweepRunsFile := outputFile + ".sweep_runs.parquet"
	if err := parquet.WriteSweepRunsParquet(parquetSweepRuns, sweepRunsFile); err != nil {
		return fmt.Errorf("failed to write sweep runs: %w", err)
	}
	fmt.Printf("Exported %d sweep runs to: %s\n", len(parquetSweepRuns), sweepRunsFile)

	snapshotsFile := outputFile + ".bucket_snapshots.parquet"
	if err := parquet.WriteBucketSnapshotsParquet(parquetSnapshots, snapshotsFile); err != nil {
		return fmt.Errorf("failed to write bucket snapshots: %w", err)
	}
	fmt.Printf("Exported %d snapshot cells to: %s\n", len(parquetSnapshots), snapshotsFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - Apache Spark")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}
