// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/marketloom/graphgate/internal/contract"
	"github.com/marketloom/graphgate/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteDistribution prints a capacity distribution using the configured output format.
func (ow *OutWriter) WriteDistribution(dist *schema.Distribution, cfg *contract.Config, duration time.Duration) error {
	return WriteDistributionResults(dist, cfg, duration)
}

// WriteTopics prints a topic listing using the configured output format.
func (ow *OutWriter) WriteTopics(topics []schema.Topic, cfg *contract.Config) error {
	return WriteTopicResults(topics, cfg)
}

// WriteSweeps prints cleanup sweep reports using the configured output format.
func (ow *OutWriter) WriteSweeps(reports []*schema.SweepReport, cfg *contract.Config, duration time.Duration) error {
	return WriteSweepResults(reports, cfg, duration)
}

// WriteEvents prints audit events using the configured output format.
func (ow *OutWriter) WriteEvents(events []schema.AuditEventRecord, cfg *contract.Config) error {
	return WriteEventResults(events, cfg)
}

// WriteIngest prints a single article admission outcome.
func (ow *OutWriter) WriteIngest(result *schema.IngestResult, cfg *contract.Config) error {
	return WriteIngestResult(result, cfg)
}

// WriteTopicAdmission prints a single topic admission outcome.
func (ow *OutWriter) WriteTopicAdmission(result *schema.TopicAdmissionResult, cfg *contract.Config) error {
	return WriteTopicAdmissionResult(result, cfg)
}
