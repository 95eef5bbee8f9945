package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/marketloom/graphgate/internal/contract"
)

// reportCmd prints the capacity distribution for one topic.
var reportCmd = &cobra.Command{
	Use:   "report [topic-id]",
	Short: "Show the capacity distribution of one topic's buckets",
	Long: `Report bucket occupancy for a single topic across every timeframe and tier.

Shows overall counts per (timeframe, tier) plus per-perspective counts per
(timeframe, perspective, tier), each against its configured limit. Buckets
use the superset rule: an edge counts in every tier bucket at or below any
of its perspective scores, so totals across tiers overlap by design.

Use this to:
- Spot over-capacity buckets before the next ingest is rejected
- Verify a cleanup sweep brought a topic back under its limits
- Feed capacity data into dashboards via --output json/csv

Examples:
  # Human-readable table
  graphgate report us-inflation

  # Machine-readable export
  graphgate report us-inflation --output json --output-file report.json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		start := time.Now()
		dist, err := engine.GetDistribution(rootCtx, cfg.TopicID)
		if err != nil {
			contract.LogFatal("Cannot build capacity report", err)
		}
		if err := ow.WriteDistribution(dist, cfg, time.Since(start)); err != nil {
			contract.LogFatal("Cannot write capacity report", err)
		}
	},
}
