package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/marketloom/graphgate/internal/contract"
	"github.com/marketloom/graphgate/schema"
)

// cleanupCmd sweeps over-capacity buckets back under their limits.
var cleanupCmd = &cobra.Command{
	Use:   "cleanup [topic-id]",
	Short: "Sweep over-capacity buckets back under their limits",
	Long: `Run the capacity cleanup sweeper for one topic or the whole graph.

Each sweep checks the cross-product of (timeframe, tier) and (timeframe,
perspective, tier) buckets, asks the decision oracle to name the weakest
occupant of every over-capacity bucket, and downgrades it one tier. Passes
repeat until the topic converges (no bucket over capacity) or the pass
ceiling is reached. Omitting the topic, or passing the literal 'all',
sweeps every topic concurrently.

Use cases:
- Scheduled hygiene runs to keep buckets within budget
- Recovering after a bulk ingest or a tier-limits change
- CI-style convergence gates with --strict

Examples:
  # Sweep one topic
  graphgate cleanup us-inflation

  # Sweep the whole graph with 8 workers
  graphgate cleanup all --workers 8

  # Report only, change nothing
  graphgate cleanup us-inflation --dry-run

  # Fail the pipeline when a topic cannot converge
  graphgate cleanup all --strict`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		opts := schema.SweepOptions{
			DryRun: cfg.DryRun,
			Test:   cfg.Test,
		}

		start := time.Now()
		var reports []*schema.SweepReport
		if cfg.SweepAllTopics() {
			all, err := engine.RunCapacityCleanupAll(rootCtx, opts)
			if err != nil {
				contract.LogFatal("Cleanup sweep failed", err)
			}
			reports = all
		} else {
			report, err := engine.RunCapacityCleanup(rootCtx, cfg.TopicID, opts)
			if err != nil {
				contract.LogFatal("Cleanup sweep failed", err)
			}
			reports = []*schema.SweepReport{report}
		}

		if err := ow.WriteSweeps(reports, cfg, time.Since(start)); err != nil {
			contract.LogFatal("Cannot write sweep results", err)
		}

		if cfg.Strict {
			for _, r := range reports {
				if r != nil && !r.Converged {
					contract.LogFatal("Convergence gate failed", fmt.Errorf("topic %s still over capacity after %d passes", r.TopicID, len(r.Passes)))
				}
			}
		}
	},
}
