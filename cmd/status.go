package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marketloom/graphgate/internal/audit"
	"github.com/marketloom/graphgate/internal/contract"
	"github.com/marketloom/graphgate/internal/graphstore"
)

// statusCmd shows graph and audit store health.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display graph and audit store status",
	Long: `Show connectivity and size information for the configured backends.

Displays:
- Graph backend type and connection status
- Topic, article and edge counts (including archived edges)
- Audit backend status, event and sweep totals

Use this to:
- Verify backends are reachable before a bulk ingest
- Monitor graph growth against the topic ceiling
- Debug connection configuration issues

Examples:
  # Check everything
  graphgate status

  # Against a live Neo4j instance
  graphgate status --graph-backend neo4j --graph-uri neo4j://localhost:7687`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		graphStatus, err := store.GetStatus(rootCtx)
		if err != nil {
			contract.LogFatal("Failed to get graph status", err)
		}
		graphstore.PrintGraphStatus(graphStatus)

		if as := audit.Manager.GetAuditStore(); as != nil {
			auditStatus, err := as.GetStatus()
			if err != nil {
				contract.LogFatal("Failed to get audit status", err)
			}
			fmt.Println()
			audit.PrintAuditStatus(auditStatus)
		}
	},
}
