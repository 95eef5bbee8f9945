package audit

import (
	"fmt"

	"github.com/marketloom/graphgate/schema"
)

// PrintAuditStatus prints audit store status information.
func PrintAuditStatus(status schema.AuditStatus) {
	fmt.Printf("Audit Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Total Events: %d\n", status.TotalEvents)
	if status.TotalEvents > 0 {
		fmt.Printf("Last Event: %s\n", status.LastEventTime.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("Total Sweeps: %d\n", status.TotalSweeps)
	if status.TotalSweeps > 0 {
		fmt.Printf("Last Sweep ID: %s\n", status.LastSweepID)
		fmt.Printf("Oldest Sweep: %s\n", status.OldestSweepRun.Format("2006-01-02 15:04:05"))
	}
	fmt.Println("Table Sizes:")
	for table, size := range status.TableSizes {
		fmt.Printf("  %s: %d rows\n", table, size)
	}
}
