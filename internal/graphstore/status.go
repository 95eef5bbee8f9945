package graphstore

import (
	"fmt"

	"github.com/marketloom/graphgate/schema"
)

// PrintGraphStatus prints graph store status information.
func PrintGraphStatus(status schema.GraphStatus) {
	fmt.Printf("Graph Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Topics: %d\n", status.TopicCount)
	fmt.Printf("Articles: %d\n", status.ArticleCount)
	fmt.Printf("Edges: %d (%d archived)\n", status.EdgeCount, status.ArchivedEdges)
}
