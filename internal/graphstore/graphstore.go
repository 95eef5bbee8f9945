package graphstore

import (
	"context"
	"fmt"

	"github.com/marketloom/graphgate/internal/contract"
	"github.com/marketloom/graphgate/schema"
)

// New builds the graph store for the configured backend.
func New(ctx context.Context, cfg *contract.Config) (contract.GraphStore, error) {
	switch cfg.GraphBackend {
	case schema.Neo4jGraph:
		return NewNeo4jStore(ctx, cfg.GraphURI, cfg.GraphUser, cfg.GraphPassword, cfg.GraphDatabase)
	case schema.MemoryGraph:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown graph backend %q", cfg.GraphBackend)
	}
}
