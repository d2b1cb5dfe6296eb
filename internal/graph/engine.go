package graph

import (
	"context"

	"github.com/matijazezelj/degrees/internal/search"
)

// GraphEngine abstracts shortest-path queries.
// Implementations may use in-memory BFS (LocalEngine) or
// a native graph database like Memgraph (MemgraphEngine).
type GraphEngine interface {
	// ShortestPath returns a minimum-length co-starring chain between two
	// person ids. A disconnected pair is reported with Found == false,
	// not as an error.
	ShortestPath(ctx context.Context, source, target string) (search.Result, error)

	// Close releases any resources held by the engine.
	Close() error
}
