package graph

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/matijazezelj/degrees/internal/search"
	"github.com/matijazezelj/degrees/pkg/models"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const shortestPathCypher = `
	MATCH (a:Person {id: $source}), (b:Person {id: $target})
	MATCH p = shortestPath((a)-[:STARRED_IN*]-(b))
	RETURN [n IN nodes(p) | n.id] AS ids
`

// MemgraphEngine implements GraphEngine using Memgraph via the Bolt protocol.
// The graph must have been mirrored with SyncToMemgraph first.
type MemgraphEngine struct {
	driver     neo4j.DriverWithContext
	newSession sessionFactory
	fallback   *LocalEngine
	logger     *slog.Logger
}

// NewMemgraphEngine creates a GraphEngine backed by Memgraph.
// Falls back to the provided LocalEngine on query failures.
func NewMemgraphEngine(uri, username, password string, fallback *LocalEngine, logger *slog.Logger) (*MemgraphEngine, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	driver, err := NewDriver(ctx, uri, username, password)
	if err != nil {
		return nil, fmt.Errorf("connecting to memgraph: %w", err)
	}

	logger.Info("memgraph engine initialized", "uri", uri)
	return &MemgraphEngine{
		driver:     driver,
		newSession: driverSessions(driver),
		fallback:   fallback,
		logger:     logger,
	}, nil
}

// Driver returns the underlying neo4j driver.
func (e *MemgraphEngine) Driver() neo4j.DriverWithContext {
	return e.driver
}

// Close closes the Memgraph driver connection.
func (e *MemgraphEngine) Close() error {
	return e.driver.Close(context.Background())
}

// ShortestPath finds the shortest co-starring chain with Cypher shortestPath.
// Id validation and the zero-degree case are answered from the local store,
// which also decides every case Memgraph reports as not connected.
func (e *MemgraphEngine) ShortestPath(ctx context.Context, source, target string) (search.Result, error) {
	store := e.fallback.store
	if !store.HasPerson(source) {
		return search.Result{}, fmt.Errorf("source %q: %w", source, search.ErrUnknownPerson)
	}
	if !store.HasPerson(target) {
		return search.Result{}, fmt.Errorf("target %q: %w", target, search.ErrUnknownPerson)
	}
	if source == target {
		return search.Result{
			Path:  models.Path{Source: source, Target: target, Steps: []models.Step{}},
			Found: true,
		}, nil
	}

	start := time.Now()
	res, err := e.queryShortestPath(ctx, source, target)
	if err != nil {
		if ctx.Err() != nil {
			return search.Result{}, fmt.Errorf("searching %s -> %s: %w", source, target, ctx.Err())
		}
		e.logger.Warn("memgraph shortest path failed, falling back", "error", err)
		fallbackTotal.Inc()
		return e.fallback.ShortestPath(ctx, source, target)
	}
	if !res.Found {
		// an unsynced or stale mirror also returns no rows
		e.logger.Debug("memgraph found no path, confirming locally", "source", source, "target", target)
		fallbackTotal.Inc()
		return e.fallback.ShortestPath(ctx, source, target)
	}

	searchDuration.WithLabelValues("memgraph").Observe(time.Since(start).Seconds())
	searchTotal.WithLabelValues("memgraph", outcome(res, nil)).Inc()
	searchDegrees.Observe(float64(res.Path.Degrees()))
	return res, nil
}

func (e *MemgraphEngine) queryShortestPath(ctx context.Context, source, target string) (search.Result, error) {
	session := e.newSession(ctx)
	defer session.Close(ctx) //nolint:errcheck // best-effort cleanup

	result, err := session.Run(ctx, shortestPathCypher, map[string]any{"source": source, "target": target})
	if err != nil {
		return search.Result{}, err
	}

	res := search.Result{Path: models.Path{Source: source, Target: target}}
	if result.Next(ctx) {
		raw, _ := result.Record().Get("ids")
		steps, err := stepsFromIDs(raw, source, target)
		if err != nil {
			return search.Result{}, err
		}
		res.Path.Steps = steps
		res.Found = true
	}
	if err := result.Err(); err != nil {
		return search.Result{}, err
	}
	return res, nil
}

// stepsFromIDs converts the alternating person, movie, person, ... id list
// of a bipartite path into steps.
func stepsFromIDs(raw any, source, target string) ([]models.Step, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected path value %T", raw)
	}
	if len(list) < 3 || len(list)%2 == 0 {
		return nil, fmt.Errorf("malformed path of length %d", len(list))
	}
	ids := make([]string, len(list))
	for i, v := range list {
		ids[i] = toString(v)
	}
	if ids[0] != source || ids[len(ids)-1] != target {
		return nil, fmt.Errorf("path %s..%s does not connect %s and %s", ids[0], ids[len(ids)-1], source, target)
	}

	steps := make([]models.Step, 0, len(ids)/2)
	for i := 1; i+1 < len(ids); i += 2 {
		steps = append(steps, models.Step{MovieID: ids[i], PersonID: ids[i+1]})
	}
	return steps, nil
}

func toString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
