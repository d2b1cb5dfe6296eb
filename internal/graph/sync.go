package graph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/matijazezelj/degrees/pkg/models"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const syncBatchSize = 500

// SyncStats reports what SyncToMemgraph wrote.
type SyncStats struct {
	People  int
	Movies  int
	Credits int
}

// SyncToMemgraph performs a full synchronization of store into Memgraph.
// It clears all Memgraph data and re-inserts every person, movie and credit.
func SyncToMemgraph(ctx context.Context, store Store, driver neo4j.DriverWithContext, logger *slog.Logger) (SyncStats, error) {
	session := driverSessions(driver)(ctx)
	defer session.Close(ctx) //nolint:errcheck // best-effort cleanup
	return syncGraph(ctx, store, session, logger)
}

func syncGraph(ctx context.Context, store Store, session sessionRunner, logger *slog.Logger) (SyncStats, error) {
	var stats SyncStats

	logger.Info("clearing memgraph data")
	if _, err := session.Run(ctx, "MATCH (n) DETACH DELETE n", nil); err != nil {
		return stats, fmt.Errorf("clearing memgraph: %w", err)
	}

	logger.Info("creating memgraph indexes")
	for _, cypher := range []string{
		"CREATE INDEX ON :Person(id)",
		"CREATE INDEX ON :Movie(id)",
	} {
		if _, err := session.Run(ctx, cypher, nil); err != nil {
			logger.Warn("creating index (may already exist)", "error", err)
		}
	}

	people := store.People()
	logger.Info("syncing people to memgraph", "count", len(people))
	err := runBatches(ctx, session, "people", len(people), `
		UNWIND $rows AS r
		CREATE (:Person {id: r.id, name: r.name, birth: r.birth})
	`, func(i int) map[string]any { return personToParams(people[i]) })
	if err != nil {
		return stats, err
	}
	stats.People = len(people)

	movies := store.Movies()
	logger.Info("syncing movies to memgraph", "count", len(movies))
	err = runBatches(ctx, session, "movies", len(movies), `
		UNWIND $rows AS r
		CREATE (:Movie {id: r.id, title: r.title, year: r.year})
	`, func(i int) map[string]any { return movieToParams(movies[i]) })
	if err != nil {
		return stats, err
	}
	stats.Movies = len(movies)

	credits := store.Credits()
	logger.Info("syncing credits to memgraph", "count", len(credits))
	err = runBatches(ctx, session, "credits", len(credits), `
		UNWIND $rows AS r
		MATCH (p:Person {id: r.personID})
		MATCH (m:Movie {id: r.movieID})
		CREATE (p)-[:STARRED_IN]->(m)
	`, func(i int) map[string]any { return creditToParams(credits[i]) })
	if err != nil {
		return stats, err
	}
	stats.Credits = len(credits)

	logger.Info("memgraph sync complete", "people", stats.People, "movies", stats.Movies, "credits", stats.Credits)
	return stats, nil
}

func runBatches(ctx context.Context, session sessionRunner, what string, n int, cypher string, row func(int) map[string]any) error {
	for i := 0; i < n; i += syncBatchSize {
		end := min(i+syncBatchSize, n)
		rows := make([]map[string]any, 0, end-i)
		for j := i; j < end; j++ {
			rows = append(rows, row(j))
		}
		if _, err := session.Run(ctx, cypher, map[string]any{"rows": rows}); err != nil {
			return fmt.Errorf("syncing %s batch %d-%d: %w", what, i, end, err)
		}
	}
	return nil
}

func personToParams(p models.Person) map[string]any {
	return map[string]any{"id": p.ID, "name": p.Name, "birth": int64(p.Birth)}
}

func movieToParams(m models.Movie) map[string]any {
	return map[string]any{"id": m.ID, "title": m.Title, "year": int64(m.Year)}
}

func creditToParams(c models.Credit) map[string]any {
	return map[string]any{"personID": c.PersonID, "movieID": c.MovieID}
}
