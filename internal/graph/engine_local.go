package graph

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/matijazezelj/degrees/internal/search"
)

// LocalEngine implements GraphEngine using in-memory BFS over a Store.
type LocalEngine struct {
	store  Store
	logger *slog.Logger
}

// NewLocalEngine creates a GraphEngine that searches the store's adjacency directly.
func NewLocalEngine(store Store, logger *slog.Logger) *LocalEngine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LocalEngine{store: store, logger: logger}
}

// ShortestPath runs breadth-first search from source to target.
func (e *LocalEngine) ShortestPath(ctx context.Context, source, target string) (search.Result, error) {
	start := time.Now()
	res, err := search.ShortestPath(ctx, e.store, source, target)
	elapsed := time.Since(start)

	searchDuration.WithLabelValues("local").Observe(elapsed.Seconds())
	searchExpanded.Observe(float64(res.Expanded))
	searchTotal.WithLabelValues("local", outcome(res, err)).Inc()
	if err == nil && res.Found {
		searchDegrees.Observe(float64(res.Path.Degrees()))
	}

	e.logger.Debug("local search finished",
		"source", source, "target", target,
		"found", res.Found, "degrees", res.Path.Degrees(),
		"expanded", res.Expanded, "enqueued", res.Enqueued,
		"elapsed", elapsed, "error", err)
	return res, err
}

// Close is a no-op for the local engine (no external resources).
func (e *LocalEngine) Close() error {
	return nil
}

func outcome(res search.Result, err error) string {
	switch {
	case err == nil && res.Found:
		return "found"
	case err == nil:
		return "not_connected"
	case errors.Is(err, search.ErrUnknownPerson):
		return "unknown_person"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
