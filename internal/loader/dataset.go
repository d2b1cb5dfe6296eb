package loader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/matijazezelj/degrees/internal/graph"
	"github.com/matijazezelj/degrees/pkg/models"
)

// Dataset is the three-table record set a graph is built from.
type Dataset struct {
	People  []models.Person `yaml:"people"`
	Movies  []models.Movie  `yaml:"movies"`
	Credits []models.Credit `yaml:"stars"`
}

// Build indexes the dataset into a read-only graph store.
func (d *Dataset) Build() *graph.MemoryStore {
	return graph.Build(d.People, d.Movies, d.Credits)
}

// Load reads a dataset from source: a directory of CSV files, a .yaml/.yml
// file, or a .db/.sqlite dataset created by Import.
func Load(ctx context.Context, source string, logger *slog.Logger) (*Dataset, error) {
	info, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}

	var ds *Dataset
	kind := sourceKind(source, info.IsDir())
	switch kind {
	case "csv":
		ds, err = LoadCSV(source, logger)
	case "yaml":
		ds, err = LoadYAML(source)
	case "sqlite":
		ds, err = loadSQLite(ctx, source)
	default:
		return nil, fmt.Errorf("unrecognized dataset %q (use a CSV directory, .yaml or .db file)", source)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("dataset loaded", "source", source, "format", kind,
		"people", len(ds.People), "movies", len(ds.Movies), "stars", len(ds.Credits))
	return ds, nil
}

func sourceKind(path string, isDir bool) string {
	if isDir {
		return "csv"
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".db", ".sqlite", ".sqlite3":
		return "sqlite"
	default:
		return ""
	}
}

func loadSQLite(ctx context.Context, path string) (*Dataset, error) {
	db, err := OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	defer db.Close() //nolint:errcheck // best-effort cleanup
	return db.Load(ctx)
}
