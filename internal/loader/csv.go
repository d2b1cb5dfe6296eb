package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/matijazezelj/degrees/pkg/models"
	"golang.org/x/sync/errgroup"
)

// CSV file names inside a dataset directory.
const (
	PeopleFile = "people.csv"
	MoviesFile = "movies.csv"
	StarsFile  = "stars.csv"
)

// LoadCSV reads people.csv, movies.csv and stars.csv from dir. Columns are
// located by header name; rows missing a required column are skipped. The
// three files are parsed concurrently.
func LoadCSV(dir string, logger *slog.Logger) (*Dataset, error) {
	ds := &Dataset{}

	var g errgroup.Group
	g.Go(func() error {
		return readCSV(filepath.Join(dir, PeopleFile), []string{"id", "name"}, func(row map[string]string) {
			ds.People = append(ds.People, models.Person{
				ID:    row["id"],
				Name:  row["name"],
				Birth: parseYear(row["birth"]),
			})
		}, logger)
	})
	g.Go(func() error {
		return readCSV(filepath.Join(dir, MoviesFile), []string{"id", "title"}, func(row map[string]string) {
			ds.Movies = append(ds.Movies, models.Movie{
				ID:    row["id"],
				Title: row["title"],
				Year:  parseYear(row["year"]),
			})
		}, logger)
	})
	g.Go(func() error {
		return readCSV(filepath.Join(dir, StarsFile), []string{"person_id", "movie_id"}, func(row map[string]string) {
			ds.Credits = append(ds.Credits, models.Credit{
				PersonID: row["person_id"],
				MovieID:  row["movie_id"],
			})
		}, logger)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return ds, nil
}

// readCSV streams path row by row as header-keyed maps.
func readCSV(path string, required []string, fn func(map[string]string), logger *slog.Logger) error {
	f, err := os.Open(path) // #nosec G304 -- path from config/flag
	if err != nil {
		return fmt.Errorf("opening %s: %w", filepath.Base(path), err)
	}
	defer f.Close() //nolint:errcheck // read-only

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.ReuseRecord = true
	// names like `Dwayne "The Rock" Johnson` carry bare quotes
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%s: missing header row", filepath.Base(path))
		}
		return fmt.Errorf("reading %s header: %w", filepath.Base(path), err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return fmt.Errorf("%s: missing column %q", filepath.Base(path), name)
		}
	}

	var skipped int
	for line := 2; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				skipped++
				logger.Debug("skipping malformed row", "file", filepath.Base(path), "line", line, "error", err)
				continue
			}
			return fmt.Errorf("reading %s: %w", filepath.Base(path), err)
		}

		row := make(map[string]string, len(cols))
		complete := true
		for name, i := range cols {
			if i < len(rec) {
				row[name] = rec[i]
			}
		}
		for _, name := range required {
			if cols[name] >= len(rec) {
				complete = false
				break
			}
		}
		if !complete {
			skipped++
			continue
		}
		fn(row)
	}

	if skipped > 0 {
		logger.Warn("skipped malformed rows", "file", filepath.Base(path), "count", skipped)
	}
	return nil
}

// parseYear returns 0 for empty or non-numeric values.
func parseYear(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
