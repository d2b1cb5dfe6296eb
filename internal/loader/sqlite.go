package loader

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/matijazezelj/degrees/pkg/models"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS people (
    id    TEXT PRIMARY KEY,
    name  TEXT NOT NULL,
    birth INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS movies (
    id    TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    year  INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS stars (
    person_id TEXT NOT NULL,
    movie_id  TEXT NOT NULL,
    PRIMARY KEY (person_id, movie_id)
);

CREATE INDEX IF NOT EXISTS idx_people_name ON people(name COLLATE NOCASE);
CREATE INDEX IF NOT EXISTS idx_stars_movie ON stars(movie_id);

CREATE TABLE IF NOT EXISTS imports (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    source      TEXT NOT NULL,
    imported_at DATETIME NOT NULL,
    people      INTEGER DEFAULT 0,
    movies      INTEGER DEFAULT 0,
    stars       INTEGER DEFAULT 0
);
`

// SQLiteDataset persists a Dataset so large CSV dumps are parsed once.
type SQLiteDataset struct {
	db *sql.DB
}

// Counts holds row counts for each dataset table.
type Counts struct {
	People int `json:"people" yaml:"people"`
	Movies int `json:"movies" yaml:"movies"`
	Stars  int `json:"stars" yaml:"stars"`
}

// ImportRecord describes one completed Import.
type ImportRecord struct {
	ID         int64     `json:"id" yaml:"id"`
	Source     string    `json:"source" yaml:"source"`
	ImportedAt time.Time `json:"imported_at" yaml:"imported_at"`
	Counts     Counts    `json:"counts" yaml:"counts"`
}

// OpenSQLite opens (creating if needed) the dataset database at dbPath and
// ensures the schema exists.
func OpenSQLite(dbPath string) (*SQLiteDataset, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(wal)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteDataset{db: db}
	if err := s.Init(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return s, nil
}

// Init creates the database schema if it doesn't exist.
func (s *SQLiteDataset) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteDataset) Close() error {
	return s.db.Close()
}

// Import upserts every record of ds in a single transaction and records the
// run. Credits are stored as given; dangling ones are dropped at build time.
func (s *SQLiteDataset) Import(ctx context.Context, source string, ds *Dataset) (ImportRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportRecord{}, fmt.Errorf("beginning import: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	personStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO people (id, name, birth) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, birth = excluded.birth
	`)
	if err != nil {
		return ImportRecord{}, err
	}
	defer personStmt.Close() //nolint:errcheck // closed with tx

	for _, p := range ds.People {
		if _, err := personStmt.ExecContext(ctx, p.ID, p.Name, p.Birth); err != nil {
			return ImportRecord{}, fmt.Errorf("importing person %s: %w", p.ID, err)
		}
	}

	movieStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO movies (id, title, year) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title, year = excluded.year
	`)
	if err != nil {
		return ImportRecord{}, err
	}
	defer movieStmt.Close() //nolint:errcheck // closed with tx

	for _, m := range ds.Movies {
		if _, err := movieStmt.ExecContext(ctx, m.ID, m.Title, m.Year); err != nil {
			return ImportRecord{}, fmt.Errorf("importing movie %s: %w", m.ID, err)
		}
	}

	starStmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO stars (person_id, movie_id) VALUES (?, ?)`)
	if err != nil {
		return ImportRecord{}, err
	}
	defer starStmt.Close() //nolint:errcheck // closed with tx

	for _, c := range ds.Credits {
		if _, err := starStmt.ExecContext(ctx, c.PersonID, c.MovieID); err != nil {
			return ImportRecord{}, fmt.Errorf("importing credit %s/%s: %w", c.PersonID, c.MovieID, err)
		}
	}

	rec := ImportRecord{
		Source:     source,
		ImportedAt: time.Now().UTC().Truncate(time.Second),
		Counts:     Counts{People: len(ds.People), Movies: len(ds.Movies), Stars: len(ds.Credits)},
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO imports (source, imported_at, people, movies, stars) VALUES (?, ?, ?, ?, ?)
	`, rec.Source, rec.ImportedAt.Format(time.RFC3339), rec.Counts.People, rec.Counts.Movies, rec.Counts.Stars)
	if err != nil {
		return ImportRecord{}, fmt.Errorf("recording import: %w", err)
	}
	if rec.ID, err = res.LastInsertId(); err != nil {
		return ImportRecord{}, err
	}

	if err := tx.Commit(); err != nil {
		return ImportRecord{}, fmt.Errorf("committing import: %w", err)
	}
	return rec, nil
}

// Load reads the full dataset back out of the database.
func (s *SQLiteDataset) Load(ctx context.Context) (*Dataset, error) {
	ds := &Dataset{}

	rows, err := s.db.QueryContext(ctx, `SELECT id, name, birth FROM people ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("loading people: %w", err)
	}
	for rows.Next() {
		var p models.Person
		if err := rows.Scan(&p.ID, &p.Name, &p.Birth); err != nil {
			_ = rows.Close()
			return nil, err
		}
		ds.People = append(ds.People, p)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `SELECT id, title, year FROM movies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("loading movies: %w", err)
	}
	for rows.Next() {
		var m models.Movie
		if err := rows.Scan(&m.ID, &m.Title, &m.Year); err != nil {
			_ = rows.Close()
			return nil, err
		}
		ds.Movies = append(ds.Movies, m)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `SELECT person_id, movie_id FROM stars ORDER BY person_id, movie_id`)
	if err != nil {
		return nil, fmt.Errorf("loading stars: %w", err)
	}
	for rows.Next() {
		var c models.Credit
		if err := rows.Scan(&c.PersonID, &c.MovieID); err != nil {
			_ = rows.Close()
			return nil, err
		}
		ds.Credits = append(ds.Credits, c)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	return ds, nil
}

// Counts returns the number of rows in each dataset table.
func (s *SQLiteDataset) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM people), (SELECT COUNT(*) FROM movies), (SELECT COUNT(*) FROM stars)
	`).Scan(&c.People, &c.Movies, &c.Stars)
	return c, err
}

// Imports returns the most recent import records, up to limit.
func (s *SQLiteDataset) Imports(ctx context.Context, limit int) ([]ImportRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, imported_at, people, movies, stars
		FROM imports ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck // best-effort cleanup

	var out []ImportRecord
	for rows.Next() {
		var r ImportRecord
		var importedAt string
		if err := rows.Scan(&r.ID, &r.Source, &importedAt, &r.Counts.People, &r.Counts.Movies, &r.Counts.Stars); err != nil {
			return nil, err
		}
		if r.ImportedAt, err = time.Parse(time.RFC3339, importedAt); err != nil {
			return nil, fmt.Errorf("import %d: parsing imported_at: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	return rows.Close()
}
