// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinerec/internal/catalog"
	"github.com/tomtom215/cinerec/internal/dataset"
)

// Table names the CSV files are ingested into.
const (
	tableMovies  = "movies"
	tableIMDB    = "imdb"
	tableRatings = "ratings"
)

// column is a source column read by the loader. Optional columns absent
// from the file are selected as NULL.
type column struct {
	name     string
	cast     string
	required bool
}

var (
	movieColumns = []column{
		{name: "movieid", cast: "INTEGER", required: true},
		{name: "title", required: true},
		{name: "genres"},
	}
	imdbColumns = []column{
		{name: "movieid", cast: "INTEGER", required: true},
		{name: "title_cast"},
		{name: "director"},
		{name: "plot_keywords"},
	}
	ratingColumns = []column{
		{name: "userid", cast: "INTEGER", required: true},
		{name: "movieid", cast: "INTEGER", required: true},
		{name: "rating", cast: "DOUBLE", required: true},
		{name: "timestamp", cast: "BIGINT"},
	}
)

// Loader reads the dataset files through DuckDB. It implements
// dataset.Loader.
type Loader struct {
	db     *DB
	files  dataset.Files
	scale  catalog.RatingScale
	logger zerolog.Logger
}

// NewLoader creates a DuckDB-backed loader.
//
//nolint:gocritic // hugeParam: logger is passed by value by convention
func NewLoader(db *DB, files dataset.Files, scale catalog.RatingScale, logger zerolog.Logger) *Loader {
	return &Loader{
		db:     db,
		files:  files,
		scale:  scale,
		logger: logger.With().Str("component", "duckdb_loader").Logger(),
	}
}

// Name returns "duckdb".
func (l *Loader) Name() string { return "duckdb" }

// Load ingests the files and builds the catalog. Tables are replaced on
// every call so a reload sees the current files.
func (l *Loader) Load(ctx context.Context) (*catalog.Store, *dataset.LoadStats, error) {
	stats := &dataset.LoadStats{Loader: l.Name(), StartTime: time.Now()}
	recs := &dataset.Records{}

	moviesPath := l.files.Path(l.files.Movies)
	if moviesPath == "" {
		return nil, nil, errors.New("movies file not configured")
	}
	if err := l.ingest(ctx, tableMovies, moviesPath); err != nil {
		return nil, nil, err
	}
	if err := l.readMovies(ctx, recs, &stats.Movies); err != nil {
		return nil, nil, err
	}

	if ok, err := l.ingestOptional(ctx, tableIMDB, l.files.Path(l.files.IMDB)); err != nil {
		return nil, nil, err
	} else if ok {
		if err := l.readIMDB(ctx, recs, &stats.IMDB); err != nil {
			return nil, nil, err
		}
	}

	if ok, err := l.ingestOptional(ctx, tableRatings, l.files.Path(l.files.Ratings)); err != nil {
		return nil, nil, err
	} else if ok {
		if err := l.readRatings(ctx, recs, &stats.Ratings); err != nil {
			return nil, nil, err
		}
	}

	store, err := dataset.Assemble(recs, l.scale, stats)
	if err != nil {
		return nil, nil, err
	}
	stats.EndTime = time.Now()

	l.logger.Info().
		Int("items", store.Len()).
		Int("ratings", store.RatingCount()).
		Int64("skipped_ratings", stats.Ratings.SkippedTotal()).
		Dur("duration", stats.Duration()).
		Msg("Catalog loaded")

	return store, stats, nil
}

// ingest replaces table with the contents of the CSV file at path.
func (l *Loader) ingest(ctx context.Context, table, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("ingest %s: %w", table, err)
	}
	query := fmt.Sprintf(
		"CREATE OR REPLACE TABLE %s AS SELECT * FROM read_csv(%s, header = true, all_varchar = true, ignore_errors = true)",
		table, quoteLiteral(path))
	if _, err := l.db.conn.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ingest %s: %w", table, err)
	}
	return nil
}

// ingestOptional ingests path when it is configured and exists.
func (l *Loader) ingestOptional(ctx context.Context, table, path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		l.logger.Warn().Str("path", path).Msg("Optional data file missing, continuing without it")
		return false, nil
	}
	if err := l.ingest(ctx, table, path); err != nil {
		return false, err
	}
	return true, nil
}

// selectList builds the projection for cols against the table's actual
// columns, matched case-insensitively.
func (l *Loader) selectList(ctx context.Context, table string, cols []column) (string, error) {
	rows, err := l.db.conn.QueryContext(ctx, fmt.Sprintf("SELECT column_name FROM (DESCRIBE %s)", table))
	if err != nil {
		return "", fmt.Errorf("describe %s: %w", table, err)
	}
	defer closeQuietly(rows)

	actual := make(map[string]string)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return "", fmt.Errorf("describe %s: %w", table, err)
		}
		actual[strings.ToLower(strings.TrimSpace(name))] = name
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("describe %s: %w", table, err)
	}

	exprs := make([]string, len(cols))
	for i, c := range cols {
		name, ok := actual[c.name]
		switch {
		case !ok && c.required:
			return "", fmt.Errorf("%s: missing column %q", table, c.name)
		case !ok:
			exprs[i] = "NULL"
		case c.cast != "":
			exprs[i] = fmt.Sprintf("TRY_CAST(TRIM(%s) AS %s)", quoteIdent(name), c.cast)
		default:
			exprs[i] = quoteIdent(name)
		}
	}
	return strings.Join(exprs, ", "), nil
}

// scanTable runs a projection over table and calls scan for every row.
func (l *Loader) scanTable(ctx context.Context, table string, cols []column, stats *dataset.SourceStats, scan func(*sql.Rows) error) error {
	list, err := l.selectList(ctx, table, cols)
	if err != nil {
		return err
	}
	rows, err := l.db.conn.QueryContext(ctx, fmt.Sprintf("SELECT %s FROM %s", list, table))
	if err != nil {
		return fmt.Errorf("query %s: %w", table, err)
	}
	defer closeWithLog(rows, table+" rows")

	for rows.Next() {
		stats.Rows++
		if err := scan(rows); err != nil {
			return fmt.Errorf("scan %s: %w", table, err)
		}
	}
	return rows.Err()
}

func (l *Loader) readMovies(ctx context.Context, recs *dataset.Records, stats *dataset.SourceStats) error {
	return l.scanTable(ctx, tableMovies, movieColumns, stats, func(rows *sql.Rows) error {
		var (
			id            sql.NullInt64
			title, genres sql.NullString
		)
		if err := rows.Scan(&id, &title, &genres); err != nil {
			return err
		}
		// Non-positive IDs are counted as malformed by Assemble.
		rec := dataset.MovieRecord{Title: title.String, Genres: genres.String}
		if id.Valid {
			rec.ID = int(id.Int64)
		}
		recs.Movies = append(recs.Movies, rec)
		return nil
	})
}

func (l *Loader) readIMDB(ctx context.Context, recs *dataset.Records, stats *dataset.SourceStats) error {
	return l.scanTable(ctx, tableIMDB, imdbColumns, stats, func(rows *sql.Rows) error {
		var (
			id                       sql.NullInt64
			cast, director, keywords sql.NullString
		)
		if err := rows.Scan(&id, &cast, &director, &keywords); err != nil {
			return err
		}
		if !id.Valid {
			stats.Skip(dataset.ReasonMalformed)
			return nil
		}
		recs.IMDB = append(recs.IMDB, dataset.IMDBRecord{
			MovieID:  int(id.Int64),
			Cast:     cast.String,
			Director: director.String,
			Keywords: keywords.String,
		})
		return nil
	})
}

func (l *Loader) readRatings(ctx context.Context, recs *dataset.Records, stats *dataset.SourceStats) error {
	return l.scanTable(ctx, tableRatings, ratingColumns, stats, func(rows *sql.Rows) error {
		var (
			user, movie, ts sql.NullInt64
			value           sql.NullFloat64
		)
		if err := rows.Scan(&user, &movie, &value, &ts); err != nil {
			return err
		}
		if !user.Valid || !movie.Valid || !value.Valid {
			stats.Skip(dataset.ReasonMalformed)
			return nil
		}
		recs.Ratings = append(recs.Ratings, dataset.RatingRecord{
			UserID:    int(user.Int64),
			MovieID:   int(movie.Int64),
			Rating:    value.Float64,
			Timestamp: ts.Int64,
		})
		return nil
	})
}

// TableCounts returns the row count of every ingested table.
func (l *Loader) TableCounts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, table := range []string{tableMovies, tableIMDB, tableRatings} {
		var n int64
		err := l.db.conn.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n)
		if err != nil {
			if strings.Contains(err.Error(), "does not exist") {
				continue
			}
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

// quoteLiteral returns s as a SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// quoteIdent returns s as a quoted SQL identifier.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

var _ dataset.Loader = (*Loader)(nil)
