// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinerec/internal/catalog"
)

// Default file names inside the data directory.
const (
	DefaultMoviesFile  = "movies.csv"
	DefaultIMDBFile    = "imdb_data.csv"
	DefaultRatingsFile = "ratings.csv"
)

// Files locates the dataset files. Relative names resolve against Dir.
// An empty IMDB or Ratings name skips that file.
type Files struct {
	Dir     string
	Movies  string
	IMDB    string
	Ratings string
}

// DefaultFiles returns the standard file names under dir.
func DefaultFiles(dir string) Files {
	return Files{
		Dir:     dir,
		Movies:  DefaultMoviesFile,
		IMDB:    DefaultIMDBFile,
		Ratings: DefaultRatingsFile,
	}
}

// Path resolves name against Dir. Empty names stay empty.
func (f Files) Path(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(f.Dir, name)
}

// CSVLoader reads the dataset with encoding/csv.
type CSVLoader struct {
	files  Files
	scale  catalog.RatingScale
	logger zerolog.Logger
}

// NewCSVLoader creates a loader for files.
//
//nolint:gocritic // hugeParam: logger is passed by value by convention
func NewCSVLoader(files Files, scale catalog.RatingScale, logger zerolog.Logger) *CSVLoader {
	return &CSVLoader{
		files:  files,
		scale:  scale,
		logger: logger.With().Str("component", "csv_loader").Logger(),
	}
}

// Name returns "csv".
func (l *CSVLoader) Name() string { return "csv" }

// Load reads all files and builds the catalog. A missing optional file is
// logged and treated as empty.
func (l *CSVLoader) Load(ctx context.Context) (*catalog.Store, *LoadStats, error) {
	stats := &LoadStats{Loader: l.Name(), StartTime: time.Now()}
	recs := &Records{}

	moviesPath := l.files.Path(l.files.Movies)
	if moviesPath == "" {
		return nil, nil, errors.New("movies file not configured")
	}
	if err := l.readFile(ctx, moviesPath, func(r *csv.Reader) error {
		var err error
		recs.Movies, err = readMovies(ctx, r, &stats.Movies)
		return err
	}); err != nil {
		return nil, nil, err
	}

	if p := l.files.Path(l.files.IMDB); p != "" {
		err := l.readFile(ctx, p, func(r *csv.Reader) error {
			var err error
			recs.IMDB, err = readIMDB(ctx, r, &stats.IMDB)
			return err
		})
		if err := l.optional(p, err); err != nil {
			return nil, nil, err
		}
	}

	if p := l.files.Path(l.files.Ratings); p != "" {
		err := l.readFile(ctx, p, func(r *csv.Reader) error {
			var err error
			recs.Ratings, err = readRatings(ctx, r, &stats.Ratings)
			return err
		})
		if err := l.optional(p, err); err != nil {
			return nil, nil, err
		}
	}

	store, err := Assemble(recs, l.scale, stats)
	if err != nil {
		return nil, nil, err
	}
	stats.EndTime = time.Now()

	l.logger.Info().
		Int("items", store.Len()).
		Int("ratings", store.RatingCount()).
		Int64("skipped_movies", stats.Movies.SkippedTotal()).
		Int64("skipped_imdb", stats.IMDB.SkippedTotal()).
		Int64("skipped_ratings", stats.Ratings.SkippedTotal()).
		Dur("duration", stats.Duration()).
		Msg("Catalog loaded")

	return store, stats, nil
}

func (l *CSVLoader) optional(path string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		l.logger.Warn().Str("path", path).Msg("Optional data file missing, continuing without it")
		return nil
	}
	return err
}

func (l *CSVLoader) readFile(ctx context.Context, path string, read func(*csv.Reader) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.Open(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	r := csv.NewReader(f)
	r.ReuseRecord = true
	r.FieldsPerRecord = -1
	if err := read(r); err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return nil
}

// header maps lower-cased column names to positions.
type header map[string]int

func readHeader(r *csv.Reader, required ...string) (header, error) {
	row, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	h := make(header, len(row))
	for i, name := range row {
		h[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, col := range required {
		if _, ok := h[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}
	return h, nil
}

// get returns column col of row, or "" when the row is short.
func (h header) get(row []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// eachRow calls fn for every data row. Rows the CSV parser rejects are
// counted as malformed and skipped.
func eachRow(ctx context.Context, r *csv.Reader, stats *SourceStats, fn func(row []string)) error {
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		stats.Rows++
		if stats.Rows%8192 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			stats.Skip(ReasonMalformed)
			continue
		}
		if err != nil {
			return err
		}
		fn(row)
	}
}

func readMovies(ctx context.Context, r *csv.Reader, stats *SourceStats) ([]MovieRecord, error) {
	h, err := readHeader(r, "movieid", "title")
	if err != nil {
		return nil, err
	}
	var out []MovieRecord
	err = eachRow(ctx, r, stats, func(row []string) {
		id, err := strconv.Atoi(strings.TrimSpace(h.get(row, "movieid")))
		if err != nil {
			stats.Skip(ReasonMalformed)
			return
		}
		out = append(out, MovieRecord{
			ID:     id,
			Title:  h.get(row, "title"),
			Genres: h.get(row, "genres"),
		})
	})
	return out, err
}

func readIMDB(ctx context.Context, r *csv.Reader, stats *SourceStats) ([]IMDBRecord, error) {
	h, err := readHeader(r, "movieid")
	if err != nil {
		return nil, err
	}
	var out []IMDBRecord
	err = eachRow(ctx, r, stats, func(row []string) {
		id, err := strconv.Atoi(strings.TrimSpace(h.get(row, "movieid")))
		if err != nil {
			stats.Skip(ReasonMalformed)
			return
		}
		out = append(out, IMDBRecord{
			MovieID:  id,
			Cast:     h.get(row, "title_cast"),
			Director: h.get(row, "director"),
			Keywords: h.get(row, "plot_keywords"),
		})
	})
	return out, err
}

func readRatings(ctx context.Context, r *csv.Reader, stats *SourceStats) ([]RatingRecord, error) {
	h, err := readHeader(r, "userid", "movieid", "rating")
	if err != nil {
		return nil, err
	}
	var out []RatingRecord
	err = eachRow(ctx, r, stats, func(row []string) {
		user, err1 := strconv.Atoi(strings.TrimSpace(h.get(row, "userid")))
		movie, err2 := strconv.Atoi(strings.TrimSpace(h.get(row, "movieid")))
		value, err3 := strconv.ParseFloat(strings.TrimSpace(h.get(row, "rating")), 64)
		if err1 != nil || err2 != nil || err3 != nil {
			stats.Skip(ReasonMalformed)
			return
		}
		var ts int64
		if raw := strings.TrimSpace(h.get(row, "timestamp")); raw != "" {
			if ts, err = strconv.ParseInt(raw, 10, 64); err != nil {
				stats.Skip(ReasonMalformed)
				return
			}
		}
		out = append(out, RatingRecord{UserID: user, MovieID: movie, Rating: value, Timestamp: ts})
	})
	return out, err
}
