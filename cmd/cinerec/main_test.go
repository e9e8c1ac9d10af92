// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinerec/internal/catalog"
	"github.com/tomtom215/cinerec/internal/config"
	"github.com/tomtom215/cinerec/internal/recommend"
	"github.com/tomtom215/cinerec/internal/recommend/algorithms"
)

const testMovies = `movieId,title,genres
1,Heat (1995),Action|Crime|Thriller
2,Collateral (2004),Action|Crime|Thriller
3,The Godfather (1972),Crime|Drama
4,Casino (1995),Crime|Drama
5,Toy Story (1995),Animation|Children|Comedy
6,Ronin (1998),Action|Crime|Thriller
7,Up (2009),Adventure|Animation|Children
8,Heat (1986),Action|Drama
`

const testIMDB = `movieId,title_cast,director,plot_keywords
1,Al Pacino|Robert De Niro,Michael Mann,heist|los angeles
2,Tom Cruise|Jamie Foxx,Michael Mann,los angeles|taxi
3,Marlon Brando|Al Pacino,Francis Ford Coppola,mafia|family
4,Robert De Niro|Joe Pesci,Martin Scorsese,mafia|las vegas
6,Robert De Niro|Jean Reno,John Frankenheimer,heist|paris
`

// writeDataset writes a small catalog where every movie has ratings from
// several users, and returns its directory.
func writeDataset(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	var ratings strings.Builder
	ratings.WriteString("userId,movieId,rating,timestamp\n")
	for u := 1; u <= 6; u++ {
		for m := 1; m <= 8; m++ {
			r := 2.0 + float64((u+m)%4)
			fmt.Fprintf(&ratings, "%d,%d,%.1f,%d\n", u, m, r, 1000000000+u*100+m)
		}
	}

	files := map[string]string{
		"movies.csv":    testMovies,
		"imdb_data.csv": testIMDB,
		"ratings.csv":   ratings.String(),
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("WriteFile(%s) error = %v", name, err)
		}
	}
	return dir
}

// runCLI runs the command line against dir and returns the exit code with
// the captured output.
func runCLI(t *testing.T, dir string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	t.Setenv(config.ConfigPathEnvVar, "")

	var out, errOut bytes.Buffer
	full := append([]string{"--data-dir", dir, "--log-level", "error"}, args...)
	code = run(full, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"not found", fmt.Errorf("seed 1: %w", recommend.ErrNotFound), exitDomain},
		{"ambiguous", &recommend.AmbiguousError{Title: "Heat"}, exitDomain},
		{"insufficient data", &recommend.InsufficientDataError{ItemID: 7}, exitDomain},
		{"usage", usageError("bad flag"), exitDomain},
		{"other", errors.New("disk on fire"), exitError},
		{"not ready", recommend.ErrNotReady, exitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestBuildEngineConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Recommend.Strategies = []string{"content"}
	cfg.Recommend.TopN = 7
	cfg.Recommend.MaxTopN = 40
	cfg.Recommend.Seed = 99
	cfg.Recommend.Collaborative.Factors = 12
	cfg.Recommend.Content.CastWeight = 0.25
	cfg.Recommend.Cache.TTL = time.Minute
	cfg.Recommend.ModelDir = "/tmp/models"

	got := buildEngineConfig(cfg)

	if len(got.Strategies) != 1 || got.Strategies[0] != "content" {
		t.Errorf("Strategies = %v, want [content]", got.Strategies)
	}
	if got.Limits.DefaultTopN != 7 || got.Limits.MaxTopN != 40 {
		t.Errorf("Limits = %+v, want DefaultTopN 7 MaxTopN 40", got.Limits)
	}
	if got.Seed != 99 {
		t.Errorf("Seed = %d, want 99", got.Seed)
	}
	if got.Collaborative.Factors != 12 {
		t.Errorf("Collaborative.Factors = %d, want 12", got.Collaborative.Factors)
	}
	if got.Content.CastWeight != 0.25 {
		t.Errorf("Content.CastWeight = %v, want 0.25", got.Content.CastWeight)
	}
	if got.Cache.TTL != time.Minute {
		t.Errorf("Cache.TTL = %v, want 1m", got.Cache.TTL)
	}
	if got.Build.ModelDir != "/tmp/models" {
		t.Errorf("Build.ModelDir = %q, want /tmp/models", got.Build.ModelDir)
	}

	// The engine config must not alias the application config.
	got.Strategies[0] = "collaborative"
	if cfg.Recommend.Strategies[0] != "content" {
		t.Error("buildEngineConfig() shares the Strategies slice")
	}
}

func TestAlsConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Recommend.Collaborative = config.CollaborativeConfig{
		Factors:        8,
		Iterations:     3,
		Lambda:         0.1,
		MinItemRatings: 2,
		Workers:        1,
	}
	cfg.Recommend.Seed = 5

	got := alsConfig(cfg)
	want := algorithms.ALSConfig{
		NumFactors:     8,
		NumIterations:  3,
		Regularization: 0.1,
		MinItemRatings: 2,
		NumWorkers:     1,
		Seed:           5,
	}
	if got != want {
		t.Errorf("alsConfig() = %+v, want %+v", got, want)
	}
}

func TestRun_Recommend(t *testing.T) {
	dir := writeDataset(t)

	code, stdout, stderr := runCLI(t, dir, "recommend", "Heat (1995)", "Collateral", "The Godfather")
	if code != exitOK {
		t.Fatalf("exit code = %d, want %d (stderr: %s)", code, exitOK, stderr)
	}
	if !strings.Contains(stdout, "Because you like Heat (1995), Collateral (2004), and The Godfather (1972):") {
		t.Errorf("stdout missing seed line:\n%s", stdout)
	}
	if !strings.Contains(stdout, "Ronin (1998)") {
		t.Errorf("stdout missing Ronin (1998):\n%s", stdout)
	}
	_, table, ok := strings.Cut(stdout, "TITLE")
	if !ok {
		t.Fatalf("stdout missing result table:\n%s", stdout)
	}
	for _, seed := range []string{"Heat (1995)", "Collateral (2004)", "The Godfather (1972)"} {
		if strings.Contains(table, seed) {
			t.Errorf("result table lists seed %q:\n%s", seed, table)
		}
	}
}

func TestRun_RecommendJSON(t *testing.T) {
	dir := writeDataset(t)

	code, stdout, stderr := runCLI(t, dir, "recommend", "Heat (1995)", "Collateral", "Casino", "--top-n", "3", "--json")
	if code != exitOK {
		t.Fatalf("exit code = %d, want %d (stderr: %s)", code, exitOK, stderr)
	}

	var resp recommend.Response
	if err := json.Unmarshal([]byte(stdout), &resp); err != nil {
		t.Fatalf("Unmarshal() error = %v\n%s", err, stdout)
	}
	if len(resp.Seeds) != recommend.SeedCount {
		t.Errorf("len(Seeds) = %d, want %d", len(resp.Seeds), recommend.SeedCount)
	}
	if len(resp.Items) == 0 || len(resp.Items) > 3 {
		t.Errorf("len(Items) = %d, want 1..3", len(resp.Items))
	}
	seen := make(map[int]bool)
	for _, it := range resp.Items {
		if it.ItemID == 1 || it.ItemID == 2 || it.ItemID == 4 {
			t.Errorf("Items contains seed %d", it.ItemID)
		}
		if seen[it.ItemID] {
			t.Errorf("Items contains %d twice", it.ItemID)
		}
		seen[it.ItemID] = true
	}
	if resp.Metadata.Strategy != string(recommend.StrategyContent) {
		t.Errorf("Metadata.Strategy = %q, want content", resp.Metadata.Strategy)
	}
}

func TestRun_DomainErrors(t *testing.T) {
	dir := writeDataset(t)

	tests := []struct {
		name       string
		args       []string
		wantStderr string
	}{
		{
			name:       "unknown title",
			args:       []string{"recommend", "Heat (1995)", "Collateral", "Nonexistent Movie"},
			wantStderr: "no movie titled",
		},
		{
			name:       "ambiguous title",
			args:       []string{"recommend", "Heat", "Collateral", "Casino"},
			wantStderr: "Heat (1986)",
		},
		{
			name:       "unknown strategy",
			args:       []string{"recommend", "Heat (1995)", "Collateral", "Casino", "--strategy", "magic"},
			wantStderr: "Error:",
		},
		{
			name:       "negative top-n",
			args:       []string{"recommend", "Heat (1995)", "Collateral", "Casino", "--top-n", "-1"},
			wantStderr: "--top-n",
		},
		{
			name:       "bad test ratio",
			args:       []string{"evaluate", "--test-ratio", "1.5"},
			wantStderr: "--test-ratio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, dir, tt.args...)
			if code != exitDomain {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, exitDomain, stderr)
			}
			if !strings.Contains(stderr, tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr, tt.wantStderr)
			}
		})
	}
}

func TestRun_OperationalErrors(t *testing.T) {
	t.Run("missing data dir", func(t *testing.T) {
		code, _, stderr := runCLI(t, filepath.Join(t.TempDir(), "absent"), "recommend", "A", "B", "C")
		if code != exitError {
			t.Errorf("exit code = %d, want %d (stderr: %s)", code, exitError, stderr)
		}
	})

	t.Run("wrong seed count", func(t *testing.T) {
		code, _, _ := runCLI(t, writeDataset(t), "recommend", "Heat (1995)", "Collateral")
		if code != exitError {
			t.Errorf("exit code = %d, want %d", code, exitError)
		}
	})
}

func TestRun_Resolve(t *testing.T) {
	dir := writeDataset(t)

	code, stdout, stderr := runCLI(t, dir, "resolve", "Heat", "--year", "1995")
	if code != exitOK {
		t.Fatalf("exit code = %d, want %d (stderr: %s)", code, exitOK, stderr)
	}
	if !strings.HasPrefix(stdout, "1\tHeat (1995)") {
		t.Errorf("stdout = %q, want prefix %q", stdout, "1\tHeat (1995)")
	}
	if !strings.Contains(stdout, "director: Michael Mann") {
		t.Errorf("stdout missing director:\n%s", stdout)
	}

	code, _, stderr = runCLI(t, dir, "resolve", "Hea")
	if code != exitDomain {
		t.Errorf("exit code = %d, want %d", code, exitDomain)
	}
	if !strings.Contains(stderr, "Did you mean:") || !strings.Contains(stderr, "Heat (1995)") {
		t.Errorf("stderr missing suggestions:\n%s", stderr)
	}
}

func TestRun_Evaluate(t *testing.T) {
	dir := writeDataset(t)

	code, stdout, stderr := runCLI(t, dir, "evaluate", "--json")
	if code != exitOK {
		t.Fatalf("exit code = %d, want %d (stderr: %s)", code, exitOK, stderr)
	}

	var eval algorithms.Evaluation
	if err := json.Unmarshal([]byte(stdout), &eval); err != nil {
		t.Fatalf("Unmarshal() error = %v\n%s", err, stdout)
	}
	if eval.TestRatings == 0 || eval.Evaluated == 0 {
		t.Errorf("Evaluation = %+v, want held-out ratings evaluated", eval)
	}
	if eval.TrainRatings+eval.TestRatings != 48 {
		t.Errorf("train+test = %d, want 48", eval.TrainRatings+eval.TestRatings)
	}
}

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	if code := run([]string{"version"}, &out, &bytes.Buffer{}); code != exitOK {
		t.Fatalf("exit code = %d, want %d", code, exitOK)
	}
	if !strings.HasPrefix(out.String(), "cinerec "+version) {
		t.Errorf("version output = %q", out.String())
	}
}

func TestSuggest(t *testing.T) {
	items := []catalog.Item{
		{ID: 1, Title: "Heat (1995)"},
		{ID: 2, Title: "Heatwave (2001)"},
		{ID: 3, Title: "Up (2009)"},
	}
	ratings := []catalog.Rating{
		{UserID: 1, ItemID: 1, Value: 5},
		{UserID: 2, ItemID: 1, Value: 4},
		{UserID: 1, ItemID: 2, Value: 3},
		{UserID: 1, ItemID: 3, Value: 4},
	}
	cat, err := catalog.NewStore(items, ratings, catalog.DefaultRatingScale())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	tests := []struct {
		query string
		n     int
		want  []int
	}{
		{"heat", 5, []int{1, 2}},
		{"HEAT (1990)", 5, []int{1, 2}},
		{"heat", 1, []int{1}},
		{"zzz", 5, nil},
		{"  ", 5, nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := suggest(cat, tt.query, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("suggest(%q) = %v, want ids %v", tt.query, got, tt.want)
			}
			for i := range got {
				if got[i].ID != tt.want[i] {
					t.Errorf("suggest(%q)[%d].ID = %d, want %d", tt.query, i, got[i].ID, tt.want[i])
				}
			}
		})
	}

	if got := suggest(nil, "heat", 5); got != nil {
		t.Errorf("suggest(nil) = %v, want nil", got)
	}
}
