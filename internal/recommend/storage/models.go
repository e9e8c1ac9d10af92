// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrNoModel is returned by Load when nothing is stored under a name.
var ErrNoModel = errors.New("no stored model")

// ModelMetadata contains information about a stored model.
type ModelMetadata struct {
	// Name is the algorithm name (e.g., "content", "als").
	Name string `json:"name"`

	// Version is the model version (monotonically increasing per name).
	Version int `json:"version"`

	// Fingerprint identifies the catalog the model was fitted on. A model
	// is only reusable for a catalog with the same fingerprint.
	Fingerprint string `json:"fingerprint"`

	// TrainedAt is when the model was fitted.
	TrainedAt time.Time `json:"trained_at"`

	// SavedAt is when the model was saved.
	SavedAt time.Time `json:"saved_at"`

	ItemCount   int `json:"item_count"`
	RatingCount int `json:"rating_count"`
	UserCount   int `json:"user_count"`

	// Checksum is the SHA-256 checksum of the uncompressed model data.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed model size in bytes.
	SizeBytes int64 `json:"size_bytes"`

	// TrainingDurationMS is how long fitting took.
	TrainingDurationMS int64 `json:"training_duration_ms"`
}

// Store manages model persistence.
type Store struct {
	baseDir string
	mu      sync.RWMutex

	// latest version per model name
	versions map[string]int
}

// NewStore creates a new model store at the given directory.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for model storage
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	s := &Store{
		baseDir:  baseDir,
		versions: make(map[string]int),
	}

	if err := s.scanModels(); err != nil {
		return nil, fmt.Errorf("scan existing models: %w", err)
	}

	return s, nil
}

// Dir returns the storage directory.
func (s *Store) Dir() string {
	return s.baseDir
}

// scanModels records the latest version of every model file on disk.
func (s *Store) scanModels() error {
	files, err := s.listFiles()
	if err != nil {
		return err
	}
	for _, f := range files {
		if current, ok := s.versions[f.name]; !ok || f.version > current {
			s.versions[f.name] = f.version
		}
	}
	return nil
}

type modelFile struct {
	name    string
	version int
}

// listFiles parses every "{name}_v{version}.gob.gz" file in the directory.
func (s *Store) listFiles() ([]modelFile, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}

	var files []modelFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		base, ok := strings.CutSuffix(entry.Name(), ".gob.gz")
		if !ok {
			continue
		}
		name, version := parseModelFilename(base)
		if name == "" {
			continue
		}
		files = append(files, modelFile{name: name, version: version})
	}
	return files, nil
}

// parseModelFilename extracts the model name and version from "als_v3".
func parseModelFilename(base string) (name string, version int) {
	i := strings.LastIndex(base, "_v")
	if i <= 0 {
		return "", 0
	}
	if _, err := fmt.Sscanf(base[i+2:], "%d", &version); err != nil || version <= 0 {
		return "", 0
	}
	return base[:i], version
}

// storedFile is the on-disk format for model files.
type storedFile struct {
	Metadata       ModelMetadata
	CompressedData []byte
}

// Save stores a model under name and version. data must be gob encodable.
//
//nolint:gocritic // meta passed by value is acceptable for this write operation
func (s *Store) Save(ctx context.Context, name string, version int, data any, meta ModelMetadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	rawData := buf.Bytes()

	hash := sha256.Sum256(rawData)
	meta.Checksum = hex.EncodeToString(hash[:])

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(rawData); err != nil {
		return fmt.Errorf("compress model: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("finalize compression: %w", err)
	}

	meta.SizeBytes = int64(compressed.Len())
	meta.SavedAt = time.Now()
	meta.Name = name
	meta.Version = version

	// Write to a temp file and rename so readers never see a partial model.
	filename := s.modelPath(name, version)
	tmp, err := os.CreateTemp(s.baseDir, name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create model file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }() //nolint:errcheck // no-op after a successful rename

	sf := storedFile{Metadata: meta, CompressedData: compressed.Bytes()}
	if err := gob.NewEncoder(tmp).Encode(sf); err != nil {
		_ = tmp.Close() //nolint:errcheck // write error takes precedence
		return fmt.Errorf("write model file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close model file: %w", err)
	}
	if err := os.Rename(tmpName, filename); err != nil {
		return fmt.Errorf("rename model file: %w", err)
	}

	if current, ok := s.versions[name]; !ok || version > current {
		s.versions[name] = version
	}

	return nil
}

// Load decodes a stored model into target (a pointer). Version 0 loads
// the latest version.
func (s *Store) Load(ctx context.Context, name string, version int, target any) (*ModelMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if version == 0 {
		var ok bool
		version, ok = s.versions[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNoModel, name)
		}
	}

	sf, err := s.readFile(name, version)
	if err != nil {
		return nil, err
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, fmt.Errorf("decompress model: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	rawData, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("read decompressed data: %w", err)
	}

	hash := sha256.Sum256(rawData)
	if checksum := hex.EncodeToString(hash[:]); checksum != sf.Metadata.Checksum {
		return nil, fmt.Errorf("checksum mismatch: expected %s, got %s", sf.Metadata.Checksum, checksum)
	}

	if err := gob.NewDecoder(bytes.NewReader(rawData)).Decode(target); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}

	return &sf.Metadata, nil
}

func (s *Store) readFile(name string, version int) (*storedFile, error) {
	f, err := os.Open(s.modelPath(name, version)) //nolint:gosec // path is built from the store directory and model name
	if err != nil {
		return nil, fmt.Errorf("open model file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}
	return &sf, nil
}

// GetLatestVersion returns the latest version number for a model.
func (s *Store) GetLatestVersion(name string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	version, ok := s.versions[name]
	return version, ok
}

// ListModels returns metadata for the latest version of every model,
// sorted by name.
func (s *Store) ListModels(ctx context.Context) ([]ModelMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	models := make([]ModelMetadata, 0, len(s.versions))
	for name, version := range s.versions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sf, err := s.readFile(name, version)
		if err != nil {
			continue
		}
		models = append(models, sf.Metadata)
	}

	sort.Slice(models, func(i, j int) bool { return models[i].Name < models[j].Name })
	return models, nil
}

// Prune removes old versions of a model, keeping the newest keepVersions.
func (s *Store) Prune(ctx context.Context, name string, keepVersions int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if keepVersions < 1 {
		keepVersions = 1
	}

	files, err := s.listFiles()
	if err != nil {
		return fmt.Errorf("read directory: %w", err)
	}

	var versions []int
	for _, f := range files {
		if f.name == name {
			versions = append(versions, f.version)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(versions)))

	for i := keepVersions; i < len(versions); i++ {
		_ = os.Remove(s.modelPath(name, versions[i])) //nolint:errcheck // best-effort cleanup of old versions
	}

	return nil
}

// modelPath returns the file path for a model.
func (s *Store) modelPath(name string, version int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s_v%d.gob.gz", name, version))
}

// SparseVector is a term-frequency vector over a shared vocabulary.
// Terms are ascending vocabulary indices.
type SparseVector struct {
	Terms   []int
	Weights []float64
}

// ContentModelState is the serializable state of a content model.
type ContentModelState struct {
	// ItemIDs is ascending and parallel to Vectors.
	ItemIDs []int

	// Vocabulary maps a term index to its token.
	Vocabulary []string

	Vectors []SparseVector

	// Config values the vectors were built with.
	GenreWeight    float64
	CastWeight     float64
	DirectorWeight float64
	KeywordWeight  float64
	MaxCast        int
}

// ALSModelState is the serializable state of a latent factor model.
type ALSModelState struct {
	// UserIDs and ItemIDs are parallel to the factor rows.
	UserIDs []int
	ItemIDs []int

	// UserFactors and ItemFactors are row-major, NumFactors columns each.
	UserFactors []float64
	ItemFactors []float64

	NumFactors int
	GlobalMean float64

	// Config values the model was fitted with.
	Iterations     int
	Regularization float64
	MinItemRatings int
	Seed           int64
}

// Register gob types for serialization.
//
//nolint:gochecknoinits // gob.Register must be called in init for type registration
func init() {
	gob.Register(ContentModelState{})
	gob.Register(ALSModelState{})
	gob.Register(SparseVector{})
	gob.Register(ModelMetadata{})
	gob.Register(storedFile{})
}
