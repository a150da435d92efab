package index

import (
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/oguzatay/gundem/internal/models"
)

// MetricCosine is the only similarity metric this package writes. A
// persisted artifact declaring anything else cannot be served.
const MetricCosine = "cosine"

// Entry pairs a chunk with its embedding vector.
type Entry struct {
	Chunk  models.Chunk
	Vector []float32
}

// File is an exact nearest-neighbor index held in memory and persisted
// as a single on-disk artifact. It is built wholesale per ingestion run
// and never mutated afterwards.
type File struct {
	dimension int
	entries   []Entry
}

// Build constructs a fresh index. It fails on a duplicate chunk id or on
// any vector whose dimension differs from the declared one.
func Build(dimension int, entries []Entry) (*File, error) {
	if dimension < 1 {
		return nil, fmt.Errorf("index dimension must be positive, got %d", dimension)
	}
	if err := validateEntries(dimension, entries); err != nil {
		return nil, err
	}

	owned := make([]Entry, len(entries))
	copy(owned, entries)

	return &File{
		dimension: dimension,
		entries:   owned,
	}, nil
}

func validateEntries(dimension int, entries []Entry) error {
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		id := entry.Chunk.ID()
		if seen[id] {
			return &DuplicateEntryError{ID: id}
		}
		seen[id] = true
		if len(entry.Vector) != dimension {
			return &DimensionMismatchError{Want: dimension, Got: len(entry.Vector)}
		}
	}
	return nil
}

func (f *File) Size() int {
	return len(f.entries)
}

func (f *File) Dimension() int {
	return f.dimension
}

// Search returns up to fetchK entries by descending cosine similarity to
// the query, ties broken by insertion order. An empty index or fetchK<=0
// yields an empty result, not an error.
func (f *File) Search(query []float32, fetchK int) ([]models.ScoredChunk, error) {
	if len(query) != f.dimension {
		return nil, &DimensionMismatchError{Want: len(query), Got: f.dimension}
	}
	if fetchK <= 0 || len(f.entries) == 0 {
		return nil, nil
	}
	if fetchK > len(f.entries) {
		fetchK = len(f.entries)
	}

	scored := make([]models.ScoredChunk, len(f.entries))
	for i, entry := range f.entries {
		scored[i] = models.ScoredChunk{
			Chunk:  entry.Chunk,
			Score:  Cosine(query, entry.Vector),
			Vector: entry.Vector,
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored[:fetchK], nil
}

type filePayload struct {
	Dimension int
	Metric    string
	Entries   []Entry
}

// Save persists the index atomically: the artifact is written to a temp
// file in the same directory, then renamed over path, so a reader never
// observes a partially written index.
func (f *File) Save(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".index-*")
	if err != nil {
		return fmt.Errorf("failed to create index temp file: %v", err)
	}

	payload := filePayload{
		Dimension: f.dimension,
		Metric:    MetricCosine,
		Entries:   f.entries,
	}

	if err := gob.NewEncoder(tmp).Encode(payload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to encode index: %v", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), path)
}

// Load reads a persisted index and verifies that its declared dimension
// and metric agree with the embedder currently configured. Any process
// with a matching embedder can serve an artifact written by another.
func Load(path string, dimension int) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, &UnavailableError{Path: path, Err: err}
	}
	defer fh.Close()

	var payload filePayload
	if err := gob.NewDecoder(fh).Decode(&payload); err != nil {
		return nil, &UnavailableError{Path: path, Err: fmt.Errorf("corrupt index artifact: %v", err)}
	}

	if payload.Metric != MetricCosine {
		return nil, &UnavailableError{Path: path, Err: fmt.Errorf("unsupported metric %q, expected %q",
			payload.Metric, MetricCosine)}
	}
	if payload.Dimension != dimension {
		return nil, &DimensionMismatchError{Want: dimension, Got: payload.Dimension}
	}
	if err := validateEntries(payload.Dimension, payload.Entries); err != nil {
		return nil, &UnavailableError{Path: path, Err: err}
	}

	return &File{
		dimension: payload.Dimension,
		entries:   payload.Entries,
	}, nil
}

// Cosine returns the cosine similarity of two vectors, 0 when either has
// zero magnitude.
func Cosine(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
