package types

import (
	"context"

	"github.com/oguzatay/gundem/internal/models"
)

// Core interfaces

// Embedder maps UTF-8 text to fixed-length dense vectors. Dimension is
// fixed per instance and must match between ingestion and query time.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedMany(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// Generator produces plain text from a system instruction, a context
// block, and the user question.
type Generator interface {
	Generate(ctx context.Context, system, contextBlock, question string) (string, error)
}

// Searcher answers nearest-neighbor queries over an indexed chunk set.
// Results are ordered by descending similarity; fetchK is clamped to the
// index size.
type Searcher interface {
	Search(query []float32, fetchK int) ([]models.ScoredChunk, error)
	Size() int
}
