package index_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/oguzatay/gundem/internal/models"
	"github.com/oguzatay/gundem/pkg/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(url string, ordinal int, vector []float32) index.Entry {
	return index.Entry{
		Chunk: models.Chunk{
			ArticleURL: url,
			Ordinal:    ordinal,
			Text:       "chunk text",
		},
		Vector: vector,
	}
}

func TestBuildRejectsDuplicateChunkID(t *testing.T) {
	entries := []index.Entry{
		entry("https://example.com/1", 0, []float32{1, 0}),
		entry("https://example.com/1", 0, []float32{0, 1}),
	}

	_, err := index.Build(2, entries)
	require.Error(t, err)

	var dup *index.DuplicateEntryError
	assert.True(t, errors.As(err, &dup))
}

func TestBuildRejectsDimensionMismatch(t *testing.T) {
	entries := []index.Entry{
		entry("https://example.com/1", 0, []float32{1, 0, 0}),
	}

	_, err := index.Build(2, entries)
	require.Error(t, err)

	var mismatch *index.DimensionMismatchError
	assert.True(t, errors.As(err, &mismatch))
}

func TestSearchOrdersByDescendingSimilarity(t *testing.T) {
	idx, err := index.Build(2, []index.Entry{
		entry("https://example.com/1", 0, []float32{0, 1}),
		entry("https://example.com/2", 0, []float32{1, 0}),
		entry("https://example.com/3", 0, []float32{0.9, 0.1}),
	})
	require.NoError(t, err)

	results, err := idx.Search([]float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "https://example.com/2", results[0].Chunk.ArticleURL)
	assert.Equal(t, "https://example.com/3", results[1].Chunk.ArticleURL)
	assert.Greater(t, results[0].Score, results[1].Score)
	assert.NotNil(t, results[0].Vector)
}

func TestSearchClampsFetchK(t *testing.T) {
	idx, err := index.Build(2, []index.Entry{
		entry("https://example.com/1", 0, []float32{1, 0}),
		entry("https://example.com/2", 0, []float32{0, 1}),
	})
	require.NoError(t, err)

	results, err := idx.Search([]float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchTiesKeepInsertionOrder(t *testing.T) {
	idx, err := index.Build(2, []index.Entry{
		entry("https://example.com/a", 0, []float32{1, 0}),
		entry("https://example.com/b", 0, []float32{1, 0}),
	})
	require.NoError(t, err)

	results, err := idx.Search([]float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "https://example.com/a", results[0].Chunk.ArticleURL)
	assert.Equal(t, "https://example.com/b", results[1].Chunk.ArticleURL)
}

func TestSearchEmptyIndex(t *testing.T) {
	idx, err := index.Build(2, nil)
	require.NoError(t, err)

	results, err := idx.Search([]float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "news.index")

	idx, err := index.Build(2, []index.Entry{
		entry("https://example.com/1", 0, []float32{1, 0}),
		entry("https://example.com/1", 1, []float32{0, 1}),
	})
	require.NoError(t, err)
	require.NoError(t, idx.Save(path))

	loaded, err := index.Load(path, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Size())
	assert.Equal(t, 2, loaded.Dimension())

	results, err := loaded.Search([]float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0, results[0].Chunk.Ordinal)
}

func TestLoadDimensionGuard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "news.index")

	vec := make([]float32, 384)
	vec[0] = 1
	idx, err := index.Build(384, []index.Entry{entry("https://example.com/1", 0, vec)})
	require.NoError(t, err)
	require.NoError(t, idx.Save(path))

	// An embedder declaring 768 must not be able to serve a 384 index.
	_, err = index.Load(path, 768)
	require.Error(t, err)

	var mismatch *index.DimensionMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, 768, mismatch.Want)
	assert.Equal(t, 384, mismatch.Got)
}

func TestLoadMissingIndex(t *testing.T) {
	_, err := index.Load(filepath.Join(t.TempDir(), "absent.index"), 2)
	require.Error(t, err)

	var unavailable *index.UnavailableError
	assert.True(t, errors.As(err, &unavailable))
}

func TestLoadCorruptIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.index")
	require.NoError(t, os.WriteFile(path, []byte("not a gob payload"), 0644))

	_, err := index.Load(path, 2)
	require.Error(t, err)

	var unavailable *index.UnavailableError
	assert.True(t, errors.As(err, &unavailable))
}
