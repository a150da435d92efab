package corpus_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oguzatay/gundem/internal/models"
	"github.com/oguzatay/gundem/pkg/corpus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.json")

	articles := []models.Article{
		{URL: "https://example.com/1", Headline: "First", Date: "21 Kasim 2025", Content: "Body one."},
		{URL: "https://example.com/2", Headline: "Second", Date: "21 Kasim 2025", Content: "Body two."},
	}

	require.NoError(t, corpus.Save(path, articles))

	loaded, err := corpus.Load(path)
	require.NoError(t, err)
	assert.Equal(t, articles, loaded)
}

func TestLoadExcludesEmptyContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.json")

	articles := []models.Article{
		{URL: "https://example.com/1", Headline: "Kept", Content: "Body."},
		{URL: "https://example.com/2", Headline: "Empty", Content: ""},
		{URL: "", Headline: "No identity", Content: "Body."},
	}
	require.NoError(t, corpus.Save(path, articles))

	loaded, err := corpus.Load(path)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "https://example.com/1", loaded[0].URL)
}

func TestLoadLastRecordWinsPerURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.json")

	articles := []models.Article{
		{URL: "https://example.com/1", Headline: "Old", Content: "Old body."},
		{URL: "https://example.com/2", Headline: "Other", Content: "Other body."},
		{URL: "https://example.com/1", Headline: "New", Content: "New body."},
	}
	require.NoError(t, corpus.Save(path, articles))

	loaded, err := corpus.Load(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	// The superseding record wins but keeps the original position.
	assert.Equal(t, "New", loaded[0].Headline)
	assert.Equal(t, "Other", loaded[1].Headline)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := corpus.Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := corpus.Load(path)
	assert.Error(t, err)
}
