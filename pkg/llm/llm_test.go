package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmbedderWithConfig(t *testing.T) {
	emb, err := NewEmbedderWithConfig(EmbedderConfig{
		Model:     "nomic-embed-text:latest",
		BaseURL:   "http://localhost:11434",
		Dimension: 768,
	})
	require.NoError(t, err)
	assert.Equal(t, 768, emb.Dimension())
}

func TestNewEmbedderRejectsNegativeDimension(t *testing.T) {
	_, err := NewEmbedderWithConfig(EmbedderConfig{Dimension: -1})
	assert.Error(t, err)
}

func TestEmbedRejectsEmptyText(t *testing.T) {
	emb, err := NewEmbedderWithConfig(EmbedderConfig{})
	require.NoError(t, err)

	_, err = emb.Embed(context.Background(), "   ")
	require.Error(t, err)

	var embedErr *EmbedError
	assert.True(t, errors.As(err, &embedErr))
}

func TestEmbedManyEmptyInput(t *testing.T) {
	emb, err := NewEmbedderWithConfig(EmbedderConfig{})
	require.NoError(t, err)

	vectors, err := emb.EmbedMany(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
}

func TestNewGeneratorWithConfig(t *testing.T) {
	gen, err := NewGeneratorWithConfig(GeneratorConfig{
		Model:       "mistral",
		BaseURL:     "http://localhost:11434",
		Temperature: 0.3,
	})
	require.NoError(t, err)
	assert.NotNil(t, gen)
}

func TestNewGeneratorRejectsBadConfig(t *testing.T) {
	_, err := NewGeneratorWithConfig(GeneratorConfig{Temperature: 3.0})
	assert.Error(t, err)

	_, err = NewGeneratorWithConfig(GeneratorConfig{Temperature: 0.3, MaxTokens: -1})
	assert.Error(t, err)
}

func TestErrorMessages(t *testing.T) {
	cause := errors.New("connection refused")

	embedErr := &EmbedError{Err: cause}
	assert.Contains(t, embedErr.Error(), "embedding failed")
	assert.ErrorIs(t, embedErr, cause)

	genErr := &GenerationError{Attempts: 2, Err: cause}
	assert.Contains(t, genErr.Error(), "2 attempts")
	assert.ErrorIs(t, genErr, cause)
}
