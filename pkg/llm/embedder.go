package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/llms/ollama"
)

// EmbedderConfig represents the configuration for an embedding model.
type EmbedderConfig struct {
	Model     string
	BaseURL   string // Ollama server URL
	Dimension int    // declared vector dimension, must match the model's output
	Workers   int    // concurrent batch requests during bulk embedding
	BatchSize int    // texts per request
}

// OllamaEmbedder turns text into fixed-dimension vectors via an Ollama
// embedding model. It is stateless from the caller's perspective.
type OllamaEmbedder struct {
	config EmbedderConfig
	llm    *ollama.LLM
}

func NewEmbedderWithConfig(config EmbedderConfig) (*OllamaEmbedder, error) {
	if config.Model == "" {
		config.Model = "nomic-embed-text:latest"
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434"
	}
	if config.Dimension == 0 {
		config.Dimension = 768
	}
	if config.Dimension < 1 {
		return nil, fmt.Errorf("embedder dimension must be positive, got %d", config.Dimension)
	}
	if config.Workers < 1 {
		config.Workers = 4
	}
	if config.BatchSize < 1 {
		config.BatchSize = 32
	}

	emb, err := ollama.New(
		ollama.WithModel(config.Model),
		ollama.WithServerURL(config.BaseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding model: %w", err)
	}

	return &OllamaEmbedder{
		config: config,
		llm:    emb,
	}, nil
}

// Dimension returns the declared vector dimension.
func (e *OllamaEmbedder) Dimension() int {
	return e.config.Dimension
}

// Embed returns the vector for a single text.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &EmbedError{Err: errors.New("cannot embed empty text")}
	}

	vectors, err := e.llm.CreateEmbedding(ctx, []string{text})
	if err != nil {
		return nil, &EmbedError{Err: err}
	}
	if len(vectors) != 1 {
		return nil, &EmbedError{Err: fmt.Errorf("expected 1 vector, got %d", len(vectors))}
	}
	if err := e.checkDimension(vectors[0]); err != nil {
		return nil, err
	}

	return vectors[0], nil
}

// EmbedMany embeds texts in parallel batches over a bounded worker pool.
// The result preserves input order one-to-one: result[i] is the vector
// for texts[i] regardless of which worker produced it.
func (e *OllamaEmbedder) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	type batch struct {
		offset int
		texts  []string
	}

	jobs := make(chan batch)
	results := make([][]float32, len(texts))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}

	workers := e.config.Workers
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for b := range jobs {
				vectors, err := e.llm.CreateEmbedding(ctx, b.texts)
				if err != nil {
					fail(&EmbedError{Err: err})
					continue
				}
				if len(vectors) != len(b.texts) {
					fail(&EmbedError{Err: fmt.Errorf("expected %d vectors, got %d", len(b.texts), len(vectors))})
					continue
				}
				for i, v := range vectors {
					if err := e.checkDimension(v); err != nil {
						fail(err)
						break
					}
					results[b.offset+i] = v
				}
			}
		}()
	}

submit:
	for offset := 0; offset < len(texts); offset += e.config.BatchSize {
		end := offset + e.config.BatchSize
		if end > len(texts) {
			end = len(texts)
		}
		select {
		case jobs <- batch{offset: offset, texts: texts[offset:end]}:
		case <-ctx.Done():
			break submit
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

func (e *OllamaEmbedder) checkDimension(vector []float32) error {
	if len(vector) != e.config.Dimension {
		return &EmbedError{Err: fmt.Errorf("model returned dimension %d, embedder declares %d",
			len(vector), e.config.Dimension)}
	}
	return nil
}
