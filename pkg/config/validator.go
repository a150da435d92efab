package config

import (
	"fmt"
	"net/url"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate Scraper config
	if c.Scraper.BaseURL != "" {
		if u, err := url.Parse(c.Scraper.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, ValidationError{
				Field:   "scraper.base_url",
				Message: "invalid scraper base URL",
			})
		}
	}

	if c.Scraper.PoliteDelaySecs < 1 {
		errors = append(errors, ValidationError{
			Field:   "scraper.polite_delay_secs",
			Message: "polite_delay_secs must be at least 1",
		})
	}

	if c.Scraper.TimeoutSecs < 1 {
		errors = append(errors, ValidationError{
			Field:   "scraper.timeout_secs",
			Message: "timeout_secs must be positive",
		})
	}

	// Validate Chunker config
	if c.Chunker.ChunkSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "chunker.chunk_size",
			Message: "chunk_size must be positive",
		})
	}

	if c.Chunker.ChunkOverlap < 0 || c.Chunker.ChunkOverlap >= c.Chunker.ChunkSize {
		errors = append(errors, ValidationError{
			Field:   "chunker.chunk_overlap",
			Message: "chunk_overlap must be non-negative and less than chunk_size",
		})
	}

	// Validate Embedder config
	if c.Embedder.Dimension < 1 {
		errors = append(errors, ValidationError{
			Field:   "embedder.dimension",
			Message: "dimension must be positive",
		})
	}

	if c.Embedder.Workers < 1 {
		errors = append(errors, ValidationError{
			Field:   "embedder.workers",
			Message: "workers must be positive",
		})
	}

	if _, err := url.Parse(c.Embedder.BaseURL); err != nil {
		errors = append(errors, ValidationError{
			Field:   "embedder.base_url",
			Message: "invalid Ollama base URL",
		})
	}

	// Validate Index config
	if c.Index.Backend != "file" && c.Index.Backend != "pgvector" {
		errors = append(errors, ValidationError{
			Field:   "index.backend",
			Message: fmt.Sprintf("unknown backend %q, expected file or pgvector", c.Index.Backend),
		})
	}

	if c.Index.Backend == "pgvector" && c.Database.URL == "" {
		errors = append(errors, ValidationError{
			Field:   "database.url",
			Message: "database URL is required for the pgvector backend",
		})
	}

	if c.Database.URL != "" {
		if _, err := url.Parse(c.Database.URL); err != nil {
			errors = append(errors, ValidationError{
				Field:   "database.url",
				Message: "invalid database URL",
			})
		}
	}

	// Validate Retriever config
	if c.Retriever.K < 0 {
		errors = append(errors, ValidationError{
			Field:   "retriever.k",
			Message: "k must be non-negative",
		})
	}

	if c.Retriever.FetchK < c.Retriever.K {
		errors = append(errors, ValidationError{
			Field:   "retriever.fetch_k",
			Message: "fetch_k must be at least k",
		})
	}

	if c.Retriever.Lambda < 0 || c.Retriever.Lambda > 1 {
		errors = append(errors, ValidationError{
			Field:   "retriever.lambda",
			Message: "lambda must be between 0 and 1",
		})
	}

	// Validate LLM config
	if c.LLM.BaseURL == "" {
		errors = append(errors, ValidationError{
			Field:   "llm.base_url",
			Message: "Ollama base URL is required",
		})
	}

	if c.LLM.MaxTokens < 1 || c.LLM.MaxTokens > 4096 {
		errors = append(errors, ValidationError{
			Field:   "llm.max_tokens",
			Message: "max_tokens must be between 1 and 4096",
		})
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "llm.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	if _, err := url.Parse(c.LLM.BaseURL); err != nil {
		errors = append(errors, ValidationError{
			Field:   "llm.base_url",
			Message: "invalid Ollama base URL",
		})
	}

	return errors
}
