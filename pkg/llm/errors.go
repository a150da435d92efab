package llm

import "fmt"

// EmbedError wraps any failure to produce an embedding. Callers never
// receive a zero vector in place of an error.
type EmbedError struct {
	Err error
}

func (e *EmbedError) Error() string {
	return fmt.Sprintf("embedding failed: %v", e.Err)
}

func (e *EmbedError) Unwrap() error { return e.Err }

// GenerationError is surfaced after the model call has failed and the
// single permitted retry has been spent.
type GenerationError struct {
	Attempts int
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
