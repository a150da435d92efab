package composer

import (
	"context"
	"fmt"
	"strings"

	"github.com/oguzatay/gundem/internal/models"
	"github.com/oguzatay/gundem/internal/types"
)

// State tracks where a composition attempt is in its lifecycle:
// Idle -> Retrieving -> Composing -> Generated | Failed.
type State int

const (
	StateIdle State = iota
	StateRetrieving
	StateComposing
	StateGenerated
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRetrieving:
		return "retrieving"
	case StateComposing:
		return "composing"
	case StateGenerated:
		return "generated"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Retriever selects grounding chunks for a query vector.
type Retriever interface {
	Retrieve(query []float32) ([]models.ScoredChunk, error)
}

// ContextDelimiter separates chunks in the rendered context block.
const ContextDelimiter = "\n\n---\n\n"

type Config struct {
	SystemPrompt   string // when empty, built from the fallback phrase
	FallbackPhrase string
	Delimiter      string
}

// Composer turns a user question into a grounded answer: it embeds the
// question, retrieves context, renders a deterministic context block
// and asks the generator for an answer constrained to that context.
type Composer struct {
	embedder  types.Embedder
	retriever Retriever
	generator types.Generator
	config    Config
	state     State
}

func NewWithConfig(embedder types.Embedder, retriever Retriever, generator types.Generator, config Config) (*Composer, error) {
	if embedder == nil || retriever == nil || generator == nil {
		return nil, fmt.Errorf("composer requires an embedder, a retriever and a generator")
	}
	if config.FallbackPhrase == "" {
		config.FallbackPhrase = "I don't know based on the indexed articles."
	}
	if config.Delimiter == "" {
		config.Delimiter = ContextDelimiter
	}
	if config.SystemPrompt == "" {
		config.SystemPrompt = defaultSystemPrompt(config.FallbackPhrase)
	}

	return &Composer{
		embedder:  embedder,
		retriever: retriever,
		generator: generator,
		config:    config,
		state:     StateIdle,
	}, nil
}

func defaultSystemPrompt(fallback string) string {
	return "You are an assistant answering questions about recent news articles. " +
		"Answer using only the information in the supplied context, matching names, " +
		"people and events by meaning rather than exact wording. " +
		"End your answer with the source links you used, listed under a 'Sources:' heading. " +
		"If the context contains no relevant information, reply exactly with: " + fallback
}

// Answer is a generated answer together with the distinct citation list
// drawn from the chunks that were actually surfaced to the generator.
type Answer struct {
	Text    string
	Sources []string
}

// Ask runs the full pipeline for one question. The generator is invoked
// even when retrieval comes back empty: the instruction still stands and
// the model is expected to answer with the fallback phrase, so that path
// stays exercised. On any failure the typed error is returned unchanged
// and no conversation state is touched here.
func (c *Composer) Ask(ctx context.Context, question string) (Answer, error) {
	c.state = StateRetrieving

	query, err := c.embedder.Embed(ctx, question)
	if err != nil {
		return c.fail(err)
	}

	chunks, err := c.retriever.Retrieve(query)
	if err != nil {
		return c.fail(err)
	}

	c.state = StateComposing
	contextBlock := RenderContext(chunks, c.config.Delimiter)

	text, err := c.generator.Generate(ctx, c.config.SystemPrompt, contextBlock, question)
	if err != nil {
		return c.fail(err)
	}

	c.state = StateGenerated
	return Answer{
		Text:    text,
		Sources: sourceList(chunks),
	}, nil
}

// State reports the outcome of the most recent Ask.
func (c *Composer) State() State {
	return c.state
}

// FallbackPhrase returns the configured "no grounding" answer.
func (c *Composer) FallbackPhrase() string {
	return c.config.FallbackPhrase
}

func (c *Composer) fail(err error) (Answer, error) {
	c.state = StateFailed
	return Answer{}, err
}

// RenderContext renders chunks into the context block shown to the
// generator: each chunk's citation line followed by its text, in
// retrieval order, separated by the delimiter.
func RenderContext(chunks []models.ScoredChunk, delimiter string) string {
	parts := make([]string, 0, len(chunks))
	for _, sc := range chunks {
		parts = append(parts, fmt.Sprintf("Source: %s\n%s", sc.Chunk.ArticleURL, sc.Chunk.Text))
	}
	return strings.Join(parts, delimiter)
}

func sourceList(chunks []models.ScoredChunk) []string {
	var sources []string
	seen := make(map[string]bool)
	for _, sc := range chunks {
		url := sc.Chunk.ArticleURL
		if !seen[url] {
			sources = append(sources, url)
			seen[url] = true
		}
	}
	return sources
}
