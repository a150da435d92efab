package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/oguzatay/gundem/internal/models"
)

type ChunkerConfig struct {
	ChunkSize    int // maximum chunk length in bytes
	ChunkOverlap int // bytes of context shared by consecutive chunks
}

type Chunker struct {
	config ChunkerConfig
}

// Separators tried in order when a window must be cut: paragraph break,
// sentence end, line break, word break. A hard cut is the last resort.
var separators = []string{"\n\n", ". ", "! ", "? ", "\n", " "}

func NewWithConfig(config ChunkerConfig) (Chunker, error) {
	if config.ChunkSize == 0 {
		config.ChunkSize = 1000
	}
	if config.ChunkOverlap == 0 {
		config.ChunkOverlap = 200
	}
	if config.ChunkSize < 1 {
		return Chunker{}, fmt.Errorf("chunk size must be positive, got %d", config.ChunkSize)
	}
	if config.ChunkOverlap < 0 || config.ChunkOverlap >= config.ChunkSize {
		return Chunker{}, fmt.Errorf("chunk overlap %d must be non-negative and less than chunk size %d",
			config.ChunkOverlap, config.ChunkSize)
	}

	return Chunker{config: config}, nil
}

// Chunk splits the article body into overlapping windows no longer than
// ChunkSize, cutting at the strongest separator available inside each
// window. Chunks carry byte spans into the original body; consecutive
// spans overlap by about ChunkOverlap bytes and together cover the body
// exactly. The output is fully determined by the body and the config.
//
// A body shorter than ChunkSize yields a single chunk. A body that is
// empty or all whitespace yields no chunks.
func (c Chunker) Chunk(article models.Article) []models.Chunk {
	body := article.Content
	if strings.TrimSpace(body) == "" {
		return nil
	}

	var chunks []models.Chunk
	emit := func(start, end int) {
		chunks = append(chunks, models.Chunk{
			ArticleURL: article.URL,
			Headline:   article.Headline,
			Ordinal:    len(chunks),
			Text:       body[start:end],
			Start:      start,
			End:        end,
		})
	}

	start := 0
	for len(body)-start > c.config.ChunkSize {
		end := c.cut(body, start, start+c.config.ChunkSize)
		emit(start, end)

		next := runeFloor(body, end-c.config.ChunkOverlap)
		if next <= start {
			next = start + 1 // guarantee forward progress
			for next < len(body) && !utf8.RuneStart(body[next]) {
				next++
			}
		}
		start = next
	}
	emit(start, len(body))

	return chunks
}

// cut picks the end of the chunk starting at start, at most limit. It
// prefers ending just after the last occurrence of the strongest
// separator within the window; if no separator occurs, it cuts hard at
// the limit (backed off to a rune boundary).
func (c Chunker) cut(body string, start, limit int) int {
	window := body[start:limit]
	for _, sep := range separators {
		if idx := strings.LastIndex(window, sep); idx >= 0 {
			end := start + idx + len(sep)
			if end > start {
				return end
			}
		}
	}
	return runeFloor(body, limit)
}

// runeFloor moves i down to the nearest UTF-8 rune boundary.
func runeFloor(s string, i int) int {
	if i <= 0 {
		return 0
	}
	if i >= len(s) {
		return len(s)
	}
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}
