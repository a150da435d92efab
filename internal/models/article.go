package models

import (
	"fmt"
	"time"
)

// Article is a normalized scraped news article. The URL is its stable
// identity: re-ingesting under the same URL supersedes the stored record.
type Article struct {
	URL      string `json:"url"`
	Headline string `json:"headline"`
	Date     string `json:"date"`
	Content  string `json:"content"`
}

// Chunk is one bounded window of an article body, the unit of embedding
// and retrieval. Start and End are byte offsets into the parent body,
// half-open, so Article.Content[Start:End] == Text.
type Chunk struct {
	ArticleURL string
	Headline   string
	Ordinal    int
	Text       string
	Start      int
	End        int
}

// ID is unique across the index as long as article URLs are unique.
func (c Chunk) ID() string {
	return fmt.Sprintf("%s#%d", c.ArticleURL, c.Ordinal)
}

// ScoredChunk is a retrieval candidate: a chunk, its similarity to the
// query, and its stored vector (needed for redundancy scoring).
type ScoredChunk struct {
	Chunk  Chunk
	Score  float32
	Vector []float32
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry in a session transcript.
type Turn struct {
	Role      Role
	Text      string
	Timestamp time.Time
}
