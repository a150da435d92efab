package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oguzatay/gundem/internal/models"
)

// The corpus file is a JSON array of article records. The url field is
// the stable identity: when the same url appears more than once, the
// later record supersedes the earlier one. Records with empty content
// are dropped on load so they never reach the chunker.

// Save writes articles to path atomically (temp file, then rename).
func Save(path string, articles []models.Article) error {
	data, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode corpus: %v", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".corpus-*.json")
	if err != nil {
		return fmt.Errorf("failed to create corpus temp file: %v", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write corpus: %v", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), path)
}

// Load reads the corpus, deduplicates by url (last record wins, keeping
// the first occurrence's position) and excludes empty-content records.
func Load(path string) ([]models.Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus %s: %w", path, err)
	}

	var raw []models.Article
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse corpus %s: %v", path, err)
	}

	position := make(map[string]int)
	var articles []models.Article
	for _, a := range raw {
		if a.URL == "" || a.Content == "" {
			continue
		}
		if i, ok := position[a.URL]; ok {
			articles[i] = a
			continue
		}
		position[a.URL] = len(articles)
		articles = append(articles, a)
	}

	return articles, nil
}
