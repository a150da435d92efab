package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Scraper struct {
		BaseURL         string `yaml:"base_url"`
		ListPath        string `yaml:"list_path"`
		ListSelector    string `yaml:"list_selector"`
		ContentSelector string `yaml:"content_selector"`
		DateSelector    string `yaml:"date_selector"`
		UserAgent       string `yaml:"user_agent"`
		PoliteDelaySecs int    `yaml:"polite_delay_secs"`
		TimeoutSecs     int    `yaml:"timeout_secs"`
	} `yaml:"scraper"`

	Corpus struct {
		Path string `yaml:"path"`
	} `yaml:"corpus"`

	Chunker struct {
		ChunkSize    int `yaml:"chunk_size"`
		ChunkOverlap int `yaml:"chunk_overlap"`
	} `yaml:"chunker"`

	Embedder struct {
		BaseURL   string `yaml:"base_url"`
		Model     string `yaml:"model"`
		Dimension int    `yaml:"dimension"`
		Workers   int    `yaml:"workers"`
		BatchSize int    `yaml:"batch_size"`
	} `yaml:"embedder"`

	Index struct {
		Backend string `yaml:"backend"`
		Path    string `yaml:"path"`
	} `yaml:"index"`

	Database struct {
		URL       string `yaml:"url"`
		TableName string `yaml:"table_name"`
		BatchSize int    `yaml:"batch_size"`
	} `yaml:"database"`

	Retriever struct {
		K      int     `yaml:"k"`
		FetchK int     `yaml:"fetch_k"`
		Lambda float64 `yaml:"lambda"`
	} `yaml:"retriever"`

	LLM struct {
		BaseURL        string  `yaml:"base_url"`
		Model          string  `yaml:"model"`
		MaxTokens      int     `yaml:"max_tokens"`
		Temperature    float64 `yaml:"temperature"`
		TimeoutSecs    int     `yaml:"timeout_secs"`
		FallbackPhrase string  `yaml:"fallback_phrase"`
	} `yaml:"llm"`
}

// DefaultFallbackPhrase is the literal answer the generator is instructed
// to return when the supplied context contains nothing relevant.
const DefaultFallbackPhrase = "I don't know based on the indexed articles."

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/gundem/config.yaml"),
			"/etc/gundem/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	// Merge with environment variables
	mergeWithEnv(&config)

	// Apply defaults for unset values
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	applyDefaults(config)
	mergeWithEnv(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.Scraper.ListSelector == "" {
		config.Scraper.ListSelector = "div.title"
	}
	if config.Scraper.ContentSelector == "" {
		config.Scraper.ContentSelector = "div.haber-metni"
	}
	if config.Scraper.DateSelector == "" {
		config.Scraper.DateSelector = "div.tarih-bolumu time"
	}
	if config.Scraper.UserAgent == "" {
		config.Scraper.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
			"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	}
	if config.Scraper.PoliteDelaySecs == 0 {
		// robots.txt on the source site asks for Crawl-delay: 10
		config.Scraper.PoliteDelaySecs = 10
	}
	if config.Scraper.TimeoutSecs == 0 {
		config.Scraper.TimeoutSecs = 10
	}

	if config.Corpus.Path == "" {
		config.Corpus.Path = "corpus.json"
	}

	if config.Chunker.ChunkSize == 0 {
		config.Chunker.ChunkSize = 1000
	}
	if config.Chunker.ChunkOverlap == 0 {
		config.Chunker.ChunkOverlap = 200
	}

	if config.Embedder.Model == "" {
		config.Embedder.Model = "nomic-embed-text:latest"
	}
	if config.Embedder.BaseURL == "" {
		config.Embedder.BaseURL = "http://localhost:11434"
	}
	if config.Embedder.Dimension == 0 {
		config.Embedder.Dimension = 768
	}
	if config.Embedder.Workers == 0 {
		config.Embedder.Workers = 4
	}
	if config.Embedder.BatchSize == 0 {
		config.Embedder.BatchSize = 32
	}

	if config.Index.Backend == "" {
		config.Index.Backend = "file"
	}
	if config.Index.Path == "" {
		config.Index.Path = "news.index"
	}

	if config.Database.TableName == "" {
		config.Database.TableName = "chunks"
	}
	if config.Database.BatchSize == 0 {
		config.Database.BatchSize = 100
	}

	if config.Retriever.K == 0 {
		config.Retriever.K = 10
	}
	if config.Retriever.FetchK == 0 {
		config.Retriever.FetchK = 30
	}
	if config.Retriever.Lambda == 0 {
		config.Retriever.Lambda = 0.7
	}

	if config.LLM.Model == "" {
		config.LLM.Model = "mistral"
	}
	if config.LLM.BaseURL == "" {
		config.LLM.BaseURL = "http://localhost:11434"
	}
	if config.LLM.MaxTokens == 0 {
		config.LLM.MaxTokens = 2000
	}
	if config.LLM.Temperature == 0 {
		config.LLM.Temperature = 0.3
	}
	if config.LLM.TimeoutSecs == 0 {
		config.LLM.TimeoutSecs = 60
	}
	if config.LLM.FallbackPhrase == "" {
		config.LLM.FallbackPhrase = DefaultFallbackPhrase
	}
}

func mergeWithEnv(config *Config) {
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		config.LLM.BaseURL = baseURL
		config.Embedder.BaseURL = baseURL
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Database.URL = dbURL
	}
}
