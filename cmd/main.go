package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/oguzatay/gundem/internal/models"
	"github.com/oguzatay/gundem/internal/types"
	"github.com/oguzatay/gundem/pkg/chunker"
	"github.com/oguzatay/gundem/pkg/composer"
	cfgPkg "github.com/oguzatay/gundem/pkg/config"
	"github.com/oguzatay/gundem/pkg/corpus"
	"github.com/oguzatay/gundem/pkg/index"
	"github.com/oguzatay/gundem/pkg/llm"
	"github.com/oguzatay/gundem/pkg/retriever"
	"github.com/oguzatay/gundem/pkg/scraper"
	"github.com/oguzatay/gundem/pkg/session"
	"github.com/schollz/progressbar/v3"
)

func main() {
	var configPath string
	var ingest bool
	var siteURL string
	var listPath string

	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.BoolVar(&ingest, "ingest", false, "Scrape the news site and rebuild the index before chatting")
	flag.StringVar(&siteURL, "site-url", "", "News site base URL (overrides config)")
	flag.StringVar(&listPath, "list-path", "", "Path of the article list page (overrides config)")
	flag.Parse()

	config, err := cfgPkg.LoadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}

	if siteURL != "" {
		config.Scraper.BaseURL = siteURL
	}
	if listPath != "" {
		config.Scraper.ListPath = listPath
	}

	if errs := config.Validate(); len(errs) > 0 {
		for _, e := range errs {
			color.Red("config: %v", e)
		}
		os.Exit(1)
	}

	if err := run(config, ingest); err != nil {
		log.Fatal(err)
	}
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("items"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func run(config *cfgPkg.Config, ingest bool) error {
	embedder, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{
		Model:     config.Embedder.Model,
		BaseURL:   config.Embedder.BaseURL,
		Dimension: config.Embedder.Dimension,
		Workers:   config.Embedder.Workers,
		BatchSize: config.Embedder.BatchSize,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize embedder: %v", err)
	}

	if ingest {
		if err := runIngest(config, embedder); err != nil {
			return err
		}
	}

	return runChat(config, embedder)
}

// runIngest refreshes the corpus from the news site and rebuilds the
// index wholesale. The new artifact replaces the old one atomically, so
// a serving process never reads a half-built index.
func runIngest(config *cfgPkg.Config, embedder types.Embedder) error {
	ctx := context.Background()

	if config.Scraper.BaseURL == "" {
		return fmt.Errorf("scraper base URL is required for ingestion (use -site-url or the config file)")
	}

	scrapingBar := getSpinner("📰 Fetching articles...")
	s, err := scraper.NewWithConfig(scraper.ScraperConfig{
		BaseURL:         config.Scraper.BaseURL,
		ListPath:        config.Scraper.ListPath,
		ListSelector:    config.Scraper.ListSelector,
		ContentSelector: config.Scraper.ContentSelector,
		DateSelector:    config.Scraper.DateSelector,
		UserAgent:       config.Scraper.UserAgent,
		PoliteDelay:     time.Duration(config.Scraper.PoliteDelaySecs) * time.Second,
		Timeout:         time.Duration(config.Scraper.TimeoutSecs) * time.Second,
		OnProgress: func(url string) {
			scrapingBar.Add(1)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize scraper: %v", err)
	}

	color.Blue("\nStarting ingestion from %s\n", config.Scraper.BaseURL)

	result, err := s.Scrape(ctx)
	scrapingBar.Finish()
	if err != nil {
		return fmt.Errorf("failed to scrape articles: %v", err)
	}

	color.Green("\n✓ Scraped %d articles\n", len(result.Articles))
	if len(result.Skipped) > 0 {
		color.Yellow("Skipped %d articles:\n", len(result.Skipped))
		for _, skip := range result.Skipped {
			log.Printf("skipped: %v", skip)
		}
	}

	if err := corpus.Save(config.Corpus.Path, result.Articles); err != nil {
		return err
	}

	// Round-trip through the corpus so deduplication and empty-content
	// exclusion apply before chunking.
	articles, err := corpus.Load(config.Corpus.Path)
	if err != nil {
		return err
	}

	ch, err := chunker.NewWithConfig(chunker.ChunkerConfig{
		ChunkSize:    config.Chunker.ChunkSize,
		ChunkOverlap: config.Chunker.ChunkOverlap,
	})
	if err != nil {
		return err
	}

	var chunks []models.Chunk
	for _, article := range articles {
		chunks = append(chunks, ch.Chunk(article)...)
	}
	color.Green("✓ Chunked into %d chunks\n", len(chunks))

	if len(chunks) == 0 {
		return fmt.Errorf("nothing to index: every article chunked to zero chunks")
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	embeddingBar := getProgressBar(len(chunks), "🧮 Embedding chunks...")
	entries := make([]index.Entry, len(chunks))

	batch := config.Embedder.BatchSize * config.Embedder.Workers
	for i := 0; i < len(texts); i += batch {
		end := i + batch
		if end > len(texts) {
			end = len(texts)
		}

		vectors, err := embedder.EmbedMany(ctx, texts[i:end])
		if err != nil {
			return fmt.Errorf("failed to embed chunks: %v", err)
		}
		for j, v := range vectors {
			entries[i+j] = index.Entry{Chunk: chunks[i+j], Vector: v}
		}
		embeddingBar.Add(end - i)
	}
	embeddingBar.Finish()

	switch config.Index.Backend {
	case "pgvector":
		store, err := index.NewPGStore(ctx, index.PGConfig{
			ConnString: config.Database.URL,
			TableName:  config.Database.TableName,
			Dimension:  config.Embedder.Dimension,
			BatchSize:  config.Database.BatchSize,
		})
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Replace(ctx, entries); err != nil {
			return err
		}
	default:
		idx, err := index.Build(config.Embedder.Dimension, entries)
		if err != nil {
			return err
		}
		if err := idx.Save(config.Index.Path); err != nil {
			return err
		}
	}

	color.Green("\n✓ Indexed %d chunks from %d articles\n", len(chunks), len(articles))
	return nil
}

func runChat(config *cfgPkg.Config, embedder types.Embedder) error {
	ctx := context.Background()

	var searcher types.Searcher
	switch config.Index.Backend {
	case "pgvector":
		store, err := index.NewPGStore(ctx, index.PGConfig{
			ConnString: config.Database.URL,
			TableName:  config.Database.TableName,
			Dimension:  config.Embedder.Dimension,
			BatchSize:  config.Database.BatchSize,
		})
		if err != nil {
			return err
		}
		defer store.Close()
		searcher = store
	default:
		// Missing or mismatched index is fatal here: no queries can be
		// answered without one.
		idx, err := index.Load(config.Index.Path, config.Embedder.Dimension)
		if err != nil {
			return err
		}
		searcher = idx
	}

	retr, err := retriever.NewWithConfig(searcher, retriever.Config{
		K:      config.Retriever.K,
		FetchK: config.Retriever.FetchK,
		Lambda: config.Retriever.Lambda,
	})
	if err != nil {
		return err
	}

	generator, err := llm.NewGeneratorWithConfig(llm.GeneratorConfig{
		Model:       config.LLM.Model,
		BaseURL:     config.LLM.BaseURL,
		Temperature: config.LLM.Temperature,
		MaxTokens:   config.LLM.MaxTokens,
		Timeout:     time.Duration(config.LLM.TimeoutSecs) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize generator: %v", err)
	}

	comp, err := composer.NewWithConfig(embedder, retr, generator, composer.Config{
		FallbackPhrase: config.LLM.FallbackPhrase,
	})
	if err != nil {
		return err
	}

	sess := session.New(comp)

	color.Cyan("\nAsk about the indexed news (type 'exit' to quit)")

	scanner := bufio.NewScanner(os.Stdin)
	userPrompt := color.New(color.FgGreen).PrintfFunc()
	assistantPrompt := color.New(color.FgCyan).PrintfFunc()

	for {
		userPrompt("\nYou: ")
		if !scanner.Scan() {
			break
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if strings.ToLower(question) == "exit" {
			break
		}

		spinner := getSpinner("🔍 Searching the news...")
		answer, err := sess.Ask(ctx, question)
		spinner.Finish()
		fmt.Print("\r")

		if err != nil {
			color.Red("Error: %v\n", err)
			continue
		}

		assistantPrompt("\nAssistant: %s\n", answer.Text)
		if len(answer.Sources) > 0 {
			fmt.Println("\nSources:")
			for _, src := range answer.Sources {
				fmt.Printf("  - %s\n", src)
			}
		}
	}

	return nil
}
