package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/oguzatay/gundem/internal/models"
	"golang.org/x/time/rate"
)

type ScraperConfig struct {
	BaseURL         string
	ListPath        string // page listing recent articles, relative to BaseURL
	ListSelector    string // headline element on the list page; the link is its parent <a>
	ContentSelector string // article body container on the detail page
	DateSelector    string // publication date element on the detail page
	UserAgent       string
	PoliteDelay     time.Duration // fixed wait between detail requests
	Timeout         time.Duration
	OnProgress      func(url string)
}

// AcquisitionError records one article that could not be acquired. It is
// collected and reported, never fatal to the run.
type AcquisitionError struct {
	URL string
	Err error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("acquire %s: %v", e.URL, e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

var errEmptyContent = errors.New("no article content extracted")

// Result is the outcome of one scraping run: the articles that were
// acquired plus a summary of everything that was skipped.
type Result struct {
	Articles []models.Article
	Skipped  []*AcquisitionError
}

type Scraper struct {
	config  ScraperConfig
	client  *http.Client
	limiter *rate.Limiter
	base    *url.URL
}

func NewWithConfig(config ScraperConfig) (*Scraper, error) {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.PoliteDelay == 0 {
		config.PoliteDelay = 10 * time.Second
	}
	if config.ListSelector == "" {
		config.ListSelector = "div.title"
	}
	if config.ContentSelector == "" {
		config.ContentSelector = "div.haber-metni"
	}
	if config.DateSelector == "" {
		config.DateSelector = "div.tarih-bolumu time"
	}

	parsedURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, err
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("scraper base URL must be absolute, got %q", config.BaseURL)
	}

	return &Scraper{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		// One request per polite-delay interval. The source site's crawl
		// policy asks for this spacing; do not raise the rate.
		limiter: rate.NewLimiter(rate.Every(config.PoliteDelay), 1),
		base:    parsedURL,
	}, nil
}

// Scrape fetches the list page, then every linked article detail page in
// sequence. Individual article failures are skipped and summarized in the
// result; only a failure to fetch the list page itself aborts the run.
func (s *Scraper) Scrape(ctx context.Context) (*Result, error) {
	listURL := s.base.ResolveReference(&url.URL{Path: s.config.ListPath}).String()

	doc, err := s.fetchDocument(ctx, listURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch list page %s: %w", listURL, err)
	}

	links := s.extractLinks(doc)
	if len(links) == 0 {
		return nil, fmt.Errorf("no headlines matched selector %q on %s", s.config.ListSelector, listURL)
	}

	result := &Result{}
	for _, link := range links {
		if err := s.limiter.Wait(ctx); err != nil {
			return result, err
		}
		if s.config.OnProgress != nil {
			s.config.OnProgress(link.url)
		}

		article, err := s.fetchArticle(ctx, link.url, link.headline)
		if err != nil {
			result.Skipped = append(result.Skipped, &AcquisitionError{URL: link.url, Err: err})
			continue
		}
		result.Articles = append(result.Articles, article)
	}

	return result, nil
}

type headlineLink struct {
	headline string
	url      string
}

func (s *Scraper) extractLinks(doc *goquery.Document) []headlineLink {
	var links []headlineLink
	seen := make(map[string]bool)

	doc.Find(s.config.ListSelector).Each(func(_ int, sel *goquery.Selection) {
		headline := strings.TrimSpace(sel.Text())
		if headline == "" {
			return
		}

		// The headline element sits inside the article's anchor.
		href, exists := sel.Closest("a").Attr("href")
		if !exists || href == "" {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		absolute := s.base.ResolveReference(ref).String()

		if seen[absolute] {
			return
		}
		seen[absolute] = true
		links = append(links, headlineLink{headline: headline, url: absolute})
	})

	return links
}

func (s *Scraper) fetchArticle(ctx context.Context, articleURL, headline string) (models.Article, error) {
	doc, err := s.fetchDocument(ctx, articleURL)
	if err != nil {
		return models.Article{}, err
	}

	content := s.extractContent(doc)
	if content == "" {
		return models.Article{}, errEmptyContent
	}

	date := strings.TrimSpace(doc.Find(s.config.DateSelector).First().Text())

	return models.Article{
		URL:      articleURL,
		Headline: headline,
		Date:     date,
		Content:  content,
	}, nil
}

// extractContent takes the paragraph texts inside the content container,
// falling back to the container's full text when it has no paragraphs.
func (s *Scraper) extractContent(doc *goquery.Document) string {
	container := doc.Find(s.config.ContentSelector).First()
	if container.Length() == 0 {
		return ""
	}

	var paragraphs []string
	container.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := normalizeWhitespace(p.Text())
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	if len(paragraphs) == 0 {
		return normalizeWhitespace(container.Text())
	}
	return strings.Join(paragraphs, "\n\n")
}

func (s *Scraper) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.config.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received status code %d for URL: %s", resp.StatusCode, pageURL)
	}

	return goquery.NewDocumentFromReader(resp.Body)
}

func normalizeWhitespace(text string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(text), " "))
}
