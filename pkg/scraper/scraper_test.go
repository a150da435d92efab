package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listPage = `
<html><body>
<div class="news-list">
  <a href="/news/council-vote"><div class="title">Council postpones transit vote</div></a>
  <a href="/news/missing-page"><div class="title">Article that returns an error</div></a>
  <a href="/news/empty-body"><div class="title">Article with no body</div></a>
  <div class="title">Headline without a link</div>
  <a href="/news/council-vote"><div class="title">Council postpones transit vote</div></a>
</div>
</body></html>`

const detailPage = `
<html><body>
<div class="tarih-bolumu"><time>21 Kasim 2025 14:30</time></div>
<div class="haber-metni">
  <p>The council met on Tuesday   to discuss the plan.</p>
  <p>The vote was postponed until next month.</p>
</div>
</body></html>`

const emptyDetailPage = `
<html><body>
<div class="haber-metni"></div>
</body></html>`

func newTestServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/son-24-saat", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listPage))
	})
	mux.HandleFunc("/news/council-vote", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(detailPage))
	})
	mux.HandleFunc("/news/missing-page", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/news/empty-body", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(emptyDetailPage))
	})
	return httptest.NewServer(mux)
}

func newTestScraper(t *testing.T, baseURL string) *Scraper {
	t.Helper()
	s, err := NewWithConfig(ScraperConfig{
		BaseURL:     baseURL,
		ListPath:    "/son-24-saat",
		PoliteDelay: 5 * time.Millisecond,
		Timeout:     2 * time.Second,
	})
	require.NoError(t, err)
	return s
}

func TestScrape(t *testing.T) {
	server := newTestServer()
	defer server.Close()

	s := newTestScraper(t, server.URL)

	result, err := s.Scrape(context.Background())
	require.NoError(t, err)

	// One reachable article; the failing and empty ones are skipped, the
	// unlinked headline is ignored, the duplicate link fetched once.
	require.Len(t, result.Articles, 1)
	article := result.Articles[0]
	assert.Equal(t, server.URL+"/news/council-vote", article.URL)
	assert.Equal(t, "Council postpones transit vote", article.Headline)
	assert.Equal(t, "21 Kasim 2025 14:30", article.Date)
	assert.Equal(t,
		"The council met on Tuesday to discuss the plan.\n\nThe vote was postponed until next month.",
		article.Content)

	require.Len(t, result.Skipped, 2)
	skippedURLs := []string{result.Skipped[0].URL, result.Skipped[1].URL}
	assert.Contains(t, skippedURLs, server.URL+"/news/missing-page")
	assert.Contains(t, skippedURLs, server.URL+"/news/empty-body")
}

func TestScrapeListPageFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	s := newTestScraper(t, server.URL)

	_, err := s.Scrape(context.Background())
	assert.Error(t, err)
}

func TestScrapeNoHeadlines(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>nothing here</p></body></html>"))
	}))
	defer server.Close()

	s, err := NewWithConfig(ScraperConfig{
		BaseURL:     server.URL,
		PoliteDelay: 5 * time.Millisecond,
	})
	require.NoError(t, err)

	_, err = s.Scrape(context.Background())
	assert.Error(t, err)
}

func TestNewWithConfigRequiresAbsoluteBaseURL(t *testing.T) {
	_, err := NewWithConfig(ScraperConfig{BaseURL: "/relative"})
	assert.Error(t, err)
}

func TestScrapeRespectsPoliteDelay(t *testing.T) {
	server := newTestServer()
	defer server.Close()

	delay := 30 * time.Millisecond
	s, err := NewWithConfig(ScraperConfig{
		BaseURL:     server.URL,
		ListPath:    "/son-24-saat",
		PoliteDelay: delay,
	})
	require.NoError(t, err)

	start := time.Now()
	_, err = s.Scrape(context.Background())
	require.NoError(t, err)

	// Three detail fetches: the first passes immediately, the remaining
	// two each wait out the delay.
	assert.GreaterOrEqual(t, time.Since(start), 2*delay)
}

func TestNormalizeWhitespace(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  a   b \n c ", "a b c"},
		{"\n\t", ""},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeWhitespace(tt.in))
	}
}
