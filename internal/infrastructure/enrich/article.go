// Package enrich augments feed candidates with content scraped from the
// linked article page. Enrichment is best-effort: any failure leaves the
// candidate unchanged.
package enrich

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"changal24/internal/domain"
	"changal24/internal/ports"
)

const (
	fetchTimeout = 12 * time.Second
	maxPageBytes = 2 << 20
	maxBodyChars = 10000
)

// skipHostPatterns lists platforms whose pages carry no extractable article.
var skipHostPatterns = []string{
	"t.me",
	"telegram.me",
	"twitter.com",
	"x.com",
	"reddit.com",
	"news.ycombinator.com",
}

// ArticleEnricher fetches the article page behind a candidate URL and merges
// its title and body into the candidate.
type ArticleEnricher struct {
	client *http.Client
	logger *slog.Logger
}

var _ ports.Enricher = (*ArticleEnricher)(nil)

// NewArticleEnricher wires an HTTP client; a nil client gets the default
// fetch timeout.
func NewArticleEnricher(client *http.Client, logger *slog.Logger) *ArticleEnricher {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	return &ArticleEnricher{client: client, logger: logger}
}

// Enrich scrapes the candidate's URL. On any failure, or for skiplisted
// hosts, the candidate passes through unchanged.
func (e *ArticleEnricher) Enrich(ctx context.Context, c domain.Candidate) domain.Candidate {
	page := e.fetchArticle(ctx, c.URL)
	if page == nil {
		return c
	}

	if page.title != "" {
		c.Title = page.title
	}
	if page.body != "" {
		parts := make([]string, 0, 2)
		if c.Body != "" {
			parts = append(parts, c.Body)
		}
		parts = append(parts, page.body)
		c.Body = strings.Join(parts, "\n\n")
	}

	return c
}

type articlePage struct {
	title string
	body  string
}

func (e *ArticleEnricher) fetchArticle(ctx context.Context, rawURL string) *articlePage {
	if rawURL == "" || shouldSkipURL(rawURL) {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; Changal24Bot/0.1; +https://news.zaff.me)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.client.Do(req)
	if err != nil {
		e.debug("article fetch failed", "url", rawURL, "error", err)
		return nil
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if resp.StatusCode != http.StatusOK || !strings.Contains(contentType, "text/html") {
		return nil
	}

	html, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		return nil
	}

	title := pickTitle(doc)
	description := pickDescription(doc)
	body := extractBody(string(html), rawURL)

	// Skip the description when the extracted body already contains it.
	descriptionIncluded := description != "" && body != "" &&
		strings.Contains(strings.ToLower(body), strings.ToLower(truncateRunes(description, 80)))

	if title == "" && description == "" && body == "" {
		return nil
	}

	parts := make([]string, 0, 2)
	if description != "" && !descriptionIncluded {
		parts = append(parts, description)
	}
	if body != "" {
		parts = append(parts, body)
	}

	return &articlePage{
		title: title,
		body:  truncateRunes(strings.Join(parts, "\n\n"), maxBodyChars),
	}
}

func pickTitle(doc *goquery.Document) string {
	candidates := []string{
		doc.Find(`meta[property="og:title"]`).AttrOr("content", ""),
		doc.Find(`meta[name="twitter:title"]`).AttrOr("content", ""),
		doc.Find("h1").First().Text(),
		doc.Find("title").Text(),
	}
	for _, value := range candidates {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func pickDescription(doc *goquery.Document) string {
	candidates := []string{
		doc.Find(`meta[property="og:description"]`).AttrOr("content", ""),
		doc.Find(`meta[name="description"]`).AttrOr("content", ""),
		doc.Find(`meta[name="twitter:description"]`).AttrOr("content", ""),
	}
	for _, value := range candidates {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func extractBody(html, rawURL string) string {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(strings.NewReader(html), pageURL)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(article.TextContent)
}

func shouldSkipURL(rawURL string) bool {
	for _, host := range skipHostPatterns {
		if strings.Contains(rawURL, host) {
			return true
		}
	}
	return false
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func (e *ArticleEnricher) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}
