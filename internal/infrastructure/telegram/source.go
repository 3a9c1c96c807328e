package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"changal24/internal/domain"
	"changal24/internal/ports"
)

const (
	// sourceName tags candidates fetched from a public channel preview page.
	sourceName = "telegram_s"

	// maxTitleChars bounds the synthetic title cut from the message body.
	maxTitleChars = 220
)

var (
	trailingURLPunctRE = regexp.MustCompile(`[),.;!?]+$`)
	bareDomainRE       = regexp.MustCompile(`(?i)^[a-z0-9.-]+\.[a-z]{2,}(/.*)?$`)
	labeledLinkRE      = regexp.MustCompile(`(?i)(?:^|\s)Link:\s*(\S+)`)
	urlTokenRE         = regexp.MustCompile(`(?i)(?:https?://|[a-z0-9.-]+\.[a-z]{2,}/?)\S*`)
)

// ChannelSource scrapes a public t.me/s/<channel> preview page into
// candidates. It implements ports.CandidateSource.
type ChannelSource struct {
	channelURL string
	client     *http.Client
	logger     *slog.Logger
}

var _ ports.CandidateSource = (*ChannelSource)(nil)

// NewChannelSource wires an HTTP client; a nil client gets a 12s timeout.
func NewChannelSource(channelURL string, client *http.Client, logger *slog.Logger) *ChannelSource {
	if client == nil {
		client = &http.Client{Timeout: 12 * time.Second}
	}
	return &ChannelSource{channelURL: channelURL, client: client, logger: logger}
}

// Fetch downloads the channel page and extracts one candidate per message.
func (s *ChannelSource) Fetch(ctx context.Context) ([]domain.Candidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.channelURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; Changal24Bot/0.1; +https://news.zaff.me)")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request channel page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("channel page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse channel page: %w", err)
	}

	candidates := s.extractMessages(doc)
	if s.logger != nil {
		s.logger.Debug("channel page scanned", "messages", len(candidates))
	}
	return candidates, nil
}

func (s *ChannelSource) extractMessages(doc *goquery.Document) []domain.Candidate {
	var out []domain.Candidate

	doc.Find(".tgme_widget_message").Each(func(_ int, msg *goquery.Selection) {
		body := strings.TrimSpace(msg.Find(".tgme_widget_message_text").Text())

		var links []string
		msg.Find(".tgme_widget_message_text a[href]").Each(func(_ int, a *goquery.Selection) {
			if href, ok := a.Attr("href"); ok {
				links = append(links, href)
			}
		})

		sourceURL, ok := msg.Find(".tgme_widget_message_date").Attr("href")
		if !ok || sourceURL == "" {
			sourceURL = s.channelURL
		}

		originalURL := findOriginalURL(body, links)
		if originalURL == "" {
			originalURL = sourceURL
		}

		title := body
		if runes := []rune(title); len(runes) > maxTitleChars {
			title = string(runes[:maxTitleChars])
		}

		var publishedAt *time.Time
		if stamp, ok := msg.Find("time").Attr("datetime"); ok {
			if parsed, err := time.Parse(time.RFC3339, stamp); err == nil {
				publishedAt = &parsed
			}
		}

		if title == "" || originalURL == "" {
			return
		}

		out = append(out, domain.Candidate{
			Source:      sourceName,
			Title:       title,
			Body:        body,
			URL:         originalURL,
			SourceURL:   sourceURL,
			PublishedAt: publishedAt,
		})
	})

	return out
}

// findOriginalURL resolves the story URL a message points at: the first
// non-Telegram anchor, then a "Link: <url>" marker in the text, then the
// first URL-looking token.
func findOriginalURL(text string, links []string) string {
	for _, link := range links {
		if u := normalizeURL(link); u != "" && !isTelegramURL(u) {
			return u
		}
	}

	if match := labeledLinkRE.FindStringSubmatch(text); match != nil {
		if u := normalizeURL(match[1]); u != "" {
			return u
		}
	}

	var first string
	for _, token := range urlTokenRE.FindAllString(text, -1) {
		u := normalizeURL(token)
		if u == "" {
			continue
		}
		if first == "" {
			first = u
		}
		if !isTelegramURL(u) {
			return u
		}
	}
	return first
}

func normalizeURL(raw string) string {
	cleaned := trailingURLPunctRE.ReplaceAllString(strings.TrimSpace(raw), "")
	if cleaned == "" {
		return ""
	}
	lower := strings.ToLower(cleaned)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return cleaned
	}
	if bareDomainRE.MatchString(cleaned) {
		return "https://" + cleaned
	}
	return ""
}

func isTelegramURL(u string) bool {
	return strings.Contains(u, "t.me/") || strings.Contains(u, "telegram.me/")
}
