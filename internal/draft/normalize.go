// Package draft repairs unreliable generated drafts into bounded,
// de-duplicated bullet posts. Normalization is deterministic and total: it
// never fails, it degrades.
package draft

import (
	"regexp"
	"strings"
	"unicode"

	"changal24/internal/domain"
)

const (
	maxBullets      = 10
	maxBulletTokens = 16
	minBulletTokens = 3

	titleOverlapRatio  = 0.6
	titleOverlapTokens = 4
)

var (
	inlineBulletRE  = regexp.MustCompile(`\s+- `)
	blankRunRE      = regexp.MustCompile(`\n{3,}`)
	leadingBulletRE = regexp.MustCompile(`^-+\s*`)
	parentheticalRE = regexp.MustCompile(`\s*\([^)]*\)\s*`)
	clauseSplitRE   = regexp.MustCompile(`[;:!?]`)
	trailingPunctRE = regexp.MustCompile("[,:;.\\-–—]+$")
)

// RawDraft is the structured object expected inside a generation-service
// response. Schema compliance is not guaranteed; every field is repaired.
type RawDraft struct {
	Title       string `json:"title_uz"`
	Body        string `json:"body_uz"`
	Summary     string `json:"tldr_uz"`
	IsPolitical bool   `json:"is_political"`
}

// Normalize turns a raw generated draft into a guaranteed-well-formed bullet
// post: summary suppressed when it repeats the headline, bullets shortened to
// their first useful clause, weak or title-echoing bullets rejected, exact
// duplicates dropped, and the bullet count capped.
func (r Rules) Normalize(raw RawDraft, originalTitle string) domain.NormalizedDraft {
	title := cleanText(raw.Title)
	if title == "" {
		title = cleanText(originalTitle)
	}
	if title == "" {
		title = r.FallbackTitle
	}

	// The summary is redundant when it repeats either headline variant: the
	// localized title or the original one.
	summary := suppressRepeatedSummary(title, raw.Summary)
	if summary != "" {
		summary = suppressRepeatedSummary(originalTitle, summary)
	}

	return domain.NormalizedDraft{
		TitleLocalized:   title,
		BodyLocalized:    r.normalizeBody(raw.Body, title, summary),
		SummaryLocalized: summary,
		IsPolitical:      raw.IsPolitical,
	}
}

// Fallback is the fixed draft used when the generation service is
// unreachable, unauthorized, or returns nothing parseable. Callers cannot
// distinguish those cases at the post level.
func (r Rules) Fallback(originalTitle string) domain.NormalizedDraft {
	title := cleanText(originalTitle)
	if title == "" {
		title = r.FallbackTitle
	}
	return domain.NormalizedDraft{TitleLocalized: title}
}

func (r Rules) normalizeBody(body, title, summary string) string {
	bullets := r.collectBullets(body, title, summary)
	if len(bullets) > 0 {
		return strings.Join(bullets, "\n")
	}
	if summary != "" {
		return "- " + summary + "\n- " + r.PlaceholderBullet
	}
	return ""
}

func (r Rules) collectBullets(body, title, summary string) []string {
	cleaned := cleanText(body)
	if cleaned == "" {
		return nil
	}

	// Generation services sometimes emit bullets without real line breaks.
	resegmented := inlineBulletRE.ReplaceAllString(cleaned, "\n- ")
	resegmented = blankRunRE.ReplaceAllString(resegmented, "\n\n")

	summaryComparable := normalizeComparable(summary)
	seen := make(map[string]struct{})
	var bullets []string

	for _, line := range strings.Split(resegmented, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		raw := collapseWhitespace(leadingBulletRE.ReplaceAllString(line, ""))
		short := r.shortenBullet(raw)
		comparable := normalizeComparable(short)
		if short == "" || len(strings.Fields(comparable)) < minBulletTokens {
			continue
		}
		if r.isWeakBullet(short) {
			continue
		}
		if overlapsWithTitle(title, short) {
			continue
		}
		if summaryComparable != "" && comparable == summaryComparable {
			continue
		}
		if _, dup := seen[comparable]; dup {
			continue
		}
		seen[comparable] = struct{}{}
		bullets = append(bullets, "- "+short)
		if len(bullets) >= maxBullets {
			break
		}
	}

	return bullets
}

// shortenBullet keeps the first useful clause, drops parenthetical asides,
// and truncates to the token budget.
func (r Rules) shortenBullet(text string) string {
	out := r.firstUsefulClause(text)
	out = parentheticalRE.ReplaceAllString(out, " ")
	out = collapseWhitespace(out)

	words := strings.Fields(out)
	if len(words) > maxBulletTokens {
		out = strings.Join(words[:maxBulletTokens], " ")
	}

	return strings.TrimSpace(trailingPunctRE.ReplaceAllString(out, ""))
}

func (r Rules) firstUsefulClause(text string) string {
	connectives := r.connectiveRE()
	for _, part := range clauseSplitRE.Split(text, -1) {
		clauses := []string{part}
		if connectives != nil {
			clauses = connectives.Split(part, -1)
		}
		for _, clause := range clauses {
			if stripped := r.stripFiller(clause); stripped != "" {
				return stripped
			}
		}
	}
	return ""
}

func (r Rules) connectiveRE() *regexp.Regexp {
	if len(r.Connectives) == 0 {
		return nil
	}
	quoted := make([]string, 0, len(r.Connectives))
	for _, c := range r.Connectives {
		quoted = append(quoted, regexp.QuoteMeta(c))
	}
	return regexp.MustCompile(`(?i)(?:` + strings.Join(quoted, "|") + `)`)
}

func (r Rules) stripFiller(text string) string {
	for _, pattern := range r.FillerPatterns {
		text = pattern.ReplaceAllString(text, "")
	}
	return collapseWhitespace(text)
}

func (r Rules) isWeakBullet(text string) bool {
	if text == "" {
		return true
	}
	// The placeholder injected by fallback synthesis is never a real bullet;
	// a synthesized body must re-normalize to itself.
	if normalizeComparable(text) == normalizeComparable(r.PlaceholderBullet) {
		return true
	}
	for _, pattern := range r.WeakPatterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}

// suppressRepeatedSummary discards a summary that adds nothing beyond the
// headline: equal to it, a prefix of it, or extending it as a prefix.
func suppressRepeatedSummary(title, summary string) string {
	clean := cleanText(summary)
	if clean == "" {
		return ""
	}

	normalizedTitle := normalizeComparable(title)
	normalizedSummary := normalizeComparable(clean)
	if normalizedTitle == "" || normalizedSummary == "" {
		return clean
	}

	if normalizedSummary == normalizedTitle ||
		strings.HasPrefix(normalizedTitle, normalizedSummary) ||
		strings.HasPrefix(normalizedSummary, normalizedTitle) {
		return ""
	}

	return clean
}

// overlapsWithTitle reports whether a bullet is redundant with the headline:
// exact match, a prefix relation in either direction, or sharing at least 60%
// of its tokens with the title while covering min(4, title tokens) of them.
func overlapsWithTitle(title, bullet string) bool {
	normalizedTitle := normalizeComparable(title)
	normalizedBullet := normalizeComparable(bullet)
	if normalizedTitle == "" || normalizedBullet == "" {
		return false
	}
	if normalizedBullet == normalizedTitle {
		return true
	}
	if strings.HasPrefix(normalizedBullet, normalizedTitle) ||
		strings.HasPrefix(normalizedTitle, normalizedBullet) {
		return true
	}

	titleWords := make(map[string]struct{})
	for _, word := range strings.Fields(normalizedTitle) {
		titleWords[word] = struct{}{}
	}
	bulletWords := strings.Fields(normalizedBullet)
	if len(titleWords) == 0 || len(bulletWords) == 0 {
		return false
	}

	shared := 0
	for _, word := range bulletWords {
		if _, ok := titleWords[word]; ok {
			shared++
		}
	}

	required := titleOverlapTokens
	if len(titleWords) < required {
		required = len(titleWords)
	}
	return shared >= required &&
		float64(shared)/float64(len(bulletWords)) >= titleOverlapRatio
}

// normalizeComparable lowers the text and keeps only letters and digits,
// collapsing everything else into single spaces.
func normalizeComparable(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return collapseWhitespace(b.String())
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func cleanText(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n"))
}
