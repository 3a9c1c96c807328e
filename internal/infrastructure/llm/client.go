package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"changal24/internal/config"
	"changal24/internal/domain"
	"changal24/internal/draft"
	"changal24/internal/ports"
)

// maxBodyChars caps the candidate body sent to the generation service.
const maxBodyChars = 8000

const systemPrompt = `Sen Uzbek tilidagi AI va tech yangiliklar muharririsan.
Maqsad: murakkab yangilikni texnik bo'lmagan o'quvchiga sodda, aniq va qiziqarli qilib tushuntirish.

Yozish uslubi:
- editorial ohang, lekin sodda va tushunarli
- ortiqcha jargon ishlatma; kerak bo'lsa atamani bir jumlada izohla
- shov-shuv, clickbait, taxmin va reklama ohangidan qoch
- copy-paste qilma, faqat qayta ifodalangan matn yoz
- faktlar noaniq bo'lsa ishonch bilan uydirma qo'shma
- generik filler ishlatma
- title_uz original da'voni saqlasin; ma'noni aylantirib yuborma

Format talablari:
- Faqat JSON qaytar
- title_uz: 1 ta tabiiy, qisqa sarlavha
- tldr_uz: ichki fallback uchun 1 ta qisqa jumla; kerak bo'lmasa bo'sh qoldir
- body_uz: 6-10 ta punktdan iborat bo'lsin, alohida lead bo'lmasin
- har punkt yangi qatordan "- " bilan boshlansin
- har punkt qisqa bo'lsin: odatda 8-16 so'z atrofida
- punktlar orasida takror bo'lmasin; har biri yangi detail olib kelsin
- agar raqam, sana, narx, foiz bo'lsa, imkon qadar punktga kirit
- is_political: siyosiy mazmun dominant bo'lsa true`

// Client implements ports.Localizer backed by an OpenAI-compatible
// chat-completions API. Every failure mode degrades to the fixed fallback
// draft; callers never observe an error.
type Client struct {
	endpoint   string
	model      string
	apiKey     string
	rules      draft.Rules
	httpClient *http.Client
	logger     *slog.Logger
}

var _ ports.Localizer = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(cfg config.GenerationConfig, rules draft.Rules, logger *slog.Logger) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		rules:    rules,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

// Localize asks the generation service for a localized draft and normalizes
// the response. Missing credentials, transport failures, bad statuses, and
// unparseable responses all land in the same fallback shape.
func (c *Client) Localize(ctx context.Context, title, body string) domain.NormalizedDraft {
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		c.debug("generation skipped: client misconfigured")
		return c.rules.Fallback(title)
	}

	content, err := c.complete(ctx, title, body)
	if err != nil {
		c.warn("generation failed", "error", err)
		return c.rules.Fallback(title)
	}

	raw, ok := decodeRawDraft(content)
	if !ok {
		c.warn("generation response not parseable")
		return c.rules.Fallback(title)
	}

	return c.rules.Normalize(raw, title)
}

func (c *Client) complete(ctx context.Context, title, body string) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": buildPrompt(title, body)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal generation payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send generation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("generation error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var decoded struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode generation response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("generation response has no choices")
	}

	return decoded.Choices[0].Message.Content, nil
}

func buildPrompt(title, body string) string {
	runes := []rune(body)
	if len(runes) > maxBodyChars {
		body = string(runes[:maxBodyChars])
	}

	return strings.TrimSpace(fmt.Sprintf(`Vazifa:
- Kiruvchi AI/tech yangilikni Uzbek lotinida sodda editorial postga aylantir.
- Asosiy savollarga javob ber: nima bo'ldi, nima uchun muhim.
- Matnning eng muhim joyi body_uz ichidagi punktlar bo'lsin.
- Siyosiy mavzu dominant bo'lsa is_political=true qil.

Cheklovlar:
- Faqat berilgan sarlavha va matndan foydalan.
- Agar ma'lumot yetarli bo'lmasa, bo'sh joyni taxmin bilan to'ldirma.
- Punktlar qisqa, aniq va o'qishga qulay bo'lsin.
- title'dagi gapni tldr_uz yoki birinchi punktda aynan takrorlama.

Qaytariladigan JSON formati:
{"title_uz":"...","body_uz":"...","tldr_uz":"...","is_political":false}

Kiruvchi sarlavha:
%s

Kiruvchi matn:
%s`, title, body))
}

// decodeRawDraft parses the free-form generation output: first the whole
// text as the expected object, then the first balanced brace-delimited
// substring. Field types are coerced defensively since the service gives no
// schema guarantee.
func decodeRawDraft(text string) (draft.RawDraft, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return draft.RawDraft{}, false
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		fragment, ok := balancedBraces(trimmed)
		if !ok {
			return draft.RawDraft{}, false
		}
		if err := json.Unmarshal([]byte(fragment), &obj); err != nil {
			return draft.RawDraft{}, false
		}
	}

	political, _ := obj["is_political"].(bool)
	return draft.RawDraft{
		Title:       stringField(obj, "title_uz"),
		Body:        stringField(obj, "body_uz"),
		Summary:     stringField(obj, "tldr_uz"),
		IsPolitical: political,
	}, true
}

func stringField(obj map[string]any, key string) string {
	value, _ := obj[key].(string)
	return value
}

// balancedBraces extracts the first balanced {...} substring, skipping brace
// characters inside JSON string literals.
func balancedBraces(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}

	return "", false
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *Client) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
