package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"changal24/internal/ports"
)

const defaultAPIBaseURL = "https://api.telegram.org"

// Notifier sends messages to a Telegram chat via the Bot API.
type Notifier struct {
	botToken string
	baseURL  string
	client   *http.Client
}

var _ ports.Messenger = (*Notifier)(nil)

// NewNotifier registers the bot token used for delivery.
func NewNotifier(botToken string) *Notifier {
	return &Notifier{
		botToken: botToken,
		baseURL:  defaultAPIBaseURL,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// SetBaseURL overrides the Bot API base URL. Used by tests.
func (n *Notifier) SetBaseURL(baseURL string) {
	n.baseURL = strings.TrimSuffix(baseURL, "/")
}

// Send posts a plain-text message to the target chat.
func (n *Notifier) Send(ctx context.Context, target, message string) error {
	if n.botToken == "" || target == "" {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	form := url.Values{}
	form.Set("chat_id", target)
	form.Set("text", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}
