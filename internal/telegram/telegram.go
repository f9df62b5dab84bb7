// Package telegram sends review-log escalations to an editor chat.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/concordia247/drafts/internal/news"
	"github.com/concordia247/drafts/internal/retry"
)

const (
	DefaultBaseURL = "https://api.telegram.org"
	maxMessage     = 4000
)

type Notifier struct {
	token   string
	chatID  string
	baseURL string
	client  *http.Client
	retry   retry.RetryConfig
	log     *slog.Logger
}

// New returns nil when token or chat is empty, and a nil Notifier ignores
// every call.
func New(token, chatID, baseURL string, log *slog.Logger) *Notifier {
	if token == "" || chatID == "" {
		return nil
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{
		token:   token,
		chatID:  chatID,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		retry:   retry.RetryConfig{MaxAttempts: 3, Delay: 2 * time.Second, Backoff: true},
		log:     log,
	}
}

// NotifyReviews posts one message listing the held-back items.
func (n *Notifier) NotifyReviews(ctx context.Context, stamp string, entries []news.Review) error {
	if n == nil || len(entries) == 0 {
		return nil
	}
	text := FormatReviews(stamp, entries)
	err := retry.WithRetry(ctx, n.retry, func() error {
		return n.sendMessageOnce(ctx, text)
	})
	if err != nil {
		return fmt.Errorf("telegram notify: %w", err)
	}
	n.log.Info("review escalation sent", "entries", len(entries))
	return nil
}

// FormatReviews builds the HTML message body, cut to Telegram's limit.
func FormatReviews(stamp string, entries []news.Review) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>Revisión %s</b>\n", html.EscapeString(stamp))
	for _, e := range entries {
		line := fmt.Sprintf("\n• <a href=\"%s\">%s</a> (%s)",
			html.EscapeString(e.URL), html.EscapeString(e.Title), html.EscapeString(e.Reason))
		if b.Len()+len(line) > maxMessage {
			b.WriteString("\n…")
			break
		}
		b.WriteString(line)
	}
	return b.String()
}

func (n *Notifier) sendMessageOnce(ctx context.Context, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.token)

	payload := map[string]interface{}{
		"chat_id":                  n.chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return retry.Permanent(fmt.Errorf("marshal payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return retry.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			n.log.Warn("failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("telegram API error: status %d", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return retry.Permanent(err)
		}
		return err
	}
	return nil
}
