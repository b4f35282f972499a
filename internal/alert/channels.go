package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TelegramSender is the slice of the bot the Telegram channel needs.
type TelegramSender interface {
	SendHTML(ctx context.Context, text string) error
}

// Telegram delivers alerts to the configured chat through the bot.
type Telegram struct {
	sender TelegramSender
}

func NewTelegram(sender TelegramSender) *Telegram {
	return &Telegram{sender: sender}
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Send(ctx context.Context, a Alert) error {
	if err := t.sender.SendHTML(ctx, a.Message); err != nil {
		return fmt.Errorf("send telegram alert: %w", err)
	}
	return nil
}

// Webhook POSTs alerts as JSON to an external endpoint.
type Webhook struct {
	url        string
	httpClient *http.Client
}

func NewWebhook(url string) *Webhook {
	return &Webhook{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *Webhook) Name() string { return "webhook" }

type webhookPayload struct {
	Type         string    `json:"type"`
	WhaleAddress string    `json:"whaleAddress,omitempty"`
	WhaleName    string    `json:"whaleName,omitempty"`
	Coin         string    `json:"coin,omitempty"`
	Message      string    `json:"message"`
	At           time.Time `json:"at"`
}

func (w *Webhook) Send(ctx context.Context, a Alert) error {
	body, err := json.Marshal(webhookPayload{
		Type:         string(a.Type),
		WhaleAddress: a.Whale.Address,
		WhaleName:    a.Whale.Name,
		Coin:         a.Coin,
		Message:      a.Message,
		At:           a.At,
	})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
