package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

// ErrForbidden is returned when Telegram rejects a send with HTTP 403,
// meaning the user blocked the bot. Callers disable that user's
// notifications instead of retrying.
var ErrForbidden = errors.New("telegram: bot blocked by user")

// Button is one inline keyboard button carrying a callback payload.
type Button struct {
	Text string `json:"text"`
	Data string `json:"callback_data"`
}

// Keyboard is an inline keyboard layout, rows of buttons.
type Keyboard [][]Button

// TelegramClient sends messages via the Telegram Bot API.
type TelegramClient struct {
	BotToken string
	APIBase  string
	Client   *http.Client
}

// NewTelegramClient creates a client with optional proxy support.
func NewTelegramClient(botToken, proxyURL string) *TelegramClient {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &TelegramClient{
		BotToken: botToken,
		APIBase:  "https://api.telegram.org",
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (t *TelegramClient) endpoint(method string) string {
	base := t.APIBase
	if base == "" {
		base = "https://api.telegram.org"
	}
	return fmt.Sprintf("%s/bot%s/%s", base, t.BotToken, method)
}

// Send sends an HTML-formatted message to a chat, with an optional inline
// keyboard.
func (t *TelegramClient) Send(chatID int64, text string, keyboard Keyboard) error {
	apiURL := t.endpoint("sendMessage")
	payload := map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	if len(keyboard) > 0 {
		payload["reply_markup"] = map[string]any{"inline_keyboard": keyboard}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	resp, err := t.Client.Post(apiURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusForbidden {
		return ErrForbidden
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// SendWithRetry sends a message with exponential backoff. A 403 is
// terminal and returned immediately.
func (t *TelegramClient) SendWithRetry(ctx context.Context, chatID int64, text string, keyboard Keyboard, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		err := t.Send(chatID, text, keyboard)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrForbidden) {
			return err
		}
		lastErr = err
		backoff := time.Duration(1<<uint(i)) * time.Second
		log.Printf("[WARN] Telegram send failed (attempt %d/%d): %v, retrying in %v", i+1, maxRetries+1, err, backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, lastErr)
}

// AnswerCallback acknowledges a callback query so the client stops showing
// a progress spinner.
func (t *TelegramClient) AnswerCallback(callbackID string) error {
	apiURL := t.endpoint("answerCallbackQuery")
	body, err := json.Marshal(map[string]string{"callback_query_id": callbackID})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	resp, err := t.Client.Post(apiURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("answer callback: %w", err)
	}
	resp.Body.Close()
	return nil
}
