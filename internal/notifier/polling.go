package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// telegramUpdate represents a Telegram update from long polling.
type telegramUpdate struct {
	UpdateID int `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		From struct {
			ID        int64  `json:"id"`
			FirstName string `json:"first_name"`
		} `json:"from"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
	CallbackQuery *struct {
		ID   string `json:"id"`
		Data string `json:"data"`
		From struct {
			ID        int64  `json:"id"`
			FirstName string `json:"first_name"`
		} `json:"from"`
		Message struct {
			Chat struct {
				ID int64 `json:"id"`
			} `json:"chat"`
		} `json:"message"`
	} `json:"callback_query"`
}

// StartPolling long-polls for updates, decodes each into a typed intent
// and hands it to the handler. Blocks until ctx is cancelled.
func (t *TelegramClient) StartPolling(ctx context.Context, handler *Handler) {
	offset := 0
	client := &http.Client{Timeout: 35 * time.Second}

	for {
		select {
		case <-ctx.Done():
			log.Println("[INFO] Telegram polling stopped")
			return
		default:
		}

		apiURL := fmt.Sprintf("%s?offset=%d&timeout=30", t.endpoint("getUpdates"), offset)
		req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
		if err != nil {
			log.Printf("[ERROR] create polling request: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}

		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[WARN] polling request failed: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			log.Printf("[WARN] read polling response: %v", err)
			continue
		}

		var result struct {
			OK     bool             `json:"ok"`
			Result []telegramUpdate `json:"result"`
		}
		if err := json.Unmarshal(body, &result); err != nil {
			log.Printf("[WARN] decode polling response: %v", err)
			continue
		}

		// One update is handled per goroutine so a slow trade (a price
		// fetch can block for its full timeout) never stalls other users'
		// commands.
		for _, update := range result.Result {
			offset = update.UpdateID + 1
			go t.dispatchUpdate(ctx, handler, update)
		}
	}
}

func (t *TelegramClient) dispatchUpdate(ctx context.Context, handler *Handler, update telegramUpdate) {
	var (
		userID, chatID int64
		firstName      string
		intent         Intent
	)

	switch {
	case update.Message != nil && update.Message.Text != "":
		userID = update.Message.From.ID
		chatID = update.Message.Chat.ID
		firstName = update.Message.From.FirstName
		intent = ParseMessage(update.Message.Text)
		log.Printf("[INFO] message from %d: %s", userID, update.Message.Text)
	case update.CallbackQuery != nil:
		userID = update.CallbackQuery.From.ID
		chatID = update.CallbackQuery.Message.Chat.ID
		firstName = update.CallbackQuery.From.FirstName
		intent = ParseCallback(update.CallbackQuery.Data)
		log.Printf("[INFO] callback from %d: %s", userID, update.CallbackQuery.Data)
		if err := t.AnswerCallback(update.CallbackQuery.ID); err != nil {
			log.Printf("[WARN] answer callback: %v", err)
		}
	default:
		return
	}

	text, keyboard := handler.Handle(ctx, userID, chatID, firstName, intent)
	if text == "" {
		return
	}
	if err := t.Send(chatID, text, keyboard); err != nil {
		log.Printf("[ERROR] send reply to %d: %v", chatID, err)
	}
}
