package notifier

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/lrndwy/tradingbotv3/internal/analyzer"
	"github.com/lrndwy/tradingbotv3/internal/model"
	"github.com/lrndwy/tradingbotv3/internal/store"
)

// Dispatcher fans scheduled reports out to opted-in users, honoring each
// user's notification interval. Runs on a 15-minute tick; intervals are
// multiples of it.
type Dispatcher struct {
	Store    store.Store
	Analyzer *analyzer.Analyzer
	Client   *TelegramClient
}

// NewDispatcher creates a notification dispatcher.
func NewDispatcher(st store.Store, an *analyzer.Analyzer, client *TelegramClient) *Dispatcher {
	return &Dispatcher{Store: st, Analyzer: an, Client: client}
}

// DispatchDue analyzes the market once per trading mode in use and sends
// the report to every user whose interval matches now. Per-recipient
// failures are isolated: they are logged, and a blocked bot (403) disables
// that user's notifications instead of failing the batch.
func (d *Dispatcher) DispatchDue(ctx context.Context, now time.Time) {
	users, err := d.Store.ListNotifiableUsers(ctx)
	if err != nil {
		log.Printf("[ERROR] list notifiable users: %v", err)
		return
	}

	due := users[:0]
	for _, u := range users {
		if intervalDue(u.NotificationInterval, now) {
			due = append(due, u)
		}
	}
	if len(due) == 0 {
		return
	}
	log.Printf("[INFO] dispatching notifications to %d user(s)", len(due))

	// One report per trading mode covers every recipient sharing it.
	reports := make(map[model.TradingMode]*model.Report)
	for _, user := range due {
		report, ok := reports[user.TradingMode]
		if !ok {
			report, err = d.Analyzer.Analyze(ctx, user.TradingMode)
			if err != nil {
				log.Printf("[ERROR] analyze for dispatch (%s): %v", user.TradingMode, err)
				continue
			}
			reports[user.TradingMode] = report
		}

		text, keyboard := FormatReport(report)
		if err := d.Client.SendWithRetry(ctx, user.ChatID, text, keyboard, 2); err != nil {
			if errors.Is(err, ErrForbidden) {
				log.Printf("[WARN] user %d blocked the bot, disabling notifications", user.ID)
				u := user
				u.NotificationsEnabled = false
				if err := d.Store.UpdateUser(ctx, &u); err != nil {
					log.Printf("[ERROR] disable notifications for user %d: %v", user.ID, err)
				}
				continue
			}
			log.Printf("[ERROR] notify user %d: %v", user.ID, err)
			continue
		}

		// Pace sends to stay clear of Telegram rate limits.
		select {
		case <-ctx.Done():
			return
		case <-time.After(300 * time.Millisecond):
		}
	}
}

// intervalDue reports whether a user with the given interval should be
// notified on this 15-minute tick.
func intervalDue(interval string, now time.Time) bool {
	minute := now.Minute()
	switch interval {
	case "15m":
		return true
	case "30m":
		return minute == 0 || minute == 30
	case "1h":
		return minute == 0
	case "4h":
		return minute == 0 && now.Hour()%4 == 0
	default:
		return false
	}
}
