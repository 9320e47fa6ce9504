package notifier

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/lrndwy/tradingbotv3/internal/analyzer"
	"github.com/lrndwy/tradingbotv3/internal/ledger"
	"github.com/lrndwy/tradingbotv3/internal/model"
	"github.com/lrndwy/tradingbotv3/internal/session"
	"github.com/lrndwy/tradingbotv3/internal/store"
)

// Handler executes decoded intents against the core services and produces
// the reply to render. It owns no transport; polling feeds it.
type Handler struct {
	Store    store.Store
	Ledger   *ledger.Manager
	Analyzer *analyzer.Analyzer
	Sessions *session.Store
}

// NewHandler wires the command handler.
func NewHandler(st store.Store, lg *ledger.Manager, an *analyzer.Analyzer, sessions *session.Store) *Handler {
	return &Handler{Store: st, Ledger: lg, Analyzer: an, Sessions: sessions}
}

// Handle processes one intent for one user and returns the reply text and
// optional inline keyboard.
func (h *Handler) Handle(ctx context.Context, userID, chatID int64, firstName string, intent Intent) (string, Keyboard) {
	user, err := h.Store.FindOrCreateUser(ctx, model.NewUser(userID, chatID, firstName))
	if err != nil {
		log.Printf("[ERROR] find or create user %d: %v", userID, err)
		return "Something went wrong, please try again.", nil
	}

	switch intent.Kind {
	case IntentStart:
		text := fmt.Sprintf("👋 Hi <b>%s</b>!\n\nYou start with a simulated balance of $%.0f. Use /analyze for signals and /help for all commands.",
			user.FirstName, model.SeedCapital)
		return text, Keyboard{
			{{Text: "⚡ Analyze", Data: "run_analysis"}, {Text: "💼 Portfolio", Data: "portfolio_menu"}},
			{{Text: "⚙️ Settings", Data: "toggle_notifications"}, {Text: "❓ Help", Data: "show_help"}},
		}

	case IntentHelp:
		return FormatHelp(), nil

	case IntentAnalyze:
		report, err := h.Analyzer.Analyze(ctx, user.TradingMode)
		if err != nil {
			log.Printf("[ERROR] analyze for user %d: %v", userID, err)
			return "❌ Analysis failed, please try again later.", nil
		}
		return FormatReport(report)

	case IntentPortfolio:
		val, err := h.Ledger.Valuation(ctx, userID)
		if err != nil {
			log.Printf("[ERROR] valuation for user %d: %v", userID, err)
			return "❌ Could not load your portfolio.", nil
		}
		return FormatValuation(val), nil

	case IntentHistory:
		txs, err := h.Store.ListTransactions(ctx, userID, 20)
		if err != nil {
			log.Printf("[ERROR] history for user %d: %v", userID, err)
			return "❌ Could not load your history.", nil
		}
		return FormatHistory(txs), nil

	case IntentBuy:
		if intent.Symbol == "" {
			return "Usage: /buy SYMBOL [usdt amount]", nil
		}
		if !intent.HasAmount {
			h.Sessions.Await(userID, session.AwaitingBuyAmount, intent.Symbol)
			return fmt.Sprintf("How many USDT of <b>%s</b> do you want to buy? Send a number.", intent.Symbol), nil
		}
		return h.executeBuy(ctx, userID, intent.Symbol, intent.Amount), nil

	case IntentSell:
		if intent.Symbol == "" {
			return "Usage: /sell SYMBOL [amount]", nil
		}
		if intent.HasPercent {
			return h.executeSellPercent(ctx, userID, intent.Symbol, intent.Percent), nil
		}
		if !intent.HasAmount {
			h.Sessions.Await(userID, session.AwaitingSellAmount, intent.Symbol)
			return fmt.Sprintf("How much <b>%s</b> do you want to sell? Send a number.", intent.Symbol), nil
		}
		return h.executeSell(ctx, userID, intent.Symbol, intent.Amount), nil

	case IntentAmount:
		pending, ok := h.Sessions.Get(userID)
		if !ok {
			return "No pending trade. Use /buy or /sell first.", nil
		}
		h.Sessions.Clear(userID)
		if pending.State == session.AwaitingBuyAmount {
			return h.executeBuy(ctx, userID, pending.Symbol, intent.Amount), nil
		}
		return h.executeSell(ctx, userID, pending.Symbol, intent.Amount), nil

	case IntentDeposit:
		if !intent.HasAmount {
			return "Usage: /deposit AMOUNT", nil
		}
		res, err := h.Ledger.Deposit(ctx, userID, intent.Amount)
		if err != nil {
			return tradeErrorText(err), nil
		}
		return FormatTradeResult(res), nil

	case IntentSetMode:
		if intent.Mode == "" {
			return "Usage: /mode conservative|balanced|aggressive", nil
		}
		user.TradingMode = intent.Mode
		if err := h.Store.UpdateUser(ctx, user); err != nil {
			log.Printf("[ERROR] set mode for user %d: %v", userID, err)
			return "❌ Could not save your settings.", nil
		}
		return FormatSettings(user)

	case IntentSetInterval:
		if intent.Interval == "" {
			return "Usage: /interval 15m|30m|1h|4h", nil
		}
		user.NotificationInterval = intent.Interval
		if err := h.Store.UpdateUser(ctx, user); err != nil {
			log.Printf("[ERROR] set interval for user %d: %v", userID, err)
			return "❌ Could not save your settings.", nil
		}
		return FormatSettings(user)

	case IntentToggleNotify:
		user.NotificationsEnabled = !user.NotificationsEnabled
		if err := h.Store.UpdateUser(ctx, user); err != nil {
			log.Printf("[ERROR] toggle notifications for user %d: %v", userID, err)
			return "❌ Could not save your settings.", nil
		}
		return FormatSettings(user)

	default:
		return "Unknown command. Try /help.", nil
	}
}

func (h *Handler) executeBuy(ctx context.Context, userID int64, symbol string, quoteAmount float64) string {
	res, err := h.Ledger.Buy(ctx, userID, symbol, quoteAmount)
	if err != nil {
		return tradeErrorText(err)
	}
	return FormatTradeResult(res)
}

func (h *Handler) executeSell(ctx context.Context, userID int64, symbol string, baseAmount float64) string {
	res, err := h.Ledger.Sell(ctx, userID, symbol, baseAmount)
	if err != nil {
		return tradeErrorText(err)
	}
	return FormatTradeResult(res)
}

// executeSellPercent resolves a percentage callback ("sell 50%") to a base
// amount before handing it to the ledger.
func (h *Handler) executeSellPercent(ctx context.Context, userID int64, symbol string, percent float64) string {
	holding, err := h.Store.GetHolding(ctx, userID, symbol)
	if errors.Is(err, store.ErrNotFound) {
		return tradeErrorText(ledger.ErrNoPosition)
	}
	if err != nil {
		log.Printf("[ERROR] load holding for user %d: %v", userID, err)
		return "❌ Trade failed, please try again."
	}
	return h.executeSell(ctx, userID, symbol, holding.Amount*percent/100)
}

// tradeErrorText maps ledger failures to user-facing messages. Validation
// failures are surfaced with their specific reason and never retried.
func tradeErrorText(err error) string {
	switch {
	case errors.Is(err, ledger.ErrPriceUnavailable):
		return "❌ Could not fetch the current price. Try again."
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return "❌ Insufficient fiat balance."
	case errors.Is(err, ledger.ErrNoPosition):
		return "❌ You do not hold this asset."
	case errors.Is(err, ledger.ErrInsufficientPosition):
		return "❌ Sell amount exceeds your position."
	case errors.Is(err, ledger.ErrInvalidAmount):
		return "❌ Amount must be a positive number."
	default:
		log.Printf("[ERROR] trade failed: %v", err)
		return "❌ Trade failed, please try again."
	}
}
