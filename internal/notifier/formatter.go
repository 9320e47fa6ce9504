package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/lrndwy/tradingbotv3/internal/ledger"
	"github.com/lrndwy/tradingbotv3/internal/model"
)

// FormatReport renders a full market report and the inline trade buttons
// for the symbols carrying an actionable signal.
func FormatReport(report *model.Report) (string, Keyboard) {
	var b strings.Builder
	var keyboard Keyboard

	b.WriteString(fmt.Sprintf("📊 <b>Market Analysis</b> | %s\n", time.Unix(report.GeneratedAt, 0).Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Fear &amp; Greed: %d (%s)\n", report.Sentiment.Value, report.Sentiment.Classification))
	b.WriteString("──────────────────────\n")

	var row []Button
	for _, asset := range report.Assets {
		emoji := "⚪️"
		switch asset.Signal.Action {
		case model.ActionBuy:
			emoji = "🟢"
		case model.ActionSell:
			emoji = "🔴"
		}
		b.WriteString(fmt.Sprintf("%s <b>%s</b> — <b>%s</b>\n", emoji, asset.Symbol, asset.Signal.Action))
		b.WriteString(fmt.Sprintf("   Price: $%.2f | Trend: %s\n", asset.DisplayPrice, asset.Trend))
		if asset.Signal.Action != model.ActionHold {
			b.WriteString(fmt.Sprintf("   Confidence: %.0f%%\n", asset.Signal.Confidence))
		}
		b.WriteString(fmt.Sprintf("   Reasons: %s\n", strings.Join(asset.Signal.Reasons, ", ")))
		b.WriteString("──────────────────────\n")

		if asset.Signal.Action != model.ActionHold {
			row = append(row,
				Button{Text: fmt.Sprintf("BUY %s 100", asset.Symbol), Data: fmt.Sprintf("buy_%s_100", asset.Symbol)},
				Button{Text: fmt.Sprintf("SELL %s 50%%", asset.Symbol), Data: fmt.Sprintf("sell_%s_50", asset.Symbol)},
			)
			keyboard = append(keyboard, row)
			row = nil
		}
	}

	if len(report.Skipped) > 0 {
		b.WriteString(fmt.Sprintf("<i>Skipped (insufficient history): %s</i>\n", strings.Join(report.Skipped, ", ")))
	}

	return b.String(), keyboard
}

// FormatValuation renders a user's portfolio with per-position and total P&L.
func FormatValuation(val *model.Valuation) string {
	if len(val.Positions) == 0 {
		return fmt.Sprintf("💼 Your portfolio is empty.\nFiat balance: $%.2f", val.FiatBalance)
	}

	var b strings.Builder
	b.WriteString("💼 <b>Simulated Portfolio</b>\n\n")
	for _, pos := range val.Positions {
		b.WriteString(fmt.Sprintf("<b>%s</b>\n", pos.Symbol))
		b.WriteString(fmt.Sprintf("   Amount: %.6f\n", pos.Amount))
		b.WriteString(fmt.Sprintf("   Avg buy: $%.2f\n", pos.AvgBuyPrice))
		if pos.Stale {
			b.WriteString("   ⚠️ price unavailable, excluded from totals\n\n")
			continue
		}
		emoji := "📈"
		if pos.PnL < 0 {
			emoji = "📉"
		}
		b.WriteString(fmt.Sprintf("   Current: $%.2f\n", pos.CurrentPrice))
		b.WriteString(fmt.Sprintf("   %s P&amp;L: $%.2f (%.2f%%)\n\n", emoji, pos.PnL, pos.PnLPercent))
	}

	b.WriteString("──────────────────────\n")
	b.WriteString(fmt.Sprintf("<b>Assets value:</b> $%.2f\n", val.TotalAssetsValue))
	b.WriteString(fmt.Sprintf("<b>Fiat balance:</b> $%.2f\n", val.FiatBalance))
	b.WriteString(fmt.Sprintf("<b>Total equity:</b> $%.2f", val.TotalEquity))
	if val.StaleCount > 0 {
		b.WriteString(fmt.Sprintf("\n<i>⚠️ %d position(s) unpriced; totals are partial</i>", val.StaleCount))
	}
	return b.String()
}

// FormatTradeResult renders the outcome of a simulated trade.
func FormatTradeResult(res *ledger.TradeResult) string {
	switch res.Type {
	case model.TxBuy:
		return fmt.Sprintf("✅ Bought <b>%.6f %s</b> at $%.2f for $%.2f.\nFiat balance: $%.2f",
			res.BaseAmount, res.Symbol, res.Price, res.QuoteAmount, res.FiatBalance)
	case model.TxSell:
		pnl := fmt.Sprintf("Profit: $%.2f", res.Profit)
		if res.Profit < 0 {
			pnl = fmt.Sprintf("Loss: $%.2f", -res.Profit)
		}
		return fmt.Sprintf("✅ Sold <b>%.6f %s</b> at $%.2f for $%.2f.\n%s\nFiat balance: $%.2f",
			res.BaseAmount, res.Symbol, res.Price, res.QuoteAmount, pnl, res.FiatBalance)
	default:
		return fmt.Sprintf("✅ Deposited $%.2f.\nFiat balance: $%.2f", res.QuoteAmount, res.FiatBalance)
	}
}

// FormatHistory renders the most recent transactions.
func FormatHistory(txs []model.Transaction) string {
	if len(txs) == 0 {
		return "No transactions yet."
	}
	var b strings.Builder
	b.WriteString("📜 <b>Transaction History</b>\n\n")
	for _, tx := range txs {
		when := time.UnixMilli(tx.Timestamp).Format("01-02 15:04")
		switch tx.Type {
		case model.TxDeposit:
			b.WriteString(fmt.Sprintf("%s  deposit  $%.2f\n", when, tx.Amount))
		default:
			b.WriteString(fmt.Sprintf("%s  %s  %.6f %s @ $%.2f\n", when, tx.Type, tx.Amount, tx.Symbol, tx.Price))
		}
	}
	return b.String()
}

// FormatSettings renders the user's current settings with toggle buttons.
func FormatSettings(user *model.User) (string, Keyboard) {
	status := "off"
	if user.NotificationsEnabled {
		status = "on"
	}
	text := fmt.Sprintf("⚙️ <b>Settings</b>\n\nMode: %s\nNotifications: %s (every %s)\nFiat balance: $%.2f",
		user.TradingMode, status, user.NotificationInterval, user.FiatBalance)

	keyboard := Keyboard{
		{
			{Text: "Conservative", Data: "set_mode_conservative"},
			{Text: "Balanced", Data: "set_mode_balanced"},
			{Text: "Aggressive", Data: "set_mode_aggressive"},
		},
		{
			{Text: "15m", Data: "set_interval_15m"},
			{Text: "30m", Data: "set_interval_30m"},
			{Text: "1h", Data: "set_interval_1h"},
			{Text: "4h", Data: "set_interval_4h"},
		},
		{
			{Text: "Toggle notifications", Data: "toggle_notifications"},
		},
	}
	return text, keyboard
}

// FormatHelp renders the command reference.
func FormatHelp() string {
	return `<b>Commands</b>
/analyze — run a full market analysis
/portfolio — view your simulated portfolio
/history — recent transactions
/buy SYMBOL [usdt] — simulated buy
/sell SYMBOL [amount] — simulated sell
/deposit AMOUNT — add fiat to your balance
/mode conservative|balanced|aggressive — risk profile
/interval 15m|30m|1h|4h — notification frequency
/notify — toggle notifications`
}
