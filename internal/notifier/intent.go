package notifier

import (
	"strconv"
	"strings"

	"github.com/lrndwy/tradingbotv3/internal/model"
)

// IntentKind enumerates the commands a user can issue. Text and callback
// payloads are decoded once here at the boundary; the core only ever sees
// structured values.
type IntentKind int

const (
	IntentUnknown IntentKind = iota
	IntentStart
	IntentHelp
	IntentAnalyze
	IntentPortfolio
	IntentHistory
	IntentBuy
	IntentSell
	IntentDeposit
	IntentSetMode
	IntentSetInterval
	IntentToggleNotify
	IntentAmount
)

// Intent is a decoded user command.
type Intent struct {
	Kind   IntentKind
	Symbol string

	// Amount is a quote amount for buys/deposits, a base amount for
	// sells, or the bare-number reply to a pending trade intent.
	Amount    float64
	HasAmount bool

	// Percent is set instead of Amount for callback sells ("sell 50%").
	Percent    float64
	HasPercent bool

	Mode     model.TradingMode
	Interval string
}

// ParseMessage decodes a plain text message into an intent.
func ParseMessage(text string) Intent {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 {
		return Intent{Kind: IntentUnknown}
	}

	// A bare number is the reply to a pending buy/sell prompt.
	if v, err := strconv.ParseFloat(fields[0], 64); err == nil && len(fields) == 1 {
		return Intent{Kind: IntentAmount, Amount: v, HasAmount: true}
	}

	cmd := strings.ToLower(fields[0])
	// Strip a possible @botname suffix.
	if i := strings.Index(cmd, "@"); i > 0 {
		cmd = cmd[:i]
	}

	switch cmd {
	case "/start":
		return Intent{Kind: IntentStart}
	case "/help":
		return Intent{Kind: IntentHelp}
	case "/analyze":
		return Intent{Kind: IntentAnalyze}
	case "/portfolio":
		return Intent{Kind: IntentPortfolio}
	case "/history":
		return Intent{Kind: IntentHistory}
	case "/buy":
		return parseTrade(IntentBuy, fields)
	case "/sell":
		return parseTrade(IntentSell, fields)
	case "/deposit":
		it := Intent{Kind: IntentDeposit}
		if len(fields) >= 2 {
			if v, err := strconv.ParseFloat(fields[1], 64); err == nil {
				it.Amount = v
				it.HasAmount = true
			}
		}
		return it
	case "/mode":
		if len(fields) >= 2 {
			switch strings.ToLower(fields[1]) {
			case "conservative":
				return Intent{Kind: IntentSetMode, Mode: model.ModeConservative}
			case "balanced":
				return Intent{Kind: IntentSetMode, Mode: model.ModeBalanced}
			case "aggressive":
				return Intent{Kind: IntentSetMode, Mode: model.ModeAggressive}
			}
		}
		return Intent{Kind: IntentSetMode}
	case "/interval":
		it := Intent{Kind: IntentSetInterval}
		if len(fields) >= 2 {
			switch fields[1] {
			case "15m", "30m", "1h", "4h":
				it.Interval = fields[1]
			}
		}
		return it
	case "/notify":
		return Intent{Kind: IntentToggleNotify}
	default:
		return Intent{Kind: IntentUnknown}
	}
}

func parseTrade(kind IntentKind, fields []string) Intent {
	it := Intent{Kind: kind}
	if len(fields) >= 2 {
		it.Symbol = strings.ToUpper(fields[1])
	}
	if len(fields) >= 3 {
		if v, err := strconv.ParseFloat(fields[2], 64); err == nil {
			it.Amount = v
			it.HasAmount = true
		}
	}
	return it
}

// ParseCallback decodes an inline keyboard payload. Trade payloads follow
// the "buy_BTC_100" / "sell_BTC_50" shape, where the sell value is a
// percentage of the position.
func ParseCallback(data string) Intent {
	switch data {
	case "run_analysis":
		return Intent{Kind: IntentAnalyze}
	case "portfolio_menu":
		return Intent{Kind: IntentPortfolio}
	case "show_help":
		return Intent{Kind: IntentHelp}
	case "toggle_notifications":
		return Intent{Kind: IntentToggleNotify}
	}

	if iv, ok := strings.CutPrefix(data, "set_interval_"); ok {
		switch iv {
		case "15m", "30m", "1h", "4h":
			return Intent{Kind: IntentSetInterval, Interval: iv}
		}
		return Intent{Kind: IntentUnknown}
	}
	if mode, ok := strings.CutPrefix(data, "set_mode_"); ok {
		switch mode {
		case "conservative":
			return Intent{Kind: IntentSetMode, Mode: model.ModeConservative}
		case "balanced":
			return Intent{Kind: IntentSetMode, Mode: model.ModeBalanced}
		case "aggressive":
			return Intent{Kind: IntentSetMode, Mode: model.ModeAggressive}
		}
		return Intent{Kind: IntentUnknown}
	}

	parts := strings.Split(data, "_")
	if len(parts) == 3 {
		value, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return Intent{Kind: IntentUnknown}
		}
		symbol := strings.ToUpper(parts[1])
		switch parts[0] {
		case "buy":
			return Intent{Kind: IntentBuy, Symbol: symbol, Amount: value, HasAmount: true}
		case "sell":
			return Intent{Kind: IntentSell, Symbol: symbol, Percent: value, HasPercent: true}
		}
	}
	return Intent{Kind: IntentUnknown}
}
