package strategy

import (
	"testing"

	"github.com/lrndwy/tradingbotv3/internal/model"
)

func neutralSnapshot() *model.IndicatorSnapshot {
	return &model.IndicatorSnapshot{
		CurrentPrice: 100,
		RSI:          50,
		Bollinger:    model.Bollinger{Middle: 100, Upper: 110, Lower: 90},
		MACD:         model.MACD{MACD: 1, Signal: 1, PrevMACD: 1, PrevSignal: 1},
		StochRSI: model.StochRSI{
			Current:  model.StochRSIPoint{K: 50, D: 50},
			Previous: model.StochRSIPoint{K: 50, D: 50},
		},
	}
}

// strongBuySnapshot fires the Bollinger, StochRSI, MACD and RSI buy rules:
// 3+3+2+1 = 9 on the buy side.
func strongBuySnapshot() *model.IndicatorSnapshot {
	return &model.IndicatorSnapshot{
		CurrentPrice: 85,
		RSI:          28,
		Bollinger:    model.Bollinger{Middle: 100, Upper: 110, Lower: 90},
		MACD:         model.MACD{MACD: 2, Signal: 1, PrevMACD: 0.5, PrevSignal: 1},
		StochRSI: model.StochRSI{
			Current:  model.StochRSIPoint{K: 20, D: 15},
			Previous: model.StochRSIPoint{K: 10, D: 12},
		},
	}
}

func strongSellSnapshot() *model.IndicatorSnapshot {
	return &model.IndicatorSnapshot{
		CurrentPrice: 115,
		RSI:          72,
		Bollinger:    model.Bollinger{Middle: 100, Upper: 110, Lower: 90},
		MACD:         model.MACD{MACD: 1, Signal: 2, PrevMACD: 2, PrevSignal: 1.5},
		StochRSI: model.StochRSI{
			Current:  model.StochRSIPoint{K: 80, D: 85},
			Previous: model.StochRSIPoint{K: 90, D: 88},
		},
	}
}

var neutralSentiment = model.SentimentIndex{Value: 50, Classification: "Neutral"}

func TestScore_NeutralIsHold(t *testing.T) {
	sig := Score(neutralSnapshot(), model.TrendNeutral, neutralSentiment, model.ModeBalanced)
	if sig.Action != model.ActionHold {
		t.Errorf("expected HOLD on neutral inputs, got %s", sig.Action)
	}
	if sig.Confidence != 0 {
		t.Errorf("expected zero confidence on HOLD, got %.1f", sig.Confidence)
	}
	if len(sig.Reasons) != 1 || sig.Reasons[0] != holdReason {
		t.Errorf("expected single hold reason, got %v", sig.Reasons)
	}
}

func TestScore_StrongBuy(t *testing.T) {
	sig := Score(strongBuySnapshot(), model.TrendBullish, neutralSentiment, model.ModeBalanced)
	if sig.Action != model.ActionBuy {
		t.Fatalf("expected BUY, got %s (buy=%d sell=%d)", sig.Action, sig.BuyScore, sig.SellScore)
	}
	// 3 (BB) + 3 (stoch) + 2 (MACD) + 1 (RSI) + 2 (trend) = 11
	if sig.BuyScore != 11 {
		t.Errorf("expected buy score 11, got %d", sig.BuyScore)
	}
	if sig.Confidence <= 0 || sig.Confidence > 100 {
		t.Errorf("confidence out of range: %.1f", sig.Confidence)
	}
}

func TestScore_TieAlwaysHolds(t *testing.T) {
	// Bollinger breach both ways is impossible, so build a tie from the
	// trend (2 buy) vs MACD bearish cross (2 sell).
	snap := neutralSnapshot()
	snap.MACD = model.MACD{MACD: 1, Signal: 2, PrevMACD: 2, PrevSignal: 1.5}

	for _, mode := range []model.TradingMode{model.ModeConservative, model.ModeBalanced, model.ModeAggressive} {
		sig := Score(snap, model.TrendBullish, neutralSentiment, mode)
		if sig.BuyScore != sig.SellScore {
			t.Fatalf("test setup: expected a tie, got buy=%d sell=%d", sig.BuyScore, sig.SellScore)
		}
		if sig.Action != model.ActionHold {
			t.Errorf("mode %s: tie must HOLD, got %s", mode, sig.Action)
		}
	}
}

func TestScore_ModeThresholdMonotonicity(t *testing.T) {
	if modeThresholds[model.ModeConservative] < modeThresholds[model.ModeBalanced] ||
		modeThresholds[model.ModeBalanced] < modeThresholds[model.ModeAggressive] {
		t.Fatal("mode thresholds must be monotonically non-increasing from conservative to aggressive")
	}

	// For identical inputs, if Aggressive holds, every mode must hold.
	snap := neutralSnapshot()
	snap.RSI = 30 // 1 buy point, below every threshold
	aggressive := Score(snap, model.TrendNeutral, neutralSentiment, model.ModeAggressive)
	if aggressive.Action != model.ActionHold {
		t.Fatalf("expected aggressive HOLD, got %s", aggressive.Action)
	}
	for _, mode := range []model.TradingMode{model.ModeBalanced, model.ModeConservative} {
		if sig := Score(snap, model.TrendNeutral, neutralSentiment, mode); sig.Action != model.ActionHold {
			t.Errorf("mode %s must HOLD when aggressive holds, got %s", mode, sig.Action)
		}
	}
}

func TestScore_ConservativeRequiresTrendCorroboration(t *testing.T) {
	snap := strongBuySnapshot() // 9 buy points without trend

	// Clears the conservative threshold but the trend is not bullish.
	sig := Score(snap, model.TrendNeutral, neutralSentiment, model.ModeConservative)
	if sig.Action != model.ActionHold {
		t.Errorf("conservative buy without bullish trend must HOLD, got %s", sig.Action)
	}

	// Same profile passes in balanced mode.
	sig = Score(snap, model.TrendNeutral, neutralSentiment, model.ModeBalanced)
	if sig.Action != model.ActionBuy {
		t.Errorf("balanced mode should BUY on the same profile, got %s", sig.Action)
	}

	// And in conservative once the trend corroborates.
	sig = Score(snap, model.TrendBullish, neutralSentiment, model.ModeConservative)
	if sig.Action != model.ActionBuy {
		t.Errorf("conservative with bullish trend should BUY, got %s", sig.Action)
	}
}

func TestScore_SellSide(t *testing.T) {
	sig := Score(strongSellSnapshot(), model.TrendBearish, model.SentimentIndex{Value: 80, Classification: "Extreme Greed"}, model.ModeBalanced)
	if sig.Action != model.ActionSell {
		t.Fatalf("expected SELL, got %s (buy=%d sell=%d)", sig.Action, sig.BuyScore, sig.SellScore)
	}
	// 3 (BB) + 3 (stoch) + 2 (MACD) + 1 (RSI) + 2 (trend) + 1 (greed) = 12
	if sig.SellScore != 12 {
		t.Errorf("expected sell score 12, got %d", sig.SellScore)
	}
	if sig.Confidence != 100 {
		t.Errorf("expected confidence 100 at the normalizing ceiling, got %.1f", sig.Confidence)
	}
}

func TestScore_SentimentRules(t *testing.T) {
	snap := neutralSnapshot()
	fear := Score(snap, model.TrendNeutral, model.SentimentIndex{Value: 10, Classification: "Extreme Fear"}, model.ModeAggressive)
	if fear.BuyScore != 1 {
		t.Errorf("extreme fear should add 1 buy point, got %d", fear.BuyScore)
	}
	greed := Score(snap, model.TrendNeutral, model.SentimentIndex{Value: 90, Classification: "Extreme Greed"}, model.ModeAggressive)
	if greed.SellScore != 1 {
		t.Errorf("extreme greed should add 1 sell point, got %d", greed.SellScore)
	}
}

func TestScore_ReasonsFollowRuleOrder(t *testing.T) {
	sig := Score(strongBuySnapshot(), model.TrendBullish, model.SentimentIndex{Value: 10, Classification: "Extreme Fear"}, model.ModeBalanced)
	want := []string{
		"price below lower Bollinger band",
		"StochRSI bullish crossover in oversold zone",
		"MACD bullish crossover",
		"RSI near oversold",
		"4h trend bullish",
		"market in extreme fear",
	}
	if len(sig.Reasons) != len(want) {
		t.Fatalf("expected %d reasons, got %d: %v", len(want), len(sig.Reasons), sig.Reasons)
	}
	for i, r := range want {
		if sig.Reasons[i] != r {
			t.Errorf("reason[%d] = %q, want %q", i, sig.Reasons[i], r)
		}
	}
}

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		rsi  float64
		want model.Trend
	}{
		{70, model.TrendBullish},
		{55.1, model.TrendBullish},
		{55, model.TrendNeutral},
		{50, model.TrendNeutral},
		{45, model.TrendNeutral},
		{44.9, model.TrendBearish},
		{20, model.TrendBearish},
	}
	for _, tt := range tests {
		snap := &model.IndicatorSnapshot{RSI: tt.rsi}
		if got := ClassifyTrend(snap); got != tt.want {
			t.Errorf("RSI %.1f: expected %s, got %s", tt.rsi, tt.want, got)
		}
	}
}
