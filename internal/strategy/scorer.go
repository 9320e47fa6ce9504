package strategy

import (
	"github.com/lrndwy/tradingbotv3/internal/model"
)

// Rule weights and trigger levels.
const (
	weightBollinger  = 3
	weightStochCross = 3
	weightMACDCross  = 2
	weightRSILevel   = 1
	weightTrend      = 2
	weightSentiment  = 1

	rsiOversold   = 35
	rsiOverbought = 65

	stochOversold   = 30
	stochOverbought = 70

	extremeFear  = 25
	extremeGreed = 75

	// maxScore normalizes confidence: the approximate ceiling a single
	// side can accumulate.
	maxScore = 12
)

// modeThresholds maps each trading mode to its minimum winning score.
// Stricter modes require higher scores, so a signal emitted under a
// stricter mode is always emitted under a looser one.
var modeThresholds = map[model.TradingMode]int{
	model.ModeConservative: 7,
	model.ModeBalanced:     5,
	model.ModeAggressive:   4,
}

const holdReason = "insufficient signal confirmation"

// Score evaluates the weighted rule table against a short-timeframe
// snapshot, the long-timeframe trend and the market sentiment, and returns
// the composite signal for the given trading mode.
func Score(snapshot *model.IndicatorSnapshot, trend model.Trend, sentiment model.SentimentIndex, mode model.TradingMode) model.Signal {
	var buyScore, sellScore int
	var reasons []string
	seen := make(map[string]bool)
	addReason := func(r string) {
		if !seen[r] {
			seen[r] = true
			reasons = append(reasons, r)
		}
	}

	price := snapshot.CurrentPrice
	bb := snapshot.Bollinger
	macd := snapshot.MACD
	stoch := snapshot.StochRSI

	if price < bb.Lower {
		buyScore += weightBollinger
		addReason("price below lower Bollinger band")
	}
	if price > bb.Upper {
		sellScore += weightBollinger
		addReason("price above upper Bollinger band")
	}
	if stoch.Current.K > stoch.Current.D && stoch.Previous.K <= stoch.Previous.D && stoch.Current.K < stochOversold {
		buyScore += weightStochCross
		addReason("StochRSI bullish crossover in oversold zone")
	}
	if stoch.Current.K < stoch.Current.D && stoch.Previous.K >= stoch.Previous.D && stoch.Current.K > stochOverbought {
		sellScore += weightStochCross
		addReason("StochRSI bearish crossover in overbought zone")
	}
	if macd.MACD > macd.Signal && macd.PrevMACD <= macd.PrevSignal {
		buyScore += weightMACDCross
		addReason("MACD bullish crossover")
	}
	if macd.MACD < macd.Signal && macd.PrevMACD >= macd.PrevSignal {
		sellScore += weightMACDCross
		addReason("MACD bearish crossover")
	}
	if snapshot.RSI < rsiOversold {
		buyScore += weightRSILevel
		addReason("RSI near oversold")
	}
	if snapshot.RSI > rsiOverbought {
		sellScore += weightRSILevel
		addReason("RSI near overbought")
	}
	if trend == model.TrendBullish {
		buyScore += weightTrend
		addReason("4h trend bullish")
	}
	if trend == model.TrendBearish {
		sellScore += weightTrend
		addReason("4h trend bearish")
	}
	if sentiment.Value < extremeFear {
		buyScore += weightSentiment
		addReason("market in extreme fear")
	}
	if sentiment.Value > extremeGreed {
		sellScore += weightSentiment
		addReason("market in extreme greed")
	}

	threshold := modeThresholds[mode]
	if threshold == 0 {
		threshold = modeThresholds[model.ModeBalanced]
	}

	confidence := float64(max(buyScore, sellScore)) / maxScore * 100
	if confidence > 100 {
		confidence = 100
	}

	switch {
	case buyScore >= threshold && buyScore > sellScore && buyGate(mode, trend):
		return model.Signal{Action: model.ActionBuy, Confidence: confidence, Reasons: reasons, BuyScore: buyScore, SellScore: sellScore}
	case sellScore >= threshold && sellScore > buyScore && sellGate(mode, trend):
		return model.Signal{Action: model.ActionSell, Confidence: confidence, Reasons: reasons, BuyScore: buyScore, SellScore: sellScore}
	default:
		return model.Signal{Action: model.ActionHold, Confidence: 0, Reasons: []string{holdReason}, BuyScore: buyScore, SellScore: sellScore}
	}
}

// buyGate requires conservative-mode buys to be corroborated by a bullish
// long-term trend. Other modes have no extra gate.
func buyGate(mode model.TradingMode, trend model.Trend) bool {
	if mode == model.ModeConservative {
		return trend == model.TrendBullish
	}
	return true
}

func sellGate(mode model.TradingMode, trend model.Trend) bool {
	if mode == model.ModeConservative {
		return trend == model.TrendBearish
	}
	return true
}
