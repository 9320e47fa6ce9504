package strategy

import (
	"github.com/lrndwy/tradingbotv3/internal/model"
)

// Trend classification thresholds on the higher-timeframe RSI.
const (
	trendBullishRSI = 55
	trendBearishRSI = 45
)

// ClassifyTrend derives the coarse long-term trend label from a
// higher-timeframe indicator snapshot.
func ClassifyTrend(snapshot *model.IndicatorSnapshot) model.Trend {
	switch {
	case snapshot.RSI > trendBullishRSI:
		return model.TrendBullish
	case snapshot.RSI < trendBearishRSI:
		return model.TrendBearish
	default:
		return model.TrendNeutral
	}
}
