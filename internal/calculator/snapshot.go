package calculator

import (
	"github.com/lrndwy/tradingbotv3/internal/model"
)

// Default indicator parameters.
const (
	RSIPeriod       = 14
	BollingerPeriod = 20
	MACDFast        = 12
	MACDSlow        = 26
	MACDSignal      = 9

	// MinCandles is the minimum history for a full snapshot. Below this
	// the whole snapshot is treated as unavailable.
	MinCandles = 50
)

// Snapshot computes all indicators from candles ordered ascending by
// timestamp. Returns ErrNotEnoughData if any sub-indicator cannot be
// computed; callers must then treat the asset as having no signal at all,
// not as HOLD.
func Snapshot(candles []model.Candle) (*model.IndicatorSnapshot, error) {
	if len(candles) < MinCandles {
		return nil, ErrNotEnoughData
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	rsiSeries, err := RSISeries(closes, RSIPeriod)
	if err != nil {
		return nil, err
	}
	stochRSI, err := StochasticRSIPair(rsiSeries, RSIPeriod)
	if err != nil {
		return nil, err
	}
	bb, err := BollingerBands(closes, BollingerPeriod)
	if err != nil {
		return nil, err
	}
	macd, err := MACD(closes, MACDFast, MACDSlow, MACDSignal)
	if err != nil {
		return nil, err
	}

	return &model.IndicatorSnapshot{
		CurrentPrice: closes[len(closes)-1],
		RSI:          rsiSeries[len(rsiSeries)-1],
		Bollinger:    bb,
		MACD:         macd,
		StochRSI:     stochRSI,
	}, nil
}
