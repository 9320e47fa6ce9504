package calculator

import (
	"math"

	"github.com/lrndwy/tradingbotv3/internal/model"
)

// BollingerBands computes the SMA of the trailing `period` closes and the
// bands at +/- 2 population standard deviations (divisor = period).
func BollingerBands(closes []float64, period int) (model.Bollinger, error) {
	if len(closes) < period {
		return model.Bollinger{}, ErrNotEnoughData
	}

	window := closes[len(closes)-period:]
	var sum float64
	for _, c := range window {
		sum += c
	}
	sma := sum / float64(period)

	var variance float64
	for _, c := range window {
		variance += (c - sma) * (c - sma)
	}
	stdDev := math.Sqrt(variance / float64(period))

	return model.Bollinger{
		Middle: sma,
		Upper:  sma + 2*stdDev,
		Lower:  sma - 2*stdDev,
	}, nil
}
