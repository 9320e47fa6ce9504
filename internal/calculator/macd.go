package calculator

import (
	"github.com/lrndwy/tradingbotv3/internal/model"
)

// EMA computes the exponential moving average series. The seed is the first
// element of the input rather than a primed warm-up average; early values
// are biased toward it.
func EMA(series []float64, period int) []float64 {
	if len(series) == 0 {
		return nil
	}
	k := 2.0 / float64(period+1)
	out := make([]float64, len(series))
	out[0] = series[0]
	for i := 1; i < len(series); i++ {
		out[i] = series[i]*k + out[i-1]*(1-k)
	}
	return out
}

// MACD computes the MACD line (fast EMA minus slow EMA) and its signal
// line, exposing the current and immediately previous values of both for
// crossover detection. Needs at least two closes for a previous value.
func MACD(closes []float64, fast, slow, signal int) (model.MACD, error) {
	if len(closes) < 2 {
		return model.MACD{}, ErrNotEnoughData
	}

	emaFast := EMA(closes, fast)
	emaSlow := EMA(closes, slow)
	macdLine := make([]float64, len(closes))
	for i := range closes {
		macdLine[i] = emaFast[i] - emaSlow[i]
	}
	signalLine := EMA(macdLine, signal)

	n := len(closes)
	return model.MACD{
		MACD:       macdLine[n-1],
		Signal:     signalLine[n-1],
		PrevMACD:   macdLine[n-2],
		PrevSignal: signalLine[n-2],
	}, nil
}
