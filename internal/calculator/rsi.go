package calculator

import "errors"

// ErrNotEnoughData is returned when a series is too short for the
// requested indicator window.
var ErrNotEnoughData = errors.New("not enough data")

// RSISeries computes the RSI over every sliding window of `period`
// consecutive deltas, one value per index >= period. Each window is
// recomputed from scratch (simple average of gains/losses, not Wilder
// smoothing). Requires at least period+1 closes.
func RSISeries(closes []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	if len(closes) < period+1 {
		return nil, ErrNotEnoughData
	}

	series := make([]float64, 0, len(closes)-period)
	for i := period; i < len(closes); i++ {
		var gains, losses float64
		for j := i - period + 1; j <= i; j++ {
			change := closes[j] - closes[j-1]
			if change > 0 {
				gains += change
			} else {
				losses -= change
			}
		}
		avgGain := gains / float64(period)
		avgLoss := losses / float64(period)
		if avgLoss == 0 {
			series = append(series, 100.0)
			continue
		}
		rs := avgGain / avgLoss
		series = append(series, 100.0-100.0/(1.0+rs))
	}
	return series, nil
}

// RSI returns the latest windowed RSI value.
func RSI(closes []float64, period int) (float64, error) {
	series, err := RSISeries(closes, period)
	if err != nil {
		return 0, err
	}
	return series[len(series)-1], nil
}
