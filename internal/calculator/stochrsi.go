package calculator

import (
	"github.com/lrndwy/tradingbotv3/internal/model"
)

// StochasticRSI computes the %K/%D pair over the last `period` values of an
// RSI series. %K is the min-max position of the latest RSI within that
// window; %D is the 3-sample average of a rolling %K recomputed over the
// trailing period+2 RSI values. A flat window maps to 50/50.
func StochasticRSI(rsiSeries []float64, period int) (model.StochRSIPoint, error) {
	if len(rsiSeries) < period {
		return model.StochRSIPoint{}, ErrNotEnoughData
	}

	window := rsiSeries[len(rsiSeries)-period:]
	low, high := minMax(window)
	if high == low {
		return model.StochRSIPoint{K: 50, D: 50}, nil
	}
	k := 100 * (window[len(window)-1] - low) / (high - low)

	// Rolling %K over the trailing period+2 values, each entry using its
	// own period-window min/max.
	tail := rsiSeries
	if len(tail) > period+2 {
		tail = tail[len(tail)-(period+2):]
	}
	var rolling []float64
	for i := period - 1; i < len(tail); i++ {
		slice := tail[i-period+1 : i+1]
		lo, hi := minMax(slice)
		if hi == lo {
			rolling = append(rolling, 50)
			continue
		}
		rolling = append(rolling, 100*(slice[len(slice)-1]-lo)/(hi-lo))
	}
	if len(rolling) > 3 {
		rolling = rolling[len(rolling)-3:]
	}
	var sum float64
	for _, v := range rolling {
		sum += v
	}
	d := sum / 3

	return model.StochRSIPoint{K: k, D: d}, nil
}

// StochasticRSIPair returns the current reading and the one computed with
// the latest RSI value excluded, for crossover detection.
func StochasticRSIPair(rsiSeries []float64, period int) (model.StochRSI, error) {
	current, err := StochasticRSI(rsiSeries, period)
	if err != nil {
		return model.StochRSI{}, err
	}
	previous, err := StochasticRSI(rsiSeries[:len(rsiSeries)-1], period)
	if err != nil {
		return model.StochRSI{}, err
	}
	return model.StochRSI{Current: current, Previous: previous}, nil
}

func minMax(values []float64) (low, high float64) {
	low, high = values[0], values[0]
	for _, v := range values[1:] {
		if v < low {
			low = v
		}
		if v > high {
			high = v
		}
	}
	return low, high
}
