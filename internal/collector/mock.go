package collector

import (
	"context"
	"errors"

	"github.com/lrndwy/tradingbotv3/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price    float64
	PriceErr error
	Candles  map[model.Timeframe][]model.Candle
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) GetCandles(_ context.Context, symbol string, timeframe model.Timeframe, limit int) ([]model.Candle, error) {
	candles, ok := m.Candles[timeframe]
	if !ok {
		return nil, errors.New("mock: no candles for timeframe")
	}
	out := make([]model.Candle, 0, len(candles))
	for _, c := range candles {
		c.Symbol = symbol
		c.Timeframe = timeframe
		out = append(out, c)
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (m *MockFetcher) GetPrice(_ context.Context, _ string) (float64, error) {
	if m.PriceErr != nil {
		return 0, m.PriceErr
	}
	return m.Price, nil
}
