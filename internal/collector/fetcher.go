package collector

import (
	"context"

	"github.com/lrndwy/tradingbotv3/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// GetCandles returns up to limit candles in ascending timestamp order;
	// fewer may be returned if the exchange history is short.
	GetCandles(ctx context.Context, symbol string, timeframe model.Timeframe, limit int) ([]model.Candle, error)
	GetPrice(ctx context.Context, symbol string) (float64, error)
	Name() string
}
