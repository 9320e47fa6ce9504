package collector

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lrndwy/tradingbotv3/internal/model"
	"github.com/lrndwy/tradingbotv3/internal/store"
)

// Candle fetch depths per timeframe, matching the analysis history needs.
const (
	limit1h = 500
	limit4h = 250
)

// Collector refreshes candle history for the tracked symbol universe into
// the store. Candle rows are insert-if-absent; history is never rewritten.
type Collector struct {
	Fetcher Fetcher
	Store   store.Store
	Symbols []string
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, st store.Store, symbols []string) *Collector {
	return &Collector{Fetcher: fetcher, Store: st, Symbols: symbols}
}

// RefreshAll fetches and stores both timeframes for every tracked symbol.
// Per-symbol failures are logged and skipped; one dead symbol must not
// stall the refresh cycle.
func (c *Collector) RefreshAll(ctx context.Context) {
	started := time.Now()
	for _, symbol := range c.Symbols {
		if err := c.refreshSymbol(ctx, symbol, model.Timeframe1h, limit1h); err != nil {
			log.Printf("[WARN] refresh %s 1h: %v", symbol, err)
		}
		if err := c.refreshSymbol(ctx, symbol, model.Timeframe4h, limit4h); err != nil {
			log.Printf("[WARN] refresh %s 4h: %v", symbol, err)
		}
	}
	log.Printf("[INFO] market data refresh finished in %s", time.Since(started).Round(time.Millisecond))
}

func (c *Collector) refreshSymbol(ctx context.Context, symbol string, timeframe model.Timeframe, limit int) error {
	candles, err := c.Fetcher.GetCandles(ctx, symbol, timeframe, limit)
	if err != nil {
		return fmt.Errorf("fetch candles: %w", err)
	}
	for _, candle := range candles {
		if err := c.Store.InsertCandleIfAbsent(ctx, candle); err != nil {
			return fmt.Errorf("store candle: %w", err)
		}
	}
	return nil
}
