package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lrndwy/tradingbotv3/internal/calculator"
	"github.com/lrndwy/tradingbotv3/internal/collector"
	"github.com/lrndwy/tradingbotv3/internal/model"
	"github.com/lrndwy/tradingbotv3/internal/store"
	"github.com/lrndwy/tradingbotv3/internal/strategy"
)

// ErrInsufficientHistory marks a symbol whose stored candle history is too
// short for a full indicator snapshot. This is a distinct outcome from a
// HOLD signal: the symbol is omitted from the report, not rendered neutral.
var ErrInsufficientHistory = errors.New("insufficient candle history")

// Candle depths loaded per timeframe for analysis.
const (
	history1h = 500
	history4h = 250
)

// Analyzer assembles full market reports from stored candle history.
type Analyzer struct {
	Store     store.Store
	Fetcher   collector.Fetcher
	Sentiment *collector.SentimentSource
	Symbols   []string
}

// New creates an Analyzer over the tracked symbol universe.
func New(st store.Store, fetcher collector.Fetcher, sentiment *collector.SentimentSource, symbols []string) *Analyzer {
	return &Analyzer{Store: st, Fetcher: fetcher, Sentiment: sentiment, Symbols: symbols}
}

// AnalyzeSymbol computes the composite signal for one symbol under the
// given trading mode. Returns ErrInsufficientHistory when either timeframe
// has fewer candles than a snapshot needs.
func (a *Analyzer) AnalyzeSymbol(ctx context.Context, symbol string, mode model.TradingMode) (*model.AssetReport, error) {
	candles1h, err := a.Store.GetCandles(ctx, symbol, model.Timeframe1h, history1h)
	if err != nil {
		return nil, fmt.Errorf("load 1h candles: %w", err)
	}
	candles4h, err := a.Store.GetCandles(ctx, symbol, model.Timeframe4h, history4h)
	if err != nil {
		return nil, fmt.Errorf("load 4h candles: %w", err)
	}
	if len(candles1h) < calculator.MinCandles || len(candles4h) < calculator.MinCandles {
		return nil, ErrInsufficientHistory
	}

	short, err := calculator.Snapshot(candles1h)
	if err != nil {
		return nil, wrapSnapshotErr(err)
	}
	long, err := calculator.Snapshot(candles4h)
	if err != nil {
		return nil, wrapSnapshotErr(err)
	}

	trend := strategy.ClassifyTrend(long)
	signal := strategy.Score(short, trend, a.Sentiment.Current(), mode)

	// The live price is for display and may diverge from the snapshot's
	// stored close; simulated trades execute against the live price.
	displayPrice, err := a.Fetcher.GetPrice(ctx, symbol)
	if err != nil {
		log.Printf("[WARN] live price for %s unavailable, showing last close: %v", symbol, err)
		displayPrice = short.CurrentPrice
	}

	return &model.AssetReport{
		Symbol:       symbol,
		Signal:       signal,
		DisplayPrice: displayPrice,
		Trend:        trend,
	}, nil
}

// Analyze iterates the tracked universe and assembles one report. Symbols
// with insufficient history are listed as skipped; storage errors on a
// single symbol are logged and treated the same way.
func (a *Analyzer) Analyze(ctx context.Context, mode model.TradingMode) (*model.Report, error) {
	report := &model.Report{
		GeneratedAt: time.Now().Unix(),
		Sentiment:   a.Sentiment.Current(),
	}

	for _, symbol := range a.Symbols {
		entry, err := a.AnalyzeSymbol(ctx, symbol, mode)
		if errors.Is(err, ErrInsufficientHistory) {
			report.Skipped = append(report.Skipped, symbol)
			continue
		}
		if err != nil {
			log.Printf("[ERROR] analyze %s: %v", symbol, err)
			report.Skipped = append(report.Skipped, symbol)
			continue
		}
		report.Assets = append(report.Assets, *entry)
	}

	return report, nil
}

func wrapSnapshotErr(err error) error {
	if errors.Is(err, calculator.ErrNotEnoughData) {
		return ErrInsufficientHistory
	}
	return err
}
