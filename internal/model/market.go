package model

// Timeframe identifies a candle aggregation interval.
type Timeframe string

const (
	Timeframe1h Timeframe = "1h"
	Timeframe4h Timeframe = "4h"
)

// Candle represents a single OHLCV bar, keyed by (Symbol, Timeframe, Timestamp).
// Candle rows are append-only: an existing key is never overwritten.
type Candle struct {
	Symbol    string
	Timeframe Timeframe
	Timestamp int64 // exchange-native open time, milliseconds
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// SentimentIndex is the market fear & greed reading (0-100).
type SentimentIndex struct {
	Value          int
	Classification string
}
