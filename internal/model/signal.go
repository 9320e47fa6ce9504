package model

// Action is the final recommendation for an asset.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Trend is the coarse long-term market direction derived from the
// higher-timeframe RSI.
type Trend string

const (
	TrendBullish Trend = "Bullish"
	TrendBearish Trend = "Bearish"
	TrendNeutral Trend = "Neutral"
)

// TradingMode selects the scorer's risk profile. Owned by the user.
type TradingMode string

const (
	ModeConservative TradingMode = "conservative"
	ModeBalanced     TradingMode = "balanced"
	ModeAggressive   TradingMode = "aggressive"
)

// Signal is the scorer's output for one asset. Recomputed per report,
// never persisted.
type Signal struct {
	Action     Action
	Confidence float64  // 0-100
	Reasons    []string // ordered by rule evaluation, deduplicated
	BuyScore   int
	SellScore  int
}

// AssetReport is one per-symbol entry of a full market report.
type AssetReport struct {
	Symbol       string
	Signal       Signal
	DisplayPrice float64 // live price, may diverge from snapshot close
	Trend        Trend
}

// Report is a full market analysis across the tracked universe.
type Report struct {
	GeneratedAt int64 // unix seconds
	Sentiment   SentimentIndex
	Assets      []AssetReport
	Skipped     []string // symbols omitted for insufficient history
}
