package model

// Bollinger holds the Bollinger Band levels.
type Bollinger struct {
	Middle float64
	Upper  float64
	Lower  float64
}

// MACD holds the current and immediately previous MACD/signal line values,
// enough to detect a crossover.
type MACD struct {
	MACD       float64
	Signal     float64
	PrevMACD   float64
	PrevSignal float64
}

// StochRSIPoint is a single %K/%D reading.
type StochRSIPoint struct {
	K float64
	D float64
}

// StochRSI pairs the current reading with the one computed from the
// series excluding the latest RSI value, for crossover detection.
type StochRSI struct {
	Current  StochRSIPoint
	Previous StochRSIPoint
}

// IndicatorSnapshot holds all technical indicators computed from the most
// recent candles of one timeframe. Derived, never persisted.
type IndicatorSnapshot struct {
	CurrentPrice float64
	RSI          float64
	Bollinger    Bollinger
	MACD         MACD
	StochRSI     StochRSI
}
