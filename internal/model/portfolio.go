package model

// Defaults applied when a user is first seen.
const (
	SeedCapital                 = 10000.0
	DefaultNotificationInterval = "4h"
)

// User is a chat user with a simulated fiat balance in quote-currency units.
// Created lazily on first interaction. The fiat balance is mutated only by
// the ledger (buy debits, sell credits, deposit credits).
type User struct {
	ID                   int64
	ChatID               int64
	FirstName            string
	FiatBalance          float64
	TradingMode          TradingMode
	NotificationInterval string // "15m", "30m", "1h", "4h"
	NotificationsEnabled bool
}

// NewUser builds a user row with the default seed capital and settings.
func NewUser(id, chatID int64, firstName string) User {
	return User{
		ID:                   id,
		ChatID:               chatID,
		FirstName:            firstName,
		FiatBalance:          SeedCapital,
		TradingMode:          ModeBalanced,
		NotificationInterval: DefaultNotificationInterval,
		NotificationsEnabled: true,
	}
}

// Holding is the current position of one user in one symbol.
// Invariant: Amount >= 0; positions drained below the dust epsilon are
// deleted rather than retained.
type Holding struct {
	UserID      int64
	Symbol      string
	Amount      float64 // base-asset units
	AvgBuyPrice float64 // volume-weighted, recomputed on buys only
}

// TransactionType distinguishes ledger log entries.
type TransactionType string

const (
	TxBuy     TransactionType = "buy"
	TxSell    TransactionType = "sell"
	TxDeposit TransactionType = "deposit"
)

// Transaction is an append-only ledger log entry. Never mutated or deleted;
// the system of record independent of the current holding snapshot.
type Transaction struct {
	ID        string
	UserID    int64
	Symbol    string
	Type      TransactionType
	Amount    float64
	Price     float64
	Timestamp int64 // unix milliseconds
}

// Position is one holding valued at the current market price.
type Position struct {
	Symbol       string
	Amount       float64
	AvgBuyPrice  float64
	CurrentPrice float64
	CurrentValue float64
	Cost         float64
	PnL          float64
	PnLPercent   float64
	Stale        bool // price fetch failed; excluded from totals
}

// Valuation aggregates a user's portfolio at current prices.
type Valuation struct {
	Positions        []Position
	TotalAssetsValue float64
	FiatBalance      float64
	TotalEquity      float64
	StaleCount       int
}
