package store

import (
	"context"
	"errors"

	"github.com/lrndwy/tradingbotv3/internal/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store persists users, holdings, the transaction log and candle history.
type Store interface {
	GetUser(ctx context.Context, id int64) (*model.User, error)
	// FindOrCreateUser inserts the given user if no row exists for its ID
	// and returns the stored row either way.
	FindOrCreateUser(ctx context.Context, user model.User) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	ListNotifiableUsers(ctx context.Context) ([]model.User, error)

	GetHolding(ctx context.Context, userID int64, symbol string) (*model.Holding, error)
	UpsertHolding(ctx context.Context, holding *model.Holding) error
	DeleteHolding(ctx context.Context, userID int64, symbol string) error
	ListHoldings(ctx context.Context, userID int64) ([]model.Holding, error)

	AppendTransaction(ctx context.Context, tx *model.Transaction) error
	ListTransactions(ctx context.Context, userID int64, limit int) ([]model.Transaction, error)

	// ApplyTrade commits a trade as one unit: the user row (balance), the
	// holding (upserted, or deleted when deleteHolding is set; nil for
	// deposits) and the ledger entry. On error no part is applied.
	ApplyTrade(ctx context.Context, user *model.User, holding *model.Holding, deleteHolding bool, tx *model.Transaction) error

	// InsertCandleIfAbsent is idempotent on (symbol, timeframe, timestamp);
	// existing rows are never overwritten.
	InsertCandleIfAbsent(ctx context.Context, candle model.Candle) error
	// GetCandles returns up to limit most recent candles in ascending
	// timestamp order.
	GetCandles(ctx context.Context, symbol string, timeframe model.Timeframe, limit int) ([]model.Candle, error)

	Close() error
}
