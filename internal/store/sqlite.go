package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/lrndwy/tradingbotv3/internal/model"
)

// SQLiteStore persists all entities to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so report reads do not block ledger writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id                    INTEGER PRIMARY KEY,
			chat_id               INTEGER NOT NULL,
			first_name            TEXT,
			fiat_balance          REAL NOT NULL,
			trading_mode          TEXT NOT NULL DEFAULT 'balanced',
			notification_interval TEXT NOT NULL DEFAULT '4h',
			notifications_enabled INTEGER NOT NULL DEFAULT 1
		)`,

		`CREATE TABLE IF NOT EXISTS holdings (
			user_id       INTEGER NOT NULL,
			symbol        TEXT NOT NULL,
			amount        REAL NOT NULL,
			avg_buy_price REAL NOT NULL,
			PRIMARY KEY (user_id, symbol)
		)`,

		`CREATE TABLE IF NOT EXISTS transactions (
			id        TEXT PRIMARY KEY,
			user_id   INTEGER NOT NULL,
			symbol    TEXT NOT NULL,
			type      TEXT NOT NULL,
			amount    REAL NOT NULL,
			price     REAL NOT NULL,
			timestamp INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tx_user_ts ON transactions(user_id, timestamp)`,

		`CREATE TABLE IF NOT EXISTS market_data (
			symbol    TEXT NOT NULL,
			timeframe TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			open      REAL NOT NULL,
			high      REAL NOT NULL,
			low       REAL NOT NULL,
			close     REAL NOT NULL,
			volume    REAL NOT NULL,
			PRIMARY KEY (symbol, timeframe, timestamp)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) GetUser(ctx context.Context, id int64) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, chat_id, first_name, fiat_balance,
		trading_mode, notification_interval, notifications_enabled
		FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (s *SQLiteStore) FindOrCreateUser(ctx context.Context, user model.User) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO users
		(id, chat_id, first_name, fiat_balance, trading_mode, notification_interval, notifications_enabled)
		VALUES (?,?,?,?,?,?,?)`,
		user.ID, user.ChatID, user.FirstName, user.FiatBalance,
		string(user.TradingMode), user.NotificationInterval, boolToInt(user.NotificationsEnabled),
	); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.GetUser(ctx, user.ID)
}

func (s *SQLiteStore) UpdateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `UPDATE users SET chat_id = ?, first_name = ?,
		fiat_balance = ?, trading_mode = ?, notification_interval = ?, notifications_enabled = ?
		WHERE id = ?`,
		user.ChatID, user.FirstName, user.FiatBalance, string(user.TradingMode),
		user.NotificationInterval, boolToInt(user.NotificationsEnabled), user.ID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ListNotifiableUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, chat_id, first_name, fiat_balance,
		trading_mode, notification_interval, notifications_enabled
		FROM users WHERE notifications_enabled = 1`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *SQLiteStore) GetHolding(ctx context.Context, userID int64, symbol string) (*model.Holding, error) {
	var h model.Holding
	err := s.db.QueryRowContext(ctx, `SELECT user_id, symbol, amount, avg_buy_price
		FROM holdings WHERE user_id = ? AND symbol = ?`, userID, symbol).
		Scan(&h.UserID, &h.Symbol, &h.Amount, &h.AvgBuyPrice)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get holding: %w", err)
	}
	return &h, nil
}

func (s *SQLiteStore) UpsertHolding(ctx context.Context, holding *model.Holding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `INSERT INTO holdings (user_id, symbol, amount, avg_buy_price)
		VALUES (?,?,?,?)
		ON CONFLICT(user_id, symbol) DO UPDATE SET amount = excluded.amount, avg_buy_price = excluded.avg_buy_price`,
		holding.UserID, holding.Symbol, holding.Amount, holding.AvgBuyPrice,
	)
	if err != nil {
		return fmt.Errorf("upsert holding: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteHolding(ctx context.Context, userID int64, symbol string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM holdings WHERE user_id = ? AND symbol = ?`, userID, symbol); err != nil {
		return fmt.Errorf("delete holding: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListHoldings(ctx context.Context, userID int64) ([]model.Holding, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id, symbol, amount, avg_buy_price
		FROM holdings WHERE user_id = ? ORDER BY symbol`, userID)
	if err != nil {
		return nil, fmt.Errorf("list holdings: %w", err)
	}
	defer rows.Close()

	var holdings []model.Holding
	for rows.Next() {
		var h model.Holding
		if err := rows.Scan(&h.UserID, &h.Symbol, &h.Amount, &h.AvgBuyPrice); err != nil {
			return nil, fmt.Errorf("scan holding: %w", err)
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

func (s *SQLiteStore) AppendTransaction(ctx context.Context, tx *model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `INSERT INTO transactions (id, user_id, symbol, type, amount, price, timestamp)
		VALUES (?,?,?,?,?,?,?)`,
		tx.ID, tx.UserID, tx.Symbol, string(tx.Type), tx.Amount, tx.Price, tx.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListTransactions(ctx context.Context, userID int64, limit int) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, user_id, symbol, type, amount, price, timestamp
		FROM transactions WHERE user_id = ? ORDER BY timestamp DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []model.Transaction
	for rows.Next() {
		var tx model.Transaction
		var txType string
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Symbol, &txType, &tx.Amount, &tx.Price, &tx.Timestamp); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Type = model.TransactionType(txType)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (s *SQLiteStore) ApplyTrade(ctx context.Context, user *model.User, holding *model.Holding, deleteHolding bool, tx *model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin trade: %w", err)
	}
	defer dbTx.Rollback()

	res, err := dbTx.ExecContext(ctx, `UPDATE users SET fiat_balance = ? WHERE id = ?`,
		user.FiatBalance, user.ID)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	switch {
	case holding == nil:
	case deleteHolding:
		if _, err := dbTx.ExecContext(ctx, `DELETE FROM holdings WHERE user_id = ? AND symbol = ?`,
			holding.UserID, holding.Symbol); err != nil {
			return fmt.Errorf("delete holding: %w", err)
		}
	default:
		if _, err := dbTx.ExecContext(ctx, `INSERT INTO holdings (user_id, symbol, amount, avg_buy_price)
			VALUES (?,?,?,?)
			ON CONFLICT(user_id, symbol) DO UPDATE SET amount = excluded.amount, avg_buy_price = excluded.avg_buy_price`,
			holding.UserID, holding.Symbol, holding.Amount, holding.AvgBuyPrice,
		); err != nil {
			return fmt.Errorf("upsert holding: %w", err)
		}
	}

	if _, err := dbTx.ExecContext(ctx, `INSERT INTO transactions (id, user_id, symbol, type, amount, price, timestamp)
		VALUES (?,?,?,?,?,?,?)`,
		tx.ID, tx.UserID, tx.Symbol, string(tx.Type), tx.Amount, tx.Price, tx.Timestamp,
	); err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit trade: %w", err)
	}
	return nil
}

func (s *SQLiteStore) InsertCandleIfAbsent(ctx context.Context, candle model.Candle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO market_data
		(symbol, timeframe, timestamp, open, high, low, close, volume)
		VALUES (?,?,?,?,?,?,?,?)`,
		candle.Symbol, string(candle.Timeframe), candle.Timestamp,
		candle.Open, candle.High, candle.Low, candle.Close, candle.Volume,
	)
	if err != nil {
		return fmt.Errorf("insert candle: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetCandles(ctx context.Context, symbol string, timeframe model.Timeframe, limit int) ([]model.Candle, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT symbol, timeframe, timestamp, open, high, low, close, volume
		FROM market_data WHERE symbol = ? AND timeframe = ?
		ORDER BY timestamp DESC LIMIT ?`, symbol, string(timeframe), limit)
	if err != nil {
		return nil, fmt.Errorf("get candles: %w", err)
	}
	defer rows.Close()

	var candles []model.Candle
	for rows.Next() {
		var c model.Candle
		var tf string
		if err := rows.Scan(&c.Symbol, &tf, &c.Timestamp, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		c.Timeframe = model.Timeframe(tf)
		candles = append(candles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse into ascending timestamp order for the indicator pipeline.
	for i, j := 0, len(candles)-1; i < j; i, j = i+1, j-1 {
		candles[i], candles[j] = candles[j], candles[i]
	}
	return candles, nil
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	var mode string
	var enabled int
	err := row.Scan(&u.ID, &u.ChatID, &u.FirstName, &u.FiatBalance, &mode, &u.NotificationInterval, &enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.TradingMode = model.TradingMode(mode)
	u.NotificationsEnabled = enabled != 0
	return &u, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
