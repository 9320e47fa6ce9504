package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/lrndwy/tradingbotv3/internal/model"
)

// MemoryStore is an in-memory Store used by tests and development runs
// without a database file.
type MemoryStore struct {
	mu           sync.Mutex
	users        map[int64]model.User
	holdings     map[int64]map[string]model.Holding
	transactions []model.Transaction
	candles      map[candleKey]model.Candle
}

type candleKey struct {
	symbol    string
	timeframe model.Timeframe
	timestamp int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[int64]model.User),
		holdings: make(map[int64]map[string]model.Holding),
		candles:  make(map[candleKey]model.Candle),
	}
}

func (s *MemoryStore) GetUser(_ context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) FindOrCreateUser(_ context.Context, user model.User) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.users[user.ID]; ok {
		return &existing, nil
	}
	s.users[user.ID] = user
	return &user, nil
}

func (s *MemoryStore) UpdateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return ErrNotFound
	}
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) ListNotifiableUsers(_ context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var users []model.User
	for _, u := range s.users {
		if u.NotificationsEnabled {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *MemoryStore) GetHolding(_ context.Context, userID int64, symbol string) (*model.Holding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.holdings[userID][symbol]
	if !ok {
		return nil, ErrNotFound
	}
	return &h, nil
}

func (s *MemoryStore) UpsertHolding(_ context.Context, holding *model.Holding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.holdings[holding.UserID] == nil {
		s.holdings[holding.UserID] = make(map[string]model.Holding)
	}
	s.holdings[holding.UserID][holding.Symbol] = *holding
	return nil
}

func (s *MemoryStore) DeleteHolding(_ context.Context, userID int64, symbol string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.holdings[userID], symbol)
	return nil
}

func (s *MemoryStore) ListHoldings(_ context.Context, userID int64) ([]model.Holding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var holdings []model.Holding
	for _, h := range s.holdings[userID] {
		holdings = append(holdings, h)
	}
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Symbol < holdings[j].Symbol })
	return holdings, nil
}

func (s *MemoryStore) AppendTransaction(_ context.Context, tx *model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append(s.transactions, *tx)
	return nil
}

func (s *MemoryStore) ListTransactions(_ context.Context, userID int64, limit int) ([]model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var txs []model.Transaction
	for i := len(s.transactions) - 1; i >= 0 && len(txs) < limit; i-- {
		if s.transactions[i].UserID == userID {
			txs = append(txs, s.transactions[i])
		}
	}
	return txs, nil
}

func (s *MemoryStore) ApplyTrade(_ context.Context, user *model.User, holding *model.Holding, deleteHolding bool, tx *model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate everything up front so a failure applies nothing.
	if _, ok := s.users[user.ID]; !ok {
		return ErrNotFound
	}
	for _, existing := range s.transactions {
		if existing.ID == tx.ID {
			return errors.New("duplicate transaction id")
		}
	}

	s.users[user.ID] = *user
	if holding != nil {
		if deleteHolding {
			delete(s.holdings[holding.UserID], holding.Symbol)
		} else {
			if s.holdings[holding.UserID] == nil {
				s.holdings[holding.UserID] = make(map[string]model.Holding)
			}
			s.holdings[holding.UserID][holding.Symbol] = *holding
		}
	}
	s.transactions = append(s.transactions, *tx)
	return nil
}

func (s *MemoryStore) InsertCandleIfAbsent(_ context.Context, candle model.Candle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := candleKey{candle.Symbol, candle.Timeframe, candle.Timestamp}
	if _, ok := s.candles[key]; ok {
		return nil
	}
	s.candles[key] = candle
	return nil
}

func (s *MemoryStore) GetCandles(_ context.Context, symbol string, timeframe model.Timeframe, limit int) ([]model.Candle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var candles []model.Candle
	for key, c := range s.candles {
		if key.symbol == symbol && key.timeframe == timeframe {
			candles = append(candles, c)
		}
	}
	sort.Slice(candles, func(i, j int) bool { return candles[i].Timestamp < candles[j].Timestamp })
	if len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}
	return candles, nil
}

func (s *MemoryStore) Close() error { return nil }
