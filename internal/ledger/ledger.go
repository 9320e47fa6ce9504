package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lrndwy/tradingbotv3/internal/model"
	"github.com/lrndwy/tradingbotv3/internal/store"
)

// User-facing validation failures. Surfaced verbatim, never retried.
var (
	ErrPriceUnavailable     = errors.New("current price unavailable")
	ErrInsufficientFunds    = errors.New("insufficient fiat balance")
	ErrNoPosition           = errors.New("no position in this asset")
	ErrInsufficientPosition = errors.New("sell amount exceeds position")
	ErrInvalidAmount        = errors.New("amount must be positive")
)

// dustEpsilon: positions drained below this are deleted, not retained.
const dustEpsilon = 1e-6

// PriceSource provides the live execution price for simulated trades.
type PriceSource interface {
	GetPrice(ctx context.Context, symbol string) (float64, error)
}

// TradeResult describes an executed simulated trade.
type TradeResult struct {
	Symbol      string
	Type        model.TransactionType
	BaseAmount  float64
	QuoteAmount float64
	Price       float64
	Profit      float64 // realized P&L, sells only
	FiatBalance float64 // balance after the trade
}

// Manager applies simulated buys and sells against user holdings with
// weighted-average cost basis. All mutations for one user are serialized
// through a per-user mutex: the fiat balance is shared across every symbol,
// so trades on different symbols must never interleave their read-modify-
// write of it. Balance, holding and ledger entry are committed as one
// storage write.
type Manager struct {
	store  store.Store
	prices PriceSource

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewManager creates a ledger manager.
func NewManager(st store.Store, prices PriceSource) *Manager {
	return &Manager{
		store:  st,
		prices: prices,
		locks:  make(map[int64]*sync.Mutex),
	}
}

func (m *Manager) userLock(userID int64) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[userID] = l
	}
	return l
}

// Buy spends quoteAmount of the user's fiat balance on the symbol at the
// live price, volume-weighting the holding's average buy price.
func (m *Manager) Buy(ctx context.Context, userID int64, symbol string, quoteAmount float64) (*TradeResult, error) {
	if quoteAmount <= 0 {
		return nil, ErrInvalidAmount
	}

	price, err := m.prices.GetPrice(ctx, symbol)
	if err != nil {
		log.Printf("[WARN] buy %s for user %d: price fetch: %v", symbol, userID, err)
		return nil, fmt.Errorf("%w: %s", ErrPriceUnavailable, symbol)
	}

	l := m.userLock(userID)
	l.Lock()
	defer l.Unlock()

	user, err := m.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user.FiatBalance < quoteAmount {
		return nil, ErrInsufficientFunds
	}

	boughtAmount := quoteAmount / price

	holding, err := m.store.GetHolding(ctx, userID, symbol)
	switch {
	case err == nil:
		newAmount := holding.Amount + boughtAmount
		holding.AvgBuyPrice = (holding.AvgBuyPrice*holding.Amount + price*boughtAmount) / newAmount
		holding.Amount = newAmount
	case errors.Is(err, store.ErrNotFound):
		holding = &model.Holding{UserID: userID, Symbol: symbol, Amount: boughtAmount, AvgBuyPrice: price}
	default:
		return nil, fmt.Errorf("load holding: %w", err)
	}

	user.FiatBalance -= quoteAmount
	tx := newTransaction(userID, symbol, model.TxBuy, boughtAmount, price)
	if err := m.store.ApplyTrade(ctx, user, holding, false, tx); err != nil {
		return nil, fmt.Errorf("commit buy: %w", err)
	}

	return &TradeResult{
		Symbol:      symbol,
		Type:        model.TxBuy,
		BaseAmount:  boughtAmount,
		QuoteAmount: quoteAmount,
		Price:       price,
		FiatBalance: user.FiatBalance,
	}, nil
}

// Sell liquidates baseAmount of the user's position at the live price and
// credits the proceeds. Realized P&L uses the pre-sale average buy price;
// the average is never recomputed on sells.
func (m *Manager) Sell(ctx context.Context, userID int64, symbol string, baseAmount float64) (*TradeResult, error) {
	if baseAmount <= 0 {
		return nil, ErrInvalidAmount
	}

	price, err := m.prices.GetPrice(ctx, symbol)
	if err != nil {
		log.Printf("[WARN] sell %s for user %d: price fetch: %v", symbol, userID, err)
		return nil, fmt.Errorf("%w: %s", ErrPriceUnavailable, symbol)
	}

	l := m.userLock(userID)
	l.Lock()
	defer l.Unlock()

	holding, err := m.store.GetHolding(ctx, userID, symbol)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoPosition
	}
	if err != nil {
		return nil, fmt.Errorf("load holding: %w", err)
	}
	if holding.Amount <= 0 {
		return nil, ErrNoPosition
	}
	if baseAmount > holding.Amount {
		return nil, ErrInsufficientPosition
	}

	realizedValue := baseAmount * price
	costBasis := baseAmount * holding.AvgBuyPrice
	profit := realizedValue - costBasis

	user, err := m.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	user.FiatBalance += realizedValue

	holding.Amount -= baseAmount
	deleteHolding := holding.Amount <= dustEpsilon

	tx := newTransaction(userID, symbol, model.TxSell, baseAmount, price)
	if err := m.store.ApplyTrade(ctx, user, holding, deleteHolding, tx); err != nil {
		return nil, fmt.Errorf("commit sell: %w", err)
	}

	return &TradeResult{
		Symbol:      symbol,
		Type:        model.TxSell,
		BaseAmount:  baseAmount,
		QuoteAmount: realizedValue,
		Price:       price,
		Profit:      profit,
		FiatBalance: user.FiatBalance,
	}, nil
}

// Deposit credits the user's fiat balance and logs a deposit transaction
// at a fixed price of 1.0.
func (m *Manager) Deposit(ctx context.Context, userID int64, amount float64) (*TradeResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	l := m.userLock(userID)
	l.Lock()
	defer l.Unlock()

	user, err := m.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	user.FiatBalance += amount

	tx := newTransaction(userID, "", model.TxDeposit, amount, 1.0)
	if err := m.store.ApplyTrade(ctx, user, nil, false, tx); err != nil {
		return nil, fmt.Errorf("commit deposit: %w", err)
	}

	return &TradeResult{
		Type:        model.TxDeposit,
		QuoteAmount: amount,
		Price:       1.0,
		FiatBalance: user.FiatBalance,
	}, nil
}

// Valuation prices every holding of the user at the current market. A
// position whose price fetch fails is kept in the output flagged stale
// with zero market value instead of being silently dropped; totals cover
// the priced positions only.
func (m *Manager) Valuation(ctx context.Context, userID int64) (*model.Valuation, error) {
	user, err := m.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	holdings, err := m.store.ListHoldings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list holdings: %w", err)
	}

	val := &model.Valuation{FiatBalance: user.FiatBalance}
	for _, h := range holdings {
		pos := model.Position{
			Symbol:      h.Symbol,
			Amount:      h.Amount,
			AvgBuyPrice: h.AvgBuyPrice,
		}
		price, err := m.prices.GetPrice(ctx, h.Symbol)
		if err != nil {
			log.Printf("[WARN] valuation for user %d: price for %s unavailable: %v", userID, h.Symbol, err)
			pos.Stale = true
			val.StaleCount++
			val.Positions = append(val.Positions, pos)
			continue
		}

		pos.CurrentPrice = price
		pos.CurrentValue = h.Amount * price
		pos.Cost = h.Amount * h.AvgBuyPrice
		pos.PnL = pos.CurrentValue - pos.Cost
		if pos.Cost != 0 {
			pos.PnLPercent = pos.PnL / pos.Cost * 100
		}
		val.TotalAssetsValue += pos.CurrentValue
		val.Positions = append(val.Positions, pos)
	}

	val.TotalEquity = val.TotalAssetsValue + val.FiatBalance
	return val, nil
}

func newTransaction(userID int64, symbol string, txType model.TransactionType, amount, price float64) *model.Transaction {
	return &model.Transaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		Symbol:    symbol,
		Type:      txType,
		Amount:    amount,
		Price:     price,
		Timestamp: time.Now().UnixMilli(),
	}
}
