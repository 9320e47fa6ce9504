package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/lrndwy/tradingbotv3/internal/model"
)

// Both implementations must satisfy the same contract; every case below
// runs against the in-memory store and the SQLite store.
func eachStore(t *testing.T, fn func(t *testing.T, st Store)) {
	t.Helper()
	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemoryStore())
	})
	t.Run("sqlite", func(t *testing.T) {
		st, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		t.Cleanup(func() { st.Close() })
		fn(t, st)
	})
}

func TestUserLifecycle(t *testing.T) {
	eachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()

		if _, err := st.GetUser(ctx, 7); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound for missing user, got %v", err)
		}

		created, err := st.FindOrCreateUser(ctx, model.NewUser(7, 700, "bob"))
		if err != nil {
			t.Fatalf("create user: %v", err)
		}
		if created.FiatBalance != model.SeedCapital {
			t.Errorf("new user balance = %.2f, want the seed capital", created.FiatBalance)
		}
		if created.TradingMode != model.ModeBalanced || !created.NotificationsEnabled {
			t.Errorf("new user defaults = %+v", created)
		}

		// FindOrCreate on an existing ID returns the stored row untouched.
		created.FiatBalance = 1234
		if err := st.UpdateUser(ctx, created); err != nil {
			t.Fatalf("update user: %v", err)
		}
		again, err := st.FindOrCreateUser(ctx, model.NewUser(7, 700, "bob"))
		if err != nil {
			t.Fatalf("find existing user: %v", err)
		}
		if again.FiatBalance != 1234 {
			t.Errorf("existing user was reset: balance %.2f, want 1234", again.FiatBalance)
		}

		created.TradingMode = model.ModeAggressive
		created.NotificationsEnabled = false
		if err := st.UpdateUser(ctx, created); err != nil {
			t.Fatalf("update user: %v", err)
		}
		loaded, err := st.GetUser(ctx, 7)
		if err != nil {
			t.Fatalf("get user: %v", err)
		}
		if loaded.TradingMode != model.ModeAggressive || loaded.NotificationsEnabled {
			t.Errorf("loaded user = %+v, want aggressive mode with notifications off", loaded)
		}
	})
}

func TestListNotifiableUsers(t *testing.T) {
	eachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()

		on := model.NewUser(1, 100, "on")
		off := model.NewUser(2, 200, "off")
		off.NotificationsEnabled = false
		if _, err := st.FindOrCreateUser(ctx, on); err != nil {
			t.Fatal(err)
		}
		if _, err := st.FindOrCreateUser(ctx, off); err != nil {
			t.Fatal(err)
		}

		users, err := st.ListNotifiableUsers(ctx)
		if err != nil {
			t.Fatalf("list notifiable: %v", err)
		}
		if len(users) != 1 || users[0].ID != 1 {
			t.Errorf("notifiable users = %+v, want only user 1", users)
		}
	})
}

func TestHoldingLifecycle(t *testing.T) {
	eachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		if _, err := st.FindOrCreateUser(ctx, model.NewUser(1, 100, "alice")); err != nil {
			t.Fatal(err)
		}

		if _, err := st.GetHolding(ctx, 1, "BTC"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound for missing holding, got %v", err)
		}

		h := &model.Holding{UserID: 1, Symbol: "BTC", Amount: 0.5, AvgBuyPrice: 40000}
		if err := st.UpsertHolding(ctx, h); err != nil {
			t.Fatalf("insert holding: %v", err)
		}
		h.Amount = 0.75
		h.AvgBuyPrice = 45000
		if err := st.UpsertHolding(ctx, h); err != nil {
			t.Fatalf("update holding: %v", err)
		}

		loaded, err := st.GetHolding(ctx, 1, "BTC")
		if err != nil {
			t.Fatalf("get holding: %v", err)
		}
		if loaded.Amount != 0.75 || loaded.AvgBuyPrice != 45000 {
			t.Errorf("holding = %+v after upsert", loaded)
		}

		if err := st.UpsertHolding(ctx, &model.Holding{UserID: 1, Symbol: "ETH", Amount: 2, AvgBuyPrice: 3000}); err != nil {
			t.Fatal(err)
		}
		holdings, err := st.ListHoldings(ctx, 1)
		if err != nil {
			t.Fatalf("list holdings: %v", err)
		}
		if len(holdings) != 2 {
			t.Fatalf("expected 2 holdings, got %d", len(holdings))
		}

		if err := st.DeleteHolding(ctx, 1, "BTC"); err != nil {
			t.Fatalf("delete holding: %v", err)
		}
		if _, err := st.GetHolding(ctx, 1, "BTC"); !errors.Is(err, ErrNotFound) {
			t.Errorf("deleted holding still present: %v", err)
		}
	})
}

func TestTransactions_NewestFirstWithLimit(t *testing.T) {
	eachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		if _, err := st.FindOrCreateUser(ctx, model.NewUser(1, 100, "alice")); err != nil {
			t.Fatal(err)
		}

		for i := 0; i < 5; i++ {
			tx := &model.Transaction{
				ID:        string(rune('a' + i)),
				UserID:    1,
				Symbol:    "BTC",
				Type:      model.TxBuy,
				Amount:    float64(i + 1),
				Price:     50000,
				Timestamp: int64(1000 + i),
			}
			if err := st.AppendTransaction(ctx, tx); err != nil {
				t.Fatalf("append tx: %v", err)
			}
		}

		txs, err := st.ListTransactions(ctx, 1, 3)
		if err != nil {
			t.Fatalf("list txs: %v", err)
		}
		if len(txs) != 3 {
			t.Fatalf("expected 3 transactions, got %d", len(txs))
		}
		if txs[0].Timestamp != 1004 || txs[2].Timestamp != 1002 {
			t.Errorf("transactions not newest-first: %+v", txs)
		}

		// Another user's history is invisible.
		other, err := st.ListTransactions(ctx, 2, 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(other) != 0 {
			t.Errorf("user 2 should have no transactions, got %+v", other)
		}
	})
}

func TestApplyTrade_CommitsAllEffects(t *testing.T) {
	eachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		user, err := st.FindOrCreateUser(ctx, model.NewUser(1, 100, "alice"))
		if err != nil {
			t.Fatal(err)
		}

		user.FiatBalance -= 100
		holding := &model.Holding{UserID: 1, Symbol: "BTC", Amount: 0.002, AvgBuyPrice: 50000}
		tx := &model.Transaction{ID: "tx-1", UserID: 1, Symbol: "BTC", Type: model.TxBuy, Amount: 0.002, Price: 50000, Timestamp: 1000}
		if err := st.ApplyTrade(ctx, user, holding, false, tx); err != nil {
			t.Fatalf("apply trade: %v", err)
		}

		loaded, _ := st.GetUser(ctx, 1)
		if loaded.FiatBalance != model.SeedCapital-100 {
			t.Errorf("balance = %.2f, want %.2f", loaded.FiatBalance, model.SeedCapital-100)
		}
		if _, err := st.GetHolding(ctx, 1, "BTC"); err != nil {
			t.Errorf("holding not written: %v", err)
		}
		txs, _ := st.ListTransactions(ctx, 1, 10)
		if len(txs) != 1 || txs[0].ID != "tx-1" {
			t.Errorf("ledger entry not written: %+v", txs)
		}

		// A trade that drains the position deletes the holding row.
		user.FiatBalance += 100
		sell := &model.Transaction{ID: "tx-2", UserID: 1, Symbol: "BTC", Type: model.TxSell, Amount: 0.002, Price: 50000, Timestamp: 2000}
		if err := st.ApplyTrade(ctx, user, holding, true, sell); err != nil {
			t.Fatalf("apply sell: %v", err)
		}
		if _, err := st.GetHolding(ctx, 1, "BTC"); !errors.Is(err, ErrNotFound) {
			t.Errorf("drained holding still present: %v", err)
		}

		// Deposits carry no holding at all.
		user.FiatBalance += 50
		dep := &model.Transaction{ID: "tx-3", UserID: 1, Type: model.TxDeposit, Amount: 50, Price: 1.0, Timestamp: 3000}
		if err := st.ApplyTrade(ctx, user, nil, false, dep); err != nil {
			t.Fatalf("apply deposit: %v", err)
		}
		loaded, _ = st.GetUser(ctx, 1)
		if loaded.FiatBalance != model.SeedCapital+50 {
			t.Errorf("balance after deposit = %.2f, want %.2f", loaded.FiatBalance, model.SeedCapital+50)
		}
	})
}

func TestApplyTrade_FailureAppliesNothing(t *testing.T) {
	eachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		user, err := st.FindOrCreateUser(ctx, model.NewUser(1, 100, "alice"))
		if err != nil {
			t.Fatal(err)
		}

		first := &model.Transaction{ID: "dup", UserID: 1, Symbol: "BTC", Type: model.TxBuy, Amount: 0.001, Price: 50000, Timestamp: 1000}
		if err := st.AppendTransaction(ctx, first); err != nil {
			t.Fatal(err)
		}

		// A duplicate ledger-entry id must fail the whole trade: the
		// balance and holding writes roll back with it.
		user.FiatBalance -= 100
		holding := &model.Holding{UserID: 1, Symbol: "ETH", Amount: 0.03, AvgBuyPrice: 3000}
		dup := &model.Transaction{ID: "dup", UserID: 1, Symbol: "ETH", Type: model.TxBuy, Amount: 0.03, Price: 3000, Timestamp: 2000}
		if err := st.ApplyTrade(ctx, user, holding, false, dup); err == nil {
			t.Fatal("expected the duplicate entry to fail the trade")
		}

		loaded, _ := st.GetUser(ctx, 1)
		if loaded.FiatBalance != model.SeedCapital {
			t.Errorf("balance = %.2f after a failed trade, want untouched %.2f", loaded.FiatBalance, model.SeedCapital)
		}
		if _, err := st.GetHolding(ctx, 1, "ETH"); !errors.Is(err, ErrNotFound) {
			t.Errorf("holding written by a failed trade: %v", err)
		}
		txs, _ := st.ListTransactions(ctx, 1, 10)
		if len(txs) != 1 {
			t.Errorf("expected only the original ledger entry, got %d", len(txs))
		}

		// An unknown user is rejected before anything is written.
		ghost := model.NewUser(9, 900, "ghost")
		gtx := &model.Transaction{ID: "tx-9", UserID: 9, Type: model.TxDeposit, Amount: 1, Price: 1.0, Timestamp: 3000}
		if err := st.ApplyTrade(ctx, &ghost, nil, false, gtx); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound for an unknown user, got %v", err)
		}
	})
}

func TestCandles_IdempotentInsertAndAscendingReads(t *testing.T) {
	eachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()

		for i := 0; i < 10; i++ {
			c := model.Candle{
				Symbol:    "BTC",
				Timeframe: model.Timeframe1h,
				Timestamp: int64(i) * 3600_000,
				Open:      100,
				High:      110,
				Low:       90,
				Close:     105,
				Volume:    1,
			}
			if err := st.InsertCandleIfAbsent(ctx, c); err != nil {
				t.Fatalf("insert candle: %v", err)
			}
			// A re-insert for the same key is a no-op.
			c.Close = 999
			if err := st.InsertCandleIfAbsent(ctx, c); err != nil {
				t.Fatalf("re-insert candle: %v", err)
			}
		}

		candles, err := st.GetCandles(ctx, "BTC", model.Timeframe1h, 100)
		if err != nil {
			t.Fatalf("get candles: %v", err)
		}
		if len(candles) != 10 {
			t.Fatalf("expected 10 candles, got %d", len(candles))
		}
		for i, c := range candles {
			if c.Timestamp != int64(i)*3600_000 {
				t.Fatalf("candles not ascending at index %d: %d", i, c.Timestamp)
			}
			if c.Close != 105 {
				t.Errorf("duplicate insert overwrote candle %d: close %.2f", i, c.Close)
			}
		}

		// The limit keeps the newest window.
		tail, err := st.GetCandles(ctx, "BTC", model.Timeframe1h, 3)
		if err != nil {
			t.Fatal(err)
		}
		if len(tail) != 3 || tail[0].Timestamp != 7*3600_000 {
			t.Errorf("limited read = %+v, want the 3 newest ascending", tail)
		}

		// Timeframes do not bleed into each other.
		other, err := st.GetCandles(ctx, "BTC", model.Timeframe4h, 100)
		if err != nil {
			t.Fatal(err)
		}
		if len(other) != 0 {
			t.Errorf("4h read returned 1h candles: %+v", other)
		}
	})
}
