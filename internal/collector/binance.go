package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/lrndwy/tradingbotv3/internal/model"
)

// BinanceFetcher implements Fetcher using the Binance public REST API.
type BinanceFetcher struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbol to exchange pair
}

// NewBinanceFetcher creates a fetcher with optional proxy support.
func NewBinanceFetcher(baseURL, proxyURL string) *BinanceFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if baseURL == "" {
		baseURL = "https://api.binance.com"
	}
	return &BinanceFetcher{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		SymbolMap: map[string]string{
			"BTC": "BTCUSDT",
			"ETH": "ETHUSDT",
			"SOL": "SOLUSDT",
			"BNB": "BNBUSDT",
			"XRP": "XRPUSDT",
		},
	}
}

func (f *BinanceFetcher) Name() string { return "binance" }

func (f *BinanceFetcher) pair(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol + "USDT"
}

func (f *BinanceFetcher) GetCandles(ctx context.Context, symbol string, timeframe model.Timeframe, limit int) ([]model.Candle, error) {
	endpoint := fmt.Sprintf("%s/api/v3/klines?symbol=%s&interval=%s&limit=%d",
		f.BaseURL, f.pair(symbol), string(timeframe), limit)

	body, err := f.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	// Klines come as arrays: [openTime, open, high, low, close, volume, ...]
	// with prices encoded as strings.
	var raw [][]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode klines: %w", err)
	}

	candles := make([]model.Candle, 0, len(raw))
	for _, k := range raw {
		if len(k) < 6 {
			continue
		}
		var openTime int64
		if err := json.Unmarshal(k[0], &openTime); err != nil {
			return nil, fmt.Errorf("decode kline open time: %w", err)
		}
		fields := make([]float64, 5)
		for i := 1; i <= 5; i++ {
			v, err := parseQuoted(k[i])
			if err != nil {
				return nil, fmt.Errorf("decode kline field %d: %w", i, err)
			}
			fields[i-1] = v
		}
		candles = append(candles, model.Candle{
			Symbol:    symbol,
			Timeframe: timeframe,
			Timestamp: openTime,
			Open:      fields[0],
			High:      fields[1],
			Low:       fields[2],
			Close:     fields[3],
			Volume:    fields[4],
		})
	}

	sort.Slice(candles, func(i, j int) bool { return candles[i].Timestamp < candles[j].Timestamp })
	return candles, nil
}

func (f *BinanceFetcher) GetPrice(ctx context.Context, symbol string) (float64, error) {
	endpoint := fmt.Sprintf("%s/api/v3/ticker/price?symbol=%s", f.BaseURL, f.pair(symbol))
	body, err := f.get(ctx, endpoint)
	if err != nil {
		return 0, err
	}
	var result struct {
		Price string `json:"price"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, fmt.Errorf("decode ticker: %w", err)
	}
	price, err := strconv.ParseFloat(result.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", result.Price, err)
	}
	return price, nil
}

func (f *BinanceFetcher) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("binance fetch: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("binance read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("binance: status %d, body: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// parseQuoted parses a JSON value that may be a quoted number.
func parseQuoted(raw json.RawMessage) (float64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.ParseFloat(s, 64)
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, err
	}
	return v, nil
}
