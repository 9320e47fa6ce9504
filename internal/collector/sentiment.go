package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/lrndwy/tradingbotv3/internal/model"
)

// SentimentSource fetches the fear & greed index and caches the last known
// good value. Reads never observe a half-written value: the cache is an
// atomic swap. On fetch failure the previous value is retained.
type SentimentSource struct {
	BaseURL string
	Client  *http.Client
	cached  atomic.Value // model.SentimentIndex
}

// NewSentimentSource creates a source seeded with a neutral reading.
func NewSentimentSource(baseURL string) *SentimentSource {
	if baseURL == "" {
		baseURL = "https://api.alternative.me"
	}
	s := &SentimentSource{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
	s.cached.Store(model.SentimentIndex{Value: 50, Classification: "Neutral"})
	return s
}

// Current returns the last known index without touching the network.
// Staleness is acceptable; reports do not force a refresh.
func (s *SentimentSource) Current() model.SentimentIndex {
	return s.cached.Load().(model.SentimentIndex)
}

// Refresh fetches the latest index. Failures are logged and the cached
// value is kept; a report is never aborted for a missing sentiment reading.
func (s *SentimentSource) Refresh(ctx context.Context) {
	idx, err := s.fetch(ctx)
	if err != nil {
		log.Printf("[WARN] fear & greed fetch failed, keeping last value: %v", err)
		return
	}
	s.cached.Store(idx)
}

func (s *SentimentSource) fetch(ctx context.Context) (model.SentimentIndex, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.BaseURL+"/fng/?limit=1", nil)
	if err != nil {
		return model.SentimentIndex{}, err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return model.SentimentIndex{}, fmt.Errorf("fng fetch: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.SentimentIndex{}, fmt.Errorf("fng read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return model.SentimentIndex{}, fmt.Errorf("fng: status %d", resp.StatusCode)
	}

	var payload struct {
		Data []struct {
			Value          string `json:"value"`
			Classification string `json:"value_classification"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return model.SentimentIndex{}, fmt.Errorf("fng decode: %w", err)
	}
	if len(payload.Data) == 0 {
		return model.SentimentIndex{}, fmt.Errorf("fng: empty response")
	}
	value, err := strconv.Atoi(payload.Data[0].Value)
	if err != nil {
		return model.SentimentIndex{}, fmt.Errorf("fng parse value %q: %w", payload.Data[0].Value, err)
	}
	return model.SentimentIndex{Value: value, Classification: payload.Data[0].Classification}, nil
}
