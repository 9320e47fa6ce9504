package session

import (
	"sync"
	"time"
)

// State is the conversational trade-intent state of one user.
type State int

const (
	Idle State = iota
	AwaitingBuyAmount
	AwaitingSellAmount
)

// Pending is a short-lived trade intent waiting for an amount.
type Pending struct {
	State     State
	Symbol    string
	ExpiresAt time.Time
}

// DefaultTTL bounds how long a trade intent stays actionable.
const DefaultTTL = 5 * time.Minute

// Store keeps per-user pending trade intents with expiry, replacing an
// unbounded process-global map. Expired entries are purged lazily on access.
type Store struct {
	mu      sync.Mutex
	ttl     time.Duration
	pending map[int64]Pending
}

// NewStore creates a session store. A non-positive ttl uses DefaultTTL.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{ttl: ttl, pending: make(map[int64]Pending)}
}

// Await records that the user owes an amount for the given intent.
func (s *Store) Await(userID int64, state State, symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state == Idle {
		delete(s.pending, userID)
		return
	}
	s.pending[userID] = Pending{State: state, Symbol: symbol, ExpiresAt: time.Now().Add(s.ttl)}
}

// Get returns the user's pending intent, if any. Expired intents are
// removed and reported as absent.
func (s *Store) Get(userID int64) (Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[userID]
	if !ok {
		return Pending{State: Idle}, false
	}
	if time.Now().After(p.ExpiresAt) {
		delete(s.pending, userID)
		return Pending{State: Idle}, false
	}
	return p, true
}

// Clear resets the user to Idle.
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, userID)
}
