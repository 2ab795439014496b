// Package memory provides an in-memory store implementation (for testing/dev).
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pawsitive/mood-engine/calendar"
	"github.com/pawsitive/mood-engine/mood"
	"github.com/pawsitive/mood-engine/points"
	"github.com/pawsitive/mood-engine/rewards"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

// Store keeps all state in maps guarded by a single mutex. Every method that
// touches more than one table holds the lock for the whole operation, so the
// same atomicity guarantees as the SQLite store apply.
type Store struct {
	mu          sync.RWMutex
	users       map[string]time.Time
	events      map[string][]mood.Event // keyed by user ID, ordered by At
	totals      map[weekKey]int
	balances    map[weekKey]points.WeeklyBalance
	redemptions map[string][]rewards.RedemptionRecord
	idempotency map[string]bool
}

type weekKey struct {
	UserID    string
	WeekStart string // day-resolution, from calendar.WeekStart
}

func newWeekKey(userID string, weekStart time.Time) weekKey {
	return weekKey{UserID: userID, WeekStart: calendar.WeekStart(weekStart).Format("2006-01-02")}
}

func New() *Store {
	return &Store{
		users:       make(map[string]time.Time),
		events:      make(map[string][]mood.Event),
		totals:      make(map[weekKey]int),
		balances:    make(map[weekKey]points.WeeklyBalance),
		redemptions: make(map[string][]rewards.RedemptionRecord),
		idempotency: make(map[string]bool),
	}
}

// =============================================================================
// USERS
// =============================================================================

func (s *Store) CreateUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		s.users[id] = time.Now().UTC()
	}
	return nil
}

// =============================================================================
// LEDGER
// =============================================================================

func (s *Store) IncrementWeekTotal(_ context.Context, userID string, weekStart time.Time, pts int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totals[newWeekKey(userID, weekStart)] += pts
	return nil
}

func (s *Store) WeekTotal(_ context.Context, userID string, weekStart time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totals[newWeekKey(userID, weekStart)], nil
}

// =============================================================================
// BALANCES
// =============================================================================

func (s *Store) Balance(_ context.Context, userID string, weekStart time.Time) (*points.WeeklyBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balanceLocked(userID, weekStart), nil
}

func (s *Store) balanceLocked(userID string, weekStart time.Time) *points.WeeklyBalance {
	b, ok := s.balances[newWeekKey(userID, weekStart)]
	if !ok {
		return nil
	}
	return &b
}

func (s *Store) CreateBalance(_ context.Context, b points.WeeklyBalance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := newWeekKey(b.UserID, b.WeekStart)
	if _, ok := s.balances[k]; ok {
		return points.ErrConcurrencyConflict
	}
	s.balances[k] = b
	return nil
}

func (s *Store) DebitBalance(_ context.Context, userID string, weekStart time.Time, amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.debitLocked(userID, weekStart, amount)
}

func (s *Store) debitLocked(userID string, weekStart time.Time, amount int) error {
	k := newWeekKey(userID, weekStart)
	b, ok := s.balances[k]
	if !ok || b.Remaining < amount {
		return points.ErrInsufficientBalance
	}
	b.Remaining -= amount
	s.balances[k] = b
	return nil
}

// =============================================================================
// MOOD EVENTS
// =============================================================================

// RecordEvent appends the event and credits the week ledger in one critical
// section. Either both happen or neither does.
func (s *Store) RecordEvent(_ context.Context, ev mood.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.IdempotencyKey != "" && s.idempotency[ev.IdempotencyKey] {
		return points.ErrDuplicateIdempotencyKey
	}

	evs := s.events[ev.UserID]

	// Insert keeping the slice ordered by occurrence time.
	i := sort.Search(len(evs), func(i int) bool {
		return evs[i].At.After(ev.At)
	})
	evs = append(evs, mood.Event{})
	copy(evs[i+1:], evs[i:])
	evs[i] = ev
	s.events[ev.UserID] = evs

	s.totals[newWeekKey(ev.UserID, ev.At)] += ev.Points

	if ev.IdempotencyKey != "" {
		s.idempotency[ev.IdempotencyKey] = true
	}
	return nil
}

func (s *Store) ListEvents(_ context.Context, userID string, limit int) ([]mood.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	evs := s.events[userID]
	result := make([]mood.Event, len(evs))
	copy(result, evs)

	// Newest first, to match the SQLite store's ordering.
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) EventsInRange(_ context.Context, userID string, from, to time.Time) ([]mood.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []mood.Event
	for _, ev := range s.events[userID] {
		if !ev.At.Before(from) && ev.At.Before(to) {
			result = append(result, ev)
		}
	}
	return result, nil
}

// =============================================================================
// REDEMPTIONS
// =============================================================================

// Redeem debits the week balance and appends the redemption record in one
// critical section. A failed debit leaves no record behind.
func (s *Store) Redeem(_ context.Context, rec rewards.RedemptionRecord, weekStart time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.debitLocked(rec.UserID, weekStart, rec.Cost); err != nil {
		return 0, err
	}
	s.redemptions[rec.UserID] = append(s.redemptions[rec.UserID], rec)

	return s.balances[newWeekKey(rec.UserID, weekStart)].Remaining, nil
}

func (s *Store) ListRedemptions(_ context.Context, userID string, limit int) ([]rewards.RedemptionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := s.redemptions[userID]
	result := make([]rewards.RedemptionRecord, len(recs))
	copy(result, recs)

	// Newest first.
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].RedeemedAt.After(result[j].RedeemedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
