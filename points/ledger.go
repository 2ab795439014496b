/*
ledger.go - The weekly points ledger

PURPOSE:
  Accumulates points from mood-log credits into per-user-per-week totals.
  The total is an incrementally-maintained cache of the sum of all credits
  whose timestamp falls inside the week; it is never recomputed by readers.

INVARIANTS:
  - A credit lands in exactly one week: the week of its event timestamp.
  - Concurrent credits for the same (user, week) are all reflected; the
    increment is atomic at the store, never read-modify-write here.
  - Totals are non-negative: negative credits are rejected up front.
*/
package points

import (
	"context"
	"time"

	"github.com/pawsitive/mood-engine/calendar"
)

// Ledger is the system of record for weekly point totals.
type Ledger struct {
	store LedgerStore
}

func NewLedger(store LedgerStore) *Ledger {
	return &Ledger{store: store}
}

// RecordPoints credits points to the week containing at.
// Fails with ErrValidation for negative points; zero is a valid no-op credit.
func (l *Ledger) RecordPoints(ctx context.Context, userID string, at time.Time, pts int) error {
	if pts < 0 {
		return &ValidationError{Field: "points", Message: "must be non-negative"}
	}
	return l.store.IncrementWeekTotal(ctx, userID, calendar.WeekStart(at), pts)
}

// WeekTotal returns the total for the week starting at weekStart, 0 if the
// user has no activity that week.
func (l *Ledger) WeekTotal(ctx context.Context, userID string, weekStart time.Time) (int, error) {
	return l.store.WeekTotal(ctx, userID, weekStart)
}

// CurrentWeekTotal returns the total for the week containing asOf.
func (l *Ledger) CurrentWeekTotal(ctx context.Context, userID string, asOf time.Time) (int, error) {
	return l.store.WeekTotal(ctx, userID, calendar.WeekStart(asOf))
}
