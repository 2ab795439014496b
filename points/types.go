/*
Package points owns the weekly point totals and the spendable weekly balance.

PURPOSE:
  Converts discrete mood-logging credits into a consistent, race-free weekly
  point total per user, and carries the closed previous week's total forward
  as this week's redeemable balance.

KEY CONCEPTS:
  - WeeklyTotal: incrementally-maintained sum of points earned in one week.
    The system of record for "how many points has user U earned in week W".
  - WeeklyBalance: the spendable pool for the current week, materialized
    exactly once from the previous week's total, monotonically non-increasing.

DESIGN PRINCIPLES:
  1. Every credit atomically increments exactly one WeeklyTotal row.
  2. Balance creation is exactly-once per (user, week); race losers re-read.
  3. Debits are single conditional decrements; remaining never goes negative.

SEE ALSO:
  - calendar/: the only source of week boundaries
  - store/sqlite/: the Store implementations behind these interfaces
*/
package points

import (
	"context"
	"time"
)

// WeeklyTotal is the aggregate of points one user earned in one week.
type WeeklyTotal struct {
	UserID    string
	WeekStart time.Time
	Total     int
	UpdatedAt time.Time
}

// WeeklyBalance is the spendable point pool for one redemption week,
// sourced from the previous week's closed total.
type WeeklyBalance struct {
	UserID    string
	WeekStart time.Time // the week the balance is redeemable in
	Remaining int
	CreatedAt time.Time
}

// =============================================================================
// STORE INTERFACES - implemented by store/sqlite and store/memory
// =============================================================================

// LedgerStore persists weekly totals.
type LedgerStore interface {
	// IncrementWeekTotal atomically adds points to the (user, week) total,
	// creating the row with total 0 first if absent. Safe under concurrent
	// calls for the same key: no update may be lost.
	IncrementWeekTotal(ctx context.Context, userID string, weekStart time.Time, points int) error

	// WeekTotal returns the current total, or 0 if no row exists.
	// Absence is not an error; storage failures are.
	WeekTotal(ctx context.Context, userID string, weekStart time.Time) (int, error)
}

// BalanceStore persists weekly balances.
type BalanceStore interface {
	// Balance returns the balance row for (user, week), or nil if absent.
	Balance(ctx context.Context, userID string, weekStart time.Time) (*WeeklyBalance, error)

	// CreateBalance inserts a new balance row. Returns ErrConcurrencyConflict
	// if a row for (user, week) already exists; the caller re-reads.
	CreateBalance(ctx context.Context, b WeeklyBalance) error

	// DebitBalance atomically decrements remaining by amount, only if
	// remaining >= amount. Returns ErrInsufficientBalance when the row is
	// absent or cannot afford the debit. Never leaves remaining negative.
	DebitBalance(ctx context.Context, userID string, weekStart time.Time, amount int) error
}
