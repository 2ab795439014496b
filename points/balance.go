/*
balance.go - The weekly redeemable balance

PURPOSE:
  Derives the spendable balance for the current week from the previous
  week's closed ledger total, lazily on first access. There is no scheduler:
  week transitions are detected per request.

EXACTLY-ONCE MATERIALIZATION:
  Two concurrent first-accesses in a new week must not both create a balance
  row (that would double-grant the carryover). Creation relies on a storage
  uniqueness constraint on (user, week); the loser of the race re-reads the
  winner's row instead of erroring.

DEBITS:
  The affordability check and the decrement are one conditional operation at
  the store. Two concurrent redemptions against a balance that can afford
  only one are therefore serialized correctly.
*/
package points

import (
	"context"
	"errors"
	"time"

	"github.com/pawsitive/mood-engine/calendar"
)

// BalanceManager owns the lifecycle of weekly balances.
type BalanceManager struct {
	ledger *Ledger
	store  BalanceStore
}

func NewBalanceManager(ledger *Ledger, store BalanceStore) *BalanceManager {
	return &BalanceManager{ledger: ledger, store: store}
}

// EnsureInitialized returns the balance for the week containing asOf,
// creating it from the previous week's ledger total if it does not exist.
// Idempotent: repeat calls return the existing row unchanged.
func (m *BalanceManager) EnsureInitialized(ctx context.Context, userID string, asOf time.Time) (WeeklyBalance, error) {
	weekStart := calendar.WeekStart(asOf)

	existing, err := m.store.Balance(ctx, userID, weekStart)
	if err != nil {
		return WeeklyBalance{}, err
	}
	if existing != nil {
		return *existing, nil
	}

	prevStart, _ := calendar.PreviousWeekRange(asOf)
	carryover, err := m.ledger.WeekTotal(ctx, userID, prevStart)
	if err != nil {
		return WeeklyBalance{}, err
	}

	b := WeeklyBalance{
		UserID:    userID,
		WeekStart: weekStart,
		Remaining: carryover,
		CreatedAt: time.Now().UTC(),
	}
	if err := m.store.CreateBalance(ctx, b); err != nil {
		if errors.Is(err, ErrConcurrencyConflict) {
			// A concurrent request won the creation race. Its row is
			// authoritative; ours would have carried the same total.
			winner, rerr := m.store.Balance(ctx, userID, weekStart)
			if rerr != nil {
				return WeeklyBalance{}, rerr
			}
			if winner == nil {
				return WeeklyBalance{}, ErrIntegrityViolation
			}
			return *winner, nil
		}
		return WeeklyBalance{}, err
	}
	return b, nil
}

// Balance returns the remaining spendable points for the week containing asOf,
// materializing the balance first if needed.
func (m *BalanceManager) Balance(ctx context.Context, userID string, asOf time.Time) (int, error) {
	b, err := m.EnsureInitialized(ctx, userID, asOf)
	if err != nil {
		return 0, err
	}
	return b.Remaining, nil
}

// Debit removes amount from the current week's balance. Returns
// ErrInsufficientBalance (with remaining/requested detail where known) when
// the balance cannot afford it; no partial state change occurs.
func (m *BalanceManager) Debit(ctx context.Context, userID string, asOf time.Time, amount int) error {
	if amount <= 0 {
		return &ValidationError{Field: "amount", Message: "must be positive"}
	}

	b, err := m.EnsureInitialized(ctx, userID, asOf)
	if err != nil {
		return err
	}

	err = m.store.DebitBalance(ctx, userID, b.WeekStart, amount)
	if errors.Is(err, ErrInsufficientBalance) {
		// Re-read for an accurate shortfall: the conditional decrement only
		// reports that it did not apply.
		current, rerr := m.store.Balance(ctx, userID, b.WeekStart)
		remaining := 0
		if rerr == nil && current != nil {
			remaining = current.Remaining
		}
		return &InsufficientBalanceError{
			UserID:    userID,
			WeekStart: b.WeekStart,
			Remaining: remaining,
			Requested: amount,
		}
	}
	return err
}
