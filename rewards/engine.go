/*
engine.go - Redemption against the weekly balance

PURPOSE:
  Validates and executes a reward redemption: one balance debit plus one
  append-only RedemptionRecord, atomic from the caller's perspective. The
  debit and the record insert are a single storage transaction — a record
  must never exist without its matching debit.

MODEL:
  Rolling-balance shop: any number of redemptions are allowed within a week
  until the balance runs out. There is no once-per-week gate.
*/
package rewards

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pawsitive/mood-engine/calendar"
	"github.com/pawsitive/mood-engine/points"
)

// RedemptionRecord is the append-only audit record of a successful grant.
type RedemptionRecord struct {
	ID         string
	UserID     string
	TierID     string
	Cost       int
	RedeemedAt time.Time
}

// Store persists redemptions. Implemented by store/sqlite and store/memory.
type Store interface {
	// Redeem debits the weekly balance for (userID, weekStart) by rec.Cost
	// and appends rec, in one transaction. Returns the remaining balance
	// after the debit, or points.ErrInsufficientBalance with no side effect.
	Redeem(ctx context.Context, rec RedemptionRecord, weekStart time.Time) (remaining int, err error)

	// ListRedemptions returns the user's records, most recent first.
	ListRedemptions(ctx context.Context, userID string, limit int) ([]RedemptionRecord, error)
}

// Engine validates and executes redemptions.
type Engine struct {
	store    Store
	balances *points.BalanceManager
	now      func() time.Time
}

func NewEngine(store Store, balances *points.BalanceManager) *Engine {
	return &Engine{store: store, balances: balances, now: func() time.Time { return time.Now().UTC() }}
}

// NewEngineAt builds an Engine with a fixed clock, for tests.
func NewEngineAt(store Store, balances *points.BalanceManager, now func() time.Time) *Engine {
	return &Engine{store: store, balances: balances, now: now}
}

// Redeem exchanges tier.Cost points from the week-of-asOf balance for the
// named tier. Returns the created record and the balance remaining after
// the debit.
func (e *Engine) Redeem(ctx context.Context, userID, tierID string, asOf time.Time) (RedemptionRecord, int, error) {
	tier, ok := TierByID(tierID)
	if !ok {
		return RedemptionRecord{}, 0, points.ErrUnknownTier
	}
	if tier.Starter() {
		return RedemptionRecord{}, 0, &points.ValidationError{
			Field: "tier_id", Message: "starter tier is not redeemable",
		}
	}

	// Materialize the balance before debiting so the first redemption of a
	// new week sees last week's carryover.
	b, err := e.balances.EnsureInitialized(ctx, userID, asOf)
	if err != nil {
		return RedemptionRecord{}, 0, err
	}

	rec := RedemptionRecord{
		ID:         uuid.NewString(),
		UserID:     userID,
		TierID:     tier.ID,
		Cost:       tier.Cost,
		RedeemedAt: e.now(),
	}

	remaining, err := e.store.Redeem(ctx, rec, calendar.WeekStart(asOf))
	if err != nil {
		if errors.Is(err, points.ErrInsufficientBalance) {
			return RedemptionRecord{}, 0, &points.InsufficientBalanceError{
				UserID:    userID,
				WeekStart: b.WeekStart,
				Remaining: b.Remaining,
				Requested: tier.Cost,
			}
		}
		return RedemptionRecord{}, 0, err
	}
	return rec, remaining, nil
}

// History returns the user's most recent redemptions.
func (e *Engine) History(ctx context.Context, userID string, limit int) ([]RedemptionRecord, error) {
	return e.store.ListRedemptions(ctx, userID, limit)
}
