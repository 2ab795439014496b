package rewards_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawsitive/mood-engine/points"
	"github.com/pawsitive/mood-engine/rewards"
	"github.com/pawsitive/mood-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var wednesday = time.Date(2026, time.August, 26, 12, 0, 0, 0, time.UTC)

// newTestEngine returns an engine whose user already holds the given
// spendable balance for the week containing wednesday.
func newTestEngine(t *testing.T, userID string, balance int) (*rewards.Engine, *points.BalanceManager) {
	t.Helper()
	store := memory.New()
	ledger := points.NewLedger(store)
	balances := points.NewBalanceManager(ledger, store)

	if balance > 0 {
		require.NoError(t, ledger.RecordPoints(context.Background(), userID, wednesday.AddDate(0, 0, -7), balance))
	}

	engine := rewards.NewEngineAt(store, balances, func() time.Time { return wednesday })
	return engine, balances
}

// =============================================================================
// CATALOG
// =============================================================================

func TestCatalog_OrderAndCosts(t *testing.T) {
	catalog := rewards.Catalog()
	require.Len(t, catalog, 4)

	assert.Equal(t, "kibble", catalog[0].ID)
	assert.True(t, catalog[0].Starter())
	assert.Equal(t, 0, catalog[0].Cost)

	assert.Equal(t, "churu", catalog[1].ID)
	assert.Equal(t, 30, catalog[1].Cost)
	assert.Equal(t, "salmon", catalog[2].ID)
	assert.Equal(t, 60, catalog[2].Cost)
	assert.Equal(t, "premium-tuna", catalog[3].ID)
	assert.Equal(t, 100, catalog[3].Cost)
}

func TestAffordableTiers(t *testing.T) {
	// GIVEN: various balances
	// WHEN: listing affordable tiers
	// THEN: only 0 < cost <= balance qualify; the free starter never does

	assert.Empty(t, rewards.AffordableTiers(0))
	assert.Empty(t, rewards.AffordableTiers(29))

	ids := func(tiers []rewards.Tier) []string {
		out := make([]string, len(tiers))
		for i, tr := range tiers {
			out[i] = tr.ID
		}
		return out
	}

	assert.Equal(t, []string{"churu"}, ids(rewards.AffordableTiers(30)))
	assert.Equal(t, []string{"churu", "salmon"}, ids(rewards.AffordableTiers(99)))
	assert.Equal(t, []string{"churu", "salmon", "premium-tuna"}, ids(rewards.AffordableTiers(150)))
}

func TestTierForPoints(t *testing.T) {
	assert.Equal(t, "kibble", rewards.TierForPoints(0).ID)
	assert.Equal(t, "kibble", rewards.TierForPoints(29).ID)
	assert.Equal(t, "churu", rewards.TierForPoints(30).ID)
	assert.Equal(t, "salmon", rewards.TierForPoints(99).ID)
	assert.Equal(t, "premium-tuna", rewards.TierForPoints(100).ID)
}

// =============================================================================
// REDEMPTION
// =============================================================================

func TestRedeem_DebitsBalanceAndAppendsRecord(t *testing.T) {
	// GIVEN: a balance of 100
	// WHEN: redeeming salmon (60)
	// THEN: record persisted, remaining 40

	engine, balances := newTestEngine(t, "user-1", 100)
	ctx := context.Background()

	rec, remaining, err := engine.Redeem(ctx, "user-1", "salmon", wednesday)
	require.NoError(t, err)

	assert.Equal(t, "user-1", rec.UserID)
	assert.Equal(t, "salmon", rec.TierID)
	assert.Equal(t, 60, rec.Cost)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, 40, remaining)

	got, err := balances.Balance(ctx, "user-1", wednesday)
	require.NoError(t, err)
	assert.Equal(t, 40, got)

	history, err := engine.History(ctx, "user-1", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, rec.ID, history[0].ID)
}

func TestRedeem_MultiplePurchasesUntilExhausted(t *testing.T) {
	// GIVEN: a balance of 100
	// WHEN: redeeming churu (30) three times
	// THEN: two succeed, the third fails with the 10-point shortfall visible

	engine, _ := newTestEngine(t, "user-1", 100)
	ctx := context.Background()

	_, remaining, err := engine.Redeem(ctx, "user-1", "churu", wednesday)
	require.NoError(t, err)
	assert.Equal(t, 70, remaining)

	_, remaining, err = engine.Redeem(ctx, "user-1", "churu", wednesday)
	require.NoError(t, err)
	assert.Equal(t, 40, remaining)

	_, remaining, err = engine.Redeem(ctx, "user-1", "salmon", wednesday)
	require.Error(t, err)
	assert.ErrorIs(t, err, points.ErrInsufficientBalance)

	var insufficient *points.InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 40, insufficient.Remaining)
	assert.Equal(t, 60, insufficient.Requested)
}

func TestRedeem_InsufficientBalance_NoRecord(t *testing.T) {
	// GIVEN: a balance of 20
	// WHEN: redeeming churu (30)
	// THEN: rejected; no record, balance untouched

	engine, balances := newTestEngine(t, "user-1", 20)
	ctx := context.Background()

	_, _, err := engine.Redeem(ctx, "user-1", "churu", wednesday)
	assert.ErrorIs(t, err, points.ErrInsufficientBalance)

	history, err := engine.History(ctx, "user-1", 0)
	require.NoError(t, err)
	assert.Empty(t, history)

	remaining, err := balances.Balance(ctx, "user-1", wednesday)
	require.NoError(t, err)
	assert.Equal(t, 20, remaining)
}

func TestRedeem_UnknownTier(t *testing.T) {
	engine, _ := newTestEngine(t, "user-1", 100)

	_, _, err := engine.Redeem(context.Background(), "user-1", "caviar", wednesday)
	assert.ErrorIs(t, err, points.ErrUnknownTier)
}

func TestRedeem_StarterTier_Rejected(t *testing.T) {
	// The free starter is always available for display but never purchasable.
	engine, _ := newTestEngine(t, "user-1", 100)

	_, _, err := engine.Redeem(context.Background(), "user-1", "kibble", wednesday)
	assert.ErrorIs(t, err, points.ErrValidation)
}

func TestRedeem_ZeroBalance_Rejected(t *testing.T) {
	engine, _ := newTestEngine(t, "newcomer", 0)

	_, _, err := engine.Redeem(context.Background(), "newcomer", "churu", wednesday)
	assert.ErrorIs(t, err, points.ErrInsufficientBalance)
}

// =============================================================================
// DOUBLE-SPEND
// =============================================================================

func TestRedeem_ConcurrentDoubleSpend_ExactlyOneWins(t *testing.T) {
	// GIVEN: a balance of 30, enough for one churu
	// WHEN: two goroutines redeem churu simultaneously
	// THEN: exactly one succeeds and the final balance is 0

	engine, balances := newTestEngine(t, "user-1", 30)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = engine.Redeem(ctx, "user-1", "churu", wednesday)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, points.ErrInsufficientBalance)
		}
	}
	assert.Equal(t, 1, succeeded)

	remaining, err := balances.Balance(ctx, "user-1", wednesday)
	require.NoError(t, err)
	assert.Zero(t, remaining)

	history, err := engine.History(ctx, "user-1", 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
