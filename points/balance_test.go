package points_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawsitive/mood-engine/calendar"
	"github.com/pawsitive/mood-engine/points"
	"github.com/pawsitive/mood-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestBalances(t *testing.T) (*points.BalanceManager, *points.Ledger) {
	t.Helper()
	store := memory.New()
	ledger := points.NewLedger(store)
	return points.NewBalanceManager(ledger, store), ledger
}

// =============================================================================
// CARRYOVER MATERIALIZATION
// =============================================================================

func TestBalance_CarriesPreviousWeekTotal(t *testing.T) {
	// GIVEN: 35 points earned last week, nothing this week
	// WHEN: reading the balance this week
	// THEN: the spendable balance is last week's 35

	balances, ledger := newTestBalances(t)
	ctx := context.Background()

	lastWeek := wednesday.AddDate(0, 0, -7)
	require.NoError(t, ledger.RecordPoints(ctx, "user-1", lastWeek, 35))

	remaining, err := balances.Balance(ctx, "user-1", wednesday)
	require.NoError(t, err)
	assert.Equal(t, 35, remaining)
}

func TestBalance_CurrentWeekEarningsDoNotSpend(t *testing.T) {
	// GIVEN: points earned only in the current week
	// WHEN: reading this week's balance
	// THEN: it is zero; earnings unlock only after the week closes

	balances, ledger := newTestBalances(t)
	ctx := context.Background()

	require.NoError(t, ledger.RecordPoints(ctx, "user-1", wednesday, 40))

	remaining, err := balances.Balance(ctx, "user-1", wednesday)
	require.NoError(t, err)
	assert.Zero(t, remaining)
}

func TestBalance_SnapshotFrozenAtFirstAccess(t *testing.T) {
	// GIVEN: a balance already materialized this week
	// WHEN: a late credit lands in the previous week afterwards
	// THEN: the materialized balance does not change

	balances, ledger := newTestBalances(t)
	ctx := context.Background()

	lastWeek := wednesday.AddDate(0, 0, -7)
	require.NoError(t, ledger.RecordPoints(ctx, "user-1", lastWeek, 30))

	remaining, err := balances.Balance(ctx, "user-1", wednesday)
	require.NoError(t, err)
	require.Equal(t, 30, remaining)

	// Late arrival into the closed week.
	require.NoError(t, ledger.RecordPoints(ctx, "user-1", lastWeek, 20))

	remaining, err = balances.Balance(ctx, "user-1", wednesday)
	require.NoError(t, err)
	assert.Equal(t, 30, remaining, "materialized balance must not be recomputed")
}

func TestBalance_NoHistoryMaterializesZero(t *testing.T) {
	balances, _ := newTestBalances(t)

	remaining, err := balances.Balance(context.Background(), "newcomer", wednesday)
	require.NoError(t, err)
	assert.Zero(t, remaining)
}

func TestBalance_EnsureInitializedIdempotent(t *testing.T) {
	balances, ledger := newTestBalances(t)
	ctx := context.Background()

	require.NoError(t, ledger.RecordPoints(ctx, "user-1", wednesday.AddDate(0, 0, -7), 25))

	b1, err := balances.EnsureInitialized(ctx, "user-1", wednesday)
	require.NoError(t, err)
	b2, err := balances.EnsureInitialized(ctx, "user-1", wednesday)
	require.NoError(t, err)

	assert.Equal(t, b1.Remaining, b2.Remaining)
	assert.True(t, b1.WeekStart.Equal(b2.WeekStart))
}

func TestBalance_ConcurrentFirstAccess_SingleGrant(t *testing.T) {
	// GIVEN: 30 carryover points and no balance row yet
	// WHEN: 20 goroutines read the balance at the same time
	// THEN: every reader sees 30; the carryover is granted exactly once

	balances, ledger := newTestBalances(t)
	ctx := context.Background()

	require.NoError(t, ledger.RecordPoints(ctx, "user-1", wednesday.AddDate(0, 0, -7), 30))

	const n = 20
	results := make([]int, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			remaining, err := balances.Balance(ctx, "user-1", wednesday)
			assert.NoError(t, err)
			results[i] = remaining
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		assert.Equal(t, 30, r, "reader %d", i)
	}
}

// =============================================================================
// DEBITS
// =============================================================================

func TestBalance_DebitReducesRemaining(t *testing.T) {
	balances, ledger := newTestBalances(t)
	ctx := context.Background()

	require.NoError(t, ledger.RecordPoints(ctx, "user-1", wednesday.AddDate(0, 0, -7), 50))

	require.NoError(t, balances.Debit(ctx, "user-1", wednesday, 30))

	remaining, err := balances.Balance(ctx, "user-1", wednesday)
	require.NoError(t, err)
	assert.Equal(t, 20, remaining)
}

func TestBalance_DebitBeyondRemaining_Rejected(t *testing.T) {
	// GIVEN: a balance of 20
	// WHEN: debiting 30
	// THEN: InsufficientBalanceError with accurate detail; balance untouched

	balances, ledger := newTestBalances(t)
	ctx := context.Background()

	require.NoError(t, ledger.RecordPoints(ctx, "user-1", wednesday.AddDate(0, 0, -7), 20))

	err := balances.Debit(ctx, "user-1", wednesday, 30)
	require.Error(t, err)
	assert.ErrorIs(t, err, points.ErrInsufficientBalance)

	var insufficient *points.InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 20, insufficient.Remaining)
	assert.Equal(t, 30, insufficient.Requested)
	assert.True(t, insufficient.WeekStart.Equal(calendar.WeekStart(wednesday)))

	remaining, err := balances.Balance(ctx, "user-1", wednesday)
	require.NoError(t, err)
	assert.Equal(t, 20, remaining)
}

func TestBalance_NonPositiveDebit_Rejected(t *testing.T) {
	balances, _ := newTestBalances(t)
	ctx := context.Background()

	assert.ErrorIs(t, balances.Debit(ctx, "user-1", wednesday, 0), points.ErrValidation)
	assert.ErrorIs(t, balances.Debit(ctx, "user-1", wednesday, -10), points.ErrValidation)
}

func TestBalance_WeeksAreIndependent(t *testing.T) {
	// GIVEN: a debit spent part of this week's balance
	// WHEN: the next week is materialized from this week's earnings
	// THEN: the next week's balance is this week's EARNED total, not remaining

	balances, ledger := newTestBalances(t)
	ctx := context.Background()

	lastWeek := wednesday.AddDate(0, 0, -7)
	nextWeek := wednesday.AddDate(0, 0, 7)

	require.NoError(t, ledger.RecordPoints(ctx, "user-1", lastWeek, 60))
	require.NoError(t, ledger.RecordPoints(ctx, "user-1", wednesday, 45))

	require.NoError(t, balances.Debit(ctx, "user-1", wednesday, 60))

	remaining, err := balances.Balance(ctx, "user-1", nextWeek)
	require.NoError(t, err)
	assert.Equal(t, 45, remaining)
}
