/*
errors.go - Centralized error types for the points core

PURPOSE:
  All expected error outcomes of the ledger, balance manager, and
  redemption flow in one place. Callers branch with errors.Is/errors.As;
  no expected control flow uses panics.

ERROR CATEGORIES:
  1. Validation errors - malformed input, rejected before any write
  2. Balance errors - insufficient balance, never a partial state change
  3. Concurrency errors - a conditional write lost its race; retry the read path
  4. Integrity errors - invariant violations that indicate a bug, never auto-corrected

Storage failures are NOT represented here: they propagate wrapped from the
store so that a down database is always distinguishable from "zero points".

SEE ALSO:
  - ledger.go, balance.go: producers of these errors
  - rewards/engine.go: wraps these with tier context
*/
package points

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is returned for malformed input (negative points,
	// unknown enum value). Rejected before any write.
	ErrValidation = errors.New("validation failed")

	// ErrInsufficientBalance is returned when a debit exceeds the remaining
	// weekly balance. No partial state change occurs.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrConcurrencyConflict is returned when a conditional write lost its
	// race (e.g. the balance row was created by a concurrent request).
	// Callers re-read and retry; never surfaced to users as a failure.
	ErrConcurrencyConflict = errors.New("concurrent modification detected")

	// ErrUnknownTier is returned when a redemption names a tier id that is
	// not in the catalog.
	ErrUnknownTier = errors.New("unknown reward tier")

	// ErrDuplicateIdempotencyKey is returned when a write carries an
	// idempotency key that was already recorded. Expected on retries.
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")

	// ErrIntegrityViolation indicates a broken invariant (a redemption
	// record without its debit). It means a transaction-boundary bug and
	// must be logged loudly, never silently corrected.
	ErrIntegrityViolation = errors.New("ledger integrity violation")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports which input was malformed and why.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// InsufficientBalanceError provides details about a balance shortage.
type InsufficientBalanceError struct {
	UserID    string
	WeekStart time.Time
	Remaining int
	Requested int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: remaining %d, requested %d (short %d)",
		e.Remaining, e.Requested, e.Requested-e.Remaining)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input or
// an affordable-but-declined outcome, i.e. the caller can correct and retry.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrUnknownTier) ||
		errors.Is(err, ErrDuplicateIdempotencyKey)
}

// IsRetryable returns true if re-reading and retrying might succeed.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}
