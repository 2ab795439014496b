/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces. In production the same patterns apply to PostgreSQL — only
minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  mood.Store:         event append + ledger credit in one transaction
  points.LedgerStore: atomic weekly total upsert-increment
  points.BalanceStore: exactly-once balance creation, conditional debit
  rewards.Store:      debit + redemption record in one transaction

CONCURRENCY INVARIANTS ENFORCED HERE:
  - Ledger increments are single upsert statements: no lost updates.
  - weekly_balances has a (user_id, week_start) primary key; a duplicate
    create maps to points.ErrConcurrencyConflict so the caller re-reads.
  - Debits are conditional decrements (remaining >= amount in the WHERE
    clause); an unapplied decrement maps to points.ErrInsufficientBalance.
  - CHECK (remaining >= 0) backstops the debit path: a negative balance is
    impossible even under a bug in application SQL.

WAL MODE:
  SQLite is opened with WAL for better concurrency and crash recovery.
  The pool is pinned to a single connection so that ":memory:" databases
  behave (each new connection would otherwise get a fresh empty database)
  and writes serialize at the driver.

USAGE:
  store, err := sqlite.New("./data/mood.db")
  ledger := points.NewLedger(store)
  balances := points.NewBalanceManager(ledger, store)

SEE ALSO:
  - points/types.go: interface contracts
  - store/memory: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pawsitive/mood-engine/calendar"
	"github.com/pawsitive/mood-engine/mood"
	"github.com/pawsitive/mood-engine/points"
	"github.com/pawsitive/mood-engine/rewards"
)

const (
	dayFormat = "2006-01-02"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: ":memory:" databases are per-connection, and a single
	// writer matches SQLite's locking model anyway.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL
	);

	-- Mood events (append-only)
	CREATE TABLE IF NOT EXISTS mood_events (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		at TEXT NOT NULL,
		onomatopoeia TEXT,
		scene TEXT,
		after_mood TEXT NOT NULL,
		points INTEGER NOT NULL CHECK (points >= 0),
		suggestion_json TEXT,
		idempotency_key TEXT UNIQUE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_mood_events_user_at
		ON mood_events(user_id, at);

	-- Weekly point totals: the system of record for earned points.
	-- The primary key makes the upsert-increment race-free.
	CREATE TABLE IF NOT EXISTS weekly_points (
		user_id TEXT NOT NULL,
		week_start TEXT NOT NULL,
		total_points INTEGER NOT NULL DEFAULT 0 CHECK (total_points >= 0),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (user_id, week_start)
	);

	-- Weekly redeemable balances. The primary key enforces exactly-once
	-- materialization; CHECK enforces non-negativity.
	CREATE TABLE IF NOT EXISTS weekly_balances (
		user_id TEXT NOT NULL,
		week_start TEXT NOT NULL,
		remaining INTEGER NOT NULL CHECK (remaining >= 0),
		created_at TEXT NOT NULL,
		PRIMARY KEY (user_id, week_start)
	);

	-- Redemptions (append-only audit trail)
	CREATE TABLE IF NOT EXISTS redemptions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		tier_id TEXT NOT NULL,
		cost INTEGER NOT NULL CHECK (cost > 0),
		redeemed_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_redemptions_user_at
		ON redemptions(user_id, redeemed_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// USERS
// =============================================================================

// User is an anonymous account record.
type User struct {
	ID        string
	CreatedAt time.Time
}

// CreateUser inserts a user if it does not already exist. Idempotent.
func (s *Store) CreateUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, created_at) VALUES (?, ?) ON CONFLICT(id) DO NOTHING`,
		id, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetUser returns the user, or nil if absent.
func (s *Store) GetUser(ctx context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var u User
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &u, nil
}

// =============================================================================
// LEDGER STORE (points.LedgerStore interface)
// =============================================================================

// IncrementWeekTotal atomically adds points to the (user, week) total,
// creating the row if absent. The single upsert statement makes concurrent
// increments lost-update-free.
func (s *Store) IncrementWeekTotal(ctx context.Context, userID string, weekStart time.Time, pts int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.incrementWeekTotalTx(ctx, s.db, userID, weekStart, pts)
}

func (s *Store) incrementWeekTotalTx(ctx context.Context, db execer, userID string, weekStart time.Time, pts int) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := db.ExecContext(ctx, `
		INSERT INTO weekly_points (user_id, week_start, total_points, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, week_start) DO UPDATE SET
			total_points = total_points + excluded.total_points,
			updated_at = excluded.updated_at
	`, userID, weekStart.Format(dayFormat), pts, now, now)
	if err != nil {
		return fmt.Errorf("failed to credit weekly total: %w", err)
	}
	return nil
}

// WeekTotal returns the total for (user, week), 0 when no row exists.
func (s *Store) WeekTotal(ctx context.Context, userID string, weekStart time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT total_points FROM weekly_points WHERE user_id = ? AND week_start = ?`,
		userID, weekStart.Format(dayFormat),
	).Scan(&total)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read weekly total: %w", err)
	}
	return total, nil
}

// =============================================================================
// BALANCE STORE (points.BalanceStore interface)
// =============================================================================

// Balance returns the balance row for (user, week), or nil if absent.
func (s *Store) Balance(ctx context.Context, userID string, weekStart time.Time) (*points.WeeklyBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.balanceTx(ctx, s.db, userID, weekStart)
}

func (s *Store) balanceTx(ctx context.Context, db querier, userID string, weekStart time.Time) (*points.WeeklyBalance, error) {
	var b points.WeeklyBalance
	var ws, createdAt string
	err := db.QueryRowContext(ctx,
		`SELECT user_id, week_start, remaining, created_at FROM weekly_balances
		 WHERE user_id = ? AND week_start = ?`,
		userID, weekStart.Format(dayFormat),
	).Scan(&b.UserID, &ws, &b.Remaining, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read balance: %w", err)
	}
	b.WeekStart, _ = time.Parse(dayFormat, ws)
	b.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &b, nil
}

// CreateBalance inserts a new balance row. A duplicate (user, week) maps to
// points.ErrConcurrencyConflict so the losing caller re-reads the winner.
func (s *Store) CreateBalance(ctx context.Context, b points.WeeklyBalance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO weekly_balances (user_id, week_start, remaining, created_at)
		 VALUES (?, ?, ?, ?)`,
		b.UserID, b.WeekStart.Format(dayFormat), b.Remaining,
		b.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return points.ErrConcurrencyConflict
		}
		return fmt.Errorf("failed to create balance: %w", err)
	}
	return nil
}

// DebitBalance decrements remaining by amount only if it can be afforded.
// The check and the write are one conditional UPDATE: concurrent debits
// against the same balance serialize correctly.
func (s *Store) DebitBalance(ctx context.Context, userID string, weekStart time.Time, amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.debitBalanceTx(ctx, s.db, userID, weekStart, amount)
}

func (s *Store) debitBalanceTx(ctx context.Context, db execer, userID string, weekStart time.Time, amount int) error {
	res, err := db.ExecContext(ctx,
		`UPDATE weekly_balances SET remaining = remaining - ?
		 WHERE user_id = ? AND week_start = ? AND remaining >= ?`,
		amount, userID, weekStart.Format(dayFormat), amount,
	)
	if err != nil {
		return fmt.Errorf("failed to debit balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to debit balance: %w", err)
	}
	if n == 0 {
		// Row absent or cannot afford the debit; either way nothing changed.
		return points.ErrInsufficientBalance
	}
	return nil
}

// =============================================================================
// MOOD EVENT STORE (mood.Store interface)
// =============================================================================

// RecordEvent appends the event and credits its week's total in one
// transaction. An event without its ledger credit cannot be observed.
func (s *Store) RecordEvent(ctx context.Context, ev mood.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var suggestion any
		if len(ev.Suggestion) > 0 {
			suggestion = string(ev.Suggestion)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO mood_events
			(id, user_id, at, onomatopoeia, scene, after_mood, points, suggestion_json, idempotency_key, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			ev.ID, ev.UserID, ev.At.UTC().Format(time.RFC3339),
			nullString(ev.Onomatopoeia), nullString(string(ev.Scene)),
			string(ev.AfterMood), ev.Points, suggestion,
			nullString(ev.IdempotencyKey),
			ev.CreatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			if isUniqueConstraintError(err) {
				return points.ErrDuplicateIdempotencyKey
			}
			return fmt.Errorf("failed to append mood event: %w", err)
		}

		return s.incrementWeekTotalTx(ctx, tx, ev.UserID, calendar.WeekStart(ev.At), ev.Points)
	})
}

// ListEvents returns the user's events, most recent first.
func (s *Store) ListEvents(ctx context.Context, userID string, limit int) ([]mood.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, user_id, at, onomatopoeia, scene, after_mood, points, suggestion_json, idempotency_key, created_at
		FROM mood_events
		WHERE user_id = ?
		ORDER BY at DESC
		LIMIT ?
	`
	// SQLite treats a negative LIMIT as "no limit".
	if limit <= 0 {
		limit = -1
	}
	return s.queryEvents(ctx, query, userID, limit)
}

// EventsInRange returns events with At in [from, to), oldest first.
func (s *Store) EventsInRange(ctx context.Context, userID string, from, to time.Time) ([]mood.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, user_id, at, onomatopoeia, scene, after_mood, points, suggestion_json, idempotency_key, created_at
		FROM mood_events
		WHERE user_id = ? AND at >= ? AND at < ?
		ORDER BY at ASC
	`
	return s.queryEvents(ctx, query, userID,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
}

func (s *Store) queryEvents(ctx context.Context, query string, args ...any) ([]mood.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query mood events: %w", err)
	}
	defer rows.Close()

	var events []mood.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func scanEvent(rows *sql.Rows) (mood.Event, error) {
	var (
		ev                  mood.Event
		at, createdAt       string
		onomatopoeia, scene sql.NullString
		suggestion, idemKey sql.NullString
	)

	err := rows.Scan(
		&ev.ID, &ev.UserID, &at, &onomatopoeia, &scene,
		&ev.AfterMood, &ev.Points, &suggestion, &idemKey, &createdAt,
	)
	if err != nil {
		return ev, fmt.Errorf("failed to scan mood event: %w", err)
	}

	ev.At, _ = time.Parse(time.RFC3339, at)
	ev.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	ev.Onomatopoeia = onomatopoeia.String
	ev.Scene = mood.Scene(scene.String)
	ev.IdempotencyKey = idemKey.String
	if suggestion.Valid && suggestion.String != "" {
		ev.Suggestion = []byte(suggestion.String)
	}
	return ev, nil
}

// =============================================================================
// REDEMPTION STORE (rewards.Store interface)
// =============================================================================

// Redeem debits the balance and appends the record in one transaction.
// On ErrInsufficientBalance the transaction rolls back with no side effect.
func (s *Store) Redeem(ctx context.Context, rec rewards.RedemptionRecord, weekStart time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var remaining int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.debitBalanceTx(ctx, tx, rec.UserID, weekStart, rec.Cost); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO redemptions (id, user_id, tier_id, cost, redeemed_at)
			 VALUES (?, ?, ?, ?, ?)`,
			rec.ID, rec.UserID, rec.TierID, rec.Cost,
			rec.RedeemedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("failed to append redemption: %w", err)
		}

		return tx.QueryRowContext(ctx,
			`SELECT remaining FROM weekly_balances WHERE user_id = ? AND week_start = ?`,
			rec.UserID, weekStart.Format(dayFormat),
		).Scan(&remaining)
	})
	if err != nil {
		return 0, err
	}
	return remaining, nil
}

// ListRedemptions returns the user's records, most recent first.
func (s *Store) ListRedemptions(ctx context.Context, userID string, limit int) ([]rewards.RedemptionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, tier_id, cost, redeemed_at
		FROM redemptions
		WHERE user_id = ?
		ORDER BY redeemed_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query redemptions: %w", err)
	}
	defer rows.Close()

	var recs []rewards.RedemptionRecord
	for rows.Next() {
		var rec rewards.RedemptionRecord
		var redeemedAt string
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.TierID, &rec.Cost, &redeemedAt); err != nil {
			return nil, fmt.Errorf("failed to scan redemption: %w", err)
		}
		rec.RedeemedAt, _ = time.Parse(time.RFC3339, redeemedAt)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// withTx executes fn within a database transaction. Rolled back if fn
// returns an error, committed otherwise. Callers must already hold s.mu.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(sqlTx); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"redemptions", "weekly_balances", "weekly_points", "mood_events", "users"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
