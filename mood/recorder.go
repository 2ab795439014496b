/*
recorder.go - Mood event registration

PURPOSE:
  Validates a completed mood-registration interaction and persists it.
  The event append and the weekly ledger credit are one unit of work at the
  store: an event without its credit (or a credit without its event) is a
  data-integrity defect this design rules out.

IDEMPOTENCY:
  Registration accepts an optional client-supplied idempotency key. A retry
  after a timeout carrying the same key is rejected with
  ErrDuplicateIdempotencyKey instead of double-crediting.
*/
package mood

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/pawsitive/mood-engine/points"
)

// Store persists mood events. Implemented by store/sqlite and store/memory.
type Store interface {
	// RecordEvent appends the event and credits ev.Points to the weekly
	// total for the week of ev.At, atomically. Returns
	// points.ErrDuplicateIdempotencyKey if ev.IdempotencyKey was already
	// recorded.
	RecordEvent(ctx context.Context, ev Event) error

	// ListEvents returns the user's events, most recent first.
	ListEvents(ctx context.Context, userID string, limit int) ([]Event, error)

	// EventsInRange returns events with At in [from, to), oldest first.
	EventsInRange(ctx context.Context, userID string, from, to time.Time) ([]Event, error)
}

// RegisterInput is one completed mood-logging flow.
type RegisterInput struct {
	UserID         string
	Onomatopoeia   string
	Scene          Scene
	AfterMood      AfterMood
	Suggestion     json.RawMessage
	IdempotencyKey string
	At             time.Time // zero means "now"
}

// Recorder validates and appends mood events.
type Recorder struct {
	store Store
	now   func() time.Time
}

func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// NewRecorderAt builds a Recorder with a fixed clock, for tests.
func NewRecorderAt(store Store, now func() time.Time) *Recorder {
	return &Recorder{store: store, now: now}
}

// Register validates the input, computes the point award from the after-mood
// category, and persists the event together with its ledger credit.
func (r *Recorder) Register(ctx context.Context, in RegisterInput) (Event, error) {
	if in.UserID == "" {
		return Event{}, &points.ValidationError{Field: "user_id", Message: "required"}
	}
	if !in.AfterMood.Valid() {
		return Event{}, &points.ValidationError{Field: "after_mood", Message: "unknown category"}
	}
	if in.Onomatopoeia != "" {
		if _, ok := OnomatopoeiaByID(in.Onomatopoeia); !ok {
			return Event{}, &points.ValidationError{Field: "onomatopoeia", Message: "unknown selector"}
		}
	}
	if !in.Scene.Valid() {
		return Event{}, &points.ValidationError{Field: "scene", Message: "unknown scene"}
	}

	at := in.At
	if at.IsZero() {
		at = r.now()
	}

	ev := Event{
		ID:             uuid.NewString(),
		UserID:         in.UserID,
		At:             at.UTC(),
		Onomatopoeia:   in.Onomatopoeia,
		Scene:          in.Scene,
		AfterMood:      in.AfterMood,
		Points:         in.AfterMood.Points(),
		Suggestion:     in.Suggestion,
		IdempotencyKey: in.IdempotencyKey,
		CreatedAt:      r.now(),
	}

	if err := r.store.RecordEvent(ctx, ev); err != nil {
		return Event{}, err
	}
	return ev, nil
}

// History returns the user's most recent events.
func (r *Recorder) History(ctx context.Context, userID string, limit int) ([]Event, error) {
	return r.store.ListEvents(ctx, userID, limit)
}
