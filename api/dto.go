/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Validation is done in the domain layer, not in DTOs. DTOs are pure data
  carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"encoding/json"

	"github.com/pawsitive/mood-engine/mood"
	"github.com/pawsitive/mood-engine/rewards"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// UserDTO represents a user in API responses. Users are anonymous: the id
// is the only identity the system carries.
type UserDTO struct {
	ID string `json:"id"`
}

// RegisterMoodRequest is one completed mood-logging flow.
type RegisterMoodRequest struct {
	Onomatopoeia   string          `json:"onomatopoeia"`
	Scene          string          `json:"scene,omitempty"`
	AfterMood      string          `json:"after_mood"`
	Suggestion     json.RawMessage `json:"suggestion,omitempty"`
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
}

// MoodEventDTO represents a stored mood event.
type MoodEventDTO struct {
	ID           string          `json:"id"`
	At           string          `json:"at"`
	Onomatopoeia string          `json:"onomatopoeia,omitempty"`
	Scene        string          `json:"scene,omitempty"`
	AfterMood    string          `json:"after_mood"`
	Points       int             `json:"points"`
	Suggestion   json.RawMessage `json:"suggestion,omitempty"`
}

// RegisterMoodResponse returns the stored event plus the week total after
// the credit, so the UI can animate the progress bar without a second call.
type RegisterMoodResponse struct {
	Event     MoodEventDTO `json:"event"`
	WeekTotal int          `json:"week_total"`
}

// CurrentPointsDTO is this week's earning progress.
type CurrentPointsDTO struct {
	WeekStart string        `json:"week_start"`
	Points    int           `json:"points"`
	OnTrack   RewardTierDTO `json:"on_track_for"`
}

// BalanceDTO is the spendable balance carried from last week.
type BalanceDTO struct {
	WeekStart  string          `json:"week_start"`
	Remaining  int             `json:"remaining"`
	Affordable []RewardTierDTO `json:"affordable"`
}

// RewardTierDTO represents one catalog tier, with its lock state relative
// to the caller's balance.
type RewardTierDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Cost     int    `json:"cost"`
	UnlockAt int    `json:"unlock_at"`
	Glyph    string `json:"glyph"`
	Locked   bool   `json:"locked"`
}

// RedeemRequest asks to exchange balance for a tier.
type RedeemRequest struct {
	TierID string `json:"tier_id"`
}

// RedemptionDTO represents one completed redemption.
type RedemptionDTO struct {
	ID         string `json:"id"`
	TierID     string `json:"tier_id"`
	Cost       int    `json:"cost"`
	RedeemedAt string `json:"redeemed_at"`
}

// RedeemResponse returns the record plus the balance after the debit.
type RedeemResponse struct {
	Redemption RedemptionDTO `json:"redemption"`
	Remaining  int           `json:"remaining"`
}

// OnomatopoeiaDTO is one before-mood selector, reference data for the UI.
type OnomatopoeiaDTO struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Glyph    string `json:"glyph"`
	Category string `json:"category"`
}

// ErrorResponse is the error envelope for all non-2xx responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toMoodEventDTO(ev mood.Event) MoodEventDTO {
	return MoodEventDTO{
		ID:           ev.ID,
		At:           ev.At.Format(timeFormat),
		Onomatopoeia: ev.Onomatopoeia,
		Scene:        string(ev.Scene),
		AfterMood:    string(ev.AfterMood),
		Points:       ev.Points,
		Suggestion:   ev.Suggestion,
	}
}

func toRewardTierDTO(t rewards.Tier, balance int) RewardTierDTO {
	return RewardTierDTO{
		ID:       t.ID,
		Name:     t.Name,
		Cost:     t.Cost,
		UnlockAt: t.UnlockAt,
		Glyph:    t.Glyph,
		Locked:   !t.Starter() && t.Cost > balance,
	}
}

func toRedemptionDTO(rec rewards.RedemptionRecord) RedemptionDTO {
	return RedemptionDTO{
		ID:         rec.ID,
		TierID:     rec.TierID,
		Cost:       rec.Cost,
		RedeemedAt: rec.RedeemedAt.Format(timeFormat),
	}
}
