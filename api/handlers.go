/*
handlers.go - HTTP API handlers for the mood points engine

PURPOSE:
  Exposes the mood/points/rewards engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Users:
    POST   /api/users                        Create anonymous user
    POST   /api/users/{id}/moods             Register a mood log
    GET    /api/users/{id}/moods             Mood history
    GET    /api/users/{id}/points/current    This week's earning progress
    GET    /api/users/{id}/balance           Spendable balance + affordable tiers
    GET    /api/users/{id}/rewards           Full catalog with lock state
    POST   /api/users/{id}/redemptions       Redeem a reward tier
    GET    /api/users/{id}/redemptions       Redemption history
    GET    /api/users/{id}/summary/week      Week summary
    GET    /api/users/{id}/summary/month     Month summary

  Reference data:
    GET    /api/moods/onomatopoeia           Before-mood selector set
    GET    /api/moods/scenes                 Scene tags
    GET    /api/suggestions                  Static suggestion for a mood

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Unknown user-facing resource (reward tier)
  - 409: Conflict (insufficient balance, duplicate idempotency key)
  - 503: Storage failures; the client should retry, never trust a zero

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pawsitive/mood-engine/calendar"
	"github.com/pawsitive/mood-engine/mood"
	"github.com/pawsitive/mood-engine/points"
	"github.com/pawsitive/mood-engine/report"
	"github.com/pawsitive/mood-engine/rewards"
	"github.com/pawsitive/mood-engine/suggest"
)

const timeFormat = time.RFC3339

// Store is everything the handlers need from persistence. Satisfied by
// store/sqlite and store/memory.
type Store interface {
	mood.Store
	points.LedgerStore
	points.BalanceStore
	rewards.Store
	CreateUser(ctx context.Context, id string) error
}

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	store     Store
	recorder  *mood.Recorder
	ledger    *points.Ledger
	balances  *points.BalanceManager
	engine    *rewards.Engine
	reader    *report.Reader
	suggester suggest.Provider

	now func() time.Time
}

// NewHandler wires the domain services on top of the given store.
func NewHandler(store Store) *Handler {
	ledger := points.NewLedger(store)
	balances := points.NewBalanceManager(ledger, store)

	return &Handler{
		store:     store,
		recorder:  mood.NewRecorder(store),
		ledger:    ledger,
		balances:  balances,
		engine:    rewards.NewEngine(store, balances),
		reader:    report.NewReader(store, store),
		suggester: suggest.NewStatic(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the handler clock, for tests.
func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	h.recorder = mood.NewRecorderAt(h.store, now)
	h.engine = rewards.NewEngineAt(h.store, h.balances, now)
	return h
}

// =============================================================================
// USER HANDLERS
// =============================================================================

// CreateUser mints an anonymous user id.
// POST /api/users
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	if err := h.store.CreateUser(r.Context(), id); err != nil {
		writeError(w, http.StatusServiceUnavailable, "Failed to create user", err)
		return
	}
	writeJSON(w, http.StatusCreated, UserDTO{ID: id})
}

// =============================================================================
// MOOD HANDLERS
// =============================================================================

// RegisterMood records one completed mood-logging flow and credits the
// weekly ledger.
// POST /api/users/{id}/moods
func (h *Handler) RegisterMood(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req RegisterMoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ev, err := h.recorder.Register(r.Context(), mood.RegisterInput{
		UserID:         userID,
		Onomatopoeia:   req.Onomatopoeia,
		Scene:          mood.Scene(req.Scene),
		AfterMood:      mood.AfterMood(req.AfterMood),
		Suggestion:     req.Suggestion,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		writeDomainError(w, "Failed to register mood", err)
		return
	}

	total, err := h.ledger.CurrentWeekTotal(r.Context(), userID, ev.At)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Failed to read week total", err)
		return
	}

	writeJSON(w, http.StatusCreated, RegisterMoodResponse{
		Event:     toMoodEventDTO(ev),
		WeekTotal: total,
	})
}

// MoodHistory returns the user's events, most recent first.
// GET /api/users/{id}/moods?limit=
func (h *Handler) MoodHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	evs, err := h.recorder.History(r.Context(), userID, queryLimit(r))
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Failed to read mood history", err)
		return
	}

	dtos := make([]MoodEventDTO, len(evs))
	for i, ev := range evs {
		dtos[i] = toMoodEventDTO(ev)
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": dtos})
}

// =============================================================================
// POINTS HANDLERS
// =============================================================================

// CurrentPoints returns this week's earned total and the tier the pace is
// on track for. Earnings are display-only until the week closes.
// GET /api/users/{id}/points/current
func (h *Handler) CurrentPoints(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	now := h.now()

	total, err := h.ledger.CurrentWeekTotal(r.Context(), userID, now)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Failed to read week total", err)
		return
	}

	writeJSON(w, http.StatusOK, CurrentPointsDTO{
		WeekStart: calendar.WeekStart(now).Format(timeFormat),
		Points:    total,
		OnTrack:   toRewardTierDTO(rewards.TierForPoints(total), total),
	})
}

// GetBalance returns the spendable balance for the current week,
// materializing it from last week's total on first access.
// GET /api/users/{id}/balance
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	now := h.now()

	remaining, err := h.balances.Balance(r.Context(), userID, now)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Failed to read balance", err)
		return
	}

	affordable := rewards.AffordableTiers(remaining)
	dtos := make([]RewardTierDTO, len(affordable))
	for i, t := range affordable {
		dtos[i] = toRewardTierDTO(t, remaining)
	}

	writeJSON(w, http.StatusOK, BalanceDTO{
		WeekStart:  calendar.WeekStart(now).Format(timeFormat),
		Remaining:  remaining,
		Affordable: dtos,
	})
}

// =============================================================================
// REWARD HANDLERS
// =============================================================================

// ListRewards returns the full catalog with per-tier lock state relative to
// the caller's balance.
// GET /api/users/{id}/rewards
func (h *Handler) ListRewards(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	remaining, err := h.balances.Balance(r.Context(), userID, h.now())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Failed to read balance", err)
		return
	}

	catalog := rewards.Catalog()
	dtos := make([]RewardTierDTO, len(catalog))
	for i, t := range catalog {
		dtos[i] = toRewardTierDTO(t, remaining)
	}
	writeJSON(w, http.StatusOK, map[string]any{"tiers": dtos, "remaining": remaining})
}

// Redeem exchanges balance for a reward tier.
// POST /api/users/{id}/redemptions
func (h *Handler) Redeem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req RedeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rec, remaining, err := h.engine.Redeem(r.Context(), userID, req.TierID, h.now())
	if err != nil {
		writeDomainError(w, "Failed to redeem", err)
		return
	}

	writeJSON(w, http.StatusCreated, RedeemResponse{
		Redemption: toRedemptionDTO(rec),
		Remaining:  remaining,
	})
}

// RedemptionHistory returns the user's records, most recent first.
// GET /api/users/{id}/redemptions?limit=
func (h *Handler) RedemptionHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	recs, err := h.engine.History(r.Context(), userID, queryLimit(r))
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Failed to read redemptions", err)
		return
	}

	dtos := make([]RedemptionDTO, len(recs))
	for i, rec := range recs {
		dtos[i] = toRedemptionDTO(rec)
	}
	writeJSON(w, http.StatusOK, map[string]any{"redemptions": dtos})
}

// =============================================================================
// SUMMARY HANDLERS
// =============================================================================

// WeekSummary returns the current week's record count and points.
// GET /api/users/{id}/summary/week
func (h *Handler) WeekSummary(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	s, err := h.reader.WeekSummary(r.Context(), userID, h.now())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Failed to build week summary", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// MonthSummary returns the current month's aggregates.
// GET /api/users/{id}/summary/month
func (h *Handler) MonthSummary(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	s, err := h.reader.MonthSummary(r.Context(), userID, h.now())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Failed to build month summary", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// =============================================================================
// REFERENCE DATA HANDLERS
// =============================================================================

// ListOnomatopoeia returns the before-mood selector set.
// GET /api/moods/onomatopoeia
func (h *Handler) ListOnomatopoeia(w http.ResponseWriter, r *http.Request) {
	all := mood.AllOnomatopoeia()
	dtos := make([]OnomatopoeiaDTO, len(all))
	for i, o := range all {
		dtos[i] = OnomatopoeiaDTO{
			ID:       o.ID,
			Label:    o.Label,
			Glyph:    o.Glyph,
			Category: string(o.Category),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"onomatopoeia": dtos})
}

// ListScenes returns the scene tags, plus the one preselected for now.
// GET /api/moods/scenes
func (h *Handler) ListScenes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"scenes":  mood.Scenes(),
		"default": mood.DefaultScene(h.now()),
	})
}

// GetSuggestion returns the static suggestion for a mood. The generative
// provider lives outside this service; clients attach whichever payload
// they ended up showing to the mood registration.
// GET /api/suggestions?onomatopoeia=&scene=
func (h *Handler) GetSuggestion(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("onomatopoeia")
	o, ok := mood.OnomatopoeiaByID(id)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown onomatopoeia", nil)
		return
	}
	scene := mood.Scene(r.URL.Query().Get("scene"))
	if !scene.Valid() {
		writeError(w, http.StatusBadRequest, "Unknown scene", nil)
		return
	}

	now := h.now()
	s, err := h.suggester.Suggest(r.Context(), suggest.Request{
		Onomatopoeia: o,
		Scene:        scene,
		Season:       suggest.SeasonOf(now),
	})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Failed to build suggestion", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// =============================================================================
// HELPERS
// =============================================================================

func queryLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

// writeDomainError maps domain errors onto HTTP statuses. Anything not
// recognized as a client error is reported as 503: the caller must retry
// rather than mistake a storage failure for an empty result.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, points.ErrUnknownTier):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, points.ErrInsufficientBalance),
		errors.Is(err, points.ErrDuplicateIdempotencyKey):
		writeError(w, http.StatusConflict, message, err)
	case errors.Is(err, points.ErrValidation):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusServiceUnavailable, message, err)
	}
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
