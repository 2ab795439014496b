// Package report computes read-only summaries over recorded mood events,
// week ledger totals, and redemptions. It never mutates state.
//
// PURPOSE: the feedback side of the app. The write path (mood, points,
// rewards) stays small and transactional; everything a history or summary
// screen needs is aggregated here from the same stores.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pawsitive/mood-engine/calendar"
	"github.com/pawsitive/mood-engine/mood"
	"github.com/pawsitive/mood-engine/points"
)

// =============================================================================
// TYPES
// =============================================================================

// WeekSummary describes a single ledger week.
type WeekSummary struct {
	WeekStart time.Time `json:"week_start"`
	Records   int       `json:"records"`
	Points    int       `json:"points"`
}

// MonthSummary aggregates a calendar month of mood events.
type MonthSummary struct {
	Month           string          `json:"month"` // "2026-08"
	Records         int             `json:"records"`
	Points          int             `json:"points"`
	AvgPoints       decimal.Decimal `json:"avg_points"`       // per record, 0 when no records
	ImprovementRate decimal.Decimal `json:"improvement_rate"` // share of records reporting a better after-mood
	SceneCounts     map[string]int  `json:"scene_counts"`
}

// EventSource is the read side of the mood event store.
type EventSource interface {
	ListEvents(ctx context.Context, userID string, limit int) ([]mood.Event, error)
	EventsInRange(ctx context.Context, userID string, from, to time.Time) ([]mood.Event, error)
}

// =============================================================================
// READER
// =============================================================================

type Reader struct {
	events EventSource
	ledger points.LedgerStore
}

func NewReader(events EventSource, ledger points.LedgerStore) *Reader {
	return &Reader{events: events, ledger: ledger}
}

// WeekSummary reports the week containing asOf: the ledger total plus the
// number of events recorded so far.
func (r *Reader) WeekSummary(ctx context.Context, userID string, asOf time.Time) (WeekSummary, error) {
	week := calendar.WeekOf(asOf)

	total, err := r.ledger.WeekTotal(ctx, userID, week.Start)
	if err != nil {
		return WeekSummary{}, fmt.Errorf("week total: %w", err)
	}
	evs, err := r.events.EventsInRange(ctx, userID, week.Start, week.End())
	if err != nil {
		return WeekSummary{}, fmt.Errorf("week events: %w", err)
	}

	return WeekSummary{WeekStart: week.Start, Records: len(evs), Points: total}, nil
}

// MonthSummary aggregates the calendar month containing asOf.
func (r *Reader) MonthSummary(ctx context.Context, userID string, asOf time.Time) (MonthSummary, error) {
	from := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, asOf.Location())
	to := from.AddDate(0, 1, 0)

	evs, err := r.events.EventsInRange(ctx, userID, from, to)
	if err != nil {
		return MonthSummary{}, fmt.Errorf("month events: %w", err)
	}

	s := MonthSummary{
		Month:           from.Format("2006-01"),
		Records:         len(evs),
		AvgPoints:       decimal.Zero,
		ImprovementRate: decimal.Zero,
		SceneCounts:     make(map[string]int),
	}

	improved := 0
	for _, ev := range evs {
		s.Points += ev.Points
		if ev.AfterMood.Improved() {
			improved++
		}
		if ev.Scene != "" {
			s.SceneCounts[string(ev.Scene)]++
		}
	}
	if s.Records > 0 {
		records := decimal.NewFromInt(int64(s.Records))
		s.AvgPoints = decimal.NewFromInt(int64(s.Points)).DivRound(records, 2)
		s.ImprovementRate = decimal.NewFromInt(int64(improved)).DivRound(records, 4)
	}
	return s, nil
}

// RecentEvents returns the most recent events, newest first.
func (r *Reader) RecentEvents(ctx context.Context, userID string, limit int) ([]mood.Event, error) {
	return r.events.ListEvents(ctx, userID, limit)
}
