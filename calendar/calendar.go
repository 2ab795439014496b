/*
Package calendar is the single source of week-boundary arithmetic.

PURPOSE:
  Every component that needs to know "which week does this instant belong
  to" goes through this package. Weeks start on Monday at midnight in the
  wall-clock location of the input time. Nothing else in the repository
  computes weekday offsets.

KEY CONCEPTS:
  - Week: a half-open 7-day window [Start, Start+7d)
  - WeekStart: the Monday on/before a given instant
  - PreviousWeekRange: the closed-out week immediately before the current one

All functions are pure and total. There are no failure modes.

SEE ALSO:
  - points/ledger.go: buckets point credits by WeekStart
  - points/balance.go: materializes balances from the previous week's total
*/
package calendar

import "time"

// Week is a half-open 7-day window starting on a Monday at midnight.
type Week struct {
	Start time.Time
}

// WeekStart returns midnight on the Monday on/before t, in t's location.
func WeekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	// time.Weekday puts Sunday at 0; shift so Monday is offset 0.
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// WeekOf returns the week containing t.
func WeekOf(t time.Time) Week {
	return Week{Start: WeekStart(t)}
}

// PreviousWeekRange returns the 7-day window immediately preceding the week
// containing t. The end bound is exclusive and equals WeekStart(t).
func PreviousWeekRange(t time.Time) (start, end time.Time) {
	end = WeekStart(t)
	start = end.AddDate(0, 0, -7)
	return start, end
}

// End returns the exclusive end of the week, 7 days after Start.
func (w Week) End() time.Time {
	return w.Start.AddDate(0, 0, 7)
}

// Contains reports whether t falls within [Start, End).
func (w Week) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End())
}

// Next returns the following week.
func (w Week) Next() Week {
	return Week{Start: w.Start.AddDate(0, 0, 7)}
}

// Prev returns the preceding week.
func (w Week) Prev() Week {
	return Week{Start: w.Start.AddDate(0, 0, -7)}
}

func (w Week) String() string {
	return "[" + w.Start.Format("2006-01-02") + ", " + w.End().Format("2006-01-02") + ")"
}
