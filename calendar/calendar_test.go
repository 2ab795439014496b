package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/pawsitive/mood-engine/calendar"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestWeekStart_EveryWeekday(t *testing.T) {
	// GIVEN: each day of a known week (Mon 2025-06-09 .. Sun 2025-06-15)
	// WHEN: computing the week start
	// THEN: all map to Monday 2025-06-09

	monday := date(2025, time.June, 9)
	for i := 0; i < 7; i++ {
		day := monday.AddDate(0, 0, i)
		assert.Equal(t, monday, calendar.WeekStart(day), "weekday offset %d", i)
	}
}

func TestWeekStart_MondayIsFixedPoint(t *testing.T) {
	monday := date(2025, time.January, 6)
	assert.Equal(t, monday, calendar.WeekStart(monday))
}

func TestWeekStart_MidDayInstant(t *testing.T) {
	// An instant mid-afternoon still maps to its week's Monday midnight.
	at := time.Date(2025, time.June, 12, 15, 42, 7, 0, time.UTC)
	assert.Equal(t, date(2025, time.June, 9), calendar.WeekStart(at))
}

func TestWeekStart_CrossesMonthAndYear(t *testing.T) {
	// Thu 2026-01-01 belongs to the week starting Mon 2025-12-29.
	assert.Equal(t, date(2025, time.December, 29), calendar.WeekStart(date(2026, time.January, 1)))
}

func TestPreviousWeekRange(t *testing.T) {
	// GIVEN: Wednesday 2025-06-11
	// WHEN: asking for the previous week's range
	// THEN: [Mon 2025-06-02, Mon 2025-06-09)

	start, end := calendar.PreviousWeekRange(date(2025, time.June, 11))
	assert.Equal(t, date(2025, time.June, 2), start)
	assert.Equal(t, date(2025, time.June, 9), end)
}

func TestWeek_Contains(t *testing.T) {
	w := calendar.WeekOf(date(2025, time.June, 9))

	assert.True(t, w.Contains(date(2025, time.June, 9)), "start is inclusive")
	assert.True(t, w.Contains(time.Date(2025, time.June, 15, 23, 59, 59, 0, time.UTC)), "last instant of Sunday")
	assert.False(t, w.Contains(date(2025, time.June, 16)), "end is exclusive")
	assert.False(t, w.Contains(date(2025, time.June, 8)))
}

func TestWeek_NextPrevAreInverse(t *testing.T) {
	w := calendar.WeekOf(date(2025, time.June, 11))
	assert.Equal(t, w, w.Next().Prev())
	assert.Equal(t, w.Start.AddDate(0, 0, 7), w.Next().Start)
}

func TestWeekStart_ConsistentWithPreviousWeekRange(t *testing.T) {
	// The previous week's exclusive end is exactly the current week start,
	// so no instant can fall into both windows.
	at := time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)
	_, end := calendar.PreviousWeekRange(at)
	assert.Equal(t, calendar.WeekStart(at), end)
}
