package schedule

import (
	"time"

	"alcyxob/fitness-coach/internal/domain"
)

// WeekStart returns the Monday of the calendar week containing t.
func WeekStart(t time.Time) time.Time {
	d := domain.CalendarDate(t)
	// time.Sunday == 0, shift so Monday == 0
	back := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -back)
}

// WeekRange returns [start, start+7d) for the week containing t.
func WeekRange(t time.Time) (time.Time, time.Time) {
	start := WeekStart(t)
	return start, start.AddDate(0, 0, DaysPerWeek)
}
