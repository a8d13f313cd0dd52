// Package progress derives dashboard statistics from persisted instances and
// workout logs. Every function is pure and returns a zero value on empty input.
package progress

import (
	"math"
	"sort"
	"time"

	"alcyxob/fitness-coach/internal/domain"
)

// StreakGapToleranceDays is the largest gap, in calendar days, between two
// workouts that still keeps a streak alive. A gap of 2 allows one rest day.
const StreakGapToleranceDays = 2

// FirstWorkoutDay is returned when there is nothing to infer from.
const FirstWorkoutDay = 1

// CompletionPercentage returns completed/total*100 rounded to one decimal,
// or 0 when total is 0.
func CompletionPercentage(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return Round1(float64(completed) / float64(total) * 100)
}

// Round1 rounds v to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// LatestLog returns the log with the most recent WorkoutDate, or nil.
func LatestLog(logs []domain.WorkoutLog) *domain.WorkoutLog {
	var latest *domain.WorkoutLog
	for i := range logs {
		if latest == nil || logs[i].WorkoutDate.After(latest.WorkoutDate) {
			latest = &logs[i]
		}
	}
	return latest
}

// NextWorkoutDay infers which template day the client should do next.
// No previous log, or a last day at or past the end of the cycle, gives day 1.
func NextWorkoutDay(last *domain.WorkoutLog, totalDays int) int {
	if last == nil || last.DayNumber >= totalDays {
		return FirstWorkoutDay
	}
	return last.DayNumber + 1
}

// CompletedDates extracts the workout dates of completed logs.
func CompletedDates(logs []domain.WorkoutLog) []time.Time {
	dates := make([]time.Time, 0, len(logs))
	for _, l := range logs {
		if l.Completed {
			dates = append(dates, l.WorkoutDate)
		}
	}
	return dates
}

// CurrentStreak walks back from today through the completed workout dates,
// newest first. Each date extends the streak while its gap to the previously
// accepted date (initially today) is within StreakGapToleranceDays.
func CurrentStreak(dates []time.Time, today time.Time) int {
	if len(dates) == 0 {
		return 0
	}
	sorted := sortedCalendarDates(dates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].After(sorted[j]) })

	streak := 0
	prev := domain.CalendarDate(today)
	for _, d := range sorted {
		if domain.DaysBetween(d, prev) > StreakGapToleranceDays {
			break
		}
		streak++
		prev = d
	}
	return streak
}

// LongestStreak returns the longest run of completed workouts where each
// consecutive gap is within StreakGapToleranceDays.
func LongestStreak(dates []time.Time) int {
	if len(dates) == 0 {
		return 0
	}
	sorted := sortedCalendarDates(dates)

	longest, run := 0, 1
	for i := 1; i < len(sorted); i++ {
		if domain.DaysBetween(sorted[i-1], sorted[i]) <= StreakGapToleranceDays {
			run++
			continue
		}
		longest = max(longest, run)
		run = 1
	}
	return max(longest, run)
}

// sortedCalendarDates returns a new ascending slice of calendar dates.
func sortedCalendarDates(dates []time.Time) []time.Time {
	out := make([]time.Time, len(dates))
	for i, d := range dates {
		out[i] = domain.CalendarDate(d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
