package progress

import (
	"testing"
	"time"

	"alcyxob/fitness-coach/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2025, time.September, 20, 9, 15, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return today.AddDate(0, 0, -n).Add(7 * time.Hour)
}

func TestCompletionPercentage(t *testing.T) {
	assert.Equal(t, 0.0, CompletionPercentage(0, 0))
	assert.Equal(t, 0.0, CompletionPercentage(5, 0))
	assert.Equal(t, 33.3, CompletionPercentage(1, 3))
	assert.Equal(t, 66.7, CompletionPercentage(2, 3))
	assert.Equal(t, 100.0, CompletionPercentage(12, 12))
}

func TestNextWorkoutDay(t *testing.T) {
	assert.Equal(t, 1, NextWorkoutDay(nil, 3))
	assert.Equal(t, 2, NextWorkoutDay(&domain.WorkoutLog{DayNumber: 1}, 3))
	assert.Equal(t, 1, NextWorkoutDay(&domain.WorkoutLog{DayNumber: 3}, 3))
	assert.Equal(t, 1, NextWorkoutDay(&domain.WorkoutLog{DayNumber: 5}, 3))
	assert.Equal(t, 1, NextWorkoutDay(&domain.WorkoutLog{DayNumber: 1}, 0))
}

func TestLatestLog(t *testing.T) {
	assert.Nil(t, LatestLog(nil))

	logs := []domain.WorkoutLog{
		{DayNumber: 3, WorkoutDate: daysAgo(4)},
		{DayNumber: 1, WorkoutDate: daysAgo(1)},
		{DayNumber: 2, WorkoutDate: daysAgo(2)},
	}
	latest := LatestLog(logs)
	require.NotNil(t, latest)
	assert.Equal(t, 1, latest.DayNumber)
	assert.Equal(t, 2, NextWorkoutDay(latest, 3))
}

func TestCurrentStreak(t *testing.T) {
	tests := []struct {
		name  string
		dates []time.Time
		want  int
	}{
		{"no logs", nil, 0},
		{"worked out today", []time.Time{daysAgo(0)}, 1},
		{"two days ago still counts", []time.Time{daysAgo(2)}, 1},
		{"three days ago breaks", []time.Time{daysAgo(3)}, 0},
		{"gap of two keeps the streak", []time.Time{daysAgo(0), daysAgo(2), daysAgo(4)}, 3},
		{"gap of three stops the walk", []time.Time{daysAgo(1), daysAgo(2), daysAgo(5), daysAgo(6)}, 2},
		{"unsorted input", []time.Time{daysAgo(4), daysAgo(0), daysAgo(2)}, 3},
		{"same day twice counts twice", []time.Time{daysAgo(1), daysAgo(1)}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CurrentStreak(tt.dates, today))
		})
	}
}

func TestLongestStreak(t *testing.T) {
	tests := []struct {
		name  string
		dates []time.Time
		want  int
	}{
		{"no logs", nil, 0},
		{"single log", []time.Time{daysAgo(30)}, 1},
		{"gap of two is continuous", []time.Time{daysAgo(10), daysAgo(8)}, 2},
		{"gap of three resets", []time.Time{daysAgo(10), daysAgo(7)}, 1},
		{"longest run in the middle", []time.Time{daysAgo(30), daysAgo(20), daysAgo(19), daysAgo(17), daysAgo(10)}, 3},
		{"longest run at the end", []time.Time{daysAgo(30), daysAgo(20), daysAgo(3), daysAgo(2), daysAgo(1), daysAgo(0)}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LongestStreak(tt.dates))
		})
	}
}

func TestStreakToleranceBoundary(t *testing.T) {
	base := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	continuous := []time.Time{base, base.AddDate(0, 0, StreakGapToleranceDays)}
	assert.Equal(t, 2, LongestStreak(continuous))

	broken := []time.Time{base, base.AddDate(0, 0, StreakGapToleranceDays+1)}
	assert.Equal(t, 1, LongestStreak(broken))
	assert.Equal(t, 1, CurrentStreak(broken, base.AddDate(0, 0, StreakGapToleranceDays+1)))
}

func TestCompletedDatesAndSummary(t *testing.T) {
	dur := func(v int) *int { return &v }
	logs := []domain.WorkoutLog{
		{Completed: true, WorkoutDate: daysAgo(0), DurationMinutes: dur(45), PerceivedExertion: dur(7)},
		{Completed: true, WorkoutDate: daysAgo(2), DurationMinutes: dur(60)},
		{Skipped: true, WorkoutDate: daysAgo(4), SkipReason: "travel"},
	}

	assert.Len(t, CompletedDates(logs), 2)

	s := Summarize(logs)
	assert.Equal(t, 3, s.TotalWorkouts)
	assert.Equal(t, 2, s.CompletedWorkouts)
	assert.Equal(t, 1, s.SkippedWorkouts)
	assert.Equal(t, 66.7, s.CompletionRate)
	require.NotNil(t, s.AverageDuration)
	assert.Equal(t, 52.5, *s.AverageDuration)
	require.NotNil(t, s.AverageExertion)
	assert.Equal(t, 7.0, *s.AverageExertion)

	empty := Summarize(nil)
	assert.Equal(t, 0.0, empty.CompletionRate)
	assert.Nil(t, empty.AverageDuration)
}
