package progress

import "alcyxob/fitness-coach/internal/domain"

// WorkoutSummary aggregates a set of workout logs.
type WorkoutSummary struct {
	TotalWorkouts     int      `json:"totalWorkouts"`
	CompletedWorkouts int      `json:"completedWorkouts"`
	SkippedWorkouts   int      `json:"skippedWorkouts"`
	CompletionRate    float64  `json:"completionRate"`
	AverageDuration   *float64 `json:"averageDuration,omitempty"`
	AverageExertion   *float64 `json:"averageExertion,omitempty"`
}

// Summarize computes counts, completion rate and averages over logs.
// Averages only consider completed logs that carry the value and are nil
// when none do.
func Summarize(logs []domain.WorkoutLog) WorkoutSummary {
	s := WorkoutSummary{TotalWorkouts: len(logs)}

	var durSum, exSum, durN, exN int
	for _, l := range logs {
		if l.Skipped {
			s.SkippedWorkouts++
		}
		if !l.Completed {
			continue
		}
		s.CompletedWorkouts++
		if l.DurationMinutes != nil {
			durSum += *l.DurationMinutes
			durN++
		}
		if l.PerceivedExertion != nil {
			exSum += *l.PerceivedExertion
			exN++
		}
	}

	s.CompletionRate = CompletionPercentage(s.CompletedWorkouts, s.TotalWorkouts)
	s.AverageDuration = average(durSum, durN)
	s.AverageExertion = average(exSum, exN)
	return s
}

func average(sum, n int) *float64 {
	if n == 0 {
		return nil
	}
	v := Round1(float64(sum) / float64(n))
	return &v
}
