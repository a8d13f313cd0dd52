package memory

import (
	"context"
	"sort"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type workoutLogRepository struct{ s *Store }

// WorkoutLogs returns the workout log collection.
func (s *Store) WorkoutLogs() repository.WorkoutLogRepository { return &workoutLogRepository{s} }

func (r *workoutLogRepository) Create(_ context.Context, log *domain.WorkoutLog) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	log.ID = primitive.NewObjectID()
	log.CreatedAt = time.Now().UTC()
	r.s.workoutLogs[log.ID] = *log
	return log.ID, nil
}

func (r *workoutLogRepository) List(_ context.Context, f repository.WorkoutLogFilter) ([]domain.WorkoutLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.WorkoutLog{}
	for _, l := range r.s.workoutLogs {
		if !matchID(f.AssignmentID, l.AssignmentID) || !matchID(f.ClientID, l.ClientID) {
			continue
		}
		if f.CompletedOnly && !l.Completed {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WorkoutDate.After(out[j].WorkoutDate) })
	return page(out, 0, f.Limit), nil
}
