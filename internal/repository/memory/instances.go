package memory

import (
	"context"
	"sort"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type instanceRepository struct{ s *Store }

// Instances returns the exercise instance collection.
func (s *Store) Instances() repository.InstanceRepository { return &instanceRepository{s} }

func cloneInstance(i domain.ExerciseInstance) *domain.ExerciseInstance {
	if i.ExerciseID != nil {
		v := *i.ExerciseID
		i.ExerciseID = &v
	}
	if i.CompletedAt != nil {
		v := *i.CompletedAt
		i.CompletedAt = &v
	}
	if i.UploadID != nil {
		v := *i.UploadID
		i.UploadID = &v
	}
	return &i
}

func (r *instanceRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.ExerciseInstance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	inst, ok := r.s.instances[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneInstance(inst), nil
}

func (r *instanceRepository) List(_ context.Context, f repository.InstanceFilter) ([]domain.ExerciseInstance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.ExerciseInstance{}
	for _, inst := range r.s.instances {
		if !matchID(f.AssignmentID, inst.AssignmentID) || !matchID(f.ClientID, inst.ClientID) || !matchID(f.TrainerID, inst.TrainerID) {
			continue
		}
		if f.Status != "" && inst.Status != f.Status {
			continue
		}
		if f.DueFrom != nil && inst.DueDate.Before(*f.DueFrom) {
			continue
		}
		if f.DueTo != nil && !inst.DueDate.Before(*f.DueTo) {
			continue
		}
		out = append(out, *cloneInstance(inst))
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.DueDate.Equal(b.DueDate) {
			return a.DueDate.Before(b.DueDate)
		}
		if a.DayNumber != b.DayNumber {
			return a.DayNumber < b.DayNumber
		}
		return a.Order < b.Order
	})
	return out, nil
}

func (r *instanceRepository) UpdateExecution(_ context.Context, instance *domain.ExerciseInstance, from domain.InstanceStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.instances[instance.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Status != from {
		return repository.ErrStaleWrite
	}
	stored.Status = instance.Status
	stored.CompletedAt = nil
	if instance.CompletedAt != nil {
		v := *instance.CompletedAt
		stored.CompletedAt = &v
	}
	stored.ActualSetsCompleted = instance.ActualSetsCompleted
	stored.CompletionPercentage = instance.CompletionPercentage
	stored.ClientFeedback = instance.ClientFeedback
	stored.UpdatedAt = time.Now().UTC()
	r.s.instances[instance.ID] = stored
	return nil
}

func (r *instanceRepository) SetTrainerFeedback(_ context.Context, id primitive.ObjectID, feedback string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.instances[id]
	if !ok {
		return repository.ErrNotFound
	}
	stored.TrainerFeedback = feedback
	stored.UpdatedAt = time.Now().UTC()
	r.s.instances[id] = stored
	return nil
}

func (r *instanceRepository) AttachUpload(_ context.Context, id, uploadID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.instances[id]
	if !ok {
		return repository.ErrNotFound
	}
	stored.UploadID = &uploadID
	stored.UpdatedAt = time.Now().UTC()
	r.s.instances[id] = stored
	return nil
}

func (r *instanceRepository) CountByAssignment(_ context.Context, assignmentID primitive.ObjectID) (repository.InstanceCounts, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var c repository.InstanceCounts
	for _, inst := range r.s.instances {
		if inst.AssignmentID != assignmentID {
			continue
		}
		c.Total++
		if inst.Status != domain.InstanceCompleted {
			continue
		}
		c.Completed++
		if c.LastCompletedDue == nil || inst.DueDate.After(*c.LastCompletedDue) {
			d := inst.DueDate
			c.LastCompletedDue = &d
		}
	}
	return c, nil
}
