package memory

import (
	"context"
	"sort"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type assignmentRepository struct{ s *Store }

// Assignments returns the assignment collection.
func (s *Store) Assignments() repository.AssignmentRepository { return &assignmentRepository{s} }

func cloneAssignment(a domain.Assignment) *domain.Assignment {
	if a.EndDate != nil {
		v := *a.EndDate
		a.EndDate = &v
	}
	if a.LastInstanceDate != nil {
		v := *a.LastInstanceDate
		a.LastInstanceDate = &v
	}
	if a.LastWorkoutDate != nil {
		v := *a.LastWorkoutDate
		a.LastWorkoutDate = &v
	}
	return &a
}

// activeFor returns the active assignment of clientID other than exclude. Caller holds the lock.
func (s *Store) activeFor(clientID, exclude primitive.ObjectID) (domain.Assignment, bool) {
	for id, a := range s.assignments {
		if id != exclude && a.ClientID == clientID && a.Status == domain.AssignmentActive {
			return a, true
		}
	}
	return domain.Assignment{}, false
}

func (r *assignmentRepository) CreateWithInstances(_ context.Context, assignment *domain.Assignment, instances []domain.ExerciseInstance) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if assignment.Status == domain.AssignmentActive {
		if _, exists := r.s.activeFor(assignment.ClientID, primitive.NilObjectID); exists {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}

	assignment.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	assignment.AssignedAt, assignment.UpdatedAt = now, now
	assignment.TotalInstances = len(instances)

	for i := range instances {
		instances[i].ID = primitive.NewObjectID()
		instances[i].AssignmentID = assignment.ID
		instances[i].CreatedAt, instances[i].UpdatedAt = now, now
		r.s.instances[instances[i].ID] = *cloneInstance(instances[i])
	}
	r.s.assignments[assignment.ID] = *cloneAssignment(*assignment)
	return assignment.ID, nil
}

func (r *assignmentRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Assignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.assignments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneAssignment(a), nil
}

func (r *assignmentRepository) GetActiveByClient(_ context.Context, clientID primitive.ObjectID) (*domain.Assignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.activeFor(clientID, primitive.NilObjectID)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneAssignment(a), nil
}

func (r *assignmentRepository) List(_ context.Context, f repository.AssignmentFilter) ([]domain.Assignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Assignment{}
	for _, a := range r.s.assignments {
		if !matchID(f.TrainerID, a.TrainerID) || !matchID(f.ClientID, a.ClientID) || !matchID(f.ProgramID, a.ProgramID) {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		out = append(out, *cloneAssignment(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssignedAt.After(out[j].AssignedAt) })
	return page(out, f.Skip, f.Limit), nil
}

func (r *assignmentRepository) UpdateStatus(_ context.Context, id primitive.ObjectID, from, to domain.AssignmentStatus, endDate *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.assignments[id]
	if !ok {
		return repository.ErrNotFound
	}
	if a.Status != from {
		return repository.ErrStaleWrite
	}
	if to == domain.AssignmentActive {
		if _, exists := r.s.activeFor(a.ClientID, a.ID); exists {
			return repository.ErrConflict
		}
	}
	a.Status = to
	if endDate != nil && a.EndDate == nil {
		v := *endDate
		a.EndDate = &v
	}
	a.UpdatedAt = time.Now().UTC()
	r.s.assignments[id] = a
	return nil
}

func (r *assignmentRepository) UpdateNotes(_ context.Context, id primitive.ObjectID, customNotes, trainerNotes *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.assignments[id]
	if !ok {
		return repository.ErrNotFound
	}
	if customNotes != nil {
		a.CustomNotes = *customNotes
	}
	if trainerNotes != nil {
		a.TrainerNotes = *trainerNotes
	}
	a.UpdatedAt = time.Now().UTC()
	r.s.assignments[id] = a
	return nil
}

func (r *assignmentRepository) UpdateProgress(_ context.Context, id primitive.ObjectID, p repository.AssignmentProgress) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.assignments[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.TotalInstances = p.TotalInstances
	a.CompletedInstances = p.CompletedInstances
	a.CompletionPercentage = p.CompletionPercentage
	a.LastInstanceDate = nil
	if p.LastInstanceDate != nil {
		v := *p.LastInstanceDate
		a.LastInstanceDate = &v
	}
	a.UpdatedAt = time.Now().UTC()
	r.s.assignments[id] = a
	return nil
}

func (r *assignmentRepository) RecordWorkout(_ context.Context, id primitive.ObjectID, workoutDate time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.assignments[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.CompletedWorkouts++
	d := workoutDate.UTC()
	a.LastWorkoutDate = &d
	a.UpdatedAt = time.Now().UTC()
	r.s.assignments[id] = a
	return nil
}

func (r *assignmentRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.assignments[id]; !ok {
		return repository.ErrNotFound
	}
	for instID, inst := range r.s.instances {
		if inst.AssignmentID == id {
			delete(r.s.instances, instID)
		}
	}
	delete(r.s.assignments, id)
	return nil
}
