package memory

import (
	"context"
	"sort"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type appointmentRepository struct{ s *Store }

// Appointments returns the trainer calendar collection.
func (s *Store) Appointments() repository.AppointmentRepository { return &appointmentRepository{s} }

// clashes reports whether the trainer has a blocking appointment other than
// exclude within [start, end). Caller holds the lock.
func (s *Store) clashes(trainerID, exclude primitive.ObjectID, start, end time.Time) bool {
	for id, a := range s.appointments {
		if id != exclude && a.TrainerID == trainerID && a.Status.BlocksTime() && a.Overlaps(start, end) {
			return true
		}
	}
	return false
}

func (r *appointmentRepository) Create(_ context.Context, appointment *domain.Appointment) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if appointment.Status.BlocksTime() && r.s.clashes(appointment.TrainerID, primitive.NilObjectID, appointment.StartTime, appointment.EndTime) {
		return primitive.NilObjectID, repository.ErrConflict
	}
	appointment.ID = primitive.NewObjectID()
	appointment.CreatedAt = time.Now().UTC()
	appointment.UpdatedAt = appointment.CreatedAt
	r.s.appointments[appointment.ID] = *appointment
	return appointment.ID, nil
}

func (r *appointmentRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *appointmentRepository) List(_ context.Context, f repository.AppointmentFilter) ([]domain.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Appointment{}
	for _, a := range r.s.appointments {
		if !matchID(f.TrainerID, a.TrainerID) || !matchID(f.ClientID, a.ClientID) {
			continue
		}
		if (f.Status != "" && a.Status != f.Status) || (f.SkipCancelled && a.Status == domain.AppointmentCancelled) {
			continue
		}
		if (f.StartFrom != nil && a.StartTime.Before(*f.StartFrom)) || (f.StartTo != nil && !a.StartTime.Before(*f.StartTo)) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return page(out, f.Skip, f.Limit), nil
}

func (r *appointmentRepository) Reschedule(_ context.Context, appointment *domain.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.appointments[appointment.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if !stored.Status.IsOpen() {
		return repository.ErrStaleWrite
	}
	if r.s.clashes(stored.TrainerID, stored.ID, appointment.StartTime, appointment.EndTime) {
		return repository.ErrConflict
	}
	stored.Title = appointment.Title
	stored.Description = appointment.Description
	stored.Type = appointment.Type
	stored.StartTime = appointment.StartTime
	stored.EndTime = appointment.EndTime
	stored.Location = appointment.Location
	stored.Notes = appointment.Notes
	stored.UpdatedAt = time.Now().UTC()
	r.s.appointments[stored.ID] = stored
	return nil
}

func (r *appointmentRepository) UpdateStatus(_ context.Context, id primitive.ObjectID, from, to domain.AppointmentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.appointments[id]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Status != from {
		return repository.ErrStaleWrite
	}
	stored.Status = to
	stored.UpdatedAt = time.Now().UTC()
	r.s.appointments[id] = stored
	return nil
}

func (r *appointmentRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.appointments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.appointments, id)
	return nil
}
