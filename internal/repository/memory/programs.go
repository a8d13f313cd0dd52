package memory

import (
	"context"
	"sort"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type programRepository struct{ s *Store }

// Programs returns the program template collection.
func (s *Store) Programs() repository.ProgramRepository { return &programRepository{s} }

func (r *programRepository) Create(_ context.Context, program *domain.ProgramTemplate) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	program.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	program.CreatedAt, program.UpdatedAt = now, now
	cp := program.Clone()
	cp.ID = program.ID
	r.s.programs[program.ID] = *cp
	return program.ID, nil
}

func (r *programRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.ProgramTemplate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.programs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := p.Clone()
	cp.ID = p.ID
	return cp, nil
}

func (r *programRepository) GetByTrainerID(_ context.Context, trainerID primitive.ObjectID) ([]domain.ProgramTemplate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.ProgramTemplate{}
	for _, p := range r.s.programs {
		if p.TrainerID == trainerID {
			cp := p.Clone()
			cp.ID = p.ID
			out = append(out, *cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *programRepository) Update(_ context.Context, program *domain.ProgramTemplate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.programs[program.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cp := program.Clone()
	cp.ID = program.ID
	cp.TrainerID = existing.TrainerID
	cp.CreatedAt = existing.CreatedAt
	cp.UpdatedAt = time.Now().UTC()
	r.s.programs[program.ID] = *cp
	return nil
}

func (r *programRepository) Delete(_ context.Context, id, trainerID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.programs[id]
	if !ok || p.TrainerID != trainerID {
		return repository.ErrNotFound
	}
	delete(r.s.programs, id)
	return nil
}
