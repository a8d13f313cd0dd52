package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userRepository struct{ s *Store }

// Users returns the user collection.
func (s *Store) Users() repository.UserRepository { return &userRepository{s} }

func cloneUser(u domain.User) *domain.User {
	u.ClientIDs = append([]primitive.ObjectID(nil), u.ClientIDs...)
	if u.TrainerID != nil {
		id := *u.TrainerID
		u.TrainerID = &id
	}
	return &u
}

func (r *userRepository) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" || user.PasswordHash == "" || user.Role == "" {
		return primitive.NilObjectID, errors.New("user email, password hash, and role are required")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	r.s.users[user.ID] = *cloneUser(*user)
	return user.ID, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *userRepository) AddClientIDToTrainer(_ context.Context, trainerID, clientID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	trainer, ok := r.s.users[trainerID]
	if !ok || !trainer.IsTrainer() {
		return repository.ErrNotFound
	}
	if !trainer.ManagesClient(clientID) {
		trainer.ClientIDs = append(append([]primitive.ObjectID(nil), trainer.ClientIDs...), clientID)
	}
	trainer.UpdatedAt = time.Now().UTC()
	r.s.users[trainerID] = trainer
	return nil
}

func (r *userRepository) GetClientsByTrainerID(_ context.Context, trainerID primitive.ObjectID) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	trainer, ok := r.s.users[trainerID]
	if !ok || !trainer.IsTrainer() {
		return nil, repository.ErrNotFound
	}
	clients := []domain.User{}
	for _, id := range trainer.ClientIDs {
		if c, ok := r.s.users[id]; ok {
			clients = append(clients, *cloneUser(c))
		}
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].Name < clients[j].Name })
	return clients, nil
}

func (r *userRepository) SetTrainerForClient(_ context.Context, clientID, trainerID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	client, ok := r.s.users[clientID]
	if !ok || !client.IsClient() {
		return repository.ErrNotFound
	}
	client.TrainerID = &trainerID
	client.UpdatedAt = time.Now().UTC()
	r.s.users[clientID] = client
	return nil
}
