package service

import (
	"context"
	"errors"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor is the authenticated caller as identified by the JWT.
type Actor struct {
	ID   primitive.ObjectID
	Role domain.Role
}

func TrainerActor(id primitive.ObjectID) Actor { return Actor{ID: id, Role: domain.RoleTrainer} }
func ClientActor(id primitive.ObjectID) Actor  { return Actor{ID: id, Role: domain.RoleClient} }

func (a Actor) IsTrainer() bool { return a.Role == domain.RoleTrainer }
func (a Actor) IsClient() bool  { return a.Role == domain.RoleClient }

// owns reports whether the actor is the client or the trainer of a record.
func (a Actor) owns(clientID, trainerID primitive.ObjectID) bool {
	switch a.Role {
	case domain.RoleClient:
		return a.ID == clientID
	case domain.RoleTrainer:
		return a.ID == trainerID
	}
	return false
}

// managedClient loads clientID and checks that trainerID manages it.
func managedClient(ctx context.Context, users repository.UserRepository, trainerID, clientID primitive.ObjectID) (*domain.User, error) {
	client, err := users.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if !client.IsClient() {
		return nil, ErrClientNotFound
	}
	if client.TrainerID == nil || *client.TrainerID != trainerID {
		return nil, ErrClientNotManaged
	}
	return client, nil
}
