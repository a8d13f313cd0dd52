package service

import (
	"context"
	"testing"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddClientByEmail(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewTrainerService(store.Users())

	trainer := createUser(t, store, "coach@example.com", domain.RoleTrainer)
	other := createUser(t, store, "rival@example.com", domain.RoleTrainer)
	client := createUser(t, store, "client@example.com", domain.RoleClient)

	got, err := svc.AddClientByEmail(ctx, trainer, "client@example.com")
	require.NoError(t, err)
	require.NotNil(t, got.TrainerID)
	assert.Equal(t, trainer, *got.TrainerID)
	assert.Empty(t, got.PasswordHash)

	// Adding again is a no-op
	_, err = svc.AddClientByEmail(ctx, trainer, "client@example.com")
	require.NoError(t, err)

	_, err = svc.AddClientByEmail(ctx, other, "client@example.com")
	require.ErrorIs(t, err, ErrClientAlreadyAssigned)
	_, err = svc.AddClientByEmail(ctx, trainer, "rival@example.com")
	require.ErrorIs(t, err, ErrClientNotRole)
	_, err = svc.AddClientByEmail(ctx, trainer, "ghost@example.com")
	require.ErrorIs(t, err, ErrClientNotFound)

	clients, err := svc.GetManagedClients(ctx, trainer)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, client, clients[0].ID)
}
