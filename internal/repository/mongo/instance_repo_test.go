package mongo

import (
	"testing"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestInstanceFilterToBSON(t *testing.T) {
	assert.Empty(t, instanceFilterToBSON(repository.InstanceFilter{}))

	clientID := primitive.NewObjectID()
	from := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)

	got := instanceFilterToBSON(repository.InstanceFilter{
		ClientID: &clientID,
		Status:   domain.InstanceCompleted,
		DueFrom:  &from,
		DueTo:    &to,
	})
	assert.Equal(t, bson.M{
		"clientId": clientID,
		"status":   domain.InstanceCompleted,
		"dueDate":  bson.M{"$gte": from, "$lt": to},
	}, got)
}

func TestAppointmentFilters(t *testing.T) {
	trainerID := primitive.NewObjectID()
	from := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	assert.Equal(t, bson.M{
		"trainerId": trainerID,
		"status":    bson.M{"$ne": domain.AppointmentCancelled},
		"startTime": bson.M{"$gte": from, "$lt": to},
	}, appointmentFilterToBSON(repository.AppointmentFilter{
		TrainerID:     &trainerID,
		SkipCancelled: true,
		StartFrom:     &from,
		StartTo:       &to,
	}))

	exclude := primitive.NewObjectID()
	start, end := from.Add(9*time.Hour), from.Add(10*time.Hour)
	assert.Equal(t, bson.M{
		"trainerId": trainerID,
		"status":    bson.M{"$ne": domain.AppointmentCancelled},
		"startTime": bson.M{"$lt": end},
		"endTime":   bson.M{"$gt": start},
		"_id":       bson.M{"$ne": exclude},
	}, overlapFilter(trainerID, exclude, start, end))
}
