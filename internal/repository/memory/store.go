// Package memory is an in-process implementation of the repository
// interfaces. It backs local runs (database.driver=memory) and the service
// and API tests. All collections share one mutex, which makes
// multi-collection writes such as CreateWithInstances atomic.
package memory

import (
	"sync"

	"alcyxob/fitness-coach/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store holds every collection.
type Store struct {
	mu          sync.RWMutex
	users       map[primitive.ObjectID]domain.User
	exercises   map[primitive.ObjectID]domain.Exercise
	programs    map[primitive.ObjectID]domain.ProgramTemplate
	assignments map[primitive.ObjectID]domain.Assignment
	instances   map[primitive.ObjectID]domain.ExerciseInstance
	workoutLogs map[primitive.ObjectID]domain.WorkoutLog
	uploads     map[primitive.ObjectID]domain.Upload

	appointments map[primitive.ObjectID]domain.Appointment
}

func NewStore() *Store {
	return &Store{
		users:       make(map[primitive.ObjectID]domain.User),
		exercises:   make(map[primitive.ObjectID]domain.Exercise),
		programs:    make(map[primitive.ObjectID]domain.ProgramTemplate),
		assignments: make(map[primitive.ObjectID]domain.Assignment),
		instances:   make(map[primitive.ObjectID]domain.ExerciseInstance),
		workoutLogs: make(map[primitive.ObjectID]domain.WorkoutLog),
		uploads:     make(map[primitive.ObjectID]domain.Upload),

		appointments: make(map[primitive.ObjectID]domain.Appointment),
	}
}

func matchID(want *primitive.ObjectID, got primitive.ObjectID) bool {
	return want == nil || *want == got
}

func page[T any](items []T, skip, limit int64) []T {
	if skip > 0 {
		if skip >= int64(len(items)) {
			return []T{}
		}
		items = items[skip:]
	}
	if limit > 0 && limit < int64(len(items)) {
		items = items[:limit]
	}
	return items
}
