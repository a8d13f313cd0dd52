package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrInvalidExertion = NewKindError(ErrValidation, "perceived exertion must be between 1 and 10")

// WorkoutLog is a free-form record of one workout session a client performed.
// It is independent of exercise instances and feeds streaks and statistics.
type WorkoutLog struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AssignmentID      primitive.ObjectID `bson:"assignmentId" json:"assignmentId"`
	ClientID          primitive.ObjectID `bson:"clientId" json:"clientId"`
	TrainerID         primitive.ObjectID `bson:"trainerId" json:"trainerId"`     // Denormalized for trainer views
	WorkoutDate       time.Time          `bson:"workoutDate" json:"workoutDate"` // Full timestamp
	DayNumber         int                `bson:"dayNumber" json:"dayNumber"`
	WorkoutName       string             `bson:"workoutName,omitempty" json:"workoutName,omitempty"`
	DurationMinutes   *int               `bson:"durationMinutes,omitempty" json:"durationMinutes,omitempty"`
	PerceivedExertion *int               `bson:"perceivedExertion,omitempty" json:"perceivedExertion,omitempty"` // 1-10
	Notes             string             `bson:"notes,omitempty" json:"notes,omitempty"`
	TrainerFeedback   string             `bson:"trainerFeedback,omitempty" json:"trainerFeedback,omitempty"`
	Completed         bool               `bson:"completed" json:"completed"`
	Skipped           bool               `bson:"skipped" json:"skipped"`
	SkipReason        string             `bson:"skipReason,omitempty" json:"skipReason,omitempty"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
}
