package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AppointmentStatus tracks a booked session between a trainer and a client.
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
	AppointmentNoShow    AppointmentStatus = "no_show"
)

var (
	ErrInvalidAppointmentStatus = NewKindError(ErrValidation, "invalid appointment status")
	ErrInvalidAppointmentTime   = NewKindError(ErrValidation, "appointment must end after it starts")
	ErrAppointmentTitleRequired = NewKindError(ErrValidation, "appointment title and type are required")
)

func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentScheduled, AppointmentPending, AppointmentConfirmed,
		AppointmentCompleted, AppointmentCancelled, AppointmentNoShow:
		return true
	}
	return false
}

// IsOpen reports whether the appointment still lies ahead and may be edited.
func (s AppointmentStatus) IsOpen() bool {
	return s == AppointmentScheduled || s == AppointmentPending || s == AppointmentConfirmed
}

// BlocksTime reports whether the appointment occupies the trainer's calendar.
// Only cancelled ones free their slot.
func (s AppointmentStatus) BlocksTime() bool {
	return s.IsValid() && s != AppointmentCancelled
}

// CanTransitionTo allows any move between open statuses and from an open
// status to a closed one. Closed appointments are final.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	return next.IsValid() && s.IsOpen() && s != next
}

// Appointment is a session on the trainer's calendar, booked for one client.
type Appointment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID   primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	ClientID    primitive.ObjectID `bson:"clientId" json:"clientId"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Type        string             `bson:"type" json:"type"` // e.g. "Personal Training", "Program Review"
	Status      AppointmentStatus  `bson:"status" json:"status"`
	StartTime   time.Time          `bson:"startTime" json:"startTime"`
	EndTime     time.Time          `bson:"endTime" json:"endTime"` // Exclusive
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (a *Appointment) Validate() error {
	if strings.TrimSpace(a.Title) == "" || strings.TrimSpace(a.Type) == "" {
		return ErrAppointmentTitleRequired
	}
	if !a.EndTime.After(a.StartTime) {
		return ErrInvalidAppointmentTime
	}
	if !a.Status.IsValid() {
		return ErrInvalidAppointmentStatus
	}
	return nil
}

func (a *Appointment) DurationMinutes() int {
	return int(a.EndTime.Sub(a.StartTime) / time.Minute)
}

// Overlaps reports whether a shares time with [start, end). Back-to-back
// sessions do not overlap.
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return a.StartTime.Before(end) && start.Before(a.EndTime)
}
