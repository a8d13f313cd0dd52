// Package events publishes assignment lifecycle events.
package events

import (
	"context"
	"time"

	"alcyxob/fitness-coach/internal/domain"
)

// Event types
const (
	TypeAssignmentCreated       = "assignment.created"
	TypeAssignmentStatusChanged = "assignment.status_changed"
	TypeAssignmentCompleted     = "assignment.completed"
)

// Event is the JSON payload written for every assignment lifecycle change.
type Event struct {
	Type           string                  `json:"type"`
	AssignmentID   string                  `json:"assignmentId"`
	ProgramID      string                  `json:"programId"`
	ClientID       string                  `json:"clientId"`
	TrainerID      string                  `json:"trainerId"`
	Status         domain.AssignmentStatus `json:"status"`
	PreviousStatus domain.AssignmentStatus `json:"previousStatus,omitempty"`
	TotalInstances int                     `json:"totalInstances"`
	Completion     float64                 `json:"completionPercentage"`
	OccurredAt     time.Time               `json:"occurredAt"`
}

// NewAssignmentEvent builds an event of the given type from an assignment.
func NewAssignmentEvent(eventType string, a *domain.Assignment, previous domain.AssignmentStatus, at time.Time) Event {
	return Event{
		Type:           eventType,
		AssignmentID:   a.ID.Hex(),
		ProgramID:      a.ProgramID.Hex(),
		ClientID:       a.ClientID.Hex(),
		TrainerID:      a.TrainerID.Hex(),
		Status:         a.Status,
		PreviousStatus: previous,
		TotalInstances: a.TotalInstances,
		Completion:     a.CompletionPercentage,
		OccurredAt:     at.UTC(),
	}
}

// Publisher delivers events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NoopPublisher drops every event. Used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
func (NoopPublisher) Close() error                         { return nil }
