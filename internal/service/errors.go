package service

import (
	"fmt"
	"strings"

	"alcyxob/fitness-coach/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/multierr"
)

// Error kinds. Every service error wraps exactly one of them, so handlers can
// map by kind while tests still match the specific sentinel.
var (
	ErrValidation   = domain.ErrValidation
	ErrNotFound     = domain.ErrNotFound
	ErrConflict     = domain.ErrConflict
	ErrAccessDenied = domain.ErrForbidden
)

// --- Error Definitions ---
var (
	ErrProgramNotFound    = domain.NewKindError(ErrNotFound, "program not found")
	ErrAssignmentNotFound = domain.NewKindError(ErrNotFound, "assignment not found")
	ErrInstanceNotFound   = domain.NewKindError(ErrNotFound, "exercise instance not found")
	ErrClientNotFound     = domain.NewKindError(ErrNotFound, "client user not found")
	ErrTrainerNotFound    = domain.NewKindError(ErrNotFound, "trainer user not found")

	ErrProgramAccessDenied    = domain.NewKindError(ErrAccessDenied, "access denied to this program")
	ErrAssignmentAccessDenied = domain.NewKindError(ErrAccessDenied, "access denied to this assignment")
	ErrInstanceAccessDenied   = domain.NewKindError(ErrAccessDenied, "access denied to this exercise instance")
	ErrClientNotManaged       = domain.NewKindError(ErrAccessDenied, "client is not managed by this trainer")

	ErrActiveAssignmentExists  = domain.NewKindError(ErrConflict, "client already has an active assignment")
	ErrInvalidStatusTransition = domain.NewKindError(ErrValidation, "assignment status transition not allowed")
	ErrStartDateRequired       = domain.NewKindError(ErrValidation, "start date is required")
	ErrInvalidDateRange        = domain.NewKindError(ErrValidation, "end date cannot be before start date")
	ErrNoClients               = domain.NewKindError(ErrValidation, "at least one client is required")
	ErrInvalidID               = domain.NewKindError(ErrValidation, "a required identifier is missing")
)

// ClientFailure explains why one client of a bulk assignment was skipped.
type ClientFailure struct {
	ClientID primitive.ObjectID `json:"clientId"`
	Reason   string             `json:"reason"`
}

// PartialBatchError is returned by BulkAssign when at least one client failed.
// Created holds the assignments that were persisted anyway.
type PartialBatchError struct {
	Created  []domain.Assignment
	Failures []ClientFailure
	err      error // per-client causes, combined with multierr
}

func (e *PartialBatchError) add(clientID primitive.ObjectID, cause error) {
	e.Failures = append(e.Failures, ClientFailure{ClientID: clientID, Reason: cause.Error()})
	e.err = multierr.Append(e.err, fmt.Errorf("client %s: %w", clientID.Hex(), cause))
}

func (e *PartialBatchError) Error() string {
	reasons := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		reasons = append(reasons, f.ClientID.Hex()+": "+f.Reason)
	}
	return fmt.Sprintf("bulk assignment: %d created, %d failed (%s)",
		len(e.Created), len(e.Failures), strings.Join(reasons, "; "))
}

// Unwrap exposes the individual causes to errors.Is and errors.As.
func (e *PartialBatchError) Unwrap() []error {
	return multierr.Errors(e.err)
}

// NoneSucceeded reports whether every client in the batch failed.
func (e *PartialBatchError) NoneSucceeded() bool {
	return len(e.Created) == 0
}
