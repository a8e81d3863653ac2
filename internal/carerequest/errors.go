package carerequest

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingPatient is returned when a create request has no patient id
	ErrMissingPatient = errors.New("patient id is required")

	// ErrMissingSpecialty is returned when a create request has no specialty
	ErrMissingSpecialty = errors.New("specialty is required")

	// ErrInvalidUrgency is returned for an urgency outside low/medium/high/urgent
	ErrInvalidUrgency = errors.New("urgency must be one of low, medium, high, urgent")

	// ErrRequestNotFound is returned when a care request is not found
	ErrRequestNotFound = errors.New("care request not found")

	// ErrConflict is returned when an actor who does not hold the request
	// tries to claim or drive it, including a second accept after one
	// provider already holds it.
	ErrConflict = errors.New("request already held by another provider")

	// ErrNotEligible is returned when a provider outside the eligible set
	// attempts to accept a request.
	ErrNotEligible = errors.New("provider is not in the eligible set for this request")

	// ErrNoEligibleProviders is returned when a match is requested but the
	// ranked set is empty.
	ErrNoEligibleProviders = errors.New("no eligible providers for this request")
)

// InvalidTransitionError reports an event that is not legal from the
// request's current status. The request is left unchanged.
type InvalidTransitionError struct {
	Status Status
	Event  Event
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: event %q not allowed in status %q", e.Event, e.Status)
}

// IsInvalidTransition reports whether err is an InvalidTransitionError.
func IsInvalidTransition(err error) bool {
	var ite *InvalidTransitionError
	return errors.As(err, &ite)
}
