package carerequest

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a care request.
type Status string

const (
	StatusPending    Status = "pending"
	StatusMatched    Status = "matched"
	StatusAccepted   Status = "accepted"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether no further transition can leave this status.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusMatched, StatusAccepted, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Urgency is the ordered priority level of a request.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
	UrgencyUrgent Urgency = "urgent"
)

var urgencyRank = map[Urgency]int{
	UrgencyLow:    0,
	UrgencyMedium: 1,
	UrgencyHigh:   2,
	UrgencyUrgent: 3,
}

// Valid reports whether u is one of the enumerated urgency levels.
func (u Urgency) Valid() bool {
	_, ok := urgencyRank[u]
	return ok
}

// AtLeast reports whether u is at or above the given level.
func (u Urgency) AtLeast(other Urgency) bool {
	return urgencyRank[u] >= urgencyRank[other]
}

// Event is a named lifecycle action applied to a care request.
type Event string

const (
	// EventMatch is the system proposing a ranked provider.
	EventMatch Event = "match"
	// EventAccept is a provider claiming the request.
	EventAccept Event = "accept"
	// EventStart begins the care session.
	EventStart Event = "start"
	// EventComplete finishes the care session.
	EventComplete Event = "complete"
	// EventCancel is the patient or assigned provider cancelling.
	EventCancel Event = "cancel"
)

// Valid reports whether e is a known event.
func (e Event) Valid() bool {
	switch e {
	case EventMatch, EventAccept, EventStart, EventComplete, EventCancel:
		return true
	}
	return false
}

// CareRequest is a patient's request for care. ProviderID is nil
// while the request is pending and set for every later status.
type CareRequest struct {
	ID          string     `json:"id"`
	PatientID   string     `json:"patient_id"`
	ProviderID  *string    `json:"provider_id,omitempty"`
	Specialty   string     `json:"specialty"`
	Symptoms    string     `json:"symptoms,omitempty"`
	Description string     `json:"description,omitempty"`
	Urgency     Urgency    `json:"urgency"`
	PostalCode  string     `json:"postal_code"`
	Insurance   string     `json:"insurance,omitempty"`
	PreferredAt *time.Time `json:"preferred_at,omitempty"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Clone returns a deep copy so callers can hand out snapshots.
func (c *CareRequest) Clone() *CareRequest {
	out := *c
	if c.ProviderID != nil {
		pid := *c.ProviderID
		out.ProviderID = &pid
	}
	if c.PreferredAt != nil {
		at := *c.PreferredAt
		out.PreferredAt = &at
	}
	return &out
}

// CreateRequest represents the request body for opening a care request
type CreateRequest struct {
	PatientID   string     `json:"patient_id"`
	Specialty   string     `json:"specialty"`
	Symptoms    string     `json:"symptoms,omitempty"`
	Description string     `json:"description,omitempty"`
	Urgency     Urgency    `json:"urgency"`
	PostalCode  string     `json:"postal_code"`
	Insurance   string     `json:"insurance,omitempty"`
	PreferredAt *time.Time `json:"preferred_at,omitempty"`
}

// Validate validates the create request
func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.PatientID) == "" {
		return ErrMissingPatient
	}
	if strings.TrimSpace(r.Specialty) == "" {
		return ErrMissingSpecialty
	}
	if r.Urgency == "" {
		r.Urgency = UrgencyMedium
	}
	if !r.Urgency.Valid() {
		return ErrInvalidUrgency
	}
	return nil
}
