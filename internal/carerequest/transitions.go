package carerequest

import "time"

// transitionTable lists the legal (status, event) → status moves.
// Everything absent is an InvalidTransition. Replays that would land a
// request in the state it is already in are handled separately in Apply.
var transitionTable = map[Status]map[Event]Status{
	StatusPending: {
		EventMatch:  StatusMatched,
		EventAccept: StatusAccepted,
		EventCancel: StatusCancelled,
	},
	StatusMatched: {
		EventAccept: StatusAccepted,
		EventCancel: StatusCancelled,
	},
	StatusAccepted: {
		EventStart:  StatusInProgress,
		EventCancel: StatusCancelled,
	},
	StatusInProgress: {
		EventComplete: StatusCompleted,
	},
}

// Apply runs one lifecycle transition and returns the resulting request
// as a new value. The input is never mutated, so a failed transition
// leaves the caller's copy untouched.
//
// actorID is the id of whoever drives the event: the proposed provider
// for match, the accepting provider for accept, the assigned provider
// for start/complete, and the patient or assigned provider for cancel.
//
// Replaying the event that produced the current state is a no-op for
// the same actor: the request comes back unchanged, with no updatedAt
// bump and no error.
func Apply(req CareRequest, ev Event, actorID string, now time.Time) (CareRequest, error) {
	if replayed, ok := isReplay(&req, ev, actorID); ok {
		return replayed, nil
	}

	// A second accept after someone holds the request is a conflict,
	// not a mere table miss.
	if ev == EventAccept && req.Status.AtLeastAccepted() {
		if !req.heldBy(actorID) {
			return req, ErrConflict
		}
		// Same provider, but the request has moved past accepted.
		return req, &InvalidTransitionError{Status: req.Status, Event: ev}
	}

	next, ok := transitionTable[req.Status][ev]
	if !ok {
		return req, &InvalidTransitionError{Status: req.Status, Event: ev}
	}

	switch ev {
	case EventMatch:
		if actorID == "" {
			return req, &InvalidTransitionError{Status: req.Status, Event: ev}
		}
		req.ProviderID = &actorID
	case EventAccept:
		if actorID == "" {
			return req, &InvalidTransitionError{Status: req.Status, Event: ev}
		}
		// Overwrites any proposal from matching.
		req.ProviderID = &actorID
	case EventStart, EventComplete:
		if !req.heldBy(actorID) {
			return req, ErrConflict
		}
	case EventCancel:
		// Only the owning patient or the assigned provider may cancel.
		// ProviderID stays as-is for audit.
		if actorID != req.PatientID && !req.heldBy(actorID) {
			return req, ErrConflict
		}
	}

	req.Status = next
	req.UpdatedAt = now
	return req, nil
}

// AtLeastAccepted reports whether the status is accepted or any state
// reachable after it, cancellation excluded.
func (s Status) AtLeastAccepted() bool {
	return s == StatusAccepted || s == StatusInProgress || s == StatusCompleted
}

func (c *CareRequest) heldBy(actorID string) bool {
	return c.ProviderID != nil && actorID != "" && *c.ProviderID == actorID
}

// isReplay detects the identical event being applied again after it
// already succeeded: same target state, same actor.
func isReplay(req *CareRequest, ev Event, actorID string) (CareRequest, bool) {
	switch ev {
	case EventMatch:
		if req.Status == StatusMatched && req.heldBy(actorID) {
			return *req, true
		}
	case EventAccept:
		if req.Status == StatusAccepted && req.heldBy(actorID) {
			return *req, true
		}
	case EventStart:
		if req.Status == StatusInProgress && req.heldBy(actorID) {
			return *req, true
		}
	case EventComplete:
		if req.Status == StatusCompleted && req.heldBy(actorID) {
			return *req, true
		}
	case EventCancel:
		if req.Status == StatusCancelled && (actorID == req.PatientID || req.heldBy(actorID)) {
			return *req, true
		}
	}
	return CareRequest{}, false
}
