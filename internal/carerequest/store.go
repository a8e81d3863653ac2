package carerequest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store defines the interface for care request persistence. Transition
// writes must be serialized per request so two concurrent accepts can
// never both land (single-writer-per-request).
type Store interface {
	Create(ctx context.Context, req *CreateRequest) (*CareRequest, error)
	GetByID(ctx context.Context, id string) (*CareRequest, error)
	ListByPatient(ctx context.Context, patientID string) ([]*CareRequest, error)
	ListByProvider(ctx context.Context, providerID string) ([]*CareRequest, error)
	// Transition loads the request, applies the event under the
	// request's own guard, and persists the result atomically.
	Transition(ctx context.Context, id string, ev Event, actorID string) (*CareRequest, error)
}

// InMemoryStore keeps care requests in process memory with one guard
// per request id. Cross-request operations never block each other.
type InMemoryStore struct {
	mu       sync.RWMutex
	requests map[string]*CareRequest
	guards   map[string]*sync.Mutex

	// now is swappable in tests.
	now func() time.Time
}

// NewInMemoryStore creates a new in-memory care request store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		requests: make(map[string]*CareRequest),
		guards:   make(map[string]*sync.Mutex),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create opens a new pending request with no provider assigned.
func (s *InMemoryStore) Create(ctx context.Context, req *CreateRequest) (*CareRequest, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	cr := &CareRequest{
		ID:          uuid.New().String(),
		PatientID:   req.PatientID,
		Specialty:   req.Specialty,
		Symptoms:    req.Symptoms,
		Description: req.Description,
		Urgency:     req.Urgency,
		PostalCode:  req.PostalCode,
		Insurance:   req.Insurance,
		PreferredAt: req.PreferredAt,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	s.requests[cr.ID] = cr
	s.guards[cr.ID] = &sync.Mutex{}
	s.mu.Unlock()

	return cr.Clone(), nil
}

// GetByID retrieves a care request by ID
func (s *InMemoryStore) GetByID(ctx context.Context, id string) (*CareRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cr, ok := s.requests[id]
	if !ok {
		return nil, ErrRequestNotFound
	}
	return cr.Clone(), nil
}

// ListByPatient returns the patient's requests, newest first.
func (s *InMemoryStore) ListByPatient(ctx context.Context, patientID string) ([]*CareRequest, error) {
	return s.list(func(cr *CareRequest) bool { return cr.PatientID == patientID })
}

// ListByProvider returns requests assigned to the provider, newest first.
func (s *InMemoryStore) ListByProvider(ctx context.Context, providerID string) ([]*CareRequest, error) {
	return s.list(func(cr *CareRequest) bool {
		return cr.ProviderID != nil && *cr.ProviderID == providerID
	})
}

func (s *InMemoryStore) list(match func(*CareRequest) bool) ([]*CareRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*CareRequest
	for _, cr := range s.requests {
		if match(cr) {
			out = append(out, cr.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Transition applies ev under the request's own guard. The read, the
// pure Apply, and the write happen while holding that one mutex, so a
// losing concurrent accept observes the winner's state and gets
// ErrConflict from Apply.
func (s *InMemoryStore) Transition(ctx context.Context, id string, ev Event, actorID string) (*CareRequest, error) {
	s.mu.RLock()
	guard, ok := s.guards[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrRequestNotFound
	}

	guard.Lock()
	defer guard.Unlock()

	s.mu.RLock()
	cr, ok := s.requests[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrRequestNotFound
	}

	next, err := Apply(*cr, ev, actorID, s.now())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.requests[id] = &next
	s.mu.Unlock()

	return next.Clone(), nil
}
