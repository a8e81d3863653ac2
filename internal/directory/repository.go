package directory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ProviderRepository defines the interface for provider storage
type ProviderRepository interface {
	Create(ctx context.Context, req *CreateProviderRequest) (*Provider, error)
	GetByID(ctx context.Context, id string) (*Provider, error)
	// List returns a snapshot of every provider; the matching engine
	// runs over this snapshot, never over live store state.
	List(ctx context.Context) ([]*Provider, error)
	SetAvailability(ctx context.Context, id string, available bool) (*Provider, error)
}

// PatientRepository defines the interface for patient storage
type PatientRepository interface {
	Create(ctx context.Context, req *CreatePatientRequest) (*Patient, error)
	GetByID(ctx context.Context, id string) (*Patient, error)
	UpdateContact(ctx context.Context, id string, req *UpdateContactRequest) (*Patient, error)
}

// InMemoryProviderRepository is an in-memory implementation of ProviderRepository
type InMemoryProviderRepository struct {
	mu        sync.RWMutex
	providers map[string]*Provider
}

// NewInMemoryProviderRepository creates a new in-memory provider repository
func NewInMemoryProviderRepository() *InMemoryProviderRepository {
	return &InMemoryProviderRepository{
		providers: make(map[string]*Provider),
	}
}

// Create creates a new provider in memory
func (r *InMemoryProviderRepository) Create(ctx context.Context, req *CreateProviderRequest) (*Provider, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &Provider{
		ID:                uuid.New().String(),
		Name:              req.Name,
		LicenseNumber:     req.LicenseNumber,
		Specialties:       append([]string(nil), req.Specialties...),
		AcceptedInsurance: append([]string(nil), req.AcceptedInsurance...),
		LicensedStates:    append([]string(nil), req.LicensedStates...),
		PostalCode:        req.PostalCode,
		Rating:            req.Rating,
		YearsExperience:   req.YearsExperience,
		Available:         req.Available,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	r.mu.Lock()
	r.providers[p.ID] = p
	r.mu.Unlock()

	return cloneProvider(p), nil
}

// GetByID retrieves a provider by ID
func (r *InMemoryProviderRepository) GetByID(ctx context.Context, id string) (*Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[id]
	if !ok {
		return nil, ErrProviderNotFound
	}
	return cloneProvider(p), nil
}

// List returns a stable snapshot of all providers ordered by creation time.
func (r *InMemoryProviderRepository) List(ctx context.Context) ([]*Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Provider, 0, len(r.providers))
	for _, p := range r.providers {
		out = append(out, cloneProvider(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// SetAvailability toggles the provider's availability flag.
func (r *InMemoryProviderRepository) SetAvailability(ctx context.Context, id string, available bool) (*Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.providers[id]
	if !ok {
		return nil, ErrProviderNotFound
	}
	p.Available = available
	p.UpdatedAt = time.Now().UTC()
	return cloneProvider(p), nil
}

func cloneProvider(p *Provider) *Provider {
	c := *p
	c.Specialties = append([]string(nil), p.Specialties...)
	c.AcceptedInsurance = append([]string(nil), p.AcceptedInsurance...)
	c.LicensedStates = append([]string(nil), p.LicensedStates...)
	return &c
}

// InMemoryPatientRepository is an in-memory implementation of PatientRepository
type InMemoryPatientRepository struct {
	mu       sync.RWMutex
	patients map[string]*Patient
}

// NewInMemoryPatientRepository creates a new in-memory patient repository
func NewInMemoryPatientRepository() *InMemoryPatientRepository {
	return &InMemoryPatientRepository{
		patients: make(map[string]*Patient),
	}
}

// Create creates a new patient in memory
func (r *InMemoryPatientRepository) Create(ctx context.Context, req *CreatePatientRequest) (*Patient, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p := &Patient{
		ID:          uuid.New().String(),
		Name:        req.Name,
		DateOfBirth: req.DateOfBirth,
		PostalCode:  req.PostalCode,
		Insurance:   req.Insurance,
		Email:       req.Email,
		Phone:       req.Phone,
		CreatedAt:   time.Now().UTC(),
	}

	r.mu.Lock()
	r.patients[p.ID] = p
	r.mu.Unlock()

	out := *p
	return &out, nil
}

// GetByID retrieves a patient by ID
func (r *InMemoryPatientRepository) GetByID(ctx context.Context, id string) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	out := *p
	return &out, nil
}

// UpdateContact mutates the patient's contact fields only.
func (r *InMemoryPatientRepository) UpdateContact(ctx context.Context, id string, req *UpdateContactRequest) (*Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	if req.Email != "" {
		p.Email = req.Email
	}
	if req.Phone != "" {
		p.Phone = req.Phone
	}
	out := *p
	return &out, nil
}
