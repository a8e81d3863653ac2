package directory

import (
	"strings"
	"time"
)

// Provider represents a care provider available for matching.
type Provider struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	LicenseNumber     string    `json:"license_number"`
	Specialties       []string  `json:"specialties"`
	AcceptedInsurance []string  `json:"accepted_insurance"`
	LicensedStates    []string  `json:"licensed_states"`
	PostalCode        string    `json:"postal_code"`
	Rating            float64   `json:"rating"`
	YearsExperience   int       `json:"years_experience"`
	Available         bool      `json:"available"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Patient represents a portal patient.
type Patient struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DateOfBirth string    `json:"date_of_birth"`
	PostalCode  string    `json:"postal_code"`
	Insurance   string    `json:"insurance,omitempty"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateProviderRequest represents the request body for onboarding a provider
type CreateProviderRequest struct {
	Name              string   `json:"name"`
	LicenseNumber     string   `json:"license_number"`
	Specialties       []string `json:"specialties"`
	AcceptedInsurance []string `json:"accepted_insurance"`
	LicensedStates    []string `json:"licensed_states"`
	PostalCode        string   `json:"postal_code"`
	Rating            float64  `json:"rating"`
	YearsExperience   int      `json:"years_experience"`
	Available         bool     `json:"available"`
}

// Validate validates the create provider request
func (r *CreateProviderRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}
	if strings.TrimSpace(r.LicenseNumber) == "" {
		return ErrMissingLicense
	}
	if len(r.Specialties) == 0 {
		return ErrMissingSpecialty
	}
	for _, s := range r.Specialties {
		if strings.TrimSpace(s) == "" {
			return ErrMissingSpecialty
		}
	}
	if r.Rating < 0 || r.Rating > 5 {
		return ErrInvalidRating
	}
	if r.YearsExperience < 0 {
		return ErrInvalidExperience
	}
	return nil
}

// CreatePatientRequest represents the request body for registering a patient
type CreatePatientRequest struct {
	Name        string `json:"name"`
	DateOfBirth string `json:"date_of_birth"`
	PostalCode  string `json:"postal_code"`
	Insurance   string `json:"insurance,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// Validate validates the create patient request
func (r *CreatePatientRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}
	if strings.TrimSpace(r.DateOfBirth) == "" {
		return ErrMissingDateOfBirth
	}
	if r.Email == "" && r.Phone == "" {
		return ErrMissingContact
	}
	return nil
}

// UpdateContactRequest carries the only patient fields mutable after creation.
type UpdateContactRequest struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}
