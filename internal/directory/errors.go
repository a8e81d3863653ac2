package directory

import "errors"

var (
	// ErrInvalidName is returned when the name is missing or blank
	ErrInvalidName = errors.New("name is required")

	// ErrMissingLicense is returned when a provider has no license number
	ErrMissingLicense = errors.New("license number is required")

	// ErrMissingSpecialty is returned when a provider lists no specialty
	ErrMissingSpecialty = errors.New("at least one specialty is required")

	// ErrInvalidRating is returned when a rating falls outside 0.0-5.0
	ErrInvalidRating = errors.New("rating must be between 0.0 and 5.0")

	// ErrInvalidExperience is returned when years of experience is negative
	ErrInvalidExperience = errors.New("years of experience must not be negative")

	// ErrMissingDateOfBirth is returned when a patient has no date of birth
	ErrMissingDateOfBirth = errors.New("date of birth is required")

	// ErrMissingContact is returned when both email and phone are missing
	ErrMissingContact = errors.New("either email or phone is required")

	// ErrProviderNotFound is returned when a provider is not found
	ErrProviderNotFound = errors.New("provider not found")

	// ErrPatientNotFound is returned when a patient is not found
	ErrPatientNotFound = errors.New("patient not found")
)
