package directory

import "context"

// FixtureProviders returns the demo provider pool the portal runs on
// when no database is configured.
func FixtureProviders() []*CreateProviderRequest {
	return []*CreateProviderRequest{
		{
			Name:              "Dr. Sarah Chen",
			LicenseNumber:     "NY-448213",
			Specialties:       []string{"Family Medicine"},
			AcceptedInsurance: []string{"Aetna", "Blue Cross Blue Shield"},
			LicensedStates:    []string{"NY", "NJ"},
			PostalCode:        "10001",
			Rating:            4.8,
			YearsExperience:   12,
			Available:         true,
		},
		{
			Name:              "Dr. Marcus Webb",
			LicenseNumber:     "PA-120877",
			Specialties:       []string{"Cardiology", "Internal Medicine"},
			AcceptedInsurance: []string{"UnitedHealthcare", "Aetna"},
			LicensedStates:    []string{"PA"},
			PostalCode:        "19104",
			Rating:            4.9,
			YearsExperience:   18,
			Available:         true,
		},
		{
			Name:              "Dr. Priya Raman",
			LicenseNumber:     "NY-551902",
			Specialties:       []string{"Dermatology"},
			AcceptedInsurance: []string{"Cigna"},
			LicensedStates:    []string{"NY"},
			PostalCode:        "10027",
			Rating:            4.6,
			YearsExperience:   9,
			Available:         true,
		},
		{
			Name:              "Dr. Alan Ortiz",
			LicenseNumber:     "NJ-300455",
			Specialties:       []string{"Pediatrics", "Family Medicine"},
			AcceptedInsurance: []string{"Blue Cross Blue Shield", "Medicaid"},
			LicensedStates:    []string{"NJ"},
			PostalCode:        "07030",
			Rating:            4.4,
			YearsExperience:   7,
			Available:         true,
		},
		{
			Name:              "Dr. Emily Hart",
			LicenseNumber:     "NY-778120",
			Specialties:       []string{"Psychiatry"},
			AcceptedInsurance: []string{"Aetna", "Cigna", "UnitedHealthcare"},
			LicensedStates:    []string{"NY", "CT"},
			PostalCode:        "10016",
			Rating:            4.7,
			YearsExperience:   14,
			Available:         false,
		},
		{
			Name:              "Dr. James Okafor",
			LicenseNumber:     "NY-610338",
			Specialties:       []string{"Internal Medicine", "Family Medicine"},
			AcceptedInsurance: []string{"Medicare", "Aetna"},
			LicensedStates:    []string{"NY"},
			PostalCode:        "11201",
			Rating:            4.5,
			YearsExperience:   21,
			Available:         true,
		},
	}
}

// FixturePatients returns the demo patient pool.
func FixturePatients() []*CreatePatientRequest {
	return []*CreatePatientRequest{
		{
			Name:        "Jordan Avery",
			DateOfBirth: "1988-04-12",
			PostalCode:  "10001",
			Insurance:   "Aetna",
			Email:       "jordan.avery@example.com",
		},
		{
			Name:        "Maria Delgado",
			DateOfBirth: "1975-11-03",
			PostalCode:  "07030",
			Insurance:   "Blue Cross Blue Shield",
			Phone:       "+12015550134",
		},
		{
			Name:        "Sam Whitfield",
			DateOfBirth: "1996-07-29",
			PostalCode:  "11201",
			Email:       "sam.w@example.com",
		},
	}
}

// SeedFixtures loads the demo pool into the given repositories.
func SeedFixtures(ctx context.Context, providers ProviderRepository, patients PatientRepository) error {
	for _, req := range FixtureProviders() {
		if _, err := providers.Create(ctx, req); err != nil {
			return err
		}
	}
	for _, req := range FixturePatients() {
		if _, err := patients.Create(ctx, req); err != nil {
			return err
		}
	}
	return nil
}
