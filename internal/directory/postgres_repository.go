package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresProviderRepository stores providers in the relational database.
type PostgresProviderRepository struct {
	db db
}

// NewPostgresProviderRepository initializes a repo backed by pgx.
func NewPostgresProviderRepository(db db) *PostgresProviderRepository {
	if db == nil {
		panic("directory: pgx connection required")
	}
	return &PostgresProviderRepository{db: db}
}

const providerColumns = `id, name, license_number, specialties, accepted_insurance, licensed_states, postal_code, rating, years_experience, available, created_at, updated_at`

// Create inserts a new provider row.
func (r *PostgresProviderRepository) Create(ctx context.Context, req *CreateProviderRequest) (*Provider, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	query := `
		INSERT INTO providers (id, name, license_number, specialties, accepted_insurance, licensed_states, postal_code, rating, years_experience, available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`
	var createdAt, updatedAt time.Time
	if err := r.db.QueryRow(ctx, query,
		id,
		req.Name,
		req.LicenseNumber,
		req.Specialties,
		req.AcceptedInsurance,
		req.LicensedStates,
		req.PostalCode,
		req.Rating,
		req.YearsExperience,
		req.Available,
	).Scan(&createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("directory: insert provider failed: %w", err)
	}

	return &Provider{
		ID:                id.String(),
		Name:              req.Name,
		LicenseNumber:     req.LicenseNumber,
		Specialties:       req.Specialties,
		AcceptedInsurance: req.AcceptedInsurance,
		LicensedStates:    req.LicensedStates,
		PostalCode:        req.PostalCode,
		Rating:            req.Rating,
		YearsExperience:   req.YearsExperience,
		Available:         req.Available,
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
	}, nil
}

// GetByID fetches a single provider.
func (r *PostgresProviderRepository) GetByID(ctx context.Context, id string) (*Provider, error) {
	query := `SELECT ` + providerColumns + ` FROM providers WHERE id = $1`
	p, err := scanProvider(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProviderNotFound
		}
		return nil, fmt.Errorf("directory: select provider failed: %w", err)
	}
	return p, nil
}

// List returns every provider ordered by creation time.
func (r *PostgresProviderRepository) List(ctx context.Context) ([]*Provider, error) {
	query := `SELECT ` + providerColumns + ` FROM providers ORDER BY created_at, id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("directory: list providers failed: %w", err)
	}
	defer rows.Close()

	var out []*Provider
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, fmt.Errorf("directory: scan provider failed: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("directory: list providers failed: %w", err)
	}
	return out, nil
}

// SetAvailability flips the availability flag and bumps updated_at.
func (r *PostgresProviderRepository) SetAvailability(ctx context.Context, id string, available bool) (*Provider, error) {
	query := `
		UPDATE providers
		SET available = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + providerColumns
	p, err := scanProvider(r.db.QueryRow(ctx, query, id, available))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProviderNotFound
		}
		return nil, fmt.Errorf("directory: update availability failed: %w", err)
	}
	return p, nil
}

func scanProvider(row pgx.Row) (*Provider, error) {
	var p Provider
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.LicenseNumber,
		&p.Specialties,
		&p.AcceptedInsurance,
		&p.LicensedStates,
		&p.PostalCode,
		&p.Rating,
		&p.YearsExperience,
		&p.Available,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// PostgresPatientRepository stores patients in the relational database.
type PostgresPatientRepository struct {
	db db
}

// NewPostgresPatientRepository initializes a repo backed by pgx.
func NewPostgresPatientRepository(db db) *PostgresPatientRepository {
	if db == nil {
		panic("directory: pgx connection required")
	}
	return &PostgresPatientRepository{db: db}
}

const patientColumns = `id, name, date_of_birth, postal_code, insurance, email, phone, created_at`

// Create inserts a new patient row.
func (r *PostgresPatientRepository) Create(ctx context.Context, req *CreatePatientRequest) (*Patient, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	query := `
		INSERT INTO patients (id, name, date_of_birth, postal_code, insurance, email, phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.db.QueryRow(ctx, query,
		id,
		req.Name,
		req.DateOfBirth,
		req.PostalCode,
		req.Insurance,
		req.Email,
		req.Phone,
	).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("directory: insert patient failed: %w", err)
	}

	return &Patient{
		ID:          id.String(),
		Name:        req.Name,
		DateOfBirth: req.DateOfBirth,
		PostalCode:  req.PostalCode,
		Insurance:   req.Insurance,
		Email:       req.Email,
		Phone:       req.Phone,
		CreatedAt:   createdAt,
	}, nil
}

// GetByID fetches a single patient.
func (r *PostgresPatientRepository) GetByID(ctx context.Context, id string) (*Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`
	p, err := scanPatient(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("directory: select patient failed: %w", err)
	}
	return p, nil
}

// UpdateContact mutates contact fields only; empty values leave the column untouched.
func (r *PostgresPatientRepository) UpdateContact(ctx context.Context, id string, req *UpdateContactRequest) (*Patient, error) {
	query := `
		UPDATE patients
		SET email = COALESCE(NULLIF($2, ''), email),
		    phone = COALESCE(NULLIF($3, ''), phone)
		WHERE id = $1
		RETURNING ` + patientColumns
	p, err := scanPatient(r.db.QueryRow(ctx, query, id, req.Email, req.Phone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("directory: update contact failed: %w", err)
	}
	return p, nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.DateOfBirth,
		&p.PostalCode,
		&p.Insurance,
		&p.Email,
		&p.Phone,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
