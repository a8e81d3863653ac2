package carerequest

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

// PostgresStore persists care requests in the relational database.
// Transitions use an optimistic compare-and-swap on (status,
// updated_at) instead of an in-process lock, so the at-most-one-winner
// guarantee holds across replicas too.
type PostgresStore struct {
	db  db
	now func() time.Time
}

// NewPostgresStore initializes a store backed by pgx.
func NewPostgresStore(db db) *PostgresStore {
	if db == nil {
		panic("carerequest: pgx connection required")
	}
	return &PostgresStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

const requestColumns = `id, patient_id, provider_id, specialty, symptoms, description, urgency, postal_code, insurance, preferred_at, status, created_at, updated_at`

// Create inserts a new pending request row.
func (s *PostgresStore) Create(ctx context.Context, req *CreateRequest) (*CareRequest, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	query := `
		INSERT INTO care_requests (id, patient_id, specialty, symptoms, description, urgency, postal_code, insurance, preferred_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'pending')
		RETURNING created_at, updated_at
	`
	var createdAt, updatedAt time.Time
	if err := s.db.QueryRow(ctx, query,
		id,
		req.PatientID,
		req.Specialty,
		req.Symptoms,
		req.Description,
		string(req.Urgency),
		req.PostalCode,
		req.Insurance,
		req.PreferredAt,
	).Scan(&createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("carerequest: insert failed: %w", err)
	}

	return &CareRequest{
		ID:          id.String(),
		PatientID:   req.PatientID,
		Specialty:   req.Specialty,
		Symptoms:    req.Symptoms,
		Description: req.Description,
		Urgency:     req.Urgency,
		PostalCode:  req.PostalCode,
		Insurance:   req.Insurance,
		PreferredAt: req.PreferredAt,
		Status:      StatusPending,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

// GetByID fetches a single care request.
func (s *PostgresStore) GetByID(ctx context.Context, id string) (*CareRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM care_requests WHERE id = $1`
	cr, err := scanRequest(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("carerequest: select failed: %w", err)
	}
	return cr, nil
}

// ListByPatient returns the patient's requests, newest first.
func (s *PostgresStore) ListByPatient(ctx context.Context, patientID string) ([]*CareRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM care_requests WHERE patient_id = $1 ORDER BY created_at DESC, id`
	return s.listQuery(ctx, query, patientID)
}

// ListByProvider returns requests assigned to the provider, newest first.
func (s *PostgresStore) ListByProvider(ctx context.Context, providerID string) ([]*CareRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM care_requests WHERE provider_id = $1 ORDER BY created_at DESC, id`
	return s.listQuery(ctx, query, providerID)
}

func (s *PostgresStore) listQuery(ctx context.Context, query string, arg any) ([]*CareRequest, error) {
	rows, err := s.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("carerequest: list failed: %w", err)
	}
	defer rows.Close()

	var out []*CareRequest
	for rows.Next() {
		cr, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("carerequest: scan failed: %w", err)
		}
		out = append(out, cr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("carerequest: list failed: %w", err)
	}
	return out, nil
}

// Transition loads the request, applies the event, and writes the
// result guarded by a CAS on the row's previous (status, updated_at).
// When the CAS loses a race it reloads once and re-applies; the second
// Apply then reports the real outcome (usually ErrConflict).
func (s *PostgresStore) Transition(ctx context.Context, id string, ev Event, actorID string) (*CareRequest, error) {
	for attempt := 0; attempt < 2; attempt++ {
		current, err := s.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		next, err := Apply(*current, ev, actorID, s.now())
		if err != nil {
			return nil, err
		}

		// Replayed no-op: nothing to persist.
		if next.Status == current.Status && next.UpdatedAt.Equal(current.UpdatedAt) {
			return next.Clone(), nil
		}

		tag, err := s.db.Exec(ctx, `
			UPDATE care_requests
			SET status = $1, provider_id = $2, updated_at = $3
			WHERE id = $4 AND status = $5 AND updated_at = $6
		`,
			string(next.Status),
			next.ProviderID,
			next.UpdatedAt,
			id,
			string(current.Status),
			current.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("carerequest: transition update failed: %w", err)
		}
		if tag.RowsAffected() == 1 {
			return next.Clone(), nil
		}
		// Lost the race: someone else moved the row first. Retry once
		// against the fresh state.
	}
	return nil, ErrConflict
}

func scanRequest(row pgx.Row) (*CareRequest, error) {
	var (
		cr      CareRequest
		urgency string
		status  string
	)
	if err := row.Scan(
		&cr.ID,
		&cr.PatientID,
		&cr.ProviderID,
		&cr.Specialty,
		&cr.Symptoms,
		&cr.Description,
		&urgency,
		&cr.PostalCode,
		&cr.Insurance,
		&cr.PreferredAt,
		&status,
		&cr.CreatedAt,
		&cr.UpdatedAt,
	); err != nil {
		return nil, err
	}
	cr.Urgency = Urgency(urgency)
	cr.Status = Status(status)
	return &cr, nil
}
