package carerequest

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carebridge/telehealth-platform/internal/directory"
	"github.com/carebridge/telehealth-platform/internal/matchcache"
	"github.com/carebridge/telehealth-platform/internal/matching"
	"github.com/carebridge/telehealth-platform/internal/observability/metrics"
	"github.com/carebridge/telehealth-platform/pkg/logging"
)

var requestTracer = otel.Tracer("carebridge.internal.carerequest")

// Service is the collaborator-facing surface of the matching and
// lifecycle core: submit a request, query its ranked eligible
// providers, apply a transition.
type Service struct {
	store     Store
	providers directory.ProviderRepository
	cache     *matchcache.Cache
	metrics   *metrics.MatchingMetrics
	logger    *logging.Logger
	rankLimit int
}

// NewService constructs a care request service. cache and metrics may
// be nil.
func NewService(store Store, providers directory.ProviderRepository, cache *matchcache.Cache, m *metrics.MatchingMetrics, logger *logging.Logger, rankLimit int) *Service {
	if store == nil {
		panic("carerequest: store required")
	}
	if providers == nil {
		panic("carerequest: provider repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if rankLimit <= 0 {
		rankLimit = matching.DefaultMaxResults
	}
	return &Service{
		store:     store,
		providers: providers,
		cache:     cache,
		metrics:   m,
		logger:    logger,
		rankLimit: rankLimit,
	}
}

// Create opens a new pending care request for a patient.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*CareRequest, error) {
	ctx, span := requestTracer.Start(ctx, "carerequest.create")
	defer span.End()

	cr, err := s.store.Create(ctx, req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("carebridge.request_id", cr.ID))
	s.logger.Info("care request created",
		"id", cr.ID,
		"patient_id", cr.PatientID,
		"specialty", cr.Specialty,
		"urgency", string(cr.Urgency),
	)
	return cr, nil
}

// Get returns a single care request.
func (s *Service) Get(ctx context.Context, id string) (*CareRequest, error) {
	return s.store.GetByID(ctx, id)
}

// ListByPatient returns the patient's requests, newest first.
func (s *Service) ListByPatient(ctx context.Context, patientID string) ([]*CareRequest, error) {
	return s.store.ListByPatient(ctx, patientID)
}

// ListByProvider returns requests assigned to the provider, newest first.
func (s *Service) ListByProvider(ctx context.Context, providerID string) ([]*CareRequest, error) {
	return s.store.ListByProvider(ctx, providerID)
}

// RankProviders computes the ordered eligible providers for a request
// from a snapshot of the directory, and caches the ranked id list.
func (s *Service) RankProviders(ctx context.Context, requestID string) ([]*directory.Provider, error) {
	ctx, span := requestTracer.Start(ctx, "carerequest.rank")
	defer span.End()
	span.SetAttributes(attribute.String("carebridge.request_id", requestID))

	cr, err := s.store.GetByID(ctx, requestID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	ranked, err := s.rank(ctx, cr)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	ids := make([]string, len(ranked))
	for i, p := range ranked {
		ids[i] = p.ID
	}
	if err := s.cache.SetRanked(ctx, cr.ID, ids); err != nil {
		// The cache is an optimization; a write failure must not hide
		// a correct ranking.
		s.logger.Warn("rank cache write failed", "error", err, "request_id", cr.ID)
	}
	return ranked, nil
}

func (s *Service) rank(ctx context.Context, cr *CareRequest) ([]*directory.Provider, error) {
	start := time.Now()
	pool, err := s.providers.List(ctx)
	if err != nil {
		return nil, err
	}
	ranked := matching.RankN(pool, s.matchView(cr), s.rankLimit)
	s.metrics.ObserveRank(string(cr.Urgency), len(ranked), time.Since(start).Seconds())
	return ranked, nil
}

func (s *Service) matchView(cr *CareRequest) matching.Request {
	return matching.Request{
		Specialty:  cr.Specialty,
		Insurance:  cr.Insurance,
		PostalCode: cr.PostalCode,
		Urgent:     cr.Urgency == UrgencyUrgent,
	}
}

// ProposeMatch applies the system match event using the top ranked
// provider. An empty ranking yields ErrNoEligibleProviders and leaves
// the request pending.
func (s *Service) ProposeMatch(ctx context.Context, requestID string) (*CareRequest, error) {
	ctx, span := requestTracer.Start(ctx, "carerequest.propose_match")
	defer span.End()
	span.SetAttributes(attribute.String("carebridge.request_id", requestID))

	ranked, err := s.RankProviders(ctx, requestID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if len(ranked) == 0 {
		return nil, ErrNoEligibleProviders
	}
	return s.Transition(ctx, requestID, EventMatch, ranked[0].ID)
}

// Transition applies a lifecycle event on behalf of an actor. Accepts
// are additionally screened against the eligible set, so a provider
// that never matched the request cannot claim it.
func (s *Service) Transition(ctx context.Context, requestID string, ev Event, actorID string) (*CareRequest, error) {
	ctx, span := requestTracer.Start(ctx, "carerequest.transition")
	defer span.End()
	span.SetAttributes(
		attribute.String("carebridge.request_id", requestID),
		attribute.String("carebridge.event", string(ev)),
	)

	if !ev.Valid() {
		err := &InvalidTransitionError{Event: ev}
		s.metrics.ObserveTransition(string(ev), "invalid_transition")
		return nil, err
	}

	if ev == EventAccept {
		if err := s.checkEligibility(ctx, requestID, actorID); err != nil {
			span.RecordError(err)
			s.metrics.ObserveTransition(string(ev), "not_eligible")
			return nil, err
		}
	}

	cr, err := s.store.Transition(ctx, requestID, ev, actorID)
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveTransition(string(ev), transitionOutcome(err))
		return nil, err
	}

	if cr.Status.Terminal() {
		if err := s.cache.Invalidate(ctx, cr.ID); err != nil {
			s.logger.Warn("rank cache invalidation failed", "error", err, "request_id", cr.ID)
		}
	}

	s.metrics.ObserveTransition(string(ev), "ok")
	s.logger.Info("care request transitioned",
		"id", cr.ID,
		"event", string(ev),
		"status", string(cr.Status),
		"actor_id", actorID,
	)
	return cr, nil
}

// checkEligibility rejects accepts from providers outside the eligible
// set. The cached ranking is the fast path; on a miss the check falls
// back to the live filter so availability flips are respected.
func (s *Service) checkEligibility(ctx context.Context, requestID, providerID string) error {
	if providerID == "" {
		return ErrNotEligible
	}

	if ids, ok := s.cache.GetRanked(ctx, requestID); ok {
		for _, id := range ids {
			if id == providerID {
				return nil
			}
		}
		// Not in the cached top ranking; fall through to the live
		// filter, which is authoritative for eligibility.
	}

	cr, err := s.store.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	// Replayed accept by the current holder stays legal even if the
	// provider has since toggled availability off.
	if cr.ProviderID != nil && *cr.ProviderID == providerID {
		return nil
	}

	p, err := s.providers.GetByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, directory.ErrProviderNotFound) {
			return ErrNotEligible
		}
		return err
	}
	if !matching.Eligible(p, s.matchView(cr)) {
		return ErrNotEligible
	}
	return nil
}

func transitionOutcome(err error) string {
	switch {
	case errors.Is(err, ErrConflict):
		return "conflict"
	case IsInvalidTransition(err):
		return "invalid_transition"
	case errors.Is(err, ErrRequestNotFound):
		return "not_found"
	default:
		return "error"
	}
}
