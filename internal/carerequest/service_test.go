package carerequest

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carebridge/telehealth-platform/internal/directory"
	"github.com/carebridge/telehealth-platform/internal/matchcache"
	"github.com/carebridge/telehealth-platform/internal/observability/metrics"
	"github.com/carebridge/telehealth-platform/pkg/logging"
)

type serviceFixture struct {
	service   *Service
	store     *InMemoryStore
	providers *directory.InMemoryProviderRepository
	cache     *matchcache.Cache
}

func newServiceFixture(t *testing.T, withCache bool) *serviceFixture {
	t.Helper()

	store := NewInMemoryStore()
	providers := directory.NewInMemoryProviderRepository()

	var cache *matchcache.Cache
	if withCache {
		mr := miniredis.RunT(t)
		cache = matchcache.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	}

	m := metrics.NewMatchingMetrics(prometheus.NewRegistry())
	svc := NewService(store, providers, cache, m, logging.Default(), 5)
	return &serviceFixture{service: svc, store: store, providers: providers, cache: cache}
}

func (f *serviceFixture) addProvider(t *testing.T, name, specialty, zip string, rating float64, years int, available bool) *directory.Provider {
	t.Helper()
	p, err := f.providers.Create(context.Background(), &directory.CreateProviderRequest{
		Name:            name,
		LicenseNumber:   "LIC-" + name,
		Specialties:     []string{specialty},
		PostalCode:      zip,
		Rating:          rating,
		YearsExperience: years,
		Available:       available,
	})
	require.NoError(t, err)
	return p
}

func (f *serviceFixture) createRequest(t *testing.T, urgency Urgency) *CareRequest {
	t.Helper()
	cr, err := f.service.Create(context.Background(), &CreateRequest{
		PatientID:  "pat-1",
		Specialty:  "Family Medicine",
		Urgency:    urgency,
		PostalCode: "10001",
	})
	require.NoError(t, err)
	return cr
}

func TestService_RankProviders(t *testing.T) {
	f := newServiceFixture(t, false)
	ctx := context.Background()

	near := f.addProvider(t, "near", "Family Medicine", "10001", 4.8, 12, true)
	f.addProvider(t, "cardio", "Cardiology", "10001", 4.9, 18, true)
	f.addProvider(t, "offline", "Family Medicine", "10001", 5.0, 20, false)

	cr := f.createRequest(t, UrgencyMedium)

	ranked, err := f.service.RankProviders(ctx, cr.ID)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, near.ID, ranked[0].ID)
}

func TestService_RankProvidersUnknownRequest(t *testing.T) {
	f := newServiceFixture(t, false)
	_, err := f.service.RankProviders(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestService_ProposeMatch(t *testing.T) {
	f := newServiceFixture(t, false)
	ctx := context.Background()

	top := f.addProvider(t, "top", "Family Medicine", "10001", 4.9, 20, true)
	f.addProvider(t, "far", "Family Medicine", "10900", 3.0, 1, true)

	cr := f.createRequest(t, UrgencyMedium)

	matched, err := f.service.ProposeMatch(ctx, cr.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusMatched, matched.Status)
	require.NotNil(t, matched.ProviderID)
	assert.Equal(t, top.ID, *matched.ProviderID)
}

func TestService_ProposeMatchNoEligibleProviders(t *testing.T) {
	f := newServiceFixture(t, false)
	ctx := context.Background()

	cr := f.createRequest(t, UrgencyMedium)

	_, err := f.service.ProposeMatch(ctx, cr.ID)
	assert.ErrorIs(t, err, ErrNoEligibleProviders)

	reloaded, err := f.service.Get(ctx, cr.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, reloaded.Status, "failed match leaves the request pending")
}

func TestService_AcceptByEligibleProvider(t *testing.T) {
	f := newServiceFixture(t, false)
	ctx := context.Background()

	p := f.addProvider(t, "doc", "Family Medicine", "10001", 4.5, 10, true)
	cr := f.createRequest(t, UrgencyMedium)

	got, err := f.service.Transition(ctx, cr.ID, EventAccept, p.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, got.Status)
	assert.Equal(t, p.ID, *got.ProviderID)
}

func TestService_AcceptByIneligibleProviderRejected(t *testing.T) {
	f := newServiceFixture(t, false)
	ctx := context.Background()

	cardio := f.addProvider(t, "cardio", "Cardiology", "10001", 4.9, 18, true)
	cr := f.createRequest(t, UrgencyMedium)

	_, err := f.service.Transition(ctx, cr.ID, EventAccept, cardio.ID)
	assert.ErrorIs(t, err, ErrNotEligible)

	reloaded, err := f.service.Get(ctx, cr.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, reloaded.Status, "rejected accept must not mutate")
}

func TestService_AcceptByUnknownProviderRejected(t *testing.T) {
	f := newServiceFixture(t, false)
	cr := f.createRequest(t, UrgencyMedium)

	_, err := f.service.Transition(context.Background(), cr.ID, EventAccept, "ghost")
	assert.ErrorIs(t, err, ErrNotEligible)
}

func TestService_AcceptByUnavailableProviderRejected(t *testing.T) {
	f := newServiceFixture(t, false)
	ctx := context.Background()

	p := f.addProvider(t, "doc", "Family Medicine", "10001", 4.5, 10, false)
	cr := f.createRequest(t, UrgencyMedium)

	_, err := f.service.Transition(ctx, cr.ID, EventAccept, p.ID)
	assert.ErrorIs(t, err, ErrNotEligible)
}

func TestService_AcceptReplayAfterAvailabilityFlip(t *testing.T) {
	f := newServiceFixture(t, false)
	ctx := context.Background()

	p := f.addProvider(t, "doc", "Family Medicine", "10001", 4.5, 10, true)
	cr := f.createRequest(t, UrgencyMedium)

	_, err := f.service.Transition(ctx, cr.ID, EventAccept, p.ID)
	require.NoError(t, err)

	// The holder going unavailable for new requests must not break
	// replays on the request it already holds.
	_, err = f.providers.SetAvailability(ctx, p.ID, false)
	require.NoError(t, err)

	got, err := f.service.Transition(ctx, cr.ID, EventAccept, p.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, got.Status)
}

func TestService_SecondAcceptConflicts(t *testing.T) {
	f := newServiceFixture(t, false)
	ctx := context.Background()

	first := f.addProvider(t, "first", "Family Medicine", "10001", 4.5, 10, true)
	second := f.addProvider(t, "second", "Family Medicine", "10002", 4.7, 12, true)
	cr := f.createRequest(t, UrgencyMedium)

	_, err := f.service.Transition(ctx, cr.ID, EventAccept, first.ID)
	require.NoError(t, err)

	_, err = f.service.Transition(ctx, cr.ID, EventAccept, second.ID)
	assert.ErrorIs(t, err, ErrConflict)

	reloaded, err := f.service.Get(ctx, cr.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, *reloaded.ProviderID)
}

func TestService_FullLifecycle(t *testing.T) {
	f := newServiceFixture(t, false)
	ctx := context.Background()

	p := f.addProvider(t, "doc", "Family Medicine", "10001", 4.5, 10, true)
	cr := f.createRequest(t, UrgencyHigh)

	matched, err := f.service.ProposeMatch(ctx, cr.ID)
	require.NoError(t, err)
	require.Equal(t, StatusMatched, matched.Status)

	accepted, err := f.service.Transition(ctx, cr.ID, EventAccept, p.ID)
	require.NoError(t, err)
	require.Equal(t, StatusAccepted, accepted.Status)

	started, err := f.service.Transition(ctx, cr.ID, EventStart, p.ID)
	require.NoError(t, err)
	require.Equal(t, StatusInProgress, started.Status)

	completed, err := f.service.Transition(ctx, cr.ID, EventComplete, p.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, completed.Status)
}

func TestService_RankCachesProviderIDs(t *testing.T) {
	f := newServiceFixture(t, true)
	ctx := context.Background()

	p := f.addProvider(t, "doc", "Family Medicine", "10001", 4.5, 10, true)
	cr := f.createRequest(t, UrgencyMedium)

	_, err := f.service.RankProviders(ctx, cr.ID)
	require.NoError(t, err)

	ids, ok := f.cache.GetRanked(ctx, cr.ID)
	require.True(t, ok, "ranking should populate the cache")
	require.Len(t, ids, 1)
	assert.Equal(t, p.ID, ids[0])
}

func TestService_TerminalTransitionInvalidatesCache(t *testing.T) {
	f := newServiceFixture(t, true)
	ctx := context.Background()

	f.addProvider(t, "doc", "Family Medicine", "10001", 4.5, 10, true)
	cr := f.createRequest(t, UrgencyMedium)

	_, err := f.service.RankProviders(ctx, cr.ID)
	require.NoError(t, err)

	_, err = f.service.Transition(ctx, cr.ID, EventCancel, cr.PatientID)
	require.NoError(t, err)

	_, ok := f.cache.GetRanked(ctx, cr.ID)
	assert.False(t, ok, "cancellation should drop the cached ranking")
}

func TestService_UnknownEventRejected(t *testing.T) {
	f := newServiceFixture(t, false)
	cr := f.createRequest(t, UrgencyMedium)

	_, err := f.service.Transition(context.Background(), cr.ID, Event("escalate"), "prov-1")
	assert.True(t, IsInvalidTransition(err))
}
