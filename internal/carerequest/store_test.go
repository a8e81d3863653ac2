package carerequest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingInStore(t *testing.T, store *InMemoryStore) *CareRequest {
	t.Helper()
	cr, err := store.Create(context.Background(), &CreateRequest{
		PatientID:  "pat-1",
		Specialty:  "Family Medicine",
		Urgency:    UrgencyMedium,
		PostalCode: "10001",
	})
	require.NoError(t, err)
	return cr
}

func TestInMemoryStore_Create(t *testing.T) {
	store := NewInMemoryStore()
	cr := newPendingInStore(t, store)

	assert.NotEmpty(t, cr.ID)
	assert.Equal(t, StatusPending, cr.Status)
	assert.Nil(t, cr.ProviderID)
	assert.Equal(t, cr.CreatedAt, cr.UpdatedAt)
}

func TestInMemoryStore_CreateValidation(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	_, err := store.Create(ctx, &CreateRequest{Specialty: "Family Medicine"})
	assert.ErrorIs(t, err, ErrMissingPatient)

	_, err = store.Create(ctx, &CreateRequest{PatientID: "pat-1"})
	assert.ErrorIs(t, err, ErrMissingSpecialty)

	_, err = store.Create(ctx, &CreateRequest{PatientID: "pat-1", Specialty: "x", Urgency: "frantic"})
	assert.ErrorIs(t, err, ErrInvalidUrgency)
}

func TestInMemoryStore_DefaultUrgency(t *testing.T) {
	store := NewInMemoryStore()
	cr, err := store.Create(context.Background(), &CreateRequest{
		PatientID: "pat-1",
		Specialty: "Family Medicine",
	})
	require.NoError(t, err)
	assert.Equal(t, UrgencyMedium, cr.Urgency)
}

func TestInMemoryStore_GetByIDNotFound(t *testing.T) {
	store := NewInMemoryStore()
	_, err := store.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestInMemoryStore_TransitionPersists(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	cr := newPendingInStore(t, store)

	got, err := store.Transition(ctx, cr.ID, EventAccept, "prov-1")
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, got.Status)

	reloaded, err := store.GetByID(ctx, cr.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, reloaded.Status)
	require.NotNil(t, reloaded.ProviderID)
	assert.Equal(t, "prov-1", *reloaded.ProviderID)
	assert.True(t, reloaded.UpdatedAt.After(reloaded.CreatedAt) || reloaded.UpdatedAt.Equal(reloaded.CreatedAt))
}

func TestInMemoryStore_TransitionRejectionLeavesStateUntouched(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	cr := newPendingInStore(t, store)

	_, err := store.Transition(ctx, cr.ID, EventComplete, "prov-1")
	require.Error(t, err)
	assert.True(t, IsInvalidTransition(err))

	reloaded, err := store.GetByID(ctx, cr.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, reloaded.Status)
	assert.Equal(t, cr.UpdatedAt, reloaded.UpdatedAt)
}

func TestInMemoryStore_ConcurrentAcceptsSingleWinner(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	cr := newPendingInStore(t, store)

	const contenders = 16
	var wg sync.WaitGroup
	errs := make([]error, contenders)

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = store.Transition(ctx, cr.ID, EventAccept, fmt.Sprintf("prov-%d", i))
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrConflict)
		}
	}
	assert.Equal(t, 1, winners, "exactly one provider may hold the request")

	final, err := store.GetByID(ctx, cr.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, final.Status)
	require.NotNil(t, final.ProviderID)
}

func TestInMemoryStore_WinnerKeepsRequestAfterLoss(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	cr := newPendingInStore(t, store)

	_, err := store.Transition(ctx, cr.ID, EventAccept, "prov-first")
	require.NoError(t, err)

	_, err = store.Transition(ctx, cr.ID, EventAccept, "prov-second")
	assert.ErrorIs(t, err, ErrConflict)

	final, err := store.GetByID(ctx, cr.ID)
	require.NoError(t, err)
	assert.Equal(t, "prov-first", *final.ProviderID)
}

func TestInMemoryStore_AcceptReplaySameProviderNoOp(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	cr := newPendingInStore(t, store)

	first, err := store.Transition(ctx, cr.ID, EventAccept, "prov-1")
	require.NoError(t, err)

	again, err := store.Transition(ctx, cr.ID, EventAccept, "prov-1")
	require.NoError(t, err, "replaying a successful accept is not an error")
	assert.Equal(t, first.Status, again.Status)
	assert.Equal(t, first.UpdatedAt, again.UpdatedAt)
}

func TestInMemoryStore_ListByPatientAndProvider(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	a := newPendingInStore(t, store)
	_, err := store.Create(ctx, &CreateRequest{PatientID: "pat-2", Specialty: "Cardiology"})
	require.NoError(t, err)

	_, err = store.Transition(ctx, a.ID, EventAccept, "prov-1")
	require.NoError(t, err)

	byPatient, err := store.ListByPatient(ctx, "pat-1")
	require.NoError(t, err)
	require.Len(t, byPatient, 1)
	assert.Equal(t, a.ID, byPatient[0].ID)

	byProvider, err := store.ListByProvider(ctx, "prov-1")
	require.NoError(t, err)
	require.Len(t, byProvider, 1)
	assert.Equal(t, a.ID, byProvider[0].ID)

	none, err := store.ListByProvider(ctx, "prov-none")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestInMemoryStore_SnapshotsAreIsolated(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	cr := newPendingInStore(t, store)

	cr.Status = StatusCompleted // mutating the snapshot must not leak

	reloaded, err := store.GetByID(ctx, cr.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, reloaded.Status)
}
