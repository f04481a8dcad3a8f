package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nolanv/doorstep/internal/domain"
	"github.com/nolanv/doorstep/internal/repo"
	"github.com/nolanv/doorstep/internal/service"
)

// mockTerritoryRepo is a hand-written test double for repo.TerritoryRepo.
type mockTerritoryRepo struct {
	create            func(ctx context.Context, t domain.Territory) (domain.Territory, error)
	list              func(ctx context.Context) ([]domain.Territory, error)
	delete            func(ctx context.Context, id int64) error
	existsByCityState func(ctx context.Context, city, state string) (bool, error)
}

func (m *mockTerritoryRepo) Create(ctx context.Context, t domain.Territory) (domain.Territory, error) {
	return m.create(ctx, t)
}
func (m *mockTerritoryRepo) List(ctx context.Context) ([]domain.Territory, error) {
	return m.list(ctx)
}
func (m *mockTerritoryRepo) Delete(ctx context.Context, id int64) error {
	return m.delete(ctx, id)
}
func (m *mockTerritoryRepo) ExistsByCityState(ctx context.Context, city, state string) (bool, error) {
	if m.existsByCityState != nil {
		return m.existsByCityState(ctx, city, state)
	}
	return false, nil
}

var _ repo.TerritoryRepo = (*mockTerritoryRepo)(nil)

func TestTerritoryService_Add_NormalizesCityAndState(t *testing.T) {
	var created domain.Territory
	svc := service.NewTerritoryService(&mockTerritoryRepo{
		create: func(_ context.Context, tr domain.Territory) (domain.Territory, error) {
			created = tr
			return tr, nil
		},
	})

	_, err := svc.Add(context.Background(), domain.Territory{City: "  Austin ", State: " tx "})

	require.NoError(t, err)
	assert.Equal(t, "Austin", created.City)
	assert.Equal(t, "TX", created.State)
}

func TestTerritoryService_Add_MissingFields(t *testing.T) {
	svc := service.NewTerritoryService(&mockTerritoryRepo{})

	_, err := svc.Add(context.Background(), domain.Territory{City: "   ", State: "TX"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Add(context.Background(), domain.Territory{City: "Austin", State: ""})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTerritoryService_Add_PreCheckConflict(t *testing.T) {
	createCalled := false
	svc := service.NewTerritoryService(&mockTerritoryRepo{
		existsByCityState: func(_ context.Context, city, state string) (bool, error) {
			assert.Equal(t, "Austin", city)
			assert.Equal(t, "TX", state)
			return true, nil
		},
		create: func(_ context.Context, tr domain.Territory) (domain.Territory, error) {
			createCalled = true
			return tr, nil
		},
	})

	_, err := svc.Add(context.Background(), domain.Territory{City: "Austin", State: "tx"})

	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.False(t, createCalled, "pre-check conflict must short-circuit the insert")
}

func TestTerritoryService_Add_ConflictNotRetried(t *testing.T) {
	attempts := 0
	svc := service.NewTerritoryService(&mockTerritoryRepo{
		create: func(_ context.Context, _ domain.Territory) (domain.Territory, error) {
			attempts++
			return domain.Territory{}, domain.ErrConflict
		},
	})

	_, err := svc.Add(context.Background(), domain.Territory{City: "Austin", State: "TX"})

	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 1, attempts, "conflicts are terminal, retrying cannot help")
}

func TestTerritoryService_Add_TransientFailureRetried(t *testing.T) {
	attempts := 0
	svc := service.NewTerritoryService(&mockTerritoryRepo{
		create: func(_ context.Context, tr domain.Territory) (domain.Territory, error) {
			attempts++
			if attempts < 3 {
				return domain.Territory{}, errors.New("store not yet initialized")
			}
			tr.ID = 1
			return tr, nil
		},
	})

	got, err := svc.Add(context.Background(), domain.Territory{City: "Austin", State: "TX"})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, int64(1), got.ID)
}

func TestTerritoryService_Add_TransientFailureBounded(t *testing.T) {
	attempts := 0
	svc := service.NewTerritoryService(&mockTerritoryRepo{
		create: func(_ context.Context, _ domain.Territory) (domain.Territory, error) {
			attempts++
			return domain.Territory{}, errors.New("store offline")
		},
	})

	_, err := svc.Add(context.Background(), domain.Territory{City: "Austin", State: "TX"})

	assert.Error(t, err)
	assert.Equal(t, 4, attempts, "initial attempt plus three retries")
}

func TestTerritoryService_Exists_FalseOnStorageFailure(t *testing.T) {
	svc := service.NewTerritoryService(&mockTerritoryRepo{
		existsByCityState: func(_ context.Context, _, _ string) (bool, error) {
			return false, errors.New("store offline")
		},
	})

	// The guard must never block an insert attempt, so failures read as absent.
	assert.False(t, svc.Exists(context.Background(), "Austin", "TX"))
}

func TestTerritoryService_Exists_Normalizes(t *testing.T) {
	svc := service.NewTerritoryService(&mockTerritoryRepo{
		existsByCityState: func(_ context.Context, city, state string) (bool, error) {
			return city == "Austin" && state == "TX", nil
		},
	})

	assert.True(t, svc.Exists(context.Background(), " Austin ", " tx"))
}

func TestTerritoryService_List_NeverNil(t *testing.T) {
	svc := service.NewTerritoryService(&mockTerritoryRepo{
		list: func(_ context.Context) ([]domain.Territory, error) { return nil, nil },
	})

	got, err := svc.List(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestTerritoryService_Delete_Idempotent(t *testing.T) {
	svc := service.NewTerritoryService(&mockTerritoryRepo{
		delete: func(_ context.Context, _ int64) error { return nil },
	})

	assert.NoError(t, svc.Delete(context.Background(), 12345))
}
