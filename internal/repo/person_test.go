package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nolanv/doorstep/internal/domain"
	"github.com/nolanv/doorstep/internal/repo"
	"github.com/nolanv/doorstep/testutil"
)

// newTestTx opens a transaction against the test database that is rolled back
// when the test finishes, giving free per-test isolation.
func newTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		// Rollback discards all changes made during the test, so no cleanup SQL is needed.
		_ = tx.Rollback(context.Background())
	})

	return tx
}

// personFixture returns a domain.Person with sensible defaults for use in tests.
// Callers can override individual fields after calling this function.
func personFixture() domain.Person {
	return domain.Person{
		Name:    "John Doe",
		Address: "123 Main St",
		Phone:   "+1 512 555 0100",
		Email:   "john@example.com",
	}
}

func TestPersonRepo_Create(t *testing.T) {
	r := repo.NewPersonRepo(newTestTx(t))
	ctx := context.Background()

	input := personFixture()
	got, err := r.Create(ctx, input)

	require.NoError(t, err)
	assert.NotZero(t, got.ID, "ID should be DB-generated")
	assert.Equal(t, input.Name, got.Name)
	assert.Equal(t, input.Address, got.Address)
	assert.Equal(t, input.Phone, got.Phone)
	assert.Equal(t, input.Email, got.Email)
	assert.Nil(t, got.Location, "Location should be nil when not provided")
	assert.False(t, got.CreatedAt.IsZero(), "CreatedAt should be set by DB")
	assert.False(t, got.UpdatedAt.IsZero(), "UpdatedAt should be set by DB")
}

func TestPersonRepo_Create_WithLocation(t *testing.T) {
	r := repo.NewPersonRepo(newTestTx(t))
	ctx := context.Background()

	input := personFixture()
	input.Location = &domain.LatLng{Lat: 30.2672, Lng: -97.7431}

	got, err := r.Create(ctx, input)

	require.NoError(t, err)
	require.NotNil(t, got.Location)
	assert.InDelta(t, 30.2672, got.Location.Lat, 1e-9)
	assert.InDelta(t, -97.7431, got.Location.Lng, 1e-9)
}

func TestPersonRepo_Create_PreservesCreatedAt(t *testing.T) {
	r := repo.NewPersonRepo(newTestTx(t))
	ctx := context.Background()

	input := personFixture()
	input.CreatedAt = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	got, err := r.Create(ctx, input)

	require.NoError(t, err)
	assert.True(t, got.CreatedAt.Equal(input.CreatedAt), "explicit CreatedAt should survive the insert")
}

func TestPersonRepo_GetByID(t *testing.T) {
	r := repo.NewPersonRepo(newTestTx(t))
	ctx := context.Background()

	created, err := r.Create(ctx, personFixture())
	require.NoError(t, err)

	got, err := r.GetByID(ctx, created.ID)

	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Name, got.Name)
}

func TestPersonRepo_GetByID_NotFound(t *testing.T) {
	r := repo.NewPersonRepo(newTestTx(t))
	ctx := context.Background()

	_, err := r.GetByID(ctx, 999999999)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPersonRepo_List_OrderedByName(t *testing.T) {
	r := repo.NewPersonRepo(newTestTx(t))
	ctx := context.Background()

	for _, name := range []string{"Charlie", "alice", "Bob"} {
		p := personFixture()
		p.Name = name
		_, err := r.Create(ctx, p)
		require.NoError(t, err)
	}

	people, err := r.List(ctx)

	require.NoError(t, err)
	require.Len(t, people, 3)
	// COLLATE "C" is byte order: uppercase sorts before lowercase.
	assert.Equal(t, "Bob", people[0].Name)
	assert.Equal(t, "Charlie", people[1].Name)
	assert.Equal(t, "alice", people[2].Name)
}

func TestPersonRepo_Update(t *testing.T) {
	r := repo.NewPersonRepo(newTestTx(t))
	ctx := context.Background()

	created, err := r.Create(ctx, personFixture())
	require.NoError(t, err)

	created.Name = "Jane Doe"
	created.Address = "456 Oak Ave"
	got, err := r.Update(ctx, created)

	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.Name)
	assert.Equal(t, "456 Oak Ave", got.Address)
	assert.True(t, got.CreatedAt.Equal(created.CreatedAt), "CreatedAt must be immutable")
	assert.False(t, got.UpdatedAt.Before(created.UpdatedAt), "UpdatedAt must be refreshed")
}

func TestPersonRepo_Update_NotFound(t *testing.T) {
	r := repo.NewPersonRepo(newTestTx(t))
	ctx := context.Background()

	p := personFixture()
	p.ID = 999999999
	_, err := r.Update(ctx, p)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPersonRepo_DeleteWithNotes_CascadesNotes(t *testing.T) {
	tx := newTestTx(t)
	people := repo.NewPersonRepo(tx)
	notes := repo.NewNoteRepo(tx)
	ctx := context.Background()

	person, err := people.Create(ctx, personFixture())
	require.NoError(t, err)

	_, err = notes.Create(ctx, domain.Note{PersonID: person.ID, Content: "Met at door"})
	require.NoError(t, err)
	_, err = notes.Create(ctx, domain.Note{PersonID: person.ID, Content: "Left a flyer"})
	require.NoError(t, err)

	require.NoError(t, people.DeleteWithNotes(ctx, person.ID))

	_, err = people.GetByID(ctx, person.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	remaining, err := notes.ListByPersonID(ctx, person.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining, "no orphaned notes may persist")
}

func TestPersonRepo_DeleteWithNotes_NotFound(t *testing.T) {
	r := repo.NewPersonRepo(newTestTx(t))
	ctx := context.Background()

	err := r.DeleteWithNotes(ctx, 999999999)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
