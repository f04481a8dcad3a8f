package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nolanv/doorstep/internal/domain"
	"github.com/nolanv/doorstep/internal/service"
)

func TestExportService_Export(t *testing.T) {
	loc := domain.LatLng{Lat: 30.2672, Lng: -97.7431}
	svc := service.NewExportService(
		&mockPersonRepo{
			list: func(_ context.Context) ([]domain.Person, error) {
				return []domain.Person{
					{ID: 1, Name: "Alice", Address: "1 First St", Location: &loc},
					{ID: 2, Name: "Bob"},
				}, nil
			},
		},
		&mockNoteRepo{
			mapByPersonIDs: func(_ context.Context, _ []int64) (map[int64][]domain.Note, error) {
				return map[int64][]domain.Note{
					1: {{ID: 10, PersonID: 1, Content: "about alice", CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}},
				}, nil
			},
		},
	)

	got, err := svc.Export(context.Background())

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ExportID)
	assert.False(t, got.ExportedAt.IsZero())
	require.Len(t, got.People, 2)

	alice := got.People[0]
	assert.Equal(t, "Alice", alice.Name)
	require.NotNil(t, alice.Latitude)
	assert.InDelta(t, 30.2672, *alice.Latitude, 1e-9)
	require.Len(t, alice.Notes, 1)
	assert.Equal(t, "about alice", alice.Notes[0].Content)

	bob := got.People[1]
	assert.Nil(t, bob.Latitude)
	assert.Empty(t, bob.Notes)
}

func TestExportService_Import_AssignsFreshIDs(t *testing.T) {
	var createdPeople []domain.Person
	var createdNotes []domain.Note

	svc := service.NewExportService(
		&mockPersonRepo{
			create: func(_ context.Context, p domain.Person) (domain.Person, error) {
				p.ID = int64(len(createdPeople)) + 100
				createdPeople = append(createdPeople, p)
				return p, nil
			},
		},
		&mockNoteRepo{
			create: func(_ context.Context, n domain.Note) (domain.Note, error) {
				createdNotes = append(createdNotes, n)
				return n, nil
			},
		},
	)

	noteTime := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	records := []domain.PersonRecord{
		{
			ID:   999, // stale id from the exporting store, must be discarded
			Name: "Alice",
			Notes: []domain.NoteRecord{
				{Content: "about alice", CreatedAt: noteTime},
			},
		},
		{Name: "Bob"},
	}

	count, err := svc.Import(context.Background(), records)

	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.Len(t, createdPeople, 2)
	require.Len(t, createdNotes, 1)
	assert.Equal(t, int64(100), createdNotes[0].PersonID, "note attaches to the freshly assigned person id")
	assert.True(t, createdNotes[0].CreatedAt.Equal(noteTime), "note timestamps survive import")
}

func TestExportService_Import_InvalidRecordAborts(t *testing.T) {
	created := 0
	svc := service.NewExportService(
		&mockPersonRepo{
			create: func(_ context.Context, p domain.Person) (domain.Person, error) {
				created++
				p.ID = int64(created)
				return p, nil
			},
		},
		&mockNoteRepo{},
	)

	records := []domain.PersonRecord{
		{Name: "Alice"},
		{Name: ""}, // invalid
		{Name: "Bob"},
	}

	count, err := svc.Import(context.Background(), records)

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 1, count, "import reports how many people made it in")
}

// Round trip: exporting and re-importing preserves content, ignoring ids.
func TestExportService_RoundTrip(t *testing.T) {
	source := []domain.Person{
		{ID: 1, Name: "Alice", Address: "1 First St", Phone: "555-0100", Email: "alice@example.com"},
		{ID: 2, Name: "Bob", Address: "2 Second St"},
	}
	sourceNotes := map[int64][]domain.Note{
		1: {{ID: 10, PersonID: 1, Content: "about alice", CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}},
	}

	exporter := service.NewExportService(
		&mockPersonRepo{
			list: func(_ context.Context) ([]domain.Person, error) { return source, nil },
		},
		&mockNoteRepo{
			mapByPersonIDs: func(_ context.Context, _ []int64) (map[int64][]domain.Note, error) {
				return sourceNotes, nil
			},
		},
	)

	export, err := exporter.Export(context.Background())
	require.NoError(t, err)

	// Import into an "empty store".
	var imported []domain.Person
	var importedNotes []domain.Note
	importer := service.NewExportService(
		&mockPersonRepo{
			create: func(_ context.Context, p domain.Person) (domain.Person, error) {
				p.ID = int64(len(imported)) + 500
				imported = append(imported, p)
				return p, nil
			},
		},
		&mockNoteRepo{
			create: func(_ context.Context, n domain.Note) (domain.Note, error) {
				importedNotes = append(importedNotes, n)
				return n, nil
			},
		},
	)

	count, err := importer.Import(context.Background(), export.People)

	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.Len(t, imported, 2)
	assert.Equal(t, "Alice", imported[0].Name)
	assert.Equal(t, "alice@example.com", imported[0].Email)
	assert.Equal(t, "Bob", imported[1].Name)
	require.Len(t, importedNotes, 1)
	assert.Equal(t, "about alice", importedNotes[0].Content)
}
