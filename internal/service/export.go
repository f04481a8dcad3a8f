package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nolanv/doorstep/internal/domain"
	"github.com/nolanv/doorstep/internal/repo"
)

// ExportService assembles the full-data export envelope and re-imports one.
type ExportService struct {
	people repo.PersonRepo
	notes  repo.NoteRepo
}

// NewExportService constructs an ExportService backed by the provided repos.
func NewExportService(people repo.PersonRepo, notes repo.NoteRepo) *ExportService {
	return &ExportService{people: people, notes: notes}
}

// Export returns every person with nested notes wrapped in an envelope.
// Record ids are included for reference but are discarded on import.
func (s *ExportService) Export(ctx context.Context) (domain.Export, error) {
	people, err := s.people.List(ctx)
	if err != nil {
		return domain.Export{}, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	ids := make([]int64, len(people))
	for i, p := range people {
		ids[i] = p.ID
	}
	byPerson, err := s.notes.MapByPersonIDs(ctx, ids)
	if err != nil {
		return domain.Export{}, fmt.Errorf("service.ExportService.Export: notes: %w", err)
	}

	records := make([]domain.PersonRecord, len(people))
	for i, p := range people {
		records[i] = personToRecord(p, byPerson[p.ID])
	}

	return domain.Export{
		ExportID:   uuid.New(),
		ExportedAt: time.Now().UTC(),
		People:     records,
	}, nil
}

// Import re-inserts every record under a freshly assigned id, original ids
// discarded, note timestamps preserved. Records are imported sequentially;
// the first invalid record aborts the import and reports how many people
// made it in before the failure.
func (s *ExportService) Import(ctx context.Context, records []domain.PersonRecord) (int, error) {
	imported := 0
	for _, rec := range records {
		person := recordToPerson(rec)
		if err := validatePerson(person); err != nil {
			return imported, err
		}

		created, err := s.people.Create(ctx, person)
		if err != nil {
			return imported, fmt.Errorf("service.ExportService.Import: %w", err)
		}

		for _, note := range rec.Notes {
			n := domain.Note{
				PersonID:  created.ID,
				Content:   note.Content,
				CreatedAt: note.CreatedAt,
			}
			if err := validateNote(n); err != nil {
				return imported, err
			}
			if _, err := s.notes.Create(ctx, n); err != nil {
				return imported, fmt.Errorf("service.ExportService.Import: note: %w", err)
			}
		}
		imported++
	}
	return imported, nil
}

func personToRecord(p domain.Person, notes []domain.Note) domain.PersonRecord {
	rec := domain.PersonRecord{
		ID:        p.ID,
		Name:      p.Name,
		Address:   p.Address,
		Phone:     p.Phone,
		Email:     p.Email,
		CreatedAt: p.CreatedAt,
	}
	if p.Location != nil {
		lat, lng := p.Location.Lat, p.Location.Lng
		rec.Latitude, rec.Longitude = &lat, &lng
	}
	for _, n := range notes {
		rec.Notes = append(rec.Notes, domain.NoteRecord{Content: n.Content, CreatedAt: n.CreatedAt})
	}
	return rec
}

func recordToPerson(rec domain.PersonRecord) domain.Person {
	p := domain.Person{
		Name:      rec.Name,
		Address:   rec.Address,
		Phone:     rec.Phone,
		Email:     rec.Email,
		CreatedAt: rec.CreatedAt,
	}
	if rec.Latitude != nil && rec.Longitude != nil {
		p.Location = &domain.LatLng{Lat: *rec.Latitude, Lng: *rec.Longitude}
	}
	return p
}
