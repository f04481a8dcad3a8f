// Package service contains the business logic for the Doorstep API.
// Services validate inputs, enforce invariants, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/nolanv/doorstep/internal/domain"
	"github.com/nolanv/doorstep/internal/repo"
)

// PersonService implements business logic for Person operations.
// It holds the note repo as well because read paths attach notes and the
// delete path removes them with the person.
type PersonService struct {
	people repo.PersonRepo
	notes  repo.NoteRepo
}

// NewPersonService constructs a PersonService backed by the provided repos.
func NewPersonService(people repo.PersonRepo, notes repo.NoteRepo) *PersonService {
	return &PersonService{people: people, notes: notes}
}

// Create validates and persists a new person. Address, phone, and email are
// stored verbatim; format checks belong to the HTTP boundary, not the store.
func (s *PersonService) Create(ctx context.Context, person domain.Person) (domain.Person, error) {
	if err := validatePerson(person); err != nil {
		return domain.Person{}, err
	}
	result, err := s.people.Create(ctx, person)
	if err != nil {
		return domain.Person{}, fmt.Errorf("service.PersonService.Create: %w", err)
	}
	result.Notes = []domain.Note{}
	return result, nil
}

// GetWithNotes returns a person with their notes attached, sorted by
// created_at ascending. Returns domain.ErrNotFound if no such person.
func (s *PersonService) GetWithNotes(ctx context.Context, id int64) (domain.Person, error) {
	person, err := s.people.GetByID(ctx, id)
	if err != nil {
		return domain.Person{}, fmt.Errorf("service.PersonService.GetWithNotes: %w", err)
	}

	notes, err := s.notes.ListByPersonID(ctx, id)
	if err != nil {
		return domain.Person{}, fmt.Errorf("service.PersonService.GetWithNotes: notes: %w", err)
	}
	person.Notes = notes
	return person, nil
}

// List returns all people sorted by name ascending, each with notes attached.
// Always returns a non-nil slice so callers can safely range over it.
func (s *PersonService) List(ctx context.Context) ([]domain.Person, error) {
	people, err := s.people.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.PersonService.List: %w", err)
	}
	if len(people) == 0 {
		return []domain.Person{}, nil
	}

	ids := make([]int64, len(people))
	for i, p := range people {
		ids[i] = p.ID
	}
	byPerson, err := s.notes.MapByPersonIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("service.PersonService.List: notes: %w", err)
	}
	for i := range people {
		if notes, ok := byPerson[people[i].ID]; ok {
			people[i].Notes = notes
		} else {
			people[i].Notes = []domain.Note{}
		}
	}
	return people, nil
}

// Update validates and persists changes to an existing person.
// created_at is never overwritten; updated_at is refreshed by the repo.
// Returns domain.ErrNotFound if the person does not exist.
func (s *PersonService) Update(ctx context.Context, person domain.Person) (domain.Person, error) {
	if err := validatePerson(person); err != nil {
		return domain.Person{}, err
	}
	result, err := s.people.Update(ctx, person)
	if err != nil {
		return domain.Person{}, fmt.Errorf("service.PersonService.Update: %w", err)
	}
	return result, nil
}

// Delete removes a person and all of their notes as one logical operation.
// Returns domain.ErrNotFound if the person does not exist; deleting an
// absent person is an error here, unlike territory deletion.
func (s *PersonService) Delete(ctx context.Context, id int64) error {
	if err := s.people.DeleteWithNotes(ctx, id); err != nil {
		return fmt.Errorf("service.PersonService.Delete: %w", err)
	}
	return nil
}

// validatePerson enforces business rules common to both Create and Update.
// Only the name is required; everything else is free text or optional.
func validatePerson(person domain.Person) error {
	if strings.TrimSpace(person.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	return nil
}
