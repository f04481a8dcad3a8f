package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nolanv/doorstep/internal/domain"
	"github.com/nolanv/doorstep/internal/repo"
)

// minNoteLength is the minimum trimmed content length for a note.
const minNoteLength = 5

// NoteService implements business logic for Note operations.
// It holds the person repo because adding a note requires the referenced
// person to exist.
type NoteService struct {
	people repo.PersonRepo
	notes  repo.NoteRepo
}

// NewNoteService constructs a NoteService backed by the provided repos.
func NewNoteService(people repo.PersonRepo, notes repo.NoteRepo) *NoteService {
	return &NoteService{people: people, notes: notes}
}

// Add validates and persists a new note.
// Returns domain.ErrValidation when the content is shorter than five trimmed
// characters or when the referenced person does not exist.
func (s *NoteService) Add(ctx context.Context, note domain.Note) (domain.Note, error) {
	if err := validateNote(note); err != nil {
		return domain.Note{}, err
	}

	if _, err := s.people.GetByID(ctx, note.PersonID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Note{}, fmt.Errorf("%w: person does not exist", domain.ErrValidation)
		}
		return domain.Note{}, fmt.Errorf("service.NoteService.Add: %w", err)
	}

	result, err := s.notes.Create(ctx, note)
	if err != nil {
		return domain.Note{}, fmt.Errorf("service.NoteService.Add: %w", err)
	}
	return result, nil
}

// ListByPersonID returns all notes for a person sorted by created_at ascending.
// Always returns a non-nil slice so callers can safely range over it.
func (s *NoteService) ListByPersonID(ctx context.Context, personID int64) ([]domain.Note, error) {
	notes, err := s.notes.ListByPersonID(ctx, personID)
	if err != nil {
		return nil, fmt.Errorf("service.NoteService.ListByPersonID: %w", err)
	}
	if notes == nil {
		return []domain.Note{}, nil
	}
	return notes, nil
}

// validateNote enforces the note content rule.
func validateNote(note domain.Note) error {
	if len(strings.TrimSpace(note.Content)) < minNoteLength {
		return fmt.Errorf("%w: content must be at least %d characters", domain.ErrValidation, minNoteLength)
	}
	return nil
}
