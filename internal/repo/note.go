package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nolanv/doorstep/internal/domain"
)

// NoteRepo defines the persistence operations for Notes.
// Notes have no update path: they are written once and removed only by the
// owning person's cascade delete (see PersonRepo.DeleteWithNotes).
type NoteRepo interface {
	// Create inserts a new note and returns the persisted record. A non-zero
	// CreatedAt on the input is preserved (import path); otherwise the DB
	// assigns now(). The person_id FK rejects inserts for missing people;
	// the service layer checks first to produce a friendlier error.
	Create(ctx context.Context, note domain.Note) (domain.Note, error)

	// ListByPersonID returns all notes for one person ordered by created_at
	// ascending (ties broken by id, which follows insertion order).
	ListByPersonID(ctx context.Context, personID int64) ([]domain.Note, error)

	// MapByPersonIDs returns the notes for every given person keyed by
	// person id, each slice ordered by created_at ascending. People with no
	// notes are simply absent from the map.
	MapByPersonIDs(ctx context.Context, personIDs []int64) (map[int64][]domain.Note, error)
}

// pgNoteRepo is the Postgres implementation of NoteRepo.
type pgNoteRepo struct {
	db db
}

// NewNoteRepo constructs a NoteRepo backed by the provided db connection.
func NewNoteRepo(db db) NoteRepo {
	return &pgNoteRepo{db: db}
}

func (r *pgNoteRepo) Create(ctx context.Context, note domain.Note) (domain.Note, error) {
	const q = `
		INSERT INTO notes (person_id, content, created_at)
		VALUES (@person_id, @content, COALESCE(@created_at, now()))
		RETURNING id, person_id, content, created_at`

	args := pgx.NamedArgs{
		"person_id":  note.PersonID,
		"content":    note.Content,
		"created_at": timeArg(note.CreatedAt),
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanNote(row)
	if err != nil {
		return domain.Note{}, fmt.Errorf("repo.NoteRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgNoteRepo) ListByPersonID(ctx context.Context, personID int64) ([]domain.Note, error) {
	const q = `
		SELECT id, person_id, content, created_at
		FROM notes
		WHERE person_id = @person_id
		ORDER BY created_at ASC, id ASC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"person_id": personID})
	if err != nil {
		return nil, fmt.Errorf("repo.NoteRepo.ListByPersonID: %w", err)
	}
	defer rows.Close()

	notes := []domain.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.NoteRepo.ListByPersonID: scan: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.NoteRepo.ListByPersonID: rows: %w", err)
	}
	return notes, nil
}

func (r *pgNoteRepo) MapByPersonIDs(ctx context.Context, personIDs []int64) (map[int64][]domain.Note, error) {
	if len(personIDs) == 0 {
		return map[int64][]domain.Note{}, nil
	}

	const q = `
		SELECT id, person_id, content, created_at
		FROM notes
		WHERE person_id = ANY(@person_ids)
		ORDER BY created_at ASC, id ASC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"person_ids": personIDs})
	if err != nil {
		return nil, fmt.Errorf("repo.NoteRepo.MapByPersonIDs: %w", err)
	}
	defer rows.Close()

	byPerson := map[int64][]domain.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.NoteRepo.MapByPersonIDs: scan: %w", err)
		}
		byPerson[n.PersonID] = append(byPerson[n.PersonID], n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.NoteRepo.MapByPersonIDs: rows: %w", err)
	}
	return byPerson, nil
}

// scanNote maps a single database row into a domain.Note.
func scanNote(s scanner) (domain.Note, error) {
	var n domain.Note
	err := s.Scan(&n.ID, &n.PersonID, &n.Content, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Note{}, domain.ErrNotFound
		}
		return domain.Note{}, err
	}
	return n, nil
}
